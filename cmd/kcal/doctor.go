package kcal

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/kcal-planner/internal/service"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run plan integrity checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			report, err := service.RunDoctor(sqldb, doctorFix)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Active plans: %d\n", report.ActivePlans)
			fmt.Fprintf(out, "Plans without 7 days: %d\n", report.IncompletePlans)
			fmt.Fprintf(out, "Days with wrong meal count: %d\n", report.MealCountMismatches)
			fmt.Fprintf(out, "Invalid quantities: %d\n", report.BadQuantities)
			fmt.Fprintf(out, "Allocations for deleted foods: %d\n", report.DanglingFoodRefs)
			fmt.Fprintf(out, "Incomplete catalog foods: %d\n", report.IncompleteFoods)
			fmt.Fprintf(out, "Pending regenerations: %d\n", report.PendingRegenerations)
			if doctorFix {
				fmt.Fprintf(out, "Superseded extra active plans: %d\n", report.FixedActivePlans)
				// Re-check after fixes so exit status reflects final state.
				report, err = service.RunDoctor(sqldb, false)
				if err != nil {
					return err
				}
			}
			if len(report.Problems) > 0 {
				for _, p := range report.Problems {
					fmt.Fprintf(out, "- %s\n", p)
				}
				return fmt.Errorf("doctor found integrity issues")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Supersede all but the newest active plan")
}
