package kcal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/kcal-planner/internal/service"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Compute and manage calorie and macro targets",
}

var (
	targetsSave          bool
	targetsDate          string
	targetsCalories      int
	targetsProtein       float64
	targetsCarbs         float64
	targetsFat           float64
	targetsEffectiveDate string
)

var targetsComputeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute REE, TDEE and macro targets from the profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := engineConfig()
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			if targetsSave {
				res, err := service.ComputeAndStoreTargets(sqldb, cfg.Energy, targetsEffectiveDate)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Formula: %s\nREE: %.0f kcal\nTDEE: %.0f kcal\n", res.Formula, res.REE, res.TDEE)
				fmt.Fprintf(cmd.OutOrStdout(), "Target: %d kcal | P %.1fg C %.1fg F %.1fg (saved)\n", res.Target.Calories, res.Target.ProteinG, res.Target.CarbsG, res.Target.FatG)
				return nil
			}
			res, err := service.ComputeTargets(sqldb, cfg.Energy)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Formula: %s\nREE: %.0f kcal\nTDEE: %.0f kcal\n", res.Formula, res.REE, res.TDEE)
			fmt.Fprintf(cmd.OutOrStdout(), "Target: %d kcal | P %.1fg C %.1fg F %.1fg\n", res.Target.Calories, res.Target.ProteinG, res.Target.CarbsG, res.Target.FatG)
			return nil
		})
	},
}

var targetsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set a manual target effective from a date",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := service.SetMacroTargetInput{
			Calories:      targetsCalories,
			ProteinG:      targetsProtein,
			CarbsG:        targetsCarbs,
			FatG:          targetsFat,
			Source:        service.TargetSourceManual,
			EffectiveDate: targetsEffectiveDate,
		}
		return withDB(func(sqldb *sql.DB) error {
			if err := service.SetMacroTarget(sqldb, in); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Saved target")
			return nil
		})
	},
}

var targetsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the target in effect on a date",
	RunE: func(cmd *cobra.Command, args []string) error {
		date := targetsDate
		if date == "" {
			date = time.Now().Format("2006-01-02")
		}
		return withDB(func(sqldb *sql.DB) error {
			t, err := service.CurrentMacroTarget(sqldb, date)
			if err != nil {
				return err
			}
			if t == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "No target in effect on %s\n", date)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Date: %s\nCalories: %d\nProtein: %.1fg\nCarbs: %.1fg\nFat: %.1fg\nSource: %s (since %s)\n",
				date, t.Calories, t.ProteinG, t.CarbsG, t.FatG, t.Source, t.EffectiveDate)
			return nil
		})
	},
}

var targetsHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List targets by effective date",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			items, err := service.TargetHistory(sqldb)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "EFFECTIVE\tCALORIES\tPROTEIN\tCARBS\tFAT\tSOURCE")
			for _, t := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%.1f\t%.1f\t%.1f\t%s\n", t.EffectiveDate, t.Calories, t.ProteinG, t.CarbsG, t.FatG, t.Source)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(targetsCmd)
	targetsCmd.AddCommand(targetsComputeCmd, targetsSetCmd, targetsShowCmd, targetsHistoryCmd)

	targetsComputeCmd.Flags().BoolVar(&targetsSave, "save", false, "Store the computed target")
	for _, c := range []*cobra.Command{targetsComputeCmd, targetsSetCmd} {
		c.Flags().StringVar(&targetsEffectiveDate, "effective-date", "", "Effective date YYYY-MM-DD (default today)")
	}

	targetsSetCmd.Flags().IntVar(&targetsCalories, "calories", 0, "Daily calories")
	targetsSetCmd.Flags().Float64Var(&targetsProtein, "protein", 0, "Daily protein grams")
	targetsSetCmd.Flags().Float64Var(&targetsCarbs, "carbs", 0, "Daily carbs grams")
	targetsSetCmd.Flags().Float64Var(&targetsFat, "fat", 0, "Daily fat grams")
	_ = targetsSetCmd.MarkFlagRequired("calories")

	targetsShowCmd.Flags().StringVar(&targetsDate, "date", "", "Date YYYY-MM-DD (default today)")
}
