package kcal

import (
	"database/sql"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/saadjs/kcal-planner/internal/model"
	"github.com/saadjs/kcal-planner/internal/service"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate and view weekly meal plans",
}

var (
	planMeals  int
	planSeed   int64
	planDate   string
	planJSON   bool
	planDay    int
	planLimit  int
	planReason string
)

var planGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new seven-day plan and make it active",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := engineConfig()
		if err != nil {
			return err
		}
		in := service.GeneratePlanInput{
			Config:      cfg,
			MealsPerDay: planMeals,
			Date:        planDate,
			Reason:      planReason,
		}
		if cmd.Flags().Changed("seed") {
			seed := planSeed
			in.Seed = &seed
		}
		return withDB(func(sqldb *sql.DB) error {
			res, err := service.GeneratePlan(cmd.Context(), sqldb, in)
			if err != nil {
				return err
			}
			if planJSON {
				return printJSON(cmd.OutOrStdout(), "plan", res.Plan)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated plan %s\n", res.Plan.ID)
			if res.ConsumedRequests > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %d pending target change(s)\n", res.ConsumedRequests)
			}
			printPlanSummary(cmd.OutOrStdout(), res.Plan)
			return nil
		})
	},
}

var planShowCmd = &cobra.Command{
	Use:   "show [plan-id]",
	Short: "Show the active plan, or a plan by id",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			var (
				p   model.Plan
				err error
			)
			if len(args) == 1 {
				p, err = service.GetPlan(sqldb, args[0])
			} else {
				p, err = service.ActivePlan(sqldb)
			}
			if err != nil {
				return err
			}
			if planJSON {
				return printJSON(cmd.OutOrStdout(), "plan", p)
			}
			if planDay < 0 || planDay > len(p.Days) {
				return fmt.Errorf("--day must be between 1 and %d", len(p.Days))
			}
			printPlanSummary(cmd.OutOrStdout(), p)
			for _, d := range p.Days {
				if planDay != 0 && d.DayNumber != planDay {
					continue
				}
				printPlanDay(cmd.OutOrStdout(), d)
			}
			return nil
		})
	},
}

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "List plan versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			plans, err := service.ListPlans(sqldb, planLimit)
			if err != nil {
				return err
			}
			if planJSON {
				return printJSON(cmd.OutOrStdout(), "plans", plans)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tSTATUS\tWEEK\tKCAL\tMEALS\tSEED\tCREATED\tREASON")
			for _, p := range plans {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
					p.ID, p.Status, p.WeekStart, p.Calories, p.MealsPerDay, p.Seed, p.CreatedAt.Local().Format("2006-01-02 15:04"), p.Reason)
			}
			return nil
		})
	},
}

func printPlanSummary(w io.Writer, p model.Plan) {
	fmt.Fprintf(w, "Week of %s | %d meals/day | seed %d\n", p.WeekStart, p.MealsPerDay, p.Seed)
	fmt.Fprintf(w, "Target: %d kcal | P %.1fg C %.1fg F %.1fg (%s, TDEE %.0f)\n", p.Calories, p.ProteinG, p.CarbsG, p.FatG, p.Formula, p.TDEE)
	fmt.Fprintln(w, "DAY\tKCAL\tP\tC\tF\tFACTOR\tDEVIATION")
	for _, d := range p.Days {
		flag := ""
		if !d.WithinTolerance {
			flag = " !"
		}
		if d.FactorClamped {
			flag += " (clamped)"
		}
		fmt.Fprintf(w, "%s\t%.0f\t%.1f\t%.1f\t%.1f\t%.2f\t%+.1f%%%s\n", d.DayName, d.RealizedCalories, d.RealizedProteinG, d.RealizedCarbsG, d.RealizedFatG, d.ScaleFactor, d.DeviationPct, flag)
	}
}

func printPlanDay(w io.Writer, d model.PlanDay) {
	fmt.Fprintf(w, "\n%s\n", d.DayName)
	for _, m := range d.Meals {
		fmt.Fprintf(w, "  %s\n", m.Name)
		for _, a := range m.Allocations {
			unit := "g"
			if a.QuantityUnit == "units" {
				unit = "x"
			}
			fmt.Fprintf(w, "    %-28s %7.0f%s  %5.0f kcal  P %.1f C %.1f F %.1f\n", a.FoodName, a.Quantity, unit, a.CalculatedCalories, a.CalculatedProtein, a.CalculatedCarbs, a.CalculatedFat)
		}
	}
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.AddCommand(planGenerateCmd, planShowCmd, planListCmd)

	planGenerateCmd.Flags().IntVar(&planMeals, "meals", 0, "Meals per day (default: profile setting)")
	planGenerateCmd.Flags().Int64Var(&planSeed, "seed", 0, "Seed for reproducible food selection")
	planGenerateCmd.Flags().StringVar(&planDate, "date", "", "Plan date YYYY-MM-DD (default today)")
	planGenerateCmd.Flags().StringVar(&planReason, "reason", "", "Note stored with the plan")
	for _, c := range []*cobra.Command{planGenerateCmd, planShowCmd, planListCmd} {
		c.Flags().BoolVar(&planJSON, "json", false, "Output JSON")
	}
	planShowCmd.Flags().IntVar(&planDay, "day", 0, "Only show day N (1-7)")
	planListCmd.Flags().IntVar(&planLimit, "limit", 20, "Result limit")
}
