package kcal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/kcal-planner/internal/service"
)

var checkinCmd = &cobra.Command{
	Use:   "checkin",
	Short: "Weekly body check-ins and target adjustment",
}

var (
	checkinWeight     float64
	checkinUnit       string
	checkinBodyFat    float64
	checkinMuscle     float64
	checkinWaist      float64
	checkinHip        float64
	checkinChest      float64
	checkinArm        float64
	checkinThigh      float64
	checkinDate       string
	checkinTime       string
	checkinNotes      string
	checkinRegenerate bool
	checkinJSON       bool
)

var checkinSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Record this week's measurements and adjust targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		measuredAt, err := parseDateTimeOrNow(checkinDate, checkinTime)
		if err != nil {
			return err
		}
		cfg, err := engineConfig()
		if err != nil {
			return err
		}
		in := service.CheckinInput{
			Measurement: service.BodyMeasurementInput{
				Weight:     checkinWeight,
				Unit:       checkinUnit,
				BodyFatPct: optionalFloat(checkinBodyFat),
				MusclePct:  optionalFloat(checkinMuscle),
				WaistCm:    optionalFloat(checkinWaist),
				HipCm:      optionalFloat(checkinHip),
				ChestCm:    optionalFloat(checkinChest),
				ArmCm:      optionalFloat(checkinArm),
				ThighCm:    optionalFloat(checkinThigh),
				MeasuredAt: measuredAt,
				Notes:      checkinNotes,
			},
			Config: cfg,
		}
		if cmd.Flags().Changed("regenerate") {
			v := checkinRegenerate
			in.Regenerate = &v
		}
		return withDB(func(sqldb *sql.DB) error {
			res, err := service.SubmitCheckin(cmd.Context(), sqldb, in)
			if err != nil {
				return err
			}
			if checkinJSON {
				return printJSON(cmd.OutOrStdout(), "check-in", res)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Recorded check-in %d\n", res.MeasurementID)
			if ch := res.Outcome.Changes; ch != nil {
				fmt.Fprintf(out, "Weight change: %+.1f kg (%d weeks tracked)\n", ch.WeightChangeKg, ch.WeeksTracked)
				if ch.BodyFatChange != nil {
					fmt.Fprintf(out, "Body fat change: %+.1f%%\n", *ch.BodyFatChange)
				}
				if ch.MuscleChange != nil {
					fmt.Fprintf(out, "Muscle change: %+.1f%%\n", *ch.MuscleChange)
				}
			}
			ev := res.Outcome.Event
			if ev == nil {
				fmt.Fprintln(out, "Targets unchanged (need at least two weeks of check-ins)")
				return nil
			}
			fmt.Fprintf(out, "New target from %s: %d kcal | P %.1fg C %.1fg F %.1fg\n",
				ev.EffectiveFrom.Format("2006-01-02"), ev.Target.Calories, ev.Target.ProteinG, ev.Target.CarbsG, ev.Target.FatG)
			if res.Plan != nil {
				fmt.Fprintf(out, "Regenerated plan %s\n", res.Plan.ID)
			} else {
				fmt.Fprintln(out, "Plan regeneration pending; run `kcal checkin regenerate`")
			}
			return nil
		})
	},
}

var checkinStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether this week's check-in is done",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			state, err := service.GetCheckinState(sqldb, time.Now())
			if err != nil {
				return err
			}
			if checkinJSON {
				return printJSON(cmd.OutOrStdout(), "check-in state", state)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Status: %s (week of %s)\n", state.Status, state.WeekStart.Format("2006-01-02"))
			if state.LatestAt != nil {
				fmt.Fprintf(out, "Latest check-in: %s\n", state.LatestAt.Local().Format("2006-01-02 15:04"))
			}
			fmt.Fprintf(out, "Check-ins recorded: %d\n", state.Measurements)
			if state.Changes != nil {
				fmt.Fprintf(out, "Last change: %+.1f kg\n", state.Changes.WeightChangeKg)
			}
			return nil
		})
	},
}

var checkinPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List target changes waiting for plan regeneration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			items, err := service.PendingRegenerations(sqldb)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tEFFECTIVE\tCALORIES\tREASON")
			for _, r := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%d\t%s\n", r.ID, r.EffectiveFrom, r.Calories, r.Reason)
			}
			return nil
		})
	},
}

var checkinRegenerateCmd = &cobra.Command{
	Use:   "regenerate",
	Short: "Regenerate the plan for pending target changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := engineConfig()
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			res, err := service.ConsumeRegenerations(cmd.Context(), sqldb, cfg, time.Now())
			if err != nil {
				return err
			}
			if res == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No pending target changes")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated plan %s (%d target change(s) applied)\n", res.Plan.ID, res.ConsumedRequests)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(checkinCmd)
	checkinCmd.AddCommand(checkinSubmitCmd, checkinStatusCmd, checkinPendingCmd, checkinRegenerateCmd)

	f := checkinSubmitCmd.Flags()
	f.Float64Var(&checkinWeight, "weight", 0, "Weight value")
	f.StringVar(&checkinUnit, "unit", "kg", "Weight unit: kg or lb")
	f.Float64Var(&checkinBodyFat, "body-fat", -1, "Body fat percentage (optional)")
	f.Float64Var(&checkinMuscle, "muscle", -1, "Muscle mass percentage (optional)")
	f.Float64Var(&checkinWaist, "waist", -1, "Waist circumference cm (optional)")
	f.Float64Var(&checkinHip, "hip", -1, "Hip circumference cm (optional)")
	f.Float64Var(&checkinChest, "chest", -1, "Chest circumference cm (optional)")
	f.Float64Var(&checkinArm, "arm", -1, "Arm circumference cm (optional)")
	f.Float64Var(&checkinThigh, "thigh", -1, "Thigh circumference cm (optional)")
	f.StringVar(&checkinDate, "date", "", "Date YYYY-MM-DD (default now)")
	f.StringVar(&checkinTime, "time", "", "Time HH:MM")
	f.StringVar(&checkinNotes, "notes", "", "Optional notes")
	f.BoolVar(&checkinRegenerate, "regenerate", false, "Regenerate the plan now (default: auto_regenerate setting)")
	_ = checkinSubmitCmd.MarkFlagRequired("weight")

	for _, c := range []*cobra.Command{checkinSubmitCmd, checkinStatusCmd} {
		c.Flags().BoolVar(&checkinJSON, "json", false, "Output JSON")
	}
}
