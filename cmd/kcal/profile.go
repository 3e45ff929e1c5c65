package kcal

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/kcal-planner/internal/model"
	"github.com/saadjs/kcal-planner/internal/service"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage your body profile",
}

var (
	profileWeight   float64
	profileUnit     string
	profileHeight   float64
	profileSex      string
	profileAge      int
	profileBodyFat  float64
	profileMuscle   float64
	profileGoal     string
	profileLevel    string
	profileMeals    int
	profileShowJSON bool
)

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set body profile, goal and fitness level",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := engineConfig()
		if err != nil {
			return err
		}
		in := service.ProfileInput{
			Weight:       optionalFloat(profileWeight),
			WeightUnit:   profileUnit,
			HeightCm:     optionalFloat(profileHeight),
			Sex:          profileSex,
			Age:          optionalInt(profileAge),
			BodyFatPct:   optionalFloat(profileBodyFat),
			MusclePct:    optionalFloat(profileMuscle),
			Goal:         profileGoal,
			FitnessLevel: profileLevel,
			MealsPerDay:  profileMeals,
		}
		return withDB(func(sqldb *sql.DB) error {
			p, err := service.SetProfile(sqldb, in, cfg.Energy)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Saved profile")
			printProfile(cmd, p)
			return nil
		})
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show body profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			p, err := service.GetProfile(sqldb)
			if err != nil {
				return err
			}
			if profileShowJSON {
				return printJSON(cmd.OutOrStdout(), "profile", p)
			}
			printProfile(cmd, p)
			return nil
		})
	},
}

var profileMealsCmd = &cobra.Command{
	Use:   "meals <count>",
	Short: "Set meals per day (1-6)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := parseInt64Arg("meal count", args[0])
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			if err := service.SetMealsPerDay(sqldb, int(n)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Meals per day set to %d\n", n)
			return nil
		})
	},
}

func printProfile(cmd *cobra.Command, p model.Profile) {
	out := cmd.OutOrStdout()
	if p.WeightKg != nil {
		fmt.Fprintf(out, "Weight: %.1f kg\n", *p.WeightKg)
	} else {
		fmt.Fprintln(out, "Weight: not set (energy model default applies)")
	}
	if p.HeightCm != nil {
		fmt.Fprintf(out, "Height: %.1f cm\n", *p.HeightCm)
	}
	fmt.Fprintf(out, "Sex: %s\n", p.Sex)
	if p.Age != nil {
		fmt.Fprintf(out, "Age: %d\n", *p.Age)
	}
	if p.BodyFatPct != nil {
		fmt.Fprintf(out, "Body fat: %.1f%%\n", *p.BodyFatPct)
	}
	if p.MusclePct != nil {
		fmt.Fprintf(out, "Muscle: %.1f%%\n", *p.MusclePct)
	}
	fmt.Fprintf(out, "Goal: %s\nFitness level: %s\nMeals per day: %d\n", p.Goal, p.FitnessLevel, p.MealsPerDay)
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileSetCmd, profileShowCmd, profileMealsCmd)

	profileSetCmd.Flags().Float64Var(&profileWeight, "weight", -1, "Body weight (optional)")
	profileSetCmd.Flags().StringVar(&profileUnit, "unit", "kg", "Weight unit: kg or lb")
	profileSetCmd.Flags().Float64Var(&profileHeight, "height", -1, "Height in cm (optional)")
	profileSetCmd.Flags().StringVar(&profileSex, "sex", "", "male or female")
	profileSetCmd.Flags().IntVar(&profileAge, "age", 0, "Age in years (optional)")
	profileSetCmd.Flags().Float64Var(&profileBodyFat, "body-fat", -1, "Body fat percentage (optional)")
	profileSetCmd.Flags().Float64Var(&profileMuscle, "muscle", -1, "Muscle mass percentage (optional)")
	profileSetCmd.Flags().StringVar(&profileGoal, "goal", "maintain", "reduce_fat, gain_muscle or maintain")
	profileSetCmd.Flags().StringVar(&profileLevel, "level", "intermediate", "beginner, intermediate or advanced")
	profileSetCmd.Flags().IntVar(&profileMeals, "meals", 3, "Meals per day (1-6)")
	_ = profileSetCmd.MarkFlagRequired("sex")

	profileShowCmd.Flags().BoolVar(&profileShowJSON, "json", false, "Output JSON")
}
