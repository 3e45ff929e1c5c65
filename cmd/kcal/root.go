package kcal

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/saadjs/kcal-planner/internal/app"
)

var (
	dbPath     string
	configPath string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:   "kcal",
	Short: "kcal plans your week of meals from your body profile",
	Long: "kcal is a local-first nutrition planner: it computes calorie and macro targets from your body profile, " +
		"composes a seven-day meal plan from a food catalog, and adjusts targets from weekly check-ins.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			return app.LoadEnv(envFile)
		}
		return app.LoadEnv()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database (default: $KCAL_DB or user config dir)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Engine config YAML (default: $KCAL_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment from this file instead of ./.env")
}
