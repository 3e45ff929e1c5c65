package kcal

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/kcal-planner/internal/service"
)

var bodyCmd = &cobra.Command{
	Use:   "body",
	Short: "View recorded body measurements",
}

var (
	bodyFrom    string
	bodyTo      string
	bodyLimit   int
	bodyOutUnit string
)

var bodyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List body measurements",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := service.BodyMeasurementFilter{FromDate: bodyFrom, ToDate: bodyTo, Limit: bodyLimit}
		return withDB(func(sqldb *sql.DB) error {
			items, err := service.ListBodyMeasurements(sqldb, filter)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tDATE\tWEIGHT\tUNIT\tBODY_FAT%\tMUSCLE%\tWAIST\tNOTES")
			for _, m := range items {
				w, err := service.WeightFromKg(m.WeightKg, bodyOutUnit)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%.2f\t%s\t%s\t%s\t%s\t%s\n", m.ID, m.MeasuredAt.Local().Format("2006-01-02 15:04"), w, bodyOutUnit,
					fmtOptional(m.BodyFatPct), fmtOptional(m.MusclePct), fmtOptional(m.WaistCm), m.Notes)
			}
			return nil
		})
	},
}

func fmtOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.1f", *v)
}

func init() {
	rootCmd.AddCommand(bodyCmd)
	bodyCmd.AddCommand(bodyListCmd)

	bodyListCmd.Flags().StringVar(&bodyFrom, "from", "", "Filter from date YYYY-MM-DD")
	bodyListCmd.Flags().StringVar(&bodyTo, "to", "", "Filter to date YYYY-MM-DD")
	bodyListCmd.Flags().IntVar(&bodyLimit, "limit", 50, "Result limit")
	bodyListCmd.Flags().StringVar(&bodyOutUnit, "unit", "kg", "Output unit: kg or lb")
}
