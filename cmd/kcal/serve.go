package kcal

import (
	"database/sql"
	"log"

	"github.com/spf13/cobra"

	"github.com/saadjs/kcal-planner/internal/api"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the planner over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := engineConfig()
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			router := api.NewRouter(api.NewHandler(sqldb, cfg))
			log.Printf("[serve] listening on %s", serveAddr)
			return router.Run(serveAddr)
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost:8080", "Listen address")
}
