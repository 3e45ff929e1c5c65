package kcal

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/kcal-planner/internal/app"
	"github.com/saadjs/kcal-planner/internal/db"
	"github.com/saadjs/kcal-planner/internal/service"
)

var initSeedCatalog bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize local kcal database",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDBPath()
		if err != nil {
			return err
		}
		if err := app.EnsureDBDir(path); err != nil {
			return err
		}

		sqldb, err := db.Open(path)
		if err != nil {
			return err
		}
		defer sqldb.Close()

		if err := db.ApplyMigrations(sqldb); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Initialized kcal database at %s\n", path)

		if initSeedCatalog {
			res, err := service.SeedDefaultCatalog(sqldb)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d foods into the catalog\n", res.Imported)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initSeedCatalog, "seed-catalog", false, "Import the bundled starter food catalog")
}
