package kcal

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/kcal-planner/internal/service"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Snapshot and restore the planner database",
}

var (
	backupOut    string
	backupDir    string
	backupJSON   bool
	restoreFile  string
	restoreForce bool
)

// backupDirFor returns --dir or a backups/ folder next to the database.
func backupDirFor(dbPath string) string {
	if backupDir != "" {
		return backupDir
	}
	return filepath.Join(filepath.Dir(dbPath), "backups")
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Copy the database with a sha256 sidecar",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath()
		if err != nil {
			return err
		}
		out := backupOut
		if out == "" {
			out = filepath.Join(backupDirFor(dbPath), fmt.Sprintf("kcal-planner-%s.db", time.Now().Format("20060102-150405")))
		}
		info, err := service.CreateBackup(dbPath, out)
		if err != nil {
			return err
		}
		if backupJSON {
			return printJSON(cmd.OutOrStdout(), "backup", info)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s (%d bytes, sha256 %s)\n", info.Path, info.SizeBytes, info.Checksum)
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath()
		if err != nil {
			return err
		}
		items, err := service.ListBackups(backupDirFor(dbPath))
		if err != nil {
			return err
		}
		if backupJSON {
			return printJSON(cmd.OutOrStdout(), "backups", items)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "FILE\tSIZE\tCREATED\tVERIFIED")
		for _, it := range items {
			verified := "no"
			if it.Checksum != "" {
				verified = "yes"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\t%s\n", filepath.Base(it.Path), it.SizeBytes, it.CreatedAt.Format(time.RFC3339), verified)
		}
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Replace the database with a verified backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		if restoreFile == "" {
			return fmt.Errorf("--file is required")
		}
		dbPath, err := resolveDBPath()
		if err != nil {
			return err
		}
		if err := service.RestoreBackup(restoreFile, dbPath, restoreForce); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored %s from %s\n", dbPath, restoreFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupCreateCmd, backupListCmd, backupRestoreCmd)

	backupCreateCmd.Flags().StringVar(&backupOut, "out", "", "Backup output file path")
	for _, c := range []*cobra.Command{backupCreateCmd, backupListCmd} {
		c.Flags().StringVar(&backupDir, "dir", "", "Backup directory (default: backups/ next to the database)")
		c.Flags().BoolVar(&backupJSON, "json", false, "Output JSON")
	}
	backupRestoreCmd.Flags().StringVar(&restoreFile, "file", "", "Backup .db file path")
	backupRestoreCmd.Flags().BoolVar(&restoreForce, "force", false, "Overwrite existing database")
}
