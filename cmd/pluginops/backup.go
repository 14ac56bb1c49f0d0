package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pluginops/internal/backup"
	"pluginops/internal/config"
	"pluginops/internal/paths"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create, list and restore compressed store snapshots",
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Snapshot the store and prune old snapshots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			dir, err := backupDir(a.cfg)
			if err != nil {
				return err
			}
			db, err := a.handle.DB()
			if err != nil {
				return err
			}

			snap, err := backup.Create(db, dir)
			if err != nil {
				return err
			}
			a.logger.Info("Backup created", "path", snap.Path, "size", snap.Size)

			removed, err := backup.Prune(dir, a.cfg.Backup.Keep)
			if err != nil {
				return err
			}
			for _, name := range removed {
				a.logger.Info("Backup pruned", "name", name)
			}
			return printResult(cmd, snap)
		})
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			dir, err := backupDir(a.cfg)
			if err != nil {
				return err
			}
			snaps, err := backup.List(dir)
			if err != nil {
				return err
			}
			return printResult(cmd, snaps)
		})
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <snapshot>",
	Short: "Replace the store with a snapshot",
	Long: `Decompress a snapshot over the store file. The argument is a snapshot name
from "pluginops backup list" or a path to a .db.zst file.

Stop any running "pluginops mcp" server first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			dir, err := backupDir(a.cfg)
			if err != nil {
				return err
			}
			src := paths.ResolveProjectPath(dir, args[0])
			dbPath, err := paths.GetDBPath()
			if err != nil {
				return err
			}

			// Release the handle so nothing holds the file being replaced.
			a.handle.Close()
			if err := backup.Restore(src, dbPath); err != nil {
				return err
			}
			a.logger.Info("Backup restored", "from", src, "to", dbPath)
			return printResult(cmd, fmt.Sprintf("Restored %s", src))
		})
	},
}

func backupDir(cfg *config.Config) (string, error) {
	return paths.ResolveDataPath(cfg.Backup.Dir)
}

func init() {
	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	rootCmd.AddCommand(backupCmd)
}
