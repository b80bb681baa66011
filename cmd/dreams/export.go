package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ecosdacama/dreams/pkg/export"
	"github.com/ecosdacama/dreams/pkg/utils"
)

var exportDirFlag string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all dreams to a text file",
	Long: fmt.Sprintf(`Writes every dream to %s in the export directory (--dir, DREAMS_EXPORT_DIR
or the Documents folder under the application data directory), replacing any previous export.`, export.TextFileName),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := exportDirFlag
		if dir == "" {
			dir = cfg.ExportDir
		}
		if dir == "" {
			dir = utils.DefaultExportDir()
		}
		dir, err := utils.ExpandHome(dir)
		if err != nil {
			return err
		}

		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		all, err := store.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list dreams: %w", err)
		}
		path, err := export.TextFile(dir, all)
		if err != nil {
			return fmt.Errorf("failed to export dreams: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d dreams to %s\n", len(all), path)
		return nil
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup [file]",
	Short: "Write a JSON backup of every dream",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		all, err := store.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list dreams: %w", err)
		}

		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("failed to create backup file: %w", err)
		}
		b := export.NewBackup(all, time.Now())
		if err := export.WriteBackup(f, b); err != nil {
			f.Close()
			return fmt.Errorf("failed to write backup: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write backup: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Backup %s written to %s (%d dreams)\n", b.ID, args[0], len(all))
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore [file]",
	Short: "Merge the dreams of a JSON backup",
	Long: `Imports the dreams of a backup file in one transaction. Dreams whose id is already
present are skipped; the others are inserted as new rows. Existing dreams are never changed.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open backup file: %w", err)
		}
		defer f.Close()

		b, err := export.ReadBackup(f)
		if err != nil {
			return err
		}

		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		res, err := export.Restore(cmd.Context(), store, b)
		if err != nil {
			return fmt.Errorf("nothing restored: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored %d dreams from backup %s (%d skipped)\n", res.Imported, b.ID, res.Skipped)
		return nil
	},
}

func initExportCmds() {
	exportCmd.Flags().StringVar(&exportDirFlag, "dir", "", "Directory to write the export to")
	rootCmd.AddCommand(exportCmd, backupCmd, restoreCmd)
}
