package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	ecos "github.com/ecosdacama/dreams/pkg"
	"github.com/ecosdacama/dreams/pkg/config"
	pkgdb "github.com/ecosdacama/dreams/pkg/db"
	"github.com/ecosdacama/dreams/pkg/dreams"
)

var (
	dbPath   string
	walMode  bool
	syncMode string

	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:     "dreams",
	Short:   "A dream journal with remote interpretations.",
	Long:    ``,
	Version: fmt.Sprintf("v%s", ecos.Version),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		// Flags win over DREAMS_* variables.
		if !cmd.Flags().Changed("db") && loaded.DBPath != "" {
			dbPath = loaded.DBPath
		}
		if !cmd.Flags().Changed("wal") {
			walMode = loaded.WAL
		}
		if !cmd.Flags().Changed("sync") {
			syncMode = loaded.Sync
		}
		cfg = loaded
		logger = cfg.NewLogger(os.Stderr)
		slog.SetDefault(logger)
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

var completionCmd = &cobra.Command{
	Use:   fmt.Sprintf("completion %s", strings.Join(completionShells, "|")),
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for dreams.

The command prints a completion script to stdout. You can source it in your shell
or install it to the appropriate location for your shell to enable completions permanently.

Examples:

  Bash (current shell):
    $ source <(dreams completion bash)

  Zsh:
    $ dreams completion zsh > "${fpath[1]}/_dreams"

  Fish:
    $ dreams completion fish > ~/.config/fish/completions/dreams.fish

  PowerShell:
    PS> dreams completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             completionShells,
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return rootCmd.GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(cmd.OutOrStdout())
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of dreams",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), ecos.Version)
	},
}

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the dreams database",
}

var dbUpgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade the dreams database schema to the latest version",
	Long: `Opens the SQLite database (--db, DREAMS_DB_PATH or the per-user default) and applies
any missing schema steps up to the current version. Steps whose column already exists are
skipped, so the command is safe to run on databases written by older clients.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDBPath()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Upgrading database at: %s (WAL: %t, Sync: %s)\n", path, walMode, syncMode)

		conn, err := pkgdb.OpenDBConnection(cmd.Context(), path, pkgdb.Options{WAL: walMode, Sync: syncMode})
		if err != nil {
			return err
		}
		defer conn.Close()

		report, err := pkgdb.Migrate(cmd.Context(), conn, pkgdb.TargetSchemaVersion, logger)
		if err != nil {
			return err
		}
		if len(report.Outcomes) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Schema already at version %d.\n", report.To)
			return nil
		}
		for _, o := range report.Outcomes {
			if o.Err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "  v%d %s: %v\n", o.Version, o.Status, o.Err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  v%d %s\n", o.Version, o.Status)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Schema upgraded from version %d to %d.\n", report.From, report.To)
		return nil
	},
}

func initCmd() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the database file (uses a system-specific default if not provided)")
	rootCmd.PersistentFlags().BoolVar(&walMode, "wal", false, "Enable SQLite WAL (Write-Ahead Logging) mode")
	rootCmd.PersistentFlags().StringVar(&syncMode, "sync", "FULL", "SQLite synchronous pragma (OFF, NORMAL, FULL, EXTRA)")

	dbCmd.AddCommand(dbUpgradeCmd)

	initDreamsCmds()
	initExportCmds()
	rootCmd.AddCommand(completionCmd, versionCmd, dbCmd, interpretCmd, mcpCmd, tuiCmd)
}

func main() {
	initCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore opens and migrates the store selected by the persistent flags.
func openStore(cmd *cobra.Command) (*dreams.Store, error) {
	path, err := resolveDBPath()
	if err != nil {
		return nil, err
	}
	return dreams.Open(cmd.Context(), path, dreams.Options{WAL: walMode, Sync: syncMode, Logger: logger})
}
