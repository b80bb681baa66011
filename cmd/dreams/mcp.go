package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ecosdacama/dreams/pkg/interpret"
	"github.com/ecosdacama/dreams/pkg/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Dreams MCP server (stdio)",
	Long: `Start a Model Context Protocol (MCP) server that exposes the dream journal
as MCP tools via STDIO.

The interpret_dream tool is registered unless --no-interpret is given.

The --db flag is optional. If not provided, a system-specific default location will be used:
- Windows: %USERPROFILE%\AppData\Roaming\dreams\sonhos.db
- macOS: ~/Library/Application Support/dreams/sonhos.db
- Linux: ~/.local/share/dreams/sonhos.db

Example:
  dreams mcp
  dreams mcp --db sonhos.db`,
	RunE: func(cmd *cobra.Command, args []string) error {
		noInterpret, _ := cmd.Flags().GetBool("no-interpret")

		var client *interpret.Client
		if !noInterpret {
			client = newInterpreter()
		}

		srv, err := mcp.NewDreamsMCPServer(cmd.Context(), mcp.Config{
			DBPath:      dbPath,
			WAL:         walMode,
			Sync:        syncMode,
			Interpreter: client,
			Logger:      logger,
		})
		if err != nil {
			return err
		}
		defer srv.Close()

		// Log to stderr so we don't contaminate the JSON-RPC stream on stdout.
		fmt.Fprintf(os.Stderr, "Dreams MCP server started. DB: %s (WAL: %t, Sync: %s)\n", srv.DbPath, walMode, syncMode)
		tools := "Available tools: ping, add_dream, list_dreams, get_dream, update_dream, delete_dream, search_dreams"
		if client != nil {
			tools += ", interpret_dream"
		}
		fmt.Fprintln(os.Stderr, tools)
		fmt.Fprintln(os.Stderr, "Listening for MCP JSON-RPC on STDIN/STDOUT ... (Ctrl+C to quit)")

		return srv.Start()
	},
}

func init() {
	mcpCmd.Flags().Bool("no-interpret", false, "Do not register the interpret_dream tool")
}
