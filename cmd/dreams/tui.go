package main

import (
	"github.com/spf13/cobra"

	"github.com/ecosdacama/dreams/pkg/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Show terminal UI",
	Long:  `Browse, search, interpret and delete dreams in an interactive terminal UI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		return tui.ShowTUI(store, newInterpreter())
	},
}
