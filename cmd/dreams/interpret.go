package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ecosdacama/dreams/pkg/dreams"
	"github.com/ecosdacama/dreams/pkg/interpret"
)

var interpretCmd = &cobra.Command{
	Use:   "interpret [dream-id]",
	Short: "Fetch and save an interpretation for a dream",
	Long: `Sends the dream description to the interpretation service (DREAMS_INTERPRET_URL)
and stores the returned meaning on the dream.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		d, err := store.Get(cmd.Context(), id)
		if errors.Is(err, dreams.ErrDreamNotFound) {
			return fmt.Errorf("dream not found: %d", id)
		}
		if err != nil {
			return fmt.Errorf("failed to get dream: %w", err)
		}

		client := newInterpreter()
		fmt.Fprintf(cmd.ErrOrStderr(), "Fetching interpretation from %s ...\n", client.URL())

		task, err := client.Start(cmd.Context(), d.Description)
		if err != nil {
			return errors.New(interpret.Message(err))
		}
		text, err := task.Wait()
		if err != nil {
			logger.Debug("interpretation failed", "id", id, "error", err)
			return errors.New(interpret.Message(err))
		}

		d.Interpretation = text
		if _, err := store.Update(cmd.Context(), d); err != nil {
			return fmt.Errorf("failed to save interpretation: %w", err)
		}
		printDream(cmd.OutOrStdout(), d)
		return nil
	},
}
