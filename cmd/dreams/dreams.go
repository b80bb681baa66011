package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ecosdacama/dreams/pkg/dreams"
)

var (
	titleFlag       string
	descriptionFlag string
	dateFlag        string
	timeFlag        string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a new dream",
	Long: `Record a dream with a title and description. Date and time default to now
(dd/mm/yyyy and HH:MM).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d := dreams.NewDream(titleFlag, descriptionFlag, time.Now())
		if cmd.Flags().Changed("date") {
			if !dreams.ValidDate(dateFlag) {
				return fmt.Errorf("invalid date %q, expected dd/mm/yyyy", dateFlag)
			}
			d.Date = dateFlag
		}
		if cmd.Flags().Changed("time") {
			if !dreams.ValidTime(timeFlag) {
				return fmt.Errorf("invalid time %q, expected HH:MM", timeFlag)
			}
			d.Time = timeFlag
		}

		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		id, err := store.Insert(cmd.Context(), d)
		if err != nil {
			return fmt.Errorf("failed to add dream: %w", err)
		}
		d.ID = id
		printDream(cmd.OutOrStdout(), d)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all dreams",
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
		if len(all) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No dreams recorded yet.")
			return nil
		}
		printDreamTable(cmd.OutOrStdout(), all)
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get [dream-id]",
	Short: "Show a dream by ID",
	Args:  cobra.ExactArgs(1),
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
		printDream(cmd.OutOrStdout(), d)
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update [dream-id]",
	Short: "Update a dream",
	Long:  `Update the title, description, date or time of a dream. Omitted flags keep their value.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		dateChanged := cmd.Flags().Changed("date")
		timeChanged := cmd.Flags().Changed("time")
		if dateChanged && !dreams.ValidDate(dateFlag) {
			return fmt.Errorf("invalid date %q, expected dd/mm/yyyy", dateFlag)
		}
		if timeChanged && !dreams.ValidTime(timeFlag) {
			return fmt.Errorf("invalid time %q, expected HH:MM", timeFlag)
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

		if cmd.Flags().Changed("title") {
			d.Title = titleFlag
		}
		if cmd.Flags().Changed("description") {
			d.Description = descriptionFlag
		}
		if dateChanged {
			d.Date = dateFlag
		}
		if timeChanged {
			d.Time = timeFlag
		}

		if _, err := store.Update(cmd.Context(), d); err != nil {
			return fmt.Errorf("failed to update dream: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Dream updated successfully!")
		printDream(cmd.OutOrStdout(), d)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [dream-id]",
	Short: "Delete a dream",
	Args:  cobra.ExactArgs(1),
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

		n, err := store.Delete(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to delete dream: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("dream not found: %d", id)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Dream %d deleted.\n", id)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search dreams by title or description",
	Long:  `Find dreams whose title or description contains the query. Wildcard characters are matched literally.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		found, err := store.Search(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to search dreams: %w", err)
		}
		if len(found) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No dreams found matching %q.\n", args[0])
			return nil
		}
		printDreamTable(cmd.OutOrStdout(), found)
		return nil
	},
}

func initDreamsCmds() {
	addCmd.Flags().StringVarP(&titleFlag, "title", "t", "", "Dream title")
	addCmd.Flags().StringVarP(&descriptionFlag, "description", "d", "", "Dream description")
	addCmd.Flags().StringVar(&dateFlag, "date", "", "Date (dd/mm/yyyy), defaults to today")
	addCmd.Flags().StringVar(&timeFlag, "time", "", "Time (HH:MM), defaults to now")

	updateCmd.Flags().StringVarP(&titleFlag, "title", "t", "", "New title")
	updateCmd.Flags().StringVarP(&descriptionFlag, "description", "d", "", "New description")
	updateCmd.Flags().StringVar(&dateFlag, "date", "", "New date (dd/mm/yyyy)")
	updateCmd.Flags().StringVar(&timeFlag, "time", "", "New time (HH:MM)")

	rootCmd.AddCommand(addCmd, listCmd, getCmd, updateCmd, deleteCmd, searchCmd)
}
