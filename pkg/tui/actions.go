package tui

import (
	"context"
	"database/sql"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ecosdacama/dreams/pkg/dreams"
	"github.com/ecosdacama/dreams/pkg/interpret"
)

type dreamsLoadedMsg struct {
	query  string
	dreams []dreams.Dream
}

type dreamDeletedMsg struct {
	id int64
}

type interpretationMsg struct {
	id   int64
	text string
	err  error
}

// Search dreams (empty query lists all) and return tea data
func loadDreams(store *dreams.Store, query string) tea.Cmd {
	return func() tea.Msg {
		found, err := store.Search(context.Background(), query)
		if err != nil {
			return err
		}
		return dreamsLoadedMsg{query: query, dreams: found}
	}
}

func deleteDream(store *dreams.Store, id int64) tea.Cmd {
	return func() tea.Msg {
		if _, err := store.Delete(context.Background(), id); err != nil {
			return err
		}
		return dreamDeletedMsg{id: id}
	}
}

// Fetch an interpretation in the background and persist it on success
func fetchInterpretation(store *dreams.Store, client *interpret.Client, d dreams.Dream) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		task, err := client.Start(ctx, d.Description)
		if err != nil {
			return interpretationMsg{id: d.ID, err: err}
		}
		text, err := task.Wait()
		if err != nil {
			return interpretationMsg{id: d.ID, err: err}
		}
		d.Interpretation = text
		if _, err := store.Update(ctx, d); err != nil {
			return interpretationMsg{id: d.ID, text: text, err: err}
		}
		return interpretationMsg{id: d.ID, text: text}
	}
}

// Get database name and file path
func getDbPragmaList(db *sql.DB) (string, string) {
	var name, file string
	err := db.QueryRow(`PRAGMA database_list`).Scan(new(int), &name, &file)
	if err != nil {
		return name, file
	}
	return name, file
}
