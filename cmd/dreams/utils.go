package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/ecosdacama/dreams/pkg/dreams"
	"github.com/ecosdacama/dreams/pkg/interpret"
	"github.com/ecosdacama/dreams/pkg/utils"
)

func resolveDBPath() (string, error) {
	return utils.ResolveAndEnsureDBPath(dbPath)
}

// newInterpreter builds the interpretation client from the loaded config.
func newInterpreter() *interpret.Client {
	opts := []interpret.Option{
		interpret.WithTimeout(cfg.InterpretTimeout),
		interpret.WithLogger(logger),
	}
	if cfg.InterpretPrompt != "" {
		opts = append(opts, interpret.WithPrompt(cfg.InterpretPrompt))
	}
	return interpret.New(cfg.InterpretURL, opts...)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid dream ID: %q", arg)
	}
	return id, nil
}

func printDream(w io.Writer, d dreams.Dream) {
	fmt.Fprintln(w, "Dream Details:")
	fmt.Fprintf(w, "ID:    %d\n", d.ID)
	fmt.Fprintf(w, "Title: %s\n", d.Title)
	fmt.Fprintf(w, "Date:  %s\n", d.Date)
	fmt.Fprintf(w, "Time:  %s\n", d.Time)
	fmt.Fprintln(w, "\nDream:")
	fmt.Fprintln(w, "------------------------------------------------------------")
	fmt.Fprintln(w, d.Description)
	fmt.Fprintln(w, "------------------------------------------------------------")
	if d.Interpretation != "" {
		fmt.Fprintln(w, "\nInterpretation:")
		fmt.Fprintln(w, d.Interpretation)
	}
}

func printDreamTable(w io.Writer, list []dreams.Dream) {
	fmt.Fprintln(w, "ID | Date | Time | Title | Interpreted")
	fmt.Fprintln(w, "------------------------------------------------------------")
	for _, d := range list {
		fmt.Fprintf(w, "%d | %s | %s | %s | %t\n", d.ID, d.Date, d.Time, d.Title, d.Interpretation != "")
	}
}
