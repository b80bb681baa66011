// Package export writes dreams out of the store: a human-readable text file
// for sharing and a JSON backup that can be restored.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/text/unicode/norm"

	"github.com/ecosdacama/dreams/pkg/dreams"
)

// TextFileName is the name of the file written by TextFile.
const TextFileName = "sonhos_exportados.txt"

const blockSeparator = "\n------------------\n\n"

// WriteText writes one block per dream to w.
func WriteText(w io.Writer, list []dreams.Dream) error {
	bw := bufio.NewWriter(w)
	for _, d := range list {
		_, err := fmt.Fprintf(bw, "Título: %s\nSonho: %s\nData: %s\nHora: %s\n%s",
			norm.NFC.String(d.Title),
			norm.NFC.String(d.Description),
			d.Date,
			d.Time,
			blockSeparator,
		)
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// TextFile writes list to TextFileName inside dir, creating dir if needed,
// and returns the path of the written file.
func TextFile(dir string, list []dreams.Dream) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory '%s': %w", dir, err)
	}

	path := filepath.Join(dir, TextFileName)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file '%s': %w", path, err)
	}

	if err := WriteText(f, list); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write export file '%s': %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close export file '%s': %w", path, err)
	}
	return path, nil
}
