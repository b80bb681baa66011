package dreams

import (
	"context"
	"strings"
)

// Matching is SQLite LIKE: case-insensitive for ASCII letters only.
const searchDreamsStatement = `
	SELECT ` + selectColumns + `
	FROM sonhos
	WHERE COALESCE(titulo, '') LIKE ? ESCAPE '\'
	   OR COALESCE(sonho, '') LIKE ? ESCAPE '\'
	ORDER BY id ASC
	`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern turns q into a LIKE pattern matching q anywhere in a value.
func LikePattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

// Search returns the dreams whose title or description contains q, ordered by id.
// An empty q returns every dream.
func (s *Store) Search(ctx context.Context, q string) ([]Dream, error) {
	pattern := LikePattern(q)
	return s.query(ctx, "search", searchDreamsStatement, pattern, pattern)
}
