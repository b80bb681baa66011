package dreams

import "time"

// Display formats used by the journal for the date and time fields.
const (
	DateLayout = "02/01/2006"
	TimeLayout = "15:04"
)

// Dream is a single journal entry.
type Dream struct {
	ID             int64  `json:"id"`
	Title          string `json:"titulo"`
	Description    string `json:"sonho"`
	Date           string `json:"data"`
	Time           string `json:"hora"`
	Interpretation string `json:"significado"`
}

// NewDream returns a dream stamped with the date and time of at.
func NewDream(title, description string, at time.Time) Dream {
	return Dream{
		Title:       title,
		Description: description,
		Date:        at.Format(DateLayout),
		Time:        at.Format(TimeLayout),
	}
}

// ValidDate reports whether s is a DD/MM/YYYY date. The store itself accepts any string.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ValidTime reports whether s is an HH:MM 24-hour time.
func ValidTime(s string) bool {
	_, err := time.Parse(TimeLayout, s)
	return err == nil
}
