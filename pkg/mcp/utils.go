package mcp

import (
	"time"

	"github.com/ecosdacama/dreams/pkg/dreams"
)

// nowFunc seeds new dreams with the current local date and time.
func nowFunc() dreams.Dream {
	return dreams.NewDream("", "", time.Now())
}
