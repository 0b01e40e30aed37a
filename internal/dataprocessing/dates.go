package dataprocessing

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts are the accepted transaction date formats, tried in order.
// The first layout is the canonical one written back to cleaned output.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02-Jan-2006",
}

// ParseTransactionDate parses a raw transaction date string. It returns the
// parsed time on success, or an error describing why the value is unusable.
// Callers decide what to do with failures; this function never guesses.
func ParseTransactionDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date value")
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date format: %q", value)
}
