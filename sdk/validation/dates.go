package validation

import (
	"fmt"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.DateTime,
	time.DateOnly,
	"2006/01/02",
	"01/02/2006",
}

// ParseFlexibleDate parses the timestamp and date layouts accepted on query
// strings. Values without a zone are read as UTC.
func ParseFlexibleDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %q", s)
}
