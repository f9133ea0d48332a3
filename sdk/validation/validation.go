// Package validation holds input checks and small pointer helpers shared by
// the repositories and bridges.
package validation

import (
	"time"
)

func StringPtr(s string) *string {
	return &s
}

// StringPtrIfNotEmpty returns nil for the empty string.
func StringPtrIfNotEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func TimePtr(t time.Time) *time.Time {
	return &t
}

func BoolPtr(b bool) *bool {
	return &b
}

func IntPtr(i int) *int {
	return &i
}

func GetStringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func GetBoolOrFalse(b *bool) bool {
	if b == nil {
		return false
	}
	return *b
}

func GetIntOrZero(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}

// GetTimeOrNow returns t in UTC, or the current UTC time for nil.
func GetTimeOrNow(t *time.Time) time.Time {
	if t == nil {
		return time.Now().UTC()
	}
	return t.UTC()
}

// FormatTimePtrToString renders t as RFC3339, or "" for nil.
func FormatTimePtrToString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
