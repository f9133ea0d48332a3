package postgresdb

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	dangerousChars    = regexp.MustCompile(`[;'"\\()]`)
	identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
	typeNamePattern   = regexp.MustCompile(`^[a-z][a-z0-9_ ]*(\[\])?$`)
)

// QuoteIdentifier validates and quotes a column or table reference. It
// accepts "name", "schema.name" and an optional alias: "schema.name alias".
func QuoteIdentifier(name string) (string, error) {
	if dangerousChars.MatchString(name) {
		return "", fmt.Errorf("identifier contains dangerous characters: %s", name)
	}

	parts := strings.Fields(name)
	if len(parts) == 0 || len(parts) > 2 {
		return "", fmt.Errorf("invalid identifier format: %q", name)
	}

	segments := strings.Split(parts[0], ".")
	if len(segments) > 2 {
		return "", fmt.Errorf("invalid identifier format (too many segments): %s", name)
	}

	quoted := make([]string, len(segments))
	for i, segment := range segments {
		if !identifierPattern.MatchString(segment) {
			return "", fmt.Errorf("invalid identifier segment at position %d: %q", i, segment)
		}
		quoted[i] = `"` + segment + `"`
	}
	out := strings.Join(quoted, ".")

	if len(parts) == 2 {
		if !identifierPattern.MatchString(parts[1]) {
			return "", fmt.Errorf("invalid identifier alias: %s", parts[1])
		}
		out += ` "` + parts[1] + `"`
	}

	return out, nil
}

// CheckTypeName validates a SQL type name used in a cast, e.g.
// "timestamptz" or "text[]".
func CheckTypeName(name string) error {
	if !typeNamePattern.MatchString(name) {
		return fmt.Errorf("invalid type name: %q", name)
	}
	return nil
}
