package fop

import (
	"errors"
	"fmt"
	"strings"
)

// Set of directions for data ordering.
const (
	ASC  = "ASC"
	DESC = "DESC"
)

var directions = map[string]string{
	"ASC":  ASC,
	"DESC": DESC,
}

// By represents a field used to order by and direction.
type By struct {
	Field     string
	Direction string
}

func NewBy(field string, direction string) By {
	return By{Field: field, Direction: direction}
}

// ParseOrder parses "field" or "field,direction" using fieldMappings to
// translate public names into order constants. An empty string yields
// defaultOrder.
func ParseOrder(fieldMappings map[string]string, orderBy string, defaultOrder By) (By, error) {
	if orderBy == "" {
		return defaultOrder, nil
	}

	name, dir, found := strings.Cut(orderBy, ",")
	name = strings.TrimSpace(name)

	field, exists := fieldMappings[name]
	if !exists {
		return By{}, fmt.Errorf("unknown order field %q", name)
	}

	if !found {
		return NewBy(field, defaultOrder.Direction), nil
	}

	direction, ok := directions[strings.ToUpper(strings.TrimSpace(dir))]
	if !ok {
		return By{}, errors.New("order direction must be ASC or DESC")
	}

	return NewBy(field, direction), nil
}
