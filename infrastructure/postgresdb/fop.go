package postgresdb

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Set of directions for data ordering.
const (
	ASC  = "ASC"
	DESC = "DESC"
)

// AddOrderByClause adds ORDER BY with the primary key as tie breaker.
func AddOrderByClause(buf *bytes.Buffer, orderField, pkField, direction string, forPrevious bool) error {
	quotedOrderField, err := QuoteIdentifier(orderField)
	if err != nil {
		return fmt.Errorf("invalid order field name: %w", err)
	}
	quotedPKField, err := QuoteIdentifier(pkField)
	if err != nil {
		return fmt.Errorf("invalid pk field name: %w", err)
	}

	actualDirection := ASC
	if strings.EqualFold(direction, DESC) {
		actualDirection = DESC
	}
	if forPrevious {
		if actualDirection == ASC {
			actualDirection = DESC
		} else {
			actualDirection = ASC
		}
	}

	fmt.Fprintf(buf, " ORDER BY %s %s", quotedOrderField, actualDirection)
	if orderField != pkField {
		fmt.Fprintf(buf, ", %s %s", quotedPKField, actualDirection)
	}

	return nil
}

// AddLimitClause adds LIMIT clause to the query buffer
func AddLimitClause(limit int, data pgx.NamedArgs, buf *bytes.Buffer) {
	buf.WriteString(" LIMIT @limit")
	data["limit"] = limit
}

// Conditions collects the predicates of a dynamically built WHERE clause.
type Conditions []string

func (c *Conditions) Add(format string, args ...any) {
	*c = append(*c, fmt.Sprintf(format, args...))
}

// Write appends " WHERE a AND b ..." to buf, or nothing when empty.
func (c Conditions) Write(buf *bytes.Buffer) {
	if len(c) == 0 {
		return
	}
	buf.WriteString(" WHERE ")
	buf.WriteString(strings.Join(c, " AND "))
}
