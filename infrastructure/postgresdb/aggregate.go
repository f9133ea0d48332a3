package postgresdb

import (
	"bytes"
	"fmt"
)

// WriteGroupBySelect starts a "count per value" query over table.column. The
// value is cast to text so every grouped column scans into the same shape.
// Callers add their WHERE clause and then WriteGroupByTail.
func WriteGroupBySelect(buf *bytes.Buffer, table, column string) error {
	qt, err := QuoteIdentifier(table)
	if err != nil {
		return fmt.Errorf("invalid table name: %w", err)
	}
	qc, err := QuoteIdentifier(column)
	if err != nil {
		return fmt.Errorf("invalid group column: %w", err)
	}
	fmt.Fprintf(buf, "SELECT %s::text AS key, count(*) AS count FROM %s", qc, qt)
	return nil
}

// WriteGroupByTail groups on the selected key, largest groups first.
func WriteGroupByTail(buf *bytes.Buffer) {
	buf.WriteString(" GROUP BY 1 ORDER BY count DESC, key ASC NULLS LAST")
}

// WriteAggregateSelect starts a count/avg/min/max query over a numeric
// column. Columns are aliased count, avg, min and max.
func WriteAggregateSelect(buf *bytes.Buffer, table, column string) error {
	qt, err := QuoteIdentifier(table)
	if err != nil {
		return fmt.Errorf("invalid table name: %w", err)
	}
	qc, err := QuoteIdentifier(column)
	if err != nil {
		return fmt.Errorf("invalid aggregate column: %w", err)
	}
	fmt.Fprintf(buf, "SELECT count(%[1]s) AS count, avg(%[1]s)::float8 AS avg, min(%[1]s)::float8 AS min, max(%[1]s)::float8 AS max FROM %[2]s", qc, qt)
	return nil
}
