// Package pgxstore is the plumbing shared by the per-entity pgx stores:
// error translation, row collection and the list/count/group queries every
// entity supports.
package pgxstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jrazmi/helix/core/repositories"
	"github.com/jrazmi/helix/core/scaffolding/fop"
	"github.com/jrazmi/helix/infrastructure/postgresdb"
)

// Error translates a pgx error into the repositories taxonomy.
func Error(err error) error {
	if err == nil {
		return nil
	}
	mapped := postgresdb.HandlePgError(err)

	switch {
	case errors.Is(mapped, postgresdb.ErrDBNotFound):
		return repositories.ErrNotFound
	case errors.Is(mapped, postgresdb.ErrDBDuplicatedEntry):
		return &repositories.ConstraintError{Kind: repositories.ErrUniqueViolation, Constraint: postgresdb.ConstraintName(err)}
	case errors.Is(mapped, postgresdb.ErrDBForeignKey):
		return &repositories.ConstraintError{Kind: repositories.ErrForeignKeyViolation, Constraint: postgresdb.ConstraintName(err)}
	case errors.Is(mapped, postgresdb.ErrDBCheckViolation):
		return &repositories.ConstraintError{Kind: repositories.ErrCheckViolation, Constraint: postgresdb.ConstraintName(err)}
	}
	return mapped
}

// CollectOne runs query and scans the single row into T by column name.
func CollectOne[T any](ctx context.Context, db postgresdb.DBTX, query string, args pgx.NamedArgs) (T, error) {
	var zero T

	rows, err := db.Query(ctx, query, args)
	if err != nil {
		return zero, Error(err)
	}
	defer rows.Close()

	record, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil {
		return zero, Error(err)
	}
	return record, nil
}

// CollectMany runs query and scans every row into T by column name.
func CollectMany[T any](ctx context.Context, db postgresdb.DBTX, query string, args pgx.NamedArgs) ([]T, error) {
	rows, err := db.Query(ctx, query, args)
	if err != nil {
		return nil, Error(err)
	}
	defer rows.Close()

	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, Error(err)
	}
	return records, nil
}

// ExecOne runs a statement expected to touch exactly one row.
func ExecOne(ctx context.Context, db postgresdb.DBTX, query string, args pgx.NamedArgs) error {
	tag, err := db.Exec(ctx, query, args)
	if err != nil {
		return Error(err)
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// Exec runs a statement and reports the affected row count.
func Exec(ctx context.Context, db postgresdb.DBTX, query string, args pgx.NamedArgs) (int64, error) {
	tag, err := db.Exec(ctx, query, args)
	if err != nil {
		return 0, Error(err)
	}
	return tag.RowsAffected(), nil
}

// Column describes an order-by column: its SQL type is needed to cast the
// text cursor value back for the keyset comparison.
type Column struct {
	Name string
	Type string
}

// ListQuery is a keyset paginated SELECT.
type ListQuery struct {
	Select  string
	Where   postgresdb.Conditions
	Args    pgx.NamedArgs
	OrderBy fop.By
	Columns map[string]Column
	PK      string
	Page    fop.PageStringCursor
}

// List reads one page plus one row, so callers can detect a following page
// with fop.NewPageInfo.
func List[T any](ctx context.Context, db postgresdb.DBTX, q ListQuery) ([]T, error) {
	col, ok := q.Columns[q.OrderBy.Field]
	if !ok {
		return nil, fmt.Errorf("%w: cannot order by %q", repositories.ErrValidation, q.OrderBy.Field)
	}
	if q.Args == nil {
		q.Args = pgx.NamedArgs{}
	}

	buf := bytes.NewBufferString(q.Select)
	q.Where.Write(buf)

	cursor := postgresdb.StringCursorConfig{
		Cursor:     q.Page.Cursor,
		OrderField: col.Name,
		OrderType:  col.Type,
		PKField:    q.PK,
		Direction:  q.OrderBy.Direction,
	}
	if err := postgresdb.ApplyStringCursorPagination(buf, q.Args, cursor, false); err != nil {
		return nil, fmt.Errorf("%w: %w", repositories.ErrValidation, err)
	}
	if err := postgresdb.AddOrderByClause(buf, col.Name, q.PK, q.OrderBy.Direction, false); err != nil {
		return nil, err
	}
	postgresdb.AddLimitClause(q.Page.FetchLimit(), q.Args, buf)

	return CollectMany[T](ctx, db, buf.String(), q.Args)
}

// Count returns the number of rows in table matching where.
func Count(ctx context.Context, db postgresdb.DBTX, table string, where postgresdb.Conditions, args pgx.NamedArgs) (int64, error) {
	qt, err := postgresdb.QuoteIdentifier(table)
	if err != nil {
		return 0, err
	}

	buf := bytes.NewBufferString("SELECT count(*) FROM " + qt)
	where.Write(buf)

	var n int64
	if err := db.QueryRow(ctx, buf.String(), args).Scan(&n); err != nil {
		return 0, Error(err)
	}
	return n, nil
}

// GroupBy counts rows of table per distinct value of column.
func GroupBy(ctx context.Context, db postgresdb.DBTX, table, column string, where postgresdb.Conditions, args pgx.NamedArgs) ([]repositories.GroupCount, error) {
	var buf bytes.Buffer
	if err := postgresdb.WriteGroupBySelect(&buf, table, column); err != nil {
		return nil, err
	}
	where.Write(&buf)
	postgresdb.WriteGroupByTail(&buf)

	return CollectMany[repositories.GroupCount](ctx, db, buf.String(), args)
}

// Aggregate computes count/avg/min/max of a numeric column.
func Aggregate(ctx context.Context, db postgresdb.DBTX, table, column string, where postgresdb.Conditions, args pgx.NamedArgs) (repositories.Aggregate, error) {
	var buf bytes.Buffer
	if err := postgresdb.WriteAggregateSelect(&buf, table, column); err != nil {
		return repositories.Aggregate{}, err
	}
	where.Write(&buf)

	return CollectOne[repositories.Aggregate](ctx, db, buf.String(), args)
}

// DeleteWhere removes rows matching where. An empty where is refused.
func DeleteWhere(ctx context.Context, db postgresdb.DBTX, table string, where postgresdb.Conditions, args pgx.NamedArgs) (int64, error) {
	if len(where) == 0 {
		return 0, repositories.ErrEmptyFilter
	}
	qt, err := postgresdb.QuoteIdentifier(table)
	if err != nil {
		return 0, err
	}

	buf := bytes.NewBufferString("DELETE FROM " + qt)
	where.Write(buf)

	return Exec(ctx, db, buf.String(), args)
}

// SendBatch queues one statement per item, runs them in a single round trip
// and scans the RETURNING row of each.
func SendBatch[In any, Out any](ctx context.Context, db postgresdb.DBTX, query string, items []In, argsOf func(In) pgx.NamedArgs) ([]Out, error) {
	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, argsOf(item))
	}

	results := db.SendBatch(ctx, batch)
	defer results.Close()

	out := make([]Out, 0, len(items))
	for i := range items {
		rows, err := results.Query()
		if err != nil {
			return nil, fmt.Errorf("batch item %d: %w", i, Error(err))
		}
		record, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[Out])
		if err != nil {
			return nil, fmt.Errorf("batch item %d: %w", i, Error(err))
		}
		out = append(out, record)
	}

	if err := results.Close(); err != nil {
		return nil, Error(err)
	}
	return out, nil
}

// Set collects the SET list of a partial update.
type Set struct {
	parts []string
	Args  pgx.NamedArgs
}

func NewSet() *Set {
	return &Set{Args: pgx.NamedArgs{}}
}

// Add assigns value to column through a named argument of the same name.
func (s *Set) Add(column string, value any) {
	s.parts = append(s.parts, fmt.Sprintf("%s = @%s", column, column))
	s.Args[column] = value
}

// AddExpr assigns a raw SQL expression to column.
func (s *Set) AddExpr(column string, expr string) {
	s.parts = append(s.parts, column+" = "+expr)
}

func (s *Set) Len() int {
	return len(s.parts)
}

func (s *Set) String() string {
	return strings.Join(s.parts, ", ")
}

// SetPtr adds column when v is non-nil.
func SetPtr[T any](s *Set, column string, v *T) {
	if v != nil {
		s.Add(column, *v)
	}
}

// UpdateOne applies set to the row of table whose pk equals id, bumps
// updated_at and returns the row. An empty set is ErrNoChanges.
func UpdateOne[T any](ctx context.Context, db postgresdb.DBTX, table, pk, id string, set *Set, returning string) (T, error) {
	var zero T
	if set.Len() == 0 {
		return zero, repositories.ErrNoChanges
	}
	qt, err := postgresdb.QuoteIdentifier(table)
	if err != nil {
		return zero, err
	}
	qpk, err := postgresdb.QuoteIdentifier(pk)
	if err != nil {
		return zero, err
	}

	query := fmt.Sprintf("UPDATE %s SET %s, updated_at = now() WHERE %s = @pk_id RETURNING %s", qt, set, qpk, returning)
	set.Args["pk_id"] = id
	return CollectOne[T](ctx, db, query, set.Args)
}

// DeleteOne removes the row of table whose pk equals id.
func DeleteOne(ctx context.Context, db postgresdb.DBTX, table, pk, id string) error {
	qt, err := postgresdb.QuoteIdentifier(table)
	if err != nil {
		return err
	}
	qpk, err := postgresdb.QuoteIdentifier(pk)
	if err != nil {
		return err
	}
	return ExecOne(ctx, db, fmt.Sprintf("DELETE FROM %s WHERE %s = @pk_id", qt, qpk), pgx.NamedArgs{"pk_id": id})
}

// GetOne selects columns of the row of table whose column equals value.
func GetOne[T any](ctx context.Context, db postgresdb.DBTX, table, columns, column string, value any) (T, error) {
	var zero T
	qt, err := postgresdb.QuoteIdentifier(table)
	if err != nil {
		return zero, err
	}
	qc, err := postgresdb.QuoteIdentifier(column)
	if err != nil {
		return zero, err
	}
	return CollectOne[T](ctx, db, fmt.Sprintf("SELECT %s FROM %s WHERE %s = @value", columns, qt, qc), pgx.NamedArgs{"value": value})
}
