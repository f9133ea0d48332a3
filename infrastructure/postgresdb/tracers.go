package postgresdb

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// MultiQueryTracer fans query events out to several tracers.
type MultiQueryTracer struct {
	Tracers []pgx.QueryTracer
}

func NewMultiQueryTracer(tracers ...pgx.QueryTracer) *MultiQueryTracer {
	return &MultiQueryTracer{Tracers: tracers}
}

func (m *MultiQueryTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	for _, t := range m.Tracers {
		ctx = t.TraceQueryStart(ctx, conn, data)
	}
	return ctx
}

func (m *MultiQueryTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	for _, t := range m.Tracers {
		t.TraceQueryEnd(ctx, conn, data)
	}
}

// LoggingQueryTracer logs each statement with its duration at debug level
// and failures at error level.
type LoggingQueryTracer struct {
	logger *slog.Logger
}

func NewLoggingQueryTracer(logger *slog.Logger) *LoggingQueryTracer {
	return &LoggingQueryTracer{logger: logger}
}

type queryStartKey struct{}

type queryStart struct {
	sql   string
	start time.Time
}

var (
	collapseSpaces = regexp.MustCompile(`\s+`)
	parenOpen      = regexp.MustCompile(`\(\s+`)
	parenClose     = regexp.MustCompile(`\s+\)`)
)

// prettyPrintSQL folds a multi-line statement onto one line.
func prettyPrintSQL(sql string) string {
	pretty := collapseSpaces.ReplaceAllString(sql, " ")
	pretty = parenOpen.ReplaceAllString(pretty, "(")
	pretty = parenClose.ReplaceAllString(pretty, ")")
	return strings.TrimSpace(pretty)
}

func (l *LoggingQueryTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartKey{}, queryStart{
		sql:   prettyPrintSQL(data.SQL),
		start: time.Now(),
	})
}

func (l *LoggingQueryTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	qs, _ := ctx.Value(queryStartKey{}).(queryStart)
	elapsed := time.Since(qs.start)

	if data.Err != nil {
		l.logger.ErrorContext(ctx, "query failed",
			slog.String("sql", qs.sql),
			slog.Duration("elapsed", elapsed),
			slog.String("error", data.Err.Error()),
		)
		return
	}

	l.logger.DebugContext(ctx, "query",
		slog.String("sql", qs.sql),
		slog.Duration("elapsed", elapsed),
		slog.String("command_tag", data.CommandTag.String()),
	)
}
