// Package logger wraps log/slog with env driven configuration.
package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"time"

	"github.com/jrazmi/helix/sdk/environment"
)

// Logger is a wrapper around the standard slog.Logger.
type Logger struct {
	*slog.Logger
}

type options struct {
	level      slog.Level
	output     io.Writer
	addSource  bool
	format     string // "json" or "text"
	timeFormat string // "RFC3339", "RFC3339Nano", "Unix", "UnixMilli" or a layout
	attrs      []any
}

// Options is the env mapped logger configuration.
type Options struct {
	Level      string `json:"level" env:"LOG_LEVEL" default:"INFO"`
	Output     string `json:"output" env:"LOG_OUTPUT" default:"STDOUT"`
	Format     string `json:"format" env:"LOG_FORMAT" default:"json"`
	TimeFormat string `json:"time_format" env:"LOG_TIME_FORMAT" default:"RFC3339"`
	AddSource  bool   `json:"add_source" env:"LOG_ADD_SOURCE"`
}

// Option mutates the logger settings after Options are applied.
type Option func(*options)

func WithLevel(level string) Option {
	return func(o *options) {
		o.level = parseLevel(level)
	}
}

// WithOutput redirects log output, mostly for tests.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

func WithFormat(format string) Option {
	return func(o *options) {
		o.format = format
	}
}

// WithAttrs attaches attributes to every record, e.g. the service name.
func WithAttrs(args ...any) Option {
	return func(o *options) {
		o.attrs = append(o.attrs, args...)
	}
}

func NewDefault(opts ...Option) *Logger {
	cfg := Options{
		Level:      "INFO",
		Output:     "STDERR",
		Format:     "json",
		TimeFormat: "RFC3339",
	}
	return newLogger(cfg, opts...)
}

// NewDiscard returns a logger that drops everything.
func NewDiscard() *Logger {
	return newLogger(Options{Level: "ERROR"}, WithOutput(io.Discard))
}

func NewStdLogger(logger *Logger, level slog.Level) *log.Logger {
	return slog.NewLogLogger(logger.Logger.Handler(), level)
}

func NewFromEnv(prefix string, opts ...Option) (*Logger, error) {
	var cfg Options
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing logger config: %w", err)
	}
	return newLogger(cfg, opts...), nil
}

func newLogger(cfg Options, opts ...Option) *Logger {
	o := &options{
		level:      parseLevel(cfg.Level),
		output:     parseOutput(cfg.Output),
		addSource:  cfg.AddSource,
		timeFormat: cfg.TimeFormat,
		format:     cfg.Format,
	}
	for _, opt := range opts {
		opt(o)
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     o.level,
		AddSource: o.addSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key != slog.TimeKey || len(groups) > 0 || o.timeFormat == "" {
				return a
			}
			ts := a.Value.Time()
			switch o.timeFormat {
			case "Unix":
				return slog.Int64(slog.TimeKey, ts.Unix())
			case "UnixMilli":
				return slog.Int64(slog.TimeKey, ts.UnixMilli())
			case "RFC3339":
				return slog.String(slog.TimeKey, ts.Format(time.RFC3339))
			case "RFC3339Nano":
				return slog.String(slog.TimeKey, ts.Format(time.RFC3339Nano))
			default:
				return slog.String(slog.TimeKey, ts.Format(o.timeFormat))
			}
		},
	}

	var handler slog.Handler
	switch o.format {
	case "text":
		handler = slog.NewTextHandler(o.output, handlerOpts)
	default:
		handler = slog.NewJSONHandler(o.output, handlerOpts)
	}

	l := slog.New(handler)
	if len(o.attrs) > 0 {
		l = l.With(o.attrs...)
	}
	return &Logger{Logger: l}
}

// With returns a child logger carrying args on every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

func (l *Logger) DebugContextf(ctx context.Context, format string, args ...any) {
	l.DebugContext(ctx, fmt.Sprintf(format, args...))
}

func (l *Logger) InfoContextf(ctx context.Context, format string, args ...any) {
	l.InfoContext(ctx, fmt.Sprintf(format, args...))
}

func (l *Logger) WarnContextf(ctx context.Context, format string, args ...any) {
	l.WarnContext(ctx, fmt.Sprintf(format, args...))
}

func (l *Logger) ErrorContextf(ctx context.Context, format string, args ...any) {
	l.ErrorContext(ctx, fmt.Sprintf(format, args...))
}
