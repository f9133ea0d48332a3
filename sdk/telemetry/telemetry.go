// Package telemetry carries per-request trace values through a context.
package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type telKey int

const (
	traceIDKey telKey = iota + 1
)

// NoTrace is reported when a context carries no trace id.
const NoTrace = "00000000-0000-0000-0000-000000000000"

type TraceValues struct {
	TraceID    string
	Now        time.Time
	StatusCode int
}

type Telemetry struct{}

func NewTelemetry() Telemetry {
	return Telemetry{}
}

// SetTraceID stores traceID in ctx, generating a new one when it is empty or
// not a UUID.
func (t Telemetry) SetTraceID(ctx context.Context, traceID string) context.Context {
	if _, err := uuid.Parse(traceID); err != nil {
		traceID = uuid.NewString()
	}
	return context.WithValue(ctx, traceIDKey, traceID)
}

func (t Telemetry) GetTraceID(ctx context.Context) string {
	v, ok := ctx.Value(traceIDKey).(string)
	if !ok {
		return NoTrace
	}
	return v
}
