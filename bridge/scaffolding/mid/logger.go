package mid

import (
	"context"
	"net/http"
	"time"

	"github.com/jrazmi/helix/infrastructure/web"
	"github.com/jrazmi/helix/sdk/logger"
	"github.com/jrazmi/helix/sdk/telemetry"
)

// Logger writes a line when a request starts and when it completes.
func Logger(log *logger.Logger) web.Middleware {
	tel := telemetry.NewTelemetry()

	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(ctx context.Context, r *http.Request) web.Encoder {
			start := time.Now()
			traceID := tel.GetTraceID(ctx)

			path := r.URL.Path
			if r.URL.RawQuery != "" {
				path = path + "?" + r.URL.RawQuery
			}

			log.InfoContext(ctx, "request started", "trace_id", traceID, "method", r.Method, "path", path, "remoteaddr", r.RemoteAddr)

			resp := next(ctx, r)

			log.InfoContext(ctx, "request completed", "trace_id", traceID, "method", r.Method, "path", path,
				"remoteaddr", r.RemoteAddr, "statuscode", statusOf(resp), "since", time.Since(start).String())

			return resp
		}
	}
}
