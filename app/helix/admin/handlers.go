// Package admin serves the operational endpoints: liveness, readiness and
// Prometheus metrics.
package admin

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jrazmi/helix/bridge/scaffolding/errs"
	"github.com/jrazmi/helix/infrastructure/web"
)

// Checker reports whether a dependency is reachable.
type Checker func(ctx context.Context) error

type Config struct {
	Build    string
	Ready    Checker
	Registry *prometheus.Registry
}

type status struct {
	Status string `json:"status"`
	Build  string `json:"build,omitempty"`
}

// AddHandlers registers /healthz, /readyz and /metrics. They bypass the API
// middleware so probes are neither rate limited nor counted.
func AddHandlers(h *web.WebHandler, cfg Config) {
	h.GET("/healthz", func(ctx context.Context, r *http.Request) web.Encoder {
		return web.NewJSONResponse(status{Status: "ok", Build: cfg.Build})
	})

	h.GET("/readyz", func(ctx context.Context, r *http.Request) web.Encoder {
		if cfg.Ready != nil {
			if err := cfg.Ready(ctx); err != nil {
				return errs.Newf(errs.Unavailable, "not ready: %s", err)
			}
		}
		return web.NewJSONResponse(status{Status: "ready", Build: cfg.Build})
	})

	if cfg.Registry != nil {
		h.HandleRaw("GET /metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{Registry: cfg.Registry}))
	}
}
