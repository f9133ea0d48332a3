package mid_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrazmi/helix/bridge/scaffolding/errs"
	"github.com/jrazmi/helix/bridge/scaffolding/mid"
	"github.com/jrazmi/helix/core/repositories"
	"github.com/jrazmi/helix/infrastructure/web"
	"github.com/jrazmi/helix/sdk/logger"
)

type okBody struct{}

func (okBody) Encode() ([]byte, string, error) {
	return []byte(`{"ok":true}`), "application/json", nil
}

func serve(t *testing.T, h *web.WebHandler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestErrorsMapsRepositoryErrors(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewDefault(logger.WithOutput(&buf))

	h := web.NewWebHandler(web.HandlerOptions{}, web.WithGlobalMiddleware(mid.Errors(log)))
	h.GET("/missing", func(ctx context.Context, r *http.Request) web.Encoder {
		return errs.FromRepository(fmt.Errorf("get: %w", repositories.ErrNotFound))
	})
	h.GET("/conflict", func(ctx context.Context, r *http.Request) web.Encoder {
		return errs.FromRepository(repositories.ErrVersionConflict)
	})
	h.GET("/boom", func(ctx context.Context, r *http.Request) web.Encoder {
		return errs.FromRepository(errors.New("dial tcp: connection refused"))
	})

	rec := serve(t, h, http.MethodGet, "/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"not_found"`)

	rec = serve(t, h, http.MethodGet, "/conflict")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(t, h, http.MethodGet, "/boom")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
	assert.Contains(t, buf.String(), "connection refused")
}

func TestPanicsBecomeInternalErrors(t *testing.T) {
	h := web.NewWebHandler(web.HandlerOptions{},
		web.WithGlobalMiddleware(mid.Errors(logger.NewDiscard()), mid.Panics()))
	h.GET("/panic", func(ctx context.Context, r *http.Request) web.Encoder {
		panic("kaboom")
	})

	rec := serve(t, h, http.MethodGet, "/panic")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal Server Error")
}

func TestMetricsCountsByPattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := mid.NewHTTPMetrics(reg, "helix")

	h := web.NewWebHandler(web.HandlerOptions{}, web.WithGlobalMiddleware(mid.Metrics(m)))
	h.GET("/users/{id}", func(ctx context.Context, r *http.Request) web.Encoder {
		return okBody{}
	})

	serve(t, h, http.MethodGet, "/users/a")
	serve(t, h, http.MethodGet, "/users/b")

	n, err := testutil.GatherAndCount(reg, "helix_api_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "both requests share one series")
}

func TestRateLimit(t *testing.T) {
	rl := mid.NewRateLimiter(mid.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 2, IdleTTL: time.Minute})

	h := web.NewWebHandler(web.HandlerOptions{},
		web.WithGlobalMiddleware(mid.Errors(logger.NewDiscard()), mid.RateLimit(rl)))
	h.GET("/ping", func(ctx context.Context, r *http.Request) web.Encoder {
		return okBody{}
	})

	assert.Equal(t, http.StatusOK, serve(t, h, http.MethodGet, "/ping").Code)
	assert.Equal(t, http.StatusOK, serve(t, h, http.MethodGet, "/ping").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(t, h, http.MethodGet, "/ping").Code)
}

func TestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewDefault(logger.WithOutput(&buf))

	h := web.NewWebHandler(web.HandlerOptions{}, web.WithGlobalMiddleware(mid.Logger(log)))
	h.GET("/ping", func(ctx context.Context, r *http.Request) web.Encoder {
		return okBody{}
	})

	serve(t, h, http.MethodGet, "/ping?x=1")
	assert.Contains(t, buf.String(), "request completed")
	assert.Contains(t, buf.String(), "/ping?x=1")
	assert.Contains(t, buf.String(), `"statuscode":200`)
}
