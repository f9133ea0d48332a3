// Package bridgetest drives bridge routes through the full middleware stack
// in tests.
package bridgetest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrazmi/helix/bridge/scaffolding/mid"
	"github.com/jrazmi/helix/infrastructure/web"
	"github.com/jrazmi/helix/sdk/logger"
	"github.com/jrazmi/helix/sdk/telemetry"
)

// APIRoute is the prefix routes are registered under.
const APIRoute = "/api/v1"

// NewHandler builds a handler with the production error and panic
// middleware and lets register add routes under APIRoute.
func NewHandler(register func(group *web.RouteGroup)) *web.WebHandler {
	log := logger.NewDiscard()
	h := web.NewWebHandler(web.HandlerOptions{},
		web.WithLogging(log),
		web.WithTelemetry(telemetry.NewTelemetry()),
		web.WithGlobalMiddleware(mid.Errors(log), mid.Panics()),
	)
	register(h.Group(APIRoute))
	return h
}

// Do sends a request to h. A non-nil body is encoded as JSON unless it is
// already a string.
func Do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(v)
	default:
		data, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, APIRoute+path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// Record decodes a {"record": ...} envelope.
func Record[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var body struct {
		Record T `json:"record"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Record
}

// Records decodes a {"records": [...]} envelope.
func Records[T any](t *testing.T, rec *httptest.ResponseRecorder) []T {
	t.Helper()
	var body struct {
		Records []T `json:"records"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Records
}

// ErrorCode returns the code of an errs.Error body.
func ErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Code
}
