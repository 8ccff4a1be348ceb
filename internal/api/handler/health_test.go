package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealthHandler_Liveness(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/health", nil), rec)

	if err := NewHealthHandler().Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decode(t, rec)
	if rec.Code != http.StatusOK || resp["status"] != "healthy" || resp["message"] != healthMessage {
		t.Fatalf("unexpected response: %d %v", rec.Code, resp)
	}
}

func TestReadinessHandler(t *testing.T) {
	cases := []struct {
		name   string
		deps   map[string]Pinger
		code   int
		status string
	}{
		{"all ok", map[string]Pinger{"store": stubPinger{}}, http.StatusOK, "ok"},
		{"degraded", map[string]Pinger{"store": stubPinger{err: errors.New("refused")}}, http.StatusServiceUnavailable, "degraded"},
		{"no deps", nil, http.StatusOK, "ok"},
	}
	for _, tc := range cases {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)

		if err := NewReadinessHandler(tc.deps).Readiness(c); err != nil {
			t.Fatalf("%s: handler error: %v", tc.name, err)
		}
		if rec.Code != tc.code || decode(t, rec)["status"] != tc.status {
			t.Fatalf("%s: unexpected response %d %s", tc.name, rec.Code, rec.Body.String())
		}
	}
}
