package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/salesday/backend/internal/maps"
	"github.com/salesday/backend/internal/routing"
	"github.com/salesday/backend/internal/service"
	"github.com/salesday/backend/internal/visitday"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func healthzCode(t *testing.T, store Pinger) int {
	t.Helper()
	orch := service.NewOrchestrator(visitday.NewSession(), routing.Local{}, maps.Placeholder{})
	h := &Handler{Orchestrator: orch, Store: store, Logger: zerolog.Nop()}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/healthz", h.Healthz)

	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestHealthzWithoutStore(t *testing.T) {
	if code := healthzCode(t, nil); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
}

func TestHealthzStoreDown(t *testing.T) {
	down := pingerFunc(func(context.Context) error { return errors.New("connection refused") })
	if code := healthzCode(t, down); code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", code)
	}
}
