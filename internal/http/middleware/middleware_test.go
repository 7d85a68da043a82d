package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func newEngine(adminKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Logger(zerolog.Nop()))
	r.POST("/guarded", AdminKey(adminKey), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestAdminKeyRejectsWrongKey(t *testing.T) {
	r := newEngine("s3cret")

	req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
	req.Header.Set(AdminKeyHeader, "nope")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "UNAUTHORIZED") {
		t.Fatalf("expected error envelope, got %s", w.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/guarded", nil)
	req.Header.Set(AdminKeyHeader, "s3cret")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
}

func TestAdminKeyDisabledWhenEmpty(t *testing.T) {
	r := newEngine("")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/guarded", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
}

func TestRequestIDPropagates(t *testing.T) {
	r := newEngine("")

	req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("expected propagated id, got %q", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/guarded", nil))
	if got := w.Header().Get(RequestIDHeader); !strings.HasPrefix(got, "req_") {
		t.Fatalf("expected generated id, got %q", got)
	}
}
