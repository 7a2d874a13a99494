package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"go-soilhealth/logger"
)

func newEngine(base *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(base), AccessLog(base))
	r.GET("/ping", func(c *gin.Context) {
		logger.FromContext(c.Request.Context(), base).Info("handler")
		c.String(http.StatusOK, c.GetString("requestID"))
	})
	return r
}

func TestRequestIDGenerated(t *testing.T) {
	r := newEngine(zap.NewNop())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	id := w.Header().Get(RequestIDHeader)
	if len(id) != 16 {
		t.Fatalf("request id %q, want 16 chars", id)
	}
	if w.Body.String() != id {
		t.Fatalf("context id %q differs from header %q", w.Body.String(), id)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	r := newEngine(zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get(RequestIDHeader); got != "abc123" {
		t.Fatalf("request id = %q", got)
	}
}

func TestAccessLogCarriesRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := newEngine(zap.New(core))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 {
		t.Fatalf("expected one access log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["req_id"] != "req-1" || fields["route"] != "/ping" || fields["status"] != int64(200) {
		t.Fatalf("unexpected fields %v", fields)
	}
	if logs.FilterMessage("handler").FilterField(zap.String("req_id", "req-1")).Len() != 1 {
		t.Fatalf("handler log missing req_id")
	}
}
