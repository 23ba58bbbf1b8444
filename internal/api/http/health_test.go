package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		probes     map[string]Probe
		path       string
		wantCode   int
		wantStatus string
		wantChecks map[string]string
	}{
		{"no probes", nil, "/healthz", http.StatusOK, "healthy", nil},
		{"all up", map[string]Probe{"redis": up, "db": up}, "/healthz", http.StatusOK, "healthy", map[string]string{"redis": "up", "db": "up"}},
		{"readiness degraded", map[string]Probe{"redis": down, "db": up}, "/healthz", http.StatusServiceUnavailable, "degraded", map[string]string{"redis": "down", "db": "up"}},
		{"liveness degraded", map[string]Probe{"redis": down}, "/health", http.StatusOK, "degraded", map[string]string{"redis": "down"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			NewHealthHandler("staff-dashboard", "1.0.0", tt.probes).RegisterRoutes(r)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantCode, w.Code)
			var resp HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, "staff-dashboard", resp.Service)
			assert.Equal(t, tt.wantChecks, resp.Checks)
		})
	}
}

func TestStreamEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/events", func(c *gin.Context) {
		ch := make(chan map[string]int, 2)
		ch <- map[string]int{"n": 1}
		ch <- map[string]int{"n": 2}
		close(ch)
		StreamEvents(c, "tick", ch)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))

	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "event: tick\ndata: {\"n\":1}\n\nevent: tick\ndata: {\"n\":2}\n\nevent: end\ndata: {}\n\n", w.Body.String())
}
