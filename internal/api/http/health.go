package http

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// Probe checks one dependency, such as the database or Redis.
type Probe func(ctx context.Context) error

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Checks    map[string]string `json:"checks,omitempty"`
}

type HealthHandler struct {
	serviceName string
	version     string
	probes      map[string]Probe
}

func NewHealthHandler(serviceName, version string, probes map[string]Probe) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		probes:      probes,
	}
}

func (h *HealthHandler) check(ctx context.Context) HealthResponse {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
	}
	if len(h.probes) == 0 {
		return resp
	}

	names := make([]string, 0, len(h.probes))
	for name := range h.probes {
		names = append(names, name)
	}
	sort.Strings(names)

	resp.Checks = make(map[string]string, len(names))
	for _, name := range names {
		pingCtx, cancel := context.WithTimeout(ctx, 1*time.Second)
		err := h.probes[name](pingCtx)
		cancel()
		if err != nil {
			resp.Checks[name] = "down"
			resp.Status = "degraded"
		} else {
			resp.Checks[name] = "up"
		}
	}
	return resp
}

// HealthCheck always answers 200 so liveness probes only fail on a dead process.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, h.check(c.Request.Context()))
}

// ReadinessCheck answers 503 while any dependency is down.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	resp := h.check(c.Request.Context())
	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.ReadinessCheck)
}
