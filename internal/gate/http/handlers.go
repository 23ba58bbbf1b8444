package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/GoSim-25-26J-441/go-staff-dashboard/internal/api/http"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/api/http/middleware"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/gate"
)

type Handler struct{}

func New() *Handler {
	return &Handler{}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.navigate)
	rg.GET("/events", h.navigateEvents)
}

func (h *Handler) navigate(c *gin.Context) {
	ws := middleware.Workspace(c)
	d := gate.Resolve(ws.Session.Snapshot(), c.DefaultQuery("path", gate.HomePath))
	c.JSON(http.StatusOK, gin.H{"ok": true, "decision": d})
}

// navigateEvents streams a new decision whenever the session changes.
func (h *Handler) navigateEvents(c *gin.Context) {
	ws := middleware.Workspace(c)
	path := c.DefaultQuery("path", gate.HomePath)
	httpapi.StreamEvents(c, "decision", gate.Follow(c.Request.Context(), ws.Session, path))
}
