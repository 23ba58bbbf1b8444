package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/api/http/middleware"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/directory"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/employees/domain"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/feedback"
)

type Handler struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{logger: logger}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.Use(requireSession)
	rg.POST("", h.activate)
	rg.GET("", h.listing)
	rg.DELETE("", h.deactivate)
	rg.DELETE("/:id", h.delete)
}

type listingResp struct {
	OK          bool               `json:"ok"`
	State       directory.State    `json:"state"`
	Error       string             `json:"error,omitempty"`
	Query       directory.Query    `json:"query"`
	Employees   []*domain.Employee `json:"employees"`
	Departments []string           `json:"departments"`
}

func snapshot(v *directory.View) listingResp {
	l := v.Snapshot()
	resp := listingResp{
		OK:          true,
		State:       l.State,
		Query:       l.Query,
		Employees:   l.Employees,
		Departments: l.Departments,
	}
	if l.State == directory.StateFailed {
		resp.Error = feedback.Message(l.Err)
	}
	return resp
}

// activate starts the initial fetch. With ?wait=true it answers once the
// fetch has settled.
func (h *Handler) activate(c *gin.Context) {
	view := middleware.Workspace(c).Directory
	settled := view.Activate(c.Request.Context())

	if c.Query("wait") == "true" {
		select {
		case <-settled:
		case <-c.Request.Context().Done():
			return
		}
	}

	c.JSON(http.StatusAccepted, snapshot(view))
}

func (h *Handler) listing(c *gin.Context) {
	view := middleware.Workspace(c).Directory

	if search, ok := c.GetQuery("search"); ok {
		view.SetSearchTerm(search)
	}
	if dept, ok := c.GetQuery("department"); ok {
		view.SetDepartmentFilter(dept)
	}

	c.JSON(http.StatusOK, snapshot(view))
}

func (h *Handler) delete(c *gin.Context) {
	view := middleware.Workspace(c).Directory
	id := strings.TrimSpace(c.Param("id"))

	if err := view.Delete(c.Request.Context(), id); err != nil {
		if feedback.Status(err) >= http.StatusInternalServerError {
			h.logger.Error("directory delete failed",
				zap.String("request_id", middleware.GetRequestID(c.Request.Context())),
				zap.String("id", id),
				zap.Error(err),
			)
		}
		c.JSON(feedback.Status(err), gin.H{"ok": false, "error": feedback.Message(err)})
		return
	}

	c.JSON(http.StatusOK, snapshot(view))
}

func (h *Handler) deactivate(c *gin.Context) {
	middleware.Workspace(c).Directory.Deactivate()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// requireSession admits only callers whose workspace session is signed in.
func requireSession(c *gin.Context) {
	ws := middleware.Workspace(c)
	if ws == nil || !ws.Session.Snapshot().Authenticated() {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "user not authenticated"})
		c.Abort()
		return
	}
	c.Next()
}
