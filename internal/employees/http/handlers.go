package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/employees/domain"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/feedback"
)

func (h *Handler) list(c *gin.Context) {
	filter := domain.ListFilter{
		Department: strings.TrimSpace(c.Query("department")),
		Status:     domain.Status(strings.TrimSpace(c.Query("status"))),
	}

	items, err := h.employees.List(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "employees": items})
}

func (h *Handler) get(c *gin.Context) {
	e, err := h.employees.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "employee": e})
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	id, err := h.employees.Create(c.Request.Context(), req.toDomain())
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "id": id})
}

func (h *Handler) update(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	if err := h.employees.Update(c.Request.Context(), id, req.toDomain()); err != nil {
		h.fail(c, err)
		return
	}

	e, err := h.employees.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "employee": e})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.employees.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// fail logs store failures with their cause and answers with the mapped message.
func (h *Handler) fail(c *gin.Context, err error) {
	status := feedback.Status(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("employee request failed",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"ok": false, "error": feedback.Message(err)})
}
