package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	httpapi "github.com/GoSim-25-26J-441/go-staff-dashboard/internal/api/http"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/api/http/middleware"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/auth"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/feedback"
)

func (h *Handler) signIn(c *gin.Context) {
	ws := middleware.Workspace(c)

	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	if !h.throttle.Allow(auth.AddrKey(c.ClientIP())) {
		h.fail(c, &auth.AuthError{Code: auth.CodeTooManyRequests})
		return
	}

	user, err := ws.Auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "user": user, "session": ws.Session.Snapshot()})
}

func (h *Handler) signUp(c *gin.Context) {
	ws := middleware.Workspace(c)

	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	if !h.throttle.Allow(auth.AddrKey(c.ClientIP())) {
		h.fail(c, &auth.AuthError{Code: auth.CodeTooManyRequests})
		return
	}

	user, err := ws.Auth.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "user": user, "session": ws.Session.Snapshot()})
}

func (h *Handler) signOut(c *gin.Context) {
	ws := middleware.Workspace(c)

	if err := ws.Auth.SignOut(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	ws.Directory.Deactivate()

	c.JSON(http.StatusOK, gin.H{"ok": true, "session": ws.Session.Snapshot()})
}

func (h *Handler) session(c *gin.Context) {
	ws := middleware.Workspace(c)
	c.JSON(http.StatusOK, gin.H{"ok": true, "session": ws.Session.Snapshot()})
}

func (h *Handler) sessionEvents(c *gin.Context) {
	ws := middleware.Workspace(c)
	httpapi.StreamEvents(c, "session", ws.Session.Watch(c.Request.Context()))
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := feedback.Status(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("identity request failed",
			zap.String("request_id", middleware.GetRequestID(c.Request.Context())),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"ok": false, "error": feedback.Message(err), "code": auth.CodeOf(err)})
}
