package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/auth"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/workspace"
)

const (
	WorkspaceCookie = "dash_sid"
	WorkspaceHeader = "X-Workspace-Id"
	CtxWorkspace    = "workspace"
)

// WorkspaceMiddleware attaches the caller's workspace, creating one when the
// request carries no known id. The id travels back in a cookie and header.
func WorkspaceMiddleware(registry *workspace.Registry, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(WorkspaceHeader))
		if id == "" {
			id, _ = c.Cookie(WorkspaceCookie)
		}

		ws, err := registry.Open(id)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "service is shutting down"})
			c.Abort()
			return
		}

		if ws.ID != id {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(WorkspaceCookie, ws.ID, 0, "/", "", secureCookie, true)
		}
		c.Header(WorkspaceHeader, ws.ID)
		c.Set(CtxWorkspace, ws)

		if u := ws.Session.CurrentUser(); u != nil {
			auth.SetUser(c, u)
		}

		c.Next()
	}
}

// AwaitSession waits, up to timeout, for the workspace session to resolve
// and then exposes its user to later handlers.
func AwaitSession(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws := Workspace(c)
		if ws == nil {
			c.Next()
			return
		}

		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case <-ws.Session.Ready():
		case <-timer.C:
		case <-c.Request.Context().Done():
		}

		if u := ws.Session.CurrentUser(); u != nil {
			auth.SetUser(c, u)
		}
		c.Next()
	}
}

// Workspace returns the workspace set by WorkspaceMiddleware, or nil.
func Workspace(c *gin.Context) *workspace.Workspace {
	v, ok := c.Get(CtxWorkspace)
	if !ok {
		return nil
	}
	ws, _ := v.(*workspace.Workspace)
	return ws
}
