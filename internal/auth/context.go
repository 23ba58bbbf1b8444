package auth

import (
	"github.com/gin-gonic/gin"
)

const CtxUser = "auth_user"

// SetUser stores the authenticated user in the Gin context.
func SetUser(c *gin.Context, u *User) {
	c.Set(CtxUser, u)
}

// UserFromContext returns the user set by RequireUser or the workspace
// middleware, or nil.
func UserFromContext(c *gin.Context) *User {
	v, ok := c.Get(CtxUser)
	if !ok {
		return nil
	}
	u, _ := v.(*User)
	return u
}
