package http

import "github.com/gin-gonic/gin"

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/signin", h.signIn)
	rg.POST("/signup", h.signUp)
	rg.POST("/signout", h.signOut)
	rg.GET("/session", h.session)
	rg.GET("/session/events", h.sessionEvents)
}
