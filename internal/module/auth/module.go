package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/pkg"
)

// Module wires authentication routes into the application.
type Module struct {
	handler *Handler
}

// NewModule creates the auth module. Panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("auth.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

// RegisterRoutes registers auth API routes.
func (m *Module) RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup) {
	auth := api.Group("/auth")
	auth.POST("/login", pkg.Handle(m.handler.Login))
	auth.POST("/logout", pkg.Handle(m.handler.Logout))
	auth.GET("/session", pkg.Handle(m.handler.Session))
}
