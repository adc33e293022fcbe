package member

import (
	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/pkg"
)

// Module wires member routes into the application.
type Module struct {
	handler *Handler
}

// NewModule creates the member module. Panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("member.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

// RegisterRoutes registers member API routes.
func (m *Module) RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup) {
	members := api.Group("/members")
	members.POST("", pkg.Handle(m.handler.Register))
	members.GET("", pkg.Handle(m.handler.List))
	members.GET("/:id", pkg.Handle(m.handler.Get))
	members.PATCH("/:id", pkg.Handle(m.handler.Update))
	members.DELETE("/:id", pkg.Handle(m.handler.Delete))
}
