package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/pkg"
)

// Module wires the admin stats API and the rendered pages into the
// application.
type Module struct {
	handler *Handler
}

// NewModule creates the admin module. Panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("admin.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

// RegisterRoutes registers the stats API route and the page routes.
func (m *Module) RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup) {
	api.GET("/admin/stats", pkg.Handle(m.handler.GetStats))

	pages.GET("/", m.handler.HomePage)
	pages.GET("/auth", m.handler.AuthPage)
	pages.GET("/admin", m.handler.DashboardPage)
}
