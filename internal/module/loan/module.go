package loan

import (
	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/pkg"
)

// Module wires loan and reservation routes into the application.
type Module struct {
	handler *Handler
}

// NewModule creates the loan module. Panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("loan.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

// RegisterRoutes registers loan and reservation API routes.
func (m *Module) RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup) {
	loans := api.Group("/loans")
	loans.POST("", pkg.Handle(m.handler.Borrow))
	loans.GET("", pkg.Handle(m.handler.List))
	loans.GET("/:id", pkg.Handle(m.handler.Get))
	loans.POST("/:id/return", pkg.Handle(m.handler.Return))

	reservations := api.Group("/reservations")
	reservations.POST("", pkg.Handle(m.handler.Reserve))
	reservations.GET("", pkg.Handle(m.handler.ListReservations))
	reservations.POST("/:id/cancel", pkg.Handle(m.handler.Cancel))
}
