package catalog

import (
	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/pkg"
)

// Module wires catalog routes into the application.
type Module struct {
	handler *Handler
}

// NewModule creates the catalog module. Panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("catalog.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

// RegisterRoutes registers book and category API routes. Category routes are
// declared before the :id routes so the static segment wins.
func (m *Module) RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup) {
	books := api.Group("/books")

	books.GET("/categories", pkg.Handle(m.handler.ListCategories))
	books.POST("/categories", pkg.Handle(m.handler.CreateCategory))
	books.GET("/categories/slug/:slug", pkg.Handle(m.handler.GetCategoryBySlug))
	books.DELETE("/categories/:id", pkg.Handle(m.handler.DeleteCategory))

	books.GET("", pkg.Handle(m.handler.ListBooks))
	books.POST("", pkg.Handle(m.handler.CreateBook))
	books.GET("/slug/:slug", pkg.Handle(m.handler.GetBookBySlug))
	books.GET("/:id", pkg.Handle(m.handler.GetBook))
	books.PATCH("/:id", pkg.Handle(m.handler.UpdateBook))
	books.DELETE("/:id", pkg.Handle(m.handler.DeleteBook))
}
