package catalog

import (
	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/domain"
	"github.com/openshelf/openshelf/internal/pkg"
)

// Handler handles REST API requests for books and categories.
type Handler struct {
	svc domain.CatalogService
}

// NewHandler creates a Handler with the given service.
func NewHandler(svc domain.CatalogService) *Handler {
	return &Handler{svc: svc}
}

// CreateBook handles POST /api/books.
func (h *Handler) CreateBook(c *gin.Context) (*pkg.Envelope, error) {
	var req CreateBookRequest
	if err := pkg.Bind(c, &req); err != nil {
		return nil, err
	}

	book, err := h.svc.CreateBook(c.Request.Context(), domain.CreateBookInput{
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		Description: req.Description,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		return nil, err
	}
	return pkg.Created(book), nil
}

// GetBook handles GET /api/books/:id.
func (h *Handler) GetBook(c *gin.Context) (*pkg.Envelope, error) {
	id, err := pkg.ParamID(c, "id")
	if err != nil {
		return nil, err
	}
	book, err := h.svc.GetBook(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	return pkg.OK(book), nil
}

// GetBookBySlug handles GET /api/books/slug/:slug.
func (h *Handler) GetBookBySlug(c *gin.Context) (*pkg.Envelope, error) {
	book, err := h.svc.GetBookBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		return nil, err
	}
	return pkg.OK(book), nil
}

// ListBooks handles GET /api/books. Filter values that fail validation are
// dropped rather than failing the whole listing.
func (h *Handler) ListBooks(c *gin.Context) (*pkg.Envelope, error) {
	q := pkg.ParseListQuery(c)

	var filter ListBooksFilter
	if _, ok := pkg.Check(c, &filter); !ok {
		filter = ListBooksFilter{}
	}

	result, err := h.svc.ListBooks(c.Request.Context(), q, domain.BookFilter{CategorySlug: filter.Category})
	if err != nil {
		return nil, err
	}
	return pkg.Paged(result), nil
}

// UpdateBook handles PATCH /api/books/:id.
func (h *Handler) UpdateBook(c *gin.Context) (*pkg.Envelope, error) {
	id, err := pkg.ParamID(c, "id")
	if err != nil {
		return nil, err
	}

	var req UpdateBookRequest
	if err := pkg.Bind(c, &req); err != nil {
		return nil, err
	}

	book, err := h.svc.UpdateBook(c.Request.Context(), id, domain.UpdateBookInput{
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		Description: req.Description,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		return nil, err
	}
	return pkg.OK(book), nil
}

// DeleteBook handles DELETE /api/books/:id.
func (h *Handler) DeleteBook(c *gin.Context) (*pkg.Envelope, error) {
	id, err := pkg.ParamID(c, "id")
	if err != nil {
		return nil, err
	}
	if err := h.svc.DeleteBook(c.Request.Context(), id); err != nil {
		return nil, err
	}
	return pkg.OK(nil).WithMessage("book deleted"), nil
}

// CreateCategory handles POST /api/books/categories.
func (h *Handler) CreateCategory(c *gin.Context) (*pkg.Envelope, error) {
	var req CreateCategoryRequest
	if err := pkg.Bind(c, &req); err != nil {
		return nil, err
	}

	category, err := h.svc.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		return nil, err
	}
	return pkg.Created(category), nil
}

// GetCategoryBySlug handles GET /api/books/categories/slug/:slug.
func (h *Handler) GetCategoryBySlug(c *gin.Context) (*pkg.Envelope, error) {
	category, err := h.svc.GetCategoryBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		return nil, err
	}
	return pkg.OK(category), nil
}

// ListCategories handles GET /api/books/categories.
func (h *Handler) ListCategories(c *gin.Context) (*pkg.Envelope, error) {
	q := pkg.ParseListQuery(c)
	result, err := h.svc.ListCategories(c.Request.Context(), q)
	if err != nil {
		return nil, err
	}
	return pkg.Paged(result), nil
}

// DeleteCategory handles DELETE /api/books/categories/:id.
func (h *Handler) DeleteCategory(c *gin.Context) (*pkg.Envelope, error) {
	id, err := pkg.ParamID(c, "id")
	if err != nil {
		return nil, err
	}
	if err := h.svc.DeleteCategory(c.Request.Context(), id); err != nil {
		return nil, err
	}
	return pkg.OK(nil).WithMessage("category deleted"), nil
}
