package domain

import "context"

// Category groups books. Slug is server-assigned from Name and unique.
type Category struct {
	Model
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Slug string `gorm:"size:120;uniqueIndex;not null" json:"slug"`
}

// Book is a catalog entry. Stock counts copies currently available to borrow.
type Book struct {
	Model
	Title       string    `gorm:"size:255;not null" json:"title"`
	Slug        string    `gorm:"size:280;uniqueIndex;not null" json:"slug"`
	Author      string    `gorm:"size:255;not null" json:"author"`
	ISBN        string    `gorm:"size:20;uniqueIndex;not null" json:"isbn"`
	Description string    `gorm:"type:text" json:"description"`
	Stock       int       `gorm:"not null;default:0" json:"stock"`
	CategoryID  uint      `gorm:"index;not null" json:"category_id"`
	Category    *Category `json:"category,omitempty"`
}

// BookFilter narrows book list queries beyond the common list parameters.
type BookFilter struct {
	CategorySlug string
}

// BookRepository defines data access for books.
type BookRepository interface {
	Create(ctx context.Context, book *Book) error
	GetByID(ctx context.Context, id uint) (*Book, error)
	GetBySlug(ctx context.Context, slug string) (*Book, error)
	List(ctx context.Context, q ListQuery, filter BookFilter) (*PageResult[Book], error)
	Update(ctx context.Context, book *Book) error
	Delete(ctx context.Context, id uint) error
}

// CategoryRepository defines data access for categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error
	GetByID(ctx context.Context, id uint) (*Category, error)
	GetBySlug(ctx context.Context, slug string) (*Category, error)
	List(ctx context.Context, q ListQuery) (*PageResult[Category], error)
	Delete(ctx context.Context, id uint) error
}

// CatalogService defines the business logic for books and categories.
type CatalogService interface {
	CreateBook(ctx context.Context, input CreateBookInput) (*Book, error)
	GetBook(ctx context.Context, id uint) (*Book, error)
	GetBookBySlug(ctx context.Context, slug string) (*Book, error)
	ListBooks(ctx context.Context, q ListQuery, filter BookFilter) (*PageResult[Book], error)
	UpdateBook(ctx context.Context, id uint, input UpdateBookInput) (*Book, error)
	DeleteBook(ctx context.Context, id uint) error

	CreateCategory(ctx context.Context, name string) (*Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*Category, error)
	ListCategories(ctx context.Context, q ListQuery) (*PageResult[Category], error)
	DeleteCategory(ctx context.Context, id uint) error
}

// CreateBookInput carries the client-supplied fields for a new book.
// Server-assigned fields (ID, slug, timestamps) are absent.
type CreateBookInput struct {
	Title       string
	Author      string
	ISBN        string
	Description string
	Stock       int
	CategoryID  uint
}

// UpdateBookInput is the create input with every field optional. Nil fields
// leave the stored value untouched.
type UpdateBookInput struct {
	Title       *string
	Author      *string
	ISBN        *string
	Description *string
	Stock       *int
	CategoryID  *uint
}
