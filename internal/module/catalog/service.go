package catalog

import (
	"context"
	"strings"

	"github.com/openshelf/openshelf/internal/domain"
)

// catalogService implements domain.CatalogService.
type catalogService struct {
	books      domain.BookRepository
	categories domain.CategoryRepository
}

// NewService creates a CatalogService over the given repositories.
func NewService(books domain.BookRepository, categories domain.CategoryRepository) domain.CatalogService {
	return &catalogService{books: books, categories: categories}
}

// CreateBook validates the referenced category, assigns the slug from the
// title, and persists the book.
func (s *catalogService) CreateBook(ctx context.Context, input domain.CreateBookInput) (*domain.Book, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, domain.Unprocessable("title is required")
	}
	if input.Stock < 0 {
		return nil, domain.Unprocessable("stock cannot be negative")
	}

	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.Unprocessable("category does not exist")
		}
		return nil, err
	}

	book := &domain.Book{
		Title:       title,
		Slug:        slugify(title),
		Author:      strings.TrimSpace(input.Author),
		ISBN:        strings.TrimSpace(input.ISBN),
		Description: input.Description,
		Stock:       input.Stock,
		CategoryID:  input.CategoryID,
	}

	if err := s.books.Create(ctx, book); err != nil {
		return nil, err
	}
	return s.books.GetByID(ctx, book.ID)
}

func (s *catalogService) GetBook(ctx context.Context, id uint) (*domain.Book, error) {
	return s.books.GetByID(ctx, id)
}

func (s *catalogService) GetBookBySlug(ctx context.Context, slug string) (*domain.Book, error) {
	return s.books.GetBySlug(ctx, slug)
}

func (s *catalogService) ListBooks(ctx context.Context, q domain.ListQuery, filter domain.BookFilter) (*domain.PageResult[domain.Book], error) {
	return s.books.List(ctx, q, filter)
}

// UpdateBook applies a partial update: nil fields leave the stored value
// untouched. A changed title reassigns the slug.
func (s *catalogService) UpdateBook(ctx context.Context, id uint, input domain.UpdateBookInput) (*domain.Book, error) {
	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, domain.Unprocessable("title cannot be empty")
		}
		book.Title = title
		book.Slug = slugify(title)
	}
	if input.Author != nil {
		book.Author = strings.TrimSpace(*input.Author)
	}
	if input.ISBN != nil {
		book.ISBN = strings.TrimSpace(*input.ISBN)
	}
	if input.Description != nil {
		book.Description = *input.Description
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, domain.Unprocessable("stock cannot be negative")
		}
		book.Stock = *input.Stock
	}
	if input.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *input.CategoryID); err != nil {
			if domain.IsNotFound(err) {
				return nil, domain.Unprocessable("category does not exist")
			}
			return nil, err
		}
		book.CategoryID = *input.CategoryID
	}

	if err := s.books.Update(ctx, book); err != nil {
		return nil, err
	}
	return s.books.GetByID(ctx, book.ID)
}

func (s *catalogService) DeleteBook(ctx context.Context, id uint) error {
	return s.books.Delete(ctx, id)
}

// CreateCategory assigns the slug from the name and persists the category.
// A duplicate name or slug surfaces as Conflict.
func (s *catalogService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Unprocessable("name is required")
	}

	category := &domain.Category{
		Name: name,
		Slug: slugify(name),
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *catalogService) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return s.categories.GetBySlug(ctx, slug)
}

func (s *catalogService) ListCategories(ctx context.Context, q domain.ListQuery) (*domain.PageResult[domain.Category], error) {
	return s.categories.List(ctx, q)
}

func (s *catalogService) DeleteCategory(ctx context.Context, id uint) error {
	return s.categories.Delete(ctx, id)
}
