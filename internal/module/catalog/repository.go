package catalog

import (
	"context"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/domain"
	"github.com/openshelf/openshelf/internal/pkg"
)

// Searchable columns and client-facing sort keys for book list queries.
var (
	bookSearchFields = []string{"title", "author", "isbn"}
	bookSortFields   = map[string]string{
		"title":      "title",
		"author":     "author",
		"stock":      "stock",
		"created_at": "created_at",
	}

	categorySearchFields = []string{"name"}
	categorySortFields   = map[string]string{
		"name":       "name",
		"created_at": "created_at",
	}
)

// bookRepository implements domain.BookRepository using GORM.
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository creates a BookRepository backed by the given database.
func NewBookRepository(db *gorm.DB) domain.BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, book *domain.Book) error {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		return pkg.MapDBError(err)
	}
	return nil
}

func (r *bookRepository) GetByID(ctx context.Context, id uint) (*domain.Book, error) {
	var book domain.Book
	if err := r.db.WithContext(ctx).Preload("Category").First(&book, id).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &book, nil
}

func (r *bookRepository) GetBySlug(ctx context.Context, slug string) (*domain.Book, error) {
	var book domain.Book
	if err := r.db.WithContext(ctx).Preload("Category").Where("slug = ?", slug).First(&book).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &book, nil
}

// List returns one page of books matching the query and filter.
func (r *bookRepository) List(ctx context.Context, q domain.ListQuery, filter domain.BookFilter) (*domain.PageResult[domain.Book], error) {
	scopes := []func(*gorm.DB) *gorm.DB{
		func(db *gorm.DB) *gorm.DB { return db.Preload("Category") },
	}
	if filter.CategorySlug != "" {
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("category_id IN (?)",
				r.db.Model(&domain.Category{}).Select("id").Where("slug = ?", filter.CategorySlug))
		})
	}

	result, err := pkg.Paginate[domain.Book](r.db.WithContext(ctx), q, bookSearchFields, bookSortFields, scopes...)
	if err != nil {
		return nil, pkg.MapDBError(err)
	}
	return result, nil
}

func (r *bookRepository) Update(ctx context.Context, book *domain.Book) error {
	if err := r.db.WithContext(ctx).Save(book).Error; err != nil {
		return pkg.MapDBError(err)
	}
	return nil
}

// Delete soft-deletes a book. Missing or already-deleted rows yield NotFound.
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Book{}, id)
	if result.Error != nil {
		return pkg.MapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NotFound("book not found")
	}
	return nil
}

// categoryRepository implements domain.CategoryRepository using GORM.
type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a CategoryRepository backed by the given database.
func NewCategoryRepository(db *gorm.DB) domain.CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return pkg.MapDBError(err)
	}
	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*domain.Category, error) {
	var category domain.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &category, nil
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	var category domain.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context, q domain.ListQuery) (*domain.PageResult[domain.Category], error) {
	result, err := pkg.Paginate[domain.Category](r.db.WithContext(ctx), q, categorySearchFields, categorySortFields)
	if err != nil {
		return nil, pkg.MapDBError(err)
	}
	return result, nil
}

func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Category{}, id)
	if result.Error != nil {
		return pkg.MapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NotFound("category not found")
	}
	return nil
}
