package domain

import (
	"time"

	"gorm.io/gorm"
)

// Model is the common base struct for all persisted records. Rows are soft
// deleted: DeletedAt is set instead of removing the row, and GORM excludes
// soft-deleted rows from queries automatically.
type Model struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ListQuery holds the normalized pagination, search, and sort parameters
// extracted from a list request's query string. It is always well-formed:
// Page >= 1 and Limit within [1, ceiling].
type ListQuery struct {
	Page     int
	Limit    int
	Search   string
	OrderBy  string
	OrderDir string
}

// Offset returns the row offset for the query.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// ListMeta is the pagination metadata returned alongside list data.
type ListMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// PageResult couples one page of rows with its pagination metadata. Data and
// Total are read under the same filter in two sequential queries; a write in
// between can skew them slightly, which is accepted.
type PageResult[T any] struct {
	Data []T
	Meta ListMeta
}
