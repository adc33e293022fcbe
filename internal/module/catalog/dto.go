package catalog

// CreateBookRequest is the input for creating a book. Server-assigned fields
// (id, slug, timestamps) are absent.
type CreateBookRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=255"`
	Author      string `json:"author" binding:"required,min=1,max=255"`
	ISBN        string `json:"isbn" binding:"required,min=10,max=20"`
	Description string `json:"description" binding:"max=5000"`
	Stock       int    `json:"stock" binding:"min=0"`
	CategoryID  uint   `json:"category_id" binding:"required"`
}

// UpdateBookRequest is the create request with every field optional. Absent
// fields are left untouched.
type UpdateBookRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=255"`
	Author      *string `json:"author" binding:"omitempty,min=1,max=255"`
	ISBN        *string `json:"isbn" binding:"omitempty,min=10,max=20"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	Stock       *int    `json:"stock" binding:"omitempty,min=0"`
	CategoryID  *uint   `json:"category_id" binding:"omitempty"`
}

// ListBooksFilter is the query-string filter for the book listing.
type ListBooksFilter struct {
	Category string `form:"category" binding:"omitempty,max=100"`
}

// CreateCategoryRequest is the input for creating a category.
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}
