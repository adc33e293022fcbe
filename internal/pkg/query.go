package pkg

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/domain"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100

	// defaultSortColumn is used whenever the client supplies no order_by or
	// one that is not in the sortable map.
	defaultSortColumn = "created_at"
	defaultSortDir    = "desc"
)

// validFieldName matches only identifiers safe to interpolate into SQL.
var validFieldName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ParseListQuery extracts pagination, search, and sort parameters from the
// request query string. It never fails: non-numeric or out-of-range values
// fall back to defaults, limit is clamped to the ceiling, and an order
// direction other than "asc"/"desc" is discarded.
func ParseListQuery(c *gin.Context) domain.ListQuery {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultPage)))
	if page < 1 {
		page = defaultPage
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	orderDir := strings.ToLower(c.Query("orderDir"))
	if orderDir != "asc" && orderDir != "desc" {
		orderDir = ""
	}

	return domain.ListQuery{
		Page:     page,
		Limit:    limit,
		Search:   strings.TrimSpace(c.Query("search")),
		OrderBy:  c.Query("orderBy"),
		OrderDir: orderDir,
	}
}

// Search returns a GORM scope that OR-combines a case-insensitive substring
// match across the given columns. With no search term or no columns it is a
// no-op.
func Search(q domain.ListQuery, columns []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q.Search == "" || len(columns) == 0 {
			return db
		}

		term := "%" + strings.ToLower(q.Search) + "%"
		conds := make([]string, 0, len(columns))
		args := make([]any, 0, len(columns))
		for _, col := range columns {
			if !validFieldName.MatchString(col) {
				continue
			}
			conds = append(conds, "LOWER("+col+") LIKE ?")
			args = append(args, term)
		}
		if len(conds) == 0 {
			return db
		}
		return db.Where(strings.Join(conds, " OR "), args...)
	}
}

// Order returns a GORM scope that sorts by the column the sortable map
// assigns to the client's orderBy key. Unknown keys fall back to the default
// column rather than reaching the query layer.
func Order(q domain.ListQuery, sortable map[string]string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		col := defaultSortColumn
		if mapped, ok := sortable[q.OrderBy]; ok && validFieldName.MatchString(mapped) {
			col = mapped
		}
		dir := q.OrderDir
		if dir == "" {
			dir = defaultSortDir
		}
		return db.Order(col + " " + dir)
	}
}

// Paginate runs the count and row queries for one list request and returns
// the page of rows plus pagination metadata. The filter predicate is the
// conjunction of the extra scopes and the search condition; both queries run
// under it sequentially, without a wrapping transaction. A page beyond the
// last yields empty data with still-valid metadata.
func Paginate[T any](db *gorm.DB, q domain.ListQuery, searchable []string, sortable map[string]string, scopes ...func(*gorm.DB) *gorm.DB) (*domain.PageResult[T], error) {
	var model T
	base := db.Model(&model).Scopes(scopes...).Scopes(Search(q, searchable))

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	rows := make([]T, 0, q.Limit)
	if err := base.
		Scopes(Order(q, sortable)).
		Offset(q.Offset()).
		Limit(q.Limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	return &domain.PageResult[T]{
		Data: rows,
		Meta: NewListMeta(q, total),
	}, nil
}

// NewListMeta computes pagination metadata for a list query and row count.
// TotalPages is ceil(total/limit), 0 when total is 0.
func NewListMeta(q domain.ListQuery, total int64) domain.ListMeta {
	totalPages := 0
	if q.Limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(q.Limit)))
	}
	return domain.ListMeta{
		Page:       q.Page,
		Limit:      q.Limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
