package loan

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/domain"
	"github.com/openshelf/openshelf/internal/pkg"
)

var (
	loanSearchFields = []string{"reference"}
	loanSortFields   = map[string]string{
		"due_at":     "due_at",
		"status":     "status",
		"created_at": "created_at",
	}

	reservationSortFields = map[string]string{
		"status":     "status",
		"created_at": "created_at",
	}
)

// loanRepository implements domain.LoanRepository using GORM. Constructed
// over the shared handle for reads, or over a transaction handle inside the
// service's circulation flows.
type loanRepository struct {
	db *gorm.DB
}

// NewRepository creates a LoanRepository backed by the given database handle.
func NewRepository(db *gorm.DB) domain.LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) CreateLoan(ctx context.Context, loan *domain.Loan) error {
	if err := r.db.WithContext(ctx).Create(loan).Error; err != nil {
		return pkg.MapDBError(err)
	}
	return nil
}

func (r *loanRepository) GetLoanByID(ctx context.Context, id uint) (*domain.Loan, error) {
	var loan domain.Loan
	if err := r.db.WithContext(ctx).Preload("Book").Preload("Member").First(&loan, id).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &loan, nil
}

func (r *loanRepository) ListLoans(ctx context.Context, q domain.ListQuery, filter domain.LoanFilter) (*domain.PageResult[domain.Loan], error) {
	scopes := []func(*gorm.DB) *gorm.DB{
		func(db *gorm.DB) *gorm.DB { return db.Preload("Book").Preload("Member") },
	}
	if filter.MemberID != 0 {
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("member_id = ?", filter.MemberID)
		})
	}
	if filter.Status != "" {
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("status = ?", filter.Status)
		})
	}

	result, err := pkg.Paginate[domain.Loan](r.db.WithContext(ctx), q, loanSearchFields, loanSortFields, scopes...)
	if err != nil {
		return nil, pkg.MapDBError(err)
	}
	return result, nil
}

func (r *loanRepository) UpdateLoan(ctx context.Context, loan *domain.Loan) error {
	if err := r.db.WithContext(ctx).Save(loan).Error; err != nil {
		return pkg.MapDBError(err)
	}
	return nil
}

// ActiveLoanExists reports whether the member already holds an active loan
// for the book.
func (r *loanRepository) ActiveLoanExists(ctx context.Context, bookID, memberID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Loan{}).
		Where("book_id = ? AND member_id = ? AND status = ?", bookID, memberID, domain.LoanActive).
		Count(&count).Error
	if err != nil {
		return false, pkg.MapDBError(err)
	}
	return count > 0, nil
}

func (r *loanRepository) CreateReservation(ctx context.Context, res *domain.Reservation) error {
	if err := r.db.WithContext(ctx).Create(res).Error; err != nil {
		return pkg.MapDBError(err)
	}
	return nil
}

func (r *loanRepository) GetReservationByID(ctx context.Context, id uint) (*domain.Reservation, error) {
	var res domain.Reservation
	if err := r.db.WithContext(ctx).Preload("Book").Preload("Member").First(&res, id).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &res, nil
}

func (r *loanRepository) ListReservations(ctx context.Context, q domain.ListQuery, filter domain.ReservationFilter) (*domain.PageResult[domain.Reservation], error) {
	scopes := []func(*gorm.DB) *gorm.DB{
		func(db *gorm.DB) *gorm.DB { return db.Preload("Book").Preload("Member") },
	}
	if filter.MemberID != 0 {
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("member_id = ?", filter.MemberID)
		})
	}
	if filter.Status != "" {
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("status = ?", filter.Status)
		})
	}

	result, err := pkg.Paginate[domain.Reservation](r.db.WithContext(ctx), q, nil, reservationSortFields, scopes...)
	if err != nil {
		return nil, pkg.MapDBError(err)
	}
	return result, nil
}

func (r *loanRepository) UpdateReservation(ctx context.Context, res *domain.Reservation) error {
	if err := r.db.WithContext(ctx).Save(res).Error; err != nil {
		return pkg.MapDBError(err)
	}
	return nil
}

// OldestWaitingReservation returns the earliest waiting reservation for the
// book, or nil when there is none.
func (r *loanRepository) OldestWaitingReservation(ctx context.Context, bookID uint) (*domain.Reservation, error) {
	var res domain.Reservation
	err := r.db.WithContext(ctx).
		Where("book_id = ? AND status = ?", bookID, domain.ReservationWaiting).
		Order("created_at asc").
		First(&res).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkg.MapDBError(err)
	}
	return &res, nil
}
