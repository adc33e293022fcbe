package loan

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/domain"
	"github.com/openshelf/openshelf/internal/pkg"
)

// loanService implements domain.LoanService. Flows that touch a loan row and
// its book's stock together run inside one transaction so the pair always
// changes atomically.
type loanService struct {
	db         *gorm.DB
	repo       domain.LoanRepository
	loanPeriod time.Duration
}

// NewService creates a LoanService over the given database handle. Loans are
// due loanPeriod after they are created.
func NewService(db *gorm.DB, loanPeriod time.Duration) domain.LoanService {
	return &loanService{
		db:         db,
		repo:       NewRepository(db),
		loanPeriod: loanPeriod,
	}
}

// Borrow lends one copy of the book to the member: it checks stock and the
// member's existing loans, decrements stock, and creates the loan row, all
// in one transaction.
func (s *loanService) Borrow(ctx context.Context, bookID, memberID uint) (*domain.Loan, error) {
	var created *domain.Loan

	err := pkg.WithTx(s.db, func(tx *gorm.DB) error {
		book, err := getBook(ctx, tx, bookID)
		if err != nil {
			return err
		}
		if err := ensureMemberExists(ctx, tx, memberID); err != nil {
			return err
		}
		if book.Stock <= 0 {
			return domain.Conflict("book is out of stock")
		}

		repo := NewRepository(tx)
		exists, err := repo.ActiveLoanExists(ctx, bookID, memberID)
		if err != nil {
			return err
		}
		if exists {
			return domain.Conflict("member already holds this book")
		}

		loan := &domain.Loan{
			Reference: uuid.NewString(),
			BookID:    bookID,
			MemberID:  memberID,
			Status:    domain.LoanActive,
			DueAt:     time.Now().Add(s.loanPeriod),
		}
		if err := repo.CreateLoan(ctx, loan); err != nil {
			return err
		}

		book.Stock--
		if err := tx.WithContext(ctx).Save(book).Error; err != nil {
			return pkg.MapDBError(err)
		}

		created = loan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetLoanByID(ctx, created.ID)
}

// Return closes an active loan: it marks the loan returned, restores the
// book's stock, and fulfils the oldest waiting reservation for that book.
// Returning an already-returned loan is a Conflict.
func (s *loanService) Return(ctx context.Context, loanID uint) (*domain.Loan, error) {
	err := pkg.WithTx(s.db, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		loan, err := repo.GetLoanByID(ctx, loanID)
		if err != nil {
			return err
		}
		if loan.ReturnedAt != nil {
			return domain.Conflict("loan already returned")
		}

		now := time.Now()
		loan.ReturnedAt = &now
		loan.Status = domain.LoanReturned
		if err := repo.UpdateLoan(ctx, loan); err != nil {
			return err
		}

		book, err := getBook(ctx, tx, loan.BookID)
		if err != nil {
			return err
		}
		book.Stock++
		if err := tx.WithContext(ctx).Save(book).Error; err != nil {
			return pkg.MapDBError(err)
		}

		next, err := repo.OldestWaitingReservation(ctx, loan.BookID)
		if err != nil {
			return err
		}
		if next != nil {
			next.Status = domain.ReservationFulfilled
			if err := repo.UpdateReservation(ctx, next); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetLoanByID(ctx, loanID)
}

func (s *loanService) GetLoan(ctx context.Context, id uint) (*domain.Loan, error) {
	return s.repo.GetLoanByID(ctx, id)
}

func (s *loanService) ListLoans(ctx context.Context, q domain.ListQuery, filter domain.LoanFilter) (*domain.PageResult[domain.Loan], error) {
	return s.repo.ListLoans(ctx, q, filter)
}

// Reserve queues the member for a book that is out of stock. Reserving a
// book with copies available is a Conflict; borrow it instead.
func (s *loanService) Reserve(ctx context.Context, bookID, memberID uint) (*domain.Reservation, error) {
	var created *domain.Reservation

	err := pkg.WithTx(s.db, func(tx *gorm.DB) error {
		book, err := getBook(ctx, tx, bookID)
		if err != nil {
			return err
		}
		if err := ensureMemberExists(ctx, tx, memberID); err != nil {
			return err
		}
		if book.Stock > 0 {
			return domain.Conflict("book is in stock; borrow it instead")
		}

		res := &domain.Reservation{
			BookID:   bookID,
			MemberID: memberID,
			Status:   domain.ReservationWaiting,
		}
		if err := NewRepository(tx).CreateReservation(ctx, res); err != nil {
			return err
		}
		created = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetReservationByID(ctx, created.ID)
}

// CancelReservation cancels a waiting reservation. Any other state is a
// Conflict.
func (s *loanService) CancelReservation(ctx context.Context, id uint) (*domain.Reservation, error) {
	res, err := s.repo.GetReservationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.Status != domain.ReservationWaiting {
		return nil, domain.Conflict("reservation is not waiting")
	}

	res.Status = domain.ReservationCancelled
	if err := s.repo.UpdateReservation(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *loanService) ListReservations(ctx context.Context, q domain.ListQuery, filter domain.ReservationFilter) (*domain.PageResult[domain.Reservation], error) {
	return s.repo.ListReservations(ctx, q, filter)
}

func getBook(ctx context.Context, tx *gorm.DB, id uint) (*domain.Book, error) {
	var book domain.Book
	if err := tx.WithContext(ctx).First(&book, id).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &book, nil
}

func ensureMemberExists(ctx context.Context, tx *gorm.DB, id uint) error {
	var member domain.Member
	if err := tx.WithContext(ctx).First(&member, id).Error; err != nil {
		return pkg.MapDBError(err)
	}
	return nil
}
