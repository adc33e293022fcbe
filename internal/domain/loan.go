package domain

import (
	"context"
	"time"
)

// Loan statuses.
const (
	LoanActive   = "active"
	LoanReturned = "returned"
)

// Reservation statuses.
const (
	ReservationWaiting   = "waiting"
	ReservationFulfilled = "fulfilled"
	ReservationCancelled = "cancelled"
)

// Loan records one borrowed copy of a book. Reference is server-assigned.
type Loan struct {
	Model
	Reference  string     `gorm:"size:36;uniqueIndex;not null" json:"reference"`
	BookID     uint       `gorm:"index;not null" json:"book_id"`
	MemberID   uint       `gorm:"index;not null" json:"member_id"`
	Status     string     `gorm:"size:20;not null;default:active" json:"status"`
	DueAt      time.Time  `json:"due_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	Book       *Book      `json:"book,omitempty"`
	Member     *Member    `json:"member,omitempty"`
}

// Overdue reports whether the loan is still out past its due date.
func (l *Loan) Overdue(now time.Time) bool {
	return l.Status == LoanActive && now.After(l.DueAt)
}

// Reservation queues a member for a book with no copies in stock.
type Reservation struct {
	Model
	BookID   uint    `gorm:"index;not null" json:"book_id"`
	MemberID uint    `gorm:"index;not null" json:"member_id"`
	Status   string  `gorm:"size:20;not null;default:waiting" json:"status"`
	Book     *Book   `json:"book,omitempty"`
	Member   *Member `json:"member,omitempty"`
}

// LoanFilter narrows loan list queries.
type LoanFilter struct {
	MemberID uint
	Status   string
}

// ReservationFilter narrows reservation list queries.
type ReservationFilter struct {
	MemberID uint
	Status   string
}

// LoanRepository defines data access for loans and reservations. Mutations
// that touch both a loan and its book's stock run inside one transaction at
// the service layer.
type LoanRepository interface {
	CreateLoan(ctx context.Context, loan *Loan) error
	GetLoanByID(ctx context.Context, id uint) (*Loan, error)
	ListLoans(ctx context.Context, q ListQuery, filter LoanFilter) (*PageResult[Loan], error)
	UpdateLoan(ctx context.Context, loan *Loan) error
	ActiveLoanExists(ctx context.Context, bookID, memberID uint) (bool, error)

	CreateReservation(ctx context.Context, res *Reservation) error
	GetReservationByID(ctx context.Context, id uint) (*Reservation, error)
	ListReservations(ctx context.Context, q ListQuery, filter ReservationFilter) (*PageResult[Reservation], error)
	UpdateReservation(ctx context.Context, res *Reservation) error
	OldestWaitingReservation(ctx context.Context, bookID uint) (*Reservation, error)
}

// LoanService defines the circulation business logic.
type LoanService interface {
	Borrow(ctx context.Context, bookID, memberID uint) (*Loan, error)
	Return(ctx context.Context, loanID uint) (*Loan, error)
	GetLoan(ctx context.Context, id uint) (*Loan, error)
	ListLoans(ctx context.Context, q ListQuery, filter LoanFilter) (*PageResult[Loan], error)

	Reserve(ctx context.Context, bookID, memberID uint) (*Reservation, error)
	CancelReservation(ctx context.Context, id uint) (*Reservation, error)
	ListReservations(ctx context.Context, q ListQuery, filter ReservationFilter) (*PageResult[Reservation], error)
}
