package loan

import (
	"time"

	"github.com/openshelf/openshelf/internal/domain"
)

// BorrowRequest is the input for creating a loan.
type BorrowRequest struct {
	BookID   uint `json:"book_id" binding:"required"`
	MemberID uint `json:"member_id" binding:"required"`
}

// ReserveRequest is the input for creating a reservation.
type ReserveRequest struct {
	BookID   uint `json:"book_id" binding:"required"`
	MemberID uint `json:"member_id" binding:"required"`
}

// LoanResponse is a loan with its computed overdue flag.
type LoanResponse struct {
	*domain.Loan
	Overdue bool `json:"overdue"`
}

func toLoanResponse(l *domain.Loan, now time.Time) LoanResponse {
	return LoanResponse{Loan: l, Overdue: l.Overdue(now)}
}
