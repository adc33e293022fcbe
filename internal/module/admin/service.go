package admin

import (
	"context"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/domain"
	"github.com/openshelf/openshelf/internal/pkg"
)

// Stats are the dashboard totals.
type Stats struct {
	Books               int64 `json:"books"`
	Members             int64 `json:"members"`
	ActiveLoans         int64 `json:"active_loans"`
	WaitingReservations int64 `json:"waiting_reservations"`
}

// Service computes dashboard statistics.
type Service interface {
	Stats(ctx context.Context) (*Stats, error)
}

// statsService implements Service with count queries over the shared handle.
type statsService struct {
	db *gorm.DB
}

// NewService creates a stats Service over the given database handle.
func NewService(db *gorm.DB) Service {
	return &statsService{db: db}
}

// Stats counts books, members, active loans, and waiting reservations. The
// four counts run sequentially without a transaction; totals may skew
// slightly under concurrent writes.
func (s *statsService) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats

	counts := []struct {
		model any
		conds []any
		dest  *int64
	}{
		{model: &domain.Book{}, dest: &stats.Books},
		{model: &domain.Member{}, dest: &stats.Members},
		{model: &domain.Loan{}, conds: []any{"status = ?", domain.LoanActive}, dest: &stats.ActiveLoans},
		{model: &domain.Reservation{}, conds: []any{"status = ?", domain.ReservationWaiting}, dest: &stats.WaitingReservations},
	}

	for _, c := range counts {
		q := s.db.WithContext(ctx).Model(c.model)
		if len(c.conds) > 0 {
			q = q.Where(c.conds[0], c.conds[1:]...)
		}
		if err := q.Count(c.dest).Error; err != nil {
			return nil, pkg.MapDBError(err)
		}
	}

	return &stats, nil
}
