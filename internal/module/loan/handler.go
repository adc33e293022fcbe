package loan

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/domain"
	"github.com/openshelf/openshelf/internal/pkg"
)

// Handler handles REST API requests for loans and reservations.
type Handler struct {
	svc domain.LoanService
}

// NewHandler creates a Handler with the given service.
func NewHandler(svc domain.LoanService) *Handler {
	return &Handler{svc: svc}
}

// Borrow handles POST /api/loans.
func (h *Handler) Borrow(c *gin.Context) (*pkg.Envelope, error) {
	var req BorrowRequest
	if err := pkg.Bind(c, &req); err != nil {
		return nil, err
	}

	loan, err := h.svc.Borrow(c.Request.Context(), req.BookID, req.MemberID)
	if err != nil {
		return nil, err
	}
	return pkg.Created(toLoanResponse(loan, time.Now())), nil
}

// Return handles POST /api/loans/:id/return.
func (h *Handler) Return(c *gin.Context) (*pkg.Envelope, error) {
	id, err := pkg.ParamID(c, "id")
	if err != nil {
		return nil, err
	}
	loan, err := h.svc.Return(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	return pkg.OK(toLoanResponse(loan, time.Now())).WithMessage("loan returned"), nil
}

// Get handles GET /api/loans/:id.
func (h *Handler) Get(c *gin.Context) (*pkg.Envelope, error) {
	id, err := pkg.ParamID(c, "id")
	if err != nil {
		return nil, err
	}
	loan, err := h.svc.GetLoan(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	return pkg.OK(toLoanResponse(loan, time.Now())), nil
}

// List handles GET /api/loans.
func (h *Handler) List(c *gin.Context) (*pkg.Envelope, error) {
	q := pkg.ParseListQuery(c)
	filter := domain.LoanFilter{
		MemberID: queryUint(c, "member"),
		Status:   c.Query("status"),
	}

	result, err := h.svc.ListLoans(c.Request.Context(), q, filter)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	loans := make([]LoanResponse, 0, len(result.Data))
	for i := range result.Data {
		loans = append(loans, toLoanResponse(&result.Data[i], now))
	}
	env := pkg.OK(loans)
	env.Meta = result.Meta
	return env, nil
}

// Reserve handles POST /api/reservations.
func (h *Handler) Reserve(c *gin.Context) (*pkg.Envelope, error) {
	var req ReserveRequest
	if err := pkg.Bind(c, &req); err != nil {
		return nil, err
	}

	res, err := h.svc.Reserve(c.Request.Context(), req.BookID, req.MemberID)
	if err != nil {
		return nil, err
	}
	return pkg.Created(res), nil
}

// Cancel handles POST /api/reservations/:id/cancel.
func (h *Handler) Cancel(c *gin.Context) (*pkg.Envelope, error) {
	id, err := pkg.ParamID(c, "id")
	if err != nil {
		return nil, err
	}
	res, err := h.svc.CancelReservation(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	return pkg.OK(res).WithMessage("reservation cancelled"), nil
}

// ListReservations handles GET /api/reservations.
func (h *Handler) ListReservations(c *gin.Context) (*pkg.Envelope, error) {
	q := pkg.ParseListQuery(c)
	filter := domain.ReservationFilter{
		MemberID: queryUint(c, "member"),
		Status:   c.Query("status"),
	}

	result, err := h.svc.ListReservations(c.Request.Context(), q, filter)
	if err != nil {
		return nil, err
	}
	return pkg.Paged(result), nil
}

// queryUint parses an optional numeric query parameter; malformed values are
// treated as absent.
func queryUint(c *gin.Context, name string) uint {
	v, err := strconv.ParseUint(c.Query(name), 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}
