package member

import (
	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/domain"
	"github.com/openshelf/openshelf/internal/pkg"
)

// Handler handles REST API requests for members.
type Handler struct {
	svc domain.MemberService
}

// NewHandler creates a Handler with the given service.
func NewHandler(svc domain.MemberService) *Handler {
	return &Handler{svc: svc}
}

// Register handles POST /api/members.
func (h *Handler) Register(c *gin.Context) (*pkg.Envelope, error) {
	var req RegisterRequest
	if err := pkg.Bind(c, &req); err != nil {
		return nil, err
	}

	member, err := h.svc.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		return nil, err
	}
	return pkg.Created(toResponse(member)), nil
}

// Get handles GET /api/members/:id.
func (h *Handler) Get(c *gin.Context) (*pkg.Envelope, error) {
	id, err := pkg.ParamID(c, "id")
	if err != nil {
		return nil, err
	}
	member, err := h.svc.GetMember(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	return pkg.OK(toResponse(member)), nil
}

// List handles GET /api/members.
func (h *Handler) List(c *gin.Context) (*pkg.Envelope, error) {
	q := pkg.ParseListQuery(c)
	result, err := h.svc.ListMembers(c.Request.Context(), q)
	if err != nil {
		return nil, err
	}

	members := make([]MemberResponse, 0, len(result.Data))
	for i := range result.Data {
		members = append(members, toResponse(&result.Data[i]))
	}
	env := pkg.OK(members)
	env.Meta = result.Meta
	return env, nil
}

// Update handles PATCH /api/members/:id.
func (h *Handler) Update(c *gin.Context) (*pkg.Envelope, error) {
	id, err := pkg.ParamID(c, "id")
	if err != nil {
		return nil, err
	}

	var req UpdateMemberRequest
	if err := pkg.Bind(c, &req); err != nil {
		return nil, err
	}

	member, err := h.svc.UpdateMember(c.Request.Context(), id, domain.UpdateMemberInput{
		Name: req.Name,
		Role: req.Role,
	})
	if err != nil {
		return nil, err
	}
	return pkg.OK(toResponse(member)), nil
}

// Delete handles DELETE /api/members/:id.
func (h *Handler) Delete(c *gin.Context) (*pkg.Envelope, error) {
	id, err := pkg.ParamID(c, "id")
	if err != nil {
		return nil, err
	}
	if err := h.svc.DeleteMember(c.Request.Context(), id); err != nil {
		return nil, err
	}
	return pkg.OK(nil).WithMessage("member deleted"), nil
}

func toResponse(m *domain.Member) MemberResponse {
	return MemberResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Role:      m.Role,
		CreatedAt: m.CreatedAt,
	}
}
