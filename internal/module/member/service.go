package member

import (
	"context"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/openshelf/openshelf/internal/domain"
)

// memberService implements domain.MemberService.
type memberService struct {
	repo domain.MemberRepository
}

// NewService creates a MemberService with the given repository.
func NewService(repo domain.MemberRepository) domain.MemberService {
	return &memberService{repo: repo}
}

// Register validates input, hashes the password, and persists the member.
// An empty role defaults to "member".
func (s *memberService) Register(ctx context.Context, name, email, password, role string) (*domain.Member, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if err := validateRegistration(name, email, password); err != nil {
		return nil, err
	}

	if role == "" {
		role = domain.RoleMember
	}
	if role != domain.RoleMember && role != domain.RoleAdmin {
		return nil, domain.Unprocessable("role must be member or admin")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.Internal("failed to hash password", err)
	}

	member := &domain.Member{
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *memberService) GetMember(ctx context.Context, id uint) (*domain.Member, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *memberService) ListMembers(ctx context.Context, q domain.ListQuery) (*domain.PageResult[domain.Member], error) {
	return s.repo.List(ctx, q)
}

// UpdateMember applies a partial update to name and role. Email and password
// are fixed at registration; credential changes belong to a dedicated flow.
func (s *memberService) UpdateMember(ctx context.Context, id uint, input domain.UpdateMemberInput) (*domain.Member, error) {
	member, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domain.Unprocessable("name is required")
		}
		member.Name = name
	}
	if input.Role != nil {
		if *input.Role != domain.RoleMember && *input.Role != domain.RoleAdmin {
			return nil, domain.Unprocessable("role must be member or admin")
		}
		member.Role = *input.Role
	}

	if err := s.repo.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *memberService) DeleteMember(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// validateRegistration checks registration preconditions not covered by the
// request schema (well-formed email, bcrypt's 72-byte password cap).
func validateRegistration(name, email, password string) error {
	if name == "" {
		return domain.Unprocessable("name is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return domain.Unprocessable("email must be a valid email address")
	}
	if len(password) < 8 {
		return domain.Unprocessable("password must be at least 8 characters")
	}
	if len(password) > 72 {
		return domain.Unprocessable("password must not exceed 72 characters")
	}
	return nil
}
