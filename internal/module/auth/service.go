package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/openshelf/openshelf/internal/domain"
	"github.com/openshelf/openshelf/internal/pkg"
)

// Service defines the authentication operations.
type Service interface {
	Login(ctx context.Context, identifier, password string) (*LoginResponse, time.Time, error)
	Session(token string) *pkg.Identity
}

// authService implements Service.
type authService struct {
	members domain.MemberRepository
	tokens  *pkg.TokenService
}

// NewService creates an auth Service.
func NewService(members domain.MemberRepository, tokens *pkg.TokenService) Service {
	return &authService{members: members, tokens: tokens}
}

// Login authenticates a member by identifier (email) and password and issues
// a session credential. An unknown identifier is NotFound; a wrong password
// for a known identifier is UnprocessableEntity.
func (s *authService) Login(ctx context.Context, identifier, password string) (*LoginResponse, time.Time, error) {
	identifier = strings.TrimSpace(identifier)

	member, err := s.members.GetByEmail(ctx, identifier)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, time.Time{}, domain.NotFound("no account for this identifier")
		}
		return nil, time.Time{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, time.Time{}, domain.Unprocessable("incorrect password")
		}
		return nil, time.Time{}, domain.Internal("failed to verify password", err)
	}

	token, expiresAt, err := s.tokens.Generate(pkg.Identity{
		ID:    member.ID,
		Email: member.Email,
		Role:  member.Role,
	})
	if err != nil {
		return nil, time.Time{}, domain.Internal("failed to issue token", err)
	}

	return &LoginResponse{
		ID:    member.ID,
		Email: member.Email,
		Role:  member.Role,
		Token: token,
	}, expiresAt, nil
}

// Session decodes the identity a session token carries, or nil when the
// token is absent or invalid. Invalid tokens are not an error here; the
// session endpoint reports null instead of failing.
func (s *authService) Session(token string) *pkg.Identity {
	if token == "" {
		return nil
	}
	id, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}
	return id
}
