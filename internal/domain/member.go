package domain

import "context"

// Member roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Member is a registered library user.
type Member struct {
	Model
	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role         string `gorm:"size:20;not null;default:member" json:"role"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
}

// MemberRepository defines data access for members.
type MemberRepository interface {
	Create(ctx context.Context, member *Member) error
	GetByID(ctx context.Context, id uint) (*Member, error)
	GetByEmail(ctx context.Context, email string) (*Member, error)
	List(ctx context.Context, q ListQuery) (*PageResult[Member], error)
	Update(ctx context.Context, member *Member) error
	Delete(ctx context.Context, id uint) error
}

// UpdateMemberInput carries a partial member update. Nil fields are left
// unchanged.
type UpdateMemberInput struct {
	Name *string
	Role *string
}

// MemberService defines the business logic for members.
type MemberService interface {
	Register(ctx context.Context, name, email, password, role string) (*Member, error)
	GetMember(ctx context.Context, id uint) (*Member, error)
	ListMembers(ctx context.Context, q ListQuery) (*PageResult[Member], error)
	UpdateMember(ctx context.Context, id uint, input UpdateMemberInput) (*Member, error)
	DeleteMember(ctx context.Context, id uint) error
}
