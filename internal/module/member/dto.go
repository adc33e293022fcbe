package member

import "time"

// RegisterRequest is the input for registering a member.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Role     string `json:"role" binding:"omitempty,oneof=member admin"`
}

// UpdateMemberRequest is the input for a partial member update. Omitted
// fields stay unchanged.
type UpdateMemberRequest struct {
	Name *string `json:"name" binding:"omitempty,min=2,max=100"`
	Role *string `json:"role" binding:"omitempty,oneof=member admin"`
}

// MemberResponse is the public view of a member.
type MemberResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
