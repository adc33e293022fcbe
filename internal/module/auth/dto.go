package auth

// LoginRequest is the input for logging in. Identifier is the member's email.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// LoginResponse is returned after a successful login. The token is also set
// as the HTTP-only session cookie.
type LoginResponse struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Token string `json:"token"`
}
