package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/middleware"
	"github.com/openshelf/openshelf/internal/pkg"
)

// Handler handles authentication requests. It owns the session cookie:
// issued on login, replaced wholesale, cleared on logout.
type Handler struct {
	svc    Service
	secure bool // Secure cookie attribute; on in release mode
}

// NewHandler creates a Handler. secure controls the cookie's Secure flag.
func NewHandler(svc Service, secure bool) *Handler {
	return &Handler{svc: svc, secure: secure}
}

// Login handles POST /api/auth/login. On success the credential is set as
// an HTTP-only, SameSite=Lax cookie before the envelope is written.
func (h *Handler) Login(c *gin.Context) (*pkg.Envelope, error) {
	var req LoginRequest
	if err := pkg.Bind(c, &req); err != nil {
		return nil, err
	}

	resp, expiresAt, err := h.svc.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		return nil, err
	}

	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, resp.Token, maxAge, "/", "", h.secure, true)

	return pkg.OK(resp).WithMessage("logged in"), nil
}

// Logout handles POST /api/auth/logout by clearing the session cookie.
func (h *Handler) Logout(c *gin.Context) (*pkg.Envelope, error) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secure, true)
	return pkg.OK(nil).WithMessage("logged out"), nil
}

// Session handles GET /api/auth/session. It returns the decoded identity of
// the current credential, or null when there is no valid session.
func (h *Handler) Session(c *gin.Context) (*pkg.Envelope, error) {
	token, _ := c.Cookie(middleware.SessionCookie)
	id := h.svc.Session(token)
	if id == nil {
		return pkg.OK(nil).WithMessage("no active session"), nil
	}
	return pkg.OK(id), nil
}
