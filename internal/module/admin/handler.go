package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/middleware"
	"github.com/openshelf/openshelf/internal/pkg"
)

// Handler handles the admin stats API and the rendered pages.
type Handler struct {
	svc Service
}

// NewHandler creates a Handler with the given service.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// GetStats handles GET /api/admin/stats.
func (h *Handler) GetStats(c *gin.Context) (*pkg.Envelope, error) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		return nil, err
	}
	return pkg.OK(stats), nil
}

// HomePage handles GET /.
func (h *Handler) HomePage(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", gin.H{})
}

// AuthPage handles GET /auth, the authentication entry point the access
// gate redirects to. The form token comes from the CSRF middleware on the
// pages group.
func (h *Handler) AuthPage(c *gin.Context) {
	c.HTML(http.StatusOK, "auth.html", gin.H{
		"CSRFToken": middleware.CSRFToken(c),
	})
}

// DashboardPage handles GET /admin. The access gate has already verified an
// admin credential by the time this runs.
func (h *Handler) DashboardPage(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		c.HTML(http.StatusInternalServerError, "errors/500.html", gin.H{})
		return
	}

	data := gin.H{"Stats": stats}
	if id, ok := middleware.IdentityFrom(c); ok {
		data["Identity"] = id
	}
	c.HTML(http.StatusOK, "admin/dashboard.html", data)
}
