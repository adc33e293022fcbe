package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/middleware"
	"github.com/openshelf/openshelf/internal/pkg"
)

// RouteDeps holds all dependencies needed to register routes.
type RouteDeps struct {
	Modules    []Module
	DB         *gorm.DB
	CSRFSecret string
}

// RegisterRoutes registers all application routes on the given engine.
func RegisterRoutes(r *gin.Engine, deps *RouteDeps) error {
	if r == nil {
		return errors.New("router is nil")
	}
	if deps == nil {
		return errors.New("route dependencies are nil")
	}
	if len(deps.Modules) == 0 {
		return errors.New("at least one module is required")
	}
	if strings.TrimSpace(deps.CSRFSecret) == "" {
		return errors.New("csrf secret is required")
	}

	r.GET("/health", healthHandler(deps.DB))

	// API routes carry the JSON envelope and rely on the SameSite cookie;
	// rendered pages additionally get form tokens.
	api := r.Group("/api")
	pages := r.Group("/")
	pages.Use(middleware.CSRF(deps.CSRFSecret))

	for i, m := range deps.Modules {
		if m == nil {
			return fmt.Errorf("module at index %d is nil", i)
		}
		m.RegisterRoutes(api, pages)
	}

	r.NoRoute(noRouteHandler())

	return nil
}

// healthHandler returns a handler that pings the database and reports status.
func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "ok"
		status := "ok"
		code := http.StatusOK

		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "degraded",
				"components": gin.H{"database": "error"},
			})
			return
		}

		sqlDB, err := db.DB()
		if err != nil {
			dbStatus = "error"
			status = "degraded"
			code = http.StatusServiceUnavailable
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
			defer cancel()
			if err := sqlDB.PingContext(ctx); err != nil {
				dbStatus = "error"
				status = "degraded"
				code = http.StatusServiceUnavailable
			}
		}

		c.JSON(code, gin.H{
			"status":     status,
			"components": gin.H{"database": dbStatus},
		})
	}
}

// noRouteHandler renders a 404 page for browser requests and the JSON
// envelope for API clients.
func noRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			pkg.Respond(c, pkg.Fail(http.StatusNotFound, "not found"))
			return
		}
		renderErrorPage(c, http.StatusNotFound)
	}
}

// renderErrorPage renders the error template for the status code, falling
// back to plain text when rendering fails.
func renderErrorPage(c *gin.Context, code int) {
	defer func() {
		if r := recover(); r != nil {
			c.Data(code, "text/plain; charset=utf-8", []byte(fmt.Sprintf("%d %s", code, http.StatusText(code))))
		}
	}()

	tmpl := "errors/500.html"
	if code == http.StatusNotFound {
		tmpl = "errors/404.html"
	}
	c.HTML(code, tmpl, gin.H{})
}
