package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"
)

// Recovery returns a middleware that recovers from panics, logs the panic
// with its stack trace, and responds with a generic 500. API clients get the
// standard JSON envelope; requests that accept HTML get the 500 error page.
// The panic value itself never reaches the client.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				stack := debug.Stack()

				logger.ErrorContext(c.Request.Context(), "panic recovered",
					slog.Any("panic", err),
					slog.String("method", c.Request.Method),
					slog.String("path", c.Request.URL.Path),
					slog.String("stack", string(stack)),
				)

				c.Abort()

				if acceptsHTML(c) && !strings.HasPrefix(c.Request.URL.Path, "/api/") {
					renderHTMLError(c)
					return
				}
				c.JSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"message": "Internal Server Error",
					"status":  http.StatusInternalServerError,
					"data":    nil,
				})
			}
		}()
		c.Next()
	}
}

// renderHTMLError attempts to render the errors/500.html template, falling
// back to plain text when no renderer is configured.
func renderHTMLError(c *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			c.Data(http.StatusInternalServerError, "text/plain; charset=utf-8", []byte("500 Internal Server Error"))
		}
	}()
	c.HTML(http.StatusInternalServerError, "errors/500.html", gin.H{})
}

// acceptsHTML returns true if the request's Accept header contains "text/html".
func acceptsHTML(c *gin.Context) bool {
	accept := strings.ToLower(c.GetHeader("Accept"))
	return strings.Contains(accept, "text/html")
}
