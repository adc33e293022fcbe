package middleware

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"
)

const (
	requestIDHeader     = "X-Request-ID"
	requestIDContextKey = "request_id"
	requestIDLength     = 16 // 16 bytes = 32 hex chars
)

var requestIDFallbackCounter atomic.Uint64

// RequestID returns a middleware that assigns a fresh random ID to every
// request. Upstream X-Request-ID values are not trusted. The ID is stored in
// the gin context, echoed as the X-Request-ID response header, and attached
// to the request context as an slog attribute so all log lines for the
// request carry it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := generateRequestID()

		c.Set(requestIDContextKey, id)
		c.Header(requestIDHeader, id)

		ctx := logger.WithContextAttrs(c.Request.Context(), slog.String("request_id", id))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetRequestID returns the request ID assigned to this request, or "" when
// the middleware did not run.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDContextKey)
}

// generateRequestID returns a random hex ID, falling back to a
// timestamp+counter value if the system randomness source fails.
func generateRequestID() string {
	b := make([]byte, requestIDLength)
	if _, err := rand.Read(b); err != nil {
		n := requestIDFallbackCounter.Add(1)
		fallback := make([]byte, 16)
		binary.BigEndian.PutUint64(fallback[:8], uint64(time.Now().UnixNano()))
		binary.BigEndian.PutUint64(fallback[8:], n)
		return hex.EncodeToString(fallback)
	}
	return hex.EncodeToString(b)
}
