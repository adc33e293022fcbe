package middleware

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// CSRFCookie is the name of the cookie carrying the CSRF token. It is
	// readable by page scripts so forms and fetch calls can echo it back.
	CSRFCookie = "csrf_token"

	// CSRFHeader is the request header checked on mutating requests.
	CSRFHeader = "X-CSRF-Token"

	csrfFormField  = "_csrf_token"
	csrfContextKey = "csrf_token"
)

// CSRF returns a middleware protecting HTML form submissions with a signed
// double-submit token. Tokens are hex(nonce) + "." + base64url(HMAC-SHA256
// of the nonce under secret).
//
// Safe methods (GET/HEAD/OPTIONS) get a token issued as a cookie when none
// is present, and the token is stored in the context for templates. Mutating
// methods must echo the cookie token via the "_csrf_token" form field or the
// X-CSRF-Token header; a missing, forged, or mismatched token is rejected
// with 403.
//
// JSON API groups are exempted by not registering this middleware on them.
func CSRF(secret string) gin.HandlerFunc {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return func(c *gin.Context) {
			abortCSRF(c, http.StatusInternalServerError, "csrf secret is required")
		}
	}

	secure := gin.Mode() == gin.ReleaseMode
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			token, err := c.Cookie(CSRFCookie)
			if err != nil || !tokenValid(token, secret) {
				token, err = newCSRFToken(secret)
				if err != nil {
					abortCSRF(c, http.StatusInternalServerError, "failed to generate csrf token")
					return
				}
				http.SetCookie(c.Writer, &http.Cookie{
					Name:     CSRFCookie,
					Value:    token,
					Path:     "/",
					Secure:   secure,
					SameSite: http.SameSiteStrictMode,
				})
			}
			c.Set(csrfContextKey, token)
			c.Next()

		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			cookieToken, err := c.Cookie(CSRFCookie)
			if err != nil || cookieToken == "" {
				abortCSRF(c, http.StatusForbidden, "csrf token missing")
				return
			}

			requestToken := c.PostForm(csrfFormField)
			if requestToken == "" {
				requestToken = c.GetHeader(CSRFHeader)
			}
			if requestToken == "" {
				abortCSRF(c, http.StatusForbidden, "csrf token missing")
				return
			}

			if !tokenValid(cookieToken, secret) || !tokenValid(requestToken, secret) ||
				subtle.ConstantTimeCompare([]byte(cookieToken), []byte(requestToken)) != 1 {
				abortCSRF(c, http.StatusForbidden, "csrf token invalid")
				return
			}

			c.Set(csrfContextKey, cookieToken)
			c.Next()

		default:
			c.Next()
		}
	}
}

// CSRFToken returns the token the CSRF middleware stored for this request,
// or "" when the middleware did not run.
func CSRFToken(c *gin.Context) string {
	if v, ok := c.Get(csrfContextKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func newCSRFToken(secret string) (string, error) {
	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	nonceHex := hex.EncodeToString(nonce)
	return nonceHex + "." + signCSRFNonce(nonceHex, secret), nil
}

func signCSRFNonce(nonce, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(nonce))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// tokenValid checks the token's shape and HMAC signature in constant time.
func tokenValid(token, secret string) bool {
	nonce, sig, ok := strings.Cut(token, ".")
	if !ok || nonce == "" || sig == "" {
		return false
	}
	expected := signCSRFNonce(nonce, secret)
	return subtle.ConstantTimeCompare([]byte(sig), []byte(expected)) == 1
}

func abortCSRF(c *gin.Context, status int, message string) {
	c.Abort()
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
		"status":  status,
		"data":    nil,
	})
}
