package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/pkg"
)

// SessionCookie is the name of the HTTP-only cookie carrying the session
// credential.
const SessionCookie = "access_token"

// identityContextKey is the gin context key holding the verified *pkg.Identity.
const identityContextKey = "identity"

// GuardRule protects one path prefix. When Role is non-empty the credential's
// role must match it exactly.
type GuardRule struct {
	Prefix string
	Role   string
}

// Guard returns a middleware enforcing the protected-prefix rules. Rules are
// checked in declaration order and the first matching prefix wins; requests
// matching no rule pass through unmodified.
//
// A matched request is redirected to loginPath when the cookie is missing,
// fails verification (bad signature, expired, malformed), or carries the
// wrong role. Verification errors are returned as values by the token
// service, never raised, so every bad credential yields exactly one redirect.
func Guard(tokens *pkg.TokenService, rules []GuardRule, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rule, matched := matchRule(rules, c.Request.URL.Path)
		if !matched {
			c.Next()
			return
		}

		cookie, err := c.Cookie(SessionCookie)
		if err != nil || cookie == "" {
			redirectToLogin(c, loginPath)
			return
		}

		id, err := tokens.Parse(cookie)
		if err != nil {
			redirectToLogin(c, loginPath)
			return
		}

		if rule.Role != "" && id.Role != rule.Role {
			redirectToLogin(c, loginPath)
			return
		}

		c.Set(identityContextKey, id)
		c.Next()
	}
}

// IdentityFrom returns the verified identity the guard stored for this
// request, if any.
func IdentityFrom(c *gin.Context) (*pkg.Identity, bool) {
	v, ok := c.Get(identityContextKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(*pkg.Identity)
	return id, ok
}

func matchRule(rules []GuardRule, path string) (GuardRule, bool) {
	for _, r := range rules {
		if strings.HasPrefix(path, r.Prefix) {
			return r, true
		}
	}
	return GuardRule{}, false
}

func redirectToLogin(c *gin.Context, loginPath string) {
	c.Redirect(http.StatusFound, loginPath)
	c.Abort()
}
