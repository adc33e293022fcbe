package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

const csrfTestSecret = "csrf-test-secret-32-characters!!"

func newCSRFEngine(secret string) *gin.Engine {
	r := gin.New()
	r.Use(CSRF(secret))
	r.GET("/form", func(c *gin.Context) { c.String(http.StatusOK, CSRFToken(c)) })
	r.POST("/submit", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

// issueCSRFToken performs a GET and returns the issued token cookie.
func issueCSRFToken(t *testing.T, r *gin.Engine) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/form", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("token issue status = %d; want 200", w.Code)
	}
	for _, ck := range w.Result().Cookies() {
		if ck.Name == CSRFCookie {
			return ck
		}
	}
	t.Fatal("no csrf cookie issued")
	return nil
}

func TestCSRF_IssuesTokenOnSafeMethod(t *testing.T) {
	r := newCSRFEngine(csrfTestSecret)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/form", nil))

	var cookie *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == CSRFCookie {
			cookie = ck
		}
	}
	if cookie == nil || cookie.Value == "" {
		t.Fatal("expected a csrf cookie on GET")
	}
	if cookie.SameSite != http.SameSiteStrictMode {
		t.Errorf("SameSite = %v; want Strict", cookie.SameSite)
	}
	if got := w.Body.String(); got != cookie.Value {
		t.Errorf("context token %q does not match cookie %q", got, cookie.Value)
	}
}

func TestCSRF_ReusesValidCookie(t *testing.T) {
	r := newCSRFEngine(csrfTestSecret)
	cookie := issueCSRFToken(t, r)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/form", nil)
	req.AddCookie(cookie)
	r.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.Name == CSRFCookie {
			t.Errorf("valid cookie was replaced with %q", ck.Value)
		}
	}
	if got := w.Body.String(); got != cookie.Value {
		t.Errorf("context token %q; want existing cookie %q", got, cookie.Value)
	}
}

func TestCSRF_PostWithoutTokenIsForbidden(t *testing.T) {
	r := newCSRFEngine(csrfTestSecret)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/submit", nil))
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d; want 403 without any token", w.Code)
	}

	cookie := issueCSRFToken(t, r)
	w = httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/submit", nil)
	req.AddCookie(cookie)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d; want 403 with cookie but no echoed token", w.Code)
	}
}

func TestCSRF_PostWithHeaderToken(t *testing.T) {
	r := newCSRFEngine(csrfTestSecret)
	cookie := issueCSRFToken(t, r)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/submit", nil)
	req.AddCookie(cookie)
	req.Header.Set(CSRFHeader, cookie.Value)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d; want 200 with matching header token", w.Code)
	}
}

func TestCSRF_PostWithFormToken(t *testing.T) {
	r := newCSRFEngine(csrfTestSecret)
	cookie := issueCSRFToken(t, r)

	form := url.Values{csrfFormField: {cookie.Value}}
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d; want 200 with matching form token", w.Code)
	}
}

func TestCSRF_RejectsForgedToken(t *testing.T) {
	r := newCSRFEngine(csrfTestSecret)
	cookie := issueCSRFToken(t, r)

	forged := strings.Repeat("ab", 32) + ".bm90LWEtcmVhbC1zaWduYXR1cmU"

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/submit", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookie, Value: forged})
	req.Header.Set(CSRFHeader, forged)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d; want 403 for forged signature", w.Code)
	}

	// A validly signed token from a different exchange must not satisfy a
	// mismatched cookie either.
	other := issueCSRFToken(t, newCSRFEngine(csrfTestSecret))
	w = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/submit", nil)
	req.AddCookie(cookie)
	req.Header.Set(CSRFHeader, other.Value)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d; want 403 for mismatched tokens", w.Code)
	}
}

func TestCSRF_EmptySecretFailsClosed(t *testing.T) {
	r := newCSRFEngine("   ")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/form", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d; want 500 without a secret", w.Code)
	}
}
