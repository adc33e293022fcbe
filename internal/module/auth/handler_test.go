package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/domain"
	"github.com/openshelf/openshelf/internal/middleware"
	"github.com/openshelf/openshelf/internal/module/member"
	"github.com/openshelf/openshelf/internal/pkg"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const authTestSecret = "0123456789abcdef0123456789abcdef"

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Member{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedMember(t *testing.T, db *gorm.DB, email, password, role string) *domain.Member {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	m := &domain.Member{Name: "Test", Email: email, Role: role, PasswordHash: string(hash)}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("seed member: %v", err)
	}
	return m
}

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	tokens := pkg.NewTokenService(authTestSecret, time.Hour)
	svc := NewService(member.NewRepository(db), tokens)
	r := gin.New()
	NewModule(NewHandler(svc, false)).RegisterRoutes(r.Group("/api"), r.Group("/"))
	return r, db
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, *pkg.Envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env pkg.Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: unmarshal envelope: %v (body %s)", method, path, err, w.Body.String())
	}
	return w, &env
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range w.Result().Cookies() {
		if ck.Name == middleware.SessionCookie {
			return ck
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func TestLogin(t *testing.T) {
	r, db := newTestRouter(t)
	seedMember(t, db, "alice@example.com", "s3cret-pass", domain.RoleAdmin)

	w, env := doJSON(t, r, "POST", "/api/auth/login",
		`{"identifier":"alice@example.com","password":"s3cret-pass"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200 (body %s)", w.Code, w.Body.String())
	}

	data := env.Data.(map[string]any)
	if data["email"] != "alice@example.com" || data["role"] != "admin" {
		t.Errorf("data = %v", data)
	}
	if data["token"] == "" {
		t.Error("expected token in response")
	}

	ck := sessionCookie(t, w)
	if ck.Value == "" {
		t.Error("expected non-empty session cookie")
	}
	if !ck.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}
	if ck.SameSite != http.SameSiteLaxMode {
		t.Errorf("SameSite = %v; want Lax", ck.SameSite)
	}
	if ck.MaxAge <= 0 {
		t.Errorf("MaxAge = %d; want positive", ck.MaxAge)
	}
}

func TestLogin_UnknownIdentifier(t *testing.T) {
	r, _ := newTestRouter(t)

	w, env := doJSON(t, r, "POST", "/api/auth/login",
		`{"identifier":"ghost@example.com","password":"whatever1"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d; want 404 for unknown identifier", w.Code)
	}
	if env.Success {
		t.Error("expected success=false")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	r, db := newTestRouter(t)
	seedMember(t, db, "alice@example.com", "s3cret-pass", domain.RoleMember)

	w, _ := doJSON(t, r, "POST", "/api/auth/login",
		`{"identifier":"alice@example.com","password":"wrong-pass"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d; want 422 for wrong password", w.Code)
	}
}

func TestLogin_MissingFields(t *testing.T) {
	r, _ := newTestRouter(t)

	w, env := doJSON(t, r, "POST", "/api/auth/login", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", w.Code)
	}
	if _, ok := env.Errors["identifier"]; !ok {
		t.Errorf("Errors = %v; want an \"identifier\" entry", env.Errors)
	}
}

func TestSession(t *testing.T) {
	r, db := newTestRouter(t)
	seedMember(t, db, "alice@example.com", "s3cret-pass", domain.RoleMember)

	// Without a cookie the session is null, not an error.
	w, env := doJSON(t, r, "GET", "/api/auth/session", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
	if env.Data != nil {
		t.Errorf("Data = %v; want null without a session", env.Data)
	}

	loginW, _ := doJSON(t, r, "POST", "/api/auth/login",
		`{"identifier":"alice@example.com","password":"s3cret-pass"}`)
	ck := sessionCookie(t, loginW)

	w, env = doJSON(t, r, "GET", "/api/auth/session", "", ck)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
	id, ok := env.Data.(map[string]any)
	if !ok || id["email"] != "alice@example.com" {
		t.Errorf("Data = %v; want identity with email", env.Data)
	}

	// A garbage cookie also yields a null session rather than an error.
	w, env = doJSON(t, r, "GET", "/api/auth/session", "",
		&http.Cookie{Name: middleware.SessionCookie, Value: "garbage"})
	if w.Code != http.StatusOK || env.Data != nil {
		t.Errorf("garbage cookie: status=%d data=%v; want 200 null", w.Code, env.Data)
	}
}

func TestLogout_ClearsCookie(t *testing.T) {
	r, _ := newTestRouter(t)

	w, _ := doJSON(t, r, "POST", "/api/auth/logout", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}

	ck := sessionCookie(t, w)
	if ck.Value != "" {
		t.Errorf("cookie value = %q; want empty", ck.Value)
	}
	if ck.MaxAge >= 0 {
		t.Errorf("MaxAge = %d; want negative to expire the cookie", ck.MaxAge)
	}
}
