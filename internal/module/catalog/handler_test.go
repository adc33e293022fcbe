package catalog

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/pkg"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestRouter wires a real repository stack over an in-memory database
// and registers the catalog routes the way the application does.
func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	svc := NewService(NewBookRepository(db), NewCategoryRepository(db))
	r := gin.New()
	NewModule(NewHandler(svc)).RegisterRoutes(r.Group("/api"), r.Group("/"))
	return r, db
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, *pkg.Envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env pkg.Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: unmarshal envelope: %v (body %s)", method, path, err, w.Body.String())
	}
	return w, &env
}

func createTestCategory(t *testing.T, r *gin.Engine, name string) uint {
	t.Helper()
	w, env := doJSON(t, r, "POST", "/api/books/categories", fmt.Sprintf(`{"name":%q}`, name))
	if w.Code != http.StatusCreated {
		t.Fatalf("create category %q: status %d body %s", name, w.Code, w.Body.String())
	}
	data := env.Data.(map[string]any)
	return uint(data["id"].(float64))
}

func TestCreateCategory_HTTP(t *testing.T) {
	r, _ := newTestRouter(t)

	w, env := doJSON(t, r, "POST", "/api/books/categories", `{"name":"Fiction"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d; want 201 (body %s)", w.Code, w.Body.String())
	}
	if !env.Success || env.Status != http.StatusCreated {
		t.Errorf("envelope = %+v", env)
	}
	data := env.Data.(map[string]any)
	if data["slug"] != "fiction" {
		t.Errorf("slug = %v; want fiction", data["slug"])
	}
}

func TestCreateCategory_MissingName(t *testing.T) {
	r, _ := newTestRouter(t)

	w, env := doJSON(t, r, "POST", "/api/books/categories", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", w.Code)
	}
	if env.Message != "Validation Error" {
		t.Errorf("Message = %q; want Validation Error", env.Message)
	}
	if _, ok := env.Errors["name"]; !ok {
		t.Errorf("Errors = %v; want a \"name\" entry", env.Errors)
	}
}

func TestCreateCategory_Duplicate_HTTP(t *testing.T) {
	r, _ := newTestRouter(t)

	createTestCategory(t, r, "Fiction")
	w, _ := doJSON(t, r, "POST", "/api/books/categories", `{"name":"Fiction"}`)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d; want 409", w.Code)
	}
}

func TestCreateBook_HTTP(t *testing.T) {
	r, _ := newTestRouter(t)
	catID := createTestCategory(t, r, "Fiction")

	body := fmt.Sprintf(`{"title":"Dune","author":"Frank Herbert","isbn":"9780441013593","stock":3,"category_id":%d}`, catID)
	w, env := doJSON(t, r, "POST", "/api/books", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d; want 201 (body %s)", w.Code, w.Body.String())
	}

	data := env.Data.(map[string]any)
	if data["slug"] != "dune" {
		t.Errorf("slug = %v; want dune", data["slug"])
	}
	category, ok := data["category"].(map[string]any)
	if !ok || category["slug"] != "fiction" {
		t.Errorf("category = %v; want embedded category with slug fiction", data["category"])
	}

	// The created book is reachable by ID and by slug.
	id := uint(data["id"].(float64))
	if w, _ := doJSON(t, r, "GET", fmt.Sprintf("/api/books/%d", id), ""); w.Code != http.StatusOK {
		t.Errorf("GET by id: status = %d; want 200", w.Code)
	}
	if w, _ := doJSON(t, r, "GET", "/api/books/slug/dune", ""); w.Code != http.StatusOK {
		t.Errorf("GET by slug: status = %d; want 200", w.Code)
	}
}

func TestCreateBook_NegativeStock_HTTP(t *testing.T) {
	r, _ := newTestRouter(t)
	catID := createTestCategory(t, r, "Fiction")

	body := fmt.Sprintf(`{"title":"Dune","author":"Frank Herbert","isbn":"9780441013593","stock":-1,"category_id":%d}`, catID)
	w, env := doJSON(t, r, "POST", "/api/books", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", w.Code)
	}
	if _, ok := env.Errors["stock"]; !ok {
		t.Errorf("Errors = %v; want a \"stock\" entry", env.Errors)
	}
}

func TestCreateBook_UnknownCategory_HTTP(t *testing.T) {
	r, _ := newTestRouter(t)

	body := `{"title":"Dune","author":"Frank Herbert","isbn":"9780441013593","category_id":42}`
	w, _ := doJSON(t, r, "POST", "/api/books", body)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d; want 422", w.Code)
	}
}

func TestGetBook_NotFound_HTTP(t *testing.T) {
	r, _ := newTestRouter(t)

	w, env := doJSON(t, r, "GET", "/api/books/999", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d; want 404", w.Code)
	}
	if env.Success {
		t.Error("expected success=false")
	}
}

func TestListBooks_Pagination_HTTP(t *testing.T) {
	r, db := newTestRouter(t)
	catID := createTestCategory(t, r, "Fiction")

	for i := 0; i < 12; i++ {
		seedBook(t, db, fmt.Sprintf("Book %02d", i), catID, 1)
	}

	w, env := doJSON(t, r, "GET", "/api/books?page=2&limit=5", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}

	meta := env.Meta.(map[string]any)
	if meta["total"].(float64) != 12 {
		t.Errorf("total = %v; want 12", meta["total"])
	}
	if meta["total_pages"].(float64) != 3 {
		t.Errorf("total_pages = %v; want 3", meta["total_pages"])
	}
	if meta["page"].(float64) != 2 {
		t.Errorf("page = %v; want 2", meta["page"])
	}

	data := env.Data.([]any)
	if len(data) != 5 {
		t.Errorf("len(data) = %d; want 5", len(data))
	}
}

func TestListBooks_CategoryFilter_HTTP(t *testing.T) {
	r, db := newTestRouter(t)
	fiction := createTestCategory(t, r, "Fiction")
	science := createTestCategory(t, r, "Science")
	seedBook(t, db, "Dune", fiction, 1)
	seedBook(t, db, "Cosmos", science, 1)

	w, env := doJSON(t, r, "GET", "/api/books?category=fiction", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
	if data := env.Data.([]any); len(data) != 1 {
		t.Errorf("len(data) = %d; want 1 fiction book", len(data))
	}

	// An out-of-bounds filter value is dropped, not an error.
	overlong := strings.Repeat("x", 101)
	w, env = doJSON(t, r, "GET", "/api/books?category="+overlong, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200 with an invalid filter (body %s)", w.Code, w.Body.String())
	}
	if data := env.Data.([]any); len(data) != 2 {
		t.Errorf("len(data) = %d; want the unfiltered 2", len(data))
	}
}

func TestUpdateBook_HTTP(t *testing.T) {
	r, _ := newTestRouter(t)
	catID := createTestCategory(t, r, "Fiction")

	body := fmt.Sprintf(`{"title":"Dune","author":"Frank Herbert","isbn":"9780441013593","stock":3,"category_id":%d}`, catID)
	_, env := doJSON(t, r, "POST", "/api/books", body)
	id := uint(env.Data.(map[string]any)["id"].(float64))

	w, env := doJSON(t, r, "PATCH", fmt.Sprintf("/api/books/%d", id), `{"stock":9}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200 (body %s)", w.Code, w.Body.String())
	}
	data := env.Data.(map[string]any)
	if data["stock"].(float64) != 9 {
		t.Errorf("stock = %v; want 9", data["stock"])
	}
	if data["title"] != "Dune" {
		t.Errorf("title = %v; untouched field changed", data["title"])
	}
}

func TestDeleteBook_HTTP(t *testing.T) {
	r, _ := newTestRouter(t)
	catID := createTestCategory(t, r, "Fiction")

	body := fmt.Sprintf(`{"title":"Dune","author":"Frank Herbert","isbn":"9780441013593","stock":1,"category_id":%d}`, catID)
	_, env := doJSON(t, r, "POST", "/api/books", body)
	id := uint(env.Data.(map[string]any)["id"].(float64))

	if w, _ := doJSON(t, r, "DELETE", fmt.Sprintf("/api/books/%d", id), ""); w.Code != http.StatusOK {
		t.Fatalf("delete status = %d; want 200", w.Code)
	}
	if w, _ := doJSON(t, r, "GET", fmt.Sprintf("/api/books/%d", id), ""); w.Code != http.StatusNotFound {
		t.Errorf("get after delete: status = %d; want 404", w.Code)
	}
}

func TestListCategories_HTTP(t *testing.T) {
	r, _ := newTestRouter(t)
	createTestCategory(t, r, "Fiction")
	createTestCategory(t, r, "Science")

	w, env := doJSON(t, r, "GET", "/api/books/categories", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
	if len(env.Data.([]any)) != 2 {
		t.Errorf("len(data) = %d; want 2", len(env.Data.([]any)))
	}
}
