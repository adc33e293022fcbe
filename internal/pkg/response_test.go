package pkg

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/domain"
)

func newJSONContext(t *testing.T, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestOK(t *testing.T) {
	env := OK(gin.H{"k": "v"})
	if !env.Success || env.Status != http.StatusOK || env.Message != "OK" {
		t.Errorf("unexpected envelope: %+v", env)
	}
}

func TestCreated(t *testing.T) {
	env := Created(nil)
	if !env.Success || env.Status != http.StatusCreated {
		t.Errorf("unexpected envelope: %+v", env)
	}
}

func TestFail_ZeroStatusDefaultsTo500(t *testing.T) {
	env := Fail(0, "boom")
	if env.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d; want 500", env.Status)
	}
	if env.Success {
		t.Error("failure envelope must not be successful")
	}
}

func TestPaged(t *testing.T) {
	result := &domain.PageResult[string]{
		Data: []string{"a", "b"},
		Meta: domain.ListMeta{Page: 1, Limit: 10, Total: 2, TotalPages: 1},
	}
	env := Paged(result)
	if !env.Success || env.Status != http.StatusOK {
		t.Errorf("unexpected envelope: %+v", env)
	}
	meta, ok := env.Meta.(domain.ListMeta)
	if !ok || meta.Total != 2 {
		t.Errorf("Meta = %+v; want ListMeta with Total=2", env.Meta)
	}
}

func TestRespond_StatusMirrorsEnvelope(t *testing.T) {
	c, w := newJSONContext(t, "")
	Respond(c, Fail(http.StatusConflict, "already exists"))

	if w.Code != http.StatusConflict {
		t.Errorf("HTTP status = %d; want 409", w.Code)
	}

	var body struct {
		Success bool   `json:"success"`
		Status  int    `json:"status"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body.Status != http.StatusConflict || body.Success {
		t.Errorf("body = %+v; want status=409 success=false", body)
	}
}

func TestClassify_DomainErrorKeepsStatus(t *testing.T) {
	c, _ := newJSONContext(t, "")

	env := Classify(c, domain.NotFound("book not found"))
	if env.Status != http.StatusNotFound || env.Message != "book not found" {
		t.Errorf("envelope = %+v; want 404 with original message", env)
	}
}

func TestClassify_WrappedDomainError(t *testing.T) {
	c, _ := newJSONContext(t, "")

	wrapped := errors.Join(errors.New("context"), domain.Conflict("taken"))
	env := Classify(c, wrapped)
	if env.Status != http.StatusConflict {
		t.Errorf("Status = %d; want 409 for wrapped domain error", env.Status)
	}
}

func TestClassify_ValidationError(t *testing.T) {
	c, _ := newJSONContext(t, "")

	err := &ValidationError{Fields: map[string][]string{"title": {"required"}}}
	env := Classify(c, err)
	if env.Status != http.StatusBadRequest || env.Message != "Validation Error" {
		t.Errorf("envelope = %+v; want 400 Validation Error", env)
	}
	if msgs := env.Errors["title"]; len(msgs) != 1 || msgs[0] != "required" {
		t.Errorf("Errors = %v; want title:[required]", env.Errors)
	}
}

func TestClassify_UnknownErrorIsGeneric500(t *testing.T) {
	c, _ := newJSONContext(t, "")

	env := Classify(c, errors.New("pq: connection reset by peer"))
	if env.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d; want 500", env.Status)
	}
	if env.Message != "Internal Server Error" {
		t.Errorf("Message = %q; internal error text must not leak", env.Message)
	}
}

type bindTarget struct {
	Title string `json:"title" binding:"required"`
	Stock int    `json:"stock" binding:"min=0"`
}

func TestBind_Valid(t *testing.T) {
	c, _ := newJSONContext(t, `{"title":"Dune","stock":3}`)

	var req bindTarget
	if err := Bind(c, &req); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if req.Title != "Dune" || req.Stock != 3 {
		t.Errorf("req = %+v", req)
	}
}

func TestBind_ConstraintViolationUsesJSONTags(t *testing.T) {
	c, _ := newJSONContext(t, `{"stock":-2}`)

	var req bindTarget
	err := Bind(c, &req)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	if _, ok := ve.Fields["title"]; !ok {
		t.Errorf("Fields = %v; want a \"title\" entry", ve.Fields)
	}
	if _, ok := ve.Fields["stock"]; !ok {
		t.Errorf("Fields = %v; want a \"stock\" entry", ve.Fields)
	}
}

func TestBind_MalformedBodyIsBadRequest(t *testing.T) {
	c, _ := newJSONContext(t, `{not json`)

	var req bindTarget
	err := Bind(c, &req)
	if domain.HTTPStatus(err) != http.StatusBadRequest {
		t.Errorf("expected 400 domain error, got %v", err)
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		t.Error("malformed body must not classify as a validation error")
	}
}

func TestCheck(t *testing.T) {
	c, _ := newJSONContext(t, `{"title":"","stock":0}`)

	var req bindTarget
	fields, ok := Check(c, &req)
	if ok {
		t.Fatal("expected ok=false for missing title")
	}
	if _, present := fields["title"]; !present {
		t.Errorf("fields = %v; want a \"title\" entry", fields)
	}

	c2, _ := newJSONContext(t, `{"title":"Dune","stock":1}`)
	var req2 bindTarget
	if fields, ok := Check(c2, &req2); !ok || fields != nil {
		t.Errorf("Check valid input: fields=%v ok=%v; want nil true", fields, ok)
	}
}
