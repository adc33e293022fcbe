package pkg

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/domain"
)

func performRequest(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestHandle_Success(t *testing.T) {
	r := gin.New()
	r.GET("/ok", Handle(func(c *gin.Context) (*Envelope, error) {
		return OK(gin.H{"answer": 42}), nil
	}))

	w := performRequest(r, "GET", "/ok")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d; want 200", w.Code)
	}

	var body Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !body.Success {
		t.Error("expected success=true")
	}
}

func TestHandle_ErrorIsClassified(t *testing.T) {
	r := gin.New()
	r.GET("/missing", Handle(func(c *gin.Context) (*Envelope, error) {
		return nil, domain.NotFound("book not found")
	}))

	w := performRequest(r, "GET", "/missing")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d; want 404", w.Code)
	}

	var body Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Success || body.Message != "book not found" {
		t.Errorf("body = %+v", body)
	}
}

func TestHandle_NilEnvelopeDefaultsToOK(t *testing.T) {
	r := gin.New()
	r.GET("/nil", Handle(func(c *gin.Context) (*Envelope, error) {
		return nil, nil
	}))

	w := performRequest(r, "GET", "/nil")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d; want 200", w.Code)
	}
}

func TestHandle_HeadersSurviveErrorPath(t *testing.T) {
	r := gin.New()
	r.GET("/cookie", Handle(func(c *gin.Context) (*Envelope, error) {
		c.SetCookie("probe", "1", 60, "/", "", false, true)
		return nil, domain.Conflict("nope")
	}))

	w := performRequest(r, "GET", "/cookie")
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d; want 409", w.Code)
	}
	if len(w.Result().Cookies()) == 0 {
		t.Error("expected cookie set before the error to survive")
	}
}

func TestParamID(t *testing.T) {
	r := gin.New()
	r.GET("/items/:id", Handle(func(c *gin.Context) (*Envelope, error) {
		id, err := ParamID(c, "id")
		if err != nil {
			return nil, err
		}
		return OK(gin.H{"id": id}), nil
	}))

	if w := performRequest(r, "GET", "/items/12"); w.Code != http.StatusOK {
		t.Errorf("valid id: status = %d; want 200", w.Code)
	}
	if w := performRequest(r, "GET", "/items/abc"); w.Code != http.StatusBadRequest {
		t.Errorf("non-numeric id: status = %d; want 400", w.Code)
	}
	if w := performRequest(r, "GET", "/items/0"); w.Code != http.StatusBadRequest {
		t.Errorf("zero id: status = %d; want 400", w.Code)
	}
	if w := performRequest(r, "GET", "/items/-4"); w.Code != http.StatusBadRequest {
		t.Errorf("negative id: status = %d; want 400", w.Code)
	}
}
