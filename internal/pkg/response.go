package pkg

import (
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/openshelf/openshelf/internal/domain"
)

// Envelope is the uniform JSON wrapper returned by every API endpoint.
// The HTTP status code always mirrors Status. Success true implies Errors is
// empty; success false implies Data is absent or advisory only.
type Envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Status  int                 `json:"status"`
	Data    any                 `json:"data"`
	Meta    any                 `json:"meta,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// OK builds a success envelope with status 200.
func OK(data any) *Envelope {
	return &Envelope{
		Success: true,
		Message: "OK",
		Status:  http.StatusOK,
		Data:    data,
	}
}

// Created builds a success envelope with status 201.
func Created(data any) *Envelope {
	return &Envelope{
		Success: true,
		Message: "Created",
		Status:  http.StatusCreated,
		Data:    data,
	}
}

// Paged builds a success envelope for one page of a list result.
func Paged[T any](result *domain.PageResult[T]) *Envelope {
	env := OK(result.Data)
	env.Meta = result.Meta
	return env
}

// Fail builds a failure envelope. A status of 0 defaults to 500.
func Fail(status int, message string) *Envelope {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return &Envelope{
		Success: false,
		Message: message,
		Status:  status,
	}
}

// WithMessage replaces the envelope's message.
func (e *Envelope) WithMessage(message string) *Envelope {
	e.Message = message
	return e
}

// Respond transmits the envelope; the HTTP status mirrors the envelope's.
func Respond(c *gin.Context, env *Envelope) {
	c.JSON(env.Status, env)
}

// Classify maps a caught failure to the envelope the client receives.
// Decision order: validation failures produce a 400 with field detail, a
// domain error keeps its own status and message, and anything else collapses
// to a generic 500 so internal error text never reaches the client. Every
// classified failure is logged.
func Classify(c *gin.Context, err error) *Envelope {
	ctx := c.Request.Context()

	var ve *ValidationError
	if errors.As(err, &ve) {
		slog.WarnContext(ctx, "validation failed",
			slog.String("path", c.Request.URL.Path),
			slog.Int("fields", len(ve.Fields)),
		)
		env := Fail(http.StatusBadRequest, "Validation Error")
		env.Errors = ve.Fields
		return env
	}

	var appErr *domain.Error
	if errors.As(err, &appErr) {
		slog.WarnContext(ctx, "request failed",
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", appErr.Status),
			slog.String("error", appErr.Error()),
		)
		return Fail(appErr.Status, appErr.Message)
	}

	slog.ErrorContext(ctx, "unexpected error",
		slog.String("path", c.Request.URL.Path),
		slog.Any("error", err),
	)
	return Fail(http.StatusInternalServerError, "Internal Server Error")
}

// ValidationError is a binding failure broken down per field. Fields maps a
// field path (JSON tag name where known) to the constraint messages it
// violated.
type ValidationError struct {
	Fields map[string][]string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "validation error"
}

// Bind binds and validates the request body into obj. On failure it returns
// an error for the handler to propagate: a *ValidationError for constraint
// violations, or a BadRequest domain error for malformed bodies.
func Bind(c *gin.Context, obj any) error {
	if err := c.ShouldBind(obj); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return newValidationError(ve, obj)
		}
		return domain.BadRequest("invalid request body")
	}
	return nil
}

// Check binds and validates without propagating: it returns the field
// problems for the caller to inspect, and ok=true when the input is valid.
func Check(c *gin.Context, obj any) (fields map[string][]string, ok bool) {
	err := Bind(c, obj)
	if err == nil {
		return nil, true
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields, false
	}
	return map[string][]string{"body": {"invalid request body"}}, false
}

// newValidationError converts validator output into per-field messages,
// preferring JSON tag names when the concrete type is available.
func newValidationError(ve validator.ValidationErrors, obj any) *ValidationError {
	jsonTags := buildJSONTagMap(obj)

	fields := make(map[string][]string, len(ve))
	for _, fe := range ve {
		name := fe.Field()
		if tag, ok := jsonTags[fe.StructField()]; ok {
			name = tag
		} else {
			name = strings.ToLower(name)
		}
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		fields[name] = append(fields[name], msg)
	}
	return &ValidationError{Fields: fields}
}

// buildJSONTagMap returns a map from struct field name to its JSON tag name.
// If obj is nil or not a struct (pointer), it returns an empty map.
func buildJSONTagMap(obj any) map[string]string {
	if obj == nil {
		return nil
	}
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	m := make(map[string]string, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if name := parseJSONTagName(tag); name != "" {
			m[f.Name] = name
		}
	}
	return m
}

// parseJSONTagName extracts the field name from a JSON struct tag value.
func parseJSONTagName(tag string) string {
	if tag == "" || tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" || name == "-" {
		return ""
	}
	return name
}
