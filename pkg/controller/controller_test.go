package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/freightdesk/backoffice/pkg/observability/logger"
	"github.com/freightdesk/backoffice/pkg/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{name: "code only", err: &AppError{Code: "validation.failed"}, want: "validation.failed"},
		{name: "message", err: NewNotFoundError("dataset not found"), want: "dataset not found"},
		{name: "with cause", err: NewInternalError("database error", errors.New("connection timeout")), want: "database error: connection timeout"},
		{name: "nil", err: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	if got := NewInternalError("x", cause).Unwrap(); got != cause {
		t.Errorf("Unwrap() = %v, want %v", got, cause)
	}
}

func TestMapError(t *testing.T) {
	ctx := logger.ContextWithRequestID(context.Background(), "req-7")

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		wantCode   string
	}{
		{name: "not found sentinel", err: fmt.Errorf("get %q: %w", "INV-1", store.ErrNotFound), wantStatus: 404, wantError: "not_found", wantCode: "resource.not_found"},
		{name: "conflict sentinel", err: fmt.Errorf("create: %w", store.ErrConflict), wantStatus: 409, wantError: "conflict", wantCode: "resource.conflict"},
		{name: "invalid sentinel", err: fmt.Errorf("%w: bad json", store.ErrInvalid), wantStatus: 400, wantError: "validation_error", wantCode: "validation.failed"},
		{name: "validation app error", err: NewValidationErrorWithCode("validation.per_page", "per_page too large", nil), wantStatus: 400, wantError: "validation_error", wantCode: "validation.per_page"},
		{name: "wrapped app error", err: fmt.Errorf("handler: %w", NewNotFoundError("dataset missing")), wantStatus: 404, wantError: "not_found", wantCode: "resource.not_found"},
		{name: "status inferred from code", err: &AppError{Code: "rate_limit.exceeded"}, wantStatus: 429, wantError: "rate_limited", wantCode: "rate_limit.exceeded"},
		{name: "unknown error", err: errors.New("pq: password authentication failed"), wantStatus: 500, wantError: "internal_server_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := MapError(ctx, tt.err)
			if status != tt.wantStatus || resp.Error != tt.wantError || resp.Code != tt.wantCode {
				t.Errorf("MapError() = %d %+v", status, resp)
			}
			if resp.RequestID != "req-7" {
				t.Errorf("RequestID = %q", resp.RequestID)
			}
		})
	}

	_, resp := MapError(ctx, errors.New("pq: password authentication failed"))
	if resp.Message != "an unexpected error occurred" {
		t.Errorf("internal message leaked: %q", resp.Message)
	}
}

func newContext(method string) (*gin.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	req := httptest.NewRequest(method, "/", nil)
	c.Request = req.WithContext(logger.ContextWithRequestID(req.Context(), "req-1"))
	return c, rec
}

func TestResponses(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		c, rec := newContext(http.MethodGet)
		Success(c, map[string]int{"n": 1})
		var body struct {
			Data      map[string]int `json:"data"`
			RequestID string         `json:"request_id"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if rec.Code != 200 || body.Data["n"] != 1 || body.RequestID != "req-1" {
			t.Errorf("got %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("created", func(t *testing.T) {
		c, rec := newContext(http.MethodPost)
		Created(c, "x")
		if rec.Code != http.StatusCreated {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("no content", func(t *testing.T) {
		c, rec := newContext(http.MethodDelete)
		NoContent(c)
		c.Writer.WriteHeaderNow()
		if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
			t.Errorf("got %d %q", rec.Code, rec.Body.String())
		}
	})

	t.Run("error", func(t *testing.T) {
		c, rec := newContext(http.MethodGet)
		Error(c, store.ErrNotFound)
		var body ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if rec.Code != 404 || body.Error != "not_found" || !c.IsAborted() || len(c.Errors) != 1 {
			t.Errorf("got %d %+v", rec.Code, body)
		}
	})
}

type pageRequest struct{ perPage int }

func (p pageRequest) Validate() error {
	if p.perPage > 100 {
		return errors.New("per_page must not exceed 100")
	}
	if p.perPage < 0 {
		return NewValidationErrorWithCode("validation.per_page", "per_page must be positive", nil)
	}
	return nil
}

func TestValidateDTO(t *testing.T) {
	if err := ValidateDTO(pageRequest{perPage: 10}); err != nil {
		t.Errorf("ValidateDTO(valid) = %v", err)
	}

	var appErr *AppError
	if err := ValidateDTO(pageRequest{perPage: 500}); !errors.As(err, &appErr) || appErr.Code != "validation.failed" {
		t.Errorf("ValidateDTO(too large) = %v", err)
	}
	if err := ValidateDTO(pageRequest{perPage: -1}); !errors.As(err, &appErr) || appErr.Code != "validation.per_page" {
		t.Errorf("ValidateDTO(negative) = %v", err)
	}
	if err := ValidateDTO(nil); err == nil {
		t.Error("ValidateDTO(nil) should fail")
	}
}
