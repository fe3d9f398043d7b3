package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/product_catalog/internal/domain"
	"github.com/Skotchmaster/product_catalog/pkg/tokens"
)

func render(t *testing.T, dev bool, err error) (int, Response) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ErrorHandler(dev)(err, c)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func TestErrorHandler_Mapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		code   string
		msg    string
	}{
		{"validation", domain.NewValidationError("invalid input", domain.FieldError{Field: "name", Message: "is required"}), 400, "VALIDATION_ERROR", "invalid input"},
		{"wrapped not found", fmt.Errorf("get product 3: %w", domain.ErrNotFound), 404, "NOT_FOUND", "resource not found"},
		{"public not found", withMessage(domain.ErrNotFound, "product not found"), 404, "NOT_FOUND", "product not found"},
		{"conflict", domain.NewConflict("username already taken"), 409, "CONFLICT", "username already taken"},
		{"constraint", fmt.Errorf("create: %w", domain.ErrConstraint), 400, "CONSTRAINT_VIOLATION", "constraint violation"},
		{"credentials", domain.ErrInvalidCredentials, 401, "INVALID_CREDENTIALS", "invalid credentials"},
		{"expired", fmt.Errorf("%w: exp", tokens.ErrExpiredToken), 401, "TOKEN_EXPIRED", "token expired"},
		{"forbidden", domain.ErrForbidden, 403, "FORBIDDEN", "insufficient permissions"},
		{"http error", echo.NewHTTPError(http.StatusTooManyRequests, "slow down"), 429, "RATE_LIMITED", "slow down"},
		{"route not found", echo.ErrNotFound, 404, "NOT_FOUND", "route not found"},
		{"http with sentinel", echo.NewHTTPError(http.StatusForbidden, "admin access required").SetInternal(domain.ErrForbidden), 403, "FORBIDDEN", "admin access required"},
		{"unknown", errors.New("pq: connection refused"), 500, "INTERNAL_ERROR", "internal server error"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			status, resp := render(t, false, tt.err)
			assert.Equal(t, tt.status, status)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.msg, resp.Message)
			assert.Empty(t, resp.Error.Stack)
			assert.Empty(t, resp.Error.Cause)
			assert.False(t, resp.Timestamp.IsZero())
		})
	}
}

func TestErrorHandler_ValidationDetails(t *testing.T) {
	t.Parallel()

	err := domain.NewValidationError("invalid input",
		domain.FieldError{Field: "name", Message: "is required"},
		domain.FieldError{Field: "price", Message: "must be greater than 0"},
	)
	_, resp := render(t, false, err)
	require.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "price", resp.Error.Details[1].Field)
}

func TestErrorHandler_DevExposesInternals(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("list products: %w", errors.New("db is gone"))

	_, prod := render(t, false, err)
	assert.Empty(t, prod.Error.Cause)

	_, dev := render(t, true, err)
	assert.Equal(t, "internal server error", dev.Message)
	assert.Equal(t, "list products: db is gone", dev.Error.Cause)
	assert.Equal(t, []string{"list products: db is gone", "db is gone"}, dev.Error.Stack)
}

func TestSuccessEnvelope(t *testing.T) {
	t.Parallel()

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, success(c, http.StatusCreated, "created", map[string]int{"id": 1}))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Equal(t, true, raw["success"])
	assert.Equal(t, "created", raw["message"])
	assert.NotContains(t, raw, "error")
	assert.Contains(t, raw, "timestamp")
}
