package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/product_catalog/internal/domain"
	"github.com/Skotchmaster/product_catalog/pkg/logging"
	"github.com/Skotchmaster/product_catalog/pkg/tokens"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message"`
	Data      any        `json:"data,omitempty"`
	Error     *ErrorBody `json:"error,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

type ErrorBody struct {
	Code    string              `json:"code"`
	Details []domain.FieldError `json:"details,omitempty"`
	Cause   string              `json:"cause,omitempty"`
	Stack   []string            `json:"stack,omitempty"`
}

func success(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

// publicError swaps the client-facing text while keeping the cause for
// status mapping.
type publicError struct {
	msg string
	err error
}

func (e *publicError) Error() string { return e.msg }
func (e *publicError) Unwrap() error { return e.err }

func withMessage(err error, msg string) error {
	return &publicError{msg: msg, err: err}
}

type mapping struct {
	target  error
	status  int
	code    string
	message string
}

var mappings = []mapping{
	{domain.ErrValidation, http.StatusBadRequest, "VALIDATION_ERROR", "invalid input"},
	{tokens.ErrExpiredToken, http.StatusUnauthorized, "TOKEN_EXPIRED", "token expired"},
	{tokens.ErrInvalidToken, http.StatusUnauthorized, "INVALID_TOKEN", "invalid token"},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials"},
	{domain.ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required"},
	{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN", "insufficient permissions"},
	{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND", "resource not found"},
	{domain.ErrConflict, http.StatusConflict, "CONFLICT", "resource already exists"},
	{domain.ErrConstraint, http.StatusBadRequest, "CONSTRAINT_VIOLATION", "constraint violation"},
	{domain.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests"},
}

// ErrorHandler renders every error as an envelope. Internal detail is only
// exposed when dev is set.
func ErrorHandler(dev bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body, msg := classify(err)
		if dev && status >= http.StatusInternalServerError {
			body.Cause = err.Error()
			body.Stack = chain(err)
		}
		if status >= http.StatusInternalServerError {
			logging.FromContext(c.Request().Context()).Error("unhandled_error", "status", status, "error", err)
		}

		resp := Response{
			Success:   false,
			Message:   msg,
			Error:     body,
			Timestamp: time.Now().UTC(),
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, resp)
		}
		if werr != nil {
			logging.FromContext(c.Request().Context()).Error("error_response_write_failed", "error", werr)
		}
	}
}

func classify(err error) (int, *ErrorBody, string) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, &ErrorBody{Code: "VALIDATION_ERROR", Details: verr.Fields}, verr.Message
	}

	var pub *publicError
	hasPublic := errors.As(err, &pub)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			if status, body, msg, ok := fromSentinel(he.Internal); ok && status == he.Code {
				return status, body, httpMessage(he, msg)
			}
		}
		msg := httpMessage(he, http.StatusText(he.Code))
		if he.Code == http.StatusNotFound && errors.Is(he, echo.ErrNotFound) {
			msg = "route not found"
		}
		return he.Code, &ErrorBody{Code: codeFor(he.Code)}, msg
	}

	if status, body, msg, ok := fromSentinel(err); ok {
		var cerr *domain.ConflictError
		switch {
		case hasPublic:
			msg = pub.msg
		case errors.As(err, &cerr):
			msg = cerr.Message
		}
		return status, body, msg
	}

	return http.StatusInternalServerError, &ErrorBody{Code: "INTERNAL_ERROR"}, "internal server error"
}

func fromSentinel(err error) (int, *ErrorBody, string, bool) {
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return m.status, &ErrorBody{Code: m.code}, m.message, true
		}
	}
	return 0, nil, "", false
}

func httpMessage(he *echo.HTTPError, fallback string) string {
	switch m := he.Message.(type) {
	case string:
		if m != "" {
			return m
		}
	case error:
		return m.Error()
	case nil:
	default:
		return fmt.Sprint(m)
	}
	return fallback
}

func codeFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHENTICATED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	}
	text := http.StatusText(status)
	if text == "" {
		return "ERROR"
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}

func chain(err error) []string {
	var out []string
	for err != nil {
		out = append(out, err.Error())
		err = errors.Unwrap(err)
	}
	return out
}
