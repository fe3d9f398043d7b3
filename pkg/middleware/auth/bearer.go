package authmw

import (
	"errors"
	"net/http"
	"strconv"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/product_catalog/internal/domain"
	"github.com/Skotchmaster/product_catalog/internal/policy"
	"github.com/Skotchmaster/product_catalog/pkg/logging"
	"github.com/Skotchmaster/product_catalog/pkg/tokens"
)

const callerKey = "caller"

type BearerMiddleware struct {
	JWTSecret []byte

	parse echo.MiddlewareFunc
}

func NewBearerMiddleware(secret []byte) *BearerMiddleware {
	m := &BearerMiddleware{JWTSecret: secret}
	m.parse = echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ContextKey:  callerKey,
		ParseTokenFunc: func(_ echo.Context, auth string) (interface{}, error) {
			id, err := tokens.Parse(m.JWTSecret, auth)
			if err != nil {
				return nil, err
			}
			return &policy.Caller{ID: id.ID, Username: id.Username, Role: id.Role}, nil
		},
		ErrorHandler: tokenError,
	})
	return m
}

func tokenError(c echo.Context, err error) error {
	l := logging.FromContext(c.Request().Context())
	switch {
	case errors.Is(err, tokens.ErrExpiredToken):
		l.Warn("auth_rejected", "status", 401, "reason", "expired")
		return echo.NewHTTPError(http.StatusUnauthorized, "token expired").SetInternal(err)
	case errors.Is(err, tokens.ErrInvalidToken):
		l.Warn("auth_rejected", "status", 401, "reason", "invalid")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token").SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusUnauthorized, "access token required").SetInternal(err)
	}
}

// Require admits callers that the policy allows to perform action.
func (m *BearerMiddleware) Require(action policy.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return m.parse(func(c echo.Context) error {
			if err := authorize(c, action, policy.Resource{}); err != nil {
				return err
			}
			return next(c)
		})
	}
}

// RequireOwner is Require with the owner taken from the named path param.
func (m *BearerMiddleware) RequireOwner(action policy.Action, param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return m.parse(func(c echo.Context) error {
			owner, err := strconv.ParseUint(c.Param(param), 10, 64)
			if err != nil || owner == 0 {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
			}
			if err := authorize(c, action, policy.Resource{OwnerID: uint(owner)}); err != nil {
				return err
			}
			return next(c)
		})
	}
}

func (m *BearerMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.parse(next)
}

func authorize(c echo.Context, action policy.Action, res policy.Resource) error {
	caller := CallerFrom(c)
	err := policy.Authorize(caller, action, res)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrUnauthenticated):
		return echo.NewHTTPError(http.StatusUnauthorized, "access token required").SetInternal(err)
	default:
		logging.FromContext(c.Request().Context()).Warn("access_denied",
			"status", 403, "action", action.String(), "user_id", caller.ID, "role", caller.Role)
		return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions").SetInternal(err)
	}
}

// CallerFrom returns the authenticated caller or nil.
func CallerFrom(c echo.Context) *policy.Caller {
	caller, _ := c.Get(callerKey).(*policy.Caller)
	return caller
}
