package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/product_catalog/internal/domain"
	"github.com/Skotchmaster/product_catalog/pkg/logging"
)

// Middleware limits requests per client IP. Limiter failures let the request through.
func Middleware(l Limiter, group, message string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			ip := c.RealIP()

			d, err := l.Allow(ctx, group+":"+ip)
			if err != nil {
				logging.FromContext(ctx).Warn("rate_limit_unavailable", "group", group, "error", err)
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

			if !d.Allowed {
				retry := int(math.Ceil(time.Until(d.ResetAt).Seconds()))
				if retry < 1 {
					retry = 1
				}
				h.Set(echo.HeaderRetryAfter, strconv.Itoa(retry))
				logging.FromContext(ctx).Warn("rate_limited", "group", group, "remote_ip", ip, "status", 429)
				return echo.NewHTTPError(http.StatusTooManyRequests, message).SetInternal(domain.ErrRateLimited)
			}
			return next(c)
		}
	}
}
