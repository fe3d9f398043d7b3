package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/product_catalog/internal/handlers"
	"github.com/Skotchmaster/product_catalog/internal/policy"
	"github.com/Skotchmaster/product_catalog/internal/ratelimit"
	"github.com/Skotchmaster/product_catalog/pkg/db"
	"github.com/Skotchmaster/product_catalog/pkg/logging"
	authmw "github.com/Skotchmaster/product_catalog/pkg/middleware/auth"
)

type Deps struct {
	DB             *gorm.DB
	ProductHandler *handlers.ProductHandler
	AuthHandler    *handlers.AuthHandler
	SearchHandler  *handlers.SearchHandler
	Auth           *authmw.BearerMiddleware

	APILimiter   ratelimit.Limiter
	LoginLimiter ratelimit.Limiter

	ServiceName string
	Version     string
	Environment string
}

func limit(l ratelimit.Limiter, group, message string) []echo.MiddlewareFunc {
	if l == nil {
		return nil
	}
	return []echo.MiddlewareFunc{ratelimit.Middleware(l, group, message)}
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/", d.info)
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)

	api := e.Group("/api", limit(d.APILimiter, "api", "too many requests, please try again later")...)
	api.GET("/health", d.health)

	products := api.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/search/:term", d.ProductHandler.SearchProducts)
	products.GET("/category/:category", d.ProductHandler.ProductsByCategory)
	products.GET("/inventory/low-stock", d.ProductHandler.LowStock, d.Auth.Require(policy.InventoryRead))
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.POST("", d.ProductHandler.CreateProduct, d.Auth.Require(policy.ProductCreate))
	products.PUT("/:id", d.ProductHandler.UpdateProduct, d.Auth.Require(policy.ProductUpdate))
	products.DELETE("/:id", d.ProductHandler.DeleteProduct, d.Auth.Require(policy.ProductDelete))

	api.GET("/search", d.SearchHandler.Search)

	auth := api.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login,
		limit(d.LoginLimiter, "login", "too many login attempts, please try again in 15 minutes")...)
	auth.GET("/profile", d.AuthHandler.Profile, d.Auth.RequireAuth)
	auth.GET("/users", d.AuthHandler.ListUsers, d.Auth.Require(policy.UserList))
	auth.GET("/users/:id", d.AuthHandler.GetUser, d.Auth.RequireOwner(policy.UserRead, "id"))
}

func (d *Deps) info(c echo.Context) error {
	return c.JSON(http.StatusOK, handlers.Response{
		Success: true,
		Message: d.ServiceName + " API",
		Data: echo.Map{
			"name":    d.ServiceName,
			"version": d.Version,
			"endpoints": echo.Map{
				"products": "/api/products",
				"auth":     "/api/auth",
				"search":   "/api/search",
				"health":   "/api/health",
			},
		},
		Timestamp: time.Now().UTC(),
	})
}

func (d *Deps) health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"message":     "API is running",
		"timestamp":   time.Now().UTC(),
		"environment": d.Environment,
	})
}

func (d *Deps) ready(c echo.Context) error {
	ctx := c.Request().Context()
	if d.DB == nil {
		return c.NoContent(http.StatusServiceUnavailable)
	}
	if err := db.Ping(ctx, d.DB); err != nil {
		logging.FromContext(ctx).Error("readiness_failed", "error", err)
		return c.NoContent(http.StatusServiceUnavailable)
	}
	return c.NoContent(http.StatusOK)
}
