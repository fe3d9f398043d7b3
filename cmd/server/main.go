package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Skotchmaster/product_catalog/internal/cache"
	"github.com/Skotchmaster/product_catalog/internal/config"
	"github.com/Skotchmaster/product_catalog/internal/es"
	"github.com/Skotchmaster/product_catalog/internal/handlers"
	"github.com/Skotchmaster/product_catalog/internal/mykafka"
	"github.com/Skotchmaster/product_catalog/internal/ratelimit"
	"github.com/Skotchmaster/product_catalog/internal/repo"
	"github.com/Skotchmaster/product_catalog/internal/service"
	"github.com/Skotchmaster/product_catalog/internal/service/search"
	httpserver "github.com/Skotchmaster/product_catalog/internal/transport/http"
	"github.com/Skotchmaster/product_catalog/internal/validation"
	pkgdb "github.com/Skotchmaster/product_catalog/pkg/db"
	"github.com/Skotchmaster/product_catalog/pkg/logging"
	authmw "github.com/Skotchmaster/product_catalog/pkg/middleware/auth"
	loggingmw "github.com/Skotchmaster/product_catalog/pkg/middleware/logging"
	"github.com/Skotchmaster/product_catalog/pkg/middleware/sanitize"
)

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName, "env", cfg.AppEnv)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		cancel()
		log.Fatalf("db open: %v", err)
	}
	if err := migrate(cfg, db); err != nil {
		cancel()
		log.Fatalf("migrate: %v", err)
	}

	store := &repo.GormRepo{DB: db}
	if cfg.SeedProducts {
		if _, err := service.SeedDemoProducts(ctx, store); err != nil {
			logger.Error("seed_failed", "error", err)
		}
	}

	rdb := connectRedis(ctx, cfg, logger)
	index := connectSearch(ctx, cfg, logger)
	cancel()

	var events mykafka.Publisher = mykafka.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		events = mykafka.NewProducer(cfg.KafkaBrokers)
		logger.Info("kafka_enabled", "brokers", cfg.KafkaBrokers)
	}

	v := validation.New()

	catalog := &service.CatalogService{
		Repo:               store,
		Validator:          v,
		Events:             events,
		HighValueThreshold: cfg.HighValueThreshold,
		LowStockThreshold:  cfg.LowStockThreshold,
	}
	if rdb != nil {
		catalog.Cache = cache.NewProductCache(rdb, cfg.CacheTTL)
	}
	if index != nil {
		catalog.Index = index
	}

	authSvc := &service.AuthService{
		Repo:       store,
		Validator:  v,
		Events:     events,
		JWTSecret:  cfg.JWTSecret,
		TokenTTL:   cfg.TokenTTL,
		BcryptCost: cfg.BcryptCost,
	}

	apiLimiter, loginLimiter := newLimiters(cfg, rdb)

	e := echo.New()
	e.HideBanner = true
	e.Validator = v
	e.HTTPErrorHandler = handlers.ErrorHandler(cfg.IsDevelopment())

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.Recover())
	e.Use(echomw.Secure())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(echomw.BodyLimit(cfg.BodyLimit))
	e.Use(sanitize.Middleware())

	httpserver.Register(e, &httpserver.Deps{
		DB:             db,
		ProductHandler: &handlers.ProductHandler{Catalog: catalog},
		AuthHandler:    &handlers.AuthHandler{Auth: authSvc},
		SearchHandler:  handlers.NewSearchHandler(index),
		Auth:           authmw.NewBearerMiddleware(cfg.JWTSecret),
		APILimiter:     apiLimiter,
		LoginLimiter:   loginLimiter,
		ServiceName:    cfg.ServiceName,
		Version:        cfg.Version,
		Environment:    cfg.AppEnv,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	if err := events.Close(); err != nil {
		logger.Error("kafka_close_error", "error", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Error("redis_close_error", "error", err)
		}
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Error("db_close_error", "error", err)
	}

	logger.Info("stopped")
}

func migrate(cfg *config.Config, db *gorm.DB) error {
	if !cfg.MigrateOnBoot {
		return nil
	}
	if cfg.DBDriver == pkgdb.DriverSQLite {
		return repo.AutoMigrate(db)
	}
	return pkgdb.RunMigrations(cfg.DatabaseURL)
}

// connectRedis returns nil when redis is not configured or unreachable. The
// product cache is optional; a redis-backed limiter is not.
func connectRedis(ctx context.Context, cfg *config.Config, logger *slog.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		if cfg.RateLimitStore == "redis" {
			log.Fatalf("redis: %v", err)
		}
		logger.Warn("redis_unavailable", "addr", cfg.RedisAddr, "error", err)
		return nil
	}
	logger.Info("redis_enabled", "addr", cfg.RedisAddr)
	return rdb
}

func connectSearch(ctx context.Context, cfg *config.Config, logger *slog.Logger) *search.Index {
	if cfg.ESURL == "" {
		return nil
	}
	client, err := es.NewClient(ctx, cfg)
	if err != nil {
		logger.Warn("search_unavailable", "url", cfg.ESURL, "error", err)
		return nil
	}
	ix := search.NewIndex(client, cfg.ESIndex)
	if err := ix.EnsureIndex(ctx); err != nil {
		logger.Warn("search_index_setup_failed", "index", cfg.ESIndex, "error", err)
	}
	return ix
}

func newLimiters(cfg *config.Config, rdb *redis.Client) (api, login ratelimit.Limiter) {
	if cfg.RateLimitStore == "redis" && rdb != nil {
		return ratelimit.NewRedisLimiter(rdb, "api", cfg.APIRateLimit, cfg.RateLimitWindow),
			ratelimit.NewRedisLimiter(rdb, "login", cfg.LoginRateLimit, cfg.RateLimitWindow)
	}
	return ratelimit.NewMemoryLimiter(cfg.APIRateLimit, cfg.RateLimitWindow),
		ratelimit.NewMemoryLimiter(cfg.LoginRateLimit, cfg.RateLimitWindow)
}
