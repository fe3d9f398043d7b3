// Command createadmin provisions the first admin account. Running it again
// with the same email is a no-op.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/Skotchmaster/product_catalog/internal/config"
	"github.com/Skotchmaster/product_catalog/internal/repo"
	"github.com/Skotchmaster/product_catalog/internal/service"
	"github.com/Skotchmaster/product_catalog/internal/validation"
	pkgcfg "github.com/Skotchmaster/product_catalog/pkg/config"
	pkgdb "github.com/Skotchmaster/product_catalog/pkg/db"
	"github.com/Skotchmaster/product_catalog/pkg/logging"
)

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", "createadmin")
	slog.SetDefault(logger)

	username := pkgcfg.EnvDefault("ADMIN_USERNAME", "admin")
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	pkgcfg.MustNonEmpty(email, "ADMIN_EMAIL")
	pkgcfg.MustNonEmpty(password, "ADMIN_PASSWORD")

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is empty")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ctx = logging.IntoContext(ctx, logger)

	db, err := pkgdb.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer pkgdb.Close(db)

	if cfg.MigrateOnBoot {
		migrate := func() error { return pkgdb.RunMigrations(cfg.DatabaseURL) }
		if cfg.DBDriver == pkgdb.DriverSQLite {
			migrate = func() error { return repo.AutoMigrate(db) }
		}
		if err := migrate(); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	auth := &service.AuthService{
		Repo:       &repo.GormRepo{DB: db},
		Validator:  validation.New(),
		BcryptCost: cfg.BcryptCost,
	}

	u, created, err := auth.EnsureAdmin(ctx, username, email, password)
	if err != nil {
		logger.Error("create_admin_failed", "error", err)
		pkgdb.Close(db)
		os.Exit(1)
	}
	if !created {
		logger.Info("admin_exists", "user_id", u.ID, "email", u.Email, "role", u.Role)
		return
	}
	logger.Info("admin_created", "user_id", u.ID, "username", u.Username, "email", u.Email)
}
