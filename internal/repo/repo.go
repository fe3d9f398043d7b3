package repo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/Skotchmaster/product_catalog/internal/domain"
	"github.com/Skotchmaster/product_catalog/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

// AutoMigrate builds the schema from the models. Postgres deployments use the
// SQL migrations in pkg/db instead.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Product{}, &models.User{})
}

// classify maps storage errors onto the domain taxonomy, keeping the cause.
func classify(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", domain.ErrConflict, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %w", domain.ErrConstraint, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return fmt.Errorf("%w: %w", domain.ErrConflict, err)
		}
		if strings.HasPrefix(pgErr.Code, "23") {
			return fmt.Errorf("%w: %w", domain.ErrConstraint, err)
		}
		return err
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint failed"):
		return fmt.Errorf("%w: %w", domain.ErrConflict, err)
	case strings.Contains(msg, "constraint failed"), strings.Contains(msg, "check constraint"):
		return fmt.Errorf("%w: %w", domain.ErrConstraint, err)
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}
