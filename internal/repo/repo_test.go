package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/product_catalog/internal/domain"
	"github.com/Skotchmaster/product_catalog/internal/models"
)

func InitTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func seed(t *testing.T, r *GormRepo, products ...models.Product) []models.Product {
	t.Helper()
	out := make([]models.Product, 0, len(products))
	for i := range products {
		p := products[i]
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Date(2024, 1, 1, 0, 0, i, 0, time.UTC)
		}
		created, err := r.CreateProduct(context.Background(), &p)
		require.NoError(t, err)
		out = append(out, *created)
	}
	return out
}

func ptr(f float64) *float64 { return &f }

func TestListProducts_FiltersAndOrder(t *testing.T) {
	r := &GormRepo{DB: InitTestDB(t)}
	seed(t, r,
		models.Product{Name: "Laptop", Price: 899.99, Category: "Tech", Stock: 10},
		models.Product{Name: "Phone", Price: 299.00, Category: "Tech", Stock: 5},
		models.Product{Name: "Book", Price: 29.99, Category: "Education", Stock: 20},
		models.Product{Name: "Tablet", Price: 450.00, Category: "Tech", Stock: 2},
	)
	ctx := context.Background()

	all, err := r.ListProducts(ctx, ProductQuery{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "Tablet", all[0].Name)
	assert.Equal(t, "Laptop", all[3].Name)

	tech, err := r.ListProducts(ctx, ProductQuery{Category: "Tech"})
	require.NoError(t, err)
	assert.Len(t, tech, 3)

	ranged, err := r.ListProducts(ctx, ProductQuery{MinPrice: ptr(100), MaxPrice: ptr(500)})
	require.NoError(t, err)
	require.Len(t, ranged, 2)
	assert.Equal(t, "Tablet", ranged[0].Name)
	assert.Equal(t, "Phone", ranged[1].Name)
	for _, p := range ranged {
		assert.GreaterOrEqual(t, p.Price, 100.0)
		assert.LessOrEqual(t, p.Price, 500.0)
	}
}

func TestSearchProducts_CaseInsensitiveSubstring(t *testing.T) {
	r := &GormRepo{DB: InitTestDB(t)}
	seed(t, r,
		models.Product{Name: "Wireless Mouse", Price: 20, Category: "Tech"},
		models.Product{Name: "mouse pad", Price: 5, Category: "Tech"},
		models.Product{Name: "Keyboard", Price: 40, Category: "Tech"},
		models.Product{Name: "100% Cotton", Price: 15, Category: "Home"},
	)
	ctx := context.Background()

	got, err := r.SearchProducts(ctx, "MOUSE")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Wireless Mouse", got[0].Name)
	assert.Equal(t, "mouse pad", got[1].Name)

	pct, err := r.SearchProducts(ctx, "0%")
	require.NoError(t, err)
	require.Len(t, pct, 1)
	assert.Equal(t, "100% Cotton", pct[0].Name)

	none, err := r.SearchProducts(ctx, "zz")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLowStockProducts(t *testing.T) {
	r := &GormRepo{DB: InitTestDB(t)}
	seed(t, r,
		models.Product{Name: "A", Price: 1, Stock: 0},
		models.Product{Name: "B", Price: 1, Stock: 4},
		models.Product{Name: "C", Price: 1, Stock: 5},
	)

	got, err := r.LowStockProducts(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Name)
	assert.Equal(t, "B", got[1].Name)
}

func TestProductCRUD(t *testing.T) {
	r := &GormRepo{DB: InitTestDB(t)}
	ctx := context.Background()

	created, err := r.CreateProduct(ctx, &models.Product{Name: "Mouse", Price: 9.99, Category: "Tech", Stock: 50})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	got, err := r.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mouse", got.Name)
	assert.InDelta(t, 9.99, got.Price, 0.0001)

	updated, err := r.UpdateProduct(ctx, created.ID, func(p *models.Product) { p.Stock = 3 })
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Stock)
	assert.Equal(t, "Mouse", updated.Name)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	require.NoError(t, r.DeleteProduct(ctx, created.ID))

	_, err = r.GetProduct(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, r.DeleteProduct(ctx, created.ID), domain.ErrNotFound)

	_, err = r.UpdateProduct(ctx, 999, func(p *models.Product) {})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	n, err := r.CountProducts(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreateProduct_CheckConstraint(t *testing.T) {
	r := &GormRepo{DB: InitTestDB(t)}

	_, err := r.CreateProduct(context.Background(), &models.Product{Name: "Broken", Price: -1})
	assert.ErrorIs(t, err, domain.ErrConstraint)
}

func TestUsers(t *testing.T) {
	r := &GormRepo{DB: InitTestDB(t)}
	ctx := context.Background()

	first := &models.User{Username: "ana", Email: "ana@x.com", PasswordHash: "h", Role: models.RoleUser,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	second := &models.User{Username: "bob", Email: "bob@x.com", PasswordHash: "h", Role: models.RoleAdmin,
		CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, r.CreateUser(ctx, first))
	require.NoError(t, r.CreateUser(ctx, second))

	dupEmail := &models.User{Username: "carl", Email: "ana@x.com", PasswordHash: "h", Role: models.RoleUser}
	assert.ErrorIs(t, r.CreateUser(ctx, dupEmail), domain.ErrConflict)

	dupName := &models.User{Username: "ana", Email: "other@x.com", PasswordHash: "h", Role: models.RoleUser}
	assert.ErrorIs(t, r.CreateUser(ctx, dupName), domain.ErrConflict)

	byEmail, err := r.GetUserByEmail(ctx, "ana@x.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, byEmail.ID)

	_, err = r.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	users, err := r.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "bob", users[0].Username)

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, r.TouchLastLogin(ctx, first.ID, at))
	reloaded, err := r.GetUserByID(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastLogin)
	assert.WithinDuration(t, at, *reloaded.LastLogin, time.Second)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   error
		want error
	}{
		{name: "not found", in: gorm.ErrRecordNotFound, want: domain.ErrNotFound},
		{name: "duplicated", in: gorm.ErrDuplicatedKey, want: domain.ErrConflict},
		{name: "pg unique", in: &pgconn.PgError{Code: "23505"}, want: domain.ErrConflict},
		{name: "pg not null", in: &pgconn.PgError{Code: "23502"}, want: domain.ErrConstraint},
		{name: "sqlite unique", in: errors.New("UNIQUE constraint failed: users.email"), want: domain.ErrConflict},
		{name: "sqlite check", in: errors.New("CHECK constraint failed: chk_products_price"), want: domain.ErrConstraint},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, classify(tt.in), tt.want)
		})
	}

	assert.NoError(t, classify(nil))
	plain := errors.New("boom")
	assert.Equal(t, plain, classify(plain))
}
