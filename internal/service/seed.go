package service

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/product_catalog/internal/models"
	"github.com/Skotchmaster/product_catalog/pkg/logging"
)

type seedStore interface {
	CountProducts(ctx context.Context) (int64, error)
	CreateProduct(ctx context.Context, prod *models.Product) (*models.Product, error)
}

var demoProducts = []models.Product{
	{Name: "Laptop Pro", Description: "High performance laptop", Price: 1299.99, Category: "Electronics", Stock: 15},
	{Name: "Wireless Mouse", Description: "Ergonomic wireless mouse", Price: 29.99, Category: "Electronics", Stock: 50},
	{Name: "Go Programming Book", Description: "Learn Go from scratch", Price: 39.99, Category: "Books", Stock: 3},
}

// SeedDemoProducts fills an empty catalog with a few demo rows. It does
// nothing when products already exist.
func SeedDemoProducts(ctx context.Context, store seedStore) (int, error) {
	l := logging.FromContext(ctx).With("svc", "seed")

	n, err := store.CountProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	if n > 0 {
		l.Info("seed_skipped", "existing", n)
		return 0, nil
	}

	for i := range demoProducts {
		p := demoProducts[i]
		if _, err := store.CreateProduct(ctx, &p); err != nil {
			return i, fmt.Errorf("seed product %q: %w", p.Name, err)
		}
	}
	l.Info("seed_done", "created", len(demoProducts))
	return len(demoProducts), nil
}
