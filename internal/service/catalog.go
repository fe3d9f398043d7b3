package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Skotchmaster/product_catalog/internal/cache"
	"github.com/Skotchmaster/product_catalog/internal/domain"
	"github.com/Skotchmaster/product_catalog/internal/models"
	"github.com/Skotchmaster/product_catalog/internal/mykafka"
	"github.com/Skotchmaster/product_catalog/internal/repo"
	"github.com/Skotchmaster/product_catalog/internal/transport"
	"github.com/Skotchmaster/product_catalog/internal/validation"
	"github.com/Skotchmaster/product_catalog/pkg/logging"
)

const (
	DefaultHighValueThreshold = 10000
	DefaultLowStockThreshold  = 5
	MinSearchTermLen          = 2

	publishTimeout = 5 * time.Second
)

var defaultValidator = validation.New()

type ProductStore interface {
	ListProducts(ctx context.Context, q repo.ProductQuery) ([]models.Product, error)
	SearchProducts(ctx context.Context, term string) ([]models.Product, error)
	LowStockProducts(ctx context.Context, threshold int) ([]models.Product, error)
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	CreateProduct(ctx context.Context, prod *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uint, mutate func(*models.Product)) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
}

// Indexer mirrors product changes into the full-text index.
type Indexer interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
}

type CatalogService struct {
	Repo      ProductStore
	Validator *validation.Validator
	Cache     *cache.ProductCache
	Events    mykafka.Publisher
	Index     Indexer

	HighValueThreshold float64
	LowStockThreshold  int
}

func (s *CatalogService) validate(v any) error {
	if s.Validator != nil {
		return s.Validator.Validate(v)
	}
	return defaultValidator.Validate(v)
}

func (s *CatalogService) highValue() float64 {
	if s.HighValueThreshold > 0 {
		return s.HighValueThreshold
	}
	return DefaultHighValueThreshold
}

func (s *CatalogService) lowStock() int {
	if s.LowStockThreshold > 0 {
		return s.LowStockThreshold
	}
	return DefaultLowStockThreshold
}

// List returns products newest first. A search term switches to name search.
func (s *CatalogService) List(ctx context.Context, f transport.ProductFilter) ([]models.Product, error) {
	if err := s.validate(&f); err != nil {
		return nil, err
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return nil, domain.NewValidationError("invalid filters",
			domain.FieldError{Field: "minPrice", Message: "must not exceed maxPrice"})
	}
	if f.Search != "" {
		return s.Search(ctx, f.Search)
	}

	unfiltered := f.Category == "" && f.MinPrice == nil && f.MaxPrice == nil
	if unfiltered {
		if items, ok := s.Cache.GetAll(ctx); ok {
			return items, nil
		}
	}

	items, err := s.Repo.ListProducts(ctx, repo.ProductQuery{
		Category: validation.Escape(f.Category),
		MinPrice: f.MinPrice,
		MaxPrice: f.MaxPrice,
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if unfiltered {
		s.Cache.SetAll(ctx, items)
	}
	return items, nil
}

func (s *CatalogService) ByCategory(ctx context.Context, category string) ([]models.Product, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, domain.NewValidationError("invalid category",
			domain.FieldError{Field: "category", Message: "is required"})
	}
	return s.List(ctx, transport.ProductFilter{Category: category})
}

// Search matches the trimmed term as a case-insensitive substring of the name.
func (s *CatalogService) Search(ctx context.Context, term string) ([]models.Product, error) {
	term = strings.TrimSpace(term)
	if utf8.RuneCountInString(term) < MinSearchTermLen {
		return nil, domain.NewValidationError("invalid search term", domain.FieldError{
			Field:   "term",
			Message: "must be at least " + strconv.Itoa(MinSearchTermLen) + " characters",
			Value:   term,
		})
	}

	items, err := s.Repo.SearchProducts(ctx, validation.Escape(term))
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return items, nil
}

func (s *CatalogService) LowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	if threshold <= 0 {
		threshold = s.lowStock()
	}
	items, err := s.Repo.LowStockProducts(ctx, threshold)
	if err != nil {
		return nil, fmt.Errorf("low stock products: %w", err)
	}
	return items, nil
}

func (s *CatalogService) Get(ctx context.Context, id uint) (*models.Product, error) {
	if prod, ok := s.Cache.GetProduct(ctx, id); ok {
		return prod, nil
	}
	prod, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	s.Cache.SetProduct(ctx, prod)
	return prod, nil
}

func (s *CatalogService) Create(ctx context.Context, req *transport.CreateProductRequest) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create")

	if err := s.validate(req); err != nil {
		return nil, err
	}
	prod := req.ToModel()

	if prod.Price > s.highValue() {
		l.Warn("high_value_product", "name", prod.Name, "price", prod.Price)
	}

	created, err := s.Repo.CreateProduct(ctx, prod)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	l.Info("product_created", "product_id", created.ID)

	s.Cache.Invalidate(ctx, 0)
	s.reindex(ctx, created)
	s.publish(ctx, strconv.FormatUint(uint64(created.ID), 10), map[string]any{
		"type":      "product_created",
		"productID": created.ID,
		"name":      created.Name,
	})
	return created, nil
}

// Update merges the present fields into the stored product.
func (s *CatalogService) Update(ctx context.Context, id uint, req *transport.UpdateProductRequest) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update", "product_id", id)

	if err := s.validate(req); err != nil {
		return nil, err
	}
	if req.Empty() {
		return nil, domain.NewValidationError("no fields to update")
	}

	updated, err := s.Repo.UpdateProduct(ctx, id, req.Apply)
	if err != nil {
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}

	if req.Stock != nil && updated.Stock < s.lowStock() {
		l.Warn("low_stock_product", "name", updated.Name, "stock", updated.Stock)
	}
	l.Info("product_updated")

	s.Cache.Invalidate(ctx, id)
	s.reindex(ctx, updated)
	s.publish(ctx, strconv.FormatUint(uint64(id), 10), map[string]any{
		"type":      "product_updated",
		"productID": updated.ID,
		"name":      updated.Name,
	})
	return updated, nil
}

func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete", "product_id", id)

	prod, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if prod.Stock > 0 {
		l.Warn("deleting_product_with_stock", "name", prod.Name, "stock", prod.Stock)
	}

	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	l.Info("product_deleted")

	s.Cache.Invalidate(ctx, id)
	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			l.Warn("search_index_error", "error", err)
		}
	}
	s.publish(ctx, strconv.FormatUint(uint64(id), 10), map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})
	return nil
}

func (s *CatalogService) reindex(ctx context.Context, p *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_error", "product_id", p.ID, "error", err)
	}
}

func (s *CatalogService) publish(ctx context.Context, key string, event map[string]any) {
	if s.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := s.Events.PublishEvent(ctx, mykafka.TopicProducts, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_error", "topic", mykafka.TopicProducts, "error", err)
	}
}
