package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/product_catalog/internal/models"
	"github.com/Skotchmaster/product_catalog/pkg/logging"
)

const allProductsKey = "products:all"

func productKey(id uint) string { return "product:" + strconv.FormatUint(uint64(id), 10) }

// ProductCache is cache-aside storage for single products and the unfiltered
// list. A nil *ProductCache disables caching. Errors are logged, never returned.
type ProductCache struct {
	c   Cache
	ttl time.Duration
}

func NewProductCache(c Cache, ttl time.Duration) *ProductCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ProductCache{c: c, ttl: ttl}
}

func (p *ProductCache) GetProduct(ctx context.Context, id uint) (*models.Product, bool) {
	var prod models.Product
	if !p.get(ctx, productKey(id), &prod) {
		return nil, false
	}
	return &prod, true
}

func (p *ProductCache) SetProduct(ctx context.Context, prod *models.Product) {
	p.set(ctx, productKey(prod.ID), prod)
}

func (p *ProductCache) GetAll(ctx context.Context) ([]models.Product, bool) {
	var items []models.Product
	if !p.get(ctx, allProductsKey, &items) {
		return nil, false
	}
	return items, true
}

func (p *ProductCache) SetAll(ctx context.Context, items []models.Product) {
	p.set(ctx, allProductsKey, items)
}

// Invalidate drops the list and, when id is non-zero, the single entry.
func (p *ProductCache) Invalidate(ctx context.Context, id uint) {
	if p == nil {
		return
	}
	keys := []string{allProductsKey}
	if id != 0 {
		keys = append(keys, productKey(id))
	}
	if err := p.c.Del(ctx, keys...).Err(); err != nil {
		logging.FromContext(ctx).Warn("cache_invalidate_error", "keys", keys, "error", err)
	}
}

func (p *ProductCache) get(ctx context.Context, key string, dst any) bool {
	if p == nil {
		return false
	}
	raw, err := p.c.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logging.FromContext(ctx).Warn("cache_get_error", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		logging.FromContext(ctx).Warn("cache_decode_error", "key", key, "error", err)
		return false
	}
	return true
}

func (p *ProductCache) set(ctx context.Context, key string, v any) {
	if p == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := p.c.Set(ctx, key, raw, p.ttl).Err(); err != nil {
		logging.FromContext(ctx).Warn("cache_set_error", "key", key, "error", err)
	}
}
