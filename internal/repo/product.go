package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/product_catalog/internal/models"
)

type ProductQuery struct {
	Category string
	MinPrice *float64
	MaxPrice *float64
}

func (r *GormRepo) ListProducts(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	tx := r.DB.WithContext(ctx).Model(&models.Product{})
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}
	if q.MinPrice != nil {
		tx = tx.Where("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		tx = tx.Where("price <= ?", *q.MaxPrice)
	}

	items := make([]models.Product, 0)
	if err := tx.Order("created_at DESC").Order("id DESC").Find(&items).Error; err != nil {
		return nil, classify(err)
	}
	return items, nil
}

func (r *GormRepo) SearchProducts(ctx context.Context, term string) ([]models.Product, error) {
	items := make([]models.Product, 0)
	if err := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, containsPattern(term)).
		Order("name ASC").
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, classify(err)
	}
	return items, nil
}

func (r *GormRepo) LowStockProducts(ctx context.Context, threshold int) ([]models.Product, error) {
	items := make([]models.Product, 0)
	if err := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("stock < ?", threshold).
		Order("stock ASC").
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, classify(err)
	}
	return items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, classify(err)
	}
	return &product, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) (*models.Product, error) {
	if err := r.DB.WithContext(ctx).Create(prod).Error; err != nil {
		return nil, classify(err)
	}
	return prod, nil
}

// UpdateProduct re-fetches the row, applies mutate and saves every column.
// Concurrent updates are last-write-wins.
func (r *GormRepo) UpdateProduct(ctx context.Context, id uint, mutate func(*models.Product)) (*models.Product, error) {
	var prod models.Product
	if err := r.DB.WithContext(ctx).First(&prod, id).Error; err != nil {
		return nil, classify(err)
	}

	mutate(&prod)
	prod.ID = id

	if err := r.DB.WithContext(ctx).Save(&prod).Error; err != nil {
		return nil, classify(err)
	}
	return &prod, nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return classify(gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *GormRepo) CountProducts(ctx context.Context) (int64, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return 0, classify(err)
	}
	return total, nil
}
