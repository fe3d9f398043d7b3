package transport

import (
	"strings"

	"github.com/Skotchmaster/product_catalog/internal/models"
	"github.com/Skotchmaster/product_catalog/internal/validation"
)

type CreateProductRequest struct {
	Name        string                `json:"name"        validate:"required,min=1,max=200"`
	Description string                `json:"description" validate:"max=1000"`
	Price       *validation.FlexFloat `json:"price"       validate:"required,finite,gt=0,max=99999999.99"`
	Category    string                `json:"category"    validate:"required,max=100"`
	Stock       *validation.FlexInt   `json:"stock"       validate:"omitempty,integer,gte=0"`
	ImageURL    string                `json:"image_url"   validate:"omitempty,url,max=2048"`
}

func (r *CreateProductRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	r.Category = strings.TrimSpace(r.Category)
	r.ImageURL = strings.TrimSpace(r.ImageURL)
	roundPrice(r.Price)
}

// roundPrice runs before the rules so that gt=0 sees the stored value.
func roundPrice(p *validation.FlexFloat) {
	if p != nil {
		*p = validation.FlexFloat(validation.RoundPrice(p.Float()))
	}
}

func (r *CreateProductRequest) ToModel() *models.Product {
	p := &models.Product{
		Name:        validation.Escape(r.Name),
		Description: validation.Escape(r.Description),
		Category:    validation.Escape(r.Category),
		ImageURL:    r.ImageURL,
	}
	if r.Price != nil {
		p.Price = r.Price.Float()
	}
	if r.Stock != nil {
		p.Stock = r.Stock.Int()
	}
	return p
}

// UpdateProductRequest only touches the fields that are present.
type UpdateProductRequest struct {
	Name        *string               `json:"name"        validate:"omitempty,min=1,max=200"`
	Description *string               `json:"description" validate:"omitempty,max=1000"`
	Price       *validation.FlexFloat `json:"price"       validate:"omitempty,finite,gt=0,max=99999999.99"`
	Category    *string               `json:"category"    validate:"omitempty,min=1,max=100"`
	Stock       *validation.FlexInt   `json:"stock"       validate:"omitempty,integer,gte=0"`
	ImageURL    *string               `json:"image_url"   validate:"omitempty,url,max=2048"`

	clearImage bool
}

func (r *UpdateProductRequest) Normalize() {
	validation.TrimPtr(r.Name)
	validation.TrimPtr(r.Description)
	validation.TrimPtr(r.Category)
	validation.TrimPtr(r.ImageURL)
	roundPrice(r.Price)
	// an emptied image_url clears the field instead of failing the url rule
	if r.ImageURL != nil && *r.ImageURL == "" {
		r.ImageURL = nil
		r.clearImage = true
	}
}

func (r *UpdateProductRequest) Empty() bool {
	return r.Name == nil && r.Description == nil && r.Price == nil &&
		r.Category == nil && r.Stock == nil && r.ImageURL == nil && !r.clearImage
}

// Apply merges the present fields into p.
func (r *UpdateProductRequest) Apply(p *models.Product) {
	if r.Name != nil {
		p.Name = validation.Escape(*r.Name)
	}
	if r.Description != nil {
		p.Description = validation.Escape(*r.Description)
	}
	if r.Price != nil {
		p.Price = r.Price.Float()
	}
	if r.Category != nil {
		p.Category = validation.Escape(*r.Category)
	}
	if r.Stock != nil {
		p.Stock = r.Stock.Int()
	}
	if r.ImageURL != nil {
		p.ImageURL = *r.ImageURL
	}
	if r.clearImage {
		p.ImageURL = ""
	}
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30,username"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72,password"`
	Role     string `json:"role"     validate:"omitempty,oneof=user"`
}

func (r *RegisterRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = validation.NormalizeEmail(r.Email)
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = validation.NormalizeEmail(r.Email)
}

type ProductFilter struct {
	Category string   `query:"category" validate:"max=100"`
	MinPrice *float64 `query:"minPrice" validate:"omitempty,gte=0"`
	MaxPrice *float64 `query:"maxPrice" validate:"omitempty,gte=0"`
	Search   string   `query:"search"   validate:"max=255"`
}

func (f *ProductFilter) Normalize() {
	f.Category = strings.TrimSpace(f.Category)
	f.Search = strings.TrimSpace(f.Search)
}

type AuthResponse struct {
	User  models.PublicUser `json:"user"`
	Token string            `json:"token"`
}
