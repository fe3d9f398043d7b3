package transport

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/product_catalog/internal/domain"
	"github.com/Skotchmaster/product_catalog/internal/models"
	"github.com/Skotchmaster/product_catalog/internal/validation"
)

func TestCreateProductRequest(t *testing.T) {
	t.Parallel()

	var req CreateProductRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"  Mouse <x> ","price":"9.99","category":"Tecnología","stock":50}`), &req))
	require.NoError(t, validation.New().Validate(&req))

	p := req.ToModel()
	assert.Equal(t, "Mouse &lt;x&gt;", p.Name)
	assert.InDelta(t, 9.99, p.Price, 0.0001)
	assert.Equal(t, 50, p.Stock)
	assert.Equal(t, "Tecnología", p.Category)
}

func TestCreateProductRequest_Invalid(t *testing.T) {
	t.Parallel()

	var req CreateProductRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"   ","price":-1,"stock":-2,"image_url":"not a url"}`), &req))
	err := validation.New().Validate(&req)
	require.ErrorIs(t, err, domain.ErrValidation)

	ve := err.(*domain.ValidationError)
	fields := map[string]bool{}
	for _, f := range ve.Fields {
		fields[f.Field] = true
	}
	for _, want := range []string{"name", "price", "category", "stock", "image_url"} {
		assert.True(t, fields[want], "missing error for %s", want)
	}
}

func TestUpdateProductRequest_Merge(t *testing.T) {
	t.Parallel()

	p := &models.Product{ID: 1, Name: "Mouse", Description: "wired", Price: 9.99, Category: "Tech", Stock: 10, ImageURL: "https://x/img.png"}

	var req UpdateProductRequest
	require.NoError(t, json.Unmarshal([]byte(`{"stock":"3"}`), &req))
	require.NoError(t, validation.New().Validate(&req))
	assert.False(t, req.Empty())

	req.Apply(p)
	assert.Equal(t, 3, p.Stock)
	assert.Equal(t, "Mouse", p.Name)
	assert.Equal(t, "wired", p.Description)
	assert.Equal(t, "https://x/img.png", p.ImageURL)
}

func TestUpdateProductRequest_Empty(t *testing.T) {
	t.Parallel()

	var req UpdateProductRequest
	require.NoError(t, json.Unmarshal([]byte(`{"unknown":"x"}`), &req))
	req.Normalize()
	assert.True(t, req.Empty())

	var clear UpdateProductRequest
	require.NoError(t, json.Unmarshal([]byte(`{"image_url":" "}`), &clear))
	require.NoError(t, validation.New().Validate(&clear))
	assert.False(t, clear.Empty())

	p := &models.Product{ImageURL: "https://x/img.png"}
	clear.Apply(p)
	assert.Empty(t, p.ImageURL)
}

func TestRegisterRequest_Normalize(t *testing.T) {
	t.Parallel()

	req := RegisterRequest{Username: " ana_1 ", Email: "A@X.com", Password: "Secret1", Role: " USER "}
	require.NoError(t, validation.New().Validate(&req))
	assert.Equal(t, "ana_1", req.Username)
	assert.Equal(t, "a@x.com", req.Email)
	assert.Equal(t, "user", req.Role)

	admin := RegisterRequest{Username: "ana", Email: "a@x.com", Password: "Secret1", Role: "admin"}
	assert.ErrorIs(t, validation.New().Validate(&admin), domain.ErrValidation)
}

func TestCreateProductRequest_SubCentPriceRoundsBeforeRules(t *testing.T) {
	t.Parallel()

	var req CreateProductRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"X","price":0.004,"category":"T"}`), &req))
	err := validation.New().Validate(&req)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "price", ve.Fields[0].Field)
	assert.Equal(t, "must be greater than 0", ve.Fields[0].Message)

	require.NoError(t, json.Unmarshal([]byte(`{"name":"X","price":0.005,"category":"T"}`), &req))
	require.NoError(t, validation.New().Validate(&req))
	assert.InDelta(t, 0.01, req.ToModel().Price, 0.00001)
}

func TestCreateProductRequest_MalformedNumbers(t *testing.T) {
	t.Parallel()

	var req CreateProductRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"","price":"abc","category":"T","stock":"lots"}`), &req))
	err := validation.New().Validate(&req)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	got := map[string]string{}
	for _, f := range ve.Fields {
		got[f.Field] = f.Message
	}
	assert.Equal(t, map[string]string{
		"name":  "is required",
		"price": "must be a number",
		"stock": "must be an integer",
	}, got)
}

func TestUpdateProductRequest_EmptyCategory(t *testing.T) {
	t.Parallel()

	var req UpdateProductRequest
	require.NoError(t, json.Unmarshal([]byte(`{"category":"   "}`), &req))
	err := validation.New().Validate(&req)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "category", ve.Fields[0].Field)
}
