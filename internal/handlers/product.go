package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/product_catalog/internal/domain"
	"github.com/Skotchmaster/product_catalog/internal/service"
	"github.com/Skotchmaster/product_catalog/internal/transport"
	"github.com/Skotchmaster/product_catalog/internal/validation"
	"github.com/Skotchmaster/product_catalog/pkg/logging"
)

type ProductHandler struct {
	Catalog *service.CatalogService
}

func parseID(c echo.Context) (uint, error) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, domain.NewValidationError("invalid id",
			domain.FieldError{Field: "id", Message: "must be a positive integer", Value: raw})
	}
	return uint(id), nil
}

// bindError reports a value of the wrong JSON type as a field error. Anything
// else means the body could not be read at all.
func bindError(err error) error {
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) && ute.Field != "" {
		return domain.NewValidationError("invalid input",
			domain.FieldError{Field: ute.Field, Message: "must be a " + jsonKind(ute.Type)})
	}
	return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
}

func jsonKind(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "list"
	case reflect.Map, reflect.Struct:
		return "object"
	default:
		return "number"
	}
}

func productNotFound(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return withMessage(err, "product not found")
	}
	return err
}

// parseFilter reads the list query. Every malformed number is reported.
func parseFilter(c echo.Context) (transport.ProductFilter, error) {
	f := transport.ProductFilter{
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
	}

	var fields []domain.FieldError
	for _, p := range []struct {
		name string
		dst  **float64
	}{
		{"minPrice", &f.MinPrice},
		{"maxPrice", &f.MaxPrice},
	} {
		raw := c.QueryParam(p.name)
		if raw == "" {
			continue
		}
		v, err := validation.ParseFloat(raw)
		if err != nil {
			fields = append(fields, domain.FieldError{Field: p.name, Message: "must be a number", Value: raw})
			continue
		}
		*p.dst = &v
	}
	if len(fields) > 0 {
		return f, domain.NewValidationError("invalid filters", fields...)
	}
	return f, nil
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.list")

	f, err := parseFilter(c)
	if err != nil {
		l.Warn("product_list_error", "status", 400, "reason", "bad filters", "error", err)
		return err
	}

	items, err := h.Catalog.List(ctx, f)
	if err != nil {
		l.Warn("product_list_error", "error", err)
		return err
	}
	return success(c, http.StatusOK, "products retrieved", items)
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.get")

	id, err := parseID(c)
	if err != nil {
		return err
	}

	prod, err := h.Catalog.Get(ctx, id)
	if err != nil {
		l.Warn("product_get_error", "product_id", id, "error", err)
		return productNotFound(err)
	}
	return success(c, http.StatusOK, "product retrieved", prod)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.create")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "bind", "error", err)
		return bindError(err)
	}

	prod, err := h.Catalog.Create(ctx, &req)
	if err != nil {
		l.Warn("product_create_error", "error", err)
		return err
	}
	return success(c, http.StatusCreated, "product created", prod)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.update")

	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req transport.UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_update_error", "status", 400, "reason", "bind", "error", err)
		return bindError(err)
	}

	prod, err := h.Catalog.Update(ctx, id, &req)
	if err != nil {
		l.Warn("product_update_error", "product_id", id, "error", err)
		return productNotFound(err)
	}
	return success(c, http.StatusOK, "product updated", prod)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.delete")

	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.Catalog.Delete(ctx, id); err != nil {
		l.Warn("product_delete_error", "product_id", id, "error", err)
		return productNotFound(err)
	}
	return success(c, http.StatusOK, "product deleted", nil)
}

func (h *ProductHandler) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()

	items, err := h.Catalog.Search(ctx, c.Param("term"))
	if err != nil {
		logging.FromContext(ctx).Warn("product_search_error", "handler", "products.search", "error", err)
		return err
	}
	return success(c, http.StatusOK, "search results", items)
}

func (h *ProductHandler) ProductsByCategory(c echo.Context) error {
	ctx := c.Request().Context()

	items, err := h.Catalog.ByCategory(ctx, c.Param("category"))
	if err != nil {
		logging.FromContext(ctx).Warn("product_category_error", "handler", "products.category", "error", err)
		return err
	}
	return success(c, http.StatusOK, "products retrieved", items)
}

func (h *ProductHandler) LowStock(c echo.Context) error {
	ctx := c.Request().Context()

	threshold := 0
	if raw := c.QueryParam("threshold"); raw != "" {
		v, err := validation.ParseInt(raw)
		if err != nil || v < 1 {
			return domain.NewValidationError("invalid threshold",
				domain.FieldError{Field: "threshold", Message: "must be a positive integer", Value: raw})
		}
		threshold = v
	}

	items, err := h.Catalog.LowStock(ctx, threshold)
	if err != nil {
		logging.FromContext(ctx).Warn("low_stock_error", "handler", "products.low_stock", "error", err)
		return err
	}
	return success(c, http.StatusOK, "low stock products", items)
}
