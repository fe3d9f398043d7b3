package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/product_catalog/internal/domain"
	"github.com/Skotchmaster/product_catalog/internal/service/search"
	"github.com/Skotchmaster/product_catalog/internal/util"
	"github.com/Skotchmaster/product_catalog/pkg/logging"
)

// SearchHandler serves full-text search. A nil Index answers 503.
type SearchHandler struct {
	Index *search.Index
}

func NewSearchHandler(ix *search.Index) *SearchHandler {
	return &SearchHandler{Index: ix}
}

func (h *SearchHandler) Search(c echo.Context) error {
	if h.Index == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is disabled").SetInternal(search.ErrDisabled)
	}

	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return domain.NewValidationError("invalid query", domain.FieldError{Field: "q", Message: "is required"})
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	if page < 1 {
		page = 1
	}
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, size := util.Calculate(page, size)

	ctx := c.Request().Context()
	total, products, err := h.Index.Search(ctx, q, from, size)
	if err != nil {
		logging.FromContext(ctx).Error("search_error", "handler", "search", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "search backend unavailable").SetInternal(err)
	}
	return success(c, http.StatusOK, "search results", echo.Map{
		"total":    total,
		"page":     page,
		"size":     size,
		"products": products,
	})
}
