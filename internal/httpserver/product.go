package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/feed_shop/internal/service"
	"github.com/Skotchmaster/feed_shop/internal/transport"
	"github.com/Skotchmaster/feed_shop/internal/util"
	"github.com/Skotchmaster/feed_shop/pkg/logging"
)

const productNotFound = "Product not found"

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	items, err := h.Svc.List(ctx)
	if err != nil {
		return respondError(l, "get_products_error", err, "")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, ok := parseID(c)
	if !ok {
		l.Warn("get_product_failed", "status", 404, "reason", "id is not a positive integer", "id", c.Param("id"))
		return echo.NewHTTPError(http.StatusNotFound, productNotFound)
	}

	product, err := h.Svc.Get(ctx, id)
	if err != nil {
		return respondError(l, "get_product_failed", err, productNotFound)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	res, err := h.Svc.Search(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		return respondError(l, "search_error", err, "")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": res.Items,
		"meta": echo.Map{
			"page":        res.Page,
			"size":        res.Size,
			"total":       res.Total,
			"total_pages": util.TotalPages(res.Total, res.Size),
			"has_prev":    res.Page > 1,
			"has_next":    int64(res.Page*res.Size) < res.Total,
		},
	})
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req transport.CreateProductRequest
	if err := bindAndValidate(c, l, "product_create_error", &req); err != nil {
		return err
	}

	prod, err := h.Svc.Create(ctx, req)
	if err != nil {
		return respondError(l, "product_create_error", err, "")
	}

	l.Info("create_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusCreated, prod)
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	id, ok := parseID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, productNotFound)
	}

	var req transport.UpdateProductRequest
	if err := bindAndValidate(c, l, "product_update_error", &req); err != nil {
		return err
	}

	prod, err := h.Svc.Update(ctx, id, req)
	if err != nil {
		return respondError(l, "product_update_error", err, productNotFound)
	}

	l.Info("update_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusOK, prod)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, ok := parseID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, productNotFound)
	}

	if err := h.Svc.Delete(ctx, id); err != nil {
		return respondError(l, "product_delete_error", err, productNotFound)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}
