package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/feed_shop/internal/models"
	"github.com/Skotchmaster/feed_shop/pkg/logging"
)

type Deps struct {
	DB             *gorm.DB
	Gate           *Gate
	AuthHandler    *AuthHTTP
	CatalogHandler *CatalogHTTP
	OrderHandler   *OrderHTTP
	ContactHandler *ContactHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)

	api := e.Group("/api")
	api.POST("/register", d.AuthHandler.Register)
	api.POST("/login", d.AuthHandler.Login)
	api.POST("/logout", d.AuthHandler.LogOut)
	api.GET("/user", d.AuthHandler.Me)

	requireAdmin := d.Gate.RequireRole(models.RoleAdmin)

	products := api.Group("/products")
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)
	products.POST("", d.CatalogHandler.CreateProduct, requireAdmin)
	products.PUT("/:id", d.CatalogHandler.UpdateProduct, requireAdmin)
	products.DELETE("/:id", d.CatalogHandler.DeleteProduct, requireAdmin)

	orders := api.Group("/orders")
	orders.POST("/verify", d.OrderHandler.VerifyPayment)
	orders.POST("", d.OrderHandler.CreateOrder, d.Gate.RequireAuth)
	orders.GET("", d.OrderHandler.ListOrders, d.Gate.RequireAuth)
	orders.GET("/:id", d.OrderHandler.GetOrder, d.Gate.RequireAuth)
	orders.PATCH("/:id/delivery", d.OrderHandler.UpdateDelivery, requireAdmin)

	admin := api.Group("/admin", requireAdmin)
	admin.GET("/orders", d.OrderHandler.ListAllOrders)

	api.POST("/contact", d.ContactHandler.Submit)
	api.GET("/contact", d.ContactHandler.List, requireAdmin)
}

func (d *Deps) ready(c echo.Context) error {
	ctx := c.Request().Context()
	sqlDB, err := d.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		logging.FromContext(ctx).Error("readiness_failed", "status", 503, "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
	}
	return c.NoContent(http.StatusOK)
}
