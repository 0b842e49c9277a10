package router

import (
	"github.com/labstack/echo/v4"
	"github.com/safar/go-trip-orders/internal/handler"
	"github.com/safar/go-trip-orders/internal/middleware"
)

// Handlers bundles everything RegisterRoutes mounts.
type Handlers struct {
	Accounts *handler.AccountHandler
	Catalog  *handler.CatalogHandler
	Orders   *handler.OrderHandler
	DB       handler.Pinger
}

func RegisterRoutes(e *echo.Echo, h Handlers, jwtSecret string) {
	e.GET("/healthz", handler.Health(h.DB))

	a := e.Group("/v1/auth")
	a.POST("/register", h.Accounts.Register)
	a.POST("/login", h.Accounts.Login)

	e.GET("/v1/trips", h.Catalog.ListTrips)
	e.GET("/v1/merchandise", h.Catalog.ListMerchandise)

	RegisterOrders(e, h.Orders, jwtSecret)
}

// RegisterOrders mounts the order lifecycle under /v1/orders behind JWTAuth.
func RegisterOrders(e *echo.Echo, o *handler.OrderHandler, jwtSecret string) {
	g := e.Group("/v1/orders", middleware.JWTAuth(jwtSecret))
	g.GET("", o.List)
	g.POST("/tickets", o.CreateTicket)
	g.POST("/merchandise", o.CreateMerchandise)
	g.GET("/:id", o.Get)
	g.POST("/:id/pay", o.Pay)
	g.POST("/:id/cancel", o.Cancel)
	g.GET("/:id/items/:itemID/reschedule-options", o.RescheduleOptions)
	g.POST("/:id/items/:itemID/reschedule", o.Reschedule)
}
