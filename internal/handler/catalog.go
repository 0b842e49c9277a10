package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/safar/go-trip-orders/internal/orders"
	"go.uber.org/zap"
)

// CatalogHandler serves the public trip and merchandise listings.
type CatalogHandler struct {
	Orders *orders.Service
	Logger *zap.Logger
}

func NewCatalogHandler(svc *orders.Service, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{Orders: svc, Logger: logger}
}

// ListTrips handles GET /v1/trips. ?available=true hides sold-out trips.
func (h *CatalogHandler) ListTrips(c echo.Context) error {
	trips, err := h.Orders.ListTrips(c.Request().Context())
	if err != nil {
		return orderError(c, h.Logger, err)
	}
	if c.QueryParam("available") == "true" {
		open := trips[:0]
		for _, t := range trips {
			if t.CheckAvailability(1) {
				open = append(open, t)
			}
		}
		trips = open
	}
	return c.JSON(http.StatusOK, echo.Map{"items": trips})
}

func (h *CatalogHandler) ListMerchandise(c echo.Context) error {
	items, err := h.Orders.ListMerchandise(c.Request().Context())
	if err != nil {
		return orderError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
