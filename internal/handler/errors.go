package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/safar/go-trip-orders/internal/orders"
	"go.uber.org/zap"
)

// orderError maps a lifecycle error onto a status code. System failures are
// logged and never shown to the caller verbatim.
func orderError(c echo.Context, logger *zap.Logger, err error) error {
	switch {
	case errors.Is(err, orders.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, orders.ErrInsufficientCapacity):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, orders.ErrInvalidState):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, orders.ErrNoValidItems):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "no valid items in order"})
	}

	logger.Error("order operation failed",
		zap.String("path", c.Path()),
		zap.String("account_id", accountID(c)),
		zap.Error(err),
	)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "system failure, please contact support"})
}
