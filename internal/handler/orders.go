package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/safar/go-trip-orders/internal/middleware"
	"github.com/safar/go-trip-orders/internal/models"
	"github.com/safar/go-trip-orders/internal/orders"
	"github.com/safar/go-trip-orders/internal/store"
	"go.uber.org/zap"
)

// OrderHandler exposes the order lifecycle to authenticated accounts. Every
// route runs behind middleware.JWTAuth; orders of other accounts are 404.
type OrderHandler struct {
	Orders *orders.Service
	Logger *zap.Logger
}

func NewOrderHandler(svc *orders.Service, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{Orders: svc, Logger: logger}
}

type ticketOrderReq struct {
	TripID         string `json:"trip_id"`
	PaymentDetails string `json:"payment_details"`
}

type merchandiseOrderReq struct {
	Items          []orders.ItemRequest `json:"items"`
	PaymentDetails string               `json:"payment_details"`
}

type payReq struct {
	PaymentDetails string `json:"payment_details"`
}

type rescheduleReq struct {
	TripID string `json:"trip_id"`
}

type effectView struct {
	Kind       orders.EffectKind `json:"kind"`
	ItemType   models.ItemType   `json:"item_type,omitempty"`
	ItemID     string            `json:"item_id,omitempty"`
	LineItemID string            `json:"line_item_id,omitempty"`
	Delta      int               `json:"delta,omitempty"`
	Applied    bool              `json:"applied"`
	Confirmed  bool              `json:"confirmed"`
	Error      string            `json:"error,omitempty"`
}

func effectViews(res orders.Result) []effectView {
	out := make([]effectView, 0, len(res.Effects))
	for _, e := range res.Effects {
		v := effectView{
			Kind:       e.Kind,
			ItemType:   e.ItemType,
			ItemID:     e.ItemID,
			LineItemID: e.LineItemID,
			Delta:      e.Delta,
			Applied:    e.Applied,
			Confirmed:  e.Confirmed,
		}
		if e.Err != nil {
			v.Error = e.Err.Error()
		}
		out = append(out, v)
	}
	return out
}

func accountID(c echo.Context) string {
	return middleware.AccountID(c)
}

// List handles GET /v1/orders?cursor=&limit=.
func (h *OrderHandler) List(c echo.Context) error {
	cursor := c.QueryParam("cursor")
	if _, _, err := store.DecodeCursor(cursor); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cursor"})
	}

	limit := store.DefaultPageSize
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		limit = n
	}

	page, err := h.Orders.ListOrdersPage(c.Request().Context(), accountID(c), cursor, limit)
	if err != nil {
		return orderError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *OrderHandler) Get(c echo.Context) error {
	order, err := h.Orders.GetOrderForAccount(c.Request().Context(), c.Param("id"), accountID(c))
	if err != nil {
		return orderError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, order)
}

// CreateTicket handles POST /v1/orders/tickets. The order is returned with
// whatever status payment left it in.
func (h *OrderHandler) CreateTicket(c echo.Context) error {
	var req ticketOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.TripID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "trip_id is required"})
	}

	order, err := h.Orders.CreateTicketOrder(c.Request().Context(), accountID(c), req.TripID, req.PaymentDetails)
	if err != nil {
		return orderError(c, h.Logger, err)
	}
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) CreateMerchandise(c echo.Context) error {
	var req merchandiseOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "items is required"})
	}

	order, err := h.Orders.CreateMerchandiseOrder(c.Request().Context(), accountID(c), req.Items, req.PaymentDetails)
	if err != nil {
		return orderError(c, h.Logger, err)
	}
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) Pay(c echo.Context) error {
	var req payReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	order, ok, err := h.Orders.PayOrder(c.Request().Context(), c.Param("id"), accountID(c), req.PaymentDetails)
	if err != nil {
		return orderError(c, h.Logger, err)
	}
	status := http.StatusOK
	if !ok {
		status = http.StatusPaymentRequired
	}
	return c.JSON(status, echo.Map{"paid": ok, "order": order})
}

func (h *OrderHandler) Cancel(c echo.Context) error {
	order, res, err := h.Orders.CancelOrder(c.Request().Context(), c.Param("id"), accountID(c))
	if err != nil {
		return orderError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"cancelled": res.OK,
		"order":     order,
		"effects":   effectViews(res),
	})
}

func (h *OrderHandler) RescheduleOptions(c echo.Context) error {
	trips, err := h.Orders.RescheduleOptions(c.Request().Context(), c.Param("id"), accountID(c), c.Param("itemID"))
	if err != nil {
		return orderError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": trips})
}

// Reschedule handles POST /v1/orders/:id/items/:itemID/reschedule. A false
// outcome means the target trip had no seat left; the effects say what was
// applied before giving up.
func (h *OrderHandler) Reschedule(c echo.Context) error {
	var req rescheduleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.TripID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "trip_id is required"})
	}

	order, res, err := h.Orders.RescheduleTicket(c.Request().Context(), c.Param("id"), accountID(c), c.Param("itemID"), req.TripID)
	if err != nil {
		return orderError(c, h.Logger, err)
	}
	if !res.OK {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":   "no seats left on the selected trip",
			"order":   order,
			"effects": effectViews(res),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"rescheduled": true,
		"order":       order,
		"effects":     effectViews(res),
	})
}
