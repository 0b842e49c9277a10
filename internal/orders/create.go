package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/safar/go-trip-orders/internal/models"
	"go.uber.org/zap"
)

// ItemRequest is one merchandise entry of a bulk purchase.
type ItemRequest struct {
	MerchandiseID string `json:"merchandise_id"`
	Quantity      int    `json:"quantity"`
}

// CreateTicketOrder sells one seat on tripID. The seat is taken as soon as the
// order is built; payment follows immediately. The returned order is PAID, or
// FAILED when the charge was declined.
func (s *Service) CreateTicketOrder(ctx context.Context, accountID, tripID, paymentDetails string) (*models.Order, error) {
	if _, err := s.accounts.GetAccount(ctx, accountID); err != nil {
		return nil, lookupError("account", accountID, err)
	}

	trip, err := s.repo.GetTrip(ctx, tripID)
	if err != nil {
		return nil, lookupError("trip", tripID, err)
	}
	if !trip.CheckAvailability(1) {
		return nil, fmt.Errorf("%w: trip %s has no seats available", ErrInsufficientCapacity, tripID)
	}

	orderID, err := s.repo.NextOrderID(ctx)
	if err != nil {
		return nil, systemFailure("allocate order id", err)
	}

	order := models.NewOrder(orderID, accountID, s.now())
	order.AddLineItem(models.NewTicketLineItem(s.repo.GenerateID(lineItemIDPrefix), trip))

	if err := s.inventory.ReserveSeat(ctx, trip); err != nil {
		if errors.Is(err, ErrInsufficientCapacity) {
			return nil, err
		}
		return nil, systemFailure("reserve seat", err)
	}
	reserved := Effect{
		Kind:       EffectSeatReserved,
		ItemType:   models.ItemTypeTicket,
		ItemID:     trip.ID,
		LineItemID: order.LineItems[0].LineItemID,
		Delta:      -1,
		Applied:    true,
	}

	s.logger.Info("ticket order built",
		zap.String("order_id", orderID),
		zap.String("trip_id", tripID),
		zap.Int("seats_left", trip.AvailableSeats))

	if err := s.settle(ctx, order, paymentDetails); err != nil {
		s.compensate(ctx, order, []Effect{reserved})
		return nil, err
	}
	return order, nil
}

// CreateMerchandiseOrder builds one line item per valid entry. Entries with an
// empty id or non-positive quantity are skipped; an unknown id or a quantity
// above current stock aborts the whole order. Stock is only taken once payment
// succeeds.
func (s *Service) CreateMerchandiseOrder(ctx context.Context, accountID string, items []ItemRequest, paymentDetails string) (*models.Order, error) {
	if _, err := s.accounts.GetAccount(ctx, accountID); err != nil {
		return nil, lookupError("account", accountID, err)
	}

	var lines []models.SalesLineItem
	for _, req := range items {
		if req.MerchandiseID == "" || req.Quantity <= 0 {
			continue
		}

		m, err := s.repo.GetMerchandise(ctx, req.MerchandiseID)
		if err != nil {
			return nil, lookupError("merchandise", req.MerchandiseID, err)
		}
		if !m.CheckAvailability(req.Quantity) {
			return nil, fmt.Errorf("%w: %s has %d in stock, %d requested",
				ErrInsufficientCapacity, m.Name, m.StockLevel, req.Quantity)
		}

		lines = append(lines, models.NewMerchandiseLineItem(s.repo.GenerateID(lineItemIDPrefix), m, req.Quantity))
	}

	if len(lines) == 0 {
		return nil, ErrNoValidItems
	}

	orderID, err := s.repo.NextOrderID(ctx)
	if err != nil {
		return nil, systemFailure("allocate order id", err)
	}

	order := models.NewOrder(orderID, accountID, s.now())
	for _, li := range lines {
		order.AddLineItem(li)
	}

	s.logger.Info("merchandise order built",
		zap.String("order_id", orderID),
		zap.Int("line_items", len(lines)),
		zap.String("total", order.TotalAmount.StringFixed(2)))

	if err := s.settle(ctx, order, paymentDetails); err != nil {
		return nil, err
	}
	return order, nil
}

// settle pays a freshly built order. An order that payment declined to touch,
// such as a zero total, is still stored as PENDING_PAYMENT.
func (s *Service) settle(ctx context.Context, order *models.Order, paymentDetails string) error {
	if _, err := s.ProcessPayment(ctx, order, paymentDetails); err != nil {
		return err
	}
	if order.Status == models.OrderStatusPendingPayment {
		if err := s.repo.SaveOrder(ctx, order); err != nil {
			return systemFailure("save order "+order.OrderID, err)
		}
	}
	return nil
}
