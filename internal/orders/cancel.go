package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/safar/go-trip-orders/internal/events"
	"github.com/safar/go-trip-orders/internal/models"
	"go.uber.org/zap"
)

// InitiateCancellation cancels every ACTIVE line item and returns its seats or
// stock. Restocking is best-effort per item; each attempt is recorded in the
// result. The order becomes CANCELLED once no item is left ACTIVE and all items
// are CANCELLED, or immediately when a successful payment is refunded.
//
// It reports false for COMPLETED, CANCELLED and FAILED orders, and when no item
// was newly cancelled (an order with no ACTIVE items is still forced to
// CANCELLED and persisted in that case).
func (s *Service) InitiateCancellation(ctx context.Context, order *models.Order) (Result, error) {
	led := &ledger{}
	if order.Status.Terminal() {
		return led.result(false), nil
	}

	now := s.now().UTC()
	order.CancellationRequests = append(order.CancellationRequests,
		fmt.Sprintf("Cancellation requested by user on %s", now.Format(time.RFC3339)))

	cancelled := 0
	for i := range order.LineItems {
		li := &order.LineItems[i]
		if !li.Cancel() {
			continue
		}
		cancelled++
		s.restock(ctx, order, led, li)
	}

	if cancelled == 0 {
		if len(order.ActiveLineItems()) == 0 {
			order.Status = models.OrderStatusCancelled
			if err := s.repo.SaveOrder(ctx, order); err != nil {
				return led.result(false), systemFailure("save order "+order.OrderID, err)
			}
			s.publish(ctx, events.OrderCancelled, order)
		}
		return led.result(false), nil
	}

	order.UpdateTotalAmount()
	if order.AllLineItems(models.LineItemCancelled) {
		order.Status = models.OrderStatusCancelled
	}

	if order.HasSuccessfulPayment() {
		reason := fmt.Sprintf("User cancellation request processed on %s", now.Format(time.RFC3339))
		if err := s.InitiateRefund(ctx, order, reason); err != nil {
			s.compensate(ctx, order, led.result(false).Unconfirmed())
			return led.result(false), err
		}
	} else if err := s.repo.SaveOrder(ctx, order); err != nil {
		s.compensate(ctx, order, led.result(false).Unconfirmed())
		return led.result(false), systemFailure("save order "+order.OrderID, err)
	}
	led.confirm()

	s.logger.Info("order cancelled",
		zap.String("order_id", order.OrderID),
		zap.Int("line_items", cancelled),
		zap.String("status", string(order.Status)))
	s.publish(ctx, events.OrderCancelled, order)
	return led.result(true), nil
}

// InitiateRefund refunds the order's successful payment and forces the order to
// CANCELLED. Without a successful payment it only forces CANCELLED.
func (s *Service) InitiateRefund(ctx context.Context, order *models.Order, reason string) error {
	if !order.HasSuccessfulPayment() {
		s.logger.Warn("refund skipped, no successful payment", zap.String("order_id", order.OrderID))
		if order.Status == models.OrderStatusCancelled {
			return nil
		}
		order.Status = models.OrderStatusCancelled
		if err := s.repo.SaveOrder(ctx, order); err != nil {
			return systemFailure("save order "+order.OrderID, err)
		}
		return nil
	}

	now := s.now().UTC()
	order.RefundRequests = append(order.RefundRequests,
		fmt.Sprintf("Refund for %s requested on %s due to: %s",
			order.Payment.Amount.StringFixed(2), now.Format(time.RFC3339), reason))
	order.Payment.Status = models.PaymentRefunded
	order.Status = models.OrderStatusCancelled

	if err := s.repo.SaveOrder(ctx, order); err != nil {
		return systemFailure("save order "+order.OrderID, err)
	}

	s.logger.Info("refund initiated",
		zap.String("order_id", order.OrderID),
		zap.String("amount", order.Payment.Amount.StringFixed(2)))
	s.publish(ctx, events.OrderRefunded, order)
	return nil
}

func (s *Service) restock(ctx context.Context, order *models.Order, led *ledger, li *models.SalesLineItem) {
	effect := Effect{
		Kind:       EffectStockRestocked,
		ItemType:   li.ItemType,
		ItemID:     li.ItemID,
		LineItemID: li.LineItemID,
		Delta:      li.Quantity,
	}

	var err error
	switch li.ItemType {
	case models.ItemTypeTicket:
		effect.Kind = EffectSeatReleased
		var trip *models.Trip
		if trip, err = s.repo.GetTrip(ctx, li.ItemID); err == nil {
			err = s.inventory.UpdateTripAvailability(ctx, trip, li.Quantity)
		}
	case models.ItemTypeMerchandise:
		var m *models.Merchandise
		if m, err = s.repo.GetMerchandise(ctx, li.ItemID); err == nil {
			err = s.inventory.UpdateMerchandiseStock(ctx, m, li.Quantity)
		}
	default:
		err = fmt.Errorf("unknown item type %q", li.ItemType)
	}

	if err != nil {
		s.logger.Warn("restock skipped",
			zap.String("order_id", order.OrderID),
			zap.String("line_item_id", li.LineItemID),
			zap.String("item_id", li.ItemID),
			zap.Error(err))
		effect.Err = err
	} else {
		effect.Applied = true
	}
	led.record(effect)
}
