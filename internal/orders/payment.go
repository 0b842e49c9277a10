package orders

import (
	"context"

	"github.com/safar/go-trip-orders/internal/events"
	"github.com/safar/go-trip-orders/internal/models"
	"go.uber.org/zap"
)

// ProcessPayment charges a PENDING_PAYMENT order for its current total. It
// reports false without touching the order when the order is not pending or
// the total is not positive. On success the order becomes PAID and stock is
// taken for every ACTIVE merchandise line; on a declined or failed charge the
// order becomes FAILED. The order is persisted exactly once either way.
func (s *Service) ProcessPayment(ctx context.Context, order *models.Order, paymentDetails string) (bool, error) {
	order.UpdateTotalAmount()
	if order.Status != models.OrderStatusPendingPayment || !order.TotalAmount.IsPositive() {
		return false, nil
	}

	p := models.NewPayment(s.repo.GenerateID(paymentIDPrefix), order.OrderID, order.TotalAmount, paymentDetails, s.now())
	ok, err := s.gateway.Process(ctx, p)
	if err != nil {
		s.logger.Warn("payment gateway error",
			zap.String("order_id", order.OrderID),
			zap.String("payment_id", p.PaymentID),
			zap.Error(err))
		ok = false
	}
	if ok {
		p.Status = models.PaymentSuccessful
	} else {
		p.Status = models.PaymentFailed
	}
	order.Payment = p

	led := &ledger{}
	if ok {
		order.Status = models.OrderStatusPaid
		s.takeMerchandiseStock(ctx, order, led)
	} else {
		order.Status = models.OrderStatusFailed
	}

	if err := s.repo.SaveOrder(ctx, order); err != nil {
		s.compensate(ctx, order, led.result(false).Unconfirmed())
		return false, systemFailure("save order "+order.OrderID, err)
	}
	led.confirm()

	if ok {
		s.logger.Info("order paid",
			zap.String("order_id", order.OrderID),
			zap.String("amount", p.Amount.StringFixed(2)))
		s.publish(ctx, events.OrderPaid, order)
	} else {
		s.logger.Info("payment failed", zap.String("order_id", order.OrderID))
		s.publish(ctx, events.OrderPaymentFailed, order)
	}
	return ok, nil
}

// takeMerchandiseStock decrements stock for ACTIVE merchandise lines. Failures
// are logged and recorded; they never fail the payment.
func (s *Service) takeMerchandiseStock(ctx context.Context, order *models.Order, led *ledger) {
	for _, li := range order.LineItems {
		if li.ItemType != models.ItemTypeMerchandise || !li.IsActive() {
			continue
		}

		effect := Effect{
			Kind:       EffectStockDecremented,
			ItemType:   li.ItemType,
			ItemID:     li.ItemID,
			LineItemID: li.LineItemID,
			Delta:      -li.Quantity,
		}

		m, err := s.repo.GetMerchandise(ctx, li.ItemID)
		if err == nil {
			err = s.inventory.UpdateMerchandiseStock(ctx, m, -li.Quantity)
		}
		if err != nil {
			s.logger.Warn("stock decrement skipped",
				zap.String("order_id", order.OrderID),
				zap.String("merchandise_id", li.ItemID),
				zap.Error(err))
			effect.Err = err
		} else {
			effect.Applied = true
		}
		led.record(effect)
	}
}
