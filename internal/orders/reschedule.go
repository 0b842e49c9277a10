package orders

import (
	"context"
	"errors"

	"github.com/safar/go-trip-orders/internal/events"
	"github.com/safar/go-trip-orders/internal/models"
	"go.uber.org/zap"
)

// RescheduleTicketLineItem moves an ACTIVE ticket onto newTrip. The original
// item becomes RESCHEDULED, its seat goes back to the original trip, one seat is
// taken on newTrip and a new ACTIVE ticket is appended at newTrip's price.
//
// The result is false when the item is missing, not a ticket or not ACTIVE, and
// when newTrip has no seats. In the latter case the original item stays
// RESCHEDULED; that mark is reported in Result.Unconfirmed and handed to the
// Compensator. A failure to persist the order is returned as ErrSystemFailure.
func (s *Service) RescheduleTicketLineItem(ctx context.Context, order *models.Order, lineItemID string, newTrip *models.Trip) (Result, error) {
	led := &ledger{}

	original := order.FindLineItem(lineItemID)
	if original == nil || original.ItemType != models.ItemTypeTicket {
		return led.result(false), nil
	}
	if !original.MarkRescheduled() {
		return led.result(false), nil
	}
	originalTripID, quantity := original.ItemID, original.Quantity
	led.record(Effect{
		Kind:       EffectLineItemRescheduled,
		ItemType:   models.ItemTypeTicket,
		ItemID:     originalTripID,
		LineItemID: lineItemID,
		Applied:    true,
	})

	if !newTrip.CheckAvailability(1) {
		s.logger.Warn("reschedule target sold out",
			zap.String("order_id", order.OrderID),
			zap.String("line_item_id", lineItemID),
			zap.String("trip_id", newTrip.ID))
		return s.abandon(ctx, order, led), nil
	}

	s.releaseSeats(ctx, order, led, originalTripID, lineItemID, quantity)

	if err := s.inventory.ReserveSeat(ctx, newTrip); err != nil {
		if errors.Is(err, ErrInsufficientCapacity) {
			s.logger.Warn("reschedule target sold out while reserving",
				zap.String("order_id", order.OrderID),
				zap.String("trip_id", newTrip.ID))
			return s.abandon(ctx, order, led), nil
		}
		led.record(Effect{Kind: EffectSeatReserved, ItemType: models.ItemTypeTicket, ItemID: newTrip.ID, Delta: -1, Err: err})
		s.compensate(ctx, order, led.result(false).Unconfirmed())
		return led.result(false), systemFailure("reserve seat on "+newTrip.ID, err)
	}

	replacement := models.NewTicketLineItem(s.repo.GenerateID(lineItemIDPrefix), newTrip)
	led.record(Effect{
		Kind:       EffectSeatReserved,
		ItemType:   models.ItemTypeTicket,
		ItemID:     newTrip.ID,
		LineItemID: replacement.LineItemID,
		Delta:      -1,
		Applied:    true,
	})
	order.AddLineItem(replacement)

	if err := s.repo.SaveOrder(ctx, order); err != nil {
		s.compensate(ctx, order, led.result(false).Unconfirmed())
		return led.result(false), systemFailure("save order "+order.OrderID, err)
	}
	led.confirm()

	s.logger.Info("ticket rescheduled",
		zap.String("order_id", order.OrderID),
		zap.String("from_trip", originalTripID),
		zap.String("to_trip", newTrip.ID))
	s.publish(ctx, events.TicketRescheduled, order)
	return led.result(true), nil
}

// releaseSeats returns quantity seats to tripID. A missing trip or a failed
// update is logged and recorded, never fatal.
func (s *Service) releaseSeats(ctx context.Context, order *models.Order, led *ledger, tripID, lineItemID string, quantity int) {
	effect := Effect{
		Kind:       EffectSeatReleased,
		ItemType:   models.ItemTypeTicket,
		ItemID:     tripID,
		LineItemID: lineItemID,
		Delta:      quantity,
	}

	trip, err := s.repo.GetTrip(ctx, tripID)
	if err == nil {
		err = s.inventory.UpdateTripAvailability(ctx, trip, quantity)
	}
	if err != nil {
		s.logger.Warn("seat release skipped",
			zap.String("order_id", order.OrderID),
			zap.String("trip_id", tripID),
			zap.Error(err))
		effect.Err = err
	} else {
		effect.Applied = true
	}
	led.record(effect)
}

func (s *Service) abandon(ctx context.Context, order *models.Order, led *ledger) Result {
	res := led.result(false)
	s.compensate(ctx, order, res.Unconfirmed())
	return res
}
