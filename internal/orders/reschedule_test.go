package orders

import (
	"errors"
	"testing"

	"github.com/safar/go-trip-orders/internal/events"
	"github.com/safar/go-trip-orders/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookTicket(t *testing.T, f *fixture, tripID string) *models.Order {
	t.Helper()
	order, err := f.svc.CreateTicketOrder(f.ctx, testAccount, tripID, "card")
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPaid, order.Status)
	return order
}

func TestRescheduleToFullTripLeavesItemRescheduled(t *testing.T) {
	f := newFixture(t)
	f.trip(t, "A", "KL - Penang", 2, "45.00")
	full := f.trip(t, "B", "KL - Penang", 0, "45.00")

	order := bookTicket(t, f, "A")
	require.Equal(t, 1, f.seats(t, "A"))
	itemID := order.LineItems[0].LineItemID

	res, err := f.svc.RescheduleTicketLineItem(f.ctx, order, itemID, full)
	require.NoError(t, err)

	assert.False(t, res.OK)
	assert.Equal(t, 1, f.seats(t, "A"))
	assert.Equal(t, 0, f.seats(t, "B"))
	assert.Equal(t, models.LineItemRescheduled, order.FindLineItem(itemID).Status)
	assert.Len(t, order.LineItems, 1)

	unconfirmed := res.Unconfirmed()
	require.Len(t, unconfirmed, 1)
	assert.Equal(t, EffectLineItemRescheduled, unconfirmed[0].Kind)
	require.Len(t, f.comp.calls, 1)
	assert.Equal(t, unconfirmed, f.comp.calls[0])
}

func TestRescheduleTicket(t *testing.T) {
	f := newFixture(t)
	f.trip(t, "A", "KL - Penang", 5, "45.00")
	c := f.trip(t, "C", "KL - Penang", 3, "52.00")

	order := bookTicket(t, f, "A")
	itemID := order.LineItems[0].LineItemID

	res, err := f.svc.RescheduleTicketLineItem(f.ctx, order, itemID, c)
	require.NoError(t, err)

	assert.True(t, res.OK)
	assert.Empty(t, res.Unconfirmed())
	assert.Equal(t, []EffectKind{EffectLineItemRescheduled, EffectSeatReleased, EffectSeatReserved}, kinds(res.Effects))

	assert.Equal(t, 5, f.seats(t, "A"))
	assert.Equal(t, 2, f.seats(t, "C"))
	assert.Equal(t, 2, c.AvailableSeats)

	require.Len(t, order.LineItems, 2)
	assert.Equal(t, models.LineItemRescheduled, order.LineItems[0].Status)
	replacement := order.LineItems[1]
	assert.Equal(t, models.LineItemActive, replacement.Status)
	assert.Equal(t, "C", replacement.ItemID)
	assert.True(t, replacement.UnitPrice.Equal(decimal.RequireFromString("52.00")))
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("52.00")))
	assertTotal(t, order)

	assert.Len(t, f.stored(t, order.OrderID).LineItems, 2)
	assert.Contains(t, f.pub.types(), events.TicketRescheduled)
}

func TestRescheduleIneligibleItems(t *testing.T) {
	f := newFixture(t)
	f.trip(t, "A", "KL - Penang", 5, "45.00")
	c := f.trip(t, "C", "KL - Penang", 3, "52.00")

	order := bookTicket(t, f, "A")
	order.AddLineItem(models.SalesLineItem{
		LineItemID: "sli-merch", ItemID: "M1", ItemType: models.ItemTypeMerchandise,
		Quantity: 1, UnitPrice: decimal.NewFromInt(5), Status: models.LineItemActive,
	})
	cancelled := models.NewTicketLineItem("sli-old", c)
	cancelled.Status = models.LineItemCancelled
	order.AddLineItem(cancelled)
	saves := f.repo.SaveCount("order")

	for _, id := range []string{"missing", "sli-merch", "sli-old"} {
		res, err := f.svc.RescheduleTicketLineItem(f.ctx, order, id, c)
		require.NoError(t, err)
		assert.False(t, res.OK, id)
		assert.Empty(t, res.Effects, id)
	}

	assert.Equal(t, 3, f.seats(t, "C"))
	assert.Equal(t, saves, f.repo.SaveCount("order"))
}

func TestRescheduleMissingOriginalTrip(t *testing.T) {
	f := newFixture(t)
	c := f.trip(t, "C", "KL - Penang", 3, "52.00")

	order := models.NewOrder("ORD1", testAccount, testNow)
	order.AddLineItem(models.SalesLineItem{
		LineItemID: "sli1", ItemID: "RETIRED", ItemType: models.ItemTypeTicket, ItemName: "old",
		Quantity: 1, UnitPrice: decimal.NewFromInt(40), Status: models.LineItemActive,
	})
	order.Status = models.OrderStatusPaid

	res, err := f.svc.RescheduleTicketLineItem(f.ctx, order, "sli1", c)
	require.NoError(t, err)

	assert.True(t, res.OK)
	assert.Equal(t, 2, f.seats(t, "C"))
	failed := res.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, EffectSeatReleased, failed[0].Kind)
	assert.Equal(t, "RETIRED", failed[0].ItemID)
}

func TestReschedulePersistFailure(t *testing.T) {
	f := newFixture(t)
	f.trip(t, "A", "KL - Penang", 5, "45.00")
	c := f.trip(t, "C", "KL - Penang", 3, "52.00")
	order := bookTicket(t, f, "A")

	f.repo.FailWith(func(op, _ string) error {
		if op == "order" {
			return errors.New("connection reset")
		}
		return nil
	})

	res, err := f.svc.RescheduleTicketLineItem(f.ctx, order, order.LineItems[0].LineItemID, c)

	assert.ErrorIs(t, err, ErrSystemFailure)
	assert.False(t, res.OK)
	assert.Equal(t, []EffectKind{EffectLineItemRescheduled, EffectSeatReleased, EffectSeatReserved}, kinds(res.Unconfirmed()))
	assert.Equal(t, 2, f.seats(t, "C"))
}
