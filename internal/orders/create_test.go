package orders

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/safar/go-trip-orders/internal/events"
	"github.com/safar/go-trip-orders/internal/models"
	"github.com/safar/go-trip-orders/internal/payment"
	"github.com/safar/go-trip-orders/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTicketOrderSoldOut(t *testing.T) {
	f := newFixture(t)
	f.trip(t, "T1", "KL - Penang", 0, "45.00")

	order, err := f.svc.CreateTicketOrder(f.ctx, testAccount, "T1", "card")

	assert.ErrorIs(t, err, ErrInsufficientCapacity)
	assert.Nil(t, order)
	assert.Equal(t, 0, f.seats(t, "T1"))
	assert.Equal(t, 0, f.repo.SaveCount("order"))
}

func TestCreateTicketOrderLastSeat(t *testing.T) {
	f := newFixture(t)
	f.trip(t, "T1", "KL - Penang", 1, "45.00")

	order, err := f.svc.CreateTicketOrder(f.ctx, testAccount, "T1", "card")
	require.NoError(t, err)

	assert.Equal(t, "ORD1000", order.OrderID)
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("45.00")))
	assert.Equal(t, 0, f.seats(t, "T1"))
	assertTotal(t, order)

	require.Len(t, order.LineItems, 1)
	li := order.LineItems[0]
	assert.Equal(t, "Ticket: KL - Penang - 2025-07-01 08:00", li.ItemName)
	assert.Equal(t, models.ItemTypeTicket, li.ItemType)
	assert.Equal(t, models.LineItemActive, li.Status)
	assert.Regexp(t, `^sli[0-9a-f]{8}$`, li.LineItemID)

	require.NotNil(t, order.Payment)
	assert.Equal(t, models.PaymentSuccessful, order.Payment.Status)
	assert.Regexp(t, `^pay[0-9a-f]{8}$`, order.Payment.PaymentID)
	assert.Equal(t, testNow, order.OrderTimestamp)

	stored := f.stored(t, order.OrderID)
	assert.Equal(t, models.OrderStatusPaid, stored.Status)
	assert.Equal(t, 1, f.repo.SaveCount("order"))
	assert.Equal(t, []events.Type{events.OrderPaid}, f.pub.types())
}

func TestCreateTicketOrderNotFound(t *testing.T) {
	f := newFixture(t)
	f.trip(t, "T1", "KL - Penang", 5, "45.00")

	_, err := f.svc.CreateTicketOrder(f.ctx, "ghost", "T1", "card")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = f.svc.CreateTicketOrder(f.ctx, testAccount, "T404", "card")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 5, f.seats(t, "T1"))
}

func TestCreateTicketOrderDeclined(t *testing.T) {
	f := newFixture(t, WithGateway(payment.Declining))
	f.trip(t, "T1", "KL - Penang", 3, "45.00")

	order, err := f.svc.CreateTicketOrder(f.ctx, testAccount, "T1", "card")
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusFailed, order.Status)
	assert.Equal(t, models.PaymentFailed, order.Payment.Status)
	// The seat is taken when the order is built, not when it is paid.
	assert.Equal(t, 2, f.seats(t, "T1"))
	assert.Equal(t, models.OrderStatusFailed, f.stored(t, order.OrderID).Status)
	assert.Equal(t, []events.Type{events.OrderPaymentFailed}, f.pub.types())
}

func TestCreateTicketOrderGatewayError(t *testing.T) {
	gw := payment.GatewayFunc(func(context.Context, *models.Payment) (bool, error) {
		return false, errors.New("gateway timeout")
	})
	f := newFixture(t, WithGateway(gw))
	f.trip(t, "T1", "KL - Penang", 3, "45.00")

	order, err := f.svc.CreateTicketOrder(f.ctx, testAccount, "T1", "card")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusFailed, order.Status)
	assert.Equal(t, models.PaymentFailed, order.Payment.Status)
}

func TestCreateTicketOrderPersistFailure(t *testing.T) {
	f := newFixture(t)
	f.trip(t, "T1", "KL - Penang", 3, "45.00")
	f.repo.FailWith(func(op, _ string) error {
		if op == "order" {
			return errors.New("connection reset")
		}
		return nil
	})

	order, err := f.svc.CreateTicketOrder(f.ctx, testAccount, "T1", "card")

	assert.Nil(t, order)
	assert.ErrorIs(t, err, ErrSystemFailure)
	assert.Equal(t, 2, f.seats(t, "T1"))
	require.Len(t, f.comp.calls, 1)
	assert.Equal(t, []EffectKind{EffectSeatReserved}, kinds(f.comp.calls[0]))
}

func TestCreateTicketOrderNoOversell(t *testing.T) {
	f := newFixture(t)
	f.trip(t, "T1", "KL - Penang", 5, "45.00")

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		sold     int
		soldOut  int
		failures []error
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateTicketOrder(f.ctx, testAccount, "T1", "card")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				sold++
			case errors.Is(err, ErrInsufficientCapacity):
				soldOut++
			default:
				failures = append(failures, err)
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, failures)
	assert.Equal(t, 5, sold)
	assert.Equal(t, 15, soldOut)
	assert.Equal(t, 0, f.seats(t, "T1"))
}

func TestCreateMerchandiseOrder(t *testing.T) {
	f := newFixture(t)
	f.merch(t, "M1", "Travel Pillow", 10, "25.00")
	f.merch(t, "M2", "Logo Cap", 4, "18.00")

	order, err := f.svc.CreateMerchandiseOrder(f.ctx, testAccount, []ItemRequest{
		{MerchandiseID: "M1", Quantity: 2},
		{MerchandiseID: "", Quantity: 3},
		{MerchandiseID: "M2", Quantity: 0},
		{MerchandiseID: "M2", Quantity: 4},
	}, "fpx")
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPaid, order.Status)
	require.Len(t, order.LineItems, 2)
	assert.Equal(t, "Travel Pillow", order.LineItems[0].ItemName)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("122.00")))
	assertTotal(t, order)

	assert.Equal(t, 8, f.stock(t, "M1"))
	assert.Equal(t, 0, f.stock(t, "M2"))
}

func TestCreateMerchandiseOrderValidation(t *testing.T) {
	f := newFixture(t)
	f.merch(t, "M1", "Travel Pillow", 3, "25.00")

	_, err := f.svc.CreateMerchandiseOrder(f.ctx, testAccount, []ItemRequest{
		{MerchandiseID: "M1", Quantity: 1},
		{MerchandiseID: "M404", Quantity: 1},
	}, "fpx")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.CreateMerchandiseOrder(f.ctx, testAccount, []ItemRequest{{MerchandiseID: "M1", Quantity: 4}}, "fpx")
	assert.ErrorIs(t, err, ErrInsufficientCapacity)

	_, err = f.svc.CreateMerchandiseOrder(f.ctx, testAccount, []ItemRequest{{MerchandiseID: "M1", Quantity: 0}}, "fpx")
	assert.ErrorIs(t, err, ErrNoValidItems)
	assert.ErrorIs(t, err, ErrSystemFailure)

	_, err = f.svc.CreateMerchandiseOrder(f.ctx, "ghost", []ItemRequest{{MerchandiseID: "M1", Quantity: 1}}, "fpx")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 3, f.stock(t, "M1"))
	assert.Equal(t, 0, f.repo.SaveCount("order"))
}

func TestCreateMerchandiseOrderDeclinedKeepsStock(t *testing.T) {
	f := newFixture(t, WithGateway(payment.Declining))
	f.merch(t, "M1", "Travel Pillow", 3, "25.00")

	order, err := f.svc.CreateMerchandiseOrder(f.ctx, testAccount, []ItemRequest{{MerchandiseID: "M1", Quantity: 2}}, "fpx")
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusFailed, order.Status)
	assert.Equal(t, 3, f.stock(t, "M1"))
}

func TestProcessPaymentPreconditions(t *testing.T) {
	f := newFixture(t)

	paid := models.NewOrder("ORD1", testAccount, testNow)
	paid.AddLineItem(models.SalesLineItem{
		LineItemID: "sli1", ItemID: "M1", ItemType: models.ItemTypeMerchandise,
		Quantity: 1, UnitPrice: decimal.NewFromInt(5), Status: models.LineItemActive,
	})
	paid.Status = models.OrderStatusPaid

	ok, err := f.svc.ProcessPayment(f.ctx, paid, "card")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, paid.Payment)

	empty := models.NewOrder("ORD2", testAccount, testNow)
	ok, err = f.svc.ProcessPayment(f.ctx, empty, "card")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, models.OrderStatusPendingPayment, empty.Status)

	assert.Equal(t, 0, f.repo.SaveCount("order"))
}

func TestProcessPaymentSkipsMissingMerchandise(t *testing.T) {
	f := newFixture(t)
	f.merch(t, "M1", "Travel Pillow", 5, "25.00")

	order := models.NewOrder("ORD1", testAccount, testNow)
	order.AddLineItem(models.NewMerchandiseLineItem("sli1", &models.Merchandise{MerchandiseID: "M1", Name: "Travel Pillow", Price: decimal.NewFromInt(25)}, 2))
	order.AddLineItem(models.NewMerchandiseLineItem("sli2", &models.Merchandise{MerchandiseID: "GONE", Name: "Old Mug", Price: decimal.NewFromInt(9)}, 1))

	ok, err := f.svc.ProcessPayment(f.ctx, order, "card")
	require.NoError(t, err)

	assert.True(t, ok)
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.Equal(t, 3, f.stock(t, "M1"))
	assert.Equal(t, 1, f.repo.SaveCount("order"))
}
