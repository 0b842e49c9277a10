package orders

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/safar/go-trip-orders/internal/events"
	"github.com/safar/go-trip-orders/internal/models"
	"github.com/safar/go-trip-orders/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAccount = "acc-1"

var testNow = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, ev events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

type compensations struct {
	mu    sync.Mutex
	calls [][]Effect
}

func (c *compensations) Compensate(_ context.Context, _ *models.Order, effects []Effect) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, effects)
	return nil
}

type fixture struct {
	ctx  context.Context
	repo *store.Memory
	svc  *Service
	pub  *recorder
	comp *compensations
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		ctx:  context.Background(),
		repo: store.NewMemory(),
		pub:  &recorder{},
		comp: &compensations{},
	}
	require.NoError(t, f.repo.SaveAccount(f.ctx, &models.Account{
		AccountID: testAccount, Name: "Nur", Email: "nur@example.com",
	}))

	base := []Option{
		WithPublisher(f.pub),
		WithCompensator(f.comp),
		WithClock(func() time.Time { return testNow }),
	}
	f.svc = New(f.repo, nil, append(base, opts...)...)
	return f
}

func (f *fixture) trip(t *testing.T, id, route string, seats int, price string) *models.Trip {
	t.Helper()
	trip := &models.Trip{
		ID: id, Route: route, Date: "2025-07-01", Time: "08:00",
		Price: decimal.RequireFromString(price), AvailableSeats: seats,
	}
	require.NoError(t, f.repo.SaveTrip(f.ctx, trip))
	return trip
}

func (f *fixture) merch(t *testing.T, id, name string, stock int, price string) *models.Merchandise {
	t.Helper()
	m := &models.Merchandise{
		MerchandiseID: id, Name: name, Price: decimal.RequireFromString(price), StockLevel: stock,
	}
	require.NoError(t, f.repo.SaveMerchandise(f.ctx, m))
	return m
}

func (f *fixture) seats(t *testing.T, id string) int {
	t.Helper()
	trip, err := f.repo.GetTrip(f.ctx, id)
	require.NoError(t, err)
	return trip.AvailableSeats
}

func (f *fixture) stock(t *testing.T, id string) int {
	t.Helper()
	m, err := f.repo.GetMerchandise(f.ctx, id)
	require.NoError(t, err)
	return m.StockLevel
}

func (f *fixture) stored(t *testing.T, id string) *models.Order {
	t.Helper()
	o, err := f.repo.GetOrder(f.ctx, id)
	require.NoError(t, err)
	return o
}

// assertTotal checks totalAmount against the ACTIVE line totals.
func assertTotal(t *testing.T, o *models.Order) {
	t.Helper()
	want := decimal.Zero
	for _, li := range o.LineItems {
		if li.Status == models.LineItemActive {
			want = want.Add(li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity))))
		}
	}
	assert.True(t, want.Equal(o.TotalAmount), "total %s, want %s", o.TotalAmount, want)
}

func kinds(effects []Effect) []EffectKind {
	out := make([]EffectKind, 0, len(effects))
	for _, e := range effects {
		out = append(out, e.Kind)
	}
	return out
}
