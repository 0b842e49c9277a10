package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/safar/go-trip-orders/internal/database"
	"github.com/safar/go-trip-orders/internal/models"
)

// FailFunc decides whether a Memory write should fail. op is one of "trip",
// "merchandise", "order" or "account".
type FailFunc func(op, id string) error

// Memory is an in-process Repository. It is safe for concurrent use and hands out
// copies, so callers never share state through it.
type Memory struct {
	mu          sync.RWMutex
	trips       map[string]models.Trip
	merchandise map[string]models.Merchandise
	orders      map[string]models.Order
	accounts    map[string]models.Account
	orderSeq    int64
	saves       map[string]int
	fail        FailFunc
}

func NewMemory() *Memory {
	return &Memory{
		trips:       make(map[string]models.Trip),
		merchandise: make(map[string]models.Merchandise),
		orders:      make(map[string]models.Order),
		accounts:    make(map[string]models.Account),
		orderSeq:    1000,
		saves:       make(map[string]int),
	}
}

// FailWith installs fn as a write hook; nil clears it.
func (m *Memory) FailWith(fn FailFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fn
}

// SaveCount reports how many successful writes op has seen.
func (m *Memory) SaveCount(op string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves[op]
}

func (m *Memory) checkWrite(op, id string) error {
	if m.fail != nil {
		if err := m.fail(op, id); err != nil {
			return err
		}
	}
	m.saves[op]++
	return nil
}

func (m *Memory) GetTrip(_ context.Context, id string) (*models.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	trip, ok := m.trips[id]
	if !ok {
		return nil, notFound(database.ErrTripNotFound)
	}
	return &trip, nil
}

func (m *Memory) ListTrips(_ context.Context) ([]models.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	trips := make([]models.Trip, 0, len(m.trips))
	for _, t := range m.trips {
		trips = append(trips, t)
	}
	sort.Slice(trips, func(i, j int) bool {
		a, b := trips[i], trips[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		return a.ID < b.ID
	})
	return trips, nil
}

func (m *Memory) SaveTrip(_ context.Context, trip *models.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkWrite("trip", trip.ID); err != nil {
		return err
	}
	m.trips[trip.ID] = *trip
	return nil
}

func (m *Memory) GetMerchandise(_ context.Context, id string) (*models.Merchandise, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.merchandise[id]
	if !ok {
		return nil, notFound(database.ErrMerchandiseNotFound)
	}
	return &item, nil
}

func (m *Memory) ListMerchandise(_ context.Context) ([]models.Merchandise, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]models.Merchandise, 0, len(m.merchandise))
	for _, item := range m.merchandise {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].MerchandiseID < items[j].MerchandiseID })
	return items, nil
}

func (m *Memory) SaveMerchandise(_ context.Context, item *models.Merchandise) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkWrite("merchandise", item.MerchandiseID); err != nil {
		return err
	}
	m.merchandise[item.MerchandiseID] = *item
	return nil
}

func (m *Memory) GetOrder(_ context.Context, id string) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, notFound(database.ErrOrderNotFound)
	}
	return cloneOrder(&o), nil
}

func (m *Memory) ListOrders(_ context.Context) ([]models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	orders := m.collectOrders(func(*models.Order) bool { return true })
	sort.Slice(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		if !a.OrderTimestamp.Equal(b.OrderTimestamp) {
			return a.OrderTimestamp.Before(b.OrderTimestamp)
		}
		return a.OrderID < b.OrderID
	})
	return orders, nil
}

func (m *Memory) ListOrdersByAccount(_ context.Context, accountID string) ([]models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	orders := m.collectOrders(func(o *models.Order) bool { return o.PlacingAccountID == accountID })
	sortNewestFirst(orders)
	return orders, nil
}

func (m *Memory) ListOrdersPage(_ context.Context, accountID, cursor string, limit int) (*CursorPage, error) {
	cursorData, ok, err := DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}
	limit = clampLimit(limit)

	m.mu.RLock()
	defer m.mu.RUnlock()

	orders := m.collectOrders(func(o *models.Order) bool {
		return o.PlacingAccountID == accountID && (!ok || cursorData.before(o))
	})
	sortNewestFirst(orders)
	if len(orders) > limit+1 {
		orders = orders[:limit+1]
	}
	return buildPage(orders, limit), nil
}

func (m *Memory) SaveOrder(_ context.Context, o *models.Order) error {
	o.UpdateTotalAmount()

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkWrite("order", o.OrderID); err != nil {
		return err
	}
	m.orders[o.OrderID] = *cloneOrder(o)
	return nil
}

func (m *Memory) GetAccount(_ context.Context, id string) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.accounts[id]
	if !ok {
		return nil, notFound(database.ErrAccountNotFound)
	}
	return &a, nil
}

func (m *Memory) GetAccountByEmail(_ context.Context, email string) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, a := range m.accounts {
		if strings.EqualFold(a.Email, email) {
			return &a, nil
		}
	}
	return nil, notFound(database.ErrAccountNotFound)
}

func (m *Memory) SaveAccount(_ context.Context, a *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, existing := range m.accounts {
		if id != a.AccountID && strings.EqualFold(existing.Email, a.Email) {
			return database.ErrEmailTaken
		}
	}
	if err := m.checkWrite("account", a.AccountID); err != nil {
		return err
	}
	m.accounts[a.AccountID] = *a
	return nil
}

func (m *Memory) GenerateID(prefix string) string {
	return GenerateID(prefix)
}

func (m *Memory) NextOrderID(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := formatOrderID(m.orderSeq)
	m.orderSeq++
	return id, nil
}

func (m *Memory) collectOrders(keep func(*models.Order) bool) []models.Order {
	orders := []models.Order{}
	for _, o := range m.orders {
		if keep(&o) {
			orders = append(orders, *cloneOrder(&o))
		}
	}
	return orders
}

func sortNewestFirst(orders []models.Order) {
	sort.Slice(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		if !a.OrderTimestamp.Equal(b.OrderTimestamp) {
			return a.OrderTimestamp.After(b.OrderTimestamp)
		}
		return a.OrderID > b.OrderID
	})
}

func cloneOrder(o *models.Order) *models.Order {
	c := *o
	c.LineItems = append([]models.SalesLineItem{}, o.LineItems...)
	c.CancellationRequests = append([]string{}, o.CancellationRequests...)
	c.RefundRequests = append([]string{}, o.RefundRequests...)
	if o.Payment != nil {
		p := *o.Payment
		c.Payment = &p
	}
	return &c
}
