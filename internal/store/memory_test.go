package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/safar/go-trip-orders/internal/database"
	"github.com/safar/go-trip-orders/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Repository = (*Memory)(nil)
var _ Repository = (*Postgres)(nil)

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()

	require.NoError(t, repo.SaveTrip(ctx, &models.Trip{ID: "T1", AvailableSeats: 5, Price: decimal.NewFromInt(10)}))

	trip, err := repo.GetTrip(ctx, "T1")
	require.NoError(t, err)
	trip.ApplyDelta(-5)

	again, err := repo.GetTrip(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, 5, again.AvailableSeats)

	o := models.NewOrder("ORD1", "acc", time.Now())
	o.AddLineItem(models.NewTicketLineItem("sli1", again))
	require.NoError(t, repo.SaveOrder(ctx, o))

	o.LineItems[0].Cancel()
	stored, err := repo.GetOrder(ctx, "ORD1")
	require.NoError(t, err)
	assert.Equal(t, models.LineItemActive, stored.LineItems[0].Status)
}

func TestMemoryNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()

	_, err := repo.GetOrder(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, database.ErrOrderNotFound)

	_, err = repo.GetMerchandise(ctx, "missing")
	assert.ErrorIs(t, err, database.ErrMerchandiseNotFound)

	_, err = repo.GetAccountByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, database.ErrAccountNotFound)
}

func TestMemoryOrderIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()

	first, err := repo.NextOrderID(ctx)
	require.NoError(t, err)
	second, err := repo.NextOrderID(ctx)
	require.NoError(t, err)

	assert.Equal(t, "ORD1000", first)
	assert.Equal(t, "ORD1001", second)

	id := repo.GenerateID("sli")
	assert.Len(t, id, 11)
	assert.Regexp(t, `^sli[0-9a-f]{8}$`, id)
	assert.NotEqual(t, id, repo.GenerateID("sli"))
}

func TestMemoryFailureInjection(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	boom := errors.New("disk full")

	repo.FailWith(func(op, id string) error {
		if op == "order" {
			return boom
		}
		return nil
	})

	err := repo.SaveOrder(ctx, models.NewOrder("ORD1", "acc", time.Now()))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, repo.SaveCount("order"))

	require.NoError(t, repo.SaveTrip(ctx, &models.Trip{ID: "T1"}))
	assert.Equal(t, 1, repo.SaveCount("trip"))
}

func TestMemoryAccountEmailUnique(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()

	require.NoError(t, repo.SaveAccount(ctx, &models.Account{AccountID: "a1", Email: "A@x.io"}))
	err := repo.SaveAccount(ctx, &models.Account{AccountID: "a2", Email: "a@X.io"})
	assert.ErrorIs(t, err, database.ErrEmailTaken)

	require.NoError(t, repo.SaveAccount(ctx, &models.Account{AccountID: "a1", Email: "a@x.io", Name: "renamed"}))
}

func TestMemoryListOrdersPage(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		id, _ := repo.NextOrderID(ctx)
		require.NoError(t, repo.SaveOrder(ctx, models.NewOrder(id, "acc", base.Add(time.Duration(i)*time.Hour))))
	}
	require.NoError(t, repo.SaveOrder(ctx, models.NewOrder("ORD-other", "someone-else", base)))

	page, err := repo.ListOrdersPage(ctx, "acc", "", 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, "ORD1004", page.Items[0].OrderID)
	assert.Equal(t, "ORD1003", page.Items[1].OrderID)

	page, err = repo.ListOrdersPage(ctx, "acc", page.NextCursor, 2)
	require.NoError(t, err)
	assert.Equal(t, "ORD1002", page.Items[0].OrderID)

	page, err = repo.ListOrdersPage(ctx, "acc", page.NextCursor, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.False(t, page.HasMore)
	assert.Empty(t, page.NextCursor)

	_, err = repo.ListOrdersPage(ctx, "acc", "%%%", 2)
	assert.Error(t, err)
}
