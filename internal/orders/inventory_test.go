package orders

import (
	"context"
	"sync"
	"testing"

	"github.com/safar/go-trip-orders/internal/lock"
	"github.com/safar/go-trip-orders/internal/models"
	"github.com/safar/go-trip-orders/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryUpdatesPersistAndRefresh(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemory()
	inv := NewInventory(repo, lock.NewKeyedMutex())

	require.NoError(t, repo.SaveTrip(ctx, &models.Trip{ID: "T1", AvailableSeats: 4}))
	stale := &models.Trip{ID: "T1", AvailableSeats: 99}

	require.NoError(t, inv.UpdateTripAvailability(ctx, stale, -10))
	assert.Equal(t, 0, stale.AvailableSeats)
	assert.False(t, stale.CheckAvailability(1))

	stored, err := repo.GetTrip(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.AvailableSeats)

	assert.ErrorIs(t, inv.ReserveSeat(ctx, stale), ErrInsufficientCapacity)

	m := &models.Merchandise{MerchandiseID: "M404"}
	assert.ErrorIs(t, inv.UpdateMerchandiseStock(ctx, m, 1), store.ErrNotFound)
}

func TestInventoryConcurrentDeltas(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemory()
	inv := NewInventory(repo, lock.NewKeyedMutex())
	require.NoError(t, repo.SaveMerchandise(ctx, &models.Merchandise{MerchandiseID: "M1", StockLevel: 100}))

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(delta int) {
			defer wg.Done()
			assert.NoError(t, inv.UpdateMerchandiseStock(ctx, &models.Merchandise{MerchandiseID: "M1"}, delta))
		}(-1 + 2*(i%2))
	}
	wg.Wait()

	m, err := repo.GetMerchandise(ctx, "M1")
	require.NoError(t, err)
	assert.Equal(t, 100, m.StockLevel)
}
