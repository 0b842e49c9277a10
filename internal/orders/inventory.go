package orders

import (
	"context"
	"fmt"

	"github.com/safar/go-trip-orders/internal/lock"
	"github.com/safar/go-trip-orders/internal/models"
	"github.com/safar/go-trip-orders/internal/store"
)

// Inventory is the only path that mutates Trip and Merchandise records. Every
// update re-reads the record under its lock, applies the delta and writes it back
// before returning; the caller's struct is refreshed with the stored value.
type Inventory struct {
	repo   store.Repository
	locker lock.Locker
}

func NewInventory(repo store.Repository, locker lock.Locker) *Inventory {
	return &Inventory{repo: repo, locker: locker}
}

func (inv *Inventory) UpdateTripAvailability(ctx context.Context, trip *models.Trip, delta int) error {
	return inv.withTrip(ctx, trip, func(current *models.Trip) error {
		current.ApplyDelta(delta)
		return nil
	})
}

// ReserveSeat takes one seat, failing with ErrInsufficientCapacity if the trip
// sold out since the caller last looked.
func (inv *Inventory) ReserveSeat(ctx context.Context, trip *models.Trip) error {
	return inv.withTrip(ctx, trip, func(current *models.Trip) error {
		if !current.CheckAvailability(1) {
			return fmt.Errorf("%w: trip %s is sold out", ErrInsufficientCapacity, current.ID)
		}
		current.ApplyDelta(-1)
		return nil
	})
}

func (inv *Inventory) UpdateMerchandiseStock(ctx context.Context, m *models.Merchandise, delta int) error {
	unlock, err := inv.locker.Lock(ctx, lock.MerchandiseKey(m.MerchandiseID))
	if err != nil {
		return fmt.Errorf("lock merchandise %s: %w", m.MerchandiseID, err)
	}
	defer unlock()

	current, err := inv.repo.GetMerchandise(ctx, m.MerchandiseID)
	if err != nil {
		return err
	}
	current.ApplyDelta(delta)
	if err := inv.repo.SaveMerchandise(ctx, current); err != nil {
		return err
	}
	*m = *current
	return nil
}

func (inv *Inventory) withTrip(ctx context.Context, trip *models.Trip, mutate func(*models.Trip) error) error {
	unlock, err := inv.locker.Lock(ctx, lock.TripKey(trip.ID))
	if err != nil {
		return fmt.Errorf("lock trip %s: %w", trip.ID, err)
	}
	defer unlock()

	current, err := inv.repo.GetTrip(ctx, trip.ID)
	if err != nil {
		return err
	}
	if err := mutate(current); err != nil {
		return err
	}
	if err := inv.repo.SaveTrip(ctx, current); err != nil {
		return err
	}
	*trip = *current
	return nil
}
