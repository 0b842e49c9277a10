package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/safar/go-trip-orders/internal/models"
)

// ErrNotFound is wrapped by every lookup miss together with the entity sentinel
// from the database package, e.g. database.ErrTripNotFound.
var ErrNotFound = errors.New("not found")

// Repository is the persistence collaborator of the order engine. Saves are
// upserts by id; records are returned as copies.
type Repository interface {
	GetTrip(ctx context.Context, id string) (*models.Trip, error)
	ListTrips(ctx context.Context) ([]models.Trip, error)
	SaveTrip(ctx context.Context, trip *models.Trip) error

	GetMerchandise(ctx context.Context, id string) (*models.Merchandise, error)
	ListMerchandise(ctx context.Context) ([]models.Merchandise, error)
	SaveMerchandise(ctx context.Context, m *models.Merchandise) error

	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	ListOrdersByAccount(ctx context.Context, accountID string) ([]models.Order, error)
	ListOrdersPage(ctx context.Context, accountID, cursor string, limit int) (*CursorPage, error)
	SaveOrder(ctx context.Context, order *models.Order) error

	GetAccount(ctx context.Context, id string) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	SaveAccount(ctx context.Context, account *models.Account) error

	GenerateID(prefix string) string
	NextOrderID(ctx context.Context) (string, error)
}

func notFound(entity error) error {
	return fmt.Errorf("%w: %w", ErrNotFound, entity)
}
