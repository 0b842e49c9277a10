package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safar/go-trip-orders/internal/models"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Postgres implements Repository on top of the package-level query functions.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) GetTrip(ctx context.Context, id string) (*models.Trip, error) {
	return GetTrip(ctx, p.db, id)
}

func (p *Postgres) ListTrips(ctx context.Context) ([]models.Trip, error) {
	return ListTrips(ctx, p.db)
}

func (p *Postgres) SaveTrip(ctx context.Context, trip *models.Trip) error {
	return SaveTrip(ctx, p.db, trip)
}

func (p *Postgres) GetMerchandise(ctx context.Context, id string) (*models.Merchandise, error) {
	return GetMerchandise(ctx, p.db, id)
}

func (p *Postgres) ListMerchandise(ctx context.Context) ([]models.Merchandise, error) {
	return ListMerchandise(ctx, p.db)
}

func (p *Postgres) SaveMerchandise(ctx context.Context, m *models.Merchandise) error {
	return SaveMerchandise(ctx, p.db, m)
}

func (p *Postgres) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return GetOrder(ctx, p.db, id)
}

func (p *Postgres) ListOrders(ctx context.Context) ([]models.Order, error) {
	return ListOrders(ctx, p.db)
}

func (p *Postgres) ListOrdersByAccount(ctx context.Context, accountID string) ([]models.Order, error) {
	return ListOrdersByAccount(ctx, p.db, accountID)
}

func (p *Postgres) ListOrdersPage(ctx context.Context, accountID, cursor string, limit int) (*CursorPage, error) {
	return ListOrdersCursor(ctx, p.db, accountID, cursor, limit)
}

func (p *Postgres) SaveOrder(ctx context.Context, order *models.Order) error {
	return SaveOrder(ctx, p.db, order)
}

func (p *Postgres) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	return GetAccount(ctx, p.db, id)
}

func (p *Postgres) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	return GetAccountByEmail(ctx, p.db, email)
}

func (p *Postgres) SaveAccount(ctx context.Context, account *models.Account) error {
	return SaveAccount(ctx, p.db, account)
}

func (p *Postgres) GenerateID(prefix string) string {
	return GenerateID(prefix)
}

// NextOrderID draws from the order_number_seq sequence, which starts at 1000.
func (p *Postgres) NextOrderID(ctx context.Context) (string, error) {
	var n int64
	if err := p.db.QueryRowContext(ctx, `SELECT nextval('order_number_seq')`).Scan(&n); err != nil {
		return "", fmt.Errorf("next order id: %w", err)
	}
	return formatOrderID(n), nil
}
