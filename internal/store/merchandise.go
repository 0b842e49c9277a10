package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/safar/go-trip-orders/internal/database"
	"github.com/safar/go-trip-orders/internal/models"
)

const merchandiseColumns = `merchandise_id, name, description, price, stock_level`

func scanMerchandise(row rowScanner) (*models.Merchandise, error) {
	m := &models.Merchandise{}
	err := row.Scan(
		&m.MerchandiseID,
		&m.Name,
		&m.Description,
		&m.Price,
		&m.StockLevel,
	)
	return m, err
}

func GetMerchandise(ctx context.Context, q querier, id string) (*models.Merchandise, error) {
	m, err := scanMerchandise(q.QueryRowContext(ctx,
		`SELECT `+merchandiseColumns+` FROM merchandise WHERE merchandise_id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(database.ErrMerchandiseNotFound)
		}
		return nil, fmt.Errorf("get merchandise: %w", err)
	}
	return m, nil
}

func ListMerchandise(ctx context.Context, q querier) ([]models.Merchandise, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+merchandiseColumns+` FROM merchandise ORDER BY merchandise_id`)
	if err != nil {
		return nil, fmt.Errorf("list merchandise: %w", err)
	}
	defer rows.Close()

	items := []models.Merchandise{}
	for rows.Next() {
		m, err := scanMerchandise(rows)
		if err != nil {
			return nil, fmt.Errorf("scan merchandise: %w", err)
		}
		items = append(items, *m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

func SaveMerchandise(ctx context.Context, q querier, m *models.Merchandise) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO merchandise (merchandise_id, name, description, price, stock_level, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 ON CONFLICT (merchandise_id) DO UPDATE
		 SET name = EXCLUDED.name,
		     description = EXCLUDED.description,
		     price = EXCLUDED.price,
		     stock_level = EXCLUDED.stock_level,
		     updated_at = NOW()`,
		m.MerchandiseID, m.Name, m.Description, m.Price, m.StockLevel)
	if err != nil {
		return fmt.Errorf("save merchandise %s: %w", m.MerchandiseID, err)
	}
	return nil
}
