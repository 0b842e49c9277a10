package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/safar/go-trip-orders/internal/database"
	"github.com/safar/go-trip-orders/internal/models"
)

const tripColumns = `id, route, trip_date, trip_time, price, available_seats`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*models.Trip, error) {
	trip := &models.Trip{}
	err := row.Scan(
		&trip.ID,
		&trip.Route,
		&trip.Date,
		&trip.Time,
		&trip.Price,
		&trip.AvailableSeats,
	)
	return trip, err
}

func GetTrip(ctx context.Context, q querier, id string) (*models.Trip, error) {
	trip, err := scanTrip(q.QueryRowContext(ctx,
		`SELECT `+tripColumns+` FROM trips WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(database.ErrTripNotFound)
		}
		return nil, fmt.Errorf("get trip: %w", err)
	}
	return trip, nil
}

func ListTrips(ctx context.Context, q querier) ([]models.Trip, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+tripColumns+` FROM trips ORDER BY trip_date, trip_time, id`)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	trips := []models.Trip{}
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		trips = append(trips, *trip)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return trips, nil
}

// SaveTrip upserts the trip by id.
func SaveTrip(ctx context.Context, q querier, trip *models.Trip) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO trips (id, route, trip_date, trip_time, price, available_seats, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW())
		 ON CONFLICT (id) DO UPDATE
		 SET route = EXCLUDED.route,
		     trip_date = EXCLUDED.trip_date,
		     trip_time = EXCLUDED.trip_time,
		     price = EXCLUDED.price,
		     available_seats = EXCLUDED.available_seats,
		     updated_at = NOW()`,
		trip.ID, trip.Route, trip.Date, trip.Time, trip.Price, trip.AvailableSeats)
	if err != nil {
		return fmt.Errorf("save trip %s: %w", trip.ID, err)
	}
	return nil
}
