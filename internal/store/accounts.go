package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/safar/go-trip-orders/internal/database"
	"github.com/safar/go-trip-orders/internal/models"
)

const accountColumns = `account_id, name, email, phone_number, password_hash`

func scanAccount(row rowScanner) (*models.Account, error) {
	a := &models.Account{}
	err := row.Scan(
		&a.AccountID,
		&a.Name,
		&a.Email,
		&a.PhoneNumber,
		&a.PasswordHash,
	)
	return a, err
}

func GetAccount(ctx context.Context, q querier, id string) (*models.Account, error) {
	a, err := scanAccount(q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE account_id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(database.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

// GetAccountByEmail matches the email case-insensitively.
func GetAccountByEmail(ctx context.Context, q querier, email string) (*models.Account, error) {
	a, err := scanAccount(q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE LOWER(email) = LOWER($1)`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(database.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return a, nil
}

// SaveAccount upserts the account. A second account with the same email fails
// with database.ErrEmailTaken.
func SaveAccount(ctx context.Context, q querier, a *models.Account) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO accounts (account_id, name, email, phone_number, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		 ON CONFLICT (account_id) DO UPDATE
		 SET name = EXCLUDED.name,
		     email = EXCLUDED.email,
		     phone_number = EXCLUDED.phone_number,
		     password_hash = EXCLUDED.password_hash,
		     updated_at = NOW()`,
		a.AccountID, a.Name, a.Email, a.PhoneNumber, a.PasswordHash)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return database.ErrEmailTaken
		}
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}
