// Package auth owns account credentials: registration, bcrypt verification and
// access tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/safar/go-trip-orders/internal/models"
	"github.com/safar/go-trip-orders/internal/store"
)

const accountIDPrefix = "acc"

var ErrInvalidRegistration = errors.New("name, email and password are required")

// AccountStore is the slice of the repository the directory needs.
type AccountStore interface {
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	SaveAccount(ctx context.Context, account *models.Account) error
	GenerateID(prefix string) string
}

type Directory struct {
	accounts   AccountStore
	bcryptCost int
}

func NewDirectory(accounts AccountStore, bcryptCost int) *Directory {
	return &Directory{accounts: accounts, bcryptCost: bcryptCost}
}

func (d *Directory) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	return d.accounts.GetAccount(ctx, id)
}

func (d *Directory) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	return d.accounts.GetAccountByEmail(ctx, strings.TrimSpace(email))
}

// VerifyCredentials reports whether password matches the account registered
// under email. An unknown email is not an error.
func (d *Directory) VerifyCredentials(ctx context.Context, email, password string) (bool, error) {
	_, ok, err := d.Authenticate(ctx, email, password)
	return ok, err
}

// Authenticate is VerifyCredentials that also returns the matched account.
func (d *Directory) Authenticate(ctx context.Context, email, password string) (*models.Account, bool, error) {
	account, err := d.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if !VerifyPassword(account.PasswordHash, password) {
		return nil, false, nil
	}
	return account, true, nil
}

// Register creates an account. A duplicate email fails with
// database.ErrEmailTaken from the store.
func (d *Directory) Register(ctx context.Context, name, email, phone, password string) (*models.Account, error) {
	name, email = strings.TrimSpace(name), strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, ErrInvalidRegistration
	}

	hash, err := HashPassword(password, d.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &models.Account{
		AccountID:    d.accounts.GenerateID(accountIDPrefix),
		Name:         name,
		Email:        email,
		PhoneNumber:  strings.TrimSpace(phone),
		PasswordHash: hash,
	}
	if err := d.accounts.SaveAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}
