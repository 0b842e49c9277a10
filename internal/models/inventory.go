// Package models holds the order, line item, payment, account and inventory
// records and their JSON record form.
//
// Importing models sets decimal.MarshalJSONWithoutQuotes for the whole process,
// so every decimal.Decimal in the binary encodes as a JSON number.
package models

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type Trip struct {
	ID             string          `json:"id"`
	Route          string          `json:"route"`
	Date           string          `json:"date"`
	Time           string          `json:"time"`
	Price          decimal.Decimal `json:"price"`
	AvailableSeats int             `json:"available_seats"`
}

func (t *Trip) CheckAvailability(qty int) bool {
	return qty <= t.AvailableSeats
}

// ApplyDelta adds delta seats (negative consumes) and clamps the result at zero.
func (t *Trip) ApplyDelta(delta int) int {
	t.AvailableSeats = clampAdd(t.AvailableSeats, delta)
	return t.AvailableSeats
}

// TicketName is the line-item name snapshotted when a ticket for t is sold.
func (t *Trip) TicketName() string {
	return fmt.Sprintf("Ticket: %s - %s %s", t.Route, t.Date, t.Time)
}

type Merchandise struct {
	MerchandiseID string          `json:"merchandiseID"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockLevel    int             `json:"stockLevel"`
}

func (m *Merchandise) CheckAvailability(qty int) bool {
	return qty <= m.StockLevel
}

// ApplyDelta adds delta units (negative consumes) and clamps the result at zero.
func (m *Merchandise) ApplyDelta(delta int) int {
	m.StockLevel = clampAdd(m.StockLevel, delta)
	return m.StockLevel
}

// clampAdd saturates at zero and at math.MaxInt.
func clampAdd(current, delta int) int {
	if delta > 0 && current > math.MaxInt-delta {
		return math.MaxInt
	}
	if next := current + delta; next > 0 {
		return next
	}
	return 0
}
