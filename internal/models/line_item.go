package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// SalesLineItem is one purchased unit inside an order. ItemID is a weak reference
// to a Trip or Merchandise record, resolved through the repository.
type SalesLineItem struct {
	LineItemID string          `json:"lineItemID"`
	ItemID     string          `json:"item_id"`
	ItemType   ItemType        `json:"item_type"`
	ItemName   string          `json:"item_name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	LineTotal  decimal.Decimal `json:"lineTotal"`
	Status     LineItemStatus  `json:"line_item_status"`
}

// NewTicketLineItem snapshots the trip's current price into an ACTIVE line item.
func NewTicketLineItem(id string, trip *Trip) SalesLineItem {
	li := SalesLineItem{
		LineItemID: id,
		ItemID:     trip.ID,
		ItemType:   ItemTypeTicket,
		ItemName:   trip.TicketName(),
		Quantity:   1,
		UnitPrice:  trip.Price,
		Status:     LineItemActive,
	}
	li.CalculateLineTotal()
	return li
}

func NewMerchandiseLineItem(id string, m *Merchandise, qty int) SalesLineItem {
	li := SalesLineItem{
		LineItemID: id,
		ItemID:     m.MerchandiseID,
		ItemType:   ItemTypeMerchandise,
		ItemName:   m.Name,
		Quantity:   qty,
		UnitPrice:  m.Price,
		Status:     LineItemActive,
	}
	li.CalculateLineTotal()
	return li
}

func (li *SalesLineItem) CalculateLineTotal() decimal.Decimal {
	li.LineTotal = li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
	return li.LineTotal
}

func (li *SalesLineItem) IsActive() bool {
	return li.Status == LineItemActive
}

// MarkRescheduled moves an ACTIVE item to RESCHEDULED. It reports false and leaves
// the item untouched from any other state.
func (li *SalesLineItem) MarkRescheduled() bool {
	if li.Status != LineItemActive {
		return false
	}
	li.Status = LineItemRescheduled
	return true
}

// Cancel moves an ACTIVE item to CANCELLED. It reports false and leaves the item
// untouched from any other state.
func (li *SalesLineItem) Cancel() bool {
	if li.Status != LineItemActive {
		return false
	}
	li.Status = LineItemCancelled
	return true
}

func (li *SalesLineItem) UnmarshalJSON(b []byte) error {
	type record SalesLineItem
	var r record
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}
	*li = SalesLineItem(r)
	// Records written before statuses were stored carry no key at all.
	if li.Status == "" {
		li.Status = LineItemActive
	}
	li.CalculateLineTotal()
	return nil
}

func (li *SalesLineItem) complete() bool {
	return li.LineItemID != "" && li.ItemID != "" && li.ItemType != ""
}
