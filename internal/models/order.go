package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrIncompleteOrder is returned when an order record lacks its id or account.
var ErrIncompleteOrder = errors.New("order record missing orderID or placingAccountID")

type Order struct {
	OrderID              string          `json:"orderID"`
	PlacingAccountID     string          `json:"placingAccountID"`
	LineItems            []SalesLineItem `json:"orderLinetems"`
	TotalAmount          decimal.Decimal `json:"totalAmount"`
	Payment              *Payment        `json:"payment"`
	Status               OrderStatus     `json:"status"`
	CancellationRequests []string        `json:"cancellationRequests"`
	RefundRequests       []string        `json:"refundRequests"`
	OrderTimestamp       time.Time       `json:"orderTimestamp"`
}

func NewOrder(id, accountID string, now time.Time) *Order {
	return &Order{
		OrderID:              id,
		PlacingAccountID:     accountID,
		LineItems:            []SalesLineItem{},
		TotalAmount:          decimal.Zero,
		Status:               OrderStatusPendingPayment,
		CancellationRequests: []string{},
		RefundRequests:       []string{},
		OrderTimestamp:       now.UTC(),
	}
}

// UpdateTotalAmount sets TotalAmount to the sum of ACTIVE line totals.
func (o *Order) UpdateTotalAmount() decimal.Decimal {
	total := decimal.Zero
	for i := range o.LineItems {
		li := &o.LineItems[i]
		if li.IsActive() {
			total = total.Add(li.CalculateLineTotal())
		}
	}
	o.TotalAmount = total
	return total
}

func (o *Order) AddLineItem(li SalesLineItem) {
	o.LineItems = append(o.LineItems, li)
	o.UpdateTotalAmount()
}

// FindLineItem returns a pointer into o.LineItems, or nil.
func (o *Order) FindLineItem(id string) *SalesLineItem {
	for i := range o.LineItems {
		if o.LineItems[i].LineItemID == id {
			return &o.LineItems[i]
		}
	}
	return nil
}

func (o *Order) ActiveLineItems() []SalesLineItem {
	var active []SalesLineItem
	for _, li := range o.LineItems {
		if li.IsActive() {
			active = append(active, li)
		}
	}
	return active
}

func (o *Order) LineItemIDs() []string {
	ids := make([]string, 0, len(o.LineItems))
	for _, li := range o.LineItems {
		ids = append(ids, li.LineItemID)
	}
	return ids
}

// AllLineItems reports whether every line item is in one of the given states.
func (o *Order) AllLineItems(states ...LineItemStatus) bool {
	for _, li := range o.LineItems {
		match := false
		for _, st := range states {
			if li.Status == st {
				match = true
				break
			}
		}
		if !match {
			return false
		}
	}
	return true
}

func (o *Order) HasSuccessfulPayment() bool {
	return o.Payment.Successful()
}

// ItemTypeSummary describes the kinds of items in the order: "No Items", a single
// type such as "Ticket", or "Mixed (Merchandise, Ticket)".
func (o *Order) ItemTypeSummary() string {
	if len(o.LineItems) == 0 {
		return "No Items"
	}
	seen := map[string]struct{}{}
	for _, li := range o.LineItems {
		seen[capitalize(string(li.ItemType))] = struct{}{}
	}
	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Strings(types)
	if len(types) == 1 {
		return types[0]
	}
	return fmt.Sprintf("Mixed (%s)", strings.Join(types, ", "))
}

// ItemSummaryNames lists ACTIVE item names, or all names when none is active,
// truncated to max entries.
func (o *Order) ItemSummaryNames(max int) string {
	items := o.ActiveLineItems()
	if len(items) == 0 {
		items = o.LineItems
	}
	if len(items) == 0 {
		return "No items"
	}
	names := make([]string, 0, len(items))
	for _, li := range items {
		names = append(names, li.ItemName)
	}
	if max > 0 && len(names) > max {
		return strings.Join(names[:max], ", ") + "..."
	}
	return strings.Join(names, ", ")
}

// MarshalJSON writes the order record with a freshly computed total.
func (o *Order) MarshalJSON() ([]byte, error) {
	o.UpdateTotalAmount()
	type record Order
	r := (*record)(o)
	if r.LineItems == nil {
		r.LineItems = []SalesLineItem{}
	}
	if r.CancellationRequests == nil {
		r.CancellationRequests = []string{}
	}
	if r.RefundRequests == nil {
		r.RefundRequests = []string{}
	}
	return json.Marshal(r)
}

// UnmarshalJSON loads an order record. Incomplete line items are dropped and the
// total is recomputed from the remaining ones.
func (o *Order) UnmarshalJSON(b []byte) error {
	type record Order
	var r struct {
		record
		OrderTimestamp string `json:"orderTimestamp"`
	}
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}
	if r.OrderID == "" || r.PlacingAccountID == "" {
		return ErrIncompleteOrder
	}
	*o = Order(r.record)
	o.OrderTimestamp = ParseTimestamp(r.OrderTimestamp, time.Now())
	if o.Status == "" {
		o.Status = OrderStatusPendingPayment
	}

	items := make([]SalesLineItem, 0, len(o.LineItems))
	for _, li := range o.LineItems {
		if li.complete() {
			items = append(items, li)
		}
	}
	o.LineItems = items
	if o.CancellationRequests == nil {
		o.CancellationRequests = []string{}
	}
	if o.RefundRequests == nil {
		o.RefundRequests = []string{}
	}
	o.UpdateTotalAmount()
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
