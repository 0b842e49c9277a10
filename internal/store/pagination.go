package store

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/safar/go-trip-orders/internal/models"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type CursorPage struct {
	Items      []models.Order `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
	HasMore    bool           `json:"has_more"`
}

// OrderCursor marks the last order of a page; pages run newest first.
type OrderCursor struct {
	OrderTimestamp time.Time `json:"ts"`
	OrderID        string    `json:"id"`
}

func EncodeCursor(cursor OrderCursor) string {
	data, err := json.Marshal(cursor)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(data)
}

// DecodeCursor parses a cursor. The empty cursor starts from the newest order.
func DecodeCursor(encoded string) (OrderCursor, bool, error) {
	var cursor OrderCursor
	if encoded == "" {
		return cursor, false, nil
	}

	data, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return cursor, false, err
	}

	err = json.Unmarshal(data, &cursor)
	return cursor, err == nil, err
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

// before reports whether o sorts after the cursor in newest-first order.
func (c OrderCursor) before(o *models.Order) bool {
	if !o.OrderTimestamp.Equal(c.OrderTimestamp) {
		return o.OrderTimestamp.Before(c.OrderTimestamp)
	}
	return o.OrderID < c.OrderID
}

func buildPage(orders []models.Order, limit int) *CursorPage {
	hasMore := len(orders) > limit
	if hasMore {
		orders = orders[:limit]
	}

	var next string
	if hasMore && len(orders) > 0 {
		last := orders[len(orders)-1]
		next = EncodeCursor(OrderCursor{OrderTimestamp: last.OrderTimestamp, OrderID: last.OrderID})
	}

	if orders == nil {
		orders = []models.Order{}
	}
	return &CursorPage{Items: orders, NextCursor: next, HasMore: hasMore}
}
