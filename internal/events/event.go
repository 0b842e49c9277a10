// Package events carries order lifecycle notifications to RabbitMQ and back.
package events

import (
	"context"
	"time"

	"github.com/safar/go-trip-orders/internal/models"
	"github.com/shopspring/decimal"
)

type Type string

const (
	OrderPaid          Type = "order.paid"
	OrderPaymentFailed Type = "order.payment_failed"
	OrderCancelled     Type = "order.cancelled"
	OrderRefunded      Type = "order.refunded"
	TicketRescheduled  Type = "ticket.rescheduled"
)

// DefaultQueue is the durable queue lifecycle events are published to.
const DefaultQueue = "order.events"

type Event struct {
	Type        Type            `json:"type"`
	OrderID     string          `json:"order_id"`
	AccountID   string          `json:"account_id"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	LineItemIDs []string        `json:"line_item_ids"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// FromOrder snapshots o as an event of type t.
func FromOrder(t Type, o *models.Order, at time.Time) Event {
	return Event{
		Type:        t,
		OrderID:     o.OrderID,
		AccountID:   o.PlacingAccountID,
		Status:      string(o.Status),
		TotalAmount: o.TotalAmount,
		LineItemIDs: o.LineItemIDs(),
		OccurredAt:  at.UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
