package models

import "encoding/json"

type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "PENDING_PAYMENT"
	OrderStatusPaid           OrderStatus = "PAID"
	OrderStatusCompleted      OrderStatus = "COMPLETED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
	OrderStatusFailed         OrderStatus = "FAILED"
)

// ParseOrderStatus maps a stored value to an OrderStatus. Unknown values load as
// PENDING_PAYMENT.
func ParseOrderStatus(s string) OrderStatus {
	switch st := OrderStatus(s); st {
	case OrderStatusPendingPayment, OrderStatusPaid, OrderStatusCompleted,
		OrderStatusCancelled, OrderStatusFailed:
		return st
	}
	return OrderStatusPendingPayment
}

// Terminal reports whether no lifecycle operation may move the order further.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled || s == OrderStatusFailed
}

func (s *OrderStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		raw = ""
	}
	*s = ParseOrderStatus(raw)
	return nil
}

type LineItemStatus string

const (
	LineItemActive      LineItemStatus = "ACTIVE"
	LineItemUsed        LineItemStatus = "USED"
	LineItemExpired     LineItemStatus = "EXPIRED"
	LineItemCancelled   LineItemStatus = "CANCELLED"
	LineItemInvalid     LineItemStatus = "INVALID"
	LineItemRescheduled LineItemStatus = "RESCHEDULED"
	LineItemPending     LineItemStatus = "PENDING"
)

// ParseLineItemStatus maps a stored value to a LineItemStatus. Unknown values load
// as PENDING.
func ParseLineItemStatus(s string) LineItemStatus {
	switch st := LineItemStatus(s); st {
	case LineItemActive, LineItemUsed, LineItemExpired, LineItemCancelled,
		LineItemInvalid, LineItemRescheduled, LineItemPending:
		return st
	}
	return LineItemPending
}

func (s *LineItemStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		raw = ""
	}
	*s = ParseLineItemStatus(raw)
	return nil
}

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "PENDING"
	PaymentSuccessful PaymentStatus = "SUCCESSFUL"
	PaymentFailed     PaymentStatus = "FAILED"
	PaymentRefunded   PaymentStatus = "REFUNDED"
)

// ParsePaymentStatus maps a stored value to a PaymentStatus. Unknown values load as
// PENDING.
func ParsePaymentStatus(s string) PaymentStatus {
	switch st := PaymentStatus(s); st {
	case PaymentPending, PaymentSuccessful, PaymentFailed, PaymentRefunded:
		return st
	}
	return PaymentPending
}

func (s *PaymentStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		raw = ""
	}
	*s = ParsePaymentStatus(raw)
	return nil
}

type ItemType string

const (
	ItemTypeTicket      ItemType = "ticket"
	ItemTypeMerchandise ItemType = "merchandise"
)
