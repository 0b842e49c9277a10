package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type Payment struct {
	PaymentID            string          `json:"paymentID"`
	RelatedOrderID       string          `json:"relatedOrderID"`
	Amount               decimal.Decimal `json:"amount"`
	Timestamp            time.Time       `json:"timestamp"`
	PaymentMethodDetails string          `json:"paymentMethodDetails"`
	Status               PaymentStatus   `json:"paymentStatus"`
}

func NewPayment(id, orderID string, amount decimal.Decimal, details string, now time.Time) *Payment {
	return &Payment{
		PaymentID:            id,
		RelatedOrderID:       orderID,
		Amount:               amount,
		Timestamp:            now.UTC(),
		PaymentMethodDetails: details,
		Status:               PaymentPending,
	}
}

func (p *Payment) Successful() bool {
	return p != nil && p.Status == PaymentSuccessful
}

// UnmarshalJSON accepts the legacy paymentTimestamp key when timestamp is absent.
func (p *Payment) UnmarshalJSON(b []byte) error {
	type record Payment
	var r struct {
		record
		Timestamp       string `json:"timestamp"`
		LegacyTimestamp string `json:"paymentTimestamp"`
	}
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}
	*p = Payment(r.record)
	if p.Status == "" {
		p.Status = PaymentPending
	}
	ts := r.Timestamp
	if ts == "" {
		ts = r.LegacyTimestamp
	}
	p.Timestamp = ParseTimestamp(ts, time.Now())
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp reads an ISO-8601 timestamp. Values without a zone are taken as
// UTC; empty or unparsable values yield fallback.
func ParseTimestamp(s string, fallback time.Time) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return fallback.UTC()
}
