// Package payment holds the seam between orders and whatever settles money.
package payment

import (
	"context"
	"time"

	"github.com/safar/go-trip-orders/internal/models"
)

// Gateway settles a PENDING payment. It reports whether the charge succeeded
// and stamps the payment's status and timestamp. An error means the attempt
// could not be completed and is treated by callers as a failed charge.
type Gateway interface {
	Process(ctx context.Context, p *models.Payment) (bool, error)
}

// GatewayFunc adapts a function to the Gateway interface.
type GatewayFunc func(ctx context.Context, p *models.Payment) (bool, error)

func (f GatewayFunc) Process(ctx context.Context, p *models.Payment) (bool, error) {
	return f(ctx, p)
}

// Simulated approves every charge. It never retries and never talks to a
// network.
type Simulated struct {
	Now func() time.Time
}

func NewSimulated() *Simulated {
	return &Simulated{Now: time.Now}
}

func (s *Simulated) Process(ctx context.Context, p *models.Payment) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	p.Status = models.PaymentSuccessful
	p.Timestamp = now().UTC()
	return true, nil
}

// Declining rejects every charge, marking the payment FAILED.
var Declining = GatewayFunc(func(_ context.Context, p *models.Payment) (bool, error) {
	p.Status = models.PaymentFailed
	return false, nil
})
