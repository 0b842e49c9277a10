package orders

import (
	"context"

	"github.com/safar/go-trip-orders/internal/models"
)

type EffectKind string

const (
	EffectSeatReserved        EffectKind = "seat_reserved"
	EffectSeatReleased        EffectKind = "seat_released"
	EffectStockDecremented    EffectKind = "stock_decremented"
	EffectStockRestocked      EffectKind = "stock_restocked"
	EffectLineItemRescheduled EffectKind = "line_item_rescheduled"
)

// Effect is one side effect attempted by a lifecycle operation. Applied is false
// when the attempt itself failed (Err says why). Confirmed is set once the
// surrounding operation persisted the order.
type Effect struct {
	Kind       EffectKind
	ItemType   models.ItemType
	ItemID     string
	LineItemID string
	Delta      int
	Applied    bool
	Confirmed  bool
	Err        error
}

// Result is what reschedule and cancellation report. OK mirrors the boolean
// outcome of the transition.
type Result struct {
	OK      bool
	Effects []Effect
}

// Unconfirmed lists effects that were applied but whose operation did not
// complete. No rollback is performed for them; see Compensator.
func (r Result) Unconfirmed() []Effect {
	var out []Effect
	for _, e := range r.Effects {
		if e.Applied && !e.Confirmed {
			out = append(out, e)
		}
	}
	return out
}

// Failed lists attempted effects that could not be applied.
func (r Result) Failed() []Effect {
	var out []Effect
	for _, e := range r.Effects {
		if !e.Applied {
			out = append(out, e)
		}
	}
	return out
}

// Compensator receives the unconfirmed effects of an operation that stopped
// part-way, e.g. a reschedule whose new trip was full.
type Compensator interface {
	Compensate(ctx context.Context, order *models.Order, effects []Effect) error
}

// CompensatorFunc adapts a function to the Compensator interface.
type CompensatorFunc func(ctx context.Context, order *models.Order, effects []Effect) error

func (f CompensatorFunc) Compensate(ctx context.Context, order *models.Order, effects []Effect) error {
	return f(ctx, order, effects)
}

type noCompensation struct{}

func (noCompensation) Compensate(context.Context, *models.Order, []Effect) error { return nil }

type ledger struct {
	effects []Effect
}

func (l *ledger) record(e Effect) {
	l.effects = append(l.effects, e)
}

func (l *ledger) confirm() {
	for i := range l.effects {
		if l.effects[i].Applied {
			l.effects[i].Confirmed = true
		}
	}
}

func (l *ledger) result(ok bool) Result {
	return Result{OK: ok, Effects: append([]Effect(nil), l.effects...)}
}
