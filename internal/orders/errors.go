package orders

import (
	"errors"
	"fmt"

	"github.com/safar/go-trip-orders/internal/store"
)

var (
	// ErrNotFound means a referenced account, trip, merchandise item or order does
	// not exist. Nothing was mutated.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientCapacity means a trip or merchandise item cannot cover the
	// requested quantity. Nothing was mutated.
	ErrInsufficientCapacity = errors.New("insufficient capacity")
	// ErrInvalidState is only returned by the request-level helpers; lifecycle
	// transitions report ineligible states as false.
	ErrInvalidState = errors.New("invalid state")
	// ErrSystemFailure means persistence or an inventory update failed after
	// validation passed. Side effects may have been partially applied.
	ErrSystemFailure = errors.New("system failure")
	ErrNoValidItems  = fmt.Errorf("%w: no valid items in order", ErrSystemFailure)
)

// lookupError classifies a repository read: misses become ErrNotFound, anything
// else is a system failure.
func lookupError(kind, id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s %s: %w", ErrNotFound, kind, id, err)
	}
	return fmt.Errorf("%w: load %s %s: %w", ErrSystemFailure, kind, id, err)
}

func systemFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrSystemFailure, op, err)
}
