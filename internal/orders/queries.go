package orders

import (
	"context"
	"fmt"

	"github.com/safar/go-trip-orders/internal/models"
	"github.com/safar/go-trip-orders/internal/store"
)

func (s *Service) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, lookupError("order", orderID, err)
	}
	return order, nil
}

// GetOrderForAccount loads an order owned by accountID. Orders placed by other
// accounts are reported as not found.
func (s *Service) GetOrderForAccount(ctx context.Context, orderID, accountID string) (*models.Order, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PlacingAccountID != accountID {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}
	return order, nil
}

// ListOrders returns the account's orders, newest first.
func (s *Service) ListOrders(ctx context.Context, accountID string) ([]models.Order, error) {
	orders, err := s.repo.ListOrdersByAccount(ctx, accountID)
	if err != nil {
		return nil, systemFailure("list orders", err)
	}
	return orders, nil
}

func (s *Service) ListOrdersPage(ctx context.Context, accountID, cursor string, limit int) (*store.CursorPage, error) {
	page, err := s.repo.ListOrdersPage(ctx, accountID, cursor, limit)
	if err != nil {
		return nil, systemFailure("list orders", err)
	}
	return page, nil
}

func (s *Service) ListTrips(ctx context.Context) ([]models.Trip, error) {
	trips, err := s.repo.ListTrips(ctx)
	if err != nil {
		return nil, systemFailure("list trips", err)
	}
	return trips, nil
}

func (s *Service) ListMerchandise(ctx context.Context) ([]models.Merchandise, error) {
	items, err := s.repo.ListMerchandise(ctx)
	if err != nil {
		return nil, systemFailure("list merchandise", err)
	}
	return items, nil
}

// PayOrder retries payment on one of the account's orders. Unlike
// ProcessPayment it rejects an order that is not PENDING_PAYMENT with
// ErrInvalidState.
func (s *Service) PayOrder(ctx context.Context, orderID, accountID, paymentDetails string) (*models.Order, bool, error) {
	order, err := s.GetOrderForAccount(ctx, orderID, accountID)
	if err != nil {
		return nil, false, err
	}
	if order.Status != models.OrderStatusPendingPayment {
		return order, false, fmt.Errorf("%w: order %s is %s, not pending payment", ErrInvalidState, orderID, order.Status)
	}

	ok, err := s.ProcessPayment(ctx, order, paymentDetails)
	if err != nil {
		return nil, false, err
	}
	return order, ok, nil
}

func (s *Service) CancelOrder(ctx context.Context, orderID, accountID string) (*models.Order, Result, error) {
	order, err := s.GetOrderForAccount(ctx, orderID, accountID)
	if err != nil {
		return nil, Result{}, err
	}

	res, err := s.InitiateCancellation(ctx, order)
	if err != nil {
		return nil, res, err
	}
	return order, res, nil
}

// RescheduleTicket moves a ticket of the account's order to newTripID, which must
// run the same route as the ticket's current trip.
func (s *Service) RescheduleTicket(ctx context.Context, orderID, accountID, lineItemID, newTripID string) (*models.Order, Result, error) {
	order, err := s.GetOrderForAccount(ctx, orderID, accountID)
	if err != nil {
		return nil, Result{}, err
	}

	original, err := s.reschedulableTrip(ctx, order, lineItemID)
	if err != nil {
		return nil, Result{}, err
	}

	newTrip, err := s.repo.GetTrip(ctx, newTripID)
	if err != nil {
		return nil, Result{}, lookupError("trip", newTripID, err)
	}
	if newTrip.ID == original.ID || newTrip.Route != original.Route {
		return nil, Result{}, fmt.Errorf("%w: trip %s is not an alternative for %s", ErrInvalidState, newTripID, original.ID)
	}

	res, err := s.RescheduleTicketLineItem(ctx, order, lineItemID, newTrip)
	if err != nil {
		return nil, res, err
	}
	return order, res, nil
}

// RescheduleOptions lists trips on the same route as the ticket's trip, other
// than that trip, that still have seats.
func (s *Service) RescheduleOptions(ctx context.Context, orderID, accountID, lineItemID string) ([]models.Trip, error) {
	order, err := s.GetOrderForAccount(ctx, orderID, accountID)
	if err != nil {
		return nil, err
	}

	original, err := s.reschedulableTrip(ctx, order, lineItemID)
	if err != nil {
		return nil, err
	}

	trips, err := s.ListTrips(ctx)
	if err != nil {
		return nil, err
	}

	options := []models.Trip{}
	for _, t := range trips {
		if t.Route == original.Route && t.ID != original.ID && t.CheckAvailability(1) {
			options = append(options, t)
		}
	}
	return options, nil
}

func (s *Service) reschedulableTrip(ctx context.Context, order *models.Order, lineItemID string) (*models.Trip, error) {
	li := order.FindLineItem(lineItemID)
	if li == nil {
		return nil, fmt.Errorf("%w: line item %s in order %s", ErrNotFound, lineItemID, order.OrderID)
	}
	if li.ItemType != models.ItemTypeTicket || !li.IsActive() {
		return nil, fmt.Errorf("%w: line item %s is not an active ticket", ErrInvalidState, lineItemID)
	}

	trip, err := s.repo.GetTrip(ctx, li.ItemID)
	if err != nil {
		// The ticket points at a trip that no longer exists.
		return nil, systemFailure("load trip "+li.ItemID, err)
	}
	return trip, nil
}
