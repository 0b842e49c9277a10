// Package orders implements the order lifecycle: building ticket and merchandise
// orders, taking payment, rescheduling tickets, cancelling and refunding, while
// keeping trip seats and merchandise stock in step.
//
// Validation failures (ErrNotFound, ErrInsufficientCapacity) are returned before
// anything is mutated. Transitions attempted from an ineligible state report
// false. ErrSystemFailure is returned when persistence fails after validation,
// possibly leaving earlier side effects applied.
package orders

import (
	"context"
	"time"

	"github.com/safar/go-trip-orders/internal/events"
	"github.com/safar/go-trip-orders/internal/lock"
	"github.com/safar/go-trip-orders/internal/models"
	"github.com/safar/go-trip-orders/internal/payment"
	"github.com/safar/go-trip-orders/internal/store"
	"go.uber.org/zap"
)

const (
	lineItemIDPrefix = "sli"
	paymentIDPrefix  = "pay"
)

// AccountDirectory resolves the account placing an order.
type AccountDirectory interface {
	GetAccount(ctx context.Context, id string) (*models.Account, error)
}

type Service struct {
	repo        store.Repository
	accounts    AccountDirectory
	inventory   *Inventory
	gateway     payment.Gateway
	locker      lock.Locker
	publisher   events.Publisher
	compensator Compensator
	logger      *zap.Logger
	now         func() time.Time
}

type Option func(*Service)

func WithGateway(g payment.Gateway) Option {
	return func(s *Service) { s.gateway = g }
}

func WithLocker(l lock.Locker) Option {
	return func(s *Service) { s.locker = l }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithCompensator(c Compensator) Option {
	return func(s *Service) { s.compensator = c }
}

// New builds a Service. A nil accounts falls back to the repository's own
// account lookup. Defaults: simulated gateway, in-process locks, no events, no
// compensation.
func New(repo store.Repository, accounts AccountDirectory, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		accounts:    accounts,
		gateway:     payment.NewSimulated(),
		publisher:   events.NopPublisher{},
		compensator: noCompensation{},
		logger:      zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.accounts == nil {
		s.accounts = repo
	}
	if s.locker == nil {
		s.locker = lock.NewKeyedMutex()
	}
	s.inventory = NewInventory(repo, s.locker)
	return s
}

// Inventory exposes the locked inventory update path.
func (s *Service) Inventory() *Inventory {
	return s.inventory
}

func (s *Service) publish(ctx context.Context, t events.Type, order *models.Order) {
	ev := events.FromOrder(t, order, s.now())
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn("publish event failed",
			zap.String("event", string(t)),
			zap.String("order_id", order.OrderID),
			zap.Error(err))
	}
}

func (s *Service) compensate(ctx context.Context, order *models.Order, effects []Effect) {
	if len(effects) == 0 {
		return
	}
	if err := s.compensator.Compensate(ctx, order, effects); err != nil {
		s.logger.Error("compensation failed",
			zap.String("order_id", order.OrderID),
			zap.Int("effects", len(effects)),
			zap.Error(err))
	}
}
