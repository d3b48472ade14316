package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rl1809/order-lifecycle/internal/core/domain"
	"github.com/rl1809/order-lifecycle/internal/port"
)

var ErrIdempotencyKeyInUse = errors.New("idempotency key in use")

type OrderService struct {
	repo        port.OrderRepository
	idempotency port.IdempotencyStore
	logger      *zap.Logger

	mu            sync.RWMutex
	closed        bool
	snapshotQueue chan domain.Order

	now   func() time.Time
	newID func() string
}

// NewOrderService wires the order use cases. idempotency may be nil, in which
// case idempotency keys are ignored. A queueSize of zero disables snapshot
// publishing.
func NewOrderService(repo port.OrderRepository, idempotency port.IdempotencyStore, queueSize int, logger *zap.Logger) *OrderService {
	s := &OrderService{
		repo:        repo,
		idempotency: idempotency,
		logger:      logger,
		now:         time.Now,
		newID:       func() string { return uuid.NewString() },
	}
	if queueSize > 0 {
		s.snapshotQueue = make(chan domain.Order, queueSize)
	}
	return s
}

func (s *OrderService) Create(ctx context.Context, payload Payload) (domain.Order, error) {
	order, _, err := s.CreateIdempotent(ctx, payload, "")
	return order, err
}

// CreateIdempotent validates and stores a new order. When key is non-empty
// and an idempotency store is configured, a repeated key returns the order
// created by the first request and reports replayed as true.
func (s *OrderService) CreateIdempotent(ctx context.Context, payload Payload, key string) (order domain.Order, replayed bool, err error) {
	inputs, err := ValidateCreate(payload)
	if err != nil {
		return domain.Order{}, false, err
	}

	items := make([]domain.OrderItem, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, domain.NewOrderItem(in.ProductID, in.Quantity, in.UnitPrice))
	}
	order = domain.NewOrder(s.newID(), items, s.now())

	reserved := false
	if key != "" && s.idempotency != nil {
		prev, found, err := s.reserveKey(ctx, key, order.ID)
		if err != nil {
			return domain.Order{}, false, err
		}
		if found {
			s.logger.Info("replayed order creation",
				zap.String("order_id", prev.ID),
				zap.String("idempotency_key", key),
			)
			return prev, true, nil
		}
		reserved = true
	}

	if err := s.repo.Insert(ctx, order); err != nil {
		if reserved {
			if relErr := s.idempotency.Release(ctx, key); relErr != nil {
				s.logger.Error("failed to release idempotency key", zap.String("idempotency_key", key), zap.Error(relErr))
			}
		}
		return domain.Order{}, false, fmt.Errorf("insert order: %w", err)
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.Int("item_count", len(order.Items)),
		zap.String("total_amount", domain.FormatMoney(order.TotalAmount)),
	)
	s.publish(order)

	return order, false, nil
}

// reserveKey binds key to orderID. found is true when the key already points
// at a stored order, which is returned.
func (s *OrderService) reserveKey(ctx context.Context, key, orderID string) (domain.Order, bool, error) {
	existingID, ok, err := s.idempotency.Reserve(ctx, key, orderID)
	if err != nil {
		return domain.Order{}, false, fmt.Errorf("reserve idempotency key: %w", err)
	}
	if ok {
		return domain.Order{}, false, nil
	}

	prev, err := s.repo.Get(ctx, existingID)
	if err == nil {
		return prev, true, nil
	}
	if !errors.Is(err, domain.ErrOrderNotFound) {
		return domain.Order{}, false, fmt.Errorf("load replayed order: %w", err)
	}

	// The key outlived the order it names (the store is not durable).
	s.logger.Warn("idempotency key points at unknown order, rebinding",
		zap.String("idempotency_key", key),
		zap.String("order_id", existingID),
	)
	if err := s.idempotency.Release(ctx, key); err != nil {
		return domain.Order{}, false, fmt.Errorf("release stale idempotency key: %w", err)
	}
	_, ok, err = s.idempotency.Reserve(ctx, key, orderID)
	if err != nil {
		return domain.Order{}, false, fmt.Errorf("reserve idempotency key: %w", err)
	}
	if !ok {
		return domain.Order{}, false, ErrIdempotencyKeyInUse
	}
	return domain.Order{}, false, nil
}

func (s *OrderService) Get(ctx context.Context, id string) (domain.Order, error) {
	if !validID(id) {
		return domain.Order{}, &NotFoundError{OrderID: id}
	}

	order, err := s.repo.Get(ctx, id)
	if errors.Is(err, domain.ErrOrderNotFound) {
		return domain.Order{}, &NotFoundError{OrderID: id}
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

func (s *OrderService) Confirm(ctx context.Context, id string) (domain.Order, error) {
	return s.transition(ctx, id, domain.ActionConfirm)
}

func (s *OrderService) Cancel(ctx context.Context, id string) (domain.Order, error) {
	return s.transition(ctx, id, domain.ActionCancel)
}

func (s *OrderService) transition(ctx context.Context, id string, action domain.Action) (domain.Order, error) {
	if !validID(id) {
		return domain.Order{}, &NotFoundError{OrderID: id}
	}

	order, err := s.repo.Update(ctx, id, func(o *domain.Order) error {
		return o.Apply(action, s.now())
	})
	if errors.Is(err, domain.ErrOrderNotFound) {
		return domain.Order{}, &NotFoundError{OrderID: id}
	}
	if errors.Is(err, domain.ErrInvalidTransition) {
		s.logger.Info("rejected order transition",
			zap.String("order_id", id),
			zap.String("action", string(action)),
			zap.Error(err),
		)
		return domain.Order{}, err
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("%s order: %w", action, err)
	}

	s.logger.Info("order transitioned",
		zap.String("order_id", order.ID),
		zap.String("action", string(action)),
		zap.String("status", string(order.Status)),
	)
	s.publish(order)

	return order, nil
}

// publish hands a snapshot to the archive queue without blocking the caller.
func (s *OrderService) publish(order domain.Order) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshotQueue == nil || s.closed {
		return
	}
	select {
	case s.snapshotQueue <- order.Clone():
	default:
		s.logger.Warn("snapshot queue full, dropping snapshot", zap.String("order_id", order.ID))
	}
}

// GetSnapshotQueue returns the archive feed, nil when publishing is disabled.
func (s *OrderService) GetSnapshotQueue() <-chan domain.Order {
	return s.snapshotQueue
}

func (s *OrderService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	if s.snapshotQueue != nil {
		close(s.snapshotQueue)
	}
}

// validID reports whether id parses as a UUID. Ids that do not parse can
// never have been issued and are reported as not found.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
