package port

import (
	"context"

	"github.com/rl1809/order-lifecycle/internal/core/domain"
)

type OrderRepository interface {
	// Insert stores a new order, fails with domain.ErrOrderExists on id reuse
	Insert(ctx context.Context, order domain.Order) error

	// Get returns a copy of the order or domain.ErrOrderNotFound
	Get(ctx context.Context, id string) (domain.Order, error)

	// Update runs fn against the stored order under the repository lock and
	// keeps its changes only when fn returns nil
	Update(ctx context.Context, id string, fn func(*domain.Order) error) (domain.Order, error)
}
