package port

import (
	"context"

	"github.com/rl1809/order-lifecycle/internal/core/domain"
)

type OrderArchive interface {
	// SaveSnapshot upserts the latest state of an order
	SaveSnapshot(ctx context.Context, order domain.Order) error
}
