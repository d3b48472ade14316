package port

import "context"

type IdempotencyStore interface {
	// Reserve binds key to orderID if the key is unused. When the key is
	// already bound it returns the existing order id and false.
	Reserve(ctx context.Context, key, orderID string) (string, bool, error)

	// Release drops a reservation whose order could not be stored
	Release(ctx context.Context, key string) error
}
