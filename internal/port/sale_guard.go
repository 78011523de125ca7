package port

import "context"

type SaleGuard interface {
	// TryAcquire sets the in-flight flag, returns false if it was already set
	TryAcquire(ctx context.Context) (bool, error)

	// Release clears the in-flight flag
	Release(ctx context.Context) error

	// Held reports whether a sale creation is in flight
	Held(ctx context.Context) (bool, error)
}
