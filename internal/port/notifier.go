package port

import (
	"context"

	"github.com/rl1809/warehouse/internal/core/domain"
)

// Notifier surfaces user-visible alerts to the presentation layer.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}

type EventPublisher interface {
	Publish(ctx context.Context, event domain.SaleEvent) error
}
