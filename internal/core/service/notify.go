package service

import (
	"context"
	"time"

	"github.com/rl1809/warehouse/internal/core/domain"
	"github.com/rl1809/warehouse/internal/port"
)

func alert(ctx context.Context, n port.Notifier, kind domain.NotificationKind, message string) {
	if n == nil {
		return
	}
	n.Notify(ctx, domain.Notification{
		Kind:      kind,
		Message:   message,
		CreatedAt: time.Now(),
	})
}
