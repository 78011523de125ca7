// Package notify delivers user-visible alerts raised by the engine.
package notify

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/rl1809/warehouse/internal/core/domain"
)

const defaultCapacity = 100

// Recorder keeps the most recent notifications for the presentation layer to
// poll, and logs each one.
type Recorder struct {
	mu       sync.Mutex
	items    []domain.Notification
	capacity int
	logger   *zap.Logger
}

func NewRecorder(capacity int, logger *zap.Logger) *Recorder {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{capacity: capacity, logger: logger}
}

func (r *Recorder) Notify(ctx context.Context, n domain.Notification) {
	r.logger.Warn("user notification",
		zap.String("kind", string(n.Kind)),
		zap.String("message", n.Message),
	)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
	if over := len(r.items) - r.capacity; over > 0 {
		r.items = slices.Delete(r.items, 0, over)
	}
}

// List returns recorded notifications, oldest first.
func (r *Recorder) List() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.items)
}

func (r *Recorder) Kinds() []domain.NotificationKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]domain.NotificationKind, 0, len(r.items))
	for _, n := range r.items {
		kinds = append(kinds, n.Kind)
	}
	return kinds
}
