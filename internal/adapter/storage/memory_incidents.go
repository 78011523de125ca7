package storage

import (
	"context"
	"slices"
	"sync"

	"github.com/rl1809/warehouse/internal/core/domain"
)

// MemoryIncidentRepository is used when no database is configured.
type MemoryIncidentRepository struct {
	mu        sync.Mutex
	incidents []domain.Incident
}

func NewMemoryIncidentRepository() *MemoryIncidentRepository {
	return &MemoryIncidentRepository{}
}

func (m *MemoryIncidentRepository) RecordIncident(ctx context.Context, incident domain.Incident) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.incidents = append(m.incidents, incident)
	return nil
}

func (m *MemoryIncidentRepository) ListIncidents(ctx context.Context, limit int) ([]domain.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := slices.Clone(m.incidents)
	slices.Reverse(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
