package port

import (
	"context"

	"github.com/rl1809/warehouse/internal/core/domain"
)

type IncidentRepository interface {
	// RecordIncident persists a sale whose stock deduction failed
	RecordIncident(ctx context.Context, incident domain.Incident) error

	// ListIncidents returns recorded incidents, newest first
	ListIncidents(ctx context.Context, limit int) ([]domain.Incident, error)
}
