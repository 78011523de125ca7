package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rl1809/warehouse/internal/core/domain"
)

const createIncidentsTable = `
CREATE TABLE IF NOT EXISTS sale_incidents (
	id          CHAR(36)     NOT NULL PRIMARY KEY,
	sale_id     VARCHAR(64)  NOT NULL,
	product_id  VARCHAR(64)  NOT NULL,
	deductions  JSON         NOT NULL,
	cause       TEXT         NOT NULL,
	created_at  DATETIME(6)  NOT NULL,
	INDEX idx_sale_incidents_created_at (created_at)
)`

// MySQLIncidentRepository stores sales whose stock deduction failed.
type MySQLIncidentRepository struct {
	db *sql.DB
}

func NewMySQLIncidentRepository(db *sql.DB) *MySQLIncidentRepository {
	return &MySQLIncidentRepository{db: db}
}

// Migrate creates the incidents table if it does not exist.
func (m *MySQLIncidentRepository) Migrate(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, createIncidentsTable); err != nil {
		return fmt.Errorf("create sale_incidents: %w", err)
	}
	return nil
}

func (m *MySQLIncidentRepository) RecordIncident(ctx context.Context, incident domain.Incident) error {
	deductions := incident.Deductions
	if deductions == nil {
		deductions = []domain.StockDeduction{}
	}
	payload, err := json.Marshal(deductions)
	if err != nil {
		return fmt.Errorf("encode deductions: %w", err)
	}

	_, err = m.db.ExecContext(ctx, `
		INSERT INTO sale_incidents (id, sale_id, product_id, deductions, cause, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		incident.ID, incident.SaleID, incident.ProductID, payload, incident.Cause, incident.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert incident: %w", err)
	}

	return nil
}

func (m *MySQLIncidentRepository) ListIncidents(ctx context.Context, limit int) ([]domain.Incident, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, sale_id, product_id, deductions, cause, created_at
		FROM sale_incidents ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query incidents: %w", err)
	}
	defer rows.Close()

	var incidents []domain.Incident
	for rows.Next() {
		var inc domain.Incident
		var payload []byte
		if err := rows.Scan(&inc.ID, &inc.SaleID, &inc.ProductID, &payload, &inc.Cause, &inc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		if err := json.Unmarshal(payload, &inc.Deductions); err != nil {
			return nil, fmt.Errorf("decode deductions of %s: %w", inc.ID, err)
		}
		incidents = append(incidents, inc)
	}

	return incidents, rows.Err()
}
