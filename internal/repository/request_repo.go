package repository

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/propai/maintenance-workflow/internal/models"
)

// RequestRepository handles maintenance request database operations
type RequestRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db *sql.DB, logger *zap.Logger) *RequestRepository {
	return &RequestRepository{
		db:     db,
		logger: logger,
	}
}

func (r *RequestRepository) exec(tx *sql.Tx, query string, args ...interface{}) (sql.Result, error) {
	if tx != nil {
		return tx.Exec(query, args...)
	}
	return r.db.Exec(query, args...)
}

// Create inserts a new maintenance request
func (r *RequestRepository) Create(tx *sql.Tx, req *models.MaintenanceRequest) error {
	query := `
		INSERT INTO maintenance_requests (
			id, lease_id, description, category, urgency, status
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.exec(tx, query,
		req.ID,
		req.LeaseID,
		req.Description,
		req.Category,
		req.Urgency,
		req.Status,
	)
	if err != nil {
		r.logger.Error("Failed to create maintenance request", zap.Error(err))
		return fmt.Errorf("failed to create request: %w", err)
	}

	return nil
}

// GetByID retrieves a maintenance request by ID; returns nil when absent
func (r *RequestRepository) GetByID(id string) (*models.MaintenanceRequest, error) {
	query := `
		SELECT id, lease_id, description, category, urgency, status,
			contractor_id, scheduled_at, completed_at, cost, created_at, updated_at
		FROM maintenance_requests
		WHERE id = ?
	`

	var req models.MaintenanceRequest
	var contractorID sql.NullString
	var scheduledAt, completedAt sql.NullTime
	var cost sql.NullFloat64

	err := r.db.QueryRow(query, id).Scan(
		&req.ID,
		&req.LeaseID,
		&req.Description,
		&req.Category,
		&req.Urgency,
		&req.Status,
		&contractorID,
		&scheduledAt,
		&completedAt,
		&cost,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get maintenance request", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	if contractorID.Valid {
		req.ContractorID = contractorID.String
	}
	if scheduledAt.Valid {
		req.ScheduledAt = &scheduledAt.Time
	}
	if completedAt.Valid {
		req.CompletedAt = &completedAt.Time
	}
	if cost.Valid {
		req.Cost = &cost.Float64
	}

	return &req, nil
}

// UpdateStatus changes a request's lifecycle status
func (r *RequestRepository) UpdateStatus(tx *sql.Tx, id, status string) error {
	query := `
		UPDATE maintenance_requests
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	if _, err := r.exec(tx, query, status, id); err != nil {
		r.logger.Error("Failed to update request status",
			zap.String("id", id),
			zap.String("status", status),
			zap.Error(err))
		return fmt.Errorf("failed to update status: %w", err)
	}
	return nil
}

// SetSchedule records the assigned contractor and visit time
func (r *RequestRepository) SetSchedule(tx *sql.Tx, id, contractorID string, scheduledAt time.Time) error {
	query := `
		UPDATE maintenance_requests
		SET contractor_id = ?, scheduled_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	if _, err := r.exec(tx, query, contractorID, scheduledAt, id); err != nil {
		r.logger.Error("Failed to set request schedule", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to set schedule: %w", err)
	}
	return nil
}

// Complete marks a request finished, recording the actual cost when known
func (r *RequestRepository) Complete(tx *sql.Tx, id string, cost *float64) error {
	query := `
		UPDATE maintenance_requests
		SET status = ?, completed_at = CURRENT_TIMESTAMP, cost = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	var costVal interface{}
	if cost != nil {
		costVal = *cost
	}

	if _, err := r.exec(tx, query, models.RequestStatusCompleted, costVal, id); err != nil {
		r.logger.Error("Failed to complete request", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to complete request: %w", err)
	}
	return nil
}
