package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/propai/maintenance-workflow/internal/models"
)

// ErrVersionConflict is returned when an optimistic state update loses the
// race against a concurrent writer. The caller re-reads and retries the
// whole event.
var ErrVersionConflict = errors.New("workflow version conflict")

// WorkflowRepository handles maintenance workflow database operations
type WorkflowRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewWorkflowRepository creates a new workflow repository
func NewWorkflowRepository(db *sql.DB, logger *zap.Logger) *WorkflowRepository {
	return &WorkflowRepository{
		db:     db,
		logger: logger,
	}
}

func (r *WorkflowRepository) exec(tx *sql.Tx, query string, args ...interface{}) (sql.Result, error) {
	if tx != nil {
		return tx.Exec(query, args...)
	}
	return r.db.Exec(query, args...)
}

// Create inserts a new workflow in its initial state
func (r *WorkflowRepository) Create(tx *sql.Tx, wf *models.MaintenanceWorkflow) error {
	analysisJSON, err := json.Marshal(wf.AIAnalysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	query := `
		INSERT INTO maintenance_workflows (
			id, maintenance_request_id, current_state, version, ai_analysis
		) VALUES (?, ?, ?, 1, ?)
	`

	if _, err := r.exec(tx, query, wf.ID, wf.MaintenanceRequestID, wf.CurrentState, string(analysisJSON)); err != nil {
		r.logger.Error("Failed to create workflow", zap.Error(err))
		return fmt.Errorf("failed to create workflow: %w", err)
	}

	wf.Version = 1
	return nil
}

func (r *WorkflowRepository) scanWorkflow(scan func(dest ...interface{}) error) (*models.MaintenanceWorkflow, error) {
	var wf models.MaintenanceWorkflow
	var analysisJSON string
	var ownerResponse, ownerMessage, vendorMessage, vendorNotes sql.NullString
	var vendorETA sql.NullTime

	err := scan(
		&wf.ID,
		&wf.MaintenanceRequestID,
		&wf.CurrentState,
		&wf.Version,
		&analysisJSON,
		&ownerResponse,
		&ownerMessage,
		&vendorMessage,
		&vendorETA,
		&vendorNotes,
		&wf.CreatedAt,
		&wf.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(analysisJSON), &wf.AIAnalysis); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
	}
	if ownerResponse.Valid {
		wf.OwnerResponse = ownerResponse.String
	}
	if ownerMessage.Valid {
		wf.OwnerResponseMessage = ownerMessage.String
	}
	if vendorMessage.Valid {
		wf.VendorMessage = vendorMessage.String
	}
	if vendorETA.Valid {
		wf.VendorETA = &vendorETA.Time
	}
	if vendorNotes.Valid {
		wf.VendorNotes = vendorNotes.String
	}

	return &wf, nil
}

const workflowColumns = `id, maintenance_request_id, current_state, version, ai_analysis,
	owner_response, owner_response_message, vendor_message, vendor_eta, vendor_notes,
	created_at, updated_at`

// GetByID retrieves a workflow by ID; returns nil when absent
func (r *WorkflowRepository) GetByID(id string) (*models.MaintenanceWorkflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM maintenance_workflows WHERE id = ?`

	wf, err := r.scanWorkflow(r.db.QueryRow(query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get workflow", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}
	return wf, nil
}

// UpdateState advances a workflow's state with an optimistic version check.
// A zero-row update means another writer got there first.
func (r *WorkflowRepository) UpdateState(tx *sql.Tx, id, newState string, expectedVersion int64) error {
	query := `
		UPDATE maintenance_workflows
		SET current_state = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND version = ?
	`

	result, err := r.exec(tx, query, newState, id, expectedVersion)
	if err != nil {
		r.logger.Error("Failed to update workflow state",
			zap.String("id", id),
			zap.String("state", newState),
			zap.Error(err))
		return fmt.Errorf("failed to update state: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: workflow %s at version %d", ErrVersionConflict, id, expectedVersion)
	}

	return nil
}

// SetOwnerResponse records the owner's decision and optional message
func (r *WorkflowRepository) SetOwnerResponse(tx *sql.Tx, id, response, message string) error {
	query := `
		UPDATE maintenance_workflows
		SET owner_response = ?, owner_response_message = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	if _, err := r.exec(tx, query, response, message, id); err != nil {
		return fmt.Errorf("failed to set owner response: %w", err)
	}
	return nil
}

// SetVendorMessage stores the drafted contractor outreach text
func (r *WorkflowRepository) SetVendorMessage(tx *sql.Tx, id, message string) error {
	query := `
		UPDATE maintenance_workflows
		SET vendor_message = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	if _, err := r.exec(tx, query, message, id); err != nil {
		return fmt.Errorf("failed to set vendor message: %w", err)
	}
	return nil
}

// SetVendorDetails records the vendor's confirmed ETA and notes
func (r *WorkflowRepository) SetVendorDetails(tx *sql.Tx, id string, eta time.Time, notes string) error {
	query := `
		UPDATE maintenance_workflows
		SET vendor_eta = ?, vendor_notes = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	if _, err := r.exec(tx, query, eta, notes, id); err != nil {
		return fmt.Errorf("failed to set vendor details: %w", err)
	}
	return nil
}

// List returns workflows newest first with an optional state filter
func (r *WorkflowRepository) List(state string, limit, offset int) ([]*models.MaintenanceWorkflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM maintenance_workflows`
	args := []interface{}{}

	if state != "" {
		query += ` WHERE current_state = ?`
		args = append(args, state)
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("Failed to list workflows", zap.Error(err))
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	defer rows.Close()

	var workflows []*models.MaintenanceWorkflow
	for rows.Next() {
		wf, err := r.scanWorkflow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}
		workflows = append(workflows, wf)
	}

	return workflows, rows.Err()
}
