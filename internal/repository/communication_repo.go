package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/propai/maintenance-workflow/internal/models"
)

// CommunicationRepository handles the append-only workflow audit trail.
// Entries are only ever inserted; there are no update or delete paths.
type CommunicationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCommunicationRepository creates a new communication repository
func NewCommunicationRepository(db *sql.DB, logger *zap.Logger) *CommunicationRepository {
	return &CommunicationRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends an audit entry
func (r *CommunicationRepository) Create(tx *sql.Tx, comm *models.WorkflowCommunication) error {
	metadataJSON, err := json.Marshal(comm.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `
		INSERT INTO workflow_communications (
			id, workflow_id, sender_type, sender_id, sender_name, message, metadata
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	var senderID interface{}
	if comm.SenderID != "" {
		senderID = comm.SenderID
	}

	var execErr error
	if tx != nil {
		_, execErr = tx.Exec(query,
			comm.ID, comm.WorkflowID, comm.SenderType, senderID,
			comm.SenderName, comm.Message, string(metadataJSON))
	} else {
		_, execErr = r.db.Exec(query,
			comm.ID, comm.WorkflowID, comm.SenderType, senderID,
			comm.SenderName, comm.Message, string(metadataJSON))
	}

	if execErr != nil {
		r.logger.Error("Failed to create communication", zap.Error(execErr))
		return fmt.Errorf("failed to create communication: %w", execErr)
	}

	return nil
}

// ListByWorkflow returns a workflow's audit trail in insertion order
func (r *CommunicationRepository) ListByWorkflow(workflowID string) ([]*models.WorkflowCommunication, error) {
	query := `
		SELECT id, workflow_id, sender_type, sender_id, sender_name, message, metadata, created_at
		FROM workflow_communications
		WHERE workflow_id = ?
		ORDER BY created_at ASC, rowid ASC
	`

	rows, err := r.db.Query(query, workflowID)
	if err != nil {
		r.logger.Error("Failed to list communications",
			zap.String("workflow_id", workflowID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list communications: %w", err)
	}
	defer rows.Close()

	var comms []*models.WorkflowCommunication
	for rows.Next() {
		comm, err := scanCommunication(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan communication: %w", err)
		}
		comms = append(comms, comm)
	}

	return comms, rows.Err()
}

// LatestTransition returns the most recent entry carrying a state transition,
// or nil when the workflow has none.
func (r *CommunicationRepository) LatestTransition(workflowID string) (*models.WorkflowCommunication, error) {
	query := `
		SELECT id, workflow_id, sender_type, sender_id, sender_name, message, metadata, created_at
		FROM workflow_communications
		WHERE workflow_id = ? AND json_extract(metadata, '$.to_state') IS NOT NULL
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`

	comm, err := scanCommunication(r.db.QueryRow(query, workflowID).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest transition: %w", err)
	}
	return comm, nil
}

func scanCommunication(scan func(dest ...interface{}) error) (*models.WorkflowCommunication, error) {
	var comm models.WorkflowCommunication
	var senderID sql.NullString
	var metadataJSON string

	err := scan(
		&comm.ID,
		&comm.WorkflowID,
		&comm.SenderType,
		&senderID,
		&comm.SenderName,
		&comm.Message,
		&metadataJSON,
		&comm.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if senderID.Valid {
		comm.SenderID = senderID.String
	}
	if err := json.Unmarshal([]byte(metadataJSON), &comm.Metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	return &comm, nil
}
