package report

import (
	"bytes"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/propai/maintenance-workflow/internal/models"
	"github.com/propai/maintenance-workflow/internal/repository"
	"github.com/propai/maintenance-workflow/pkg/database"
)

func setupRepos(t *testing.T) (*repository.RequestRepository, *repository.WorkflowRepository) {
	t.Helper()
	logger := zap.NewNop()

	db, err := database.New(database.Config{
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	schema, err := os.ReadFile("../../migrations/001_initial_schema.sql")
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	return repository.NewRequestRepository(db.DB, logger), repository.NewWorkflowRepository(db.DB, logger)
}

func TestExportWorkbook(t *testing.T) {
	requestRepo, workflowRepo := setupRepos(t)
	logger := zap.NewNop()

	for i := 0; i < 2; i++ {
		req := &models.MaintenanceRequest{
			ID:          uuid.NewString(),
			LeaseID:     "lease-1",
			Description: "leaking tap",
			Category:    models.CategoryPlumbing,
			Urgency:     models.UrgencyMedium,
			Status:      models.RequestStatusOpen,
		}
		require.NoError(t, requestRepo.Create(nil, req))

		wf := &models.MaintenanceWorkflow{
			ID:                   uuid.NewString(),
			MaintenanceRequestID: req.ID,
			CurrentState:         "OWNER_NOTIFIED",
			AIAnalysis: models.AIAnalysis{
				Category:           models.CategoryPlumbing,
				Urgency:            models.UrgencyMedium,
				EstimatedCostRange: models.CostRangeLow,
				VendorRequired:     true,
				Reasoning:          "dripping tap",
				ConfidenceScore:    0.82,
			},
		}
		require.NoError(t, workflowRepo.Create(nil, wf))
	}

	exporter := NewExporter(workflowRepo, logger)

	var buf bytes.Buffer
	require.NoError(t, exporter.Export(&buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Workflow ID", rows[0][0])
	assert.Equal(t, "State", rows[0][2])
	assert.Equal(t, "OWNER_NOTIFIED", rows[1][2])
	assert.Equal(t, "plumbing", rows[1][3])
}

func TestExportEmpty(t *testing.T) {
	_, workflowRepo := setupRepos(t)
	exporter := NewExporter(workflowRepo, zap.NewNop())

	var buf bytes.Buffer
	require.NoError(t, exporter.Export(&buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
