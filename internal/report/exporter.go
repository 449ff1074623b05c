// Package report produces spreadsheet exports of workflow activity for the
// landlord's periodic review.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/propai/maintenance-workflow/internal/models"
	"github.com/propai/maintenance-workflow/internal/repository"
)

const (
	sheetName      = "Workflows"
	exportPageSize = 200
)

var headers = []string{
	"Workflow ID",
	"Request ID",
	"State",
	"Category",
	"Urgency",
	"Cost Range",
	"Confidence",
	"Degraded",
	"Owner Response",
	"Vendor ETA",
	"Created",
	"Updated",
}

// Exporter writes workflow listings as an Excel workbook
type Exporter struct {
	workflowRepo *repository.WorkflowRepository
	logger       *zap.Logger
}

// NewExporter creates a new report exporter
func NewExporter(workflowRepo *repository.WorkflowRepository, logger *zap.Logger) *Exporter {
	return &Exporter{
		workflowRepo: workflowRepo,
		logger:       logger,
	}
}

// Export writes an xlsx workbook of all workflows, newest first, to w
func (e *Exporter) Export(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerRow := make([]interface{}, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &headerRow); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	row := 2
	offset := 0
	for {
		page, err := e.workflowRepo.List("", exportPageSize, offset)
		if err != nil {
			return fmt.Errorf("failed to load workflows: %w", err)
		}

		for _, wf := range page {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheetName, cell, workflowRow(wf)); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
			row++
		}

		if len(page) < exportPageSize {
			break
		}
		offset += exportPageSize
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("Workflow report exported", zap.Int("rows", row-2))
	return nil
}

func workflowRow(wf *models.MaintenanceWorkflow) *[]interface{} {
	eta := ""
	if wf.VendorETA != nil {
		eta = wf.VendorETA.Format(time.RFC3339)
	}
	cells := []interface{}{
		wf.ID,
		wf.MaintenanceRequestID,
		wf.CurrentState,
		wf.AIAnalysis.Category,
		wf.AIAnalysis.Urgency,
		wf.AIAnalysis.EstimatedCostRange,
		wf.AIAnalysis.ConfidenceScore,
		wf.AIAnalysis.Degraded,
		wf.OwnerResponse,
		eta,
		wf.CreatedAt.Format(time.RFC3339),
		wf.UpdatedAt.Format(time.RFC3339),
	}
	return &cells
}
