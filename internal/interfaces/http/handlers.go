package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "github.com/propai/maintenance-workflow/internal/domain/workflow"
	"github.com/propai/maintenance-workflow/internal/models"
	"github.com/propai/maintenance-workflow/internal/policy"
	"github.com/propai/maintenance-workflow/internal/report"
	"github.com/propai/maintenance-workflow/internal/repository"
	"github.com/propai/maintenance-workflow/internal/workflow"
	"github.com/propai/maintenance-workflow/pkg/utils"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	engine   *workflow.Engine
	exporter *report.Exporter
	logger   *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(engine *workflow.Engine, exporter *report.Exporter, logger *zap.Logger) *Handlers {
	return &Handlers{
		engine:   engine,
		exporter: exporter,
		logger:   logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// SubmitRequest is the payload for POST /api/maintenance/submit
type SubmitRequest struct {
	LeaseID     string                     `json:"lease_id" binding:"required"`
	Description string                     `json:"description" binding:"required"`
	UnitAddress string                     `json:"unit_address"`
	TenantName  string                     `json:"tenant_name"`
	Policy      *models.AutoApprovalPolicy `json:"auto_approval_policy"`
}

// OwnerResponseRequest is the payload for the owner-response endpoint
type OwnerResponseRequest struct {
	Response string `json:"response" binding:"required,oneof=approved denied question"`
	Message  string `json:"message"`
}

// VendorResponseRequest is the payload for the vendor-response endpoint
type VendorResponseRequest struct {
	VendorID string    `json:"vendor_id" binding:"required"`
	ETA      time.Time `json:"eta" binding:"required"`
	Notes    string    `json:"notes"`
}

// CompleteRequest is the payload for the complete endpoint
type CompleteRequest struct {
	CompletionNotes string   `json:"completion_notes"`
	ActualCost      *float64 `json:"actual_cost"`
}

// ListWorkflowsRequest represents query parameters for listing workflows
type ListWorkflowsRequest struct {
	State  string `form:"state"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "maintenance-workflow",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Submit handles POST /api/maintenance/submit
func (h *Handlers) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}
	if req.Policy != nil {
		if err := policy.Validate(*req.Policy); err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
			return
		}
	}

	result, err := h.engine.Submit(c.Request.Context(), workflow.SubmitInput{
		LeaseID:     req.LeaseID,
		Description: utils.SanitizeString(req.Description),
		UnitAddress: req.UnitAddress,
		TenantName:  req.TenantName,
		Policy:      req.Policy,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: result})
}

// OwnerResponse handles POST /api/maintenance/:workflowID/owner-response
func (h *Handlers) OwnerResponse(c *gin.Context) {
	var req OwnerResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	result, err := h.engine.HandleOwnerResponse(c.Request.Context(),
		c.Param("workflowID"), req.Response, req.Message)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// VendorResponse handles POST /api/maintenance/:workflowID/vendor-response
func (h *Handlers) VendorResponse(c *gin.Context) {
	var req VendorResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	state, err := h.engine.HandleVendorResponse(c.Request.Context(),
		c.Param("workflowID"), req.VendorID, req.ETA, req.Notes)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"current_state": state}})
}

// Complete handles POST /api/maintenance/:workflowID/complete
func (h *Handlers) Complete(c *gin.Context) {
	var req CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}
	if req.ActualCost != nil {
		if err := utils.ValidateCost(*req.ActualCost); err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
			return
		}
	}

	state, err := h.engine.CompleteRepair(c.Request.Context(),
		c.Param("workflowID"), req.CompletionNotes, req.ActualCost)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"current_state": state}})
}

// Status handles GET /api/maintenance/:workflowID/status
func (h *Handlers) Status(c *gin.Context) {
	status, err := h.engine.GetStatus(c.Param("workflowID"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: status})
}

// ListWorkflows handles GET /api/maintenance/workflows
func (h *Handlers) ListWorkflows(c *gin.Context) {
	var req ListWorkflowsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid query parameters"})
		return
	}

	workflows, err := h.engine.List(req.State, req.Limit, req.Offset)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{
		"workflows": workflows,
		"count":     len(workflows),
	}})
}

// ExportReport handles GET /api/maintenance/reports/workflows.xlsx
func (h *Handlers) ExportReport(c *gin.Context) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="workflows.xlsx"`)

	if err := h.exporter.Export(c.Writer); err != nil {
		h.logger.Error("Report export failed", zap.Error(err))
		c.Status(http.StatusInternalServerError)
	}
}

// writeError maps engine errors to HTTP status codes
func (h *Handlers) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, workflow.ErrWorkflowNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
	case errors.Is(err, workflow.ErrEventNotAllowed),
		errors.Is(err, repository.ErrVersionConflict),
		errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidState):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
	default:
		h.logger.Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}
