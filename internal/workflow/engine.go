package workflow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/propai/maintenance-workflow/internal/ai"
	domain "github.com/propai/maintenance-workflow/internal/domain/workflow"
	"github.com/propai/maintenance-workflow/internal/models"
	"github.com/propai/maintenance-workflow/internal/policy"
	"github.com/propai/maintenance-workflow/internal/repository"
	"github.com/propai/maintenance-workflow/pkg/database"
)

var (
	// ErrWorkflowNotFound is returned when no workflow exists for the given ID
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrEventNotAllowed is returned when an inbound event arrives while the
	// workflow is in a state that cannot accept it
	ErrEventNotAllowed = errors.New("event not allowed in current state")
)

// Notifier delivers best-effort owner and tenant notifications. A delivery
// failure never fails the transition that triggered it.
type Notifier interface {
	NotifyOwner(req *models.MaintenanceRequest, analysis models.AIAnalysis) error
	NotifyTenant(req *models.MaintenanceRequest, eta time.Time) error
}

// Engine orchestrates the maintenance workflow. It is the only writer of
// workflow state: every inbound event runs in a single transaction covering
// the state change, its audit entries and any request status update.
type Engine struct {
	db           *database.DB
	requestRepo  *repository.RequestRepository
	workflowRepo *repository.WorkflowRepository
	commRepo     *repository.CommunicationRepository
	classifier   *ai.Classifier
	drafter      *ai.MessageDrafter
	notifier     Notifier
	logger       *zap.Logger
}

// NewEngine creates a new workflow engine. notifier may be nil.
func NewEngine(
	db *database.DB,
	requestRepo *repository.RequestRepository,
	workflowRepo *repository.WorkflowRepository,
	commRepo *repository.CommunicationRepository,
	classifier *ai.Classifier,
	drafter *ai.MessageDrafter,
	notifier Notifier,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		db:           db,
		requestRepo:  requestRepo,
		workflowRepo: workflowRepo,
		commRepo:     commRepo,
		classifier:   classifier,
		drafter:      drafter,
		notifier:     notifier,
		logger:       logger,
	}
}

// SubmitInput carries a tenant's maintenance submission
type SubmitInput struct {
	LeaseID     string
	Description string
	UnitAddress string
	TenantName  string
	Policy      *models.AutoApprovalPolicy
}

// SubmitResult is the outcome of a submission
type SubmitResult struct {
	RequestID    string            `json:"request_id"`
	WorkflowID   string            `json:"workflow_id"`
	CurrentState string            `json:"current_state"`
	AutoApproved bool              `json:"auto_approved"`
	AIAnalysis   models.AIAnalysis `json:"ai_analysis"`
}

// Submit creates a maintenance request and its workflow, classifies the
// issue, notifies the owner and applies the auto-approval policy. On the
// auto-approved path the workflow walks through every intermediate state
// with an audit entry at each stop, so the history has the same shape as
// the manual path.
func (e *Engine) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	if in.Policy != nil {
		if err := policy.Validate(*in.Policy); err != nil {
			return nil, fmt.Errorf("invalid auto-approval policy: %w", err)
		}
	}

	analysis := e.classifier.Classify(ctx, in.Description, in.UnitAddress, in.TenantName)

	var decision policy.Decision
	autoApproved := false
	if in.Policy != nil {
		decision = policy.Evaluate(*in.Policy, analysis)
		autoApproved = decision.Approved
	}

	// Draft the vendor outreach before opening the transaction. LLM calls
	// never run inside a database transaction.
	var vendorMessage string
	if autoApproved && analysis.VendorRequired {
		vendorMessage = e.drafter.DraftVendorMessage(ctx,
			"Contractor", in.Description, analysis.Urgency, in.UnitAddress, in.TenantName)
	}

	req := &models.MaintenanceRequest{
		ID:          uuid.NewString(),
		LeaseID:     in.LeaseID,
		Description: in.Description,
		Category:    analysis.Category,
		Urgency:     analysis.Urgency,
		Status:      models.RequestStatusOpen,
	}
	wf := &models.MaintenanceWorkflow{
		ID:                   uuid.NewString(),
		MaintenanceRequestID: req.ID,
		CurrentState:         domain.StateSubmitted.String(),
		AIAnalysis:           analysis,
	}

	err := e.db.WithTransaction(func(tx *sql.Tx) error {
		if err := e.requestRepo.Create(tx, req); err != nil {
			return err
		}
		if err := e.workflowRepo.Create(tx, wf); err != nil {
			return err
		}

		senderName := in.TenantName
		if senderName == "" {
			senderName = "Tenant"
		}
		if err := e.addCommunication(tx, wf.ID, models.SenderTypeTenant, "", senderName,
			in.Description, models.CommunicationMetadata{Action: "request_submitted"}); err != nil {
			return err
		}

		if err := e.transition(tx, wf, domain.StateOwnerNotified,
			"Maintenance request submitted. Owner has been notified for approval.",
			models.CommunicationMetadata{Action: "automatic_notification"}); err != nil {
			return err
		}

		if in.Policy != nil && in.Policy.Enabled && !autoApproved {
			if err := e.addCommunication(tx, wf.ID, models.SenderTypeSystem, "", "System",
				"Auto-approval not applied: "+decision.Reason,
				models.CommunicationMetadata{
					Action: "auto_approval_declined",
					Reason: decision.Reason,
				}); err != nil {
				return err
			}
		}

		if autoApproved {
			if err := e.transition(tx, wf, domain.StateOwnerResponded,
				"Request auto-approved by policy. "+decision.Reason,
				models.CommunicationMetadata{
					Action:        "auto_approved",
					Response:      models.OwnerResponseApproved,
					Reason:        decision.Reason,
					Confidence:    analysis.ConfidenceScore,
					MinConfidence: in.Policy.MinConfidence,
					CostRange:     analysis.EstimatedCostRange,
					MaxCostRange:  in.Policy.MaxCostRange,
				}); err != nil {
				return err
			}
			if err := e.workflowRepo.SetOwnerResponse(tx, wf.ID,
				models.OwnerResponseApproved, decision.Reason); err != nil {
				return err
			}
			if err := e.transition(tx, wf, domain.StateDecisionMade,
				"Approval decision recorded.",
				models.CommunicationMetadata{Action: "approved"}); err != nil {
				return err
			}
			if err := e.advanceFromDecision(tx, wf, vendorMessage); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if e.notifier != nil {
		if nerr := e.notifier.NotifyOwner(req, analysis); nerr != nil {
			e.logger.Warn("Owner notification failed",
				zap.String("workflow_id", wf.ID),
				zap.Error(nerr))
		}
	}

	e.logger.Info("Maintenance request submitted",
		zap.String("workflow_id", wf.ID),
		zap.String("request_id", req.ID),
		zap.String("state", wf.CurrentState),
		zap.Bool("auto_approved", autoApproved))

	return &SubmitResult{
		RequestID:    req.ID,
		WorkflowID:   wf.ID,
		CurrentState: wf.CurrentState,
		AutoApproved: autoApproved,
		AIAnalysis:   analysis,
	}, nil
}

// OwnerResponseResult is the outcome of an owner response
type OwnerResponseResult struct {
	CurrentState  string `json:"current_state"`
	VendorMessage string `json:"vendor_message,omitempty"`
}

// HandleOwnerResponse processes the owner's approved/denied/question decision.
// The workflow must be at OWNER_NOTIFIED.
func (e *Engine) HandleOwnerResponse(ctx context.Context, workflowID, response, message string) (*OwnerResponseResult, error) {
	wf, err := e.workflowRepo.GetByID(workflowID)
	if err != nil {
		return nil, err
	}
	if wf == nil {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, workflowID)
	}
	if wf.CurrentState != domain.StateOwnerNotified.String() {
		return nil, fmt.Errorf("%w: owner response in state %s", ErrEventNotAllowed, wf.CurrentState)
	}

	switch response {
	case models.OwnerResponseApproved, models.OwnerResponseDenied, models.OwnerResponseQuestion:
	default:
		return nil, fmt.Errorf("invalid owner response: %q", response)
	}

	var vendorMessage string
	if response == models.OwnerResponseApproved && wf.AIAnalysis.VendorRequired {
		req, err := e.requestRepo.GetByID(wf.MaintenanceRequestID)
		if err != nil {
			return nil, err
		}
		description := ""
		if req != nil {
			description = req.Description
		}
		vendorMessage = e.drafter.DraftVendorMessage(ctx,
			"Contractor", description, wf.AIAnalysis.Urgency, "", "")
	}

	err = e.db.WithTransaction(func(tx *sql.Tx) error {
		ownerMessage := message
		if ownerMessage == "" {
			ownerMessage = "Request " + response
		}
		if err := e.addCommunication(tx, wf.ID, models.SenderTypeOwner, "", "Property Owner",
			ownerMessage,
			models.CommunicationMetadata{Response: response}); err != nil {
			return err
		}
		if err := e.workflowRepo.SetOwnerResponse(tx, wf.ID, response, message); err != nil {
			return err
		}
		if err := e.transition(tx, wf, domain.StateOwnerResponded,
			ownerResponseMessage(response, message),
			models.CommunicationMetadata{
				Action:   "owner_response",
				Response: response,
				Reason:   message,
			}); err != nil {
			return err
		}

		switch response {
		case models.OwnerResponseApproved:
			if err := e.transition(tx, wf, domain.StateDecisionMade,
				"Approval decision recorded.",
				models.CommunicationMetadata{Action: "approved"}); err != nil {
				return err
			}
			return e.advanceFromDecision(tx, wf, vendorMessage)
		case models.OwnerResponseDenied:
			if err := e.transition(tx, wf, domain.StateClosedDenied,
				"Request denied by owner.",
				models.CommunicationMetadata{Action: "denied", Reason: message}); err != nil {
				return err
			}
			return e.requestRepo.UpdateStatus(tx, wf.MaintenanceRequestID, models.RequestStatusClosedDenied)
		}
		// A question pauses the workflow at OWNER_RESPONDED for follow-up.
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Owner response processed",
		zap.String("workflow_id", wf.ID),
		zap.String("response", response),
		zap.String("state", wf.CurrentState))

	return &OwnerResponseResult{
		CurrentState:  wf.CurrentState,
		VendorMessage: vendorMessage,
	}, nil
}

// HandleVendorResponse records the vendor's confirmed ETA and walks the
// workflow through ETA_CONFIRMED, TENANT_NOTIFIED and IN_PROGRESS in one
// transaction. The workflow must be at AWAITING_VENDOR_RESPONSE.
func (e *Engine) HandleVendorResponse(ctx context.Context, workflowID, vendorID string, eta time.Time, notes string) (string, error) {
	wf, err := e.workflowRepo.GetByID(workflowID)
	if err != nil {
		return "", err
	}
	if wf == nil {
		return "", fmt.Errorf("%w: %s", ErrWorkflowNotFound, workflowID)
	}
	if wf.CurrentState != domain.StateAwaitingVendorResponse.String() {
		return "", fmt.Errorf("%w: vendor response in state %s", ErrEventNotAllowed, wf.CurrentState)
	}

	err = e.db.WithTransaction(func(tx *sql.Tx) error {
		if err := e.addCommunication(tx, wf.ID, models.SenderTypeVendor, vendorID, "Contractor",
			"ETA confirmed: "+eta.Format("January 2 at 3:04 PM"),
			models.CommunicationMetadata{VendorID: vendorID, ETA: eta.Format(time.RFC3339)}); err != nil {
			return err
		}
		if err := e.workflowRepo.SetVendorDetails(tx, wf.ID, eta, notes); err != nil {
			return err
		}
		if err := e.requestRepo.SetSchedule(tx, wf.MaintenanceRequestID, vendorID, eta); err != nil {
			return err
		}
		if err := e.transition(tx, wf, domain.StateETAConfirmed,
			"Vendor confirmed availability.",
			models.CommunicationMetadata{
				Action:   "eta_confirmed",
				VendorID: vendorID,
				ETA:      eta.Format(time.RFC3339),
			}); err != nil {
			return err
		}
		if err := e.transition(tx, wf, domain.StateTenantNotified,
			fmt.Sprintf("Good news! A contractor has been scheduled for your maintenance request. They will arrive on %s.",
				eta.Format("January 2 at 3:04 PM")),
			models.CommunicationMetadata{Action: "eta_notification"}); err != nil {
			return err
		}
		if err := e.transition(tx, wf, domain.StateInProgress,
			"Work is now in progress.",
			models.CommunicationMetadata{Action: "work_started"}); err != nil {
			return err
		}
		return e.requestRepo.UpdateStatus(tx, wf.MaintenanceRequestID, models.RequestStatusInProgress)
	})
	if err != nil {
		return "", err
	}

	if e.notifier != nil {
		req, rerr := e.requestRepo.GetByID(wf.MaintenanceRequestID)
		if rerr == nil && req != nil {
			if nerr := e.notifier.NotifyTenant(req, eta); nerr != nil {
				e.logger.Warn("Tenant notification failed",
					zap.String("workflow_id", wf.ID),
					zap.Error(nerr))
			}
		}
	}

	e.logger.Info("Vendor response processed",
		zap.String("workflow_id", wf.ID),
		zap.String("vendor_id", vendorID),
		zap.Time("eta", eta))

	return wf.CurrentState, nil
}

// CompleteRepair marks the repair finished. The workflow must be at
// IN_PROGRESS.
func (e *Engine) CompleteRepair(ctx context.Context, workflowID, completionNotes string, actualCost *float64) (string, error) {
	wf, err := e.workflowRepo.GetByID(workflowID)
	if err != nil {
		return "", err
	}
	if wf == nil {
		return "", fmt.Errorf("%w: %s", ErrWorkflowNotFound, workflowID)
	}
	if wf.CurrentState != domain.StateInProgress.String() {
		return "", fmt.Errorf("%w: completion in state %s", ErrEventNotAllowed, wf.CurrentState)
	}

	err = e.db.WithTransaction(func(tx *sql.Tx) error {
		if err := e.requestRepo.Complete(tx, wf.MaintenanceRequestID, actualCost); err != nil {
			return err
		}
		message := "Repair completed."
		if completionNotes != "" {
			message = "Repair completed. " + completionNotes
		}
		meta := models.CommunicationMetadata{Action: "repair_completed", Reason: completionNotes}
		if actualCost != nil {
			meta.Cost = *actualCost
		}
		return e.transition(tx, wf, domain.StateCompleted, message, meta)
	})
	if err != nil {
		return "", err
	}

	e.logger.Info("Repair completed",
		zap.String("workflow_id", wf.ID))

	return wf.CurrentState, nil
}

// Status is the full view of one workflow
type Status struct {
	Workflow       *models.MaintenanceWorkflow     `json:"workflow"`
	Request        *models.MaintenanceRequest      `json:"request"`
	Communications []*models.WorkflowCommunication `json:"communications"`
}

// GetStatus returns a workflow together with its request and full audit trail
func (e *Engine) GetStatus(workflowID string) (*Status, error) {
	wf, err := e.workflowRepo.GetByID(workflowID)
	if err != nil {
		return nil, err
	}
	if wf == nil {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, workflowID)
	}

	req, err := e.requestRepo.GetByID(wf.MaintenanceRequestID)
	if err != nil {
		return nil, err
	}
	comms, err := e.commRepo.ListByWorkflow(wf.ID)
	if err != nil {
		return nil, err
	}

	return &Status{
		Workflow:       wf,
		Request:        req,
		Communications: comms,
	}, nil
}

// List returns workflows newest first with an optional state filter
func (e *Engine) List(state string, limit, offset int) ([]*models.MaintenanceWorkflow, error) {
	if state != "" && !domain.State(state).IsValid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidState, state)
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	return e.workflowRepo.List(state, limit, offset)
}

// advanceFromDecision continues past DECISION_MADE based on whether the
// analysis calls for a contractor.
func (e *Engine) advanceFromDecision(tx *sql.Tx, wf *models.MaintenanceWorkflow, vendorMessage string) error {
	if wf.AIAnalysis.VendorRequired {
		if err := e.workflowRepo.SetVendorMessage(tx, wf.ID, vendorMessage); err != nil {
			return err
		}
		wf.VendorMessage = vendorMessage
		if err := e.transition(tx, wf, domain.StateVendorContacted,
			"Vendor contacted with message: "+vendorMessage,
			models.CommunicationMetadata{Action: "vendor_required"}); err != nil {
			return err
		}
		return e.transition(tx, wf, domain.StateAwaitingVendorResponse,
			"Awaiting vendor availability.",
			models.CommunicationMetadata{Action: "awaiting_vendor"})
	}

	if err := e.transition(tx, wf, domain.StateInProgress,
		"No contractor required. This issue will be handled directly.",
		models.CommunicationMetadata{Action: "self_resolution"}); err != nil {
		return err
	}
	return e.requestRepo.UpdateStatus(tx, wf.MaintenanceRequestID, models.RequestStatusInProgress)
}

// transition moves the workflow one step, appending the audit entry in the
// same transaction. The in-memory workflow is advanced so chained calls see
// the new state and version.
func (e *Engine) transition(tx *sql.Tx, wf *models.MaintenanceWorkflow, to domain.State, message string, meta models.CommunicationMetadata) error {
	from := domain.State(wf.CurrentState)
	if !domain.CanTransition(from, to) {
		return fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, from, to)
	}

	if err := e.workflowRepo.UpdateState(tx, wf.ID, to.String(), wf.Version); err != nil {
		return err
	}

	meta.FromState = from.String()
	meta.ToState = to.String()
	if err := e.addCommunication(tx, wf.ID, models.SenderTypeSystem, "", "System", message, meta); err != nil {
		return err
	}

	wf.CurrentState = to.String()
	wf.Version++
	return nil
}

func (e *Engine) addCommunication(tx *sql.Tx, workflowID, senderType, senderID, senderName, message string, meta models.CommunicationMetadata) error {
	return e.commRepo.Create(tx, &models.WorkflowCommunication{
		ID:         uuid.NewString(),
		WorkflowID: workflowID,
		SenderType: senderType,
		SenderID:   senderID,
		SenderName: senderName,
		Message:    message,
		Metadata:   meta,
	})
}

func ownerResponseMessage(response, message string) string {
	switch response {
	case models.OwnerResponseApproved:
		return "Owner approved the maintenance request."
	case models.OwnerResponseDenied:
		if message != "" {
			return "Owner denied the maintenance request: " + message
		}
		return "Owner denied the maintenance request."
	default:
		if message != "" {
			return "Owner has a question: " + message
		}
		return "Owner has a question about the request."
	}
}
