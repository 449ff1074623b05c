package email

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/propai/maintenance-workflow/internal/models"
)

// Config holds SMTP settings and the fixed notification recipients
type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	OwnerEmail  string
	TenantEmail string
}

// Sender delivers owner and tenant notification emails over SMTP. It is
// best-effort: callers log failures and move on, a dropped email never
// blocks a workflow transition.
type Sender struct {
	cfg    Config
	dialer *gomail.Dialer
	logger *zap.Logger
}

// NewSender creates a new email sender
func NewSender(cfg Config, logger *zap.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logger: logger,
	}
}

// Enabled reports whether SMTP credentials are configured. When false, every
// send is skipped silently.
func (s *Sender) Enabled() bool {
	return s.cfg.Host != "" && s.cfg.Username != "" && s.cfg.Password != ""
}

// NotifyOwner emails the property owner about a newly submitted request
func (s *Sender) NotifyOwner(req *models.MaintenanceRequest, analysis models.AIAnalysis) error {
	if !s.Enabled() || s.cfg.OwnerEmail == "" {
		s.logger.Debug("Email not configured, skipping owner notification")
		return nil
	}

	subject := fmt.Sprintf("[%s] New Maintenance Request - %s",
		urgencyLabel(analysis.Urgency), req.Category)

	body := fmt.Sprintf(`MAINTENANCE REQUEST - %s
%s
Request ID:  %s
Lease:       %s
Category:    %s
Urgency:     %s
Cost range:  %s
Description: %s

Analysis: %s

Please review this request and respond with approved, denied or a question.
`,
		strings.ToUpper(analysis.Urgency),
		strings.Repeat("=", 40),
		req.ID,
		req.LeaseID,
		analysis.Category,
		analysis.Urgency,
		analysis.EstimatedCostRange,
		req.Description,
		analysis.Reasoning,
	)

	if err := s.send(s.cfg.OwnerEmail, subject, body); err != nil {
		return fmt.Errorf("failed to send owner notification: %w", err)
	}

	s.logger.Info("Owner notified",
		zap.String("request_id", req.ID),
		zap.String("to", s.cfg.OwnerEmail))
	return nil
}

// NotifyTenant emails the tenant once a contractor visit is scheduled
func (s *Sender) NotifyTenant(req *models.MaintenanceRequest, eta time.Time) error {
	if !s.Enabled() || s.cfg.TenantEmail == "" {
		s.logger.Debug("Email not configured, skipping tenant notification")
		return nil
	}

	subject := "Your maintenance request has been scheduled"

	body := fmt.Sprintf(`Good news!

A contractor has been scheduled for your maintenance request:

  %s

They will arrive on %s. Please make sure the property is accessible.
`,
		req.Description,
		eta.Format("January 2 at 3:04 PM"),
	)

	if err := s.send(s.cfg.TenantEmail, subject, body); err != nil {
		return fmt.Errorf("failed to send tenant notification: %w", err)
	}

	s.logger.Info("Tenant notified",
		zap.String("request_id", req.ID),
		zap.String("to", s.cfg.TenantEmail))
	return nil
}

func (s *Sender) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return s.dialer.DialAndSend(m)
}

func urgencyLabel(urgency string) string {
	switch urgency {
	case models.UrgencyEmergency:
		return "EMERGENCY"
	case models.UrgencyHigh:
		return "HIGH PRIORITY"
	default:
		return strings.ToUpper(urgency)
	}
}
