package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/salvaalejos/ceitm-web/internal/models"
	"github.com/salvaalejos/ceitm-web/pkg/config"
	"github.com/salvaalejos/ceitm-web/pkg/jobs"
	"github.com/salvaalejos/ceitm-web/pkg/mailer"
)

// mailSender abstracts the SMTP client for tests.
type mailSender interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// NotificationService delivers outcome emails asynchronously. Callers enqueue
// after their transaction commits; a failed send is retried a few times and
// then dropped, never surfaced to the original request.
type NotificationService struct {
	sender  mailSender
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger
}

// NewNotificationService wires the mail queue.
func NewNotificationService(sender mailSender, cfg config.NotificationsConfig, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{sender: sender, metrics: metrics, logger: logger}
	s.queue = jobs.New("notifications", s.process, jobs.Options{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		OnDrop:     s.dropped,
		Logger:     logger,
	})
	return s
}

// Start launches the delivery workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the delivery workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

func (s *NotificationService) process(ctx context.Context, task jobs.Task) error {
	msg, ok := task.Payload.(mailer.Message)
	if !ok {
		s.logger.Error("notification task with unexpected payload", zap.String("kind", task.Kind))
		return nil
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send %s to %s: %w", task.Kind, msg.To, err)
	}
	s.metrics.RecordMailOutcome(true)
	return nil
}

// dropped runs when a notification exhausted its delivery retries. The mail
// is lost; only the log line and the failure counter remain.
func (s *NotificationService) dropped(task jobs.Task, err error) {
	s.metrics.RecordMailOutcome(false)
	s.logger.Warn("notification dropped after retries",
		zap.String("kind", task.Kind),
		zap.Int("attempts", task.Attempt),
		zap.Error(err))
}

func (s *NotificationService) enqueue(kind string, msg mailer.Message) {
	if err := s.queue.Enqueue(jobs.Task{Kind: kind, Payload: msg}); err != nil {
		s.logger.Warn("drop notification", zap.String("kind", kind), zap.Error(err))
	}
}

// ApplicationReceived notifies the applicant that the submission was stored.
func (s *NotificationService) ApplicationReceived(app *models.ScholarshipApplication, scholarshipName string) {
	s.enqueue("application_received", mailer.Message{
		To:       app.Email,
		Subject:  fmt.Sprintf("Solicitud recibida: %s", scholarshipName),
		Template: mailer.TemplateApplicationReceived,
		Context: map[string]interface{}{
			"FullName":      app.FullName,
			"Scholarship":   scholarshipName,
			"ApplicationID": app.ID,
		},
	})
}

// ApplicationStatusChanged notifies the applicant of a lifecycle transition.
func (s *NotificationService) ApplicationStatusChanged(app *models.ScholarshipApplication, scholarshipName string, status models.ApplicationStatus, comments *string) {
	template := mailer.TemplateApplicationUpdate
	switch status {
	case models.StatusAprobada:
		template = mailer.TemplateApplicationApproved
	case models.StatusRechazada:
		template = mailer.TemplateApplicationRejected
	case models.StatusDocFaltante:
		template = mailer.TemplateApplicationMissingDocs
	case models.StatusLiberada:
		template = mailer.TemplateApplicationReleased
	}
	mailCtx := map[string]interface{}{
		"FullName":    app.FullName,
		"Scholarship": scholarshipName,
		"Status":      string(status),
	}
	if comments != nil {
		mailCtx["Comments"] = *comments
	}
	if app.ReleaseFolio != nil {
		mailCtx["Folio"] = *app.ReleaseFolio
	}
	s.enqueue("application_status", mailer.Message{
		To:       app.Email,
		Subject:  fmt.Sprintf("Tu solicitud cambió a: %s", status),
		Template: template,
		Context:  mailCtx,
	})
}

// ComplaintReceived sends the tracking code to the reporter.
func (s *NotificationService) ComplaintReceived(complaint *models.Complaint) {
	s.enqueue("complaint_received", mailer.Message{
		To:       complaint.Email,
		Subject:  fmt.Sprintf("Buzón CEITM: folio %s", complaint.TrackingCode),
		Template: mailer.TemplateComplaintReceived,
		Context: map[string]interface{}{
			"FullName":     complaint.FullName,
			"TrackingCode": complaint.TrackingCode,
		},
	})
}

// ComplaintResolved notifies the reporter of the outcome.
func (s *NotificationService) ComplaintResolved(complaint *models.Complaint) {
	mailCtx := map[string]interface{}{
		"FullName":     complaint.FullName,
		"TrackingCode": complaint.TrackingCode,
		"Status":       string(complaint.Status),
	}
	if complaint.AdminResponse != nil {
		mailCtx["Response"] = *complaint.AdminResponse
	}
	s.enqueue("complaint_resolved", mailer.Message{
		To:       complaint.Email,
		Subject:  fmt.Sprintf("Buzón CEITM: resolución del folio %s", complaint.TrackingCode),
		Template: mailer.TemplateComplaintResolved,
		Context:  mailCtx,
	})
}
