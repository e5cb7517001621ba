package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/salvaalejos/ceitm-web/internal/models"
	appErrors "github.com/salvaalejos/ceitm-web/pkg/errors"
)

type complaintRepository interface {
	Create(ctx context.Context, complaint *models.Complaint, prefix string) error
	FindByID(ctx context.Context, id string) (*models.Complaint, error)
	FindByTrackingCode(ctx context.Context, code string) (*models.ComplaintPublicView, error)
	List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, int, error)
	Resolve(ctx context.Context, id string, status models.ComplaintStatus, response string, evidenceURL *string) error
	Delete(ctx context.Context, id string) error
}

type complaintNotifier interface {
	ComplaintReceived(complaint *models.Complaint)
	ComplaintResolved(complaint *models.Complaint)
}

// CreateComplaintRequest is the public mailbox payload.
type CreateComplaintRequest struct {
	FullName      string               `json:"full_name" validate:"required,min=5"`
	ControlNumber string               `json:"control_number" validate:"required,min=8,max=9"`
	PhoneNumber   string               `json:"phone_number" validate:"required,min=10"`
	Email         string               `json:"email" validate:"required,email"`
	Career        string               `json:"career" validate:"required"`
	Semester      string               `json:"semester" validate:"required"`
	Type          models.ComplaintType `json:"type" validate:"required,oneof=Queja Sugerencia Ambas"`
	Description   string               `json:"description" validate:"required,min=20"`
	EvidenceURL   *string              `json:"evidence_url"`
}

// ResolveComplaintRequest is the staff resolution payload.
type ResolveComplaintRequest struct {
	Status      models.ComplaintStatus `json:"status" validate:"required,oneof='En Proceso' Resuelto Rechazado"`
	Response    string                 `json:"response" validate:"required,min=10"`
	EvidenceURL *string                `json:"evidence_url"`
}

// ComplaintService runs the public complaint mailbox.
type ComplaintService struct {
	complaints complaintRepository
	notifier   complaintNotifier
	audit      auditRecorder
	validator  *validator.Validate
	logger     *zap.Logger
	prefix     string
}

// NewComplaintService constructs a ComplaintService.
func NewComplaintService(complaints complaintRepository, notifier complaintNotifier, audit auditRecorder, validate *validator.Validate, logger *zap.Logger, trackingPrefix string) *ComplaintService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ComplaintService{complaints: complaints, notifier: notifier, audit: audit, validator: validate, logger: logger, prefix: trackingPrefix}
}

// Create files a ticket and returns it with its tracking code assigned.
func (s *ComplaintService) Create(ctx context.Context, req CreateComplaintRequest) (*models.Complaint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid complaint payload")
	}

	complaint := &models.Complaint{
		FullName:      req.FullName,
		ControlNumber: req.ControlNumber,
		PhoneNumber:   req.PhoneNumber,
		Email:         req.Email,
		Career:        req.Career,
		Semester:      req.Semester,
		Type:          req.Type,
		Description:   req.Description,
		EvidenceURL:   req.EvidenceURL,
	}
	if err := s.complaints.Create(ctx, complaint, s.prefix); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store complaint")
	}

	s.notifier.ComplaintReceived(complaint)
	s.logger.Info("complaint filed",
		zap.String("tracking_code", complaint.TrackingCode),
		zap.String("career", complaint.Career))
	return complaint, nil
}

// Track returns the public projection for a tracking code.
func (s *ComplaintService) Track(ctx context.Context, code string) (*models.ComplaintPublicView, error) {
	view, err := s.complaints.FindByTrackingCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no complaint with that tracking code")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch complaint")
	}
	return view, nil
}

// Get returns the full staff view of one ticket.
func (s *ComplaintService) Get(ctx context.Context, id string, careerScope string) (*models.Complaint, error) {
	complaint, err := s.complaints.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch complaint")
	}
	if careerScope != "" && complaint.Career != careerScope {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "complaint belongs to another career")
	}
	return complaint, nil
}

// List returns tickets, forcing the career filter when scoped.
func (s *ComplaintService) List(ctx context.Context, filter models.ComplaintFilter, careerScope string) ([]models.Complaint, int, error) {
	if careerScope != "" {
		filter.Career = careerScope
	}
	complaints, total, err := s.complaints.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list complaints")
	}
	return complaints, total, nil
}

// Resolve records the staff outcome and notifies the reporter.
func (s *ComplaintService) Resolve(ctx context.Context, id string, req ResolveComplaintRequest, actor *models.JWTClaims, careerScope string) (*models.Complaint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid resolution payload")
	}

	complaint, err := s.Get(ctx, id, careerScope)
	if err != nil {
		return nil, err
	}
	if err := s.complaints.Resolve(ctx, id, req.Status, req.Response, req.EvidenceURL); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store resolution")
	}

	complaint.Status = req.Status
	complaint.AdminResponse = &req.Response
	complaint.ResolutionEvidenceURL = req.EvidenceURL
	s.recordAudit(ctx, actor, "RESOLVER_QUEJA", complaint.ID)

	if req.Status == models.ComplaintResuelto || req.Status == models.ComplaintRechazado {
		s.notifier.ComplaintResolved(complaint)
	}
	return complaint, nil
}

// Delete removes a ticket. Admin only.
func (s *ComplaintService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	if _, err := s.Get(ctx, id, ""); err != nil {
		return err
	}
	if err := s.complaints.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete complaint")
	}
	s.recordAudit(ctx, actor, "ELIMINAR_QUEJA", id)
	return nil
}

func (s *ComplaintService) recordAudit(ctx context.Context, actor *models.JWTClaims, action string, resourceID string) {
	if actor == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:     actor.UserID,
		UserEmail:  actor.Email,
		UserRole:   string(actor.Role),
		Action:     action,
		Module:     models.ModuleQuejas,
		ResourceID: &resourceID,
	}
	if err := s.audit.Insert(ctx, entry); err != nil {
		s.logger.Warn("failed to record complaint audit log", zap.Error(err))
	}
}
