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

type sanctionRepository interface {
	ListForUser(ctx context.Context, userID string) ([]models.Sanction, error)
	FindByID(ctx context.Context, id string) (*models.Sanction, error)
	Create(ctx context.Context, sanction *models.Sanction) error
	SetStatus(ctx context.Context, id string, status models.SanctionStatus) error
	Delete(ctx context.Context, id string) error
}

type sanctionUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// CreateSanctionRequest opens a disciplinary record against a member.
type CreateSanctionRequest struct {
	UserID             string `json:"user_id" validate:"required,uuid"`
	Severity           string `json:"severity" validate:"required,oneof=Leve Normal Grave"`
	Reason             string `json:"reason" validate:"required,min=10"`
	PenaltyDescription string `json:"penalty_description" validate:"required"`
}

// SanctionService manages internal disciplinary records.
type SanctionService struct {
	sanctions sanctionRepository
	users     sanctionUserReader
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSanctionService constructs a SanctionService.
func NewSanctionService(sanctions sanctionRepository, users sanctionUserReader, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *SanctionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SanctionService{sanctions: sanctions, users: users, audit: audit, validator: validate, logger: logger}
}

// ListForUser returns the sanctions against one member.
func (s *SanctionService) ListForUser(ctx context.Context, userID string) ([]models.Sanction, error) {
	sanctions, err := s.sanctions.ListForUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sanctions")
	}
	return sanctions, nil
}

// Create opens a sanction against an active member.
func (s *SanctionService) Create(ctx context.Context, req CreateSanctionRequest, actor *models.JWTClaims) (*models.Sanction, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid sanction payload")
	}
	if _, err := s.users.FindByID(ctx, req.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch member")
	}

	sanction := &models.Sanction{
		UserID:             req.UserID,
		Severity:           models.SanctionSeverity(req.Severity),
		Reason:             req.Reason,
		PenaltyDescription: req.PenaltyDescription,
		Status:             models.SanctionPendiente,
	}
	if err := s.sanctions.Create(ctx, sanction); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create sanction")
	}
	s.recordAudit(ctx, actor, "CREAR_SANCION", sanction.ID)
	return sanction, nil
}

// Settle marks a sanction as paid off.
func (s *SanctionService) Settle(ctx context.Context, id string, actor *models.JWTClaims) (*models.Sanction, error) {
	sanction, err := s.sanctions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "sanction not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch sanction")
	}
	if sanction.Status == models.SanctionSaldada {
		return sanction, nil
	}
	if err := s.sanctions.SetStatus(ctx, id, models.SanctionSaldada); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to settle sanction")
	}
	sanction.Status = models.SanctionSaldada
	s.recordAudit(ctx, actor, "SALDAR_SANCION", id)
	return sanction, nil
}

// Delete removes a sanction record.
func (s *SanctionService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	if _, err := s.sanctions.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "sanction not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch sanction")
	}
	if err := s.sanctions.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete sanction")
	}
	s.recordAudit(ctx, actor, "ELIMINAR_SANCION", id)
	return nil
}

func (s *SanctionService) recordAudit(ctx context.Context, actor *models.JWTClaims, action string, resourceID string) {
	if actor == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:     actor.UserID,
		UserEmail:  actor.Email,
		UserRole:   string(actor.Role),
		Action:     action,
		Module:     models.ModuleSanciones,
		ResourceID: &resourceID,
	}
	if err := s.audit.Insert(ctx, entry); err != nil {
		s.logger.Warn("failed to record sanction audit log", zap.Error(err))
	}
}
