package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/salvaalejos/ceitm-web/internal/models"
	appErrors "github.com/salvaalejos/ceitm-web/pkg/errors"
)

type careerRepository interface {
	List(ctx context.Context, onlyActive bool) ([]models.Career, error)
	FindByID(ctx context.Context, id string) (*models.Career, error)
	ExistsByName(ctx context.Context, name string, excludeID string) (bool, error)
	Create(ctx context.Context, career *models.Career) error
	Update(ctx context.Context, career *models.Career) error
}

// CreateCareerRequest is the admin creation payload.
type CreateCareerRequest struct {
	Name        string  `json:"name" validate:"required,min=3"`
	WhatsappURL *string `json:"whatsapp_url" validate:"omitempty,url"`
	ImageURL    *string `json:"image_url"`
}

// UpdateCareerRequest is the edit payload. Concejales may only touch the
// contact fields of their own career.
type UpdateCareerRequest struct {
	Name        string  `json:"name" validate:"required,min=3"`
	WhatsappURL *string `json:"whatsapp_url" validate:"omitempty,url"`
	ImageURL    *string `json:"image_url"`
	Active      bool    `json:"active"`
}

// CareerService manages the academic program catalog.
type CareerService struct {
	careers   careerRepository
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCareerService constructs a CareerService.
func NewCareerService(careers careerRepository, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *CareerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CareerService{careers: careers, audit: audit, validator: validate, logger: logger}
}

// List returns careers. Public callers only see active ones.
func (s *CareerService) List(ctx context.Context, onlyActive bool) ([]models.Career, error) {
	careers, err := s.careers.List(ctx, onlyActive)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list careers")
	}
	return careers, nil
}

// Get returns one career.
func (s *CareerService) Get(ctx context.Context, id string) (*models.Career, error) {
	career, err := s.careers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "career not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch career")
	}
	return career, nil
}

// Create registers a career.
func (s *CareerService) Create(ctx context.Context, req CreateCareerRequest, actor *models.JWTClaims) (*models.Career, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid career payload")
	}

	taken, err := s.careers.ExistsByName(ctx, req.Name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check career name")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a career with that name already exists")
	}

	career := &models.Career{
		Name:        req.Name,
		Slug:        slug.Make(req.Name),
		WhatsappURL: req.WhatsappURL,
		ImageURL:    req.ImageURL,
		Active:      true,
	}
	if err := s.careers.Create(ctx, career); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create career")
	}
	s.recordAudit(ctx, actor, "CREAR_CARRERA", career.ID)
	return career, nil
}

// Update edits a career. When the actor is scoped to a career, only that
// career's contact fields may change; renames and deactivation are refused.
func (s *CareerService) Update(ctx context.Context, id string, req UpdateCareerRequest, actor *models.JWTClaims, careerScope string) (*models.Career, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid career payload")
	}

	career, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if careerScope != "" {
		if career.Name != careerScope {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "you can only edit your own career")
		}
		if req.Name != career.Name {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "a concejal cannot rename the career")
		}
		if !req.Active {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "a concejal cannot deactivate the career")
		}
	}

	if req.Name != career.Name {
		taken, err := s.careers.ExistsByName(ctx, req.Name, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check career name")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrConflict, "a career with that name already exists")
		}
		career.Name = req.Name
		career.Slug = slug.Make(req.Name)
	}
	career.WhatsappURL = req.WhatsappURL
	career.ImageURL = req.ImageURL
	career.Active = req.Active

	if err := s.careers.Update(ctx, career); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update career")
	}
	s.recordAudit(ctx, actor, "EDITAR_CARRERA", career.ID)
	return career, nil
}

func (s *CareerService) recordAudit(ctx context.Context, actor *models.JWTClaims, action string, resourceID string) {
	if actor == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:     actor.UserID,
		UserEmail:  actor.Email,
		UserRole:   string(actor.Role),
		Action:     action,
		Module:     models.ModuleCarreras,
		ResourceID: &resourceID,
	}
	if err := s.audit.Insert(ctx, entry); err != nil {
		s.logger.Warn("failed to record career audit log", zap.Error(err))
	}
}
