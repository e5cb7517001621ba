package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/salvaalejos/ceitm-web/internal/models"
	appErrors "github.com/salvaalejos/ceitm-web/pkg/errors"
)

type convenioRepository interface {
	List(ctx context.Context, onlyActive bool, category string) ([]models.Convenio, error)
	FindByID(ctx context.Context, id string) (*models.Convenio, error)
	Create(ctx context.Context, convenio *models.Convenio) error
	Update(ctx context.Context, convenio *models.Convenio) error
	Delete(ctx context.Context, id string) error
}

// ConvenioRequest is the create/update payload for a business agreement.
type ConvenioRequest struct {
	Name             string          `json:"name" validate:"required,min=3"`
	ShortDescription string          `json:"short_description" validate:"required,max=200"`
	LongDescription  string          `json:"long_description" validate:"required"`
	Category         string          `json:"category" validate:"required"`
	ImageURL         string          `json:"image_url" validate:"required"`
	Address          *string         `json:"address"`
	Benefits         json.RawMessage `json:"benefits" validate:"required"`
	SocialLinks      json.RawMessage `json:"social_links"`
	Active           bool            `json:"active"`
}

// ConvenioService manages agreements with local businesses.
type ConvenioService struct {
	convenios convenioRepository
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewConvenioService constructs a ConvenioService.
func NewConvenioService(convenios convenioRepository, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *ConvenioService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ConvenioService{convenios: convenios, audit: audit, validator: validate, logger: logger}
}

// List returns agreements, only active ones for the public site.
func (s *ConvenioService) List(ctx context.Context, onlyActive bool, category string) ([]models.Convenio, error) {
	items, err := s.convenios.List(ctx, onlyActive, category)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list convenios")
	}
	return items, nil
}

// Get returns one agreement.
func (s *ConvenioService) Get(ctx context.Context, id string) (*models.Convenio, error) {
	item, err := s.convenios.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "convenio not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch convenio")
	}
	return item, nil
}

// Create registers an agreement.
func (s *ConvenioService) Create(ctx context.Context, req ConvenioRequest, actor *models.JWTClaims) (*models.Convenio, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid convenio payload")
	}
	item := &models.Convenio{
		Name:             req.Name,
		ShortDescription: req.ShortDescription,
		LongDescription:  req.LongDescription,
		Category:         req.Category,
		ImageURL:         req.ImageURL,
		Address:          req.Address,
		Benefits:         req.Benefits,
		SocialLinks:      req.SocialLinks,
		Active:           req.Active,
	}
	if item.SocialLinks == nil {
		item.SocialLinks = json.RawMessage(`{}`)
	}
	if err := s.convenios.Create(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create convenio")
	}
	s.recordAudit(ctx, actor, "CREAR_CONVENIO", item.ID)
	return item, nil
}

// Update edits an agreement.
func (s *ConvenioService) Update(ctx context.Context, id string, req ConvenioRequest, actor *models.JWTClaims) (*models.Convenio, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid convenio payload")
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Name = req.Name
	item.ShortDescription = req.ShortDescription
	item.LongDescription = req.LongDescription
	item.Category = req.Category
	item.ImageURL = req.ImageURL
	item.Address = req.Address
	item.Benefits = req.Benefits
	if req.SocialLinks != nil {
		item.SocialLinks = req.SocialLinks
	}
	item.Active = req.Active
	if err := s.convenios.Update(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update convenio")
	}
	s.recordAudit(ctx, actor, "EDITAR_CONVENIO", item.ID)
	return item, nil
}

// Delete removes an agreement.
func (s *ConvenioService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.convenios.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete convenio")
	}
	s.recordAudit(ctx, actor, "ELIMINAR_CONVENIO", id)
	return nil
}

func (s *ConvenioService) recordAudit(ctx context.Context, actor *models.JWTClaims, action string, resourceID string) {
	if actor == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:     actor.UserID,
		UserEmail:  actor.Email,
		UserRole:   string(actor.Role),
		Action:     action,
		Module:     models.ModuleConvenios,
		ResourceID: &resourceID,
	}
	if err := s.audit.Insert(ctx, entry); err != nil {
		s.logger.Warn("failed to record convenio audit log", zap.Error(err))
	}
}
