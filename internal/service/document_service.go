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

type documentRepository interface {
	List(ctx context.Context, publicOnly bool, category models.DocumentCategory) ([]models.Document, error)
	FindByID(ctx context.Context, id string) (*models.Document, error)
	Create(ctx context.Context, doc *models.Document) error
	Update(ctx context.Context, doc *models.Document) error
	Delete(ctx context.Context, id string) error
}

// DocumentRequest is the create/update payload for official documents.
type DocumentRequest struct {
	Title       string  `json:"title" validate:"required,min=3"`
	Description *string `json:"description"`
	FileURL     string  `json:"file_url" validate:"required"`
	Category    string  `json:"category" validate:"required,oneof=Financiero 'Legal y Normativo' 'Actas y Acuerdos' Convocatorias Otros"`
	Public      bool    `json:"public"`
}

// DocumentService manages the transparency document repository.
type DocumentService struct {
	documents documentRepository
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(documents documentRepository, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &DocumentService{documents: documents, audit: audit, validator: validate, logger: logger}
}

// List returns documents, restricted to public ones for anonymous callers.
func (s *DocumentService) List(ctx context.Context, publicOnly bool, category models.DocumentCategory) ([]models.Document, error) {
	docs, err := s.documents.List(ctx, publicOnly, category)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	return docs, nil
}

// Get returns one document.
func (s *DocumentService) Get(ctx context.Context, id string) (*models.Document, error) {
	doc, err := s.documents.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch document")
	}
	return doc, nil
}

// Create registers a document pointing at an already uploaded file.
func (s *DocumentService) Create(ctx context.Context, req DocumentRequest, actor *models.JWTClaims) (*models.Document, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid document payload")
	}
	doc := &models.Document{
		Title:       req.Title,
		Description: req.Description,
		FileURL:     req.FileURL,
		Category:    models.DocumentCategory(req.Category),
		Public:      req.Public,
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create document")
	}
	s.recordAudit(ctx, actor, "CREAR_DOCUMENTO", doc.ID)
	return doc, nil
}

// Update edits a document's metadata.
func (s *DocumentService) Update(ctx context.Context, id string, req DocumentRequest, actor *models.JWTClaims) (*models.Document, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid document payload")
	}
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.Title = req.Title
	doc.Description = req.Description
	doc.FileURL = req.FileURL
	doc.Category = models.DocumentCategory(req.Category)
	doc.Public = req.Public
	if err := s.documents.Update(ctx, doc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update document")
	}
	s.recordAudit(ctx, actor, "EDITAR_DOCUMENTO", doc.ID)
	return doc, nil
}

// Delete removes a document record.
func (s *DocumentService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.documents.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete document")
	}
	s.recordAudit(ctx, actor, "ELIMINAR_DOCUMENTO", id)
	return nil
}

func (s *DocumentService) recordAudit(ctx context.Context, actor *models.JWTClaims, action string, resourceID string) {
	if actor == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:     actor.UserID,
		UserEmail:  actor.Email,
		UserRole:   string(actor.Role),
		Action:     action,
		Module:     models.ModuleDocumentos,
		ResourceID: &resourceID,
	}
	if err := s.audit.Insert(ctx, entry); err != nil {
		s.logger.Warn("failed to record document audit log", zap.Error(err))
	}
}
