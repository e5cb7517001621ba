package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/salvaalejos/ceitm-web/internal/models"
	"github.com/salvaalejos/ceitm-web/internal/repository"
	appErrors "github.com/salvaalejos/ceitm-web/pkg/errors"
)

type scholarshipRepository interface {
	List(ctx context.Context, onlyActive bool) ([]models.Scholarship, error)
	FindByID(ctx context.Context, id string) (*models.Scholarship, error)
	Create(ctx context.Context, scholarship *models.Scholarship, careers []string, slotsPerCareer int) error
	Update(ctx context.Context, scholarship *models.Scholarship) error
	Deactivate(ctx context.Context, id string) error
	ListQuotas(ctx context.Context, scholarshipID string) ([]models.ScholarshipQuota, error)
	InitMissingQuotas(ctx context.Context, scholarshipID string, careers []string, slotsPerCareer int) error
	SetQuotaTotal(ctx context.Context, scholarshipID, career string, total int) error
}

type scholarshipCareerReader interface {
	List(ctx context.Context, onlyActive bool) ([]models.Career, error)
}

// CreateScholarshipRequest is the staff creation payload. Quota rows are
// seeded for every active career at the given seat count.
type CreateScholarshipRequest struct {
	Name           string                 `json:"name" validate:"required,min=5"`
	Type           models.ScholarshipType `json:"type" validate:"required"`
	Description    string                 `json:"description" validate:"required"`
	StartDate      time.Time              `json:"start_date" validate:"required"`
	EndDate        time.Time              `json:"end_date" validate:"required,gtfield=StartDate"`
	ResultsDate    time.Time              `json:"results_date" validate:"required"`
	ActivityCode   string                 `json:"activity_code" validate:"required,len=3,numeric"`
	Cycle          string                 `json:"cycle" validate:"required"`
	SlotsPerCareer int                    `json:"slots_per_career" validate:"required,gt=0"`
}

// UpdateScholarshipRequest is the staff edit payload.
type UpdateScholarshipRequest struct {
	Name         string                 `json:"name" validate:"required,min=5"`
	Type         models.ScholarshipType `json:"type" validate:"required"`
	Description  string                 `json:"description" validate:"required"`
	StartDate    time.Time              `json:"start_date" validate:"required"`
	EndDate      time.Time              `json:"end_date" validate:"required,gtfield=StartDate"`
	ResultsDate  time.Time              `json:"results_date" validate:"required"`
	ActivityCode string                 `json:"activity_code" validate:"required,len=3,numeric"`
	Cycle        string                 `json:"cycle" validate:"required"`
	Active       bool                   `json:"active"`
}

// SetQuotaRequest changes the seat count for one career.
type SetQuotaRequest struct {
	Career     string `json:"career" validate:"required"`
	TotalSlots int    `json:"total_slots" validate:"gte=0"`
}

// ScholarshipService manages funding calls and their seat allocations.
type ScholarshipService struct {
	scholarships scholarshipRepository
	careers      scholarshipCareerReader
	audit        auditRecorder
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewScholarshipService constructs a ScholarshipService.
func NewScholarshipService(scholarships scholarshipRepository, careers scholarshipCareerReader, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *ScholarshipService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ScholarshipService{scholarships: scholarships, careers: careers, audit: audit, validator: validate, logger: logger}
}

// List returns calls. Public callers only see active ones.
func (s *ScholarshipService) List(ctx context.Context, onlyActive bool) ([]models.Scholarship, error) {
	scholarships, err := s.scholarships.List(ctx, onlyActive)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list scholarships")
	}
	return scholarships, nil
}

// Get returns one call.
func (s *ScholarshipService) Get(ctx context.Context, id string) (*models.Scholarship, error) {
	scholarship, err := s.scholarships.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "scholarship not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch scholarship")
	}
	return scholarship, nil
}

// Create opens a call with a quota row per active career.
func (s *ScholarshipService) Create(ctx context.Context, req CreateScholarshipRequest, actor *models.JWTClaims) (*models.Scholarship, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scholarship payload")
	}

	careers, err := s.careers.List(ctx, true)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list careers")
	}
	names := make([]string, len(careers))
	for i, career := range careers {
		names[i] = career.Name
	}

	scholarship := &models.Scholarship{
		Name:         req.Name,
		Type:         req.Type,
		Description:  req.Description,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		ResultsDate:  req.ResultsDate,
		ActivityCode: req.ActivityCode,
		Cycle:        req.Cycle,
		Active:       true,
	}
	if err := s.scholarships.Create(ctx, scholarship, names, req.SlotsPerCareer); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create scholarship")
	}

	s.recordAudit(ctx, actor, "CREAR_CONVOCATORIA", scholarship.ID)
	return scholarship, nil
}

// Update edits a call.
func (s *ScholarshipService) Update(ctx context.Context, id string, req UpdateScholarshipRequest, actor *models.JWTClaims) (*models.Scholarship, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scholarship payload")
	}

	scholarship, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	scholarship.Name = req.Name
	scholarship.Type = req.Type
	scholarship.Description = req.Description
	scholarship.StartDate = req.StartDate
	scholarship.EndDate = req.EndDate
	scholarship.ResultsDate = req.ResultsDate
	scholarship.ActivityCode = req.ActivityCode
	scholarship.Cycle = req.Cycle
	scholarship.Active = req.Active

	if err := s.scholarships.Update(ctx, scholarship); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update scholarship")
	}
	s.recordAudit(ctx, actor, "EDITAR_CONVOCATORIA", scholarship.ID)
	return scholarship, nil
}

// Deactivate closes a call.
func (s *ScholarshipService) Deactivate(ctx context.Context, id string, actor *models.JWTClaims) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.scholarships.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate scholarship")
	}
	s.recordAudit(ctx, actor, "CERRAR_CONVOCATORIA", id)
	return nil
}

// Quotas returns the seat board for one call, seeding rows for careers added
// after the call opened.
func (s *ScholarshipService) Quotas(ctx context.Context, scholarshipID string) ([]models.ScholarshipQuota, error) {
	if _, err := s.Get(ctx, scholarshipID); err != nil {
		return nil, err
	}
	careers, err := s.careers.List(ctx, true)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list careers")
	}
	names := make([]string, len(careers))
	for i, career := range careers {
		names[i] = career.Name
	}
	if err := s.scholarships.InitMissingQuotas(ctx, scholarshipID, names, 0); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed quotas")
	}

	quotas, err := s.scholarships.ListQuotas(ctx, scholarshipID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list quotas")
	}
	return quotas, nil
}

// SetQuota changes the seat count for one career. Shrinking the total below
// the seats already consumed is rejected.
func (s *ScholarshipService) SetQuota(ctx context.Context, scholarshipID string, req SetQuotaRequest, actor *models.JWTClaims) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid quota payload")
	}
	if err := s.scholarships.SetQuotaTotal(ctx, scholarshipID, req.Career, req.TotalSlots); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no quota allocated for career %q", req.Career))
		case errors.Is(err, repository.ErrQuotaBelowUsage):
			return appErrors.Clone(appErrors.ErrValidation, "total slots cannot drop below seats already in use")
		default:
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store quota")
		}
	}
	s.recordAudit(ctx, actor, "AJUSTAR_CUPO", scholarshipID)
	return nil
}

func (s *ScholarshipService) recordAudit(ctx context.Context, actor *models.JWTClaims, action string, resourceID string) {
	if actor == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:     actor.UserID,
		UserEmail:  actor.Email,
		UserRole:   string(actor.Role),
		Action:     action,
		Module:     models.ModuleBecas,
		ResourceID: &resourceID,
	}
	if err := s.audit.Insert(ctx, entry); err != nil {
		s.logger.Warn("failed to record scholarship audit log", zap.Error(err))
	}
}
