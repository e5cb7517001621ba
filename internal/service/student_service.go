package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/salvaalejos/ceitm-web/internal/models"
	appErrors "github.com/salvaalejos/ceitm-web/pkg/errors"
)

type studentRepository interface {
	ListHolders(ctx context.Context, career string, search string, page, size int) ([]models.StudentDetail, int, error)
	FindByControlNumber(ctx context.Context, controlNumber string) (*models.Student, error)
	SetBlacklisted(ctx context.Context, controlNumber string, blacklisted bool) error
	History(ctx context.Context, controlNumber string) ([]models.ApplicationDetail, error)
}

// StudentService exposes the scholarship-holder registry to staff.
type StudentService struct {
	students studentRepository
	audit    auditRecorder
	logger   *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(students studentRepository, audit auditRecorder, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{students: students, audit: audit, logger: logger}
}

// ListHolders returns scholarship holders, forcing the career filter when
// scoped.
func (s *StudentService) ListHolders(ctx context.Context, career, search string, page, size int, careerScope string) ([]models.StudentDetail, int, error) {
	if careerScope != "" {
		career = careerScope
	}
	students, total, err := s.students.ListHolders(ctx, career, search, page, size)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, total, nil
}

// History returns a student's full application record.
func (s *StudentService) History(ctx context.Context, controlNumber string) ([]models.ApplicationDetail, error) {
	if _, err := s.get(ctx, controlNumber); err != nil {
		return nil, err
	}
	history, err := s.students.History(ctx, controlNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch history")
	}
	return history, nil
}

// SetBlacklist toggles the blacklist flag. Admin only.
func (s *StudentService) SetBlacklist(ctx context.Context, controlNumber string, blacklisted bool, actor *models.JWTClaims) (*models.Student, error) {
	student, err := s.get(ctx, controlNumber)
	if err != nil {
		return nil, err
	}
	if err := s.students.SetBlacklisted(ctx, controlNumber, blacklisted); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update blacklist")
	}
	student.Blacklisted = blacklisted

	action := "QUITAR_LISTA_NEGRA"
	if blacklisted {
		action = "AGREGAR_LISTA_NEGRA"
	}
	if actor != nil {
		entry := &models.AuditLog{
			UserID:     actor.UserID,
			UserEmail:  actor.Email,
			UserRole:   string(actor.Role),
			Action:     action,
			Module:     models.ModuleAlumnos,
			ResourceID: &student.ControlNumber,
		}
		if err := s.audit.Insert(ctx, entry); err != nil {
			s.logger.Warn("failed to record student audit log", zap.Error(err))
		}
	}
	return student, nil
}

func (s *StudentService) get(ctx context.Context, controlNumber string) (*models.Student, error) {
	student, err := s.students.FindByControlNumber(ctx, controlNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}
	return student, nil
}
