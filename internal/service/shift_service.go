package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/salvaalejos/ceitm-web/internal/models"
	appErrors "github.com/salvaalejos/ceitm-web/pkg/errors"
)

type shiftRepository interface {
	ListWeek(ctx context.Context) ([]models.ShiftDetail, error)
	ListForUser(ctx context.Context, userID string) ([]models.Shift, error)
	SlotTaken(ctx context.Context, day models.DayOfWeek, hour int) (bool, error)
	Create(ctx context.Context, shift *models.Shift) error
	Delete(ctx context.Context, id string) error
}

// AssignShiftRequest claims one guard-duty slot on the weekly grid.
type AssignShiftRequest struct {
	Day  string `json:"day" validate:"required,oneof=Lunes Martes 'Miércoles' Jueves Viernes"`
	Hour int    `json:"hour" validate:"required,min=7,max=19"`
}

// ShiftService manages the weekly guard-duty grid for the council office.
type ShiftService struct {
	shifts    shiftRepository
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewShiftService constructs a ShiftService.
func NewShiftService(shifts shiftRepository, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *ShiftService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ShiftService{shifts: shifts, audit: audit, validator: validate, logger: logger}
}

// Week returns the full weekly grid with assignee names.
func (s *ShiftService) Week(ctx context.Context) ([]models.ShiftDetail, error) {
	shifts, err := s.shifts.ListWeek(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list shifts")
	}
	return shifts, nil
}

// Mine returns the caller's own shifts.
func (s *ShiftService) Mine(ctx context.Context, actor *models.JWTClaims) ([]models.Shift, error) {
	shifts, err := s.shifts.ListForUser(ctx, actor.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list shifts")
	}
	return shifts, nil
}

// Assign claims a slot for the caller. A slot holds one member at a time.
func (s *ShiftService) Assign(ctx context.Context, req AssignShiftRequest, actor *models.JWTClaims) (*models.Shift, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shift payload")
	}

	day := models.DayOfWeek(req.Day)
	taken, err := s.shifts.SlotTaken(ctx, day, req.Hour)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slot")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "that slot is already taken")
	}

	shift := &models.Shift{
		UserID: actor.UserID,
		Day:    day,
		Hour:   req.Hour,
	}
	if err := s.shifts.Create(ctx, shift); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign shift")
	}
	s.recordAudit(ctx, actor, "ASIGNAR_GUARDIA", shift.ID)
	return shift, nil
}

// Release frees a slot. Members may release their own; admins may release any.
func (s *ShiftService) Release(ctx context.Context, id string, actor *models.JWTClaims) error {
	if actor.Role != models.RoleAdminSys && actor.Role != models.RoleEstructura {
		mine, err := s.shifts.ListForUser(ctx, actor.UserID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check shift ownership")
		}
		owned := false
		for _, shift := range mine {
			if shift.ID == id {
				owned = true
				break
			}
		}
		if !owned {
			return appErrors.Clone(appErrors.ErrForbidden, "you can only release your own shifts")
		}
	}
	if err := s.shifts.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to release shift")
	}
	s.recordAudit(ctx, actor, "LIBERAR_GUARDIA", id)
	return nil
}

func (s *ShiftService) recordAudit(ctx context.Context, actor *models.JWTClaims, action string, resourceID string) {
	if actor == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:     actor.UserID,
		UserEmail:  actor.Email,
		UserRole:   string(actor.Role),
		Action:     action,
		Module:     models.ModuleGuardias,
		ResourceID: &resourceID,
	}
	if err := s.audit.Insert(ctx, entry); err != nil {
		s.logger.Warn("failed to record shift audit log", zap.Error(err))
	}
}
