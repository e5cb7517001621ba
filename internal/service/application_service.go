package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/salvaalejos/ceitm-web/internal/models"
	"github.com/salvaalejos/ceitm-web/internal/repository"
	appErrors "github.com/salvaalejos/ceitm-web/pkg/errors"
)

type applicationRepository interface {
	FindLatestForPair(ctx context.Context, scholarshipID, controlNumber string) (*models.ScholarshipApplication, error)
	CreateSubmission(ctx context.Context, app *models.ScholarshipApplication, student *models.Student) error
	GetByID(ctx context.Context, id string) (*models.ScholarshipApplication, error)
	GetDetail(ctx context.Context, id string) (*models.ApplicationDetail, error)
	ListPublicByControlNumber(ctx context.Context, controlNumber string) ([]models.ApplicationPublicView, error)
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error)
	ListAll(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, error)
	Resubmit(ctx context.Context, app *models.ScholarshipApplication) error
	ApplyTransition(ctx context.Context, plan repository.TransitionPlan) error
}

type applicationScholarshipReader interface {
	FindByID(ctx context.Context, id string) (*models.Scholarship, error)
	GetQuota(ctx context.Context, scholarshipID, career string) (*models.ScholarshipQuota, error)
}

type applicationStudentReader interface {
	FindByControlNumber(ctx context.Context, controlNumber string) (*models.Student, error)
}

type applicationNotifier interface {
	ApplicationReceived(app *models.ScholarshipApplication, scholarshipName string)
	ApplicationStatusChanged(app *models.ScholarshipApplication, scholarshipName string, status models.ApplicationStatus, comments *string)
}

// SubmitApplicationRequest is the public submission payload.
type SubmitApplicationRequest struct {
	ScholarshipID string `json:"scholarship_id" validate:"required,uuid4"`

	FullName      string `json:"full_name" validate:"required,min=5"`
	Email         string `json:"email" validate:"required,email"`
	PhoneNumber   string `json:"phone_number" validate:"required,min=10"`
	ControlNumber string `json:"control_number" validate:"required,min=8,max=9"`
	Career        string `json:"career" validate:"required"`
	CareerID      string `json:"career_id" validate:"omitempty,uuid4"`
	Semester      string `json:"semester" validate:"required"`

	CLEControlNumber *string `json:"cle_control_number"`
	LevelToEnter     *string `json:"level_to_enter"`

	Address            string  `json:"address" validate:"required"`
	OriginAddress      string  `json:"origin_address" validate:"required"`
	EconomicDependence string  `json:"economic_dependence" validate:"required"`
	DependentsCount    int     `json:"dependents_count" validate:"gte=0"`
	FamilyIncome       float64 `json:"family_income" validate:"gte=0"`
	IncomePerCapita    float64 `json:"income_per_capita" validate:"gte=0"`

	PreviousScholarship *string `json:"previous_scholarship"`
	Activities          *string `json:"activities"`
	Motives             string  `json:"motives" validate:"required,min=20"`

	DocRequest  *string `json:"doc_request"`
	DocMotives  *string `json:"doc_motives"`
	DocAddress  *string `json:"doc_address"`
	DocIncome   *string `json:"doc_income"`
	DocINE      *string `json:"doc_ine"`
	DocSchoolID *string `json:"doc_school_id"`
	DocSchedule *string `json:"doc_schedule"`
	DocExtra    *string `json:"doc_extra"`
}

// TransitionRequest is the staff status-change payload.
type TransitionRequest struct {
	Status   models.ApplicationStatus `json:"status" validate:"required"`
	Comments *string                  `json:"comments"`
	Folio    *string                  `json:"folio"`
}

// ApplicationService drives the scholarship application lifecycle.
type ApplicationService struct {
	apps         applicationRepository
	scholarships applicationScholarshipReader
	students     applicationStudentReader
	notifier     applicationNotifier
	validator    *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
}

// NewApplicationService constructs an ApplicationService.
func NewApplicationService(apps applicationRepository, scholarships applicationScholarshipReader, students applicationStudentReader, notifier applicationNotifier, validate *validator.Validate, logger *zap.Logger) *ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ApplicationService{
		apps:         apps,
		scholarships: scholarships,
		students:     students,
		notifier:     notifier,
		validator:    validate,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Submit files an application from the public form. A prior application for
// the same scholarship and control number in a fixable state is overwritten
// in place and returned to pending review; any other prior application
// blocks the submission.
func (s *ApplicationService) Submit(ctx context.Context, req SubmitApplicationRequest) (*models.ScholarshipApplication, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}

	scholarship, err := s.scholarships.FindByID(ctx, req.ScholarshipID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "scholarship not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch scholarship")
	}
	if !scholarship.Open(s.now()) {
		return nil, appErrors.Clone(appErrors.ErrWindowClosed, "the registration window for this scholarship is closed")
	}

	student, err := s.students.FindByControlNumber(ctx, req.ControlNumber)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}
	if student != nil && student.Blacklisted {
		return nil, appErrors.Clone(appErrors.ErrBlacklisted, "this control number is not allowed to apply")
	}

	prior, err := s.apps.FindLatestForPair(ctx, req.ScholarshipID, req.ControlNumber)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing applications")
	}
	if prior != nil {
		if !prior.Status.Fixable() {
			return nil, appErrors.Clone(appErrors.ErrConflict, "an active application already exists for this scholarship")
		}
		return s.overwrite(ctx, prior, req, scholarship)
	}

	app := s.buildApplication(req)
	registry := &models.Student{
		ControlNumber: req.ControlNumber,
		FullName:      req.FullName,
		Email:         strings.ToLower(req.Email),
		PhoneNumber:   &req.PhoneNumber,
	}
	if req.CareerID != "" {
		registry.CareerID = &req.CareerID
	}
	if err := s.apps.CreateSubmission(ctx, app, registry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store application")
	}

	s.notifier.ApplicationReceived(app, scholarship.Name)
	s.logger.Info("application submitted",
		zap.String("application_id", app.ID),
		zap.String("scholarship_id", scholarship.ID),
		zap.String("career", app.Career))
	return app, nil
}

// Resubmit lets an applicant correct a fixable application addressed by id.
func (s *ApplicationService) Resubmit(ctx context.Context, id string, req SubmitApplicationRequest) (*models.ScholarshipApplication, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}

	current, err := s.apps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch application")
	}
	if !current.Status.Fixable() {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("an application in state %q cannot be corrected", current.Status))
	}
	if current.ControlNumber != req.ControlNumber || current.ScholarshipID != req.ScholarshipID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "control number and scholarship cannot change on correction")
	}

	scholarship, err := s.scholarships.FindByID(ctx, current.ScholarshipID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch scholarship")
	}
	return s.overwrite(ctx, current, req, scholarship)
}

// overwrite replaces a fixable application's data in place, clearing the
// review comments and returning it to pending review.
func (s *ApplicationService) overwrite(ctx context.Context, current *models.ScholarshipApplication, req SubmitApplicationRequest, scholarship *models.Scholarship) (*models.ScholarshipApplication, error) {
	updated := s.buildApplication(req)
	updated.ID = current.ID
	updated.Career = current.Career
	updated.CreatedAt = current.CreatedAt
	if err := s.apps.Resubmit(ctx, updated); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "the application state changed, reload and retry")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store correction")
	}
	updated.Status = models.StatusPendiente
	updated.AdminComments = nil

	s.notifier.ApplicationReceived(updated, scholarship.Name)
	s.logger.Info("application resubmitted",
		zap.String("application_id", updated.ID),
		zap.String("scholarship_id", scholarship.ID),
		zap.String("career", updated.Career))
	return updated, nil
}

// Track returns the public projection of every application filed under a
// control number.
func (s *ApplicationService) Track(ctx context.Context, controlNumber string) ([]models.ApplicationPublicView, error) {
	views, err := s.apps.ListPublicByControlNumber(ctx, controlNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch applications")
	}
	return views, nil
}

// Get returns the full staff detail of one application. A non-empty
// careerScope restricts access to that career's rows.
func (s *ApplicationService) Get(ctx context.Context, id string, careerScope string) (*models.ApplicationDetail, error) {
	detail, err := s.apps.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch application")
	}
	if careerScope != "" && detail.Career != careerScope {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "application belongs to another career")
	}
	return detail, nil
}

// List returns the staff listing, forcing the career filter when scoped.
func (s *ApplicationService) List(ctx context.Context, filter models.ApplicationFilter, careerScope string) ([]models.ApplicationDetail, int, error) {
	if careerScope != "" {
		filter.Career = careerScope
	}
	apps, total, err := s.apps.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	return apps, total, nil
}

// Export returns every matching application for the CSV download.
func (s *ApplicationService) Export(ctx context.Context, filter models.ApplicationFilter, careerScope string) ([]models.ApplicationDetail, error) {
	if careerScope != "" {
		filter.Career = careerScope
	}
	apps, err := s.apps.ListAll(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to export applications")
	}
	return apps, nil
}

// Transition moves an application to a new lifecycle state, applying quota
// side effects and folio assignment atomically.
func (s *ApplicationService) Transition(ctx context.Context, id string, req TransitionRequest, actor *models.JWTClaims, careerScope string, ip string) (*models.ScholarshipApplication, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid transition payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", req.Status))
	}

	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch application")
	}
	if careerScope != "" && app.Career != careerScope {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "application belongs to another career")
	}

	scholarship, err := s.scholarships.FindByID(ctx, app.ScholarshipID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch scholarship")
	}

	plan := repository.TransitionPlan{
		ApplicationID: app.ID,
		FromStatus:    app.Status,
		ToStatus:      req.Status,
		AdminComments: req.Comments,
		ScholarshipID: app.ScholarshipID,
		Career:        app.Career,
	}
	if req.Status == models.StatusAprobada && app.Status != models.StatusAprobada {
		// The guarded increment enforces the seat limit, but a missing
		// quota row must surface as a conflict, not a silent miss.
		if _, err := s.scholarships.GetQuota(ctx, app.ScholarshipID, app.Career); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("no quota allocated for career %q", app.Career))
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch quota")
		}
		plan.IncrementQuota = true
	}
	if app.Status == models.StatusAprobada && req.Status != models.StatusAprobada {
		plan.DecrementQuota = true
	}
	if req.Status == models.StatusLiberada && app.ReleaseFolio == nil {
		folio := req.Folio
		if folio == nil || *folio == "" {
			generated := releaseFolio(scholarship, app.ControlNumber, s.now())
			folio = &generated
		}
		plan.ReleaseFolio = folio
	}

	plan.Audit = &models.AuditLog{
		UserID:     actor.UserID,
		UserEmail:  actor.Email,
		UserRole:   string(actor.Role),
		Action:     fmt.Sprintf("TRANSICION_%s", statusSlug(req.Status)),
		Module:     models.ModuleBecas,
		ResourceID: &app.ID,
	}
	if ip != "" {
		plan.Audit.IPAddress = &ip
	}
	details := fmt.Sprintf(`{"from":%q,"to":%q}`, app.Status, req.Status)
	plan.Audit.Details = &details

	if err := s.apps.ApplyTransition(ctx, plan); err != nil {
		switch {
		case errors.Is(err, repository.ErrQuotaExhausted):
			return nil, appErrors.Clone(appErrors.ErrQuotaFull, fmt.Sprintf("no seats left for career %q", app.Career))
		case errors.Is(err, repository.ErrStaleStatus):
			return nil, appErrors.Clone(appErrors.ErrConflict, "the application state changed, reload and retry")
		case errors.Is(err, repository.ErrFolioTaken):
			return nil, appErrors.Clone(appErrors.ErrConflict, "the release folio is already assigned to another application")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply transition")
		}
	}

	app.Status = req.Status
	if req.Comments != nil {
		app.AdminComments = req.Comments
	}
	if plan.ReleaseFolio != nil {
		app.ReleaseFolio = plan.ReleaseFolio
	}
	s.notifier.ApplicationStatusChanged(app, scholarship.Name, req.Status, req.Comments)
	s.logger.Info("application transition",
		zap.String("application_id", app.ID),
		zap.String("from", string(plan.FromStatus)),
		zap.String("to", string(req.Status)),
		zap.String("by", actor.Email))
	return app, nil
}

func (s *ApplicationService) buildApplication(req SubmitApplicationRequest) *models.ScholarshipApplication {
	return &models.ScholarshipApplication{
		ScholarshipID:       req.ScholarshipID,
		FullName:            req.FullName,
		Email:               strings.ToLower(req.Email),
		PhoneNumber:         req.PhoneNumber,
		ControlNumber:       req.ControlNumber,
		Career:              req.Career,
		Semester:            req.Semester,
		CLEControlNumber:    req.CLEControlNumber,
		LevelToEnter:        req.LevelToEnter,
		Address:             req.Address,
		OriginAddress:       req.OriginAddress,
		EconomicDependence:  req.EconomicDependence,
		DependentsCount:     req.DependentsCount,
		FamilyIncome:        req.FamilyIncome,
		IncomePerCapita:     req.IncomePerCapita,
		PreviousScholarship: req.PreviousScholarship,
		Activities:          req.Activities,
		Motives:             req.Motives,
		DocRequest:          req.DocRequest,
		DocMotives:          req.DocMotives,
		DocAddress:          req.DocAddress,
		DocIncome:           req.DocIncome,
		DocINE:              req.DocINE,
		DocSchoolID:         req.DocSchoolID,
		DocSchedule:         req.DocSchedule,
		DocExtra:            req.DocExtra,
		Status:              models.StatusPendiente,
	}
}

// releaseFolio builds the deterministic release identifier:
// {activity_code}{type_code}-{control_number}-{YY}{period}. The year and
// period letter come from the scholarship's academic cycle, so a release
// processed after the period boundary still stamps the cycle it belongs to.
func releaseFolio(scholarship *models.Scholarship, controlNumber string, now time.Time) string {
	year, period := cycleStamp(scholarship.Cycle, now)
	return fmt.Sprintf("%s%s-%s-%s%s",
		scholarship.ActivityCode,
		scholarship.Type.Code(),
		controlNumber,
		year,
		period)
}

// cycleStamp parses a cycle written as "2026-1" or "26-2" into the
// two-digit year and A/B period letter. A cycle it cannot read falls back
// to the release instant.
func cycleStamp(cycle string, now time.Time) (string, string) {
	year, period, ok := strings.Cut(cycle, "-")
	if ok {
		if len(year) == 4 {
			year = year[2:]
		}
		if _, err := strconv.Atoi(year); err == nil && len(year) == 2 {
			switch period {
			case "1", "A", "a":
				return year, "A"
			case "2", "B", "b":
				return year, "B"
			}
		}
	}
	period = "A"
	if now.Month() >= time.July {
		period = "B"
	}
	return fmt.Sprintf("%02d", now.Year()%100), period
}

func statusSlug(status models.ApplicationStatus) string {
	slug := strings.ToUpper(string(status))
	slug = strings.NewReplacer("Á", "A", "É", "E", "Í", "I", "Ó", "O", "Ú", "U", " ", "_").Replace(slug)
	return slug
}
