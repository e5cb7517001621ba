package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salvaalejos/ceitm-web/internal/models"
	"github.com/salvaalejos/ceitm-web/internal/repository"
	appErrors "github.com/salvaalejos/ceitm-web/pkg/errors"
)

type mockApplicationRepo struct {
	prior      *models.ScholarshipApplication
	priorErr   error
	app        *models.ScholarshipApplication
	getErr     error
	submitted  *models.ScholarshipApplication
	student    *models.Student
	plan       *repository.TransitionPlan
	planErr    error
	resubmit   *models.ScholarshipApplication
	resubErr   error
	createErr  error
	submitCall int
}

func (m *mockApplicationRepo) FindLatestForPair(ctx context.Context, scholarshipID, controlNumber string) (*models.ScholarshipApplication, error) {
	if m.priorErr != nil {
		return nil, m.priorErr
	}
	if m.prior == nil {
		return nil, sql.ErrNoRows
	}
	return m.prior, nil
}

func (m *mockApplicationRepo) CreateSubmission(ctx context.Context, app *models.ScholarshipApplication, student *models.Student) error {
	m.submitCall++
	if m.createErr != nil {
		return m.createErr
	}
	app.ID = "app-1"
	m.submitted = app
	m.student = student
	return nil
}

func (m *mockApplicationRepo) GetByID(ctx context.Context, id string) (*models.ScholarshipApplication, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.app, nil
}

func (m *mockApplicationRepo) GetDetail(ctx context.Context, id string) (*models.ApplicationDetail, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &models.ApplicationDetail{ScholarshipApplication: *m.app}, nil
}

func (m *mockApplicationRepo) ListPublicByControlNumber(ctx context.Context, controlNumber string) ([]models.ApplicationPublicView, error) {
	return nil, nil
}

func (m *mockApplicationRepo) List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error) {
	return nil, 0, nil
}

func (m *mockApplicationRepo) ListAll(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, error) {
	return nil, nil
}

func (m *mockApplicationRepo) Resubmit(ctx context.Context, app *models.ScholarshipApplication) error {
	if m.resubErr != nil {
		return m.resubErr
	}
	m.resubmit = app
	return nil
}

func (m *mockApplicationRepo) ApplyTransition(ctx context.Context, plan repository.TransitionPlan) error {
	if m.planErr != nil {
		return m.planErr
	}
	m.plan = &plan
	return nil
}

type mockScholarshipReader struct {
	scholarship *models.Scholarship
	quota       *models.ScholarshipQuota
	quotaErr    error
}

func (m *mockScholarshipReader) FindByID(ctx context.Context, id string) (*models.Scholarship, error) {
	if m.scholarship == nil {
		return nil, sql.ErrNoRows
	}
	return m.scholarship, nil
}

func (m *mockScholarshipReader) GetQuota(ctx context.Context, scholarshipID, career string) (*models.ScholarshipQuota, error) {
	if m.quotaErr != nil {
		return nil, m.quotaErr
	}
	return m.quota, nil
}

type mockStudentReader struct {
	student *models.Student
}

func (m *mockStudentReader) FindByControlNumber(ctx context.Context, controlNumber string) (*models.Student, error) {
	if m.student == nil {
		return nil, sql.ErrNoRows
	}
	return m.student, nil
}

type mockNotifier struct {
	received      int
	statusChanges []models.ApplicationStatus
}

func (m *mockNotifier) ApplicationReceived(app *models.ScholarshipApplication, scholarshipName string) {
	m.received++
}

func (m *mockNotifier) ApplicationStatusChanged(app *models.ScholarshipApplication, scholarshipName string, status models.ApplicationStatus, comments *string) {
	m.statusChanges = append(m.statusChanges, status)
}

func openScholarship() *models.Scholarship {
	return &models.Scholarship{
		ID:           "11111111-1111-4111-8111-111111111111",
		Name:         "Beca Alimenticia 2026",
		Type:         models.ScholarshipAlimenticia,
		ActivityCode: "101",
		Cycle:        "2026-1",
		StartDate:    time.Now().Add(-24 * time.Hour),
		EndDate:      time.Now().Add(24 * time.Hour),
		Active:       true,
	}
}

func validSubmission() SubmitApplicationRequest {
	return SubmitApplicationRequest{
		ScholarshipID:      "11111111-1111-4111-8111-111111111111",
		FullName:           "María Guadalupe Torres",
		Email:              "Maria.Torres@example.com",
		PhoneNumber:        "4431234567",
		ControlNumber:      "20120345",
		Career:             "Ingeniería en Sistemas Computacionales",
		Semester:           "5",
		Address:            "Av. Tecnológico 1500, Morelia",
		OriginAddress:      "Uruapan, Michoacán",
		EconomicDependence: "Padres",
		DependentsCount:    2,
		FamilyIncome:       8000,
		IncomePerCapita:    1600,
		Motives:            "Necesito apoyo para continuar mis estudios este semestre.",
	}
}

func staffClaims() *models.JWTClaims {
	return &models.JWTClaims{
		UserID: "user-1",
		Role:   models.RoleAdminSys,
		Email:  "admin@ceitm.mx",
	}
}

func TestSubmitStoresApplicationAndNotifies(t *testing.T) {
	repo := &mockApplicationRepo{}
	notifier := &mockNotifier{}
	svc := NewApplicationService(repo, &mockScholarshipReader{scholarship: openScholarship()}, &mockStudentReader{}, notifier, nil, nil)

	app, err := svc.Submit(context.Background(), validSubmission())

	require.NoError(t, err)
	assert.Equal(t, "app-1", app.ID)
	assert.Equal(t, models.StatusPendiente, app.Status)
	assert.Equal(t, "maria.torres@example.com", app.Email)
	require.NotNil(t, repo.student)
	assert.Equal(t, "20120345", repo.student.ControlNumber)
	assert.Equal(t, 1, notifier.received)
}

func TestSubmitRejectsClosedWindow(t *testing.T) {
	closed := openScholarship()
	closed.EndDate = time.Now().Add(-time.Hour)
	svc := NewApplicationService(&mockApplicationRepo{}, &mockScholarshipReader{scholarship: closed}, &mockStudentReader{}, &mockNotifier{}, nil, nil)

	_, err := svc.Submit(context.Background(), validSubmission())

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrWindowClosed.Code, appErrors.FromError(err).Code)
}

func TestSubmitRejectsBlacklistedStudent(t *testing.T) {
	students := &mockStudentReader{student: &models.Student{ControlNumber: "20120345", Blacklisted: true}}
	svc := NewApplicationService(&mockApplicationRepo{}, &mockScholarshipReader{scholarship: openScholarship()}, students, &mockNotifier{}, nil, nil)

	_, err := svc.Submit(context.Background(), validSubmission())

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBlacklisted.Code, appErrors.FromError(err).Code)
}

func TestSubmitRejectsDuplicateLiveApplication(t *testing.T) {
	repo := &mockApplicationRepo{prior: &models.ScholarshipApplication{
		ID:            "app-7",
		ScholarshipID: "11111111-1111-4111-8111-111111111111",
		ControlNumber: "20120345",
		Status:        models.StatusEnRevision,
	}}
	svc := NewApplicationService(repo, &mockScholarshipReader{scholarship: openScholarship()}, &mockStudentReader{}, &mockNotifier{}, nil, nil)

	_, err := svc.Submit(context.Background(), validSubmission())

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.submitCall)
}

func TestSubmitAfterRejectionOverwritesSameApplication(t *testing.T) {
	comments := "Comprobante de ingresos ilegible"
	repo := &mockApplicationRepo{prior: &models.ScholarshipApplication{
		ID:            "app-7",
		ScholarshipID: "11111111-1111-4111-8111-111111111111",
		ControlNumber: "20120345",
		Career:        "Ingeniería en Sistemas Computacionales",
		Status:        models.StatusRechazada,
		AdminComments: &comments,
	}}
	notifier := &mockNotifier{}
	svc := NewApplicationService(repo, &mockScholarshipReader{scholarship: openScholarship()}, &mockStudentReader{}, notifier, nil, nil)

	app, err := svc.Submit(context.Background(), validSubmission())

	require.NoError(t, err)
	assert.Equal(t, "app-7", app.ID)
	assert.Equal(t, models.StatusPendiente, app.Status)
	assert.Nil(t, app.AdminComments)
	// The prior row is rewritten in place, never duplicated.
	assert.Zero(t, repo.submitCall)
	require.NotNil(t, repo.resubmit)
	assert.Equal(t, "app-7", repo.resubmit.ID)
	assert.Equal(t, 1, notifier.received)
}

func TestSubmitAfterMissingDocsReturnsToPending(t *testing.T) {
	repo := &mockApplicationRepo{prior: &models.ScholarshipApplication{
		ID:            "app-7",
		ScholarshipID: "11111111-1111-4111-8111-111111111111",
		ControlNumber: "20120345",
		Career:        "Ingeniería en Sistemas Computacionales",
		Status:        models.StatusDocFaltante,
	}}
	svc := NewApplicationService(repo, &mockScholarshipReader{scholarship: openScholarship()}, &mockStudentReader{}, &mockNotifier{}, nil, nil)

	app, err := svc.Submit(context.Background(), validSubmission())

	require.NoError(t, err)
	assert.Equal(t, "app-7", app.ID)
	assert.Equal(t, models.StatusPendiente, app.Status)
	assert.Zero(t, repo.submitCall)
}

func TestResubmitRequiresFixableState(t *testing.T) {
	repo := &mockApplicationRepo{app: &models.ScholarshipApplication{
		ID:            "app-1",
		ScholarshipID: "11111111-1111-4111-8111-111111111111",
		ControlNumber: "20120345",
		Status:        models.StatusAprobada,
	}}
	svc := NewApplicationService(repo, &mockScholarshipReader{scholarship: openScholarship()}, &mockStudentReader{}, &mockNotifier{}, nil, nil)

	_, err := svc.Resubmit(context.Background(), "app-1", validSubmission())

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestResubmitResetsStatusToPendiente(t *testing.T) {
	repo := &mockApplicationRepo{app: &models.ScholarshipApplication{
		ID:            "app-1",
		ScholarshipID: "11111111-1111-4111-8111-111111111111",
		ControlNumber: "20120345",
		Career:        "Ingeniería en Sistemas Computacionales",
		Status:        models.StatusDocFaltante,
	}}
	svc := NewApplicationService(repo, &mockScholarshipReader{scholarship: openScholarship()}, &mockStudentReader{}, &mockNotifier{}, nil, nil)

	app, err := svc.Resubmit(context.Background(), "app-1", validSubmission())

	require.NoError(t, err)
	assert.Equal(t, models.StatusPendiente, app.Status)
	require.NotNil(t, repo.resubmit)
	assert.Equal(t, "app-1", repo.resubmit.ID)
}

func TestTransitionApproveIncrementsQuota(t *testing.T) {
	repo := &mockApplicationRepo{app: &models.ScholarshipApplication{
		ID:            "app-1",
		ScholarshipID: "11111111-1111-4111-8111-111111111111",
		ControlNumber: "20120345",
		Career:        "Arquitectura",
		Status:        models.StatusEnRevision,
	}}
	scholarships := &mockScholarshipReader{
		scholarship: openScholarship(),
		quota:       &models.ScholarshipQuota{TotalSlots: 10, UsedSlots: 3},
	}
	notifier := &mockNotifier{}
	svc := NewApplicationService(repo, scholarships, &mockStudentReader{}, notifier, nil, nil)

	app, err := svc.Transition(context.Background(), "app-1", TransitionRequest{Status: models.StatusAprobada}, staffClaims(), "", "10.0.0.1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusAprobada, app.Status)
	require.NotNil(t, repo.plan)
	assert.True(t, repo.plan.IncrementQuota)
	assert.False(t, repo.plan.DecrementQuota)
	require.NotNil(t, repo.plan.Audit)
	assert.Equal(t, "TRANSICION_APROBADA", repo.plan.Audit.Action)
	assert.Equal(t, []models.ApplicationStatus{models.StatusAprobada}, notifier.statusChanges)
}

func TestTransitionQuotaFullMapsToTypedError(t *testing.T) {
	repo := &mockApplicationRepo{
		app: &models.ScholarshipApplication{
			ID:            "app-1",
			ScholarshipID: "11111111-1111-4111-8111-111111111111",
			Career:        "Arquitectura",
			Status:        models.StatusPendiente,
		},
		planErr: repository.ErrQuotaExhausted,
	}
	scholarships := &mockScholarshipReader{
		scholarship: openScholarship(),
		quota:       &models.ScholarshipQuota{TotalSlots: 5, UsedSlots: 5},
	}
	svc := NewApplicationService(repo, scholarships, &mockStudentReader{}, &mockNotifier{}, nil, nil)

	_, err := svc.Transition(context.Background(), "app-1", TransitionRequest{Status: models.StatusAprobada}, staffClaims(), "", "")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrQuotaFull.Code, appErrors.FromError(err).Code)
}

func TestTransitionOutOfApprovedDecrementsQuota(t *testing.T) {
	repo := &mockApplicationRepo{app: &models.ScholarshipApplication{
		ID:            "app-1",
		ScholarshipID: "11111111-1111-4111-8111-111111111111",
		ControlNumber: "20120345",
		Career:        "Arquitectura",
		Status:        models.StatusAprobada,
	}}
	svc := NewApplicationService(repo, &mockScholarshipReader{scholarship: openScholarship()}, &mockStudentReader{}, &mockNotifier{}, nil, nil)

	_, err := svc.Transition(context.Background(), "app-1", TransitionRequest{Status: models.StatusRechazada}, staffClaims(), "", "")

	require.NoError(t, err)
	require.NotNil(t, repo.plan)
	assert.True(t, repo.plan.DecrementQuota)
	assert.False(t, repo.plan.IncrementQuota)
}

func TestTransitionReleaseGeneratesFolioOnce(t *testing.T) {
	repo := &mockApplicationRepo{app: &models.ScholarshipApplication{
		ID:            "app-1",
		ScholarshipID: "11111111-1111-4111-8111-111111111111",
		ControlNumber: "20120345",
		Career:        "Arquitectura",
		Status:        models.StatusAprobada,
	}}
	svc := NewApplicationService(repo, &mockScholarshipReader{scholarship: openScholarship()}, &mockStudentReader{}, &mockNotifier{}, nil, nil)
	svc.now = func() time.Time { return time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC) }

	app, err := svc.Transition(context.Background(), "app-1", TransitionRequest{Status: models.StatusLiberada}, staffClaims(), "", "")

	require.NoError(t, err)
	require.NotNil(t, app.ReleaseFolio)
	assert.Equal(t, "101A-20120345-26A", *app.ReleaseFolio)
	// Releasing an approved seat still frees the career quota.
	assert.True(t, repo.plan.DecrementQuota)
}

func TestTransitionKeepsExistingFolio(t *testing.T) {
	folio := "101A-20120345-25B"
	repo := &mockApplicationRepo{app: &models.ScholarshipApplication{
		ID:            "app-1",
		ScholarshipID: "11111111-1111-4111-8111-111111111111",
		ControlNumber: "20120345",
		Career:        "Arquitectura",
		Status:        models.StatusAprobada,
		ReleaseFolio:  &folio,
	}}
	svc := NewApplicationService(repo, &mockScholarshipReader{scholarship: openScholarship()}, &mockStudentReader{}, &mockNotifier{}, nil, nil)

	app, err := svc.Transition(context.Background(), "app-1", TransitionRequest{Status: models.StatusLiberada}, staffClaims(), "", "")

	require.NoError(t, err)
	assert.Nil(t, repo.plan.ReleaseFolio)
	assert.Equal(t, folio, *app.ReleaseFolio)
}

func TestTransitionStaleStateMapsToConflict(t *testing.T) {
	repo := &mockApplicationRepo{
		app: &models.ScholarshipApplication{
			ID:            "app-1",
			ScholarshipID: "11111111-1111-4111-8111-111111111111",
			Career:        "Arquitectura",
			Status:        models.StatusPendiente,
		},
		planErr: repository.ErrStaleStatus,
	}
	svc := NewApplicationService(repo, &mockScholarshipReader{scholarship: openScholarship()}, &mockStudentReader{}, &mockNotifier{}, nil, nil)

	_, err := svc.Transition(context.Background(), "app-1", TransitionRequest{Status: models.StatusEnRevision}, staffClaims(), "", "")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestTransitionEnforcesCareerScope(t *testing.T) {
	repo := &mockApplicationRepo{app: &models.ScholarshipApplication{
		ID:            "app-1",
		ScholarshipID: "11111111-1111-4111-8111-111111111111",
		Career:        "Arquitectura",
		Status:        models.StatusPendiente,
	}}
	svc := NewApplicationService(repo, &mockScholarshipReader{scholarship: openScholarship()}, &mockStudentReader{}, &mockNotifier{}, nil, nil)

	_, err := svc.Transition(context.Background(), "app-1", TransitionRequest{Status: models.StatusEnRevision}, staffClaims(), "Ingeniería Civil", "")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestTransitionFolioCollisionMapsToConflict(t *testing.T) {
	folio := "101A-20129999-26A"
	repo := &mockApplicationRepo{
		app: &models.ScholarshipApplication{
			ID:            "app-1",
			ScholarshipID: "11111111-1111-4111-8111-111111111111",
			ControlNumber: "20120345",
			Career:        "Arquitectura",
			Status:        models.StatusAprobada,
		},
		planErr: repository.ErrFolioTaken,
	}
	svc := NewApplicationService(repo, &mockScholarshipReader{scholarship: openScholarship()}, &mockStudentReader{}, &mockNotifier{}, nil, nil)

	_, err := svc.Transition(context.Background(), "app-1", TransitionRequest{Status: models.StatusLiberada, Folio: &folio}, staffClaims(), "", "")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestReleaseFolioStampsAcademicCycle(t *testing.T) {
	// The cycle on the scholarship wins over the release date.
	august := time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC)

	first := openScholarship()
	first.Cycle = "2026-1"
	second := openScholarship()
	second.Cycle = "26-2"

	assert.Equal(t, "101A-19010101-26A", releaseFolio(first, "19010101", august))
	assert.Equal(t, "101A-19010101-26B", releaseFolio(second, "19010101", august))
}

func TestReleaseFolioFallsBackToReleaseDate(t *testing.T) {
	scholarship := openScholarship()
	scholarship.Cycle = "2026-2027"

	january := releaseFolio(scholarship, "19010101", time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC))
	august := releaseFolio(scholarship, "19010101", time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "101A-19010101-26A", january)
	assert.Equal(t, "101A-19010101-26B", august)
}
