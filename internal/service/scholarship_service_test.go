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

type mockScholarshipRepo struct {
	scholarship    *models.Scholarship
	created        *models.Scholarship
	seededCareers  []string
	seededSlots    int
	quotas         []models.ScholarshipQuota
	initCareers    []string
	setQuotaErr    error
	setQuotaCalls  int
	setQuotaTotal  int
	setQuotaCareer string
}

func (m *mockScholarshipRepo) List(ctx context.Context, onlyActive bool) ([]models.Scholarship, error) {
	return nil, nil
}

func (m *mockScholarshipRepo) FindByID(ctx context.Context, id string) (*models.Scholarship, error) {
	if m.scholarship == nil {
		return nil, sql.ErrNoRows
	}
	return m.scholarship, nil
}

func (m *mockScholarshipRepo) Create(ctx context.Context, scholarship *models.Scholarship, careers []string, slotsPerCareer int) error {
	scholarship.ID = "sch-1"
	m.created = scholarship
	m.seededCareers = careers
	m.seededSlots = slotsPerCareer
	return nil
}

func (m *mockScholarshipRepo) Update(ctx context.Context, scholarship *models.Scholarship) error {
	return nil
}

func (m *mockScholarshipRepo) Deactivate(ctx context.Context, id string) error {
	return nil
}

func (m *mockScholarshipRepo) ListQuotas(ctx context.Context, scholarshipID string) ([]models.ScholarshipQuota, error) {
	return m.quotas, nil
}

func (m *mockScholarshipRepo) InitMissingQuotas(ctx context.Context, scholarshipID string, careers []string, slotsPerCareer int) error {
	m.initCareers = careers
	return nil
}

func (m *mockScholarshipRepo) SetQuotaTotal(ctx context.Context, scholarshipID, career string, total int) error {
	m.setQuotaCalls++
	m.setQuotaCareer = career
	m.setQuotaTotal = total
	return m.setQuotaErr
}

type mockCareerReader struct {
	careers []models.Career
}

func (m *mockCareerReader) List(ctx context.Context, onlyActive bool) ([]models.Career, error) {
	return m.careers, nil
}

func validScholarship() CreateScholarshipRequest {
	return CreateScholarshipRequest{
		Name:           "Beca Alimenticia Agosto 2026",
		Type:           models.ScholarshipAlimenticia,
		Description:    "Apoyo alimenticio en la cafetería del instituto.",
		StartDate:      time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC),
		ResultsDate:    time.Date(2026, time.September, 7, 0, 0, 0, 0, time.UTC),
		ActivityCode:   "101",
		Cycle:          "2026-2027",
		SlotsPerCareer: 15,
	}
}

func TestCreateScholarshipSeedsQuotaPerCareer(t *testing.T) {
	repo := &mockScholarshipRepo{}
	careers := &mockCareerReader{careers: []models.Career{
		{Name: "Ingeniería en Sistemas Computacionales"},
		{Name: "Arquitectura"},
	}}
	svc := NewScholarshipService(repo, careers, &mockAudit{}, nil, nil)

	scholarship, err := svc.Create(context.Background(), validScholarship(), staffClaims())

	require.NoError(t, err)
	assert.True(t, scholarship.Active)
	assert.Equal(t, []string{"Ingeniería en Sistemas Computacionales", "Arquitectura"}, repo.seededCareers)
	assert.Equal(t, 15, repo.seededSlots)
}

func TestCreateScholarshipRejectsInvertedDates(t *testing.T) {
	svc := NewScholarshipService(&mockScholarshipRepo{}, &mockCareerReader{}, &mockAudit{}, nil, nil)

	req := validScholarship()
	req.EndDate = req.StartDate.Add(-24 * time.Hour)
	_, err := svc.Create(context.Background(), req, staffClaims())

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestQuotasSeedsRowsForNewCareers(t *testing.T) {
	repo := &mockScholarshipRepo{
		scholarship: openScholarship(),
		quotas: []models.ScholarshipQuota{
			{Career: "Arquitectura", TotalSlots: 10, UsedSlots: 4},
		},
	}
	careers := &mockCareerReader{careers: []models.Career{{Name: "Arquitectura"}, {Name: "Contaduría"}}}
	svc := NewScholarshipService(repo, careers, &mockAudit{}, nil, nil)

	quotas, err := svc.Quotas(context.Background(), "sch-1")

	require.NoError(t, err)
	assert.Equal(t, []string{"Arquitectura", "Contaduría"}, repo.initCareers)
	require.Len(t, quotas, 1)
	assert.Equal(t, 4, quotas[0].UsedSlots)
}

func TestSetQuotaBelowUsedSeatsIsValidationError(t *testing.T) {
	repo := &mockScholarshipRepo{scholarship: openScholarship(), setQuotaErr: repository.ErrQuotaBelowUsage}
	svc := NewScholarshipService(repo, &mockCareerReader{}, &mockAudit{}, nil, nil)

	err := svc.SetQuota(context.Background(), "sch-1", SetQuotaRequest{Career: "Arquitectura", TotalSlots: 2}, staffClaims())

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 1, repo.setQuotaCalls)
}

func TestSetQuotaUnknownCareerIsNotFound(t *testing.T) {
	repo := &mockScholarshipRepo{scholarship: openScholarship(), setQuotaErr: sql.ErrNoRows}
	svc := NewScholarshipService(repo, &mockCareerReader{}, &mockAudit{}, nil, nil)

	err := svc.SetQuota(context.Background(), "sch-1", SetQuotaRequest{Career: "Gastronomía", TotalSlots: 10}, staffClaims())

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSetQuotaStoresNewTotal(t *testing.T) {
	repo := &mockScholarshipRepo{scholarship: openScholarship()}
	audit := &mockAudit{}
	svc := NewScholarshipService(repo, &mockCareerReader{}, audit, nil, nil)

	err := svc.SetQuota(context.Background(), "sch-1", SetQuotaRequest{Career: "Arquitectura", TotalSlots: 25}, staffClaims())

	require.NoError(t, err)
	assert.Equal(t, "Arquitectura", repo.setQuotaCareer)
	assert.Equal(t, 25, repo.setQuotaTotal)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, "AJUSTAR_CUPO", audit.entries[0].Action)
}
