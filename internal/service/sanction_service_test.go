package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salvaalejos/ceitm-web/internal/models"
	appErrors "github.com/salvaalejos/ceitm-web/pkg/errors"
)

type mockSanctionRepo struct {
	stored    *models.Sanction
	created   *models.Sanction
	setStatus []models.SanctionStatus
	deleted   string
}

func (m *mockSanctionRepo) ListForUser(context.Context, string) ([]models.Sanction, error) {
	if m.stored == nil {
		return nil, nil
	}
	return []models.Sanction{*m.stored}, nil
}

func (m *mockSanctionRepo) FindByID(context.Context, string) (*models.Sanction, error) {
	if m.stored == nil {
		return nil, sql.ErrNoRows
	}
	sanction := *m.stored
	return &sanction, nil
}

func (m *mockSanctionRepo) Create(_ context.Context, sanction *models.Sanction) error {
	sanction.ID = "sanction-1"
	m.created = sanction
	return nil
}

func (m *mockSanctionRepo) SetStatus(_ context.Context, _ string, status models.SanctionStatus) error {
	m.setStatus = append(m.setStatus, status)
	return nil
}

func (m *mockSanctionRepo) Delete(_ context.Context, id string) error {
	m.deleted = id
	return nil
}

type mockSanctionUsers struct {
	user *models.User
}

func (m *mockSanctionUsers) FindByID(context.Context, string) (*models.User, error) {
	if m.user == nil {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func TestSanctionCreateAgainstActiveMember(t *testing.T) {
	repo := &mockSanctionRepo{}
	users := &mockSanctionUsers{user: &models.User{ID: "a7f2b9d4-3c81-4e5a-9f60-1b2c3d4e5f60"}}
	audit := &mockAudit{}
	svc := NewSanctionService(repo, users, audit, nil, nil)

	sanction, err := svc.Create(context.Background(), CreateSanctionRequest{
		UserID:             "a7f2b9d4-3c81-4e5a-9f60-1b2c3d4e5f60",
		Severity:           "Grave",
		Reason:             "Inasistencia reiterada a guardias",
		PenaltyDescription: "Suspensión de voto por un mes",
	}, staffClaims())

	require.NoError(t, err)
	assert.Equal(t, models.SanctionPendiente, sanction.Status)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, "CREAR_SANCION", audit.entries[0].Action)
}

func TestSanctionCreateUnknownMember(t *testing.T) {
	svc := NewSanctionService(&mockSanctionRepo{}, &mockSanctionUsers{}, &mockAudit{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateSanctionRequest{
		UserID:             "a7f2b9d4-3c81-4e5a-9f60-1b2c3d4e5f60",
		Severity:           "Leve",
		Reason:             "Inasistencia reiterada a guardias",
		PenaltyDescription: "Amonestación escrita",
	}, staffClaims())

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSanctionCreateRejectsUnknownSeverity(t *testing.T) {
	svc := NewSanctionService(&mockSanctionRepo{}, &mockSanctionUsers{}, &mockAudit{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateSanctionRequest{
		UserID:             "a7f2b9d4-3c81-4e5a-9f60-1b2c3d4e5f60",
		Severity:           "Extrema",
		Reason:             "Inasistencia reiterada a guardias",
		PenaltyDescription: "Amonestación escrita",
	}, staffClaims())

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSanctionSettleMarksSaldada(t *testing.T) {
	repo := &mockSanctionRepo{stored: &models.Sanction{ID: "sanction-1", Status: models.SanctionPendiente}}
	audit := &mockAudit{}
	svc := NewSanctionService(repo, &mockSanctionUsers{}, audit, nil, nil)

	sanction, err := svc.Settle(context.Background(), "sanction-1", staffClaims())

	require.NoError(t, err)
	assert.Equal(t, models.SanctionSaldada, sanction.Status)
	require.Len(t, repo.setStatus, 1)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, "SALDAR_SANCION", audit.entries[0].Action)
}

func TestSanctionSettleIsIdempotent(t *testing.T) {
	repo := &mockSanctionRepo{stored: &models.Sanction{ID: "sanction-1", Status: models.SanctionSaldada}}
	audit := &mockAudit{}
	svc := NewSanctionService(repo, &mockSanctionUsers{}, audit, nil, nil)

	sanction, err := svc.Settle(context.Background(), "sanction-1", staffClaims())

	require.NoError(t, err)
	assert.Equal(t, models.SanctionSaldada, sanction.Status)
	assert.Empty(t, repo.setStatus)
	assert.Empty(t, audit.entries)
}
