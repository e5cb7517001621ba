package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salvaalejos/ceitm-web/internal/models"
	appErrors "github.com/salvaalejos/ceitm-web/pkg/errors"
)

type mockShiftRepo struct {
	taken   bool
	shifts  []models.Shift
	created *models.Shift
	deleted []string
}

func (m *mockShiftRepo) ListWeek(ctx context.Context) ([]models.ShiftDetail, error) {
	return nil, nil
}

func (m *mockShiftRepo) ListForUser(ctx context.Context, userID string) ([]models.Shift, error) {
	return m.shifts, nil
}

func (m *mockShiftRepo) SlotTaken(ctx context.Context, day models.DayOfWeek, hour int) (bool, error) {
	return m.taken, nil
}

func (m *mockShiftRepo) Create(ctx context.Context, shift *models.Shift) error {
	shift.ID = "shift-1"
	m.created = shift
	return nil
}

func (m *mockShiftRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func memberClaims() *models.JWTClaims {
	return &models.JWTClaims{
		UserID: "user-2",
		Role:   models.RoleVocal,
		Email:  "vocal@ceitm.mx",
	}
}

func TestAssignClaimsFreeSlot(t *testing.T) {
	repo := &mockShiftRepo{}
	svc := NewShiftService(repo, &mockAudit{}, nil, nil)

	shift, err := svc.Assign(context.Background(), AssignShiftRequest{Day: "Lunes", Hour: 9}, memberClaims())

	require.NoError(t, err)
	assert.Equal(t, "user-2", shift.UserID)
	assert.Equal(t, models.DayLunes, shift.Day)
}

func TestAssignRejectsOccupiedSlot(t *testing.T) {
	svc := NewShiftService(&mockShiftRepo{taken: true}, &mockAudit{}, nil, nil)

	_, err := svc.Assign(context.Background(), AssignShiftRequest{Day: "Lunes", Hour: 9}, memberClaims())

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAssignRejectsHourOutsideOfficeWindow(t *testing.T) {
	svc := NewShiftService(&mockShiftRepo{}, &mockAudit{}, nil, nil)

	_, err := svc.Assign(context.Background(), AssignShiftRequest{Day: "Lunes", Hour: 21}, memberClaims())

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReleaseRejectsForeignShift(t *testing.T) {
	repo := &mockShiftRepo{shifts: []models.Shift{{ID: "shift-9", UserID: "user-2"}}}
	svc := NewShiftService(repo, &mockAudit{}, nil, nil)

	err := svc.Release(context.Background(), "shift-1", memberClaims())

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}

func TestReleaseAllowsOwnShiftAndAdmins(t *testing.T) {
	repo := &mockShiftRepo{shifts: []models.Shift{{ID: "shift-1", UserID: "user-2"}}}
	svc := NewShiftService(repo, &mockAudit{}, nil, nil)

	require.NoError(t, svc.Release(context.Background(), "shift-1", memberClaims()))
	require.NoError(t, svc.Release(context.Background(), "shift-2", staffClaims()))
	assert.Equal(t, []string{"shift-1", "shift-2"}, repo.deleted)
}
