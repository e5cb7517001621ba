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

type mockComplaintRepo struct {
	complaint *models.Complaint
	view      *models.ComplaintPublicView
	resolved  *models.ComplaintStatus
	deleted   []string
}

func (m *mockComplaintRepo) Create(ctx context.Context, complaint *models.Complaint, prefix string) error {
	complaint.ID = "complaint-1"
	complaint.TrackingCode = prefix + "-2026-001"
	complaint.Status = models.ComplaintPendiente
	m.complaint = complaint
	return nil
}

func (m *mockComplaintRepo) FindByID(ctx context.Context, id string) (*models.Complaint, error) {
	if m.complaint == nil || m.complaint.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.complaint, nil
}

func (m *mockComplaintRepo) FindByTrackingCode(ctx context.Context, code string) (*models.ComplaintPublicView, error) {
	if m.view == nil {
		return nil, sql.ErrNoRows
	}
	return m.view, nil
}

func (m *mockComplaintRepo) List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, int, error) {
	return nil, 0, nil
}

func (m *mockComplaintRepo) Resolve(ctx context.Context, id string, status models.ComplaintStatus, response string, evidenceURL *string) error {
	m.resolved = &status
	return nil
}

func (m *mockComplaintRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

type mockComplaintNotifier struct {
	received int
	resolved int
}

func (m *mockComplaintNotifier) ComplaintReceived(complaint *models.Complaint) { m.received++ }
func (m *mockComplaintNotifier) ComplaintResolved(complaint *models.Complaint) { m.resolved++ }

func validComplaint() CreateComplaintRequest {
	return CreateComplaintRequest{
		FullName:      "José Ramírez Ortega",
		ControlNumber: "21020456",
		PhoneNumber:   "4437654321",
		Email:         "jose.ramirez@example.com",
		Career:        "Ingeniería Industrial",
		Semester:      "3",
		Type:          models.ComplaintQueja,
		Description:   "El laboratorio de física lleva dos semanas sin equipo funcional.",
	}
}

func TestCreateComplaintAssignsTrackingCode(t *testing.T) {
	repo := &mockComplaintRepo{}
	notifier := &mockComplaintNotifier{}
	svc := NewComplaintService(repo, notifier, &mockAudit{}, nil, nil, "CEITM")

	complaint, err := svc.Create(context.Background(), validComplaint())

	require.NoError(t, err)
	assert.Equal(t, "CEITM-2026-001", complaint.TrackingCode)
	assert.Equal(t, models.ComplaintPendiente, complaint.Status)
	assert.Equal(t, 1, notifier.received)
}

func TestCreateComplaintValidatesType(t *testing.T) {
	svc := NewComplaintService(&mockComplaintRepo{}, &mockComplaintNotifier{}, &mockAudit{}, nil, nil, "CEITM")

	req := validComplaint()
	req.Type = "Denuncia"
	_, err := svc.Create(context.Background(), req)

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestResolveNotifiesOnlyTerminalStates(t *testing.T) {
	repo := &mockComplaintRepo{complaint: &models.Complaint{
		ID:     "complaint-1",
		Career: "Ingeniería Industrial",
		Status: models.ComplaintPendiente,
	}}
	notifier := &mockComplaintNotifier{}
	audit := &mockAudit{}
	svc := NewComplaintService(repo, notifier, audit, nil, nil, "CEITM")

	_, err := svc.Resolve(context.Background(), "complaint-1", ResolveComplaintRequest{
		Status:   models.ComplaintEnProceso,
		Response: "Estamos revisando el caso con el departamento.",
	}, staffClaims(), "")
	require.NoError(t, err)
	assert.Zero(t, notifier.resolved)

	resolved, err := svc.Resolve(context.Background(), "complaint-1", ResolveComplaintRequest{
		Status:   models.ComplaintResuelto,
		Response: "El equipo del laboratorio fue reemplazado.",
	}, staffClaims(), "")
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintResuelto, resolved.Status)
	assert.Equal(t, 1, notifier.resolved)
	require.Len(t, audit.entries, 2)
	assert.Equal(t, "RESOLVER_QUEJA", audit.entries[0].Action)
}

func TestResolveEnforcesCareerScope(t *testing.T) {
	repo := &mockComplaintRepo{complaint: &models.Complaint{
		ID:     "complaint-1",
		Career: "Arquitectura",
		Status: models.ComplaintPendiente,
	}}
	svc := NewComplaintService(repo, &mockComplaintNotifier{}, &mockAudit{}, nil, nil, "CEITM")

	_, err := svc.Resolve(context.Background(), "complaint-1", ResolveComplaintRequest{
		Status:   models.ComplaintResuelto,
		Response: "No corresponde a tu carrera.",
	}, staffClaims(), "Ingeniería Civil")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestTrackUnknownCodeReturnsNotFound(t *testing.T) {
	svc := NewComplaintService(&mockComplaintRepo{}, &mockComplaintNotifier{}, &mockAudit{}, nil, nil, "CEITM")

	_, err := svc.Track(context.Background(), "CEITM-2026-999")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
