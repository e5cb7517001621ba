package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salvaalejos/ceitm-web/internal/models"
	"github.com/salvaalejos/ceitm-web/internal/service"
)

type fakeComplaintRepo struct {
	created *models.Complaint
	tracked *models.ComplaintPublicView
}

func (f *fakeComplaintRepo) Create(_ context.Context, complaint *models.Complaint, prefix string) error {
	complaint.ID = "complaint-1"
	complaint.TrackingCode = prefix + "-2026-001"
	f.created = complaint
	return nil
}

func (f *fakeComplaintRepo) FindByID(context.Context, string) (*models.Complaint, error) {
	return nil, sql.ErrNoRows
}

func (f *fakeComplaintRepo) FindByTrackingCode(context.Context, string) (*models.ComplaintPublicView, error) {
	if f.tracked == nil {
		return nil, sql.ErrNoRows
	}
	return f.tracked, nil
}

func (f *fakeComplaintRepo) List(context.Context, models.ComplaintFilter) ([]models.Complaint, int, error) {
	return nil, 0, nil
}

func (f *fakeComplaintRepo) Resolve(context.Context, string, models.ComplaintStatus, string, *string) error {
	return nil
}

func (f *fakeComplaintRepo) Delete(context.Context, string) error { return nil }

type fakeComplaintNotifier struct{ received int }

func (f *fakeComplaintNotifier) ComplaintReceived(*models.Complaint) { f.received++ }
func (f *fakeComplaintNotifier) ComplaintResolved(*models.Complaint) {}

type fakeAuditInserter struct{}

func (fakeAuditInserter) Insert(context.Context, *models.AuditLog) error { return nil }

func newComplaintHandlerUnderTest(repo *fakeComplaintRepo, notifier *fakeComplaintNotifier) *ComplaintHandler {
	svc := service.NewComplaintService(repo, notifier, fakeAuditInserter{}, nil, nil, "CEITM")
	return NewComplaintHandler(svc)
}

func TestComplaintHandlerCreateAssignsTrackingCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeComplaintRepo{}
	notifier := &fakeComplaintNotifier{}
	handler := newComplaintHandlerUnderTest(repo, notifier)

	payload := `{
		"full_name": "Ana Martínez Ruiz",
		"control_number": "20120345",
		"phone_number": "4431234567",
		"email": "ana@example.com",
		"career": "ISC",
		"semester": "5",
		"type": "Queja",
		"description": "La ventanilla de servicios escolares cierra antes del horario publicado."
	}`

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/public/complaints", strings.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, notifier.received)

	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "CEITM-2026-001", envelope.Data["tracking_code"])
}

func TestComplaintHandlerCreateRejectsInvalidType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newComplaintHandlerUnderTest(&fakeComplaintRepo{}, &fakeComplaintNotifier{})

	payload := `{
		"full_name": "Ana Martínez Ruiz",
		"control_number": "20120345",
		"phone_number": "4431234567",
		"email": "ana@example.com",
		"career": "ISC",
		"semester": "5",
		"type": "Denuncia",
		"description": "La ventanilla de servicios escolares cierra antes del horario publicado."
	}`

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/public/complaints", strings.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComplaintHandlerTrackUnknownCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newComplaintHandlerUnderTest(&fakeComplaintRepo{}, &fakeComplaintNotifier{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/public/complaints/CEITM-2026-099", nil)
	c.Params = gin.Params{{Key: "code", Value: "CEITM-2026-099"}}

	handler.Track(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type responseEnvelope struct {
	Data map[string]interface{} `json:"data"`
	Meta map[string]interface{} `json:"meta"`
}
