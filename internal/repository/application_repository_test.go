package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salvaalejos/ceitm-web/internal/models"
)

func newApplicationMock(t *testing.T) (*ApplicationRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewApplicationRepository(sqlxDB, NewAuditRepository(sqlxDB)), mock, func() { db.Close() }
}

func TestApplicationRepositoryApplyTransitionApprove(t *testing.T) {
	repo, mock, cleanup := newApplicationMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE scholarship_applications SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE scholarship_quotas SET used_slots = used_slots \\+ 1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.ApplyTransition(context.Background(), TransitionPlan{
		ApplicationID:  "app-1",
		FromStatus:     models.StatusEnRevision,
		ToStatus:       models.StatusAprobada,
		ScholarshipID:  "sch-1",
		Career:         "ISC",
		IncrementQuota: true,
		Audit:          &models.AuditLog{UserID: "u1", Action: "APROBAR", Module: models.ModuleBecas},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryApplyTransitionQuotaFull(t *testing.T) {
	repo, mock, cleanup := newApplicationMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE scholarship_applications SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE scholarship_quotas SET used_slots = used_slots \\+ 1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.ApplyTransition(context.Background(), TransitionPlan{
		ApplicationID:  "app-1",
		FromStatus:     models.StatusEnRevision,
		ToStatus:       models.StatusAprobada,
		ScholarshipID:  "sch-1",
		Career:         "ISC",
		IncrementQuota: true,
	})
	require.ErrorIs(t, err, ErrQuotaExhausted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryApplyTransitionStale(t *testing.T) {
	repo, mock, cleanup := newApplicationMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE scholarship_applications SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.ApplyTransition(context.Background(), TransitionPlan{
		ApplicationID: "app-1",
		FromStatus:    models.StatusPendiente,
		ToStatus:      models.StatusEnRevision,
	})
	require.ErrorIs(t, err, ErrStaleStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryApplyTransitionDecrementNoop(t *testing.T) {
	repo, mock, cleanup := newApplicationMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE scholarship_applications SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE scholarship_quotas SET used_slots = used_slots - 1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.ApplyTransition(context.Background(), TransitionPlan{
		ApplicationID:  "app-1",
		FromStatus:     models.StatusAprobada,
		ToStatus:       models.StatusEnRevision,
		ScholarshipID:  "sch-1",
		Career:         "ISC",
		DecrementQuota: true,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryCreateSubmission(t *testing.T) {
	repo, mock, cleanup := newApplicationMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO students").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO scholarship_applications").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	app := &models.ScholarshipApplication{
		ScholarshipID: "sch-1",
		FullName:      "Ana Torres",
		ControlNumber: "20120345",
		Career:        "ISC",
	}
	student := &models.Student{ControlNumber: "20120345", FullName: "Ana Torres"}
	err := repo.CreateSubmission(context.Background(), app, student)
	require.NoError(t, err)
	assert.NotEmpty(t, app.ID)
	assert.Equal(t, models.StatusPendiente, app.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryFindLatestForPair(t *testing.T) {
	repo, mock, cleanup := newApplicationMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "scholarship_id", "control_number", "status", "created_at"}).
		AddRow("app-7", "sch-1", "20120345", models.StatusRechazada, time.Now())
	mock.ExpectQuery(`FROM scholarship_applications a\s+WHERE a.scholarship_id = \$1 AND a.control_number = \$2\s+ORDER BY a.created_at DESC LIMIT 1`).
		WithArgs("sch-1", "20120345").
		WillReturnRows(rows)

	app, err := repo.FindLatestForPair(context.Background(), "sch-1", "20120345")
	require.NoError(t, err)
	assert.Equal(t, "app-7", app.ID)
	assert.Equal(t, models.StatusRechazada, app.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryResubmitClearsAdminComments(t *testing.T) {
	repo, mock, cleanup := newApplicationMock(t)
	defer cleanup()

	mock.ExpectExec(`(?s)UPDATE scholarship_applications SET.*status = 'Pendiente', admin_comments = NULL.*status IN \('Rechazada', 'Documentación Faltante'\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Resubmit(context.Background(), &models.ScholarshipApplication{
		ID:            "app-7",
		ScholarshipID: "sch-1",
		ControlNumber: "20120345",
		FullName:      "Ana Torres",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryResubmitStaleState(t *testing.T) {
	repo, mock, cleanup := newApplicationMock(t)
	defer cleanup()

	mock.ExpectExec("UPDATE scholarship_applications SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Resubmit(context.Background(), &models.ScholarshipApplication{ID: "app-7"})
	require.ErrorIs(t, err, ErrStaleStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryApplyTransitionFolioCollision(t *testing.T) {
	repo, mock, cleanup := newApplicationMock(t)
	defer cleanup()

	folio := "101A-20120345-26A"
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE scholarship_applications SET status").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "scholarship_applications_release_folio_key"})
	mock.ExpectRollback()

	err := repo.ApplyTransition(context.Background(), TransitionPlan{
		ApplicationID: "app-1",
		FromStatus:    models.StatusAprobada,
		ToStatus:      models.StatusLiberada,
		ReleaseFolio:  &folio,
	})
	require.ErrorIs(t, err, ErrFolioTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}
