package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salvaalejos/ceitm-web/internal/models"
)

func newComplaintMock(t *testing.T) (*ComplaintRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewComplaintRepository(sqlx.NewDb(db, "sqlmock")), mock, func() { db.Close() }
}

func TestComplaintRepositoryCreateAllocatesTrackingCode(t *testing.T) {
	repo, mock, cleanup := newComplaintMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO tracking_sequences").
		WithArgs("complaints", time.Now().UTC().Year()).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(7))
	mock.ExpectExec("INSERT INTO complaints").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	complaint := &models.Complaint{
		FullName:      "Luis Mora",
		ControlNumber: "19010222",
		Type:          models.ComplaintQueja,
		Description:   "Sin agua en el edificio K",
	}
	err := repo.Create(context.Background(), complaint, "CEITM")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("CEITM-%d-007", time.Now().UTC().Year()), complaint.TrackingCode)
	assert.Equal(t, models.ComplaintPendiente, complaint.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintRepositoryCreateRollsBackOnInsertFailure(t *testing.T) {
	repo, mock, cleanup := newComplaintMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO tracking_sequences").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(8))
	mock.ExpectExec("INSERT INTO complaints").
		WillReturnError(fmt.Errorf("duplicate key"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Complaint{FullName: "X"}, "CEITM")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintRepositoryListFiltersByType(t *testing.T) {
	repo, mock, cleanup := newComplaintMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "full_name", "type", "status", "created_at"}).
		AddRow("c1", "Luis Mora", models.ComplaintSugerencia, models.ComplaintPendiente, time.Now())
	mock.ExpectQuery(`FROM complaints WHERE 1=1 AND type = \$1 AND status = \$2`).
		WithArgs(models.ComplaintSugerencia, models.ComplaintPendiente).
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM complaints WHERE 1=1 AND type = \$1 AND status = \$2`).
		WithArgs(models.ComplaintSugerencia, models.ComplaintPendiente).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	complaints, total, err := repo.List(context.Background(), models.ComplaintFilter{
		Type:   models.ComplaintSugerencia,
		Status: models.ComplaintPendiente,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, complaints, 1)
	assert.Equal(t, models.ComplaintSugerencia, complaints[0].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintRepositoryResolve(t *testing.T) {
	repo, mock, cleanup := newComplaintMock(t)
	defer cleanup()

	mock.ExpectExec("UPDATE complaints SET status").
		WithArgs("c1", models.ComplaintResuelto, "Atendido por mantenimiento", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Resolve(context.Background(), "c1", models.ComplaintResuelto, "Atendido por mantenimiento", nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintRepositoryFindByTrackingCodeUppercases(t *testing.T) {
	repo, mock, cleanup := newComplaintMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"tracking_code", "type", "status", "admin_response", "resolved_at", "created_at"}).
		AddRow("CEITM-2026-007", models.ComplaintQueja, models.ComplaintPendiente, nil, nil, time.Now())
	mock.ExpectQuery("SELECT tracking_code, type, status").
		WithArgs("CEITM-2026-007").
		WillReturnRows(rows)

	view, err := repo.FindByTrackingCode(context.Background(), "ceitm-2026-007")
	require.NoError(t, err)
	assert.Equal(t, "CEITM-2026-007", view.TrackingCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
