package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salvaalejos/ceitm-web/internal/models"
)

func newScholarshipMock(t *testing.T) (*ScholarshipRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewScholarshipRepository(sqlx.NewDb(db, "sqlmock")), mock, func() { db.Close() }
}

func TestScholarshipRepositoryCreateSeedsQuotas(t *testing.T) {
	repo, mock, cleanup := newScholarshipMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO scholarships").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO scholarship_quotas").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO scholarship_quotas").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	scholarship := &models.Scholarship{
		Name:         "Beca Alimenticia 2026",
		Type:         models.ScholarshipAlimenticia,
		StartDate:    time.Now(),
		EndDate:      time.Now().Add(30 * 24 * time.Hour),
		ActivityCode: "111",
		Cycle:        "2026-1",
		Active:       true,
	}
	err := repo.Create(context.Background(), scholarship, []string{"ISC", "IGE"}, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, scholarship.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScholarshipRepositorySetQuotaTotalStoresNewTotal(t *testing.T) {
	repo, mock, cleanup := newScholarshipMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT used_slots FROM scholarship_quotas").
		WithArgs("sch-1", "ISC").
		WillReturnRows(sqlmock.NewRows([]string{"used_slots"}).AddRow(3))
	mock.ExpectExec("UPDATE scholarship_quotas SET total_slots").
		WithArgs("sch-1", "ISC", 5, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.SetQuotaTotal(context.Background(), "sch-1", "ISC", 5)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScholarshipRepositorySetQuotaTotalRejectsShrinkBelowUsage(t *testing.T) {
	repo, mock, cleanup := newScholarshipMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT used_slots FROM scholarship_quotas").
		WithArgs("sch-1", "ISC").
		WillReturnRows(sqlmock.NewRows([]string{"used_slots"}).AddRow(8))
	mock.ExpectRollback()

	err := repo.SetQuotaTotal(context.Background(), "sch-1", "ISC", 5)
	require.ErrorIs(t, err, ErrQuotaBelowUsage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScholarshipRepositorySetQuotaTotalMissingRow(t *testing.T) {
	repo, mock, cleanup := newScholarshipMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT used_slots FROM scholarship_quotas").
		WithArgs("sch-1", "Gastronomía").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.SetQuotaTotal(context.Background(), "sch-1", "Gastronomía", 10)
	require.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScholarshipRepositoryListQuotas(t *testing.T) {
	repo, mock, cleanup := newScholarshipMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "scholarship_id", "career", "total_slots", "used_slots", "created_at", "updated_at"}).
		AddRow("q1", "sch-1", "IGE", 10, 3, time.Now(), time.Now()).
		AddRow("q2", "sch-1", "ISC", 10, 10, time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, scholarship_id, career, total_slots, used_slots").
		WithArgs("sch-1").
		WillReturnRows(rows)

	quotas, err := repo.ListQuotas(context.Background(), "sch-1")
	require.NoError(t, err)
	require.Len(t, quotas, 2)
	assert.Equal(t, 10, quotas[1].UsedSlots)
	assert.NoError(t, mock.ExpectationsWereMet())
}
