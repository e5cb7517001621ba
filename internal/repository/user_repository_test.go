package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salvaalejos/ceitm-web/internal/models"
)

func newUserMock(t *testing.T) (*UserRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewUserRepository(sqlx.NewDb(db, "sqlmock")), mock, func() { db.Close() }
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "password_hash", "full_name", "phone_number", "instagram_url", "role", "area", "career", "image_url", "active", "created_at", "updated_at"})
}

func TestUserRepositoryFindByEmailLowercases(t *testing.T) {
	repo, mock, cleanup := newUserMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT id, email, password_hash").
		WithArgs("becas@ceitm.mx").
		WillReturnRows(userRows().AddRow("u1", "becas@ceitm.mx", "hash", "Coordinación Becas", nil, nil, models.RoleCoordinador, models.AreaBecas, nil, nil, true, time.Now(), time.Now()))

	user, err := repo.FindByEmail(context.Background(), "Becas@CEITM.mx")
	require.NoError(t, err)
	assert.Equal(t, models.AreaBecas, user.Area)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryExistsByEmail(t *testing.T) {
	repo, mock, cleanup := newUserMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM users WHERE email = $1 AND id <> $2 LIMIT 1")).
		WithArgs("taken@ceitm.mx", "u2").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByEmail(context.Background(), "taken@ceitm.mx", "u2")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreate(t *testing.T) {
	repo, mock, cleanup := newUserMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(1, 1))

	user := &models.User{
		Email:    "Nuevo@CEITM.mx",
		FullName: "Nuevo Integrante",
		Role:     models.RoleVocal,
		Area:     models.AreaEventos,
		Active:   true,
	}
	err := repo.Create(context.Background(), user)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "nuevo@ceitm.mx", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryList(t *testing.T) {
	repo, mock, cleanup := newUserMock(t)
	defer cleanup()

	role := models.RoleConcejal
	mock.ExpectQuery("SELECT id, email, password_hash").
		WithArgs(role).
		WillReturnRows(userRows().AddRow("u3", "concejal@ceitm.mx", "hash", "Concejal ISC", nil, nil, role, models.AreaNinguna, "ISC", nil, true, time.Now(), time.Now()))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users").
		WithArgs(role).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	users, total, err := repo.List(context.Background(), models.UserFilter{Role: &role})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
