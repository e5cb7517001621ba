package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/salvaalejos/ceitm-web/internal/models"
	"github.com/salvaalejos/ceitm-web/pkg/config"
	appErrors "github.com/salvaalejos/ceitm-web/pkg/errors"
)

type mockAuthUserRepo struct {
	user        *models.User
	newPassword string
}

func (m *mockAuthUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.user == nil || m.user.Email != email {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockAuthUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.user == nil || m.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockAuthUserRepo) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	m.newPassword = passwordHash
	return nil
}

type mockTokenRepo struct {
	sessions   map[string]*models.RefreshToken
	revoked    []string
	revokedAll []string
}

func (m *mockTokenRepo) Create(ctx context.Context, token *models.RefreshToken) error {
	if m.sessions == nil {
		m.sessions = make(map[string]*models.RefreshToken)
	}
	token.ID = "session-" + token.Token[:6]
	m.sessions[token.Token] = token
	return nil
}

func (m *mockTokenRepo) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	session, ok := m.sessions[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return session, nil
}

func (m *mockTokenRepo) Revoke(ctx context.Context, id string) error {
	m.revoked = append(m.revoked, id)
	return nil
}

func (m *mockTokenRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	m.revokedAll = append(m.revokedAll, userID)
	return nil
}

type mockAudit struct {
	entries []*models.AuditLog
}

func (m *mockAudit) Insert(ctx context.Context, entry *models.AuditLog) error {
	m.entries = append(m.entries, entry)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Expiration:        15 * time.Minute,
		RefreshExpiration: 24 * time.Hour,
		Issuer:            "ceitm-web",
	}
}

func activeUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	career := "Ingeniería en Sistemas Computacionales"
	return &models.User{
		ID:           "user-1",
		Email:        "concejal@ceitm.mx",
		FullName:     "Laura Pérez",
		PasswordHash: string(hash),
		Role:         models.RoleConcejal,
		Area:         models.AreaBecas,
		Career:       &career,
		Active:       true,
	}
}

func TestLoginIssuesTokenPairAndAudits(t *testing.T) {
	users := &mockAuthUserRepo{user: activeUser(t, "secreta123")}
	tokens := &mockTokenRepo{}
	audit := &mockAudit{}
	svc := NewAuthService(users, tokens, audit, nil, nil, testJWTConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "concejal@ceitm.mx",
		Password: "secreta123",
		IP:       "10.0.0.5",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Len(t, tokens.sessions, 1)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, "LOGIN", audit.entries[0].Action)

	parsed, err := jwt.ParseWithClaims(resp.AccessToken, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(*models.JWTClaims)
	assert.Equal(t, models.RoleConcejal, claims.Role)
	assert.Equal(t, "Ingeniería en Sistemas Computacionales", claims.Career)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc := NewAuthService(&mockAuthUserRepo{user: activeUser(t, "secreta123")}, &mockTokenRepo{}, &mockAudit{}, nil, nil, testJWTConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "concejal@ceitm.mx", Password: "otra"})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginRejectsUnknownEmailWithSameError(t *testing.T) {
	svc := NewAuthService(&mockAuthUserRepo{}, &mockTokenRepo{}, &mockAudit{}, nil, nil, testJWTConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nadie@ceitm.mx", Password: "secreta123"})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	user := activeUser(t, "secreta123")
	user.Active = false
	svc := NewAuthService(&mockAuthUserRepo{user: user}, &mockTokenRepo{}, &mockAudit{}, nil, nil, testJWTConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "concejal@ceitm.mx", Password: "secreta123"})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestRefreshRotatesSession(t *testing.T) {
	users := &mockAuthUserRepo{user: activeUser(t, "secreta123")}
	tokens := &mockTokenRepo{sessions: map[string]*models.RefreshToken{
		"old-refresh-token": {
			ID:        "session-old",
			UserID:    "user-1",
			Token:     "old-refresh-token",
			ExpiresAt: time.Now().UTC().Add(time.Hour),
		},
	}}
	svc := NewAuthService(users, tokens, &mockAudit{}, nil, nil, testJWTConfig())

	resp, err := svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-refresh-token"})

	require.NoError(t, err)
	assert.NotEqual(t, "old-refresh-token", resp.RefreshToken)
	assert.Contains(t, tokens.revoked, "session-old")
	assert.Contains(t, tokens.sessions, resp.RefreshToken)
}

func TestRefreshRejectsExpiredSession(t *testing.T) {
	tokens := &mockTokenRepo{sessions: map[string]*models.RefreshToken{
		"stale": {ID: "session-stale", UserID: "user-1", Token: "stale", ExpiresAt: time.Now().UTC().Add(-time.Minute)},
	}}
	svc := NewAuthService(&mockAuthUserRepo{user: activeUser(t, "x")}, tokens, &mockAudit{}, nil, nil, testJWTConfig())

	_, err := svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: "stale"})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	users := &mockAuthUserRepo{user: activeUser(t, "secreta123")}
	tokens := &mockTokenRepo{}
	svc := NewAuthService(users, tokens, &mockAudit{}, nil, nil, testJWTConfig())

	err := svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{
		OldPassword: "secreta123",
		NewPassword: "nuevaClave456",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, users.newPassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users.newPassword), []byte("nuevaClave456")))
	assert.Contains(t, tokens.revokedAll, "user-1")
}

func TestChangePasswordRejectsWrongCurrent(t *testing.T) {
	svc := NewAuthService(&mockAuthUserRepo{user: activeUser(t, "secreta123")}, &mockTokenRepo{}, &mockAudit{}, nil, nil, testJWTConfig())

	err := svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{
		OldPassword: "equivocada",
		NewPassword: "nuevaClave456",
	})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}
