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

type mockNewsRepo struct {
	slugCount int
	created   *models.News
	updated   *models.News
	stored    *models.News
	deleted   string
}

func (m *mockNewsRepo) List(context.Context, bool, int, int) ([]models.News, int, error) {
	return nil, 0, nil
}

func (m *mockNewsRepo) FindByID(context.Context, string) (*models.News, error) {
	if m.stored == nil {
		return nil, sql.ErrNoRows
	}
	item := *m.stored
	return &item, nil
}

func (m *mockNewsRepo) FindBySlug(context.Context, string) (*models.News, error) {
	if m.stored == nil {
		return nil, sql.ErrNoRows
	}
	item := *m.stored
	return &item, nil
}

func (m *mockNewsRepo) CountSlugPrefix(context.Context, string) (int, error) {
	return m.slugCount, nil
}

func (m *mockNewsRepo) Create(_ context.Context, item *models.News) error {
	item.ID = "news-1"
	m.created = item
	return nil
}

func (m *mockNewsRepo) Update(_ context.Context, item *models.News) error {
	m.updated = item
	return nil
}

func (m *mockNewsRepo) Delete(_ context.Context, id string) error {
	m.deleted = id
	return nil
}

func (m *mockNewsRepo) Search(context.Context, string, int) ([]models.News, error) {
	return nil, nil
}

func validNewsRequest() NewsRequest {
	return NewsRequest{
		Title:     "Resultados de becas alimenticias",
		Excerpt:   "Ya puedes consultar el estado de tu solicitud.",
		Content:   "El listado completo está disponible en ventanilla.",
		Published: true,
	}
}

func TestNewsCreateDerivesSlugFromTitle(t *testing.T) {
	repo := &mockNewsRepo{}
	audit := &mockAudit{}
	svc := NewNewsService(repo, audit, nil, nil)

	item, err := svc.Create(context.Background(), validNewsRequest(), staffClaims())

	require.NoError(t, err)
	assert.Equal(t, "resultados-de-becas-alimenticias", item.Slug)
	require.NotNil(t, item.AuthorID)
	assert.Equal(t, "user-1", *item.AuthorID)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, "CREAR_NOTICIA", audit.entries[0].Action)
	assert.Equal(t, models.ModuleNoticias, audit.entries[0].Module)
}

func TestNewsCreateAppendsCounterWhenSlugTaken(t *testing.T) {
	repo := &mockNewsRepo{slugCount: 2}
	svc := NewNewsService(repo, &mockAudit{}, nil, nil)

	item, err := svc.Create(context.Background(), validNewsRequest(), staffClaims())

	require.NoError(t, err)
	assert.Equal(t, "resultados-de-becas-alimenticias-3", item.Slug)
}

func TestNewsCreateRejectsShortTitle(t *testing.T) {
	svc := NewNewsService(&mockNewsRepo{}, &mockAudit{}, nil, nil)

	req := validNewsRequest()
	req.Title = "Hoy"
	_, err := svc.Create(context.Background(), req, staffClaims())

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestNewsUpdateKeepsSlugWhenTitleUnchanged(t *testing.T) {
	repo := &mockNewsRepo{
		stored: &models.News{
			ID:      "news-1",
			Title:   "Resultados de becas alimenticias",
			Slug:    "resultados-de-becas-alimenticias",
			Excerpt: "Consulta tu estado.",
			Content: "Listado disponible.",
		},
		slugCount: 5,
	}
	svc := NewNewsService(repo, &mockAudit{}, nil, nil)

	req := validNewsRequest()
	item, err := svc.Update(context.Background(), "news-1", req, staffClaims())

	require.NoError(t, err)
	assert.Equal(t, "resultados-de-becas-alimenticias", item.Slug)
}

func TestNewsUpdateRegeneratesSlugOnTitleChange(t *testing.T) {
	repo := &mockNewsRepo{
		stored: &models.News{
			ID:      "news-1",
			Title:   "Resultados de becas alimenticias",
			Slug:    "resultados-de-becas-alimenticias",
			Excerpt: "Consulta tu estado.",
			Content: "Listado disponible.",
		},
	}
	svc := NewNewsService(repo, &mockAudit{}, nil, nil)

	req := validNewsRequest()
	req.Title = "Nueva convocatoria de reinscripción"
	item, err := svc.Update(context.Background(), "news-1", req, staffClaims())

	require.NoError(t, err)
	assert.Equal(t, "nueva-convocatoria-de-reinscripcion", item.Slug)
}

func TestNewsDeleteUnknownArticle(t *testing.T) {
	svc := NewNewsService(&mockNewsRepo{}, &mockAudit{}, nil, nil)

	err := svc.Delete(context.Background(), "missing", staffClaims())

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
