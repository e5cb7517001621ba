package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/salvaalejos/ceitm-web/internal/models"
	appErrors "github.com/salvaalejos/ceitm-web/pkg/errors"
)

type newsRepository interface {
	List(ctx context.Context, publishedOnly bool, page, size int) ([]models.News, int, error)
	FindByID(ctx context.Context, id string) (*models.News, error)
	FindBySlug(ctx context.Context, slug string) (*models.News, error)
	CountSlugPrefix(ctx context.Context, base string) (int, error)
	Create(ctx context.Context, item *models.News) error
	Update(ctx context.Context, item *models.News) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, term string, limit int) ([]models.News, error)
}

// NewsRequest is the create/update payload.
type NewsRequest struct {
	Title     string  `json:"title" validate:"required,min=5"`
	Excerpt   string  `json:"excerpt" validate:"required,max=300"`
	Content   string  `json:"content" validate:"required"`
	ImageURL  *string `json:"image_url"`
	VideoURL  *string `json:"video_url" validate:"omitempty,url"`
	Published bool    `json:"published"`
}

// NewsService manages the public news feed.
type NewsService struct {
	news      newsRepository
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNewsService constructs a NewsService.
func NewNewsService(news newsRepository, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *NewsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &NewsService{news: news, audit: audit, validator: validate, logger: logger}
}

// List returns articles. Public callers only see published ones.
func (s *NewsService) List(ctx context.Context, publishedOnly bool, page, size int) ([]models.News, int, error) {
	items, total, err := s.news.List(ctx, publishedOnly, page, size)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list news")
	}
	return items, total, nil
}

// Get returns one article by ID.
func (s *NewsService) Get(ctx context.Context, id string) (*models.News, error) {
	item, err := s.news.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "article not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch article")
	}
	return item, nil
}

// GetBySlug returns a published article by its public slug.
func (s *NewsService) GetBySlug(ctx context.Context, articleSlug string) (*models.News, error) {
	item, err := s.news.FindBySlug(ctx, articleSlug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "article not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch article")
	}
	return item, nil
}

// Search matches published articles for the public search box.
func (s *NewsService) Search(ctx context.Context, term string, limit int) ([]models.News, error) {
	items, err := s.news.Search(ctx, term, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search news")
	}
	return items, nil
}

// Create publishes an article with a unique slug derived from the title.
func (s *NewsService) Create(ctx context.Context, req NewsRequest, actor *models.JWTClaims) (*models.News, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid article payload")
	}

	articleSlug, err := s.uniqueSlug(ctx, req.Title)
	if err != nil {
		return nil, err
	}
	item := &models.News{
		Title:     req.Title,
		Slug:      articleSlug,
		Excerpt:   req.Excerpt,
		Content:   req.Content,
		ImageURL:  req.ImageURL,
		VideoURL:  req.VideoURL,
		Published: req.Published,
	}
	if actor != nil {
		item.AuthorID = &actor.UserID
	}
	if err := s.news.Create(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create article")
	}
	s.recordAudit(ctx, actor, "CREAR_NOTICIA", item.ID)
	return item, nil
}

// Update edits an article, regenerating the slug when the title changes.
func (s *NewsService) Update(ctx context.Context, id string, req NewsRequest, actor *models.JWTClaims) (*models.News, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid article payload")
	}

	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != item.Title {
		newSlug, err := s.uniqueSlug(ctx, req.Title)
		if err != nil {
			return nil, err
		}
		item.Slug = newSlug
	}
	item.Title = req.Title
	item.Excerpt = req.Excerpt
	item.Content = req.Content
	item.ImageURL = req.ImageURL
	item.VideoURL = req.VideoURL
	item.Published = req.Published

	if err := s.news.Update(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update article")
	}
	s.recordAudit(ctx, actor, "EDITAR_NOTICIA", item.ID)
	return item, nil
}

// Delete removes an article.
func (s *NewsService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.news.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete article")
	}
	s.recordAudit(ctx, actor, "ELIMINAR_NOTICIA", id)
	return nil
}

// uniqueSlug slugifies the title and appends a counter suffix when the base
// slug is already taken.
func (s *NewsService) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := slug.Make(title)
	count, err := s.news.CountSlugPrefix(ctx, base)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to derive slug")
	}
	if count == 0 {
		return base, nil
	}
	return fmt.Sprintf("%s-%d", base, count+1), nil
}

func (s *NewsService) recordAudit(ctx context.Context, actor *models.JWTClaims, action string, resourceID string) {
	if actor == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:     actor.UserID,
		UserEmail:  actor.Email,
		UserRole:   string(actor.Role),
		Action:     action,
		Module:     models.ModuleNoticias,
		ResourceID: &resourceID,
	}
	if err := s.audit.Insert(ctx, entry); err != nil {
		s.logger.Warn("failed to record news audit log", zap.Error(err))
	}
}
