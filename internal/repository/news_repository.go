package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/salvaalejos/ceitm-web/internal/models"
)

// NewsRepository manages published articles.
type NewsRepository struct {
	db *sqlx.DB
}

// NewNewsRepository constructs a NewsRepository.
func NewNewsRepository(db *sqlx.DB) *NewsRepository {
	return &NewsRepository{db: db}
}

const newsColumns = "id, title, slug, excerpt, content, image_url, video_url, published, author_id, created_at, updated_at"

// List returns articles newest first. Public callers only see published ones.
func (r *NewsRepository) List(ctx context.Context, publishedOnly bool, page, size int) ([]models.News, int, error) {
	base := "FROM news"
	args := []interface{}{}
	if publishedOnly {
		base += " WHERE published = true"
	}
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", newsColumns, base, size, offset)
	var items []models.News
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list news: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count news: %w", err)
	}
	return items, total, nil
}

// FindByID fetches an article by identifier.
func (r *NewsRepository) FindByID(ctx context.Context, id string) (*models.News, error) {
	query := fmt.Sprintf("SELECT %s FROM news WHERE id = $1", newsColumns)
	var item models.News
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// FindBySlug fetches a published article by slug.
func (r *NewsRepository) FindBySlug(ctx context.Context, slug string) (*models.News, error) {
	query := fmt.Sprintf("SELECT %s FROM news WHERE slug = $1 AND published = true", newsColumns)
	var item models.News
	if err := r.db.GetContext(ctx, &item, query, slug); err != nil {
		return nil, err
	}
	return &item, nil
}

// CountSlugPrefix counts slugs equal to or derived from the base slug, used
// to pick a unique "-n" suffix.
func (r *NewsRepository) CountSlugPrefix(ctx context.Context, base string) (int, error) {
	const query = `SELECT COUNT(*) FROM news WHERE slug = $1 OR slug LIKE $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, base, base+"-%"); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("count slug prefix: %w", err)
	}
	return count, nil
}

// Create inserts an article.
func (r *NewsRepository) Create(ctx context.Context, item *models.News) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	const query = `INSERT INTO news (id, title, slug, excerpt, content, image_url, video_url, published, author_id, created_at, updated_at)
        VALUES (:id, :title, :slug, :excerpt, :content, :image_url, :video_url, :published, :author_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create news: %w", err)
	}
	return nil
}

// Update modifies an article.
func (r *NewsRepository) Update(ctx context.Context, item *models.News) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE news SET title = :title, slug = :slug, excerpt = :excerpt, content = :content,
        image_url = :image_url, video_url = :video_url, published = :published, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("update news: %w", err)
	}
	return nil
}

// Delete removes an article.
func (r *NewsRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM news WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete news: %w", err)
	}
	return nil
}

// Search matches title or excerpt for the public site search box.
func (r *NewsRepository) Search(ctx context.Context, term string, limit int) ([]models.News, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	like := "%" + strings.ToLower(term) + "%"
	query := fmt.Sprintf(`SELECT %s FROM news
        WHERE published = true AND (LOWER(title) LIKE $1 OR LOWER(excerpt) LIKE $1)
        ORDER BY created_at DESC LIMIT %d`, newsColumns, limit)
	var items []models.News
	if err := r.db.SelectContext(ctx, &items, query, like); err != nil {
		return nil, fmt.Errorf("search news: %w", err)
	}
	return items, nil
}
