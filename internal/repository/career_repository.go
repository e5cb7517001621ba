package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/salvaalejos/ceitm-web/internal/models"
)

// CareerRepository manages the academic program catalog.
type CareerRepository struct {
	db *sqlx.DB
}

// NewCareerRepository constructs a CareerRepository.
func NewCareerRepository(db *sqlx.DB) *CareerRepository {
	return &CareerRepository{db: db}
}

const careerColumns = "id, name, slug, whatsapp_url, image_url, active, created_at, updated_at"

// List returns careers, optionally restricted to active ones.
func (r *CareerRepository) List(ctx context.Context, onlyActive bool) ([]models.Career, error) {
	query := fmt.Sprintf("SELECT %s FROM careers", careerColumns)
	if onlyActive {
		query += " WHERE active = true"
	}
	query += " ORDER BY name ASC"
	var careers []models.Career
	if err := r.db.SelectContext(ctx, &careers, query); err != nil {
		return nil, fmt.Errorf("list careers: %w", err)
	}
	return careers, nil
}

// FindByID fetches a career by identifier.
func (r *CareerRepository) FindByID(ctx context.Context, id string) (*models.Career, error) {
	query := fmt.Sprintf("SELECT %s FROM careers WHERE id = $1", careerColumns)
	var career models.Career
	if err := r.db.GetContext(ctx, &career, query, id); err != nil {
		return nil, err
	}
	return &career, nil
}

// FindByName fetches a career by its exact name.
func (r *CareerRepository) FindByName(ctx context.Context, name string) (*models.Career, error) {
	query := fmt.Sprintf("SELECT %s FROM careers WHERE name = $1", careerColumns)
	var career models.Career
	if err := r.db.GetContext(ctx, &career, query, name); err != nil {
		return nil, err
	}
	return &career, nil
}

// ExistsByName checks name uniqueness, optionally excluding an ID.
func (r *CareerRepository) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM careers WHERE name = $1"
	args := []interface{}{name}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check career name: %w", err)
	}
	return true, nil
}

// Create inserts a new career.
func (r *CareerRepository) Create(ctx context.Context, career *models.Career) error {
	if career.ID == "" {
		career.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if career.CreatedAt.IsZero() {
		career.CreatedAt = now
	}
	career.UpdatedAt = now
	const query = `INSERT INTO careers (id, name, slug, whatsapp_url, image_url, active, created_at, updated_at)
        VALUES (:id, :name, :slug, :whatsapp_url, :image_url, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, career); err != nil {
		return fmt.Errorf("create career: %w", err)
	}
	return nil
}

// Update modifies an existing career.
func (r *CareerRepository) Update(ctx context.Context, career *models.Career) error {
	career.UpdatedAt = time.Now().UTC()
	const query = `UPDATE careers SET name = :name, slug = :slug, whatsapp_url = :whatsapp_url,
        image_url = :image_url, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, career); err != nil {
		return fmt.Errorf("update career: %w", err)
	}
	return nil
}
