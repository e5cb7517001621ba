package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/salvaalejos/ceitm-web/internal/models"
)

// ConvenioRepository manages business benefit agreements.
type ConvenioRepository struct {
	db *sqlx.DB
}

// NewConvenioRepository constructs a ConvenioRepository.
func NewConvenioRepository(db *sqlx.DB) *ConvenioRepository {
	return &ConvenioRepository{db: db}
}

const convenioColumns = "id, name, short_description, long_description, category, image_url, address, benefits, social_links, active, created_at, updated_at"

// List returns agreements, optionally filtered by category and active flag.
func (r *ConvenioRepository) List(ctx context.Context, onlyActive bool, category string) ([]models.Convenio, error) {
	base := "FROM convenios"
	args := []interface{}{}
	conditions := []string{"1=1"}
	if onlyActive {
		conditions = append(conditions, "active = true")
	}
	if category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, category)
	}
	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	query := fmt.Sprintf("SELECT %s %s ORDER BY name ASC", convenioColumns, base)
	var convenios []models.Convenio
	if err := r.db.SelectContext(ctx, &convenios, query, args...); err != nil {
		return nil, fmt.Errorf("list convenios: %w", err)
	}
	return convenios, nil
}

// FindByID fetches an agreement by identifier.
func (r *ConvenioRepository) FindByID(ctx context.Context, id string) (*models.Convenio, error) {
	query := fmt.Sprintf("SELECT %s FROM convenios WHERE id = $1", convenioColumns)
	var convenio models.Convenio
	if err := r.db.GetContext(ctx, &convenio, query, id); err != nil {
		return nil, err
	}
	return &convenio, nil
}

// Create inserts an agreement.
func (r *ConvenioRepository) Create(ctx context.Context, convenio *models.Convenio) error {
	if convenio.ID == "" {
		convenio.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if convenio.CreatedAt.IsZero() {
		convenio.CreatedAt = now
	}
	convenio.UpdatedAt = now
	const query = `INSERT INTO convenios (id, name, short_description, long_description, category, image_url, address, benefits, social_links, active, created_at, updated_at)
        VALUES (:id, :name, :short_description, :long_description, :category, :image_url, :address, :benefits, :social_links, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, convenio); err != nil {
		return fmt.Errorf("create convenio: %w", err)
	}
	return nil
}

// Update modifies an agreement.
func (r *ConvenioRepository) Update(ctx context.Context, convenio *models.Convenio) error {
	convenio.UpdatedAt = time.Now().UTC()
	const query = `UPDATE convenios SET name = :name, short_description = :short_description,
        long_description = :long_description, category = :category, image_url = :image_url,
        address = :address, benefits = :benefits, social_links = :social_links, active = :active,
        updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, convenio); err != nil {
		return fmt.Errorf("update convenio: %w", err)
	}
	return nil
}

// Delete removes an agreement.
func (r *ConvenioRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM convenios WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete convenio: %w", err)
	}
	return nil
}
