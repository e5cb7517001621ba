package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/salvaalejos/ceitm-web/internal/models"
)

// SanctionRepository persists internal disciplinary records.
type SanctionRepository struct {
	db *sqlx.DB
}

// NewSanctionRepository constructs a SanctionRepository.
func NewSanctionRepository(db *sqlx.DB) *SanctionRepository {
	return &SanctionRepository{db: db}
}

const sanctionColumns = "id, user_id, severity, reason, penalty_description, status, created_at, updated_at"

// ListForUser returns a member's sanctions newest first.
func (r *SanctionRepository) ListForUser(ctx context.Context, userID string) ([]models.Sanction, error) {
	query := fmt.Sprintf("SELECT %s FROM sanctions WHERE user_id = $1 ORDER BY created_at DESC", sanctionColumns)
	var sanctions []models.Sanction
	if err := r.db.SelectContext(ctx, &sanctions, query, userID); err != nil {
		return nil, fmt.Errorf("list sanctions: %w", err)
	}
	return sanctions, nil
}

// FindByID fetches a sanction by identifier.
func (r *SanctionRepository) FindByID(ctx context.Context, id string) (*models.Sanction, error) {
	query := fmt.Sprintf("SELECT %s FROM sanctions WHERE id = $1", sanctionColumns)
	var sanction models.Sanction
	if err := r.db.GetContext(ctx, &sanction, query, id); err != nil {
		return nil, err
	}
	return &sanction, nil
}

// Create inserts a sanction.
func (r *SanctionRepository) Create(ctx context.Context, sanction *models.Sanction) error {
	if sanction.ID == "" {
		sanction.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if sanction.CreatedAt.IsZero() {
		sanction.CreatedAt = now
	}
	sanction.UpdatedAt = now
	if sanction.Status == "" {
		sanction.Status = models.SanctionPendiente
	}
	const query = `INSERT INTO sanctions (id, user_id, severity, reason, penalty_description, status, created_at, updated_at)
        VALUES (:id, :user_id, :severity, :reason, :penalty_description, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, sanction); err != nil {
		return fmt.Errorf("create sanction: %w", err)
	}
	return nil
}

// SetStatus marks a sanction settled or reopens it.
func (r *SanctionRepository) SetStatus(ctx context.Context, id string, status models.SanctionStatus) error {
	const query = `UPDATE sanctions SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set sanction status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("set sanction status: %w", errNoRowsAffected)
	}
	return nil
}

// Delete removes a sanction record.
func (r *SanctionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM sanctions WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete sanction: %w", err)
	}
	return nil
}
