package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/salvaalejos/ceitm-web/internal/models"
)

// ShiftRepository manages the weekly guard-duty grid.
type ShiftRepository struct {
	db *sqlx.DB
}

// NewShiftRepository constructs a ShiftRepository.
func NewShiftRepository(db *sqlx.DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

// ListWeek returns the whole grid with assignee names.
func (r *ShiftRepository) ListWeek(ctx context.Context) ([]models.ShiftDetail, error) {
	const query = `SELECT s.id, s.user_id, s.day, s.hour, u.full_name AS user_name
        FROM shifts s JOIN users u ON u.id = s.user_id
        ORDER BY s.day ASC, s.hour ASC`
	var shifts []models.ShiftDetail
	if err := r.db.SelectContext(ctx, &shifts, query); err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	return shifts, nil
}

// ListForUser returns one member's assigned blocks.
func (r *ShiftRepository) ListForUser(ctx context.Context, userID string) ([]models.Shift, error) {
	const query = `SELECT id, user_id, day, hour FROM shifts WHERE user_id = $1 ORDER BY day ASC, hour ASC`
	var shifts []models.Shift
	if err := r.db.SelectContext(ctx, &shifts, query, userID); err != nil {
		return nil, fmt.Errorf("list user shifts: %w", err)
	}
	return shifts, nil
}

// SlotTaken reports whether a day/hour block is already assigned.
func (r *ShiftRepository) SlotTaken(ctx context.Context, day models.DayOfWeek, hour int) (bool, error) {
	const query = `SELECT 1 FROM shifts WHERE day = $1 AND hour = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, day, hour); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check shift slot: %w", err)
	}
	return true, nil
}

// Create assigns a block.
func (r *ShiftRepository) Create(ctx context.Context, shift *models.Shift) error {
	if shift.ID == "" {
		shift.ID = uuid.NewString()
	}
	const query = `INSERT INTO shifts (id, user_id, day, hour) VALUES (:id, :user_id, :day, :hour)`
	if _, err := r.db.NamedExecContext(ctx, query, shift); err != nil {
		return fmt.Errorf("create shift: %w", err)
	}
	return nil
}

// Delete frees a block.
func (r *ShiftRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM shifts WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete shift: %w", err)
	}
	return nil
}
