package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/salvaalejos/ceitm-web/internal/models"
)

// Guard failures surfaced by conditional updates. Services translate these
// into the caller-facing error taxonomy.
var (
	errNoRowsAffected = errors.New("no rows affected")

	// ErrQuotaExhausted means the guarded increment found no free slot.
	ErrQuotaExhausted = errors.New("quota exhausted")

	// ErrStaleStatus means the row left the expected status before the
	// guarded update ran.
	ErrStaleStatus = errors.New("application status changed concurrently")

	// ErrQuotaBelowUsage means a quota edit asked for fewer total seats
	// than are already consumed.
	ErrQuotaBelowUsage = errors.New("quota total below used seats")

	// ErrFolioTaken means the release folio is already assigned to another
	// application.
	ErrFolioTaken = errors.New("release folio already assigned")
)

// ScholarshipRepository manages scholarship calls and their per-career quotas.
type ScholarshipRepository struct {
	db *sqlx.DB
}

// NewScholarshipRepository constructs a ScholarshipRepository.
func NewScholarshipRepository(db *sqlx.DB) *ScholarshipRepository {
	return &ScholarshipRepository{db: db}
}

const scholarshipColumns = "id, name, type, description, start_date, end_date, results_date, activity_code, cycle, active, created_at, updated_at"

// List returns scholarship calls newest first, optionally only active ones.
func (r *ScholarshipRepository) List(ctx context.Context, onlyActive bool) ([]models.Scholarship, error) {
	query := fmt.Sprintf("SELECT %s FROM scholarships", scholarshipColumns)
	if onlyActive {
		query += " WHERE active = true"
	}
	query += " ORDER BY start_date DESC"
	var scholarships []models.Scholarship
	if err := r.db.SelectContext(ctx, &scholarships, query); err != nil {
		return nil, fmt.Errorf("list scholarships: %w", err)
	}
	return scholarships, nil
}

// FindByID fetches a scholarship call by identifier.
func (r *ScholarshipRepository) FindByID(ctx context.Context, id string) (*models.Scholarship, error) {
	query := fmt.Sprintf("SELECT %s FROM scholarships WHERE id = $1", scholarshipColumns)
	var scholarship models.Scholarship
	if err := r.db.GetContext(ctx, &scholarship, query, id); err != nil {
		return nil, err
	}
	return &scholarship, nil
}

// Create inserts a scholarship call together with a zeroed quota row per
// provided career, in one transaction.
func (r *ScholarshipRepository) Create(ctx context.Context, scholarship *models.Scholarship, careers []string, slotsPerCareer int) error {
	if scholarship.ID == "" {
		scholarship.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if scholarship.CreatedAt.IsZero() {
		scholarship.CreatedAt = now
	}
	scholarship.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create scholarship: %w", err)
	}
	defer tx.Rollback()

	const insert = `INSERT INTO scholarships (id, name, type, description, start_date, end_date, results_date, activity_code, cycle, active, created_at, updated_at)
        VALUES (:id, :name, :type, :description, :start_date, :end_date, :results_date, :activity_code, :cycle, :active, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insert, scholarship); err != nil {
		return fmt.Errorf("create scholarship: %w", err)
	}

	const quotaInsert = `INSERT INTO scholarship_quotas (id, scholarship_id, career, total_slots, used_slots, created_at, updated_at)
        VALUES ($1, $2, $3, $4, 0, $5, $5)`
	for _, career := range careers {
		if _, err := tx.ExecContext(ctx, quotaInsert, uuid.NewString(), scholarship.ID, career, slotsPerCareer, now); err != nil {
			return fmt.Errorf("seed quota for %s: %w", career, err)
		}
	}
	return tx.Commit()
}

// Update modifies an existing scholarship call.
func (r *ScholarshipRepository) Update(ctx context.Context, scholarship *models.Scholarship) error {
	scholarship.UpdatedAt = time.Now().UTC()
	const query = `UPDATE scholarships SET name = :name, type = :type, description = :description,
        start_date = :start_date, end_date = :end_date, results_date = :results_date,
        activity_code = :activity_code, cycle = :cycle, active = :active, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, scholarship); err != nil {
		return fmt.Errorf("update scholarship: %w", err)
	}
	return nil
}

// Deactivate closes a call without deleting its history.
func (r *ScholarshipRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE scholarships SET active = false, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate scholarship: %w", err)
	}
	return nil
}

// ListQuotas returns the per-career allocation of one call.
func (r *ScholarshipRepository) ListQuotas(ctx context.Context, scholarshipID string) ([]models.ScholarshipQuota, error) {
	const query = `SELECT id, scholarship_id, career, total_slots, used_slots, created_at, updated_at
        FROM scholarship_quotas WHERE scholarship_id = $1 ORDER BY career ASC`
	var quotas []models.ScholarshipQuota
	if err := r.db.SelectContext(ctx, &quotas, query, scholarshipID); err != nil {
		return nil, fmt.Errorf("list quotas: %w", err)
	}
	return quotas, nil
}

// GetQuota fetches the allocation for one scholarship and career.
func (r *ScholarshipRepository) GetQuota(ctx context.Context, scholarshipID, career string) (*models.ScholarshipQuota, error) {
	const query = `SELECT id, scholarship_id, career, total_slots, used_slots, created_at, updated_at
        FROM scholarship_quotas WHERE scholarship_id = $1 AND career = $2`
	var quota models.ScholarshipQuota
	if err := r.db.GetContext(ctx, &quota, query, scholarshipID, career); err != nil {
		return nil, err
	}
	return &quota, nil
}

// InitMissingQuotas inserts zeroed quota rows for careers that gained a seat
// allocation after the call was created. Existing rows are left untouched.
func (r *ScholarshipRepository) InitMissingQuotas(ctx context.Context, scholarshipID string, careers []string, slotsPerCareer int) error {
	const query = `INSERT INTO scholarship_quotas (id, scholarship_id, career, total_slots, used_slots, created_at, updated_at)
        VALUES ($1, $2, $3, $4, 0, $5, $5)
        ON CONFLICT (scholarship_id, career) DO NOTHING`
	now := time.Now().UTC()
	for _, career := range careers {
		if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), scholarshipID, career, slotsPerCareer, now); err != nil {
			return fmt.Errorf("init quota for %s: %w", career, err)
		}
	}
	return nil
}

// SetQuotaTotal changes the seat count for one career. It locks the quota
// row first so a missing row (sql.ErrNoRows) and a shrink below the seats
// already consumed (ErrQuotaBelowUsage) surface as distinct failures.
func (r *ScholarshipRepository) SetQuotaTotal(ctx context.Context, scholarshipID, career string, total int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin set quota: %w", err)
	}
	defer tx.Rollback()

	const lock = `SELECT used_slots FROM scholarship_quotas WHERE scholarship_id = $1 AND career = $2 FOR UPDATE`
	var used int
	if err := tx.GetContext(ctx, &used, lock, scholarshipID, career); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("lock quota row: %w", err)
	}
	if used > total {
		return ErrQuotaBelowUsage
	}

	const update = `UPDATE scholarship_quotas SET total_slots = $3, updated_at = $4
        WHERE scholarship_id = $1 AND career = $2`
	if _, err := tx.ExecContext(ctx, update, scholarshipID, career, total, time.Now().UTC()); err != nil {
		return fmt.Errorf("set quota total: %w", err)
	}
	return tx.Commit()
}
