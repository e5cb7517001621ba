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

// ComplaintRepository persists mailbox tickets and allocates their tracking
// codes.
type ComplaintRepository struct {
	db *sqlx.DB
}

// NewComplaintRepository constructs a ComplaintRepository.
func NewComplaintRepository(db *sqlx.DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

const complaintColumns = `id, full_name, control_number, phone_number, email, career, semester,
    type, description, evidence_url, tracking_code, admin_response, resolution_evidence_url, resolved_at, status, created_at`

// Create inserts the ticket and allocates its tracking code
// {PREFIX}-{YEAR}-{NNN} from a per-year sequence row, in one transaction.
// The upsert increments atomically, so concurrent submissions never share a
// code.
func (r *ComplaintRepository) Create(ctx context.Context, complaint *models.Complaint, prefix string) error {
	if complaint.ID == "" {
		complaint.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if complaint.CreatedAt.IsZero() {
		complaint.CreatedAt = now
	}
	if complaint.Status == "" {
		complaint.Status = models.ComplaintPendiente
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin complaint: %w", err)
	}
	defer tx.Rollback()

	year := now.Year()
	const sequence = `INSERT INTO tracking_sequences (name, year, value) VALUES ($1, $2, 1)
        ON CONFLICT (name, year) DO UPDATE SET value = tracking_sequences.value + 1
        RETURNING value`
	var seq int
	if err := tx.GetContext(ctx, &seq, sequence, "complaints", year); err != nil {
		return fmt.Errorf("allocate tracking sequence: %w", err)
	}
	complaint.TrackingCode = fmt.Sprintf("%s-%d-%03d", prefix, year, seq)

	const insert = `INSERT INTO complaints
        (id, full_name, control_number, phone_number, email, career, semester,
         type, description, evidence_url, tracking_code, admin_response, resolution_evidence_url, resolved_at, status, created_at)
        VALUES
        (:id, :full_name, :control_number, :phone_number, :email, :career, :semester,
         :type, :description, :evidence_url, :tracking_code, :admin_response, :resolution_evidence_url, :resolved_at, :status, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insert, complaint); err != nil {
		return fmt.Errorf("create complaint: %w", err)
	}
	return tx.Commit()
}

// FindByID fetches one ticket.
func (r *ComplaintRepository) FindByID(ctx context.Context, id string) (*models.Complaint, error) {
	query := fmt.Sprintf("SELECT %s FROM complaints WHERE id = $1", complaintColumns)
	var complaint models.Complaint
	if err := r.db.GetContext(ctx, &complaint, query, id); err != nil {
		return nil, err
	}
	return &complaint, nil
}

// FindByTrackingCode fetches the public projection of one ticket.
func (r *ComplaintRepository) FindByTrackingCode(ctx context.Context, code string) (*models.ComplaintPublicView, error) {
	const query = `SELECT tracking_code, type, status, admin_response, resolved_at, created_at
        FROM complaints WHERE tracking_code = $1`
	var view models.ComplaintPublicView
	if err := r.db.GetContext(ctx, &view, query, strings.ToUpper(code)); err != nil {
		return nil, err
	}
	return &view, nil
}

// List returns tickets matching the staff filter, newest first.
func (r *ComplaintRepository) List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, int, error) {
	base := "FROM complaints"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}
	if filter.Career != "" {
		conditions = append(conditions, fmt.Sprintf("career = $%d", len(args)+1))
		args = append(args, filter.Career)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", complaintColumns, base, size, offset)
	var complaints []models.Complaint
	if err := r.db.SelectContext(ctx, &complaints, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list complaints: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count complaints: %w", err)
	}
	return complaints, total, nil
}

// Resolve records the staff response and outcome status.
func (r *ComplaintRepository) Resolve(ctx context.Context, id string, status models.ComplaintStatus, response string, evidenceURL *string) error {
	const query = `UPDATE complaints SET status = $2, admin_response = $3, resolution_evidence_url = $4, resolved_at = $5 WHERE id = $1`
	var resolvedAt *time.Time
	if status == models.ComplaintResuelto || status == models.ComplaintRechazado {
		now := time.Now().UTC()
		resolvedAt = &now
	}
	res, err := r.db.ExecContext(ctx, query, id, status, response, evidenceURL, resolvedAt)
	if err != nil {
		return fmt.Errorf("resolve complaint: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("resolve complaint: %w", errNoRowsAffected)
	}
	return nil
}

// Delete removes a ticket permanently. Admin only.
func (r *ComplaintRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM complaints WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete complaint: %w", err)
	}
	return nil
}
