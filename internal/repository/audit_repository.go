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

// AuditRepository appends to and reads the administrative audit trail.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository constructs an AuditRepository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

const auditInsert = `INSERT INTO audit_logs (id, user_id, user_email, user_role, action, module, resource_id, details, ip_address, created_at)
    VALUES (:id, :user_id, :user_email, :user_role, :action, :module, :resource_id, :details, :ip_address, :created_at)`

// Insert appends a trail record outside any caller transaction.
func (r *AuditRepository) Insert(ctx context.Context, entry *models.AuditLog) error {
	prepareAudit(entry)
	if _, err := r.db.NamedExecContext(ctx, auditInsert, entry); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// InsertTx appends a trail record inside the caller's transaction so the
// audit row commits or rolls back together with the mutation it describes.
func (r *AuditRepository) InsertTx(ctx context.Context, tx *sqlx.Tx, entry *models.AuditLog) error {
	prepareAudit(entry)
	if _, err := tx.NamedExecContext(ctx, auditInsert, entry); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

func prepareAudit(entry *models.AuditLog) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
}

// List returns trail records newest first, optionally filtered by module.
func (r *AuditRepository) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, int, error) {
	base := "FROM audit_logs"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Module != "" {
		conditions = append(conditions, fmt.Sprintf("module = $%d", len(args)+1))
		args = append(args, filter.Module)
	}
	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, user_id, user_email, user_role, action, module, resource_id, details, ip_address, created_at
        %s ORDER BY created_at DESC LIMIT %d OFFSET %d`, base, size, offset)

	var entries []models.AuditLog
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list audit logs: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count audit logs: %w", err)
	}
	return entries, total, nil
}
