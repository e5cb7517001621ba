package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/salvaalejos/ceitm-web/internal/models"
)

// StudentRepository manages the scholarship-holder registry. Students are
// keyed by their institutional control number, not a surrogate ID.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ListHolders returns students with at least one approved or released
// application, joined with career names.
func (r *StudentRepository) ListHolders(ctx context.Context, career string, search string, page, size int) ([]models.StudentDetail, int, error) {
	base := `FROM students s
        LEFT JOIN careers c ON c.id = s.career_id
        WHERE EXISTS (
            SELECT 1 FROM scholarship_applications a
            WHERE a.control_number = s.control_number AND a.status IN ($1, $2)
        )`
	args := []interface{}{models.StatusAprobada, models.StatusLiberada}

	if career != "" {
		base += fmt.Sprintf(" AND c.name = $%d", len(args)+1)
		args = append(args, career)
	}
	if search != "" {
		base += fmt.Sprintf(" AND (LOWER(s.full_name) LIKE $%d OR s.control_number LIKE $%d)", len(args)+1, len(args)+1)
		args = append(args, "%"+strings.ToLower(search)+"%")
	}

	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT s.control_number, s.full_name, s.email, s.phone_number, s.career_id, s.blacklisted,
        s.created_at, s.updated_at, c.name AS career_name
        %s ORDER BY s.full_name ASC LIMIT %d OFFSET %d`, base, size, offset)

	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list scholarship holders: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count scholarship holders: %w", err)
	}
	return students, total, nil
}

// FindByControlNumber fetches a student by control number.
func (r *StudentRepository) FindByControlNumber(ctx context.Context, controlNumber string) (*models.Student, error) {
	const query = `SELECT control_number, full_name, email, phone_number, career_id, blacklisted, created_at, updated_at
        FROM students WHERE control_number = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, controlNumber); err != nil {
		return nil, err
	}
	return &student, nil
}

// SetBlacklisted toggles the blacklist flag.
func (r *StudentRepository) SetBlacklisted(ctx context.Context, controlNumber string, blacklisted bool) error {
	const query = `UPDATE students SET blacklisted = $2, updated_at = $3 WHERE control_number = $1`
	res, err := r.db.ExecContext(ctx, query, controlNumber, blacklisted, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set blacklist: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("set blacklist: %w", errNoRowsAffected)
	}
	return nil
}

// History returns every application a student has filed, newest first.
func (r *StudentRepository) History(ctx context.Context, controlNumber string) ([]models.ApplicationDetail, error) {
	query := fmt.Sprintf(`SELECT %s, s.name AS scholarship_name
        FROM scholarship_applications a
        JOIN scholarships s ON s.id = a.scholarship_id
        WHERE a.control_number = $1 ORDER BY a.created_at DESC`, applicationColumns("a"))
	var history []models.ApplicationDetail
	if err := r.db.SelectContext(ctx, &history, query, controlNumber); err != nil {
		return nil, fmt.Errorf("student history: %w", err)
	}
	return history, nil
}
