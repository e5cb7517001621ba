package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/salvaalejos/ceitm-web/internal/models"
)

// applicationColumns renders the full aliased column list of the
// scholarship_applications table.
func applicationColumns(alias string) string {
	cols := []string{
		"id", "scholarship_id",
		"full_name", "email", "phone_number", "control_number", "career", "semester",
		"cle_control_number", "level_to_enter",
		"address", "origin_address", "economic_dependence", "dependents_count", "family_income", "income_per_capita",
		"previous_scholarship", "activities", "motives",
		"doc_request", "doc_motives", "doc_address", "doc_income", "doc_ine", "doc_school_id", "doc_schedule", "doc_extra",
		"status", "admin_comments", "release_folio", "created_at", "updated_at",
	}
	prefixed := make([]string, len(cols))
	for i, col := range cols {
		prefixed[i] = alias + "." + col
	}
	return strings.Join(prefixed, ", ")
}

// TransitionPlan is the write set of one status transition, executed
// atomically together with its audit record.
type TransitionPlan struct {
	ApplicationID  string
	FromStatus     models.ApplicationStatus
	ToStatus       models.ApplicationStatus
	AdminComments  *string
	ReleaseFolio   *string
	ScholarshipID  string
	Career         string
	IncrementQuota bool
	DecrementQuota bool
	Audit          *models.AuditLog
}

// ApplicationRepository persists scholarship applications and their lifecycle
// transitions.
type ApplicationRepository struct {
	db    *sqlx.DB
	audit *AuditRepository
}

// NewApplicationRepository constructs an ApplicationRepository.
func NewApplicationRepository(db *sqlx.DB, audit *AuditRepository) *ApplicationRepository {
	return &ApplicationRepository{db: db, audit: audit}
}

// FindLatestForPair returns the newest application the student has filed
// against the scholarship, or sql.ErrNoRows when none exists. Submission
// semantics key on this pair: a fixable prior row is overwritten in place,
// any other prior row blocks a new one.
func (r *ApplicationRepository) FindLatestForPair(ctx context.Context, scholarshipID, controlNumber string) (*models.ScholarshipApplication, error) {
	query := fmt.Sprintf(`SELECT %s FROM scholarship_applications a
        WHERE a.scholarship_id = $1 AND a.control_number = $2
        ORDER BY a.created_at DESC LIMIT 1`, applicationColumns("a"))
	var app models.ScholarshipApplication
	if err := r.db.GetContext(ctx, &app, query, scholarshipID, controlNumber); err != nil {
		return nil, err
	}
	return &app, nil
}

// CreateSubmission inserts the application and upserts the student registry
// row for its control number in one transaction.
func (r *ApplicationRepository) CreateSubmission(ctx context.Context, app *models.ScholarshipApplication, student *models.Student) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = now
	if app.Status == "" {
		app.Status = models.StatusPendiente
	}
	student.UpdatedAt = now
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin submission: %w", err)
	}
	defer tx.Rollback()

	const upsertStudent = `INSERT INTO students (control_number, full_name, email, phone_number, career_id, blacklisted, created_at, updated_at)
        VALUES (:control_number, :full_name, :email, :phone_number, :career_id, false, :created_at, :updated_at)
        ON CONFLICT (control_number) DO UPDATE SET
            full_name = EXCLUDED.full_name,
            email = EXCLUDED.email,
            phone_number = EXCLUDED.phone_number,
            career_id = EXCLUDED.career_id,
            updated_at = EXCLUDED.updated_at`
	if _, err := tx.NamedExecContext(ctx, upsertStudent, student); err != nil {
		return fmt.Errorf("upsert student: %w", err)
	}

	const insert = `INSERT INTO scholarship_applications
        (id, scholarship_id, full_name, email, phone_number, control_number, career, semester,
         cle_control_number, level_to_enter,
         address, origin_address, economic_dependence, dependents_count, family_income, income_per_capita,
         previous_scholarship, activities, motives,
         doc_request, doc_motives, doc_address, doc_income, doc_ine, doc_school_id, doc_schedule, doc_extra,
         status, admin_comments, release_folio, created_at, updated_at)
        VALUES
        (:id, :scholarship_id, :full_name, :email, :phone_number, :control_number, :career, :semester,
         :cle_control_number, :level_to_enter,
         :address, :origin_address, :economic_dependence, :dependents_count, :family_income, :income_per_capita,
         :previous_scholarship, :activities, :motives,
         :doc_request, :doc_motives, :doc_address, :doc_income, :doc_ine, :doc_school_id, :doc_schedule, :doc_extra,
         :status, :admin_comments, :release_folio, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insert, app); err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return tx.Commit()
}

// GetByID fetches one application.
func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*models.ScholarshipApplication, error) {
	query := fmt.Sprintf("SELECT %s FROM scholarship_applications a WHERE a.id = $1", applicationColumns("a"))
	var app models.ScholarshipApplication
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		return nil, err
	}
	return &app, nil
}

// GetDetail fetches one application joined with its scholarship name.
func (r *ApplicationRepository) GetDetail(ctx context.Context, id string) (*models.ApplicationDetail, error) {
	query := fmt.Sprintf(`SELECT %s, s.name AS scholarship_name
        FROM scholarship_applications a
        JOIN scholarships s ON s.id = a.scholarship_id
        WHERE a.id = $1`, applicationColumns("a"))
	var detail models.ApplicationDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListPublicByControlNumber returns the reduced tracking projection of every
// application a student has filed, newest first.
func (r *ApplicationRepository) ListPublicByControlNumber(ctx context.Context, controlNumber string) ([]models.ApplicationPublicView, error) {
	const query = `SELECT a.id, s.name AS scholarship_name, a.status, a.admin_comments, a.release_folio, a.created_at, a.updated_at
        FROM scholarship_applications a
        JOIN scholarships s ON s.id = a.scholarship_id
        WHERE a.control_number = $1 ORDER BY a.created_at DESC`
	var views []models.ApplicationPublicView
	if err := r.db.SelectContext(ctx, &views, query, controlNumber); err != nil {
		return nil, fmt.Errorf("track applications: %w", err)
	}
	return views, nil
}

// List returns applications matching the staff filter.
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error) {
	base := "FROM scholarship_applications a JOIN scholarships s ON s.id = a.scholarship_id"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.ScholarshipID != "" {
		conditions = append(conditions, fmt.Sprintf("a.scholarship_id = $%d", len(args)+1))
		args = append(args, filter.ScholarshipID)
	}
	if filter.Career != "" {
		conditions = append(conditions, fmt.Sprintf("a.career = $%d", len(args)+1))
		args = append(args, filter.Career)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(a.full_name ILIKE $%d OR a.control_number ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"full_name":  "a.full_name",
		"career":     "a.career",
		"status":     "a.status",
		"created_at": "a.created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "a.created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s, s.name AS scholarship_name %s ORDER BY %s %s LIMIT %d OFFSET %d",
		applicationColumns("a"), base, column, order, size, offset)
	var apps []models.ApplicationDetail
	if err := r.db.SelectContext(ctx, &apps, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}
	return apps, total, nil
}

// ListAll returns every application matching the filter without pagination,
// used by the CSV export.
func (r *ApplicationRepository) ListAll(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, error) {
	filter.Page = 1
	filter.PageSize = 100
	var all []models.ApplicationDetail
	for {
		page, total, err := r.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(all) >= total || len(page) == 0 {
			return all, nil
		}
		filter.Page++
	}
}

// Resubmit replaces the applicant-editable fields, clears the prior review
// comments and moves the application back to pending review. The guard only
// fires from fixable states.
func (r *ApplicationRepository) Resubmit(ctx context.Context, app *models.ScholarshipApplication) error {
	app.UpdatedAt = time.Now().UTC()
	const query = `UPDATE scholarship_applications SET
        full_name = :full_name, email = :email, phone_number = :phone_number, semester = :semester,
        cle_control_number = :cle_control_number, level_to_enter = :level_to_enter,
        address = :address, origin_address = :origin_address, economic_dependence = :economic_dependence,
        dependents_count = :dependents_count, family_income = :family_income, income_per_capita = :income_per_capita,
        previous_scholarship = :previous_scholarship, activities = :activities, motives = :motives,
        doc_request = :doc_request, doc_motives = :doc_motives, doc_address = :doc_address,
        doc_income = :doc_income, doc_ine = :doc_ine, doc_school_id = :doc_school_id,
        doc_schedule = :doc_schedule, doc_extra = :doc_extra,
        status = 'Pendiente', admin_comments = NULL, updated_at = :updated_at
        WHERE id = :id AND status IN ('Rechazada', 'Documentación Faltante')`
	res, err := r.db.NamedExecContext(ctx, query, app)
	if err != nil {
		return fmt.Errorf("resubmit application: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStaleStatus
	}
	return nil
}

// ApplyTransition executes one status transition atomically: the guarded
// status update, any quota adjustment, and the audit record commit together
// or not at all.
func (r *ApplicationRepository) ApplyTransition(ctx context.Context, plan TransitionPlan) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transition: %w", err)
	}
	defer tx.Rollback()

	const update = `UPDATE scholarship_applications SET status = $2,
        admin_comments = COALESCE($3, admin_comments),
        release_folio = COALESCE($4, release_folio),
        updated_at = $5
        WHERE id = $1 AND status = $6`
	res, err := tx.ExecContext(ctx, update, plan.ApplicationID, plan.ToStatus, plan.AdminComments, plan.ReleaseFolio, time.Now().UTC(), plan.FromStatus)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrFolioTaken
		}
		return fmt.Errorf("update application status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStaleStatus
	}

	if plan.IncrementQuota {
		const increment = `UPDATE scholarship_quotas SET used_slots = used_slots + 1, updated_at = $3
            WHERE scholarship_id = $1 AND career = $2 AND used_slots < total_slots`
		res, err := tx.ExecContext(ctx, increment, plan.ScholarshipID, plan.Career, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("increment quota: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrQuotaExhausted
		}
	}
	if plan.DecrementQuota {
		// Releasing a seat on a career whose counter is already zero is
		// a no-op, not an error.
		const decrement = `UPDATE scholarship_quotas SET used_slots = used_slots - 1, updated_at = $3
            WHERE scholarship_id = $1 AND career = $2 AND used_slots > 0`
		if _, err := tx.ExecContext(ctx, decrement, plan.ScholarshipID, plan.Career, time.Now().UTC()); err != nil {
			return fmt.Errorf("decrement quota: %w", err)
		}
	}

	if plan.Audit != nil {
		if err := r.audit.InsertTx(ctx, tx, plan.Audit); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
