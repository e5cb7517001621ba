package models

import "time"

// ScholarshipType identifies the funding campaign category.
type ScholarshipType string

const (
	ScholarshipAlimenticia   ScholarshipType = "Alimenticia"
	ScholarshipReinscripcion ScholarshipType = "Reinscripción"
	ScholarshipCLE           ScholarshipType = "CLE (Idiomas)"
	ScholarshipOtra          ScholarshipType = "Otra"
)

// Code returns the single-letter type code used in release folios.
func (t ScholarshipType) Code() string {
	switch t {
	case ScholarshipAlimenticia:
		return "A"
	case ScholarshipReinscripcion:
		return "R"
	case ScholarshipCLE:
		return "C"
	default:
		return "O"
	}
}

// ApplicationStatus is the lifecycle state of a scholarship application.
type ApplicationStatus string

const (
	StatusPendiente   ApplicationStatus = "Pendiente"
	StatusEnRevision  ApplicationStatus = "En Revisión"
	StatusAprobada    ApplicationStatus = "Aprobada"
	StatusRechazada   ApplicationStatus = "Rechazada"
	StatusDocFaltante ApplicationStatus = "Documentación Faltante"
	StatusLiberada    ApplicationStatus = "Liberada"
)

// Fixable reports whether a terminal state permits re-submission.
func (s ApplicationStatus) Fixable() bool {
	return s == StatusRechazada || s == StatusDocFaltante
}

// Valid reports whether the status is one of the known lifecycle states.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusPendiente, StatusEnRevision, StatusAprobada, StatusRechazada, StatusDocFaltante, StatusLiberada:
		return true
	}
	return false
}

// Scholarship is a funding campaign (convocatoria).
type Scholarship struct {
	ID           string          `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	Type         ScholarshipType `db:"type" json:"type"`
	Description  string          `db:"description" json:"description"`
	StartDate    time.Time       `db:"start_date" json:"start_date"`
	EndDate      time.Time       `db:"end_date" json:"end_date"`
	ResultsDate  time.Time       `db:"results_date" json:"results_date"`
	ActivityCode string          `db:"activity_code" json:"activity_code"`
	Cycle        string          `db:"cycle" json:"cycle"`
	Active       bool            `db:"active" json:"active"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// Open reports whether the registration window contains the given instant.
func (s *Scholarship) Open(now time.Time) bool {
	return s.Active && !now.Before(s.StartDate) && !now.After(s.EndDate)
}

// ScholarshipQuota is the per-career seat allocation for one scholarship.
// Invariant: 0 <= used_slots <= total_slots.
type ScholarshipQuota struct {
	ID            string    `db:"id" json:"id"`
	ScholarshipID string    `db:"scholarship_id" json:"scholarship_id"`
	Career        string    `db:"career" json:"career"`
	TotalSlots    int       `db:"total_slots" json:"total_slots"`
	UsedSlots     int       `db:"used_slots" json:"used_slots"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// ScholarshipApplication is one student's request against one scholarship.
type ScholarshipApplication struct {
	ID            string `db:"id" json:"id"`
	ScholarshipID string `db:"scholarship_id" json:"scholarship_id"`

	FullName      string `db:"full_name" json:"full_name"`
	Email         string `db:"email" json:"email"`
	PhoneNumber   string `db:"phone_number" json:"phone_number"`
	ControlNumber string `db:"control_number" json:"control_number"`
	Career        string `db:"career" json:"career"`
	Semester      string `db:"semester" json:"semester"`

	CLEControlNumber *string `db:"cle_control_number" json:"cle_control_number,omitempty"`
	LevelToEnter     *string `db:"level_to_enter" json:"level_to_enter,omitempty"`

	Address            string  `db:"address" json:"address"`
	OriginAddress      string  `db:"origin_address" json:"origin_address"`
	EconomicDependence string  `db:"economic_dependence" json:"economic_dependence"`
	DependentsCount    int     `db:"dependents_count" json:"dependents_count"`
	FamilyIncome       float64 `db:"family_income" json:"family_income"`
	IncomePerCapita    float64 `db:"income_per_capita" json:"income_per_capita"`

	PreviousScholarship *string `db:"previous_scholarship" json:"previous_scholarship,omitempty"`
	Activities          *string `db:"activities" json:"activities,omitempty"`
	Motives             string  `db:"motives" json:"motives"`

	DocRequest  *string `db:"doc_request" json:"doc_request,omitempty"`
	DocMotives  *string `db:"doc_motives" json:"doc_motives,omitempty"`
	DocAddress  *string `db:"doc_address" json:"doc_address,omitempty"`
	DocIncome   *string `db:"doc_income" json:"doc_income,omitempty"`
	DocINE      *string `db:"doc_ine" json:"doc_ine,omitempty"`
	DocSchoolID *string `db:"doc_school_id" json:"doc_school_id,omitempty"`
	DocSchedule *string `db:"doc_schedule" json:"doc_schedule,omitempty"`
	DocExtra    *string `db:"doc_extra" json:"doc_extra,omitempty"`

	Status        ApplicationStatus `db:"status" json:"status"`
	AdminComments *string           `db:"admin_comments" json:"admin_comments,omitempty"`
	ReleaseFolio  *string           `db:"release_folio" json:"release_folio,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ApplicationDetail joins the scholarship name for staff listings.
type ApplicationDetail struct {
	ScholarshipApplication
	ScholarshipName string `db:"scholarship_name" json:"scholarship_name"`
}

// ApplicationPublicView is the unauthenticated tracking projection. Nothing
// beyond status, comments and timestamps leaves this path.
type ApplicationPublicView struct {
	ID              string            `db:"id" json:"id"`
	ScholarshipName string            `db:"scholarship_name" json:"scholarship_name"`
	Status          ApplicationStatus `db:"status" json:"status"`
	AdminComments   *string           `db:"admin_comments" json:"admin_comments,omitempty"`
	ReleaseFolio    *string           `db:"release_folio" json:"release_folio,omitempty"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updated_at"`
}

// ApplicationFilter captures staff listing criteria.
type ApplicationFilter struct {
	ScholarshipID string
	Career        string
	Status        ApplicationStatus
	Search        string
	Page          int
	PageSize      int
	SortBy        string
	SortOrder     string
}
