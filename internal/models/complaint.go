package models

import "time"

// ComplaintType classifies the mailbox entry.
type ComplaintType string

const (
	ComplaintQueja      ComplaintType = "Queja"
	ComplaintSugerencia ComplaintType = "Sugerencia"
	ComplaintAmbas      ComplaintType = "Ambas"
)

// ComplaintStatus is the ticket state.
type ComplaintStatus string

const (
	ComplaintPendiente ComplaintStatus = "Pendiente"
	ComplaintEnProceso ComplaintStatus = "En Proceso"
	ComplaintResuelto  ComplaintStatus = "Resuelto"
	ComplaintRechazado ComplaintStatus = "Rechazado"
)

// Complaint is a public ticket against the mailbox.
type Complaint struct {
	ID string `db:"id" json:"id"`

	FullName      string `db:"full_name" json:"full_name"`
	ControlNumber string `db:"control_number" json:"control_number"`
	PhoneNumber   string `db:"phone_number" json:"phone_number"`
	Email         string `db:"email" json:"email"`
	Career        string `db:"career" json:"career"`
	Semester      string `db:"semester" json:"semester"`

	Type        ComplaintType `db:"type" json:"type"`
	Description string        `db:"description" json:"description"`
	EvidenceURL *string       `db:"evidence_url" json:"evidence_url,omitempty"`

	TrackingCode string `db:"tracking_code" json:"tracking_code"`

	AdminResponse         *string    `db:"admin_response" json:"admin_response,omitempty"`
	ResolutionEvidenceURL *string    `db:"resolution_evidence_url" json:"resolution_evidence_url,omitempty"`
	ResolvedAt            *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`

	Status    ComplaintStatus `db:"status" json:"status"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// ComplaintPublicView is the unauthenticated tracking projection.
type ComplaintPublicView struct {
	TrackingCode  string          `db:"tracking_code" json:"tracking_code"`
	Type          ComplaintType   `db:"type" json:"type"`
	Status        ComplaintStatus `db:"status" json:"status"`
	AdminResponse *string         `db:"admin_response" json:"admin_response,omitempty"`
	ResolvedAt    *time.Time      `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// ComplaintFilter captures staff listing criteria.
type ComplaintFilter struct {
	Type     ComplaintType
	Career   string
	Status   ComplaintStatus
	Page     int
	PageSize int
}
