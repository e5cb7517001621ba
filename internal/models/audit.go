package models

import "time"

// Audit modules used across services.
const (
	ModuleUsuarios   = "USUARIOS"
	ModuleBecas      = "BECAS"
	ModuleQuejas     = "QUEJAS"
	ModuleNoticias   = "NOTICIAS"
	ModuleDocumentos = "DOCUMENTOS"
	ModuleConvenios  = "CONVENIOS"
	ModuleMapa       = "MAPA"
	ModuleGuardias   = "GUARDIAS"
	ModuleSanciones  = "SANCIONES"
	ModuleCarreras   = "CARRERAS"
	ModuleAlumnos    = "ALUMNOS"
	ModuleAuth       = "AUTH"
)

// AuditLog is an append-only trail record. Rows are written inside the same
// transaction as the mutation they describe and never updated or deleted.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	UserEmail  string    `db:"user_email" json:"user_email"`
	UserRole   string    `db:"user_role" json:"user_role"`
	Action     string    `db:"action" json:"action"`
	Module     string    `db:"module" json:"module"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	Details    *string   `db:"details" json:"details,omitempty"`
	IPAddress  *string   `db:"ip_address" json:"ip_address,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// AuditFilter captures listing criteria for the audit trail.
type AuditFilter struct {
	Module   string
	Page     int
	PageSize int
}
