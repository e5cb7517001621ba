package models

import "time"

// UserRole is the council hierarchy level used by the RBAC system.
type UserRole string

const (
	RoleAdminSys    UserRole = "admin_sys"
	RoleEstructura  UserRole = "estructura"
	RoleCoordinador UserRole = "coordinador"
	RoleConcejal    UserRole = "concejal"
	RoleVocal       UserRole = "vocal"
)

// UserArea is the council department a member belongs to.
type UserArea string

const (
	AreaPresidencia    UserArea = "Presidencia"
	AreaSecretaria     UserArea = "Secretaría General"
	AreaTesoreria      UserArea = "Tesorería"
	AreaContraloria    UserArea = "Contraloría"
	AreaAcademico      UserArea = "Académico"
	AreaVinculacion    UserArea = "Vinculación"
	AreaBecas          UserArea = "Becas y Apoyos"
	AreaComunicacion   UserArea = "Comunicación y Difusión"
	AreaEventos        UserArea = "Eventos (SODECU)"
	AreaPrevencion     UserArea = "Prevención y Logística"
	AreaMarketing      UserArea = "Marketing y Diseño"
	AreaConsejoGeneral UserArea = "Consejo General"
	AreaSistemas       UserArea = "Sistemas"
	AreaNinguna        UserArea = "Ninguna"
)

// User represents a council member account stored in the users table.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	PhoneNumber  *string   `db:"phone_number" json:"phone_number,omitempty"`
	InstagramURL *string   `db:"instagram_url" json:"instagram_url,omitempty"`
	Role         UserRole  `db:"role" json:"role"`
	Area         UserArea  `db:"area" json:"area"`
	Career       *string   `db:"career" json:"career,omitempty"`
	ImageURL     *string   `db:"image_url" json:"image_url,omitempty"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Area      *UserArea
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
