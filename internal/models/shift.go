package models

// DayOfWeek covers the operating days of the council office.
type DayOfWeek string

const (
	DayLunes     DayOfWeek = "Lunes"
	DayMartes    DayOfWeek = "Martes"
	DayMiercoles DayOfWeek = "Miércoles"
	DayJueves    DayOfWeek = "Jueves"
	DayViernes   DayOfWeek = "Viernes"
)

// Shift is one guard-duty block on the weekly grid (7:00-20:00).
type Shift struct {
	ID     string    `db:"id" json:"id"`
	UserID string    `db:"user_id" json:"user_id"`
	Day    DayOfWeek `db:"day" json:"day"`
	Hour   int       `db:"hour" json:"hour"`
}

// ShiftDetail joins the assignee name for the grid view.
type ShiftDetail struct {
	Shift
	UserName string `db:"user_name" json:"user_name"`
}
