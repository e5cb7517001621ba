package models

import "time"

// SanctionSeverity grades an internal sanction.
type SanctionSeverity string

const (
	SanctionLeve   SanctionSeverity = "Leve"
	SanctionNormal SanctionSeverity = "Normal"
	SanctionGrave  SanctionSeverity = "Grave"
)

// SanctionStatus tracks whether the penalty was settled.
type SanctionStatus string

const (
	SanctionPendiente SanctionStatus = "Pendiente"
	SanctionSaldada   SanctionStatus = "Saldada"
)

// Sanction is an internal disciplinary record against a council member.
type Sanction struct {
	ID                 string           `db:"id" json:"id"`
	UserID             string           `db:"user_id" json:"user_id"`
	Severity           SanctionSeverity `db:"severity" json:"severity"`
	Reason             string           `db:"reason" json:"reason"`
	PenaltyDescription string           `db:"penalty_description" json:"penalty_description"`
	Status             SanctionStatus   `db:"status" json:"status"`
	CreatedAt          time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time        `db:"updated_at" json:"updated_at"`
}
