package models

import "time"

// DocumentCategory groups official documents.
type DocumentCategory string

const (
	DocFinanciero    DocumentCategory = "Financiero"
	DocLegal         DocumentCategory = "Legal y Normativo"
	DocActas         DocumentCategory = "Actas y Acuerdos"
	DocConvocatorias DocumentCategory = "Convocatorias"
	DocOtros         DocumentCategory = "Otros"
)

// Document is an official file published by the council.
type Document struct {
	ID          string           `db:"id" json:"id"`
	Title       string           `db:"title" json:"title"`
	Description *string          `db:"description" json:"description,omitempty"`
	FileURL     string           `db:"file_url" json:"file_url"`
	Category    DocumentCategory `db:"category" json:"category"`
	Public      bool             `db:"public" json:"public"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
}
