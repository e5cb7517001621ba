package models

import "time"

// Career is an academic program offered at the institute.
type Career struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Slug        string    `db:"slug" json:"slug"`
	WhatsappURL *string   `db:"whatsapp_url" json:"whatsapp_url,omitempty"`
	ImageURL    *string   `db:"image_url" json:"image_url,omitempty"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
