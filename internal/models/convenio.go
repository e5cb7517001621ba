package models

import (
	"encoding/json"
	"time"
)

// Convenio is a benefits agreement with a local business.
type Convenio struct {
	ID               string          `db:"id" json:"id"`
	Name             string          `db:"name" json:"name"`
	ShortDescription string          `db:"short_description" json:"short_description"`
	LongDescription  string          `db:"long_description" json:"long_description"`
	Category         string          `db:"category" json:"category"`
	ImageURL         string          `db:"image_url" json:"image_url"`
	Address          *string         `db:"address" json:"address,omitempty"`
	Benefits         json.RawMessage `db:"benefits" json:"benefits"`
	SocialLinks      json.RawMessage `db:"social_links" json:"social_links"`
	Active           bool            `db:"active" json:"active"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}
