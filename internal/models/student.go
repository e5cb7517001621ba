package models

import "time"

// Student is keyed by the institutional control number.
type Student struct {
	ControlNumber string    `db:"control_number" json:"control_number"`
	FullName      string    `db:"full_name" json:"full_name"`
	Email         string    `db:"email" json:"email"`
	PhoneNumber   *string   `db:"phone_number" json:"phone_number,omitempty"`
	CareerID      *string   `db:"career_id" json:"career_id,omitempty"`
	Blacklisted   bool      `db:"blacklisted" json:"blacklisted"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// StudentDetail joins the career name for listings.
type StudentDetail struct {
	Student
	CareerName *string `db:"career_name" json:"career_name,omitempty"`
}
