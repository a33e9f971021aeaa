package models

import "time"

// Subject represents an academic subject offered to a strand and grade level.
type Subject struct {
	ID         string    `db:"id" json:"id"`
	Code       string    `db:"code" json:"code"`
	Name       string    `db:"name" json:"name"`
	StrandID   string    `db:"strand_id" json:"strand_id"`
	GradeLevel string    `db:"grade_level" json:"grade_level"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// EligibleSubject annotates a subject with its pickability for a section.
type EligibleSubject struct {
	Subject
	IsDisabled     bool   `json:"is_disabled"`
	DisabledReason string `json:"disabled_reason,omitempty"`
}
