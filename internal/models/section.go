package models

import "time"

// Section is a class group within a strand and grade level.
type Section struct {
	ID          string    `db:"id" json:"id"`
	StrandID    string    `db:"strand_id" json:"strand_id"`
	GradeLevel  string    `db:"grade_level" json:"grade_level"`
	SectionName string    `db:"section_name" json:"section_name"`
	AdviserID   *string   `db:"adviser_id" json:"adviser_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
