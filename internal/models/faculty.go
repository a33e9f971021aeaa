package models

import "time"

// Faculty is a teaching staff member.
type Faculty struct {
	ID         string    `db:"id" json:"id"`
	Firstname  string    `db:"firstname" json:"firstname"`
	Lastname   string    `db:"lastname" json:"lastname"`
	SubjectIDs []string  `db:"-" json:"subject_ids,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins the first and last name.
func (f Faculty) FullName() string {
	switch {
	case f.Firstname == "":
		return f.Lastname
	case f.Lastname == "":
		return f.Firstname
	}
	return f.Firstname + " " + f.Lastname
}

// Teaches reports whether the subject is on the faculty member's list.
func (f Faculty) Teaches(subjectID string) bool {
	for _, id := range f.SubjectIDs {
		if id == subjectID {
			return true
		}
	}
	return false
}
