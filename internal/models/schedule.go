package models

import "time"

// Schedule is one recurring weekly class meeting of a subject for a section.
type Schedule struct {
	ID           string    `db:"id" json:"id"`
	SectionID    string    `db:"section_id" json:"section_id"`
	SubjectID    string    `db:"subject_id" json:"subject_id"`
	FacultyID    string    `db:"faculty_id" json:"faculty_id,omitempty"`
	DayOfWeek    Weekday   `db:"day_of_week" json:"day_of_week"`
	StartTime    string    `db:"start_time" json:"start_time"`
	EndTime      string    `db:"end_time" json:"end_time"`
	Duration     int       `db:"duration" json:"duration"`
	Semester     Semester  `db:"semester" json:"semester"`
	SchoolYearID int64     `db:"school_year_id" json:"school_year_id"`
	Room         *string   `db:"room" json:"room,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// HasFaculty reports whether a faculty member is assigned (empty means TBA).
func (s Schedule) HasFaculty() bool {
	return s.FacultyID != ""
}

// ScheduleFilter describes query params for listing schedules.
type ScheduleFilter struct {
	SectionID    string
	SubjectID    string
	FacultyID    string
	DayOfWeek    Weekday
	Semester     Semester
	SchoolYearID int64
	Room         string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

// ScheduleConflict describes an existing schedule that blocks a candidate.
type ScheduleConflict struct {
	ScheduleID   string   `json:"schedule_id"`
	SectionID    string   `json:"section_id"`
	SubjectID    string   `json:"subject_id"`
	FacultyID    string   `json:"faculty_id,omitempty"`
	DayOfWeek    Weekday  `json:"day_of_week"`
	StartTime    string   `json:"start_time"`
	EndTime      string   `json:"end_time"`
	Semester     Semester `json:"semester"`
	SchoolYearID int64    `json:"school_year_id"`
}

// ConflictFromSchedule projects a schedule into its diagnostic form.
func ConflictFromSchedule(s Schedule) ScheduleConflict {
	return ScheduleConflict{
		ScheduleID:   s.ID,
		SectionID:    s.SectionID,
		SubjectID:    s.SubjectID,
		FacultyID:    s.FacultyID,
		DayOfWeek:    s.DayOfWeek,
		StartTime:    s.StartTime,
		EndTime:      s.EndTime,
		Semester:     s.Semester,
		SchoolYearID: s.SchoolYearID,
	}
}

// ScheduleConflictError is returned when a candidate schedule is rejected.
type ScheduleConflictError struct {
	Kind      string             `json:"kind"`
	Message   string             `json:"message"`
	FacultyID string             `json:"faculty_id,omitempty"`
	Cap       int                `json:"cap,omitempty"`
	Count     int                `json:"count,omitempty"`
	Conflicts []ScheduleConflict `json:"conflicts,omitempty"`
}

// Error implements the error interface for conflict errors.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// ScheduleScope selects the schedules a candidate is validated against:
// every schedule of the same school year and semester that shares the
// candidate's faculty member or section.
type ScheduleScope struct {
	SchoolYearID int64
	Semester     Semester
	FacultyID    string
	SectionID    string
}
