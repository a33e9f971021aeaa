package models

import "time"

// AcademicPeriod is a semester within a school year with its derived calendar.
type AcademicPeriod struct {
	ID                  string    `db:"id" json:"id"`
	SchoolYearID        int64     `db:"school_year_id" json:"school_year_id"`
	YearStart           int       `db:"year_start" json:"year_start"`
	YearEnd             int       `db:"year_end" json:"year_end"`
	Semester            Semester  `db:"semester" json:"semester"`
	StartDate           Date      `db:"start_date" json:"start_date"`
	EndDate             Date      `db:"end_date" json:"end_date"`
	Quarter1Start       Date      `db:"quarter1_start" json:"quarter1_start"`
	Quarter1End         Date      `db:"quarter1_end" json:"quarter1_end"`
	Quarter2Start       Date      `db:"quarter2_start" json:"quarter2_start"`
	Quarter2End         Date      `db:"quarter2_end" json:"quarter2_end"`
	Quarter3Start       Date      `db:"quarter3_start" json:"quarter3_start"`
	Quarter3End         Date      `db:"quarter3_end" json:"quarter3_end"`
	Quarter4Start       Date      `db:"quarter4_start" json:"quarter4_start"`
	Quarter4End         Date      `db:"quarter4_end" json:"quarter4_end"`
	GradingDeadline     Date      `db:"grading_deadline" json:"grading_deadline"`
	EnrollmentStartDate Date      `db:"enrollment_start_date" json:"enrollment_start_date"`
	EnrollmentEndDate   Date      `db:"enrollment_end_date" json:"enrollment_end_date"`
	IsActive            bool      `db:"is_active" json:"is_active"`
	IsEnrollmentOpen    bool      `db:"is_enrollment_open" json:"is_enrollment_open"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// SchoolYearLabel renders the owning year as "YYYY-YYYY".
func (p AcademicPeriod) SchoolYearLabel() string {
	return SchoolYear{StartYear: p.YearStart, EndYear: p.YearEnd}.Format()
}

// AcademicPeriodFilter narrows academic period listings.
type AcademicPeriodFilter struct {
	SchoolYearID int64
	Semester     Semester
	IsActive     *bool
	Page         int
	PageSize     int
}
