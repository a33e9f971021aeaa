package dto

// AcademicPeriodRequest creates or replaces an academic period. Dates are
// YYYY-MM-DD; end date, quarters and grading deadline are derived from the
// start date and semester and cannot be set directly.
type AcademicPeriodRequest struct {
	SchoolYear          string `json:"school_year" validate:"required"`
	Semester            string `json:"semester" validate:"required,semester"`
	StartDate           string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EnrollmentStartDate string `json:"enrollment_start_date" validate:"omitempty,datetime=2006-01-02"`
	EnrollmentEndDate   string `json:"enrollment_end_date" validate:"omitempty,datetime=2006-01-02"`
	IsEnrollmentOpen    bool   `json:"is_enrollment_open"`
}

// AcademicPeriodListQuery binds the period list query string.
type AcademicPeriodListQuery struct {
	SchoolYearID int64  `form:"school_year_id" validate:"omitempty,gt=0"`
	Semester     string `form:"semester" validate:"omitempty,semester"`
	Active       *bool  `form:"active"`
	Page         int    `form:"page" validate:"omitempty,min=1"`
	PageSize     int    `form:"page_size" validate:"omitempty,min=1,max=100"`
}

// EnrollmentToggleRequest opens or closes enrollment.
type EnrollmentToggleRequest struct {
	Open *bool `json:"open" validate:"required"`
}

// CalendarPreviewQuery derives a calendar without saving it.
type CalendarPreviewQuery struct {
	StartDate string `form:"start_date"`
	Semester  string `form:"semester"`
}
