package dto

import "github.com/noah-isme/sma-registrar-api/internal/models"

// ScheduleRequest is the payload for creating or replacing a schedule.
// An empty faculty_id leaves the schedule TBA.
type ScheduleRequest struct {
	SectionID    string  `json:"section_id" validate:"required"`
	SubjectID    string  `json:"subject_id" validate:"required"`
	FacultyID    string  `json:"faculty_id"`
	DayOfWeek    string  `json:"day_of_week" validate:"required,weekday"`
	StartTime    string  `json:"start_time" validate:"required,clock"`
	EndTime      string  `json:"end_time" validate:"required,clock"`
	Semester     string  `json:"semester" validate:"required,semester"`
	SchoolYearID int64   `json:"school_year_id" validate:"required,gt=0"`
	Room         *string `json:"room" validate:"omitempty,max=50"`
}

// ValidateScheduleRequest is a dry-run check; exclude_id names the record being edited.
type ValidateScheduleRequest struct {
	ScheduleRequest
	ExcludeID string `json:"exclude_id"`
}

// BulkScheduleRequest creates several schedules in one transaction. Items are
// checked against each other as well as against stored schedules.
type BulkScheduleRequest struct {
	Items          []ScheduleRequest `json:"items" validate:"required,min=1,max=100,dive"`
	PartialOnError bool              `json:"partial_on_error"`
}

// BulkRejection reports one item of a bulk request that was not created.
type BulkRejection struct {
	Index   int         `json:"index"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// BulkScheduleResult summarises a bulk request.
type BulkScheduleResult struct {
	Created  []models.Schedule `json:"created"`
	Rejected []BulkRejection   `json:"rejected,omitempty"`
}

// DurationRequest asks for the snapped duration of a time range.
type DurationRequest struct {
	StartTime string `json:"start_time" validate:"required,clock"`
	EndTime   string `json:"end_time" validate:"required,clock"`
}

// DurationResponse carries the snapped duration alongside the raw length.
type DurationResponse struct {
	Duration int `json:"duration"`
	Minutes  int `json:"minutes"`
}

// ScheduleListQuery binds the schedule list query string.
type ScheduleListQuery struct {
	SectionID    string `form:"section_id"`
	SubjectID    string `form:"subject_id"`
	FacultyID    string `form:"faculty_id"`
	DayOfWeek    string `form:"day_of_week" validate:"omitempty,weekday"`
	Semester     string `form:"semester" validate:"omitempty,semester"`
	SchoolYearID int64  `form:"school_year_id" validate:"omitempty,gt=0"`
	Room         string `form:"room"`
	Page         int    `form:"page" validate:"omitempty,min=1"`
	PageSize     int    `form:"page_size" validate:"omitempty,min=1,max=100"`
	SortBy       string `form:"sort_by" validate:"omitempty,oneof=day_of_week start_time created_at"`
	SortOrder    string `form:"sort_order" validate:"omitempty,oneof=asc desc ASC DESC"`
}

// TermQuery selects a school year and semester; both are optional.
type TermQuery struct {
	SchoolYearID int64  `form:"school_year_id" validate:"omitempty,gt=0"`
	Semester     string `form:"semester" validate:"omitempty,semester"`
}
