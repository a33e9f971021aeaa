package dto

// TimetableExportQuery selects the term and output format of an export.
type TimetableExportQuery struct {
	TermQuery
	Format string `form:"format" validate:"omitempty,oneof=csv pdf xlsx"`
}

// EligibilityQuery narrows the subjects offered to a section.
type EligibilityQuery struct {
	TermQuery
	GradeLevel string `form:"grade_level"`
}
