package scheduling

import "github.com/noah-isme/sma-registrar-api/internal/models"

// Calendar arithmetic: a semester lasts five months, its first quarter two
// months and fifteen days, and grades are due one month after it ends.
const (
	semesterMonths     = 5
	firstQuarterMonths = 2
	firstQuarterDays   = 15
	gradingGraceMonths = 1
)

// Quarter is an inclusive grading sub-period. The zero value means cleared.
type Quarter struct {
	Start models.Date `json:"start"`
	End   models.Date `json:"end"`
}

// IsZero reports whether the quarter is cleared.
func (q Quarter) IsZero() bool {
	return q.Start.IsZero() && q.End.IsZero()
}

// CalendarFields are the values derived from a start date and semester.
type CalendarFields struct {
	StartDate       models.Date `json:"start_date"`
	EndDate         models.Date `json:"end_date"`
	Quarter1        Quarter     `json:"quarter1"`
	Quarter2        Quarter     `json:"quarter2"`
	Quarter3        Quarter     `json:"quarter3"`
	Quarter4        Quarter     `json:"quarter4"`
	GradingDeadline models.Date `json:"grading_deadline"`
	// Skipped is set when inputs were incomplete and nothing was derived.
	Skipped bool `json:"skipped"`
}

// DeriveCalendar computes the semester skeleton. A zero start date or empty
// semester yields empty fields with Skipped set; an unknown semester label is a ParseError.
func DeriveCalendar(startDate models.Date, semester models.Semester) (CalendarFields, error) {
	if startDate.IsZero() || semester == "" {
		return CalendarFields{Skipped: true}, nil
	}
	if !semester.Valid() {
		return CalendarFields{}, parseErr("semester", string(semester), nil)
	}

	end := startDate.AddDate(0, semesterMonths, 0).AddDate(0, 0, -1)
	fields := CalendarFields{
		StartDate:       startDate,
		EndDate:         end,
		GradingDeadline: end.AddDate(0, gradingGraceMonths, 0),
	}

	first := Quarter{
		Start: startDate,
		End:   startDate.AddDate(0, firstQuarterMonths, 0).AddDate(0, 0, firstQuarterDays),
	}
	second := Quarter{Start: first.End.AddDate(0, 0, 1), End: end}

	switch semester {
	case models.FirstSemester:
		fields.Quarter1, fields.Quarter2 = first, second
	case models.SecondSemester:
		fields.Quarter3, fields.Quarter4 = first, second
	}
	return fields, nil
}

// DeriveCalendarFromStrings is DeriveCalendar over wire values ("YYYY-MM-DD", semester label).
func DeriveCalendarFromStrings(startDate, semester string) (CalendarFields, error) {
	if startDate == "" || semester == "" {
		return CalendarFields{Skipped: true}, nil
	}
	start, err := models.ParseDate(startDate)
	if err != nil {
		return CalendarFields{}, parseErr("start_date", startDate, err)
	}
	sem, err := models.ParseSemester(semester)
	if err != nil {
		return CalendarFields{}, parseErr("semester", semester, err)
	}
	return DeriveCalendar(start, sem)
}

// Apply overwrites every derived field of p, clearing quarters of the other
// semester. Stale values are never kept.
func (f CalendarFields) Apply(p *models.AcademicPeriod) {
	p.EndDate = f.EndDate
	p.Quarter1Start, p.Quarter1End = f.Quarter1.Start, f.Quarter1.End
	p.Quarter2Start, p.Quarter2End = f.Quarter2.Start, f.Quarter2.End
	p.Quarter3Start, p.Quarter3End = f.Quarter3.Start, f.Quarter3.End
	p.Quarter4Start, p.Quarter4End = f.Quarter4.Start, f.Quarter4.End
	p.GradingDeadline = f.GradingDeadline
}
