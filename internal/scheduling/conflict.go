package scheduling

import (
	"fmt"

	"github.com/noah-isme/sma-registrar-api/internal/models"
	appErrors "github.com/noah-isme/sma-registrar-api/pkg/errors"
)

// DefaultLoadCap is the number of schedules a faculty member may hold at once.
const DefaultLoadCap = 4

// ViolationKind names the business rule a rejected candidate broke.
type ViolationKind string

const (
	LoadLimitExceeded ViolationKind = "LoadLimitExceeded"
	DuplicateSchedule ViolationKind = "DuplicateSchedule"
	FacultyConflict   ViolationKind = "FacultyConflict"
)

// ValidateOptions tunes a validation run.
type ValidateOptions struct {
	// ExcludeID skips the record being edited.
	ExcludeID string
	// LoadCap overrides DefaultLoadCap when positive.
	LoadCap int
}

func (o ValidateOptions) cap() int {
	if o.LoadCap > 0 {
		return o.LoadCap
	}
	return DefaultLoadCap
}

// Verdict is the outcome of ValidateSchedule. A rejection is a value, not an error.
type Verdict struct {
	OK        bool              `json:"ok"`
	Kind      ViolationKind     `json:"kind,omitempty"`
	FacultyID string            `json:"faculty_id,omitempty"`
	Cap       int               `json:"cap,omitempty"`
	Count     int               `json:"count,omitempty"`
	Conflicts []models.Schedule `json:"conflicts,omitempty"`
}

// ConflictingIDs lists the ids of the schedules that caused the rejection.
func (v Verdict) ConflictingIDs() []string {
	ids := make([]string, 0, len(v.Conflicts))
	for _, s := range v.Conflicts {
		ids = append(ids, s.ID)
	}
	return ids
}

// Message is a human readable summary of the verdict.
func (v Verdict) Message() string {
	switch v.Kind {
	case LoadLimitExceeded:
		return fmt.Sprintf("faculty %s already holds %d schedules (limit %d)", v.FacultyID, v.Count, v.Cap)
	case DuplicateSchedule:
		return "an identical schedule already exists for this section and subject"
	case FacultyConflict:
		return fmt.Sprintf("faculty %s is already teaching at this time", v.FacultyID)
	}
	return "schedule accepted"
}

// Err converts a rejection into an HTTP-aware error; accepted verdicts return nil.
func (v Verdict) Err() error {
	if v.OK {
		return nil
	}
	var base *appErrors.Error
	switch v.Kind {
	case LoadLimitExceeded:
		base = appErrors.ErrLoadLimitExceeded
	case DuplicateSchedule:
		base = appErrors.ErrDuplicateSchedule
	default:
		base = appErrors.ErrFacultyConflict
	}
	conflicts := make([]models.ScheduleConflict, 0, len(v.Conflicts))
	for _, s := range v.Conflicts {
		conflicts = append(conflicts, models.ConflictFromSchedule(s))
	}
	domainErr := &models.ScheduleConflictError{
		Kind:      string(v.Kind),
		Message:   v.Message(),
		FacultyID: v.FacultyID,
		Cap:       v.Cap,
		Count:     v.Count,
		Conflicts: conflicts,
	}
	wrapped := appErrors.Wrap(domainErr, base.Code, base.Status, domainErr.Message)
	return appErrors.WithDetails(wrapped, domainErr)
}

// ValidateSchedule decides whether candidate may join existing. Checks run in
// order (load limit, duplicate, faculty overlap) and stop at the first failure.
// The returned error is non-nil only for malformed times.
func ValidateSchedule(candidate models.Schedule, existing []models.Schedule, opts ValidateOptions) (Verdict, error) {
	window, err := ParseInterval(candidate.StartTime, candidate.EndTime)
	if err != nil {
		return Verdict{}, err
	}

	others := make([]models.Schedule, 0, len(existing))
	for _, s := range existing {
		if opts.ExcludeID != "" && s.ID == opts.ExcludeID {
			continue
		}
		others = append(others, s)
	}

	if candidate.HasFaculty() {
		if v, rejected := checkLoad(candidate, others, opts.cap()); rejected {
			return v, nil
		}
	}

	if v, rejected, err := checkDuplicate(candidate, window, others); err != nil || rejected {
		return v, err
	}

	if candidate.HasFaculty() {
		if v, rejected, err := checkFacultyOverlap(candidate, window, others); err != nil || rejected {
			return v, err
		}
	}

	return Verdict{OK: true}, nil
}

func checkLoad(candidate models.Schedule, others []models.Schedule, limit int) (Verdict, bool) {
	count := 0
	for _, s := range others {
		if s.FacultyID == candidate.FacultyID {
			count++
		}
	}
	if count < limit {
		return Verdict{}, false
	}
	return Verdict{Kind: LoadLimitExceeded, FacultyID: candidate.FacultyID, Cap: limit, Count: count}, true
}

func checkDuplicate(candidate models.Schedule, window Interval, others []models.Schedule) (Verdict, bool, error) {
	for _, s := range others {
		if s.SectionID != candidate.SectionID || s.SubjectID != candidate.SubjectID || s.DayOfWeek != candidate.DayOfWeek {
			continue
		}
		other, err := existingInterval(s)
		if err != nil {
			return Verdict{}, false, err
		}
		if other == window {
			return Verdict{Kind: DuplicateSchedule, FacultyID: candidate.FacultyID, Conflicts: []models.Schedule{s}}, true, nil
		}
	}
	return Verdict{}, false, nil
}

// checkFacultyOverlap ignores section and strand: one person cannot be in two rooms.
func checkFacultyOverlap(candidate models.Schedule, window Interval, others []models.Schedule) (Verdict, bool, error) {
	var clashes []models.Schedule
	for _, s := range others {
		if s.FacultyID != candidate.FacultyID || s.DayOfWeek != candidate.DayOfWeek || s.Semester != candidate.Semester {
			continue
		}
		if s.SchoolYearID != 0 && candidate.SchoolYearID != 0 && s.SchoolYearID != candidate.SchoolYearID {
			continue
		}
		other, err := existingInterval(s)
		if err != nil {
			return Verdict{}, false, err
		}
		if window.Overlaps(other) {
			clashes = append(clashes, s)
		}
	}
	if len(clashes) == 0 {
		return Verdict{}, false, nil
	}
	return Verdict{Kind: FacultyConflict, FacultyID: candidate.FacultyID, Conflicts: clashes}, true, nil
}

func existingInterval(s models.Schedule) (Interval, error) {
	start, err := ToMinutes(s.StartTime)
	if err != nil {
		return Interval{}, parseErr(fmt.Sprintf("start_time of schedule %s", s.ID), s.StartTime, err)
	}
	end, err := ToMinutes(s.EndTime)
	if err != nil {
		return Interval{}, parseErr(fmt.Sprintf("end_time of schedule %s", s.ID), s.EndTime, err)
	}
	return Interval{Start: start, End: end}, nil
}
