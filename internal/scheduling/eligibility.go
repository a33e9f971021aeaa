package scheduling

import (
	"fmt"

	"github.com/noah-isme/sma-registrar-api/internal/models"
)

// EligibilityOptions narrows subject matching beyond the section's strand.
type EligibilityOptions struct {
	GradeLevel string
}

// EligibilityResult holds the pickable subjects and faculty for a section.
type EligibilityResult struct {
	Subjects []models.EligibleSubject `json:"subjects"`
	Faculty  []models.Faculty         `json:"faculty"`
}

// FilterSubjects keeps subjects of the section's strand (and grade level when
// given). Subjects already scheduled for the section are disabled, not removed.
func FilterSubjects(section models.Section, subjects []models.Subject, schedules []models.Schedule, opts EligibilityOptions) []models.EligibleSubject {
	assigned := make(map[string]models.Schedule)
	for _, s := range schedules {
		if s.SectionID != section.ID {
			continue
		}
		if _, seen := assigned[s.SubjectID]; !seen {
			assigned[s.SubjectID] = s
		}
	}

	out := make([]models.EligibleSubject, 0, len(subjects))
	for _, subj := range subjects {
		if subj.StrandID != section.StrandID {
			continue
		}
		if opts.GradeLevel != "" && subj.GradeLevel != opts.GradeLevel {
			continue
		}
		item := models.EligibleSubject{Subject: subj}
		if s, ok := assigned[subj.ID]; ok {
			item.IsDisabled = true
			item.DisabledReason = fmt.Sprintf("already assigned to %s on %s %s-%s", section.SectionName, s.DayOfWeek, s.StartTime, s.EndTime)
		}
		out = append(out, item)
	}
	return out
}

// FilterFaculty keeps the section adviser plus anyone teaching an eligible subject.
func FilterFaculty(section models.Section, faculty []models.Faculty, eligible []models.EligibleSubject) []models.Faculty {
	subjectSet := make(map[string]struct{}, len(eligible))
	for _, e := range eligible {
		subjectSet[e.ID] = struct{}{}
	}

	out := make([]models.Faculty, 0, len(faculty))
	seen := make(map[string]struct{}, len(faculty))
	for _, f := range faculty {
		if _, dup := seen[f.ID]; dup {
			continue
		}
		if isAdviser(section, f) || teachesAny(f, subjectSet) {
			out = append(out, f)
			seen[f.ID] = struct{}{}
		}
	}
	return out
}

// FilterEligible runs FilterSubjects then FilterFaculty.
func FilterEligible(section models.Section, subjects []models.Subject, faculty []models.Faculty, schedules []models.Schedule, opts EligibilityOptions) EligibilityResult {
	eligible := FilterSubjects(section, subjects, schedules, opts)
	return EligibilityResult{
		Subjects: eligible,
		Faculty:  FilterFaculty(section, faculty, eligible),
	}
}

func isAdviser(section models.Section, f models.Faculty) bool {
	return section.AdviserID != nil && *section.AdviserID == f.ID
}

func teachesAny(f models.Faculty, subjects map[string]struct{}) bool {
	for _, id := range f.SubjectIDs {
		if _, ok := subjects[id]; ok {
			return true
		}
	}
	return false
}
