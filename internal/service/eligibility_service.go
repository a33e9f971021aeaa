package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-registrar-api/internal/models"
	"github.com/noah-isme/sma-registrar-api/internal/scheduling"
	appErrors "github.com/noah-isme/sma-registrar-api/pkg/errors"
)

type strandSubjectReader interface {
	ListByStrand(ctx context.Context, strandID string) ([]models.Subject, error)
}

type facultyCandidateReader interface {
	ListCandidates(ctx context.Context, adviserID string, subjectIDs []string) ([]models.Faculty, error)
}

type sectionScheduleReader interface {
	ListBySection(ctx context.Context, sectionID string, schoolYearID int64, semester models.Semester) ([]models.Schedule, error)
}

// EligibilityQuery narrows an eligibility lookup.
type EligibilityQuery struct {
	SchoolYearID int64
	Semester     models.Semester
	GradeLevel   string
}

// EligibilityService lists the subjects and faculty a section may be scheduled with.
type EligibilityService struct {
	sections  sectionReader
	subjects  strandSubjectReader
	faculty   facultyCandidateReader
	schedules sectionScheduleReader
	logger    *zap.Logger
}

// NewEligibilityService constructs an EligibilityService.
func NewEligibilityService(sections sectionReader, subjects strandSubjectReader, faculty facultyCandidateReader, schedules sectionScheduleReader, logger *zap.Logger) *EligibilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EligibilityService{sections: sections, subjects: subjects, faculty: faculty, schedules: schedules, logger: logger}
}

// ForSection returns the section's strand subjects, disabling those it
// already has a schedule for in the term, and the faculty able to teach them.
// Subjects are narrowed by grade level only when the query names one.
func (s *EligibilityService) ForSection(ctx context.Context, sectionID string, q EligibilityQuery) (*scheduling.EligibilityResult, error) {
	section, err := s.sections.FindByID(ctx, sectionID)
	if err != nil {
		return nil, translateError(s.logger, err, "section not found", "failed to load section")
	}

	subjects, err := s.subjects.ListByStrand(ctx, section.StrandID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	schedules, err := s.schedules.ListBySection(ctx, section.ID, q.SchoolYearID, q.Semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list section schedules")
	}

	eligible := scheduling.FilterSubjects(*section, subjects, schedules, scheduling.EligibilityOptions{
		GradeLevel: strings.TrimSpace(q.GradeLevel),
	})

	subjectIDs := make([]string, 0, len(eligible))
	for _, e := range eligible {
		subjectIDs = append(subjectIDs, e.ID)
	}
	adviserID := ""
	if section.AdviserID != nil {
		adviserID = *section.AdviserID
	}
	candidates, err := s.faculty.ListCandidates(ctx, adviserID, subjectIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faculty")
	}

	return &scheduling.EligibilityResult{
		Subjects: eligible,
		Faculty:  scheduling.FilterFaculty(*section, candidates, eligible),
	}, nil
}
