package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-registrar-api/internal/models"
	appErrors "github.com/noah-isme/sma-registrar-api/pkg/errors"
)

type stubStrandSubjects []models.Subject

func (s stubStrandSubjects) ListByStrand(ctx context.Context, strandID string) ([]models.Subject, error) {
	var out []models.Subject
	for _, subj := range s {
		if subj.StrandID == strandID {
			out = append(out, subj)
		}
	}
	return out, nil
}

type stubFacultyCandidates struct {
	faculty    []models.Faculty
	subjectIDs []string
}

func (s *stubFacultyCandidates) ListCandidates(ctx context.Context, adviserID string, subjectIDs []string) ([]models.Faculty, error) {
	s.subjectIDs = subjectIDs
	return s.faculty, nil
}

func TestEligibilityServiceForSection(t *testing.T) {
	adviser := "fac-adviser"
	sections := stubSectionReader{"sec-1": {ID: "sec-1", StrandID: "stem", GradeLevel: "11", SectionName: "STEM 11-A", AdviserID: &adviser}}
	subjects := stubStrandSubjects{
		{ID: "calc", StrandID: "stem", GradeLevel: "11"},
		{ID: "bio", StrandID: "stem", GradeLevel: "11"},
		{ID: "stats", StrandID: "stem", GradeLevel: "12"},
		{ID: "acct", StrandID: "abm", GradeLevel: "11"},
	}
	faculty := &stubFacultyCandidates{faculty: []models.Faculty{
		{ID: "fac-adviser"},
		{ID: "fac-calc", SubjectIDs: []string{"calc"}},
		{ID: "fac-stats", SubjectIDs: []string{"stats"}},
	}}
	schedules := &stubScheduleReader{schedules: []models.Schedule{
		{ID: "s1", SectionID: "sec-1", SubjectID: "calc", DayOfWeek: models.Monday, StartTime: "07:30", EndTime: "09:00"},
	}}
	svc := NewEligibilityService(sections, subjects, faculty, schedules, nil)

	res, err := svc.ForSection(context.Background(), "sec-1", EligibilityQuery{GradeLevel: "11"})
	require.NoError(t, err)

	require.Len(t, res.Subjects, 2)
	assert.Equal(t, "calc", res.Subjects[0].ID)
	assert.True(t, res.Subjects[0].IsDisabled)
	assert.Contains(t, res.Subjects[0].DisabledReason, "STEM 11-A")
	assert.False(t, res.Subjects[1].IsDisabled)
	assert.Equal(t, []string{"calc", "bio"}, faculty.subjectIDs)

	ids := make([]string, 0, len(res.Faculty))
	for _, f := range res.Faculty {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{"fac-adviser", "fac-calc"}, ids)
}

func TestEligibilityServiceGradeOverride(t *testing.T) {
	sections := stubSectionReader{"sec-1": {ID: "sec-1", StrandID: "stem", GradeLevel: "11"}}
	subjects := stubStrandSubjects{{ID: "calc", StrandID: "stem", GradeLevel: "11"}, {ID: "stats", StrandID: "stem", GradeLevel: "12"}}
	svc := NewEligibilityService(sections, subjects, &stubFacultyCandidates{}, &stubScheduleReader{}, nil)

	res, err := svc.ForSection(context.Background(), "sec-1", EligibilityQuery{GradeLevel: "12"})
	require.NoError(t, err)
	require.Len(t, res.Subjects, 1)
	assert.Equal(t, "stats", res.Subjects[0].ID)
}

func TestEligibilityServiceWithoutGradeKeepsWholeStrand(t *testing.T) {
	sections := stubSectionReader{"sec-1": {ID: "sec-1", StrandID: "stem", GradeLevel: "11"}}
	subjects := stubStrandSubjects{
		{ID: "calc", StrandID: "stem", GradeLevel: "11"},
		{ID: "stats", StrandID: "stem", GradeLevel: "12"},
		{ID: "acct", StrandID: "abm", GradeLevel: "11"},
	}
	svc := NewEligibilityService(sections, subjects, &stubFacultyCandidates{}, &stubScheduleReader{}, nil)

	res, err := svc.ForSection(context.Background(), "sec-1", EligibilityQuery{})
	require.NoError(t, err)
	require.Len(t, res.Subjects, 2)
	assert.Equal(t, "calc", res.Subjects[0].ID)
	assert.Equal(t, "stats", res.Subjects[1].ID)
}

func TestEligibilityServiceMissingSection(t *testing.T) {
	svc := NewEligibilityService(stubSectionReader{}, stubStrandSubjects{}, &stubFacultyCandidates{}, &stubScheduleReader{}, nil)

	_, err := svc.ForSection(context.Background(), "missing", EligibilityQuery{})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
