package scheduling

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-registrar-api/internal/models"
)

func TestDeriveCalendarFirstSemester(t *testing.T) {
	fields, err := DeriveCalendarFromStrings("2024-08-01", "1st Semester")
	require.NoError(t, err)
	require.False(t, fields.Skipped)

	assert.Equal(t, "2024-12-31", fields.EndDate.String())
	assert.Equal(t, "2024-08-01", fields.Quarter1.Start.String())
	assert.Equal(t, "2024-10-16", fields.Quarter1.End.String())
	assert.Equal(t, "2024-10-17", fields.Quarter2.Start.String())
	assert.Equal(t, "2024-12-31", fields.Quarter2.End.String())
	assert.Equal(t, "2025-01-31", fields.GradingDeadline.String())
	assert.True(t, fields.Quarter3.IsZero())
	assert.True(t, fields.Quarter4.IsZero())
}

func TestDeriveCalendarSecondSemester(t *testing.T) {
	fields, err := DeriveCalendar(models.NewDate(2025, time.January, 6), models.SecondSemester)
	require.NoError(t, err)

	assert.True(t, fields.Quarter1.IsZero())
	assert.True(t, fields.Quarter2.IsZero())
	assert.Equal(t, "2025-01-06", fields.Quarter3.Start.String())
	assert.Equal(t, "2025-03-21", fields.Quarter3.End.String())
	assert.Equal(t, "2025-03-22", fields.Quarter4.Start.String())
	assert.Equal(t, fields.EndDate, fields.Quarter4.End)
	assert.Equal(t, "2025-06-05", fields.EndDate.String())
	assert.Equal(t, "2025-07-05", fields.GradingDeadline.String())
}

func TestDeriveCalendarQuarterContinuity(t *testing.T) {
	for _, start := range []string{"2024-01-31", "2024-02-29", "2024-06-15", "2023-08-31", "2025-11-30"} {
		for _, sem := range []models.Semester{models.FirstSemester, models.SecondSemester} {
			date, err := models.ParseDate(start)
			require.NoError(t, err)
			fields, err := DeriveCalendar(date, sem)
			require.NoError(t, err)

			a, b := fields.Quarter1, fields.Quarter2
			if sem == models.SecondSemester {
				a, b = fields.Quarter3, fields.Quarter4
			}
			assert.Equal(t, a.End.AddDate(0, 0, 1), b.Start, "%s %s", start, sem)
			assert.Equal(t, fields.EndDate, b.End, "%s %s", start, sem)
			assert.Equal(t, date, a.Start)
		}
	}
}

func TestDeriveCalendarSummerClearsQuarters(t *testing.T) {
	fields, err := DeriveCalendarFromStrings("2025-06-01", "Summer")
	require.NoError(t, err)
	assert.Equal(t, "2025-10-31", fields.EndDate.String())
	assert.Equal(t, "2025-12-01", fields.GradingDeadline.String())
	for _, q := range []Quarter{fields.Quarter1, fields.Quarter2, fields.Quarter3, fields.Quarter4} {
		assert.True(t, q.IsZero())
	}
}

func TestDeriveCalendarIsIdempotent(t *testing.T) {
	first, err := DeriveCalendarFromStrings("2024-08-01", "1st Semester")
	require.NoError(t, err)
	second, err := DeriveCalendarFromStrings("2024-08-01", "1st Semester")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDeriveCalendarSkipsWithoutStartDate(t *testing.T) {
	fields, err := DeriveCalendar(models.Date{}, models.FirstSemester)
	require.NoError(t, err)
	assert.True(t, fields.Skipped)
	assert.True(t, fields.EndDate.IsZero())

	fields, err = DeriveCalendarFromStrings("", "1st Semester")
	require.NoError(t, err)
	assert.True(t, fields.Skipped)
}

func TestDeriveCalendarRejectsBadInput(t *testing.T) {
	_, err := DeriveCalendarFromStrings("2024-13-01", "1st Semester")
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "start_date", perr.Field)

	_, err = DeriveCalendarFromStrings("2024-08-01", "Third")
	require.True(t, errors.As(err, &perr))

	_, err = DeriveCalendar(models.NewDate(2024, time.August, 1), models.Semester("Winter"))
	require.True(t, errors.As(err, &perr))
}

func TestCalendarApplyReplacesStaleValues(t *testing.T) {
	period := &models.AcademicPeriod{Semester: models.FirstSemester}
	first, err := DeriveCalendarFromStrings("2024-08-01", "1st Semester")
	require.NoError(t, err)
	first.Apply(period)
	require.False(t, period.Quarter1Start.IsZero())

	second, err := DeriveCalendarFromStrings("2025-01-06", "2nd Semester")
	require.NoError(t, err)
	second.Apply(period)
	assert.True(t, period.Quarter1Start.IsZero())
	assert.True(t, period.Quarter2End.IsZero())
	assert.Equal(t, "2025-01-06", period.Quarter3Start.String())
	assert.Equal(t, "2025-06-05", period.EndDate.String())
}
