package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-registrar-api/internal/models"
)

var academicPeriodRowColumns = []string{
	"id", "school_year_id", "year_start", "year_end", "semester", "start_date", "end_date",
	"quarter1_start", "quarter1_end", "quarter2_start", "quarter2_end",
	"quarter3_start", "quarter3_end", "quarter4_start", "quarter4_end",
	"grading_deadline", "enrollment_start_date", "enrollment_end_date",
	"is_active", "is_enrollment_open", "created_at", "updated_at",
}

func TestAcademicPeriodRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAcademicPeriodRepository(db)

	start := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(academicPeriodRowColumns).AddRow(
		"p1", 1, 2024, 2025, "1st Semester", start, end,
		start, time.Date(2024, 10, 16, 0, 0, 0, 0, time.UTC), time.Date(2024, 10, 17, 0, 0, 0, 0, time.UTC), end,
		nil, nil, nil, nil,
		time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), nil, nil,
		true, false, time.Now(), time.Now(),
	)
	mock.ExpectQuery(regexp.QuoteMeta("FROM academic_periods ap JOIN school_years sy ON sy.id = ap.school_year_id WHERE ap.id = $1")).
		WithArgs("p1").
		WillReturnRows(rows)

	period, err := repo.FindByID(context.Background(), nil, "p1")
	require.NoError(t, err)
	assert.Equal(t, "2024-2025", period.SchoolYearLabel())
	assert.Equal(t, "2024-10-16", period.Quarter1End.String())
	assert.True(t, period.Quarter3Start.IsZero())
	assert.True(t, period.EnrollmentStartDate.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcademicPeriodRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAcademicPeriodRepository(db)

	active := true
	mock.ExpectQuery(regexp.QuoteMeta("WHERE (ap.is_active = $1) ORDER BY sy.start_year DESC, ap.semester ASC LIMIT 20 OFFSET 0")).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows(academicPeriodRowColumns))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM academic_periods ap WHERE (ap.is_active = $1)")).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	list, total, err := repo.List(context.Background(), models.AcademicPeriodFilter{IsActive: &active})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcademicPeriodRepositoryCreateWritesNullDates(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAcademicPeriodRepository(db)

	start := models.NewDate(2025, time.January, 6)
	mock.ExpectExec("INSERT INTO academic_periods").
		WithArgs(
			sqlmock.AnyArg(), int64(2), "2nd Semester", "2025-01-06", nil,
			nil, nil, nil, nil,
			nil, nil, nil, nil,
			nil, nil, nil,
			false, false, sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	period := &models.AcademicPeriod{SchoolYearID: 2, Semester: models.SecondSemester, StartDate: start}
	require.NoError(t, repo.Create(context.Background(), nil, period))
	assert.NotEmpty(t, period.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcademicPeriodRepositoryActivate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAcademicPeriodRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE academic_periods SET is_active = FALSE")).
		WithArgs(sqlmock.AnyArg(), "p2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE academic_periods SET is_active = TRUE")).
		WithArgs(sqlmock.AnyArg(), "p2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Activate(context.Background(), nil, "p2")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcademicPeriodRepositoryLockAndFindByTerm(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAcademicPeriodRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock(hashtext($1))")).
		WithArgs("period:2:1st Semester").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`FROM academic_periods ap JOIN school_years sy ON sy.id = ap.school_year_id WHERE .*ap.school_year_id = \$1 AND ap.semester = \$2`).
		WithArgs(int64(2), "1st Semester").
		WillReturnRows(sqlmock.NewRows(academicPeriodRowColumns))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.LockTerm(context.Background(), tx, 2, models.FirstSemester))
	list, err := repo.FindByTerm(context.Background(), tx, 2, models.FirstSemester)
	require.NoError(t, err)
	assert.Empty(t, list)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
