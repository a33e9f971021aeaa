package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-registrar-api/internal/models"
)

var academicPeriodColumns = []string{
	"ap.id", "ap.school_year_id", "sy.start_year AS year_start", "sy.end_year AS year_end", "ap.semester",
	"ap.start_date", "ap.end_date",
	"ap.quarter1_start", "ap.quarter1_end", "ap.quarter2_start", "ap.quarter2_end",
	"ap.quarter3_start", "ap.quarter3_end", "ap.quarter4_start", "ap.quarter4_end",
	"ap.grading_deadline", "ap.enrollment_start_date", "ap.enrollment_end_date",
	"ap.is_active", "ap.is_enrollment_open", "ap.created_at", "ap.updated_at",
}

// AcademicPeriodRepository persists semesters and their derived calendars.
type AcademicPeriodRepository struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

// NewAcademicPeriodRepository constructs an academic period repository.
func NewAcademicPeriodRepository(db *sqlx.DB) *AcademicPeriodRepository {
	return &AcademicPeriodRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *AcademicPeriodRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *AcademicPeriodRepository) base() squirrel.SelectBuilder {
	return r.sb.Select(academicPeriodColumns...).
		From("academic_periods ap").
		Join("school_years sy ON sy.id = ap.school_year_id")
}

// List returns academic periods, newest school year first.
func (r *AcademicPeriodRepository) List(ctx context.Context, filter models.AcademicPeriodFilter) ([]models.AcademicPeriod, int, error) {
	where := squirrel.And{}
	if filter.SchoolYearID != 0 {
		where = append(where, squirrel.Eq{"ap.school_year_id": filter.SchoolYearID})
	}
	if filter.Semester != "" {
		where = append(where, squirrel.Eq{"ap.semester": filter.Semester})
	}
	if filter.IsActive != nil {
		where = append(where, squirrel.Eq{"ap.is_active": *filter.IsActive})
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}

	query := r.base()
	count := r.sb.Select("COUNT(*)").From("academic_periods ap")
	if len(where) > 0 {
		query = query.Where(where)
		count = count.Where(where)
	}
	query = query.OrderBy("sy.start_year DESC", "ap.semester ASC").Limit(uint64(size)).Offset(uint64((page - 1) * size))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list academic periods query: %w", err)
	}
	periods := []models.AcademicPeriod{}
	if err := r.db.SelectContext(ctx, &periods, sqlStr, args...); err != nil {
		return nil, 0, fmt.Errorf("list academic periods: %w", err)
	}

	countSQL, countArgs, err := count.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count academic periods query: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count academic periods: %w", err)
	}
	return periods, total, nil
}

// FindByID loads one academic period. A missing row surfaces sql.ErrNoRows.
func (r *AcademicPeriodRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.AcademicPeriod, error) {
	sqlStr, args, err := r.base().Where(squirrel.Eq{"ap.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find academic period query: %w", err)
	}
	var period models.AcademicPeriod
	if err := sqlx.GetContext(ctx, r.exec(exec), &period, sqlStr, args...); err != nil {
		return nil, err
	}
	return &period, nil
}

// TermLockKey is the advisory lock key guarding one semester of a school year.
func TermLockKey(schoolYearID int64, semester models.Semester) string {
	return fmt.Sprintf("period:%d:%s", schoolYearID, semester)
}

// LockTerm serialises writers of the same (school year, semester) until the
// surrounding transaction ends. exec must be a transaction.
func (r *AcademicPeriodRepository) LockTerm(ctx context.Context, exec sqlx.ExtContext, schoolYearID int64, semester models.Semester) error {
	key := TermLockKey(schoolYearID, semester)
	if _, err := r.exec(exec).ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return fmt.Errorf("lock %s: %w", key, err)
	}
	return nil
}

// FindByTerm returns the periods stored for a school year and semester.
func (r *AcademicPeriodRepository) FindByTerm(ctx context.Context, exec sqlx.ExtContext, schoolYearID int64, semester models.Semester) ([]models.AcademicPeriod, error) {
	sqlStr, args, err := r.base().
		Where(squirrel.Eq{"ap.school_year_id": schoolYearID, "ap.semester": semester}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find academic periods by term query: %w", err)
	}
	periods := []models.AcademicPeriod{}
	if err := sqlx.SelectContext(ctx, r.exec(exec), &periods, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("find academic periods by term: %w", err)
	}
	return periods, nil
}

// Create inserts a new academic period.
func (r *AcademicPeriodRepository) Create(ctx context.Context, exec sqlx.ExtContext, period *models.AcademicPeriod) error {
	if period.ID == "" {
		period.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if period.CreatedAt.IsZero() {
		period.CreatedAt = now
	}
	period.UpdatedAt = now

	const query = `
INSERT INTO academic_periods (
    id, school_year_id, semester, start_date, end_date,
    quarter1_start, quarter1_end, quarter2_start, quarter2_end,
    quarter3_start, quarter3_end, quarter4_start, quarter4_end,
    grading_deadline, enrollment_start_date, enrollment_end_date,
    is_active, is_enrollment_open, created_at, updated_at
) VALUES (
    :id, :school_year_id, :semester, :start_date, :end_date,
    :quarter1_start, :quarter1_end, :quarter2_start, :quarter2_end,
    :quarter3_start, :quarter3_end, :quarter4_start, :quarter4_end,
    :grading_deadline, :enrollment_start_date, :enrollment_end_date,
    :is_active, :is_enrollment_open, :created_at, :updated_at
)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, period); err != nil {
		return fmt.Errorf("insert academic period: %w", err)
	}
	return nil
}

// Update overwrites the editable and derived fields of an academic period.
func (r *AcademicPeriodRepository) Update(ctx context.Context, exec sqlx.ExtContext, period *models.AcademicPeriod) error {
	period.UpdatedAt = time.Now().UTC()
	const query = `
UPDATE academic_periods SET
    school_year_id = :school_year_id, semester = :semester,
    start_date = :start_date, end_date = :end_date,
    quarter1_start = :quarter1_start, quarter1_end = :quarter1_end,
    quarter2_start = :quarter2_start, quarter2_end = :quarter2_end,
    quarter3_start = :quarter3_start, quarter3_end = :quarter3_end,
    quarter4_start = :quarter4_start, quarter4_end = :quarter4_end,
    grading_deadline = :grading_deadline,
    enrollment_start_date = :enrollment_start_date, enrollment_end_date = :enrollment_end_date,
    is_enrollment_open = :is_enrollment_open,
    updated_at = :updated_at
WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, period)
	if err != nil {
		return fmt.Errorf("update academic period: %w", err)
	}
	return expectAffected(res, "update academic period")
}

// Activate marks one period active and every other inactive. exec should be a transaction.
func (r *AcademicPeriodRepository) Activate(ctx context.Context, exec sqlx.ExtContext, id string) error {
	target := r.exec(exec)
	now := time.Now().UTC()
	if _, err := target.ExecContext(ctx, `UPDATE academic_periods SET is_active = FALSE, updated_at = $1 WHERE is_active AND id <> $2`, now, id); err != nil {
		return fmt.Errorf("deactivate academic periods: %w", err)
	}
	res, err := target.ExecContext(ctx, `UPDATE academic_periods SET is_active = TRUE, updated_at = $1 WHERE id = $2`, now, id)
	if err != nil {
		return fmt.Errorf("activate academic period: %w", err)
	}
	return expectAffected(res, "activate academic period")
}

// SetEnrollmentOpen toggles the enrollment flag.
func (r *AcademicPeriodRepository) SetEnrollmentOpen(ctx context.Context, id string, open bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE academic_periods SET is_enrollment_open = $1, updated_at = $2 WHERE id = $3`, open, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set enrollment open: %w", err)
	}
	return expectAffected(res, "set enrollment open")
}

// Delete removes an academic period.
func (r *AcademicPeriodRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM academic_periods WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete academic period: %w", err)
	}
	return expectAffected(res, "delete academic period")
}
