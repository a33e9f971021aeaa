package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-registrar-api/internal/models"
)

// Times are stored as TIME and read back as HH:MM; faculty_id is NULL while TBA.
var scheduleColumns = []string{
	"id",
	"section_id",
	"subject_id",
	"COALESCE(faculty_id::text, '') AS faculty_id",
	"day_of_week",
	"to_char(start_time, 'HH24:MI') AS start_time",
	"to_char(end_time, 'HH24:MI') AS end_time",
	"duration",
	"semester",
	"school_year_id",
	"room",
	"created_at",
	"updated_at",
}

// ScheduleRepository provides persistence for schedules.
type ScheduleRepository struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ScheduleRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// List returns schedules with optional filtering and pagination.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, int, error) {
	where := squirrel.And{}
	if filter.SectionID != "" {
		where = append(where, squirrel.Eq{"section_id": filter.SectionID})
	}
	if filter.SubjectID != "" {
		where = append(where, squirrel.Eq{"subject_id": filter.SubjectID})
	}
	if filter.FacultyID != "" {
		where = append(where, squirrel.Eq{"faculty_id": filter.FacultyID})
	}
	if filter.DayOfWeek != "" {
		where = append(where, squirrel.Eq{"day_of_week": filter.DayOfWeek})
	}
	if filter.Semester != "" {
		where = append(where, squirrel.Eq{"semester": filter.Semester})
	}
	if filter.SchoolYearID != 0 {
		where = append(where, squirrel.Eq{"school_year_id": filter.SchoolYearID})
	}
	if filter.Room != "" {
		where = append(where, squirrel.Eq{"room": filter.Room})
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"day_of_week": true,
		"start_time":  true,
		"created_at":  true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "day_of_week"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}

	query := r.sb.Select(scheduleColumns...).From("schedules")
	count := r.sb.Select("COUNT(*)").From("schedules")
	if len(where) > 0 {
		query = query.Where(where)
		count = count.Where(where)
	}
	orderBy := []string{sortBy + " " + order}
	if sortBy != "start_time" {
		orderBy = append(orderBy, "start_time ASC")
	}
	query = query.OrderBy(orderBy...).Limit(uint64(size)).Offset(uint64((page - 1) * size))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list schedules query: %w", err)
	}
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, sqlStr, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedules: %w", err)
	}

	countSQL, countArgs, err := count.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count schedules query: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count schedules: %w", err)
	}

	return schedules, total, nil
}

// FindByID loads a schedule by id. A missing row surfaces sql.ErrNoRows.
func (r *ScheduleRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Schedule, error) {
	sqlStr, args, err := r.sb.Select(scheduleColumns...).From("schedules").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find schedule query: %w", err)
	}
	var sched models.Schedule
	if err := sqlx.GetContext(ctx, r.exec(exec), &sched, sqlStr, args...); err != nil {
		return nil, err
	}
	return &sched, nil
}

// ListScope returns the validation snapshot for a candidate.
func (r *ScheduleRepository) ListScope(ctx context.Context, exec sqlx.ExtContext, scope models.ScheduleScope) ([]models.Schedule, error) {
	owners := squirrel.Or{squirrel.Eq{"section_id": scope.SectionID}}
	if scope.FacultyID != "" {
		owners = append(owners, squirrel.Eq{"faculty_id": scope.FacultyID})
	}
	where := squirrel.And{
		squirrel.Eq{"school_year_id": scope.SchoolYearID},
		squirrel.Eq{"semester": scope.Semester},
		owners,
	}
	return r.selectWhere(ctx, r.exec(exec), where, "list schedule scope")
}

// ListBySection returns a section's schedules for a term. Zero term values match any.
func (r *ScheduleRepository) ListBySection(ctx context.Context, sectionID string, schoolYearID int64, semester models.Semester) ([]models.Schedule, error) {
	return r.selectWhere(ctx, r.db, termFilter(squirrel.Eq{"section_id": sectionID}, schoolYearID, semester), "list schedules by section")
}

// ListByFaculty returns a faculty member's schedules for a term. Zero term values match any.
func (r *ScheduleRepository) ListByFaculty(ctx context.Context, facultyID string, schoolYearID int64, semester models.Semester) ([]models.Schedule, error) {
	return r.selectWhere(ctx, r.db, termFilter(squirrel.Eq{"faculty_id": facultyID}, schoolYearID, semester), "list schedules by faculty")
}

func termFilter(owner squirrel.Eq, schoolYearID int64, semester models.Semester) squirrel.And {
	where := squirrel.And{owner}
	if schoolYearID != 0 {
		where = append(where, squirrel.Eq{"school_year_id": schoolYearID})
	}
	if semester != "" {
		where = append(where, squirrel.Eq{"semester": semester})
	}
	return where
}

func (r *ScheduleRepository) selectWhere(ctx context.Context, q sqlx.QueryerContext, where squirrel.Sqlizer, op string) ([]models.Schedule, error) {
	sqlStr, args, err := r.sb.Select(scheduleColumns...).
		From("schedules").
		Where(where).
		OrderBy("start_time ASC", "created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}
	schedules := []models.Schedule{}
	if err := sqlx.SelectContext(ctx, q, &schedules, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return schedules, nil
}

// Create stores a new schedule record.
func (r *ScheduleRepository) Create(ctx context.Context, exec sqlx.ExtContext, schedule *models.Schedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}
	schedule.UpdatedAt = now

	sqlStr, args, err := r.sb.Insert("schedules").
		Columns("id", "section_id", "subject_id", "faculty_id", "day_of_week", "start_time", "end_time", "duration", "semester", "school_year_id", "room", "created_at", "updated_at").
		Values(schedule.ID, schedule.SectionID, schedule.SubjectID, nullIfEmpty(schedule.FacultyID), schedule.DayOfWeek, schedule.StartTime, schedule.EndTime, schedule.Duration, schedule.Semester, schedule.SchoolYearID, schedule.Room, schedule.CreatedAt, schedule.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert schedule query: %w", err)
	}
	if _, err := r.exec(exec).ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("insert schedule: %w", err)
	}
	return nil
}

// Update persists changes to an existing schedule. A missing row surfaces sql.ErrNoRows.
func (r *ScheduleRepository) Update(ctx context.Context, exec sqlx.ExtContext, schedule *models.Schedule) error {
	schedule.UpdatedAt = time.Now().UTC()
	sqlStr, args, err := r.sb.Update("schedules").
		Set("section_id", schedule.SectionID).
		Set("subject_id", schedule.SubjectID).
		Set("faculty_id", nullIfEmpty(schedule.FacultyID)).
		Set("day_of_week", schedule.DayOfWeek).
		Set("start_time", schedule.StartTime).
		Set("end_time", schedule.EndTime).
		Set("duration", schedule.Duration).
		Set("semester", schedule.Semester).
		Set("school_year_id", schedule.SchoolYearID).
		Set("room", schedule.Room).
		Set("updated_at", schedule.UpdatedAt).
		Where(squirrel.Eq{"id": schedule.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update schedule query: %w", err)
	}
	res, err := r.exec(exec).ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return expectAffected(res, "update schedule")
}

// Delete removes a schedule.
func (r *ScheduleRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	res, err := r.exec(exec).ExecContext(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return expectAffected(res, "delete schedule")
}

// Lock takes transaction-scoped advisory locks on the given keys in sorted
// order so concurrent writers touching the same faculty or section serialise
// without deadlocking. exec must be a transaction.
func (r *ScheduleRepository) Lock(ctx context.Context, exec sqlx.ExtContext, keys ...string) error {
	unique := make(map[string]struct{}, len(keys))
	sorted := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, dup := unique[k]; dup {
			continue
		}
		unique[k] = struct{}{}
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	for _, key := range sorted {
		if _, err := exec.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
			return fmt.Errorf("lock %s: %w", key, err)
		}
	}
	return nil
}
