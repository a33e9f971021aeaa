package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-registrar-api/internal/dto"
	"github.com/noah-isme/sma-registrar-api/internal/models"
	"github.com/noah-isme/sma-registrar-api/internal/scheduling"
	"github.com/noah-isme/sma-registrar-api/pkg/database"
	appErrors "github.com/noah-isme/sma-registrar-api/pkg/errors"
)

type scheduleRepository interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, int, error)
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Schedule, error)
	ListScope(ctx context.Context, exec sqlx.ExtContext, scope models.ScheduleScope) ([]models.Schedule, error)
	ListBySection(ctx context.Context, sectionID string, schoolYearID int64, semester models.Semester) ([]models.Schedule, error)
	ListByFaculty(ctx context.Context, facultyID string, schoolYearID int64, semester models.Semester) ([]models.Schedule, error)
	Create(ctx context.Context, exec sqlx.ExtContext, schedule *models.Schedule) error
	Update(ctx context.Context, exec sqlx.ExtContext, schedule *models.Schedule) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
	Lock(ctx context.Context, exec sqlx.ExtContext, keys ...string) error
}

// timetableInvalidator drops cached grids touched by a schedule write.
type timetableInvalidator interface {
	Invalidate(ctx context.Context, affected ...models.Schedule)
}

// ScheduleServiceConfig tunes schedule acceptance.
type ScheduleServiceConfig struct {
	LoadCap int
}

// ScheduleService accepts or rejects schedule writes atomically. Every write
// runs in one transaction that locks the faculty member and section, reloads
// their schedules for the term and validates against that fresh snapshot.
type ScheduleService struct {
	repo       scheduleRepository
	tx         database.TxBeginner
	validator  *validator.Validate
	metrics    *MetricsService
	timetables timetableInvalidator
	logger     *zap.Logger
	loadCap    int
}

// NewScheduleService instantiates ScheduleService.
func NewScheduleService(repo scheduleRepository, tx database.TxBeginner, validate *validator.Validate, metrics *MetricsService, timetables timetableInvalidator, logger *zap.Logger, cfg ScheduleServiceConfig) *ScheduleService {
	if validate == nil {
		validate = dto.NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LoadCap <= 0 {
		cfg.LoadCap = scheduling.DefaultLoadCap
	}
	return &ScheduleService{
		repo:       repo,
		tx:         tx,
		validator:  validate,
		metrics:    metrics,
		timetables: timetables,
		logger:     logger,
		loadCap:    cfg.LoadCap,
	}
}

// List returns schedules with pagination metadata.
func (s *ScheduleService) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, *models.Pagination, error) {
	schedules, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return schedules, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// ListBySection returns a section's schedules; zero term values match every term.
func (s *ScheduleService) ListBySection(ctx context.Context, sectionID string, schoolYearID int64, semester models.Semester) ([]models.Schedule, error) {
	schedules, err := s.repo.ListBySection(ctx, sectionID, schoolYearID, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list section schedules")
	}
	return schedules, nil
}

// ListByFaculty returns a faculty member's schedules.
func (s *ScheduleService) ListByFaculty(ctx context.Context, facultyID string, schoolYearID int64, semester models.Semester) ([]models.Schedule, error) {
	schedules, err := s.repo.ListByFaculty(ctx, facultyID, schoolYearID, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faculty schedules")
	}
	return schedules, nil
}

// Get returns a schedule by id.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.Schedule, error) {
	schedule, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, s.translate(err, "failed to load schedule")
	}
	return schedule, nil
}

// Duration computes the snapped duration of a time range.
func (s *ScheduleService) Duration(req dto.DurationRequest) (*dto.DurationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid duration payload")
	}
	window, err := scheduling.ParseInterval(req.StartTime, req.EndTime)
	if err != nil {
		return nil, s.translate(err, "invalid time range")
	}
	return &dto.DurationResponse{
		Duration: scheduling.BucketMinutes(window.Minutes()),
		Minutes:  window.Minutes(),
	}, nil
}

// Validate is a dry run: it reports the verdict without taking locks or writing.
func (s *ScheduleService) Validate(ctx context.Context, req dto.ValidateScheduleRequest) (*scheduling.Verdict, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid schedule payload")
	}
	candidate, err := s.candidate(req.ScheduleRequest)
	if err != nil {
		return nil, err
	}
	candidate.ID = req.ExcludeID

	existing, err := s.repo.ListScope(ctx, nil, scopeOf(candidate))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedules")
	}
	verdict, err := s.check(candidate, existing, req.ExcludeID)
	if err != nil {
		return nil, s.translate(err, "invalid schedule")
	}
	return &verdict, nil
}

// Create stores a new schedule when it passes every check.
func (s *ScheduleService) Create(ctx context.Context, req dto.ScheduleRequest) (*models.Schedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid schedule payload")
	}
	candidate, err := s.candidate(req)
	if err != nil {
		return nil, err
	}
	candidate.ID = uuid.NewString()

	err = database.WithTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		if err := s.repo.Lock(ctx, tx, lockKeys(candidate)...); err != nil {
			return err
		}
		if err := s.acceptInTx(ctx, tx, candidate, ""); err != nil {
			return err
		}
		return s.repo.Create(ctx, tx, &candidate)
	})
	if err != nil {
		return nil, s.translate(err, "failed to create schedule")
	}

	s.logger.Info("schedule created", zap.String("schedule_id", candidate.ID), zap.String("section_id", candidate.SectionID))
	s.invalidate(ctx, candidate)
	return &candidate, nil
}

// Update replaces a schedule, validating it against everything but itself.
func (s *ScheduleService) Update(ctx context.Context, id string, req dto.ScheduleRequest) (*models.Schedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid schedule payload")
	}
	candidate, err := s.candidate(req)
	if err != nil {
		return nil, err
	}
	candidate.ID = id

	var previous models.Schedule
	err = database.WithTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		current, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		previous = *current
		keys := append(lockKeys(candidate), lockKeys(previous)...)
		if err := s.repo.Lock(ctx, tx, keys...); err != nil {
			return err
		}
		if err := s.acceptInTx(ctx, tx, candidate, id); err != nil {
			return err
		}
		candidate.CreatedAt = previous.CreatedAt
		return s.repo.Update(ctx, tx, &candidate)
	})
	if err != nil {
		return nil, s.translate(err, "failed to update schedule")
	}

	s.logger.Info("schedule updated", zap.String("schedule_id", id))
	s.invalidate(ctx, previous, candidate)
	return &candidate, nil
}

// Delete removes a schedule.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	var removed models.Schedule
	err := database.WithTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		current, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		removed = *current
		return s.repo.Delete(ctx, tx, id)
	})
	if err != nil {
		return s.translate(err, "failed to delete schedule")
	}
	s.logger.Info("schedule deleted", zap.String("schedule_id", id))
	s.invalidate(ctx, removed)
	return nil
}

// errBulkRejected aborts a bulk transaction that may not partially succeed.
var errBulkRejected = errors.New("bulk request rejected")

// BulkCreate creates several schedules in one transaction. Each item is
// checked against stored schedules and against the items accepted before it.
// Without PartialOnError a single rejection rolls everything back.
func (s *ScheduleService) BulkCreate(ctx context.Context, req dto.BulkScheduleRequest) (*dto.BulkScheduleResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid bulk schedule payload")
	}

	result := &dto.BulkScheduleResult{Created: []models.Schedule{}}
	candidates := make([]*models.Schedule, len(req.Items))
	var keys []string
	for i, item := range req.Items {
		candidate, err := s.candidate(item)
		if err != nil {
			result.Rejected = append(result.Rejected, rejection(i, err))
			continue
		}
		candidate.ID = uuid.NewString()
		candidates[i] = &candidate
		keys = append(keys, lockKeys(candidate)...)
	}

	err := database.WithTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		if len(result.Rejected) > 0 && !req.PartialOnError {
			return errBulkRejected
		}
		if err := s.repo.Lock(ctx, tx, keys...); err != nil {
			return err
		}
		for i, candidate := range candidates {
			if candidate == nil {
				continue
			}
			if err := s.acceptInTx(ctx, tx, *candidate, ""); err != nil {
				var appErr *appErrors.Error
				if !errors.As(err, &appErr) {
					return err
				}
				result.Rejected = append(result.Rejected, rejection(i, err))
				if !req.PartialOnError {
					return errBulkRejected
				}
				continue
			}
			if err := s.repo.Create(ctx, tx, candidate); err != nil {
				return err
			}
			result.Created = append(result.Created, *candidate)
		}
		return nil
	})
	if errors.Is(err, errBulkRejected) {
		result.Created = []models.Schedule{}
		conflict := appErrors.Clone(appErrors.ErrConflict, "bulk request rejected; nothing was created")
		return result, appErrors.WithDetails(conflict, result.Rejected)
	}
	if err != nil {
		return nil, s.translate(err, "failed to create schedules")
	}

	s.logger.Info("bulk schedules created", zap.Int("created", len(result.Created)), zap.Int("rejected", len(result.Rejected)))
	s.invalidate(ctx, result.Created...)
	return result, nil
}

// acceptInTx reloads the candidate's term snapshot inside tx and returns the
// rejection as an error so the transaction rolls back.
func (s *ScheduleService) acceptInTx(ctx context.Context, tx sqlx.ExtContext, candidate models.Schedule, excludeID string) error {
	existing, err := s.repo.ListScope(ctx, tx, scopeOf(candidate))
	if err != nil {
		return err
	}
	verdict, err := s.check(candidate, existing, excludeID)
	if err != nil {
		return s.translate(err, "invalid schedule")
	}
	if !verdict.OK {
		s.logger.Info("schedule rejected",
			zap.String("kind", string(verdict.Kind)),
			zap.String("section_id", candidate.SectionID),
			zap.String("faculty_id", candidate.FacultyID),
			zap.Strings("conflicts", verdict.ConflictingIDs()),
		)
		return verdict.Err()
	}
	return nil
}

func (s *ScheduleService) check(candidate models.Schedule, existing []models.Schedule, excludeID string) (scheduling.Verdict, error) {
	verdict, err := scheduling.ValidateSchedule(candidate, existing, scheduling.ValidateOptions{ExcludeID: excludeID, LoadCap: s.loadCap})
	switch {
	case err != nil:
		s.metrics.RecordValidation(ValidationParse)
	case verdict.OK:
		s.metrics.RecordValidation(ValidationAccepted)
	default:
		s.metrics.RecordValidation(string(verdict.Kind))
	}
	return verdict, err
}

// candidate converts a validated request into a schedule with canonical
// clock strings and a snapped duration.
func (s *ScheduleService) candidate(req dto.ScheduleRequest) (models.Schedule, error) {
	day, err := models.ParseWeekday(req.DayOfWeek)
	if err != nil {
		return models.Schedule{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	semester, err := models.ParseSemester(req.Semester)
	if err != nil {
		return models.Schedule{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	start, err := scheduling.NormalizeClock(req.StartTime)
	if err != nil {
		return models.Schedule{}, s.translate(err, "")
	}
	end, err := scheduling.NormalizeClock(req.EndTime)
	if err != nil {
		return models.Schedule{}, s.translate(err, "")
	}
	duration, err := scheduling.QuantizeDuration(start, end)
	if err != nil {
		return models.Schedule{}, s.translate(err, "")
	}

	var room *string
	if req.Room != nil {
		if trimmed := strings.TrimSpace(*req.Room); trimmed != "" {
			room = &trimmed
		}
	}
	return models.Schedule{
		SectionID:    strings.TrimSpace(req.SectionID),
		SubjectID:    strings.TrimSpace(req.SubjectID),
		FacultyID:    strings.TrimSpace(req.FacultyID),
		DayOfWeek:    day,
		StartTime:    start,
		EndTime:      end,
		Duration:     duration,
		Semester:     semester,
		SchoolYearID: req.SchoolYearID,
		Room:         room,
	}, nil
}

func (s *ScheduleService) invalidate(ctx context.Context, affected ...models.Schedule) {
	if s.timetables == nil || len(affected) == 0 {
		return
	}
	s.timetables.Invalidate(ctx, affected...)
}

func (s *ScheduleService) translate(err error, message string) error {
	return translateError(s.logger, err, "schedule not found", message)
}

func rejection(index int, err error) dto.BulkRejection {
	appErr := appErrors.FromError(err)
	return dto.BulkRejection{Index: index, Code: appErr.Code, Message: appErr.Message, Details: appErr.Details}
}

func scopeOf(s models.Schedule) models.ScheduleScope {
	return models.ScheduleScope{
		SchoolYearID: s.SchoolYearID,
		Semester:     s.Semester,
		FacultyID:    s.FacultyID,
		SectionID:    s.SectionID,
	}
}

func lockKeys(s models.Schedule) []string {
	keys := []string{fmt.Sprintf("section:%s:%d:%s", s.SectionID, s.SchoolYearID, s.Semester)}
	if s.HasFaculty() {
		keys = append(keys, fmt.Sprintf("faculty:%s:%d:%s", s.FacultyID, s.SchoolYearID, s.Semester))
	}
	return keys
}
