package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-registrar-api/internal/dto"
	"github.com/noah-isme/sma-registrar-api/internal/models"
	"github.com/noah-isme/sma-registrar-api/internal/scheduling"
	"github.com/noah-isme/sma-registrar-api/pkg/database"
	appErrors "github.com/noah-isme/sma-registrar-api/pkg/errors"
)

type academicPeriodRepository interface {
	List(ctx context.Context, filter models.AcademicPeriodFilter) ([]models.AcademicPeriod, int, error)
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.AcademicPeriod, error)
	FindByTerm(ctx context.Context, exec sqlx.ExtContext, schoolYearID int64, semester models.Semester) ([]models.AcademicPeriod, error)
	LockTerm(ctx context.Context, exec sqlx.ExtContext, schoolYearID int64, semester models.Semester) error
	Create(ctx context.Context, exec sqlx.ExtContext, period *models.AcademicPeriod) error
	Update(ctx context.Context, exec sqlx.ExtContext, period *models.AcademicPeriod) error
	Activate(ctx context.Context, exec sqlx.ExtContext, id string) error
	SetEnrollmentOpen(ctx context.Context, id string, open bool) error
	Delete(ctx context.Context, id string) error
}

type schoolYearRepository interface {
	Ensure(ctx context.Context, exec sqlx.ExtContext, startYear, endYear int) (*models.SchoolYear, error)
}

// AcademicPeriodService manages semesters and their derived calendars.
type AcademicPeriodService struct {
	repo      academicPeriodRepository
	years     schoolYearRepository
	tx        database.TxBeginner
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAcademicPeriodService constructs the service.
func NewAcademicPeriodService(repo academicPeriodRepository, years schoolYearRepository, tx database.TxBeginner, validate *validator.Validate, logger *zap.Logger) *AcademicPeriodService {
	if validate == nil {
		validate = dto.NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AcademicPeriodService{repo: repo, years: years, tx: tx, validator: validate, logger: logger}
}

// List returns academic periods with pagination metadata.
func (s *AcademicPeriodService) List(ctx context.Context, filter models.AcademicPeriodFilter) ([]models.AcademicPeriod, *models.Pagination, error) {
	periods, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list academic periods")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return periods, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one academic period.
func (s *AcademicPeriodService) Get(ctx context.Context, id string) (*models.AcademicPeriod, error) {
	period, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, s.translate(err, "failed to load academic period")
	}
	return period, nil
}

// Preview derives a calendar without storing anything.
func (s *AcademicPeriodService) Preview(q dto.CalendarPreviewQuery) (*scheduling.CalendarFields, error) {
	fields, err := scheduling.DeriveCalendarFromStrings(q.StartDate, q.Semester)
	if err != nil {
		return nil, s.translate(err, "")
	}
	return &fields, nil
}

// Create stores a new academic period with its calendar derived from the start date.
func (s *AcademicPeriodService) Create(ctx context.Context, req dto.AcademicPeriodRequest) (*models.AcademicPeriod, error) {
	input, err := s.parse(req)
	if err != nil {
		return nil, err
	}

	period := &models.AcademicPeriod{
		Semester:            input.semester,
		StartDate:           input.start,
		EnrollmentStartDate: input.enrollStart,
		EnrollmentEndDate:   input.enrollEnd,
		IsEnrollmentOpen:    req.IsEnrollmentOpen,
	}
	if err := s.derive(period, input.start); err != nil {
		return nil, err
	}

	err = database.WithTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		year, err := s.years.Ensure(ctx, tx, input.yearStart, input.yearEnd)
		if err != nil {
			return err
		}
		if err := s.ensureUnique(ctx, tx, year.ID, input.semester, ""); err != nil {
			return err
		}
		period.SchoolYearID = year.ID
		period.YearStart, period.YearEnd = year.StartYear, year.EndYear
		return s.repo.Create(ctx, tx, period)
	})
	if err != nil {
		return nil, s.translate(err, "failed to create academic period")
	}
	s.logger.Info("academic period created", zap.String("period_id", period.ID), zap.String("school_year", period.SchoolYearLabel()), zap.String("semester", string(period.Semester)))
	return period, nil
}

// Update replaces an academic period. A new start date, or a semester change
// while a start date is stored, recomputes every derived date; an empty start
// date keeps the stored one.
func (s *AcademicPeriodService) Update(ctx context.Context, id string, req dto.AcademicPeriodRequest) (*models.AcademicPeriod, error) {
	input, err := s.parse(req)
	if err != nil {
		return nil, err
	}

	var period *models.AcademicPeriod
	err = database.WithTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		current, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		year, err := s.years.Ensure(ctx, tx, input.yearStart, input.yearEnd)
		if err != nil {
			return err
		}
		if err := s.ensureUnique(ctx, tx, year.ID, input.semester, id); err != nil {
			return err
		}

		start := input.start
		if start.IsZero() {
			start = current.StartDate
		}
		current.SchoolYearID = year.ID
		current.YearStart, current.YearEnd = year.StartYear, year.EndYear
		current.Semester = input.semester
		current.StartDate = start
		current.EnrollmentStartDate = input.enrollStart
		current.EnrollmentEndDate = input.enrollEnd
		current.IsEnrollmentOpen = req.IsEnrollmentOpen
		if err := s.derive(current, start); err != nil {
			return err
		}
		period = current
		return s.repo.Update(ctx, tx, current)
	})
	if err != nil {
		return nil, s.translate(err, "failed to update academic period")
	}
	s.logger.Info("academic period updated", zap.String("period_id", id))
	return period, nil
}

// SetActive makes the period the only active one.
func (s *AcademicPeriodService) SetActive(ctx context.Context, id string) (*models.AcademicPeriod, error) {
	var period *models.AcademicPeriod
	err := database.WithTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		if err := s.repo.Activate(ctx, tx, id); err != nil {
			return err
		}
		var err error
		period, err = s.repo.FindByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, s.translate(err, "failed to activate academic period")
	}
	s.logger.Info("academic period activated", zap.String("period_id", id))
	return period, nil
}

// SetEnrollmentOpen opens or closes enrollment for the period.
func (s *AcademicPeriodService) SetEnrollmentOpen(ctx context.Context, id string, req dto.EnrollmentToggleRequest) (*models.AcademicPeriod, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid enrollment payload")
	}
	if err := s.repo.SetEnrollmentOpen(ctx, id, *req.Open); err != nil {
		return nil, s.translate(err, "failed to update enrollment")
	}
	return s.Get(ctx, id)
}

// Delete removes an academic period.
func (s *AcademicPeriodService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.translate(err, "failed to delete academic period")
	}
	return nil
}

type periodInput struct {
	yearStart   int
	yearEnd     int
	semester    models.Semester
	start       models.Date
	enrollStart models.Date
	enrollEnd   models.Date
}

func (s *AcademicPeriodService) parse(req dto.AcademicPeriodRequest) (periodInput, error) {
	if err := s.validator.Struct(req); err != nil {
		return periodInput{}, validationError(err, "invalid academic period payload")
	}
	var in periodInput
	var err error
	if in.yearStart, in.yearEnd, err = models.ParseSchoolYearLabel(req.SchoolYear); err != nil {
		return periodInput{}, appErrors.WithDetails(
			appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error()),
			map[string]string{"school_year": "format"},
		)
	}
	if in.semester, err = models.ParseSemester(req.Semester); err != nil {
		return periodInput{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	dates := []struct {
		field string
		raw   string
		dst   *models.Date
	}{
		{"start_date", req.StartDate, &in.start},
		{"enrollment_start_date", req.EnrollmentStartDate, &in.enrollStart},
		{"enrollment_end_date", req.EnrollmentEndDate, &in.enrollEnd},
	}
	for _, d := range dates {
		if d.raw == "" {
			continue
		}
		parsed, err := models.ParseDate(d.raw)
		if err != nil {
			return periodInput{}, s.translate(&scheduling.ParseError{Field: d.field, Value: d.raw, Err: err}, "")
		}
		*d.dst = parsed
	}
	if !in.enrollStart.IsZero() && !in.enrollEnd.IsZero() && in.enrollEnd.Before(in.enrollStart.Time) {
		return periodInput{}, appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrValidation, "enrollment end date must not precede its start date"),
			map[string]string{"enrollment_end_date": "gtefield=enrollment_start_date"},
		)
	}
	return in, nil
}

// derive overwrites every calculated date from start. A zero start leaves
// the period untouched.
func (s *AcademicPeriodService) derive(period *models.AcademicPeriod, start models.Date) error {
	fields, err := scheduling.DeriveCalendar(start, period.Semester)
	if err != nil {
		return s.translate(err, "")
	}
	if !fields.Skipped {
		fields.Apply(period)
	}
	return nil
}

// ensureUnique holds the term lock until tx ends.
func (s *AcademicPeriodService) ensureUnique(ctx context.Context, tx *sqlx.Tx, schoolYearID int64, semester models.Semester, excludeID string) error {
	if err := s.repo.LockTerm(ctx, tx, schoolYearID, semester); err != nil {
		return err
	}
	existing, err := s.repo.FindByTerm(ctx, tx, schoolYearID, semester)
	if err != nil {
		return err
	}
	for _, p := range existing {
		if p.ID != excludeID {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("%s already exists for school year %s", semester, p.SchoolYearLabel()))
		}
	}
	return nil
}

func (s *AcademicPeriodService) translate(err error, message string) error {
	return translateError(s.logger, err, "academic period not found", message)
}
