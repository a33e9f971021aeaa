package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-registrar-api/internal/models"
	"github.com/noah-isme/sma-registrar-api/internal/scheduling"
	appErrors "github.com/noah-isme/sma-registrar-api/pkg/errors"
	"github.com/noah-isme/sma-registrar-api/pkg/export"
	"github.com/noah-isme/sma-registrar-api/pkg/jobs"
)

// Timetable owners.
const (
	OwnerSection = "section"
	OwnerFaculty = "faculty"
)

type timetableScheduleReader interface {
	ListBySection(ctx context.Context, sectionID string, schoolYearID int64, semester models.Semester) ([]models.Schedule, error)
	ListByFaculty(ctx context.Context, facultyID string, schoolYearID int64, semester models.Semester) ([]models.Schedule, error)
}

type sectionReader interface {
	FindByID(ctx context.Context, id string) (*models.Section, error)
}

type subjectReader interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

type facultyReader interface {
	FindByID(ctx context.Context, id string) (*models.Faculty, error)
}

type schoolYearReader interface {
	FindByID(ctx context.Context, id int64) (*models.SchoolYear, error)
}

// TimetableKey identifies one cached timetable.
type TimetableKey struct {
	Owner        string          `json:"owner"`
	OwnerID      string          `json:"owner_id"`
	SchoolYearID int64           `json:"school_year_id"`
	Semester     models.Semester `json:"semester"`
}

// CacheKey renders the Redis key of the timetable.
func (k TimetableKey) CacheKey() string {
	return fmt.Sprintf("timetable:%s:%s:%d:%s", k.Owner, k.OwnerID, k.SchoolYearID, k.Semester)
}

func ownerPattern(owner, id string) string {
	return fmt.Sprintf("timetable:%s:%s:*", owner, id)
}

// Timetable is a grid together with what it was built for.
type Timetable struct {
	TimetableKey
	Grid *scheduling.Grid `json:"grid"`
	// CacheHit is set when the schedules came from Redis.
	CacheHit bool `json:"-"`
}

// ExportFile is a rendered timetable ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// TimetableConfig tunes grid layout and caching.
type TimetableConfig struct {
	Slots         scheduling.TimeSlots
	Days          []models.Weekday
	CacheTTL      time.Duration
	WarmerWorkers int
	WarmerRetries int
	WarmerQueue   int
}

// TimetableReaders bundles the lookups used to label exported timetables.
type TimetableReaders struct {
	Sections    sectionReader
	Subjects    subjectReader
	Faculty     facultyReader
	SchoolYears schoolYearReader
}

// TimetableService builds section and faculty timetables, caches the
// underlying schedules and re-warms the cache after writes.
type TimetableService struct {
	schedules timetableScheduleReader
	readers   TimetableReaders
	cache     *CacheService
	metrics   *MetricsService
	exporters map[string]export.Exporter
	logger    *zap.Logger
	cfg       TimetableConfig
	warmer    *jobs.Queue[TimetableKey]
}

// NewTimetableService constructs a TimetableService.
func NewTimetableService(schedules timetableScheduleReader, readers TimetableReaders, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg TimetableConfig) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Slots.Len() == 0 {
		cfg.Slots = scheduling.DefaultTimeSlots()
	}
	if len(cfg.Days) == 0 {
		cfg.Days = models.SchoolDays
	}
	svc := &TimetableService{
		schedules: schedules,
		readers:   readers,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		exporters: map[string]export.Exporter{},
	}
	for _, exp := range []export.Exporter{export.NewCSVExporter(), export.NewPDFExporter(), export.NewXLSXExporter()} {
		svc.exporters[exp.Extension()] = exp
	}
	if cache.Enabled() {
		svc.warmer = jobs.NewQueue[TimetableKey]("timetable-warmer", svc.warm, jobs.QueueConfig{
			Workers:    cfg.WarmerWorkers,
			BufferSize: cfg.WarmerQueue,
			MaxRetries: cfg.WarmerRetries,
			Logger:     logger,
		})
	}
	return svc
}

// StartWarmer launches the background cache warmer; no-op without a cache.
func (s *TimetableService) StartWarmer(ctx context.Context) {
	if s.warmer != nil {
		s.warmer.Start(ctx)
	}
}

// StopWarmer stops the warmer and waits for in-flight jobs.
func (s *TimetableService) StopWarmer() {
	if s.warmer != nil {
		s.warmer.Stop()
	}
}

// SectionTimetable returns the grid of a section for a term.
func (s *TimetableService) SectionTimetable(ctx context.Context, sectionID string, schoolYearID int64, semester models.Semester) (*Timetable, error) {
	return s.timetable(ctx, TimetableKey{Owner: OwnerSection, OwnerID: sectionID, SchoolYearID: schoolYearID, Semester: semester})
}

// FacultyTimetable returns the grid of a faculty member for a term.
func (s *TimetableService) FacultyTimetable(ctx context.Context, facultyID string, schoolYearID int64, semester models.Semester) (*Timetable, error) {
	return s.timetable(ctx, TimetableKey{Owner: OwnerFaculty, OwnerID: facultyID, SchoolYearID: schoolYearID, Semester: semester})
}

func (s *TimetableService) timetable(ctx context.Context, key TimetableKey) (*Timetable, error) {
	schedules, source, err := s.load(ctx, key)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	start := time.Now()
	grid := scheduling.BuildGrid(schedules, s.cfg.Slots, s.cfg.Days)
	s.metrics.ObserveTimetableBuild(key.Owner, source, time.Since(start))
	return &Timetable{TimetableKey: key, Grid: grid, CacheHit: source == "cache"}, nil
}

func (s *TimetableService) load(ctx context.Context, key TimetableKey) ([]models.Schedule, string, error) {
	var cached []models.Schedule
	if s.cache.Get(ctx, key.CacheKey(), &cached) {
		return cached, "cache", nil
	}
	schedules, err := s.fetch(ctx, key)
	if err != nil {
		return nil, "db", err
	}
	s.cache.Set(ctx, key.CacheKey(), schedules, s.cfg.CacheTTL)
	return schedules, "db", nil
}

func (s *TimetableService) fetch(ctx context.Context, key TimetableKey) ([]models.Schedule, error) {
	switch key.Owner {
	case OwnerSection:
		return s.schedules.ListBySection(ctx, key.OwnerID, key.SchoolYearID, key.Semester)
	case OwnerFaculty:
		return s.schedules.ListByFaculty(ctx, key.OwnerID, key.SchoolYearID, key.Semester)
	}
	return nil, fmt.Errorf("unknown timetable owner %q", key.Owner)
}

// Invalidate drops every cached term of the sections and faculty members the
// schedules belong to, then queues their terms for re-warming.
func (s *TimetableService) Invalidate(ctx context.Context, affected ...models.Schedule) {
	if !s.cache.Enabled() {
		return
	}
	keys := make(map[TimetableKey]struct{})
	for _, sched := range affected {
		keys[TimetableKey{Owner: OwnerSection, OwnerID: sched.SectionID, SchoolYearID: sched.SchoolYearID, Semester: sched.Semester}] = struct{}{}
		if sched.HasFaculty() {
			keys[TimetableKey{Owner: OwnerFaculty, OwnerID: sched.FacultyID, SchoolYearID: sched.SchoolYearID, Semester: sched.Semester}] = struct{}{}
		}
	}

	patterns := make(map[string]struct{})
	for key := range keys {
		pattern := ownerPattern(key.Owner, key.OwnerID)
		if _, done := patterns[pattern]; done {
			continue
		}
		patterns[pattern] = struct{}{}
		_ = s.cache.Invalidate(ctx, pattern)
	}

	if s.warmer == nil {
		return
	}
	for key := range keys {
		if _, err := s.warmer.Enqueue(jobs.Job[TimetableKey]{Key: key.CacheKey(), Payload: key}); err != nil {
			s.metrics.RecordWarmerJob("dropped")
			s.logger.Warn("timetable warm not queued", zap.String("key", key.CacheKey()), zap.Error(err))
		}
	}
}

func (s *TimetableService) warm(ctx context.Context, job jobs.Job[TimetableKey]) error {
	schedules, err := s.fetch(ctx, job.Payload)
	if err != nil {
		s.metrics.RecordWarmerJob("failed")
		return err
	}
	s.cache.Set(ctx, job.Payload.CacheKey(), schedules, s.cfg.CacheTTL)
	s.metrics.RecordWarmerJob("warmed")
	return nil
}

// ExportSection renders a section timetable as csv, pdf or xlsx. An empty
// format means csv.
func (s *TimetableService) ExportSection(ctx context.Context, sectionID string, schoolYearID int64, semester models.Semester, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "csv"
	}
	exporter, ok := s.exporters[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	section, err := s.readers.Sections.FindByID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}

	tt, err := s.SectionTimetable(ctx, sectionID, schoolYearID, semester)
	if err != nil {
		return nil, err
	}

	sheet := s.toSheet(ctx, tt.Grid)
	sheet.Title = s.exportTitle(ctx, section.SectionName, schoolYearID, semester)
	body, err := exporter.Render(sheet)
	if err != nil {
		s.logger.Error("timetable export failed", zap.String("section_id", sectionID), zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable")
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("timetable-%s.%s", slug(section.SectionName, sectionID), exporter.Extension()),
		ContentType: exporter.ContentType(),
		Body:        body,
	}, nil
}

func (s *TimetableService) toSheet(ctx context.Context, grid *scheduling.Grid) export.Sheet {
	return GridSheet(grid, func(sched *models.Schedule) string { return s.cellLabel(ctx, sched) })
}

// GridSheet lays the grid out with days as columns; spanning cells become
// RowSpan values and the slots they cover are marked Covered.
func GridSheet(grid *scheduling.Grid, label func(*models.Schedule) string) export.Sheet {
	days := grid.Days()
	sheet := export.Sheet{Corner: "Time", Columns: make([]string, len(days))}
	for i, d := range days {
		sheet.Columns[i] = string(d)
	}

	labels := make(map[string]string)
	for _, cell := range grid.Starts() {
		if _, ok := labels[cell.ScheduleID]; !ok {
			labels[cell.ScheduleID] = label(cell.Schedule)
		}
	}

	for _, row := range grid.Rows() {
		out := export.SheetRow{Label: row.Slot, Cells: make([]export.SheetCell, len(row.Cells))}
		for i, cell := range row.Cells {
			switch {
			case cell == nil:
			case cell.IsStart:
				out.Cells[i] = export.SheetCell{Text: labels[cell.ScheduleID], RowSpan: cell.RowSpan}
			default:
				out.Cells[i] = export.SheetCell{Text: labels[cell.ScheduleID], Covered: true}
			}
		}
		sheet.Rows = append(sheet.Rows, out)
	}
	return sheet
}

// cellLabel is "Subject, Faculty, Room", falling back to ids when lookups fail.
func (s *TimetableService) cellLabel(ctx context.Context, sched *models.Schedule) string {
	if sched == nil {
		return ""
	}
	parts := []string{sched.SubjectID}
	if s.readers.Subjects != nil {
		if subj, err := s.readers.Subjects.FindByID(ctx, sched.SubjectID); err == nil && subj.Name != "" {
			parts[0] = subj.Name
		}
	}
	switch {
	case !sched.HasFaculty():
		parts = append(parts, "TBA")
	case s.readers.Faculty != nil:
		if f, err := s.readers.Faculty.FindByID(ctx, sched.FacultyID); err == nil {
			parts = append(parts, f.FullName())
		}
	}
	if sched.Room != nil && *sched.Room != "" {
		parts = append(parts, *sched.Room)
	}
	return strings.Join(parts, ", ")
}

func (s *TimetableService) exportTitle(ctx context.Context, sectionName string, schoolYearID int64, semester models.Semester) string {
	title := sectionName + " timetable"
	if semester != "" {
		title += " " + string(semester)
	}
	if schoolYearID != 0 && s.readers.SchoolYears != nil {
		if sy, err := s.readers.SchoolYears.FindByID(ctx, schoolYearID); err == nil {
			title += " " + sy.Format()
		}
	}
	return title
}

func slug(name, fallback string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "-"):
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return fallback
	}
	return out
}
