package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-registrar-api/internal/models"
	"github.com/noah-isme/sma-registrar-api/internal/scheduling"
	"github.com/noah-isme/sma-registrar-api/internal/service"
	appErrors "github.com/noah-isme/sma-registrar-api/pkg/errors"
)

type timetableServiceMock struct {
	format string
}

func (m *timetableServiceMock) grid() *scheduling.Grid {
	return scheduling.BuildGrid([]models.Schedule{
		{ID: "s1", SectionID: "sec-1", DayOfWeek: models.Monday, StartTime: "07:30", EndTime: "08:30"},
	}, scheduling.DefaultTimeSlots(), []models.Weekday{models.Monday})
}

func (m *timetableServiceMock) SectionTimetable(ctx context.Context, sectionID string, schoolYearID int64, semester models.Semester) (*service.Timetable, error) {
	return &service.Timetable{
		TimetableKey: service.TimetableKey{Owner: service.OwnerSection, OwnerID: sectionID, SchoolYearID: schoolYearID, Semester: semester},
		Grid:         m.grid(),
		CacheHit:     true,
	}, nil
}

func (m *timetableServiceMock) FacultyTimetable(ctx context.Context, facultyID string, schoolYearID int64, semester models.Semester) (*service.Timetable, error) {
	return &service.Timetable{
		TimetableKey: service.TimetableKey{Owner: service.OwnerFaculty, OwnerID: facultyID},
		Grid:         m.grid(),
	}, nil
}

func (m *timetableServiceMock) ExportSection(ctx context.Context, sectionID string, schoolYearID int64, semester models.Semester, format string) (*service.ExportFile, error) {
	m.format = format
	if sectionID == "missing" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
	}
	return &service.ExportFile{Filename: "timetable-stem.csv", ContentType: "text/csv", Body: []byte("Time,Monday\n")}, nil
}

func timetableRouter(mock *timetableServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewTimetableHandler(mock)
	r := gin.New()
	r.GET("/sections/:id/timetable", h.Section)
	r.GET("/sections/:id/timetable/export", h.Export)
	r.GET("/faculty/:id/timetable", h.Faculty)
	return r
}

func TestTimetableHandlerSectionGrid(t *testing.T) {
	w := perform(timetableRouter(&timetableServiceMock{}), http.MethodGet, "/sections/sec-1/timetable?school_year_id=1&semester=1st", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"owner":"section"`)
	assert.Contains(t, body, `"semester":"1st Semester"`)
	assert.Contains(t, body, `"08:00":"occupied"`)
	assert.Contains(t, body, `"row_span":2`)
	assert.Contains(t, body, `"cache_hit":true`)
}

func TestTimetableHandlerFacultyGrid(t *testing.T) {
	w := perform(timetableRouter(&timetableServiceMock{}), http.MethodGet, "/faculty/fac-1/timetable", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"owner_id":"fac-1"`)
}

func TestTimetableHandlerExport(t *testing.T) {
	mock := &timetableServiceMock{}
	w := perform(timetableRouter(mock), http.MethodGet, "/sections/sec-1/timetable/export?format=csv", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", mock.format)
	assert.Equal(t, `attachment; filename="timetable-stem.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Time,Monday\n", w.Body.String())
}

func TestTimetableHandlerExportRejectsFormat(t *testing.T) {
	w := perform(timetableRouter(&timetableServiceMock{}), http.MethodGet, "/sections/sec-1/timetable/export?format=docx", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerExportMissingSection(t *testing.T) {
	w := perform(timetableRouter(&timetableServiceMock{}), http.MethodGet, "/sections/missing/timetable/export", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
