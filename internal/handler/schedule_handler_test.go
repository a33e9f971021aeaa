package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-registrar-api/internal/dto"
	"github.com/noah-isme/sma-registrar-api/internal/models"
	"github.com/noah-isme/sma-registrar-api/internal/scheduling"
	appErrors "github.com/noah-isme/sma-registrar-api/pkg/errors"
)

type scheduleServiceMock struct {
	filter    models.ScheduleFilter
	created   dto.ScheduleRequest
	createErr error
	verdict   *scheduling.Verdict
	bulk      *dto.BulkScheduleResult
	bulkErr   error
	deleted   string
	termYear  int64
	termSem   models.Semester
}

func (m *scheduleServiceMock) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, *models.Pagination, error) {
	m.filter = filter
	return []models.Schedule{{ID: "s1"}}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, nil
}

func (m *scheduleServiceMock) ListBySection(ctx context.Context, sectionID string, schoolYearID int64, semester models.Semester) ([]models.Schedule, error) {
	m.termYear, m.termSem = schoolYearID, semester
	return []models.Schedule{{ID: "s1", SectionID: sectionID}}, nil
}

func (m *scheduleServiceMock) ListByFaculty(ctx context.Context, facultyID string, schoolYearID int64, semester models.Semester) ([]models.Schedule, error) {
	return []models.Schedule{{ID: "s1", FacultyID: facultyID}}, nil
}

func (m *scheduleServiceMock) Get(ctx context.Context, id string) (*models.Schedule, error) {
	if id != "s1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
	}
	return &models.Schedule{ID: id}, nil
}

func (m *scheduleServiceMock) Validate(ctx context.Context, req dto.ValidateScheduleRequest) (*scheduling.Verdict, error) {
	return m.verdict, nil
}

func (m *scheduleServiceMock) Create(ctx context.Context, req dto.ScheduleRequest) (*models.Schedule, error) {
	m.created = req
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &models.Schedule{ID: "new", SectionID: req.SectionID, Duration: 90}, nil
}

func (m *scheduleServiceMock) Update(ctx context.Context, id string, req dto.ScheduleRequest) (*models.Schedule, error) {
	return &models.Schedule{ID: id}, nil
}

func (m *scheduleServiceMock) Delete(ctx context.Context, id string) error {
	m.deleted = id
	return nil
}

func (m *scheduleServiceMock) BulkCreate(ctx context.Context, req dto.BulkScheduleRequest) (*dto.BulkScheduleResult, error) {
	return m.bulk, m.bulkErr
}

func (m *scheduleServiceMock) Duration(req dto.DurationRequest) (*dto.DurationResponse, error) {
	return &dto.DurationResponse{Duration: 60, Minutes: 50}, nil
}

func scheduleRouter(mock *scheduleServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewScheduleHandler(mock)
	r := gin.New()
	r.GET("/schedules", h.List)
	r.POST("/schedules", h.Create)
	r.POST("/schedules/validate", h.Validate)
	r.POST("/schedules/bulk", h.BulkCreate)
	r.POST("/schedules/duration", h.Duration)
	r.GET("/schedules/:id", h.Get)
	r.DELETE("/schedules/:id", h.Delete)
	r.GET("/sections/:id/schedules", h.ListBySection)
	return r
}

func perform(r http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Data       json.RawMessage    `json:"data"`
	Error      *appErrors.Error   `json:"error"`
	Pagination *models.Pagination `json:"pagination"`
	Meta       map[string]any     `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestScheduleHandlerListBindsFilter(t *testing.T) {
	mock := &scheduleServiceMock{}
	w := perform(scheduleRouter(mock), http.MethodGet, "/schedules?section_id=sec-1&day_of_week=tue&semester=2nd&page=2&page_size=10&sort_by=start_time", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sec-1", mock.filter.SectionID)
	assert.Equal(t, models.Tuesday, mock.filter.DayOfWeek)
	assert.Equal(t, models.SecondSemester, mock.filter.Semester)
	assert.Equal(t, 2, mock.filter.Page)
	assert.NotNil(t, decode(t, w).Pagination)
}

func TestScheduleHandlerListRejectsBadQuery(t *testing.T) {
	w := perform(scheduleRouter(&scheduleServiceMock{}), http.MethodGet, "/schedules?day_of_week=Sunday&sort_by=room", nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, appErrors.ErrValidation.Code, env.Error.Code)
}

func TestScheduleHandlerCreate(t *testing.T) {
	mock := &scheduleServiceMock{}
	body := []byte(`{"section_id":"sec-1","subject_id":"subj-1","day_of_week":"Monday","start_time":"07:30","end_time":"09:00","semester":"1st Semester","school_year_id":1}`)
	w := perform(scheduleRouter(mock), http.MethodPost, "/schedules", body)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "sec-1", mock.created.SectionID)
	assert.Equal(t, int64(1), mock.created.SchoolYearID)
}

func TestScheduleHandlerCreateConflict(t *testing.T) {
	verdict := scheduling.Verdict{Kind: scheduling.FacultyConflict, FacultyID: "fac-1", Conflicts: []models.Schedule{{ID: "s9"}}}
	mock := &scheduleServiceMock{createErr: verdict.Err()}
	w := perform(scheduleRouter(mock), http.MethodPost, "/schedules", []byte(`{"section_id":"sec-1"}`))

	require.Equal(t, http.StatusConflict, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, appErrors.ErrFacultyConflict.Code, env.Error.Code)
	assert.Contains(t, w.Body.String(), `"schedule_id":"s9"`)
}

func TestScheduleHandlerCreateMalformedJSON(t *testing.T) {
	w := perform(scheduleRouter(&scheduleServiceMock{}), http.MethodPost, "/schedules", []byte(`{"section_id":`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleHandlerValidateReturnsVerdict(t *testing.T) {
	mock := &scheduleServiceMock{verdict: &scheduling.Verdict{Kind: scheduling.DuplicateSchedule}}
	w := perform(scheduleRouter(mock), http.MethodPost, "/schedules/validate", []byte(`{}`))

	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.Contains(t, string(env.Data), `"kind":"DuplicateSchedule"`)
	assert.NotEmpty(t, env.Meta["message"])
}

func TestScheduleHandlerBulkRejected(t *testing.T) {
	rejected := []dto.BulkRejection{{Index: 1, Code: appErrors.ErrDuplicateSchedule.Code}}
	mock := &scheduleServiceMock{
		bulk:    &dto.BulkScheduleResult{Rejected: rejected},
		bulkErr: appErrors.WithDetails(appErrors.Clone(appErrors.ErrConflict, "bulk request rejected"), rejected),
	}
	w := perform(scheduleRouter(mock), http.MethodPost, "/schedules/bulk", []byte(`{"items":[]}`))

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"index":1`)
}

func TestScheduleHandlerGetNotFound(t *testing.T) {
	w := perform(scheduleRouter(&scheduleServiceMock{}), http.MethodGet, "/schedules/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScheduleHandlerDelete(t *testing.T) {
	mock := &scheduleServiceMock{}
	w := perform(scheduleRouter(mock), http.MethodDelete, "/schedules/s1", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "s1", mock.deleted)
}

func TestScheduleHandlerListBySectionTerm(t *testing.T) {
	mock := &scheduleServiceMock{}
	w := perform(scheduleRouter(mock), http.MethodGet, "/sections/sec-1/schedules?school_year_id=3&semester=summer", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(3), mock.termYear)
	assert.Equal(t, models.Summer, mock.termSem)
}

func TestScheduleHandlerDuration(t *testing.T) {
	w := perform(scheduleRouter(&scheduleServiceMock{}), http.MethodPost, "/schedules/duration", []byte(`{"start_time":"07:30","end_time":"08:20"}`))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"duration":60,"minutes":50}`, string(decode(t, w).Data))
}
