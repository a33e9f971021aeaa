package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-registrar-api/internal/dto"
	"github.com/noah-isme/sma-registrar-api/internal/models"
	"github.com/noah-isme/sma-registrar-api/internal/scheduling"
	"github.com/noah-isme/sma-registrar-api/internal/service"
	appErrors "github.com/noah-isme/sma-registrar-api/pkg/errors"
)

type academicPeriodServiceMock struct {
	filter  models.AcademicPeriodFilter
	created dto.AcademicPeriodRequest
	toggled *bool
	active  string
}

func (m *academicPeriodServiceMock) List(ctx context.Context, filter models.AcademicPeriodFilter) ([]models.AcademicPeriod, *models.Pagination, error) {
	m.filter = filter
	return []models.AcademicPeriod{}, &models.Pagination{Page: 1, PageSize: 20}, nil
}

func (m *academicPeriodServiceMock) Get(ctx context.Context, id string) (*models.AcademicPeriod, error) {
	return &models.AcademicPeriod{ID: id}, nil
}

func (m *academicPeriodServiceMock) Create(ctx context.Context, req dto.AcademicPeriodRequest) (*models.AcademicPeriod, error) {
	m.created = req
	return &models.AcademicPeriod{ID: "p1", StartDate: models.NewDate(2024, 8, 1), EndDate: models.NewDate(2024, 12, 31)}, nil
}

func (m *academicPeriodServiceMock) Update(ctx context.Context, id string, req dto.AcademicPeriodRequest) (*models.AcademicPeriod, error) {
	return &models.AcademicPeriod{ID: id}, nil
}

func (m *academicPeriodServiceMock) Delete(ctx context.Context, id string) error {
	return appErrors.Clone(appErrors.ErrNotFound, "academic period not found")
}

func (m *academicPeriodServiceMock) SetActive(ctx context.Context, id string) (*models.AcademicPeriod, error) {
	m.active = id
	return &models.AcademicPeriod{ID: id, IsActive: true}, nil
}

func (m *academicPeriodServiceMock) SetEnrollmentOpen(ctx context.Context, id string, req dto.EnrollmentToggleRequest) (*models.AcademicPeriod, error) {
	m.toggled = req.Open
	return &models.AcademicPeriod{ID: id}, nil
}

func (m *academicPeriodServiceMock) Preview(q dto.CalendarPreviewQuery) (*scheduling.CalendarFields, error) {
	if q.StartDate == "bad" {
		return nil, appErrors.Wrap(errors.New("bad date"), appErrors.ErrParse.Code, appErrors.ErrParse.Status, "invalid start_date")
	}
	fields, err := scheduling.DeriveCalendarFromStrings(q.StartDate, q.Semester)
	return &fields, err
}

func academicPeriodRouter(mock *academicPeriodServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAcademicPeriodHandler(mock)
	r := gin.New()
	r.GET("/academic-periods", h.List)
	r.POST("/academic-periods", h.Create)
	r.GET("/academic-periods/derive", h.Derive)
	r.GET("/academic-periods/:id", h.Get)
	r.DELETE("/academic-periods/:id", h.Delete)
	r.POST("/academic-periods/:id/activate", h.Activate)
	r.POST("/academic-periods/:id/enrollment", h.Enrollment)
	return r
}

var _ academicPeriodService = (*service.AcademicPeriodService)(nil)

func TestAcademicPeriodHandlerCreate(t *testing.T) {
	mock := &academicPeriodServiceMock{}
	w := perform(academicPeriodRouter(mock), http.MethodPost, "/academic-periods", []byte(`{"school_year":"2024-2025","semester":"1st Semester","start_date":"2024-08-01"}`))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "2024-2025", mock.created.SchoolYear)
	assert.Contains(t, w.Body.String(), `"end_date":"2024-12-31"`)
	assert.Contains(t, w.Body.String(), `"quarter3_start":null`)
}

func TestAcademicPeriodHandlerListFilter(t *testing.T) {
	mock := &academicPeriodServiceMock{}
	w := perform(academicPeriodRouter(mock), http.MethodGet, "/academic-periods?school_year_id=4&semester=first&active=true", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(4), mock.filter.SchoolYearID)
	assert.Equal(t, models.FirstSemester, mock.filter.Semester)
	require.NotNil(t, mock.filter.IsActive)
	assert.True(t, *mock.filter.IsActive)
}

func TestAcademicPeriodHandlerDerive(t *testing.T) {
	r := academicPeriodRouter(&academicPeriodServiceMock{})

	w := perform(r, http.MethodGet, "/academic-periods/derive?start_date=2025-06-01&semester=Summer", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"end_date":"2025-10-31"`)
	assert.Contains(t, w.Body.String(), `"grading_deadline":"2025-12-01"`)

	w = perform(r, http.MethodGet, "/academic-periods/derive?start_date=bad&semester=Summer", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAcademicPeriodHandlerActivateAndEnrollment(t *testing.T) {
	mock := &academicPeriodServiceMock{}
	r := academicPeriodRouter(mock)

	w := perform(r, http.MethodPost, "/academic-periods/p2/activate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "p2", mock.active)

	w = perform(r, http.MethodPost, "/academic-periods/p2/enrollment", []byte(`{"open":false}`))
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mock.toggled)
	assert.False(t, *mock.toggled)
}

func TestAcademicPeriodHandlerDeleteNotFound(t *testing.T) {
	w := perform(academicPeriodRouter(&academicPeriodServiceMock{}), http.MethodDelete, "/academic-periods/p9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
