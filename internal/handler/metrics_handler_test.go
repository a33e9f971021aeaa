package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-registrar-api/internal/models"
	"github.com/noah-isme/sma-registrar-api/internal/scheduling"
	"github.com/noah-isme/sma-registrar-api/internal/service"
)

type eligibilityServiceMock struct {
	query service.EligibilityQuery
}

func (m *eligibilityServiceMock) ForSection(ctx context.Context, sectionID string, q service.EligibilityQuery) (*scheduling.EligibilityResult, error) {
	m.query = q
	return &scheduling.EligibilityResult{
		Subjects: []models.EligibleSubject{{Subject: models.Subject{ID: "calc"}, IsDisabled: true, DisabledReason: "already assigned"}},
		Faculty:  []models.Faculty{{ID: "fac-1"}},
	}, nil
}

func TestEligibilityHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &eligibilityServiceMock{}
	r := gin.New()
	r.GET("/sections/:id/eligibility", NewEligibilityHandler(mock).ForSection)

	w := perform(r, http.MethodGet, "/sections/sec-1/eligibility?grade_level=12&semester=2nd&school_year_id=2", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "12", mock.query.GradeLevel)
	assert.Equal(t, models.SecondSemester, mock.query.Semester)
	assert.Contains(t, w.Body.String(), `"is_disabled":true`)
}

func TestMetricsHandlerEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	metrics.RecordValidation(service.ValidationAccepted)
	h := NewMetricsHandler(metrics, map[string]ReadinessCheck{
		"database": func(ctx context.Context) error { return nil },
	})
	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", h.Prometheus)

	w := perform(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(r, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready","checks":{"database":"ok"}}`, w.Body.String())

	w = perform(r, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "schedule_validation_total")
}

func TestMetricsHandlerNotReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewMetricsHandler(nil, map[string]ReadinessCheck{
		"redis": func(ctx context.Context) error { return errors.New("connection refused") },
	})
	r := gin.New()
	r.GET("/ready", h.Ready)
	r.GET("/metrics", h.Prometheus)

	w := perform(r, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")

	w = perform(r, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
