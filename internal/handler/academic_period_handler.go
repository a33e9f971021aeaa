package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-registrar-api/internal/dto"
	"github.com/noah-isme/sma-registrar-api/internal/models"
	"github.com/noah-isme/sma-registrar-api/internal/scheduling"
	"github.com/noah-isme/sma-registrar-api/pkg/response"
)

type academicPeriodService interface {
	List(ctx context.Context, filter models.AcademicPeriodFilter) ([]models.AcademicPeriod, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.AcademicPeriod, error)
	Create(ctx context.Context, req dto.AcademicPeriodRequest) (*models.AcademicPeriod, error)
	Update(ctx context.Context, id string, req dto.AcademicPeriodRequest) (*models.AcademicPeriod, error)
	Delete(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string) (*models.AcademicPeriod, error)
	SetEnrollmentOpen(ctx context.Context, id string, req dto.EnrollmentToggleRequest) (*models.AcademicPeriod, error)
	Preview(q dto.CalendarPreviewQuery) (*scheduling.CalendarFields, error)
}

// AcademicPeriodHandler manages academic period endpoints.
type AcademicPeriodHandler struct {
	service academicPeriodService
}

// NewAcademicPeriodHandler constructs handler.
func NewAcademicPeriodHandler(svc academicPeriodService) *AcademicPeriodHandler {
	return &AcademicPeriodHandler{service: svc}
}

// List godoc
// @Summary List academic periods
// @Tags AcademicPeriods
// @Produce json
// @Param school_year_id query int false "School year"
// @Param semester query string false "Semester"
// @Param active query bool false "Only the active period"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /academic-periods [get]
func (h *AcademicPeriodHandler) List(c *gin.Context) {
	var q dto.AcademicPeriodListQuery
	if !bindQuery(c, &q) {
		return
	}
	year, sem := term(dto.TermQuery{SchoolYearID: q.SchoolYearID, Semester: q.Semester})
	periods, pagination, err := h.service.List(c.Request.Context(), models.AcademicPeriodFilter{
		SchoolYearID: year,
		Semester:     sem,
		IsActive:     q.Active,
		Page:         q.Page,
		PageSize:     q.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, periods, pagination)
}

// Get godoc
// @Summary Get academic period
// @Tags AcademicPeriods
// @Produce json
// @Param id path string true "Academic period ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /academic-periods/{id} [get]
func (h *AcademicPeriodHandler) Get(c *gin.Context) {
	period, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}

// Create godoc
// @Summary Create academic period
// @Description End date, quarters and grading deadline are derived from start_date and semester.
// @Tags AcademicPeriods
// @Accept json
// @Produce json
// @Param payload body dto.AcademicPeriodRequest true "Academic period"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /academic-periods [post]
func (h *AcademicPeriodHandler) Create(c *gin.Context) {
	var req dto.AcademicPeriodRequest
	if !bindJSON(c, &req) {
		return
	}
	period, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, period)
}

// Update godoc
// @Summary Update academic period
// @Tags AcademicPeriods
// @Accept json
// @Produce json
// @Param id path string true "Academic period ID"
// @Param payload body dto.AcademicPeriodRequest true "Academic period"
// @Success 200 {object} response.Envelope
// @Router /academic-periods/{id} [put]
func (h *AcademicPeriodHandler) Update(c *gin.Context) {
	var req dto.AcademicPeriodRequest
	if !bindJSON(c, &req) {
		return
	}
	period, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}

// Delete godoc
// @Summary Delete academic period
// @Tags AcademicPeriods
// @Param id path string true "Academic period ID"
// @Success 204
// @Router /academic-periods/{id} [delete]
func (h *AcademicPeriodHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Activate godoc
// @Summary Make an academic period the active one
// @Tags AcademicPeriods
// @Produce json
// @Param id path string true "Academic period ID"
// @Success 200 {object} response.Envelope
// @Router /academic-periods/{id}/activate [post]
func (h *AcademicPeriodHandler) Activate(c *gin.Context) {
	period, err := h.service.SetActive(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}

// Enrollment godoc
// @Summary Open or close enrollment
// @Tags AcademicPeriods
// @Accept json
// @Produce json
// @Param id path string true "Academic period ID"
// @Param payload body dto.EnrollmentToggleRequest true "Toggle"
// @Success 200 {object} response.Envelope
// @Router /academic-periods/{id}/enrollment [post]
func (h *AcademicPeriodHandler) Enrollment(c *gin.Context) {
	var req dto.EnrollmentToggleRequest
	if !bindJSON(c, &req) {
		return
	}
	period, err := h.service.SetEnrollmentOpen(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}

// Derive godoc
// @Summary Preview the calendar derived from a start date
// @Tags AcademicPeriods
// @Produce json
// @Param start_date query string false "YYYY-MM-DD"
// @Param semester query string false "Semester"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /academic-periods/derive [get]
func (h *AcademicPeriodHandler) Derive(c *gin.Context) {
	var q dto.CalendarPreviewQuery
	if !bindQuery(c, &q) {
		return
	}
	fields, err := h.service.Preview(q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fields, nil)
}
