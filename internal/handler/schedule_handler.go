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

type scheduleService interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, *models.Pagination, error)
	ListBySection(ctx context.Context, sectionID string, schoolYearID int64, semester models.Semester) ([]models.Schedule, error)
	ListByFaculty(ctx context.Context, facultyID string, schoolYearID int64, semester models.Semester) ([]models.Schedule, error)
	Get(ctx context.Context, id string) (*models.Schedule, error)
	Validate(ctx context.Context, req dto.ValidateScheduleRequest) (*scheduling.Verdict, error)
	Create(ctx context.Context, req dto.ScheduleRequest) (*models.Schedule, error)
	Update(ctx context.Context, id string, req dto.ScheduleRequest) (*models.Schedule, error)
	Delete(ctx context.Context, id string) error
	BulkCreate(ctx context.Context, req dto.BulkScheduleRequest) (*dto.BulkScheduleResult, error)
	Duration(req dto.DurationRequest) (*dto.DurationResponse, error)
}

// ScheduleHandler manages schedule endpoints.
type ScheduleHandler struct {
	service scheduleService
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(svc scheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// List godoc
// @Summary List schedules
// @Tags Schedules
// @Produce json
// @Param section_id query string false "Filter by section"
// @Param subject_id query string false "Filter by subject"
// @Param faculty_id query string false "Filter by faculty"
// @Param day_of_week query string false "Filter by day"
// @Param semester query string false "Filter by semester"
// @Param school_year_id query int false "Filter by school year"
// @Param room query string false "Filter by room"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Param sort_by query string false "day_of_week, start_time or created_at"
// @Param sort_order query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /schedules [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	var q dto.ScheduleListQuery
	if !bindQuery(c, &q) {
		return
	}
	filter := models.ScheduleFilter{
		SectionID:    q.SectionID,
		SubjectID:    q.SubjectID,
		FacultyID:    q.FacultyID,
		SchoolYearID: q.SchoolYearID,
		Room:         q.Room,
		Page:         q.Page,
		PageSize:     q.PageSize,
		SortBy:       q.SortBy,
		SortOrder:    q.SortOrder,
	}
	if q.DayOfWeek != "" {
		filter.DayOfWeek, _ = models.ParseWeekday(q.DayOfWeek)
	}
	_, filter.Semester = term(dto.TermQuery{Semester: q.Semester})

	schedules, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, pagination)
}

// Get godoc
// @Summary Get schedule
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedules/{id} [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	schedule, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// ListBySection godoc
// @Summary List schedules of a section
// @Tags Schedules
// @Produce json
// @Param id path string true "Section ID"
// @Param school_year_id query int false "School year"
// @Param semester query string false "Semester"
// @Success 200 {object} response.Envelope
// @Router /sections/{id}/schedules [get]
func (h *ScheduleHandler) ListBySection(c *gin.Context) {
	var q dto.TermQuery
	if !bindQuery(c, &q) {
		return
	}
	year, sem := term(q)
	schedules, err := h.service.ListBySection(c.Request.Context(), c.Param("id"), year, sem)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, nil)
}

// ListByFaculty godoc
// @Summary List schedules of a faculty member
// @Tags Schedules
// @Produce json
// @Param id path string true "Faculty ID"
// @Param school_year_id query int false "School year"
// @Param semester query string false "Semester"
// @Success 200 {object} response.Envelope
// @Router /faculty/{id}/schedules [get]
func (h *ScheduleHandler) ListByFaculty(c *gin.Context) {
	var q dto.TermQuery
	if !bindQuery(c, &q) {
		return
	}
	year, sem := term(q)
	schedules, err := h.service.ListByFaculty(c.Request.Context(), c.Param("id"), year, sem)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, nil)
}

// Validate godoc
// @Summary Check a schedule without saving it
// @Description Returns the verdict; a rejection is a 200 with ok=false.
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.ValidateScheduleRequest true "Candidate schedule"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedules/validate [post]
func (h *ScheduleHandler) Validate(c *gin.Context) {
	var req dto.ValidateScheduleRequest
	if !bindJSON(c, &req) {
		return
	}
	verdict, err := h.service.Validate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, verdict, nil, map[string]interface{}{"message": verdict.Message()})
}

// Create godoc
// @Summary Create schedule
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.ScheduleRequest true "Schedule payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedules [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req dto.ScheduleRequest
	if !bindJSON(c, &req) {
		return
	}
	schedule, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, schedule)
}

// BulkCreate godoc
// @Summary Bulk create schedules
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.BulkScheduleRequest true "Bulk payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedules/bulk [post]
func (h *ScheduleHandler) BulkCreate(c *gin.Context) {
	var req dto.BulkScheduleRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.service.BulkCreate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Update godoc
// @Summary Update schedule
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payload body dto.ScheduleRequest true "Schedule payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedules/{id} [put]
func (h *ScheduleHandler) Update(c *gin.Context) {
	var req dto.ScheduleRequest
	if !bindJSON(c, &req) {
		return
	}
	schedule, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Delete godoc
// @Summary Delete schedule
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 204
// @Router /schedules/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Duration godoc
// @Summary Compute the stored duration of a time range
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.DurationRequest true "Time range"
// @Success 200 {object} response.Envelope
// @Router /schedules/duration [post]
func (h *ScheduleHandler) Duration(c *gin.Context) {
	var req dto.DurationRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.service.Duration(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
