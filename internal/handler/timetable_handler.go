package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-registrar-api/internal/dto"
	internalmiddleware "github.com/noah-isme/sma-registrar-api/internal/middleware"
	"github.com/noah-isme/sma-registrar-api/internal/models"
	"github.com/noah-isme/sma-registrar-api/internal/service"
	"github.com/noah-isme/sma-registrar-api/pkg/response"
)

type timetableService interface {
	SectionTimetable(ctx context.Context, sectionID string, schoolYearID int64, semester models.Semester) (*service.Timetable, error)
	FacultyTimetable(ctx context.Context, facultyID string, schoolYearID int64, semester models.Semester) (*service.Timetable, error)
	ExportSection(ctx context.Context, sectionID string, schoolYearID int64, semester models.Semester, format string) (*service.ExportFile, error)
}

// TimetableHandler serves timetable grids and exports.
type TimetableHandler struct {
	service timetableService
}

// NewTimetableHandler constructs a timetable handler.
func NewTimetableHandler(svc timetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Section godoc
// @Summary Section timetable grid
// @Tags Timetables
// @Produce json
// @Param id path string true "Section ID"
// @Param school_year_id query int false "School year"
// @Param semester query string false "Semester"
// @Success 200 {object} response.Envelope
// @Router /sections/{id}/timetable [get]
func (h *TimetableHandler) Section(c *gin.Context) {
	var q dto.TermQuery
	if !bindQuery(c, &q) {
		return
	}
	year, sem := term(q)
	tt, err := h.service.SectionTimetable(c.Request.Context(), c.Param("id"), year, sem)
	if err != nil {
		response.Error(c, err)
		return
	}
	internalmiddleware.SetCacheHit(c, tt.CacheHit)
	response.JSON(c, http.StatusOK, tt, nil, internalmiddleware.ExtractMeta(c))
}

// Faculty godoc
// @Summary Faculty timetable grid
// @Tags Timetables
// @Produce json
// @Param id path string true "Faculty ID"
// @Param school_year_id query int false "School year"
// @Param semester query string false "Semester"
// @Success 200 {object} response.Envelope
// @Router /faculty/{id}/timetable [get]
func (h *TimetableHandler) Faculty(c *gin.Context) {
	var q dto.TermQuery
	if !bindQuery(c, &q) {
		return
	}
	year, sem := term(q)
	tt, err := h.service.FacultyTimetable(c.Request.Context(), c.Param("id"), year, sem)
	if err != nil {
		response.Error(c, err)
		return
	}
	internalmiddleware.SetCacheHit(c, tt.CacheHit)
	response.JSON(c, http.StatusOK, tt, nil, internalmiddleware.ExtractMeta(c))
}

// Export godoc
// @Summary Download a section timetable
// @Tags Timetables
// @Produce text/csv
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Section ID"
// @Param school_year_id query int false "School year"
// @Param semester query string false "Semester"
// @Param format query string false "csv, pdf or xlsx"
// @Success 200 {file} file
// @Router /sections/{id}/timetable/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	var q dto.TimetableExportQuery
	if !bindQuery(c, &q) {
		return
	}
	year, sem := term(q.TermQuery)
	file, err := h.service.ExportSection(c.Request.Context(), c.Param("id"), year, sem, q.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
