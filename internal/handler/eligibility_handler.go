package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-registrar-api/internal/dto"
	"github.com/noah-isme/sma-registrar-api/internal/scheduling"
	"github.com/noah-isme/sma-registrar-api/internal/service"
	"github.com/noah-isme/sma-registrar-api/pkg/response"
)

type eligibilityService interface {
	ForSection(ctx context.Context, sectionID string, q service.EligibilityQuery) (*scheduling.EligibilityResult, error)
}

// EligibilityHandler lists what a section can be scheduled with.
type EligibilityHandler struct {
	service eligibilityService
}

// NewEligibilityHandler constructs an eligibility handler.
func NewEligibilityHandler(svc eligibilityService) *EligibilityHandler {
	return &EligibilityHandler{service: svc}
}

// ForSection godoc
// @Summary Eligible subjects and faculty for a section
// @Tags Schedules
// @Produce json
// @Param id path string true "Section ID"
// @Param school_year_id query int false "School year"
// @Param semester query string false "Semester"
// @Param grade_level query string false "Only subjects of this grade level"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sections/{id}/eligibility [get]
func (h *EligibilityHandler) ForSection(c *gin.Context) {
	var q dto.EligibilityQuery
	if !bindQuery(c, &q) {
		return
	}
	year, sem := term(q.TermQuery)
	res, err := h.service.ForSection(c.Request.Context(), c.Param("id"), service.EligibilityQuery{
		SchoolYearID: year,
		Semester:     sem,
		GradeLevel:   q.GradeLevel,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
