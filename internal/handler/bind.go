package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-registrar-api/internal/dto"
	"github.com/noah-isme/sma-registrar-api/internal/models"
	appErrors "github.com/noah-isme/sma-registrar-api/pkg/errors"
	"github.com/noah-isme/sma-registrar-api/pkg/response"
)

var queryValidator = dto.NewValidator()

// bindJSON decodes the body; field rules are checked by the services.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return false
	}
	return true
}

// bindQuery decodes and validates the query string.
func bindQuery(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query"))
		return false
	}
	if err := queryValidator.Struct(dst); err != nil {
		wrapped := appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query")
		response.Error(c, appErrors.WithDetails(wrapped, dto.FieldErrors(err)))
		return false
	}
	return true
}

// term converts a validated term query; empty values stay zero.
func term(q dto.TermQuery) (int64, models.Semester) {
	if q.Semester == "" {
		return q.SchoolYearID, ""
	}
	sem, _ := models.ParseSemester(q.Semester)
	return q.SchoolYearID, sem
}
