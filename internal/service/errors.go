package service

import (
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-registrar-api/internal/dto"
	"github.com/noah-isme/sma-registrar-api/internal/scheduling"
	appErrors "github.com/noah-isme/sma-registrar-api/pkg/errors"
)

// translateError maps core and persistence errors onto API errors. Anything
// unrecognised is logged and reported as internal.
func translateError(logger *zap.Logger, err error, notFound, message string) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, scheduling.ErrInvalidTimeRange) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, scheduling.ErrInvalidTimeRange.Error())
	}
	var parseErr *scheduling.ParseError
	if errors.As(err, &parseErr) {
		wrapped := appErrors.Wrap(err, appErrors.ErrParse.Code, appErrors.ErrParse.Status, parseErr.Error())
		return appErrors.WithDetails(wrapped, map[string]string{"field": parseErr.Field, "value": parseErr.Value})
	}
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	if message == "" {
		message = appErrors.ErrInternal.Message
	}
	logger.Error(message, zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func validationError(err error, message string) error {
	wrapped := appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	if fields := dto.FieldErrors(err); len(fields) > 0 {
		return appErrors.WithDetails(wrapped, fields)
	}
	return wrapped
}
