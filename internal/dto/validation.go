package dto

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/sma-registrar-api/internal/models"
	"github.com/noah-isme/sma-registrar-api/internal/scheduling"
)

// NewValidator returns a validator with the registrar tags registered and
// field errors reported by their JSON or form name.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	// Registration only fails for empty tag names or nil functions.
	_ = v.RegisterValidation("clock", validateClock)
	_ = v.RegisterValidation("semester", validateSemester)
	_ = v.RegisterValidation("weekday", validateWeekday)
	return v
}

// clock: H:MM or HH:MM on a 24 hour clock.
func validateClock(fl validator.FieldLevel) bool {
	_, err := scheduling.ToMinutes(fl.Field().String())
	return err == nil
}

func validateSemester(fl validator.FieldLevel) bool {
	_, err := models.ParseSemester(fl.Field().String())
	return err == nil
}

// weekday accepts the days a class may meet on.
func validateWeekday(fl validator.FieldLevel) bool {
	day, err := models.ParseWeekday(fl.Field().String())
	return err == nil && day.IsSchoolDay()
}

// FieldErrors flattens validator errors into field -> failed rule.
func FieldErrors(err error) map[string]string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		out[fieldPath(fe.Namespace())] = rule
	}
	return out
}

// fieldPath drops the Go type segments (root struct, embedded structs) of a namespace.
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	kept := make([]string, 0, len(parts))
	for _, p := range parts[1:] {
		if p != "" && unicode.IsUpper(rune(p[0])) {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, ".")
}
