package service

import (
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	errorvalues "github.com/limbo/placebetween/internal/error_values"
)

const dateLayout = "2006-01-02"

// Package for custom validations
var (
	validate *validator.Validate
	once     sync.Once
)

func InitValidator() {
	once.Do(func() {
		validate = validator.New()
		// Field must be a date not earlier than the date in the named sibling field
		validate.RegisterValidation("date_not_before", func(fl validator.FieldLevel) bool {
			other, _, _, ok := fl.GetStructFieldOKAdvanced2(fl.Parent(), fl.Param())
			if !ok {
				return false
			}
			end, err := time.Parse(dateLayout, fl.Field().String())
			if err != nil {
				return false
			}
			start, err := time.Parse(dateLayout, other.String())
			if err != nil {
				// reported by the datetime tag of the other field
				return true
			}
			return !end.Before(start)
		})
	})
}

// ParseRange validates req and returns its dates at UTC midnight.
func ParseRange(req *RangeRequest) (time.Time, time.Time, error) {
	InitValidator()
	err := validate.Struct(req)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Join(errorvalues.ErrInvalidRange, err)
	}
	start, _ := time.Parse(dateLayout, req.Start)
	end, _ := time.Parse(dateLayout, req.End)
	return start, end, nil
}
