// Package validation provides struct validation using go-playground/validator v10.
//
// It keeps one validator instance for the whole process (the library caches
// struct metadata per instance, so creating one per request would throw that
// cache away) and translates the library's field errors into
// apperror.ValidationFailed, so callers only ever deal with one error kind.
//
// Example usage:
//
//	if err := validation.Struct(&film); err != nil {
//	    return nil, err // *apperror.AppError wrapping apperror.ErrValidation
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/filmorate/internal/apperror"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Get returns the singleton validator instance. Thread-safe.
func Get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report JSON names ("releaseDate") instead of Go names ("ReleaseDate")
		// so error messages match what the client actually sent.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Struct validates s and returns nil or an *apperror.AppError describing the
// first failing field.
func Struct(s any) error {
	err := Get().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperror.ValidationFailed("", err.Error())
	}

	fe := fieldErrs[0]
	return apperror.ValidationFailed(fe.Field(), translate(fe))
}

var messages = map[string]string{
	"required": "%s is required",
	"email":    "%s must be a valid email address",
}

var messagesWithParam = map[string]string{
	"max": "%s must be at most %s characters",
	"gt":  "%s must be greater than %s",
	"gte": "%s must be greater than or equal to %s",
}

func translate(fe validator.FieldError) string {
	if tmpl, ok := messages[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, fe.Field())
	}
	if tmpl, ok := messagesWithParam[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}
