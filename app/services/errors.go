package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Rakhulsr/go-blog/app/helpers"
	"github.com/go-playground/validator/v10"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrPermissionDenied = errors.New("permission denied")
	ErrConflict         = errors.New("conflict")
)

var ErrInvalidCredentials = fmt.Errorf("%w: email or password is wrong", ErrValidation)

// ValidationError carries per-field messages for re-rendering a form.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, " "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func validate(v *validator.Validate, s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return &ValidationError{Fields: helpers.FormatValidationErrors(verrs)}
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

func fieldError(field, message string) error {
	return &ValidationError{Fields: map[string]string{field: message}}
}
