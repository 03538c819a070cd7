// Stylecast - Retail Sales Forecasting Data Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stylecast

// Package validation provides struct validation using go-playground/validator v10.
// It provides a thread-safe singleton validator instance with custom validators
// for pipeline-specific rules.
//
// Custom validators:
//   - season_code: an uppercase alphanumeric season label (e.g. "SS1", "FW24")
//   - linkage: a supported agglomerative linkage name (complete, average, single)
//
// Example usage:
//
//	type ClusteringConfig struct {
//	    TargetClusters int    `validate:"required,min=1"`
//	    Linkage        string `validate:"omitempty,linkage"`
//	}
//
//	if err := validation.ValidateStruct(&cfg); err != nil {
//	    return fmt.Errorf("configuration validation failed: %w", err)
//	}
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// seasonCodePattern matches season labels like "SS1", "FW2", "SS24".
var seasonCodePattern = regexp.MustCompile(`^[A-Z]{2}[0-9]{1,2}$`)

// supportedLinkages lists the agglomerative merge rules the clusterer implements.
var supportedLinkages = map[string]bool{
	"complete": true,
	"average":  true,
	"single":   true,
}

// ValidationError represents a single field validation error.
type ValidationError struct {
	field   string
	tag     string
	param   string
	value   interface{}
	message string
}

// Field returns the struct field name that failed validation.
func (e *ValidationError) Field() string {
	return e.field
}

// Tag returns the validation tag that failed.
func (e *ValidationError) Tag() string {
	return e.tag
}

// Param returns the parameter for the validation tag (e.g., "2" for "len=2").
func (e *ValidationError) Param() string {
	return e.param
}

// Value returns the actual value that failed validation.
func (e *ValidationError) Value() interface{} {
	return e.value
}

// Error returns a human-readable error message.
func (e *ValidationError) Error() string {
	return e.message
}

// ConfigValidationError represents a collection of validation errors.
type ConfigValidationError struct {
	errors []ValidationError
}

// Errors returns the slice of validation errors.
func (ve *ConfigValidationError) Errors() []ValidationError {
	return ve.errors
}

// Error implements the error interface, returning a combined error message.
func (ve *ConfigValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}

	messages := make([]string, 0, len(ve.errors))
	for i := range ve.errors {
		messages = append(messages, ve.errors[i].Error())
	}

	return strings.Join(messages, "; ")
}

// GetValidator returns the singleton validator instance.
// The validator is initialized once with custom validators and options.
// This function is thread-safe.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Registration only fails for an empty tag or nil func, neither of
		// which can happen here.
		_ = validate.RegisterValidation("season_code", validateSeasonCode)
		_ = validate.RegisterValidation("linkage", validateLinkage)
	})

	return validate
}

// validateSeasonCode checks the season label format.
func validateSeasonCode(fl validator.FieldLevel) bool {
	return seasonCodePattern.MatchString(fl.Field().String())
}

// validateLinkage checks that the linkage name is one the clusterer supports.
func validateLinkage(fl validator.FieldLevel) bool {
	return supportedLinkages[fl.Field().String()]
}

// ValidateStruct validates a struct using the singleton validator.
// Returns nil if validation passes, or *ConfigValidationError if it fails.
func ValidateStruct(s interface{}) *ConfigValidationError {
	v := GetValidator()

	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		// Unexpected error type - wrap it
		return &ConfigValidationError{
			errors: []ValidationError{
				{
					field:   "unknown",
					tag:     "unknown",
					message: err.Error(),
				},
			},
		}
	}

	fieldErrors := make([]ValidationError, len(validationErrs))
	for i, fieldErr := range validationErrs {
		fieldErrors[i] = ValidationError{
			field:   fieldErr.Field(),
			tag:     fieldErr.Tag(),
			param:   fieldErr.Param(),
			value:   fieldErr.Value(),
			message: buildMessage(fieldErr),
		}
	}

	return &ConfigValidationError{errors: fieldErrors}
}

// buildMessage produces a human-readable message for a field error.
func buildMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "len":
		return fmt.Sprintf("%s must have exactly %s elements", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "gtfield":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "season_code":
		return fmt.Sprintf("%s must be a season code like SS1 or FW24", fe.Field())
	case "linkage":
		return fmt.Sprintf("%s must be one of: complete, average, single", fe.Field())
	default:
		return fmt.Sprintf("%s failed validation rule %q", fe.Field(), fe.Tag())
	}
}
