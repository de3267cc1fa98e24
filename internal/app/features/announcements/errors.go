package announcements

import (
	"errors"

	"github.com/dalemusser/hsms/internal/app/system/jsonutil"
	"github.com/go-playground/validator/v10"
)

// ErrInvalidInput matches every client input error below via errors.Is.
var ErrInvalidInput = errors.New("invalid input")

var (
	// ErrNotFound is returned when no announcement has the given id.
	ErrNotFound = errors.New("announcement not found")

	// ErrNoFields is returned by Update when the body names no field.
	ErrNoFields = inputError("No fields to update")

	// ErrInvalidID is returned when the path id is not a 24-char hex ObjectID.
	ErrInvalidID = inputError("Invalid announcement id")

	// ErrRequiredFieldCleared is returned by Update when message or
	// expiration_date is sent as null or empty.
	ErrRequiredFieldCleared = inputError("Required field cannot be cleared")
)

type inputError string

func (e inputError) Error() string { return string(e) }

func (e inputError) Is(target error) bool { return target == ErrInvalidInput }

// ValidationError carries the fields that failed validation.
type ValidationError struct {
	Detail string
	Fields []jsonutil.FieldError
	cause  error
}

func (e *ValidationError) Error() string { return e.Detail }

func (e *ValidationError) Unwrap() error { return e.cause }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

func requiredFieldCleared(fields ...string) *ValidationError {
	ve := &ValidationError{Detail: ErrRequiredFieldCleared.Error(), cause: ErrRequiredFieldCleared}
	for _, f := range fields {
		ve.Fields = append(ve.Fields, jsonutil.FieldError{Field: f, Tag: "required"})
	}
	return ve
}

func fromValidator(errs validator.ValidationErrors) *ValidationError {
	ve := &ValidationError{Detail: "Validation failed"}
	for _, fe := range errs {
		ve.Fields = append(ve.Fields, jsonutil.FieldError{Field: fe.Field(), Tag: fe.Tag()})
	}
	return ve
}
