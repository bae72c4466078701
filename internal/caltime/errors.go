package caltime

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFormat is matched by every InvalidFormatError
	ErrInvalidFormat = errors.New("invalid time format")

	// ErrNotSupported is returned for valid ISO 8601 forms that are not implemented
	ErrNotSupported = errors.New("time format not supported")

	// ErrBeforeEpoch is returned when a value would fall before 1970-01-01
	ErrBeforeEpoch = errors.New("time before 1970-01-01 not supported")

	// ErrOutOfRange is matched by every RangeError
	ErrOutOfRange = errors.New("value out of range")
)

// InvalidFormatError reports malformed time text
type InvalidFormatError struct {
	Problem string
	Text    string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Problem, e.Text)
}

func (e *InvalidFormatError) Is(target error) bool {
	return target == ErrInvalidFormat
}

func invalidFormat(problem, text string) error {
	return &InvalidFormatError{Problem: problem, Text: text}
}

// RangeError reports a field value outside its valid range
type RangeError struct {
	Field string
	Value int64
	Min   int64
	Max   int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %d out of range [%d, %d]", e.Field, e.Value, e.Min, e.Max)
}

func (e *RangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

func checkRange(field string, value, min, max int64) error {
	if value < min || value > max {
		return &RangeError{Field: field, Value: value, Min: min, Max: max}
	}
	return nil
}
