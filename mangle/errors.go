package mangle

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter is returned when a stage parameter is out of range.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrDimension is returned when the source image has no pixels.
	ErrDimension = errors.New("invalid image dimensions")
)

// ParamError names the parameter and value that failed validation.
type ParamError struct {
	Param  string
	Value  any
	Reason string
	Err    error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Param, e.Value, e.Reason)
}

func (e *ParamError) Unwrap() error {
	return e.Err
}

func invalidParam(param string, value any, reason string) error {
	return &ParamError{Param: param, Value: value, Reason: reason, Err: ErrInvalidParameter}
}

func checkDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return &ParamError{
			Param:  "image size",
			Value:  fmt.Sprintf("%dx%d", width, height),
			Reason: "width and height must be positive",
			Err:    ErrDimension,
		}
	}
	return nil
}
