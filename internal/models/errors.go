package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for request decoding
var (
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrInvalidDataURI   = errors.New("invalid image data URI")
	ErrImageTooLarge    = errors.New("image exceeds upload limit")
)

// ValidationError reports a missing or unusable request field.
// It is never retried and no pipeline stage runs after it.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("missing required field: %s", e.Field)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
