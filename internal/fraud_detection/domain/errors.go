package domain

import (
	"errors"
	"strings"
)

var (
	ErrNodeNotFound      = errors.New("node not found")
	ErrStoreUnavailable  = errors.New("graph store unavailable")
	ErrInvalidThreshold  = errors.New("invalid detection threshold")
	ErrRunNotFound       = errors.New("detection run not found")
	ErrRunInProgress     = errors.New("a detection run is already in progress")
	ErrInvalidStatus     = errors.New("invalid run status")
	ErrAssessmentMissing = errors.New("risk assessment not found")
	ErrValidation        = errors.New("validation failed")
)

// ValidationError carries every problem found in a request.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
