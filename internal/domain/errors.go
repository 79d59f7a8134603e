package domain

import (
	"errors"
	"fmt"
)

// ErrMissingReferenceFile wraps any failure to open or read one of the
// hand-curated reference datasets. Fatal for the run.
var ErrMissingReferenceFile = errors.New("reference file missing or unreadable")

// ErrCountryNotFound is returned when the boundary collection has no feature
// matching the configured country name. Fatal for the run.
var ErrCountryNotFound = errors.New("country not found in boundary collection")

// InvalidCoordinateError reports a record whose longitude/latitude cells are
// missing, non-numeric, or outside valid ranges. The record is dropped and
// counted; the run continues.
type InvalidCoordinateError struct {
	Column string
	Value  string
	Reason string
}

func (e *InvalidCoordinateError) Error() string {
	return fmt.Sprintf("invalid coordinate in column %q: value %q: %s", e.Column, e.Value, e.Reason)
}

// CRSMismatchError reports two layers declaring different coordinate
// reference systems. This is a configuration defect and aborts the run
// before any spatial predicate is evaluated.
type CRSMismatchError struct {
	Left  string
	Right string
}

func (e *CRSMismatchError) Error() string {
	return fmt.Sprintf("CRS mismatch: %s vs %s", e.Left, e.Right)
}
