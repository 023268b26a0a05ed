package nodematch

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidNeighborCount reports a neighbor count that is not a
	// positive integer.
	ErrInvalidNeighborCount = errors.New("nodematch: neighbor count must be a positive integer")

	// ErrInvalidTolerance reports a negative or NaN tolerance.
	ErrInvalidTolerance = errors.New("nodematch: tolerance must be a non-negative number")

	// ErrInvalidConfig reports any other unusable Config field.
	ErrInvalidConfig = errors.New("nodematch: invalid config")

	// ErrDimensionMismatch reports point rows that are not 3D, or reference
	// and query sets of different dimensionality.
	ErrDimensionMismatch = errors.New("nodematch: coordinate dimensionality mismatch")

	// ErrNonFiniteCoordinate reports a NaN or infinite point coordinate.
	ErrNonFiniteCoordinate = errors.New("nodematch: coordinate is not finite")

	// ErrUnderTolerance is wrapped by *ToleranceError.
	ErrUnderTolerance = errors.New("nodematch: query points unmatched within tolerance")

	// ErrLabelOutOfRange is wrapped by *LabelError.
	ErrLabelOutOfRange = errors.New("nodematch: matched index outside label array")
)

// ToleranceError is returned when at least one query point has no reference
// point within the tolerance. Retrying with a larger Tolerance is the only
// remedy; nothing is retried automatically.
type ToleranceError struct {
	Tolerance float64 // tolerance actually used for the query
	Matched   int     // query points with a match
	Queries   int     // total query points
	Unmatched []int   // positions of unmatched query points, ascending
}

func (e *ToleranceError) Error() string {
	return fmt.Sprintf("nodematch: increase the tolerance; tol=%g (%d of %d query points matched)",
		e.Tolerance, e.Matched, e.Queries)
}

func (e *ToleranceError) Unwrap() error { return ErrUnderTolerance }

// LabelError is returned when a match points past the end of the label
// array, typically because labels is shorter than the reference set.
type LabelError struct {
	Query     int     // query position
	Index     int     // reference index that could not be mapped
	Labels    int     // len(labels)
	Tolerance float64 // tolerance used for the query
}

func (e *LabelError) Error() string {
	return fmt.Sprintf("nodematch: query %d matched reference index %d but only %d labels given; tol=%g",
		e.Query, e.Index, e.Labels, e.Tolerance)
}

func (e *LabelError) Unwrap() error { return ErrLabelOutOfRange }
