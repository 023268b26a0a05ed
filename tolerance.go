package nodematch

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// DeriveTolerance returns twice the bounding-box diagonal of reference:
// generous enough to pair every query point with something when the two
// sets describe the same geometry. An empty reference set derives 0.
func DeriveTolerance(reference [][]float64) (float64, error) {
	box, err := BoundingBox(reference)
	if err != nil {
		return 0, err
	}
	tol := 2 * r3.Norm(r3.Sub(box.Max, box.Min))
	if math.IsInf(tol, 0) || math.IsNaN(tol) {
		return 0, fmt.Errorf("%w: derived tolerance %v overflows", ErrInvalidTolerance, tol)
	}
	return tol, nil
}

// ResolveTolerance returns *override when it is set and DeriveTolerance
// otherwise. The derived value is recomputed on every call.
func ResolveTolerance(reference [][]float64, override *float64) (float64, error) {
	if override != nil {
		if err := checkTolerance(*override); err != nil {
			return 0, err
		}
		if err := checkRows("reference", reference); err != nil {
			return 0, err
		}
		return *override, nil
	}
	return DeriveTolerance(reference)
}
