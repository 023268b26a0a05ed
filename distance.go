package nodematch

import "math"

// EuclideanMetric computes the Euclidean (L2) distance. The trees prune in
// reduced-distance space (squared Euclidean) and only take the root of
// distances they report.
type EuclideanMetric struct{}

func (EuclideanMetric) ReducedDistance(a, b []float64) float64 {
	return euclideanSumOfSquares(a, b)
}

// DistToRdist converts a distance to reduced-distance space.
func (EuclideanMetric) DistToRdist(d float64) float64 {
	if math.IsInf(d, 1) {
		return d
	}
	return d * d
}

// RdistToDist converts a reduced distance back to a distance.
func (EuclideanMetric) RdistToDist(rd float64) float64 {
	return math.Sqrt(rd)
}

func euclideanSumOfSquares(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
