package nodematch

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Dims is the coordinate dimensionality of every reference and query point.
const Dims = 3

// checkRows verifies that every row of points has exactly Dims finite
// coordinates. name identifies the point set in the error.
func checkRows(name string, points [][]float64) error {
	for i, row := range points {
		if len(row) != Dims {
			return fmt.Errorf("%w: %s[%d] has %d coordinates, want %d",
				ErrDimensionMismatch, name, i, len(row), Dims)
		}
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: %s[%d] = %v", ErrNonFiniteCoordinate, name, i, row)
			}
		}
	}
	return nil
}

// checkPair verifies both point sets before any index work.
func checkPair(reference, query [][]float64) error {
	if err := checkRows("reference", reference); err != nil {
		return err
	}
	return checkRows("query", query)
}

// flatten copies rows into flat row-major storage.
func flatten(points [][]float64) []float64 {
	flat := make([]float64, len(points)*Dims)
	for i, row := range points {
		copy(flat[i*Dims:], row)
	}
	return flat
}

// BoundingBox returns the axis-aligned box enclosing points. The box of an
// empty set is the zero box.
func BoundingBox(points [][]float64) (r3.Box, error) {
	if err := checkRows("reference", points); err != nil {
		return r3.Box{}, err
	}
	if len(points) == 0 {
		return r3.Box{}, nil
	}
	box := r3.Box{
		Min: r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
		Max: r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)},
	}
	for _, row := range points {
		box.Min.X = math.Min(box.Min.X, row[0])
		box.Min.Y = math.Min(box.Min.Y, row[1])
		box.Min.Z = math.Min(box.Min.Z, row[2])
		box.Max.X = math.Max(box.Max.X, row[0])
		box.Max.Y = math.Max(box.Max.Y, row[1])
		box.Max.Z = math.Max(box.Max.Z, row[2])
	}
	return box, nil
}

// vecAt returns row i of flat x,y,z data.
func vecAt(data []float64, i int) r3.Vec {
	return r3.Vec{X: data[i*Dims], Y: data[i*Dims+1], Z: data[i*Dims+2]}
}

// vecs copies the first n rows of flat x,y,z data into vectors.
func vecs(data []float64, n int) []r3.Vec {
	vs := make([]r3.Vec, n)
	for i := range vs {
		vs[i] = vecAt(data, i)
	}
	return vs
}

func identity(n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	return perm
}
