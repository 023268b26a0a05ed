package nodematch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/kdtree"
)

func TestGonumIndex_KeepsOriginalPositions(t *testing.T) {
	// Deliberately unsorted so the tree build reorders points.
	data := []float64{
		9, 0, 0,
		1, 0, 0,
		5, 0, 0,
		3, 0, 0,
		7, 0, 0,
	}
	g := NewGonumIndex(data, 5, Dims)

	indices, distances := g.QueryBounded([]float64{3.2, 0, 0}, 1, 3, math.Inf(1))
	// x=3 (input position 3), then x=5 (2), then x=1 (1).
	assert.Equal(t, []int{3, 2, 1}, indices[0])
	assert.InDelta(t, 0.2, distances[0][0], floatTol)
	assert.InDelta(t, 1.8, distances[0][1], floatTol)
	assert.InDelta(t, 2.2, distances[0][2], floatTol)
}

func TestGonumIndex_FewerPointsThanK(t *testing.T) {
	g := NewGonumIndex([]float64{0, 0, 0, 1, 0, 0}, 2, Dims)

	indices, distances := g.QueryBounded([]float64{0, 0, 0}, 1, 4, math.Inf(1))
	require.Len(t, indices[0], 4)
	assert.Equal(t, []int{0, 1, 2, 2}, indices[0])
	assert.True(t, math.IsInf(distances[0][3], 1))
}

func TestGonumIndex_BoundFiltersNeighbors(t *testing.T) {
	g := NewGonumIndex([]float64{0, 0, 0, 1, 0, 0, 4, 0, 0}, 3, Dims)

	indices, _ := g.QueryBounded([]float64{0, 0, 0}, 1, 3, 1)
	assert.Equal(t, []int{0, 1, 3}, indices[0])
}

func TestRefPoint_Comparable(t *testing.T) {
	a := refPoint{coords: []float64{1, 2, 3}, index: 0}
	b := refPoint{coords: []float64{4, 6, 3}, index: 1}

	var _ kdtree.Comparable = a
	var _ kdtree.Interface = refPoints{a, b}

	assert.Equal(t, 3, a.Dims())
	assert.Equal(t, -3.0, a.Compare(b, 0))
	assert.Equal(t, 25.0, a.Distance(b))
}
