package nodematch

import (
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// GonumIndex answers bounded queries with gonum's spatial/kdtree. It keeps
// the k nearest points overall and then drops those beyond the bound, which
// yields the same set as a search restricted to the bound.
type GonumIndex struct {
	tree *kdtree.Tree
	n    int
	dims int
}

// NewGonumIndex builds a gonum KD-tree from flat row-major data with n
// points of dimensionality dims.
func NewGonumIndex(data []float64, n, dims int) *GonumIndex {
	g := &GonumIndex{n: n, dims: dims}
	if n == 0 {
		return g
	}
	pts := make(refPoints, n)
	for i := range pts {
		coords := make([]float64, dims)
		copy(coords, data[i*dims:(i+1)*dims])
		pts[i] = refPoint{coords: coords, index: i}
	}
	g.tree = kdtree.New(pts, false)
	return g
}

func (g *GonumIndex) NumPoints() int   { return g.n }
func (g *GonumIndex) NumFeatures() int { return g.dims }

// QueryBounded finds the k nearest neighbors within bound for each row in
// queryData. See SpatialIndex.
func (g *GonumIndex) QueryBounded(queryData []float64, queryRows, k int, bound float64) ([][]int, [][]float64) {
	checkQueryArgs(queryData, queryRows, k, g.dims, bound)
	if g.n == 0 {
		return sentinelRows(queryRows, k, g.n)
	}

	rbound := euclid.DistToRdist(bound)
	indices := make([][]int, queryRows)
	distances := make([][]float64, queryRows)

	for q := 0; q < queryRows; q++ {
		query := refPoint{coords: queryData[q*g.dims : (q+1)*g.dims], index: -1}
		keep := kdtree.NewNKeeper(k)
		g.tree.NearestSet(keep, query)

		found := make([]kdtree.ComparableDist, 0, len(keep.Heap))
		for _, c := range keep.Heap {
			// The keeper is seeded with a nil sentinel that survives when
			// fewer than k points exist.
			if c.Comparable == nil || !(c.Dist <= rbound) {
				continue
			}
			found = append(found, c)
		}
		sort.Slice(found, func(i, j int) bool { return found[i].Dist < found[j].Dist })

		idx, dist := sentinelRow(k, g.n)
		for i, c := range found {
			idx[i] = c.Comparable.(refPoint).index
			dist[i] = euclid.RdistToDist(c.Dist)
		}
		indices[q] = idx
		distances[q] = dist
	}

	return indices, distances
}

// refPoint is a reference point that remembers its position in the input,
// since the gonum tree reorders its points while building.
type refPoint struct {
	coords []float64
	index  int
}

func (p refPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return p.coords[d] - c.(refPoint).coords[d]
}

func (p refPoint) Dims() int { return len(p.coords) }

// Distance returns the squared Euclidean distance, as gonum expects.
func (p refPoint) Distance(c kdtree.Comparable) float64 {
	return euclid.ReducedDistance(p.coords, c.(refPoint).coords)
}

// refPoints implements kdtree.Interface.
type refPoints []refPoint

func (p refPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p refPoints) Len() int                              { return len(p) }
func (p refPoints) Pivot(d kdtree.Dim) int                { return refPlane{Dim: d, refPoints: p}.Pivot() }
func (p refPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// refPlane orders refPoints along a single dimension for pivoting.
type refPlane struct {
	kdtree.Dim
	refPoints
}

func (p refPlane) Less(i, j int) bool {
	return p.refPoints[i].coords[p.Dim] < p.refPoints[j].coords[p.Dim]
}
func (p refPlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p refPlane) Slice(start, end int) kdtree.SortSlicer {
	p.refPoints = p.refPoints[start:end]
	return p
}
func (p refPlane) Swap(i, j int) {
	p.refPoints[i], p.refPoints[j] = p.refPoints[j], p.refPoints[i]
}
