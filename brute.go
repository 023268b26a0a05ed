package nodematch

import "github.com/tidwall/tinyqueue"

// BruteIndex scans every reference point for every query. It is O(N·M) and
// exists as the reference the tree indexes are checked against, and for
// very small reference sets where building a tree is not worth it.
type BruteIndex struct {
	data []float64
	n    int
	dims int
}

// NewBruteIndex wraps flat row-major data with n points of dimensionality
// dims.
func NewBruteIndex(data []float64, n, dims int) *BruteIndex {
	dataCopy := make([]float64, len(data))
	copy(dataCopy, data)
	return &BruteIndex{data: dataCopy, n: n, dims: dims}
}

func (b *BruteIndex) NumPoints() int   { return b.n }
func (b *BruteIndex) NumFeatures() int { return b.dims }

type candidate struct {
	index int
	rdist float64
}

// Less orders candidates by distance, then by reference position so that
// ties resolve the same way on every run.
func (c *candidate) Less(other tinyqueue.Item) bool {
	o := other.(*candidate)
	if c.rdist != o.rdist {
		return c.rdist < o.rdist
	}
	return c.index < o.index
}

// QueryBounded finds the k nearest neighbors within bound for each row in
// queryData. See SpatialIndex.
func (b *BruteIndex) QueryBounded(queryData []float64, queryRows, k int, bound float64) ([][]int, [][]float64) {
	checkQueryArgs(queryData, queryRows, k, b.dims, bound)

	rbound := euclid.DistToRdist(bound)
	indices := make([][]int, queryRows)
	distances := make([][]float64, queryRows)

	for q := 0; q < queryRows; q++ {
		query := queryData[q*b.dims : (q+1)*b.dims]
		queue := tinyqueue.New(nil)
		for i := 0; i < b.n; i++ {
			rd := euclid.ReducedDistance(query, b.data[i*b.dims:(i+1)*b.dims])
			if rd <= rbound {
				queue.Push(&candidate{index: i, rdist: rd})
			}
		}

		idx, dist := sentinelRow(k, b.n)
		for slot := 0; slot < k && queue.Len() > 0; slot++ {
			c := queue.Pop().(*candidate)
			idx[slot] = c.index
			dist[slot] = euclid.RdistToDist(c.rdist)
		}
		indices[q] = idx
		distances[q] = dist
	}

	return indices, distances
}
