package nodematch

import (
	"container/heap"
	"fmt"
	"math"
)

// treeNode is one node of an array-form spatial tree.
type treeNode struct {
	IdxStart, IdxEnd int
	IsLeaf           bool
	Radius           float64 // ball tree radius; 0 for KD-tree
}

// SpatialIndex is a read-only index over a reference point set supporting
// bounded k-nearest-neighbor queries. Implementations are safe for
// concurrent queries once built.
type SpatialIndex interface {
	// QueryBounded finds, for each row in queryData, the k nearest
	// reference points whose distance is <= bound. queryData is flat
	// row-major with queryRows rows. Every returned row has exactly k
	// slots ordered by ascending distance; slots left unfilled hold the
	// index NumPoints() and distance +Inf.
	QueryBounded(queryData []float64, queryRows, k int, bound float64) (indices [][]int, distances [][]float64)

	// NumPoints returns the number of reference points (N), which is also
	// the sentinel index.
	NumPoints() int

	// NumFeatures returns the dimensionality of each point.
	NumFeatures() int
}

// euclid is the metric used by every index.
var euclid EuclideanMetric

// NewIndex builds the index selected by cfg.Index over reference.
func NewIndex(reference [][]float64, cfg Config) (SpatialIndex, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	if err := checkRows("reference", reference); err != nil {
		return nil, err
	}
	return buildIndex(flatten(reference), len(reference), cfg), nil
}

// buildIndex builds an index over flat data that has already been validated.
func buildIndex(data []float64, n int, cfg Config) SpatialIndex {
	switch cfg.Index {
	case IndexBallTree:
		return NewBallTree(data, n, cfg.LeafSize)
	case IndexGonumKDTree:
		return NewGonumIndex(data, n, Dims)
	case IndexBrute:
		return NewBruteIndex(data, n, Dims)
	default:
		return NewKDTree(data, n, cfg.LeafSize)
	}
}

// sentinelRows returns queryRows rows of k sentinel slots.
func sentinelRows(queryRows, k, n int) ([][]int, [][]float64) {
	indices := make([][]int, queryRows)
	distances := make([][]float64, queryRows)
	for q := range indices {
		indices[q], distances[q] = sentinelRow(k, n)
	}
	return indices, distances
}

func sentinelRow(k, n int) ([]int, []float64) {
	idx := make([]int, k)
	dist := make([]float64, k)
	for i := range idx {
		idx[i] = n
		dist[i] = math.Inf(1)
	}
	return idx, dist
}

func checkQueryArgs(queryData []float64, queryRows, k, dims int, bound float64) {
	if k < 1 {
		panic(fmt.Sprintf("nodematch: k must be >= 1, got %d", k))
	}
	if len(queryData) != queryRows*dims {
		panic(fmt.Sprintf("nodematch: query data length %d does not match %d rows of %d dims", len(queryData), queryRows, dims))
	}
	if math.IsNaN(bound) || bound < 0 {
		panic(fmt.Sprintf("nodematch: bound must be >= 0, got %v", bound))
	}
}

// --- bounded max-heap for KNN queries ---

type knnItem struct {
	index int
	rdist float64 // reduced distance
}

// knnHeap is a max-heap of knnItem (largest distance on top) used as a
// bounded priority queue for KNN queries.
type knnHeap []knnItem

func (h knnHeap) Len() int            { return len(h) }
func (h knnHeap) Less(i, j int) bool  { return h[i].rdist > h[j].rdist } // max-heap
func (h knnHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *knnHeap) Push(x interface{}) { *h = append(*h, x.(knnItem)) }
func (h *knnHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// offer keeps the candidate if it is within rbound and among the k nearest
// seen so far. A NaN distance is never within rbound.
func (h *knnHeap) offer(index int, rdist float64, k int, rbound float64) {
	if !(rdist <= rbound) {
		return
	}
	if h.Len() < k {
		heap.Push(h, knnItem{index: index, rdist: rdist})
	} else if rdist < (*h)[0].rdist {
		(*h)[0] = knnItem{index: index, rdist: rdist}
		heap.Fix(h, 0)
	}
}

// admits reports whether a subtree whose points are all at least rdist away
// can still contribute a neighbor.
func (h knnHeap) admits(rdist float64, k int, rbound float64) bool {
	if !(rdist <= rbound) {
		return false
	}
	return len(h) < k || rdist < h[0].rdist
}

// drain empties the heap into k ascending slots, padding with the sentinel n.
func (h *knnHeap) drain(k, n int) ([]int, []float64) {
	idx, dist := sentinelRow(k, n)
	for i := h.Len() - 1; i >= 0; i-- {
		item := heap.Pop(h).(knnItem)
		idx[i] = item.index
		dist[i] = euclid.RdistToDist(item.rdist)
	}
	return idx, dist
}
