package nodematch

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
)

// KDTree is an array-form KD-tree over 3D reference points. Node i has
// children 2i+1 and 2i+2; each node covers perm[IdxStart:IdxEnd] and keeps
// the bounding box of those points for pruning.
type KDTree struct {
	points   []r3.Vec   // reference points in input order
	perm     []int      // tree-order position → reference index
	nodes    []treeNode // one entry per tree node
	boxes    []r3.Box   // bounding box per node
	leafSize int
	numNodes int
}

// NewKDTree builds a KD-tree over n points stored flat as x,y,z triples.
// n may be 0, in which case every query returns sentinels only.
func NewKDTree(data []float64, n, leafSize int) *KDTree {
	if leafSize < 1 {
		leafSize = 1
	}
	size := kdMaxNodes(n, leafSize)
	t := &KDTree{
		points:   vecs(data, n),
		perm:     identity(n),
		nodes:    make([]treeNode, size),
		boxes:    make([]r3.Box, size),
		leafSize: leafSize,
	}
	if n > 0 {
		t.build(0, 0, n)
		t.numNodes = kdCountNodes(t.nodes, 0, len(t.nodes))
	}
	return t
}

// kdMaxNodes returns an upper bound on the number of nodes of an array-form
// binary tree over n points.
func kdMaxNodes(n, leafSize int) int {
	if n == 0 {
		return 1
	}
	leaves := (n + leafSize - 1) / leafSize
	depth := 0
	for v := 1; v < leaves; v *= 2 {
		depth++
	}
	return (1 << (depth + 1)) + 1
}

// kdCountNodes counts the nodes reachable from nodeID that were built.
func kdCountNodes(nodes []treeNode, nodeID, limit int) int {
	if nodeID >= limit {
		return 0
	}
	nd := nodes[nodeID]
	if nodeID != 0 && nd.IdxStart == 0 && nd.IdxEnd == 0 {
		return 0
	}
	if nd.IsLeaf {
		return 1
	}
	return 1 + kdCountNodes(nodes, 2*nodeID+1, limit) + kdCountNodes(nodes, 2*nodeID+2, limit)
}

func (t *KDTree) build(node, start, end int) {
	for node >= len(t.nodes) {
		t.nodes = append(t.nodes, treeNode{})
		t.boxes = append(t.boxes, r3.Box{})
	}

	box := enclose(t.points, t.perm[start:end])
	t.boxes[node] = box
	if end-start <= t.leafSize {
		t.nodes[node] = treeNode{IdxStart: start, IdxEnd: end, IsLeaf: true}
		return
	}

	sortAlong(t.points, t.perm[start:end], widestAxis(box))
	mid := start + (end-start)/2
	t.nodes[node] = treeNode{IdxStart: start, IdxEnd: end}
	t.build(2*node+1, start, mid)
	t.build(2*node+2, mid, end)
}

func (t *KDTree) NumPoints() int   { return len(t.points) }
func (t *KDTree) NumFeatures() int { return Dims }

// QueryBounded finds the k nearest neighbors within bound for each row in
// queryData. See SpatialIndex.
func (t *KDTree) QueryBounded(queryData []float64, queryRows, k int, bound float64) ([][]int, [][]float64) {
	checkQueryArgs(queryData, queryRows, k, Dims, bound)
	n := len(t.points)
	if n == 0 {
		return sentinelRows(queryRows, k, n)
	}

	rbound := euclid.DistToRdist(bound)
	indices := make([][]int, queryRows)
	distances := make([][]float64, queryRows)
	h := make(knnHeap, 0, k)

	for q := range queryRows {
		p := vecAt(queryData, q)
		h = h[:0]
		if h.admits(boxGap2(t.boxes[0], p), k, rbound) {
			t.search(0, p, k, rbound, &h)
		}
		indices[q], distances[q] = h.drain(k, n)
	}
	return indices, distances
}

// search visits the nearer child first and skips any subtree whose box lies
// beyond rbound or beyond the current k-th candidate.
func (t *KDTree) search(node int, p r3.Vec, k int, rbound float64, h *knnHeap) {
	nd := t.nodes[node]
	if nd.IsLeaf {
		for _, ref := range t.perm[nd.IdxStart:nd.IdxEnd] {
			h.offer(ref, r3.Norm2(r3.Sub(p, t.points[ref])), k, rbound)
		}
		return
	}

	near, far := 2*node+1, 2*node+2
	nearGap, farGap := boxGap2(t.boxes[near], p), boxGap2(t.boxes[far], p)
	if farGap < nearGap {
		near, far = far, near
		nearGap, farGap = farGap, nearGap
	}
	if h.admits(nearGap, k, rbound) {
		t.search(near, p, k, rbound, h)
	}
	if h.admits(farGap, k, rbound) {
		t.search(far, p, k, rbound, h)
	}
}

// boxGap2 returns the squared distance from p to the nearest point of b, a
// lower bound on the squared distance to any point inside it.
func boxGap2(b r3.Box, p r3.Vec) float64 {
	return r3.Norm2(r3.Vec{
		X: axisGap(p.X, b.Min.X, b.Max.X),
		Y: axisGap(p.Y, b.Min.Y, b.Max.Y),
		Z: axisGap(p.Z, b.Min.Z, b.Max.Z),
	})
}

func axisGap(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo - v
	case v > hi:
		return v - hi
	}
	return 0
}

// enclose returns the bounding box of the points selected by perm.
func enclose(points []r3.Vec, perm []int) r3.Box {
	box := r3.Box{
		Min: r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
		Max: r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)},
	}
	for _, i := range perm {
		box = extend(box, points[i])
	}
	return box
}

func extend(box r3.Box, p r3.Vec) r3.Box {
	box.Min.X, box.Max.X = math.Min(box.Min.X, p.X), math.Max(box.Max.X, p.X)
	box.Min.Y, box.Max.Y = math.Min(box.Min.Y, p.Y), math.Max(box.Max.Y, p.Y)
	box.Min.Z, box.Max.Z = math.Min(box.Min.Z, p.Z), math.Max(box.Max.Z, p.Z)
	return box
}

// widestAxis returns the axis (0=X, 1=Y, 2=Z) along which box is longest.
// Ties go to the lower axis.
func widestAxis(box r3.Box) int {
	ext := r3.Sub(box.Max, box.Min)
	axis, width := 0, ext.X
	if ext.Y > width {
		axis, width = 1, ext.Y
	}
	if ext.Z > width {
		axis = 2
	}
	return axis
}

func coord(p r3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return p.X
	case 1:
		return p.Y
	}
	return p.Z
}

// sortAlong orders perm by coordinate along axis. The sort is stable so
// that equal coordinates keep reference order.
func sortAlong(points []r3.Vec, perm []int, axis int) {
	slices.SortStableFunc(perm, func(a, b int) int {
		return cmp.Compare(coord(points[a], axis), coord(points[b], axis))
	})
}
