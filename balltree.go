package nodematch

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// BallTree is an array-form ball tree over 3D reference points. It shares
// the KDTree layout, but each node is bounded by a sphere around the
// centroid of its points instead of a box.
type BallTree struct {
	points    []r3.Vec
	perm      []int
	nodes     []treeNode // Radius is the sphere radius
	centroids []r3.Vec
	leafSize  int
	numNodes  int
}

// NewBallTree builds a ball tree over n points stored flat as x,y,z
// triples.
func NewBallTree(data []float64, n, leafSize int) *BallTree {
	if leafSize < 1 {
		leafSize = 1
	}
	size := kdMaxNodes(n, leafSize)
	t := &BallTree{
		points:    vecs(data, n),
		perm:      identity(n),
		nodes:     make([]treeNode, size),
		centroids: make([]r3.Vec, size),
		leafSize:  leafSize,
	}
	if n > 0 {
		t.build(0, 0, n)
		t.numNodes = kdCountNodes(t.nodes, 0, len(t.nodes))
	}
	return t
}

func (t *BallTree) build(node, start, end int) {
	for node >= len(t.nodes) {
		t.nodes = append(t.nodes, treeNode{})
		t.centroids = append(t.centroids, r3.Vec{})
	}

	members := t.perm[start:end]
	var sum r3.Vec
	for _, i := range members {
		sum = r3.Add(sum, t.points[i])
	}
	center := r3.Scale(1/float64(len(members)), sum)
	var radius float64
	for _, i := range members {
		radius = math.Max(radius, r3.Norm(r3.Sub(t.points[i], center)))
	}
	t.centroids[node] = center

	if end-start <= t.leafSize {
		t.nodes[node] = treeNode{IdxStart: start, IdxEnd: end, IsLeaf: true, Radius: radius}
		return
	}
	t.nodes[node] = treeNode{IdxStart: start, IdxEnd: end, Radius: radius}

	sortAlong(t.points, members, widestAxis(enclose(t.points, members)))
	mid := start + (end-start)/2
	t.build(2*node+1, start, mid)
	t.build(2*node+2, mid, end)
}

func (t *BallTree) NumPoints() int   { return len(t.points) }
func (t *BallTree) NumFeatures() int { return Dims }

// QueryBounded finds the k nearest neighbors within bound for each row in
// queryData. See SpatialIndex.
func (t *BallTree) QueryBounded(queryData []float64, queryRows, k int, bound float64) ([][]int, [][]float64) {
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
		if h.admits(t.sphereGap2(0, p), k, rbound) {
			t.search(0, p, k, rbound, &h)
		}
		indices[q], distances[q] = h.drain(k, n)
	}
	return indices, distances
}

func (t *BallTree) search(node int, p r3.Vec, k int, rbound float64, h *knnHeap) {
	nd := t.nodes[node]
	if nd.IsLeaf {
		for _, ref := range t.perm[nd.IdxStart:nd.IdxEnd] {
			h.offer(ref, r3.Norm2(r3.Sub(p, t.points[ref])), k, rbound)
		}
		return
	}

	near, far := 2*node+1, 2*node+2
	nearGap, farGap := t.sphereGap2(near, p), t.sphereGap2(far, p)
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

// sphereGap2 returns the squared distance from p to the sphere of node,
// 0 when p is inside it.
func (t *BallTree) sphereGap2(node int, p r3.Vec) float64 {
	gap := r3.Norm(r3.Sub(p, t.centroids[node])) - t.nodes[node].Radius
	if gap <= 0 {
		return 0
	}
	return gap * gap
}
