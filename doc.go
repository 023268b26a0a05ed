// Package nodematch finds, for each point of a query set, the closest
// labeled point of a reference set in 3D space, within a maximum spherical
// distance tolerance. This is the closest-node (node equivalencing) step used
// when merging or comparing two discretizations of the same geometry.
//
// Basic usage:
//
//	cfg := nodematch.DefaultConfig()
//	cfg.Tolerance = nodematch.Tolerance(1e-3)
//	ids, err := nodematch.ClosestLabels(refXYZ, refIDs, queryXYZ, cfg)
//	// ids[i] is the label of the reference point nearest to queryXYZ[i]
//
// If any query point has no reference point within tolerance, ClosestLabels
// fails with a *ToleranceError naming the tolerance that was used. Leaving
// Config.Tolerance nil derives it as twice the bounding-box diagonal of the
// reference set.
//
// For several candidates per query point, or for custom filtering, use
// MatchIndices. It returns a *Single result when Config.Neighbors is 1 and a
// *Multiple result otherwise:
//
//	res, err := nodematch.MatchIndices(refXYZ, queryXYZ, cfg)
//	switch r := res.(type) {
//	case *nodematch.Single:
//		// r.Indices[q], r.Valid[q]
//	case *nodematch.Multiple:
//		// r.Indices[q][slot], r.Valid[q][slot]
//	}
//
// Raw indices follow the scipy cKDTree convention: a slot with no reference
// point within tolerance holds the index N (the reference count). The Match
// values carried alongside never expose that sentinel as an index.
//
// # Index selection
//
// Config.Index chooses the spatial index. The default array-form KD-tree is
// the right choice for mesh-sized inputs:
//
//	cfg.Index = nodematch.IndexKDTree      // array-form KD-tree (default)
//	cfg.Index = nodematch.IndexBallTree    // array-form ball tree
//	cfg.Index = nodematch.IndexGonumKDTree // gonum spatial/kdtree
//	cfg.Index = nodematch.IndexBrute       // exhaustive scan
package nodematch
