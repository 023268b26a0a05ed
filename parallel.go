package nodematch

import "sync"

// minRowsPerWorker keeps small query sets on a single goroutine, where the
// fan-out costs more than it saves.
const minRowsPerWorker = 256

// QueryParallel runs idx.QueryBounded over queryData using multiple
// goroutines. Each worker handles a contiguous range of query rows; the
// index is read-only, so the result is identical to a single QueryBounded
// call. Falls back to one sequential call if numWorkers <= 1 or the query
// set is small.
func QueryParallel(idx SpatialIndex, queryData []float64, queryRows, k int, bound float64, numWorkers int) ([][]int, [][]float64) {
	if numWorkers > queryRows/minRowsPerWorker {
		numWorkers = queryRows / minRowsPerWorker
	}
	if numWorkers <= 1 {
		return idx.QueryBounded(queryData, queryRows, k, bound)
	}

	dims := idx.NumFeatures()
	indices := make([][]int, queryRows)
	distances := make([][]float64, queryRows)

	// Row ranges don't overlap, so no synchronization is needed for writes.
	var wg sync.WaitGroup
	rowsPerWorker := (queryRows + numWorkers - 1) / numWorkers

	for w := 0; w < numWorkers; w++ {
		startRow := w * rowsPerWorker
		endRow := startRow + rowsPerWorker
		if endRow > queryRows {
			endRow = queryRows
		}
		if startRow >= queryRows {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			idxPart, distPart := idx.QueryBounded(queryData[start*dims:end*dims], end-start, k, bound)
			copy(indices[start:end], idxPart)
			copy(distances[start:end], distPart)
		}(startRow, endRow)
	}

	wg.Wait()
	return indices, distances
}
