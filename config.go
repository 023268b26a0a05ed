package nodematch

import (
	"fmt"
	"math"
	"runtime"
)

// IndexKind selects the spatial index built over the reference points.
type IndexKind string

const (
	IndexKDTree      IndexKind = "kdtree"
	IndexBallTree    IndexKind = "balltree"
	IndexGonumKDTree IndexKind = "gonum_kdtree"
	IndexBrute       IndexKind = "brute"
)

// Config controls a matching call.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// Neighbors is the number of nearest reference points retrieved per
	// query point (k). 1 yields a *Single result, anything larger a
	// *Multiple. Must be >= 1. Default: 1.
	Neighbors int

	// Tolerance is the maximum Euclidean distance for a reference point to
	// count as a match. nil derives it from the reference set as twice its
	// bounding-box diagonal; a non-nil value is always used as given.
	// Must be >= 0 when set. +Inf disables the bound.
	Tolerance *float64

	// Index selects the spatial index. Default: "kdtree".
	Index IndexKind

	// LeafSize is the maximum number of points in a tree leaf node.
	// Ignored by the brute and gonum indexes. Default: 40.
	LeafSize int

	// Workers controls the number of goroutines used for the query phase.
	// 0 means runtime.NumCPU(); 1 queries sequentially.
	Workers int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Neighbors: 1,
		Index:     IndexKDTree,
		LeafSize:  40,
	}
}

// Tolerance returns a pointer to v, for use as Config.Tolerance.
func Tolerance(v float64) *float64 { return &v }

// MaxNeighbors is the largest neighbor count NeighborCount accepts. Every
// query row allocates k slots, so larger values cannot be served.
const MaxNeighbors = math.MaxInt32

// NeighborCount converts a decoded numeric value, such as a YAML or JSON
// number, to a neighbor count. Fractional values are rejected rather than
// truncated.
func NeighborCount(v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) || v < 1 {
		return 0, fmt.Errorf("%w: got %v", ErrInvalidNeighborCount, v)
	}
	if v > MaxNeighbors {
		return 0, fmt.Errorf("%w: %v is too large (max %d)", ErrInvalidNeighborCount, v, MaxNeighbors)
	}
	return int(v), nil
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	if cfg.Neighbors < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidNeighborCount, cfg.Neighbors)
	}
	if cfg.Tolerance != nil {
		if err := checkTolerance(*cfg.Tolerance); err != nil {
			return err
		}
	}
	switch cfg.Index {
	case IndexKDTree, IndexBallTree, IndexGonumKDTree, IndexBrute:
		// valid
	default:
		return fmt.Errorf("%w: unknown Index %q", ErrInvalidConfig, cfg.Index)
	}
	if cfg.LeafSize < 1 {
		return fmt.Errorf("%w: LeafSize must be >= 1, got %d", ErrInvalidConfig, cfg.LeafSize)
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("%w: Workers must be >= 0, got %d", ErrInvalidConfig, cfg.Workers)
	}
	return nil
}

// applyDefaults fills in zero-valued config fields with their defaults.
// Neighbors is left alone so that an unset k fails validation.
func applyDefaults(cfg *Config) {
	if cfg.Index == "" {
		cfg.Index = IndexKDTree
	}
	if cfg.LeafSize == 0 {
		cfg.LeafSize = 40
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
}

func checkTolerance(tol float64) error {
	if math.IsNaN(tol) || tol < 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidTolerance, tol)
	}
	return nil
}
