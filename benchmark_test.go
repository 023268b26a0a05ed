package nodematch

import (
	"math/rand"
	"testing"
)

func generateBenchRows(n int, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	return randomRows(rng, n, 100)
}

// --- Index construction ---

func benchBuild(b *testing.B, kind IndexKind, n int) {
	b.Helper()
	reference := generateBenchRows(n, 42)
	cfg := DefaultConfig()
	cfg.Index = kind
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := NewIndex(reference, cfg); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBuild_KDTree_10000(b *testing.B)   { benchBuild(b, IndexKDTree, 10000) }
func BenchmarkBuild_BallTree_10000(b *testing.B) { benchBuild(b, IndexBallTree, 10000) }
func BenchmarkBuild_Gonum_10000(b *testing.B)    { benchBuild(b, IndexGonumKDTree, 10000) }

// --- Matching ---

func benchClosestLabels(b *testing.B, kind IndexKind, n int) {
	b.Helper()
	reference := generateBenchRows(n, 42)
	query := generateBenchRows(n, 43)
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i + 1
	}
	cfg := DefaultConfig()
	cfg.Index = kind
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ClosestLabels(reference, ids, query, cfg); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkClosestLabels_KDTree_1000(b *testing.B)   { benchClosestLabels(b, IndexKDTree, 1000) }
func BenchmarkClosestLabels_KDTree_20000(b *testing.B)  { benchClosestLabels(b, IndexKDTree, 20000) }
func BenchmarkClosestLabels_BallTree_20000(b *testing.B) {
	benchClosestLabels(b, IndexBallTree, 20000)
}
func BenchmarkClosestLabels_Gonum_20000(b *testing.B) { benchClosestLabels(b, IndexGonumKDTree, 20000) }
func BenchmarkClosestLabels_Brute_1000(b *testing.B)  { benchClosestLabels(b, IndexBrute, 1000) }
