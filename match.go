package nodematch

import "math"

// Match is an optional reference index. The zero Match means no reference
// point was found within tolerance; its index is not observable.
type Match struct {
	index    int
	distance float64
	ok       bool
}

// Index returns the matched reference index and true, or 0 and false when
// there is no match.
func (m Match) Index() (int, bool) {
	if !m.ok {
		return 0, false
	}
	return m.index, true
}

// Found reports whether m holds a reference index.
func (m Match) Found() bool { return m.ok }

// Distance returns the distance to the matched reference point, or +Inf
// when there is no match.
func (m Match) Distance() float64 {
	if !m.ok {
		return math.Inf(1)
	}
	return m.distance
}

// newMatch converts a raw index slot to a Match. Any index outside [0, n)
// is the sentinel.
func newMatch(index int, distance float64, n int) Match {
	if index < 0 || index >= n {
		return Match{}
	}
	return Match{index: index, distance: distance, ok: true}
}

// Slot addresses one (query, neighbor) cell of a match table.
type Slot struct {
	Query    int // query position
	Neighbor int // neighbor rank, 0 = nearest
}

// MatchResult is the outcome of MatchIndices: *Single when one neighbor per
// query was requested, *Multiple otherwise.
type MatchResult interface {
	// Queries returns the number of query points (M).
	Queries() int
	// Neighbors returns the number of slots per query point (k).
	Neighbors() int
	// Sentinel returns the raw index that marks an empty slot (N).
	Sentinel() int
	// Tolerance returns the tolerance used for the query.
	Tolerance() float64
	// NumValid returns the number of slots holding a match.
	NumValid() int
	// ValidSlots lists the slots holding a match in row-major order.
	ValidSlots() []Slot
	// Nearest returns the nearest match of every query point.
	Nearest() []Match

	matchResult()
}

// Single is the k = 1 result: one slot per query point.
type Single struct {
	// Indices holds the raw reference index per query; Sentinel() where
	// nothing was within tolerance.
	Indices []int
	// Distances holds the distance per query; +Inf where unmatched.
	Distances []float64
	// Valid[q] reports whether Indices[q] < Sentinel().
	Valid []bool
	// Matches is Indices as optional values.
	Matches []Match

	n   int
	tol float64
}

func (*Single) matchResult() {}

func (s *Single) Queries() int       { return len(s.Indices) }
func (s *Single) Neighbors() int     { return 1 }
func (s *Single) Sentinel() int      { return s.n }
func (s *Single) Tolerance() float64 { return s.tol }
func (s *Single) Nearest() []Match   { return s.Matches }

func (s *Single) NumValid() int {
	count := 0
	for _, v := range s.Valid {
		if v {
			count++
		}
	}
	return count
}

func (s *Single) ValidSlots() []Slot {
	slots := make([]Slot, 0, len(s.Valid))
	for q, v := range s.Valid {
		if v {
			slots = append(slots, Slot{Query: q})
		}
	}
	return slots
}

// Multiple is the k > 1 result: an M × k table ordered by ascending
// distance within each row.
type Multiple struct {
	// Indices[q][j] is the raw reference index of the j-th nearest
	// neighbor of query q; Sentinel() for empty slots.
	Indices [][]int
	// Distances[q][j] is the matching distance; +Inf for empty slots.
	Distances [][]float64
	// Valid[q][j] reports whether Indices[q][j] < Sentinel().
	Valid [][]bool
	// Matches is Indices as optional values.
	Matches [][]Match

	k   int
	n   int
	tol float64
}

func (*Multiple) matchResult() {}

func (m *Multiple) Queries() int       { return len(m.Indices) }
func (m *Multiple) Neighbors() int     { return m.k }
func (m *Multiple) Sentinel() int      { return m.n }
func (m *Multiple) Tolerance() float64 { return m.tol }

func (m *Multiple) NumValid() int {
	count := 0
	for _, row := range m.Valid {
		for _, v := range row {
			if v {
				count++
			}
		}
	}
	return count
}

func (m *Multiple) ValidSlots() []Slot {
	slots := make([]Slot, 0, len(m.Valid))
	for q, row := range m.Valid {
		for j, v := range row {
			if v {
				slots = append(slots, Slot{Query: q, Neighbor: j})
			}
		}
	}
	return slots
}

func (m *Multiple) Nearest() []Match {
	nearest := make([]Match, len(m.Matches))
	for q, row := range m.Matches {
		nearest[q] = row[0]
	}
	return nearest
}

// newMatchResult shapes raw index and distance tables by k.
func newMatchResult(indices [][]int, distances [][]float64, k, n int, tol float64) MatchResult {
	if k == 1 {
		s := &Single{
			Indices:   make([]int, len(indices)),
			Distances: make([]float64, len(indices)),
			Valid:     make([]bool, len(indices)),
			Matches:   make([]Match, len(indices)),
			n:         n,
			tol:       tol,
		}
		for q := range indices {
			s.Indices[q] = indices[q][0]
			s.Distances[q] = distances[q][0]
			s.Matches[q] = newMatch(indices[q][0], distances[q][0], n)
			s.Valid[q] = s.Matches[q].Found()
		}
		return s
	}

	m := &Multiple{
		Indices:   indices,
		Distances: distances,
		Valid:     make([][]bool, len(indices)),
		Matches:   make([][]Match, len(indices)),
		k:         k,
		n:         n,
		tol:       tol,
	}
	for q := range indices {
		m.Valid[q] = make([]bool, k)
		m.Matches[q] = make([]Match, k)
		for j := 0; j < k; j++ {
			m.Matches[q][j] = newMatch(indices[q][j], distances[q][j], n)
			m.Valid[q][j] = m.Matches[q][j].Found()
		}
	}
	return m
}
