package nodematch

// NodeMatch is the reference node matched to one query point.
type NodeMatch struct {
	Label    int     // label of the matched reference point
	Index    int     // position of the matched reference point
	Distance float64 // distance from the query point
}

// Matcher holds a spatial index over one reference set so that several
// query sets can be matched against it. The tolerance is resolved on every
// call; nothing else is carried between calls. A Matcher is safe for
// concurrent use.
type Matcher struct {
	reference [][]float64
	labels    []int
	index     SpatialIndex
	cfg       Config
}

// NewMatcher validates cfg and reference and builds the index. labels is
// positionally aligned with reference and may be nil if only MatchIndices
// will be used.
func NewMatcher(reference [][]float64, labels []int, cfg Config) (*Matcher, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	if err := checkRows("reference", reference); err != nil {
		return nil, err
	}
	return newMatcher(reference, labels, cfg), nil
}

func newMatcher(reference [][]float64, labels []int, cfg Config) *Matcher {
	ref := make([][]float64, len(reference))
	for i, row := range reference {
		ref[i] = append([]float64(nil), row...)
	}
	return &Matcher{
		reference: ref,
		labels:    append([]int(nil), labels...),
		index:     buildIndex(flatten(ref), len(ref), cfg),
		cfg:       cfg,
	}
}

// Index returns the spatial index built over the reference set.
func (m *Matcher) Index() SpatialIndex { return m.index }

// Tolerance returns the tolerance the next call will use.
func (m *Matcher) Tolerance() (float64, error) {
	return ResolveTolerance(m.reference, m.cfg.Tolerance)
}

// MatchIndices queries the k nearest reference points within tolerance for
// every query point. See the package function of the same name.
func (m *Matcher) MatchIndices(query [][]float64) (MatchResult, error) {
	if err := checkRows("query", query); err != nil {
		return nil, err
	}
	tol, err := m.Tolerance()
	if err != nil {
		return nil, err
	}
	return m.query(query, tol), nil
}

func (m *Matcher) query(query [][]float64, tol float64) MatchResult {
	k := m.cfg.Neighbors
	indices, distances := QueryParallel(m.index, flatten(query), len(query), k, tol, m.cfg.Workers)
	return newMatchResult(indices, distances, k, m.index.NumPoints(), tol)
}

// ClosestNodes returns the nearest reference node of every query point.
// See the package function of the same name.
func (m *Matcher) ClosestNodes(query [][]float64) ([]NodeMatch, error) {
	res, err := m.MatchIndices(query)
	if err != nil {
		return nil, err
	}
	return m.resolve(res)
}

// ClosestLabels returns the label of the nearest reference point of every
// query point. See the package function of the same name.
func (m *Matcher) ClosestLabels(query [][]float64) ([]int, error) {
	nodes, err := m.ClosestNodes(query)
	if err != nil {
		return nil, err
	}
	return nodeLabels(nodes), nil
}

// resolve maps the nearest match of every query to its label. It fails
// rather than return a result that is not aligned with the queries.
func (m *Matcher) resolve(res MatchResult) ([]NodeMatch, error) {
	nearest := res.Nearest()

	var unmatched []int
	for q, match := range nearest {
		if !match.Found() {
			unmatched = append(unmatched, q)
		}
	}
	if len(unmatched) > 0 {
		return nil, &ToleranceError{
			Tolerance: res.Tolerance(),
			Matched:   len(nearest) - len(unmatched),
			Queries:   len(nearest),
			Unmatched: unmatched,
		}
	}

	nodes := make([]NodeMatch, len(nearest))
	for q, match := range nearest {
		i, _ := match.Index()
		if i >= len(m.labels) {
			return nil, &LabelError{Query: q, Index: i, Labels: len(m.labels), Tolerance: res.Tolerance()}
		}
		nodes[q] = NodeMatch{Label: m.labels[i], Index: i, Distance: match.Distance()}
	}
	return nodes, nil
}

func nodeLabels(nodes []NodeMatch) []int {
	labels := make([]int, len(nodes))
	for i, n := range nodes {
		labels[i] = n.Label
	}
	return labels
}

// prepare runs every check a one-shot call makes before index work and
// resolves the tolerance.
func prepare(reference, query [][]float64, cfg *Config) (float64, error) {
	applyDefaults(cfg)
	if err := validateConfig(cfg); err != nil {
		return 0, err
	}
	if err := checkPair(reference, query); err != nil {
		return 0, err
	}
	return ResolveTolerance(reference, cfg.Tolerance)
}

// MatchIndices builds a spatial index over reference and retrieves, for
// every query point, the cfg.Neighbors nearest reference points within the
// tolerance. The result is a *Single when cfg.Neighbors is 1 and a
// *Multiple otherwise; empty slots carry the sentinel index len(reference).
func MatchIndices(reference, query [][]float64, cfg Config) (MatchResult, error) {
	tol, err := prepare(reference, query, &cfg)
	if err != nil {
		return nil, err
	}
	return newMatcher(reference, nil, cfg).query(query, tol), nil
}

// ClosestNodes matches every query point to its nearest reference point and
// reports label, reference index and distance. It fails with a
// *ToleranceError if any query point has no reference point within the
// tolerance, and with a *LabelError if a matched index has no label.
func ClosestNodes(reference [][]float64, labels []int, query [][]float64, cfg Config) ([]NodeMatch, error) {
	tol, err := prepare(reference, query, &cfg)
	if err != nil {
		return nil, err
	}
	m := newMatcher(reference, labels, cfg)
	return m.resolve(m.query(query, tol))
}

// ClosestLabels returns, for every query point, the label of the nearest
// reference point. labels is positionally aligned with reference. Failure
// semantics are those of ClosestNodes; a partial result is never returned.
func ClosestLabels(reference [][]float64, labels []int, query [][]float64, cfg Config) ([]int, error) {
	nodes, err := ClosestNodes(reference, labels, query, cfg)
	if err != nil {
		return nil, err
	}
	return nodeLabels(nodes), nil
}
