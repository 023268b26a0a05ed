// Command nodematch matches query points to the closest labeled reference
// nodes described in a YAML job file.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/TrevorS/nodematch"
	"github.com/TrevorS/nodematch/internal/jobfile"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		var tolErr *nodematch.ToleranceError
		if errors.As(err, &tolErr) {
			log.Printf("Unmatched query points: %v", tolErr.Unmatched)
		}
		log.Fatalf("Error: %v", err)
	}
}

type options struct {
	job       string
	format    string
	indices   bool
	verbose   bool
	index     string
	workers   int
	k         *float64
	tolerance *float64
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("nodematch", flag.ContinueOnError)
	fs.StringVar(&opts.job, "job", "job.yaml", "Path to YAML job file")
	fs.StringVar(&opts.format, "format", "text", "Output format: text, json or msgpack")
	fs.BoolVar(&opts.indices, "indices", false, "Print the raw neighbor-index table and validity mask instead of labels")
	fs.BoolVar(&opts.verbose, "v", false, "Log progress to stderr")
	fs.StringVar(&opts.index, "index", "", "Spatial index: kdtree, balltree, gonum_kdtree or brute (overrides job)")
	fs.IntVar(&opts.workers, "workers", -1, "Query goroutines, 0 = all CPUs (overrides job)")
	fs.Func("k", "Neighbors per query point (overrides job)", func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		opts.k = &v
		return nil
	})
	fs.Func("tolerance", "Maximum match distance (overrides job; default derived)", func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		opts.tolerance = &v
		return nil
	})
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	switch opts.format {
	case "text", "json", "msgpack":
	default:
		return nil, fmt.Errorf("invalid format: %s (must be text, json or msgpack)", opts.format)
	}
	return opts, nil
}

// config merges library defaults, job settings and flag overrides, in that
// order of precedence from lowest to highest.
func (o *options) config(job *jobfile.Job) (nodematch.Config, error) {
	cfg, err := job.Config(nodematch.DefaultConfig())
	if err != nil {
		return cfg, err
	}
	if o.k != nil {
		k, err := nodematch.NeighborCount(*o.k)
		if err != nil {
			return cfg, fmt.Errorf("flag -k: %w", err)
		}
		cfg.Neighbors = k
	}
	if o.tolerance != nil {
		cfg.Tolerance = nodematch.Tolerance(*o.tolerance)
	}
	if o.index != "" {
		cfg.Index = nodematch.IndexKind(o.index)
	}
	if o.workers >= 0 {
		cfg.Workers = o.workers
	}
	return cfg, nil
}

func run(args []string, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	job, err := jobfile.Load(opts.job)
	if err != nil {
		return err
	}
	cfg, err := opts.config(job)
	if err != nil {
		return err
	}
	xyz, ids := job.Points()

	if opts.verbose {
		log.Printf("Loaded %d reference nodes and %d query points from %s", len(xyz), len(job.Query), opts.job)
	}

	matcher, err := nodematch.NewMatcher(xyz, ids, cfg)
	if err != nil {
		return err
	}
	if opts.verbose {
		if tol, err := matcher.Tolerance(); err == nil {
			log.Printf("Matching with tolerance %g, k=%d", tol, cfg.Neighbors)
		}
	}

	if opts.indices {
		res, err := matcher.MatchIndices(job.Query)
		if err != nil {
			return err
		}
		return writeIndices(stdout, res, opts.format)
	}

	nodes, err := matcher.ClosestNodes(job.Query)
	if err != nil {
		return err
	}
	return writeNodes(stdout, nodes, opts.format)
}

type nodeRecord struct {
	Query    int     `json:"query" msgpack:"query"`
	Label    int     `json:"label" msgpack:"label"`
	Index    int     `json:"index" msgpack:"index"`
	Distance float64 `json:"distance" msgpack:"distance"`
}

// encode writes records in one of the structured formats. It reports false
// for text, which each writer renders itself.
func encode(w io.Writer, records any, format string) (bool, error) {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(records)
	case "msgpack":
		return true, msgpack.NewEncoder(w).Encode(records)
	}
	return false, nil
}

func writeNodes(w io.Writer, nodes []nodematch.NodeMatch, format string) error {
	records := make([]nodeRecord, len(nodes))
	for q, n := range nodes {
		records[q] = nodeRecord{Query: q, Label: n.Label, Index: n.Index, Distance: n.Distance}
	}
	if ok, err := encode(w, records, format); ok {
		return err
	}
	for _, r := range records {
		if _, err := fmt.Fprintf(w, "query=%d label=%d index=%d distance=%g\n", r.Query, r.Label, r.Index, r.Distance); err != nil {
			return err
		}
	}
	return nil
}

type indexRecord struct {
	Query   int    `json:"query" msgpack:"query"`
	Indices []int  `json:"indices" msgpack:"indices"`
	Valid   []bool `json:"valid" msgpack:"valid"`
}

func writeIndices(w io.Writer, res nodematch.MatchResult, format string) error {
	records := make([]indexRecord, 0, res.Queries())
	switch r := res.(type) {
	case *nodematch.Single:
		for q := range r.Indices {
			records = append(records, indexRecord{Query: q, Indices: []int{r.Indices[q]}, Valid: []bool{r.Valid[q]}})
		}
	case *nodematch.Multiple:
		for q := range r.Indices {
			records = append(records, indexRecord{Query: q, Indices: r.Indices[q], Valid: r.Valid[q]})
		}
	}
	if ok, err := encode(w, records, format); ok {
		return err
	}
	for _, r := range records {
		if _, err := fmt.Fprintf(w, "query=%d indices=%v valid=%v\n", r.Query, r.Indices, r.Valid); err != nil {
			return err
		}
	}
	return nil
}
