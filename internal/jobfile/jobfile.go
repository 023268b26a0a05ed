// Package jobfile loads a matching job (reference nodes, query points and
// matching options) from YAML.
package jobfile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/TrevorS/nodematch"
)

// Node is a labeled reference point.
type Node struct {
	ID  int       `yaml:"id"`
	XYZ []float64 `yaml:"xyz"`
}

// Job is the on-disk description of one matching call.
type Job struct {
	Reference []Node      `yaml:"reference"`
	Query     [][]float64 `yaml:"query"`

	// Optional settings; nil means the library default.
	Tolerance *float64 `yaml:"tolerance,omitempty"`
	K         *float64 `yaml:"k,omitempty"`
	Index     string   `yaml:"index,omitempty"`
	Workers   *int     `yaml:"workers,omitempty"`
}

// Load reads and parses a job file.
func Load(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("job file not found: %s", path)
		}
		return nil, fmt.Errorf("reading job file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a job from YAML. A job without query points is valid and
// matches nothing.
func Parse(data []byte) (*Job, error) {
	var job Job
	if err := yaml.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("parsing job YAML: %w", err)
	}
	return &job, nil
}

// Points splits the reference nodes into coordinates and labels.
func (j *Job) Points() (xyz [][]float64, ids []int) {
	xyz = make([][]float64, len(j.Reference))
	ids = make([]int, len(j.Reference))
	for i, n := range j.Reference {
		xyz[i] = n.XYZ
		ids[i] = n.ID
	}
	return xyz, ids
}

// Config overlays the job's settings on base. A non-integer k is rejected
// with nodematch.ErrInvalidNeighborCount.
func (j *Job) Config(base nodematch.Config) (nodematch.Config, error) {
	cfg := base
	if j.Tolerance != nil {
		cfg.Tolerance = nodematch.Tolerance(*j.Tolerance)
	}
	if j.K != nil {
		k, err := nodematch.NeighborCount(*j.K)
		if err != nil {
			return cfg, fmt.Errorf("job k: %w", err)
		}
		cfg.Neighbors = k
	}
	if j.Index != "" {
		cfg.Index = nodematch.IndexKind(j.Index)
	}
	if j.Workers != nil {
		cfg.Workers = *j.Workers
	}
	return cfg, nil
}
