package jobfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TrevorS/nodematch"
)

func writeJob(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const basicJob = `
reference:
  - id: 10
    xyz: [0, 0, 0]
  - id: 20
    xyz: [1, 0, 0]
query:
  - [0.1, 0, 0]
  - [0.9, 0, 0]
`

func TestLoad(t *testing.T) {
	job, err := Load(writeJob(t, basicJob))
	require.NoError(t, err)

	require.Len(t, job.Reference, 2)
	assert.Equal(t, 20, job.Reference[1].ID)
	assert.Equal(t, []float64{1, 0, 0}, job.Reference[1].XYZ)
	assert.Len(t, job.Query, 2)
	assert.Nil(t, job.Tolerance)
	assert.Nil(t, job.K)
	assert.Empty(t, job.Index)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job file not found")
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("reference: [unterminated"))
	assert.ErrorContains(t, err, "parsing job YAML")
}

func TestParse_NoQueries(t *testing.T) {
	job, err := Parse([]byte("reference:\n  - id: 1\n    xyz: [0, 0, 0]\n"))
	require.NoError(t, err)
	assert.Empty(t, job.Query)
	assert.Len(t, job.Reference, 1)
}

func TestPoints(t *testing.T) {
	job, err := Parse([]byte(basicJob))
	require.NoError(t, err)

	xyz, ids := job.Points()
	assert.Equal(t, [][]float64{{0, 0, 0}, {1, 0, 0}}, xyz)
	assert.Equal(t, []int{10, 20}, ids)
}

func TestConfig_Overlay(t *testing.T) {
	job, err := Parse([]byte(basicJob + `
tolerance: 0.5
k: 3
index: balltree
workers: 2
`))
	require.NoError(t, err)

	cfg, err := job.Config(nodematch.DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, cfg.Tolerance)
	assert.Equal(t, 0.5, *cfg.Tolerance)
	assert.Equal(t, 3, cfg.Neighbors)
	assert.Equal(t, nodematch.IndexBallTree, cfg.Index)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 40, cfg.LeafSize, "unset fields keep the base value")
}

func TestConfig_KeepsBaseWhenUnset(t *testing.T) {
	job, err := Parse([]byte(basicJob))
	require.NoError(t, err)

	base := nodematch.DefaultConfig()
	cfg, err := job.Config(base)
	require.NoError(t, err)
	assert.Equal(t, base, cfg)
}

func TestConfig_FractionalK(t *testing.T) {
	job, err := Parse([]byte(basicJob + "k: 1.5\n"))
	require.NoError(t, err)

	_, err = job.Config(nodematch.DefaultConfig())
	assert.ErrorIs(t, err, nodematch.ErrInvalidNeighborCount)
	assert.ErrorContains(t, err, "job k")
}

func TestConfig_ExplicitZeroTolerance(t *testing.T) {
	job, err := Parse([]byte(basicJob + "tolerance: 0\n"))
	require.NoError(t, err)

	cfg, err := job.Config(nodematch.DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, cfg.Tolerance)
	assert.Zero(t, *cfg.Tolerance)
}
