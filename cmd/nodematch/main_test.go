package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/TrevorS/nodematch"
)

const testJob = `
reference:
  - id: 10
    xyz: [0, 0, 0]
  - id: 20
    xyz: [1, 0, 0]
query:
  - [0.1, 0, 0]
  - [0.9, 0, 0]
`

func writeJob(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRun_Text(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"-job", writeJob(t, testJob)}, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "query=0 label=10 index=0 distance="), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "query=1 label=20 index=1 distance="), lines[1])
}

func TestRun_JSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"-job", writeJob(t, testJob), "-format", "json"}, &out))

	var records []nodeRecord
	require.NoError(t, json.Unmarshal(out.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, 10, records[0].Label)
	assert.Equal(t, 20, records[1].Label)
	assert.InDelta(t, 0.1, records[0].Distance, 1e-12)
	assert.InDelta(t, 0.1, records[1].Distance, 1e-12)
}

func TestRun_Msgpack(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"-job", writeJob(t, testJob), "-format", "msgpack"}, &out))

	var records []nodeRecord
	require.NoError(t, msgpack.Unmarshal(out.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, []int{10, 20}, []int{records[0].Label, records[1].Label})
	assert.Equal(t, 1, records[1].Index)
}

func TestRun_Indices(t *testing.T) {
	var out bytes.Buffer
	args := []string{"-job", writeJob(t, testJob), "-indices", "-k", "3", "-format", "json"}
	require.NoError(t, run(args, &out))

	var records []indexRecord
	require.NoError(t, json.Unmarshal(out.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, []int{0, 1, 2}, records[0].Indices)
	assert.Equal(t, []bool{true, true, false}, records[0].Valid)
	assert.Equal(t, []int{1, 0, 2}, records[1].Indices)
}

func TestRun_IndicesSingleText(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"-job", writeJob(t, testJob), "-indices"}, &out))
	assert.Equal(t, "query=0 indices=[0] valid=[true]\nquery=1 indices=[1] valid=[true]\n", out.String())
}

func TestRun_NoQueries(t *testing.T) {
	path := writeJob(t, "reference:\n  - id: 10\n    xyz: [0, 0, 0]\n")
	for _, args := range [][]string{
		{"-job", path, "-format", "json"},
		{"-job", path, "-format", "json", "-indices"},
	} {
		var out bytes.Buffer
		require.NoError(t, run(args, &out))
		assert.JSONEq(t, "[]", out.String(), "args %v", args)
	}
}

func TestRun_NonFiniteQuery(t *testing.T) {
	path := writeJob(t, testJob+"  - [.nan, 0, 0]\n")
	var out bytes.Buffer
	err := run([]string{"-job", path}, &out)
	require.ErrorIs(t, err, nodematch.ErrNonFiniteCoordinate)
	assert.Empty(t, out.String())
}

func TestRun_UnderTolerance(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"-job", writeJob(t, testJob), "-tolerance", "0.01"}, &out)

	var tolErr *nodematch.ToleranceError
	require.ErrorAs(t, err, &tolErr)
	assert.Equal(t, []int{0, 1}, tolErr.Unmatched)
	assert.Empty(t, out.String())
}

func TestRun_FlagsOverrideJob(t *testing.T) {
	path := writeJob(t, testJob+"tolerance: 0.01\n")

	var out bytes.Buffer
	require.Error(t, run([]string{"-job", path}, &out))

	out.Reset()
	require.NoError(t, run([]string{"-job", path, "-tolerance", "1"}, &out))
}

func TestRun_Errors(t *testing.T) {
	path := writeJob(t, testJob)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad format", []string{"-job", path, "-format", "xml"}, "invalid format"},
		{"missing job", []string{"-job", filepath.Join(t.TempDir(), "missing.yaml")}, "job file not found"},
		{"fractional k", []string{"-job", path, "-k", "2.5"}, "flag -k"},
		{"unknown index", []string{"-job", path, "-index", "octree"}, "unknown Index"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := run(tt.args, &out)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
