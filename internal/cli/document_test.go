package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/beltline/internal/graph"
)

func TestImportExport_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "factory.db")

	stdout, _, err := execute(t, "import", "testdata/balanced.yaml", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Imported 4 node(s) and 3 edge(s)")

	out := filepath.Join(dir, "export.yaml")
	stdout, _, err = execute(t, "export", "--db", db, "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Exported 4 node(s) and 3 edge(s)")

	want, err := graph.LoadDocument("testdata/balanced.yaml")
	require.NoError(t, err)
	got, err := graph.LoadDocument(out)
	require.NoError(t, err)
	assert.Equal(t, want.Document(), got.Document())
}

func TestExport_Stdout(t *testing.T) {
	db := filepath.Join(t.TempDir(), "factory.db")
	_, _, err := execute(t, "import", "testdata/imbalanced.yaml", "--db", db)
	require.NoError(t, err)

	stdout, _, err := execute(t, "export", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "nodes:")
	assert.Contains(t, stdout, "recipeKey: Recipe_IronRod_C")
	assert.Contains(t, stdout, "sourceHandle: right-solid-out-0")
}

func TestExport_JSON(t *testing.T) {
	db := filepath.Join(t.TempDir(), "factory.db")
	_, _, err := execute(t, "import", "testdata/imbalanced.yaml", "--db", db)
	require.NoError(t, err)

	stdout, _, err := execute(t, "export", "--db", db, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   graph.Document `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Nodes, 2)
	require.Len(t, resp.Data.Edges, 1)
	assert.Equal(t, "e1", resp.Data.Edges[0].ID)
}

func TestImport_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(`
nodes:
  - id: a
    kind: item
edges:
  - id: e1
    source: a
    sourceHandle: right-solid-out-0
    target: missing
    targetHandle: left-solid-in-0
`), 0o644))

	tests := []struct {
		name    string
		args    []string
		wantOut string
	}{
		{"missing db", []string{"import", "testdata/balanced.yaml"}, "--db is required"},
		{"missing file", []string{"import", filepath.Join(dir, "none.yaml"), "--db", filepath.Join(dir, "x.db")}, "graph file not found"},
		{"invalid graph", []string{"import", bad, "--db", filepath.Join(dir, "y.db")}, "failed to load graph"},
		{"export without db", []string{"export"}, "--db is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, stdout, tt.wantOut)
		})
	}
}
