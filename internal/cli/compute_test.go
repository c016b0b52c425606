package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/beltline/internal/ir"
	"github.com/roach88/beltline/internal/store"
	"github.com/roach88/beltline/internal/testutil"
)

type computeResponse struct {
	Status string         `json:"status"`
	RunID  string         `json:"run_id"`
	Data   ComputeSummary `json:"data"`
	Error  *CLIError      `json:"error"`
}

func computeJSON(t *testing.T, strict bool, args ...string) (computeResponse, error) {
	t.Helper()
	cmd := &cobra.Command{}
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})

	opts := &ComputeOptions{
		RootOptions: &RootOptions{Format: "json", Reference: testRef},
		RunIDs:      testutil.NewFixedRunID("run-cli"),
	}
	err := runCompute(context.Background(), opts, args, cmd, strict)

	var resp computeResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp), out.String())
	return resp, err
}

func TestCompute_BalancedText(t *testing.T) {
	stdout, _, err := execute(t, "compute", "--ref", testRef, "testdata/balanced.yaml")
	require.NoError(t, err)

	assert.Contains(t, stdout, "4 node(s), 3 edge(s)")
	assert.Contains(t, stdout, "ingots -> split  e1  Iron Ingot 30/min")
	assert.Contains(t, stdout, "split -> rods-a  e2  Iron Ingot 15/min")
	assert.Contains(t, stdout, "All edges balanced")
	assert.NotContains(t, stdout, "Diagnostics:")

	assert.Contains(t, stdout, "Flows:")
	assert.Contains(t, stdout, "  ingots right-solid-out-0 Desc_IronIngot_C=30/min")
	assert.Contains(t, stdout, "  split left-solid-in-0 Desc_IronIngot_C=-30/min")
	assert.Contains(t, stdout, "  split top-solid-out-0 Desc_IronIngot_C=15/min")
	assert.Contains(t, stdout, "  rods-a right-solid-out-0 Desc_IronRod_C=15/min")
}

func TestCompute_JSON(t *testing.T) {
	resp, err := computeJSON(t, false, "testdata/balanced.yaml")
	require.NoError(t, err)

	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "run-cli", resp.RunID)
	assert.Equal(t, "run-cli", resp.Data.RunID)
	assert.Equal(t, 4, resp.Data.Nodes)
	require.Len(t, resp.Data.Edges, 3)
	assert.Equal(t, "e1", resp.Data.Edges[0].ID)
	assert.Equal(t, ir.EdgeStateOK, resp.Data.Edges[0].State)
	require.Len(t, resp.Data.Edges[0].Items, 1)
	assert.Equal(t, int64(30000), resp.Data.Edges[0].Items[0].Rate)
	assert.Empty(t, resp.Data.Diagnostics)
	assert.Zero(t, resp.Data.Unbalanced)

	require.Len(t, resp.Data.Flows, 4)
	split := resp.Data.Flows["split"]
	assert.Equal(t, map[string]int64{ir.AnyKey: 0}, split.Expected["top-solid-out-0"])
	assert.Equal(t, map[string]int64{"Desc_IronIngot_C": 15000}, split.Actual["top-solid-out-0"])
	assert.Equal(t, map[string]int64{"Desc_IronIngot_C": -30000}, split.Actual["left-solid-in-0"])
	assert.Equal(t, map[string]int64{"Desc_IronIngot_C": -15000}, resp.Data.Flows["rods-b"].Expected["left-solid-in-0"])
	assert.Nil(t, resp.Data.Flows["rods-b"].Actual)
}

func TestCompute_ImbalanceIsNotAFailure(t *testing.T) {
	resp, err := computeJSON(t, false, "testdata/imbalanced.yaml")
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Unbalanced)
	assert.Equal(t, "Iron Ingot +15/min over", resp.Data.Edges[0].Label)
}

func TestCheck_Imbalanced(t *testing.T) {
	resp, err := computeJSON(t, true, "testdata/imbalanced.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeUnbalanced, resp.Error.Code)
	assert.Equal(t, "1 edge(s) unbalanced, 0 error diagnostic(s)", resp.Error.Message)
	assert.Equal(t, ir.EdgeStateWarning, resp.Data.Edges[0].State)
}

func TestCheck_Text(t *testing.T) {
	stdout, _, err := execute(t, "check", "--ref", testRef, "testdata/imbalanced.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "warning")
	assert.Contains(t, stdout, "(1 of 1 items unbalanced)")
	assert.Contains(t, stdout, "1 edge(s) unbalanced")

	_, _, err = execute(t, "check", "--ref", testRef, "testdata/balanced.yaml")
	assert.NoError(t, err)
}

func TestCompute_CommandErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantOut string
	}{
		{"missing ref", []string{"compute", "testdata/balanced.yaml"}, "--ref is required"},
		{"ref not found", []string{"compute", "--ref", "testdata/none.json", "testdata/balanced.yaml"}, "reference file not found"},
		{"graph not found", []string{"compute", "--ref", testRef, "testdata/none.yaml"}, "graph file not found"},
		{"no graph source", []string{"compute", "--ref", testRef}, "a graph file argument or --db is required"},
		{"bad reference", []string{"compute", "--ref", "testdata/balanced.yaml", "testdata/balanced.yaml"}, "failed to load reference data"},
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

func TestCompute_FromStorePersistsAnnotations(t *testing.T) {
	db := filepath.Join(t.TempDir(), "factory.db")
	_, _, err := execute(t, "import", "testdata/imbalanced.yaml", "--db", db)
	require.NoError(t, err)

	resp, err := computeJSON(t, false)
	require.Error(t, err, "no graph source without --db")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, "error", resp.Status)

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	opts := &ComputeOptions{
		RootOptions: &RootOptions{Format: "text", Reference: testRef, Database: db},
		RunIDs:      testutil.NewFixedRunID("run-db"),
	}
	require.NoError(t, runCompute(context.Background(), opts, nil, cmd, false))

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	anns, err := st.Annotations(context.Background())
	require.NoError(t, err)
	require.Contains(t, anns, "e1")
	assert.Equal(t, "run-db", anns["e1"].RunID())
	assert.Equal(t, ir.EdgeStateWarning, anns["e1"].State)
	assert.Equal(t, "Iron Ingot +15/min over", anns["e1"].Label)

	results, err := st.Results(context.Background())
	require.NoError(t, err)
	require.Contains(t, results, "rods")
	assert.Equal(t, "run-db", results["rods"].RunID)
	assert.Equal(t, int64(-15000), results["rods"].Expected["left-solid-in-0"].Rate("Desc_IronIngot_C"))
}

func TestCompute_UsesReferenceRecordedByImport(t *testing.T) {
	db := filepath.Join(t.TempDir(), "factory.db")
	stdout, _, err := execute(t, "import", "testdata/imbalanced.yaml", "--db", db, "--ref", testRef)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Reference data: ")

	st, err := store.Open(db)
	require.NoError(t, err)
	ref, ok, err := st.Setting(context.Background(), store.SettingReference)
	require.NoError(t, err)
	require.NoError(t, st.Close())
	require.True(t, ok)
	assert.True(t, filepath.IsAbs(ref))

	stdout, _, err = execute(t, "compute", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Iron Ingot +15/min over")

	_, _, err = execute(t, "check", "--db", db)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestCompute_StoreWithoutRecordedReference(t *testing.T) {
	db := filepath.Join(t.TempDir(), "factory.db")
	_, _, err := execute(t, "import", "testdata/imbalanced.yaml", "--db", db)
	require.NoError(t, err)

	stdout, _, err := execute(t, "compute", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "--ref is required")
}

func TestCompute_ReportsFeedbackLoops(t *testing.T) {
	resp, err := computeJSON(t, false, "testdata/loop.yaml")
	require.NoError(t, err)
	require.Len(t, resp.Data.Loops, 1)
	assert.Equal(t, []string{"m-loop", "s-loop", "m-loop"}, resp.Data.Loops[0].Path)

	stdout, _, err := execute(t, "compute", "--ref", testRef, "testdata/loop.yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Feedback loops:")
	assert.Contains(t, stdout, "  m-loop -> s-loop -> m-loop")
	assert.Contains(t, stdout, string(ir.ErrCodeCircularDependency))
}
