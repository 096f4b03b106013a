package sim

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveResults_WritesJSONAndLedgerCSV(t *testing.T) {
	// GIVEN a finished run
	cfg := testConfig(3, 1, 0)
	cfg.Policy.Strategy = StrategyPerformance
	s := mustNewSimulator(t, cfg, testFunctions(2, 128), [][]int{{0, 2, 0}, {1, 0, 3}}, []float64{10, 20, 10}, newFakeCost())
	require.NoError(t, s.Run())
	dir := filepath.Join(t.TempDir(), "out")

	// WHEN results are saved
	require.NoError(t, s.SaveResults(dir))

	// THEN results.json round-trips the ledger and summary
	r, err := LoadResults(filepath.Join(dir, ResultsFileName))
	require.NoError(t, err)
	assert.Equal(t, s.Metrics.RunID, r.RunID)
	assert.Equal(t, StrategyPerformance, r.Strategy)
	assert.Equal(t, [2]string{"old-srv", "new-srv"}, r.Servers)
	assert.Equal(t, 6, r.Summary.Invocations)
	assert.Equal(t, LedgerEntry{ServiceTime: 2, Carbon: 120}, r.Functions["f0"][1])

	// AND ledger.csv has a header plus one row per ledger entry
	data, err := os.ReadFile(filepath.Join(dir, LedgerFileName))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "function,invoke_time,service_time,carbon", lines[0])
	assert.Equal(t, "f0,1,2,120", lines[1])
}

func TestLoadResults_Errors(t *testing.T) {
	_, err := LoadResults(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "reading results")

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err = LoadResults(path)
	assert.ErrorContains(t, err, "parsing results")
}
