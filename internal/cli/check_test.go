package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenariosDir = "../harness/testdata/scenarios"

const passingScenario = `name: pair
thresholds: {min_support: 0.5, min_confidence: 0.5, min_lift: 0, top_n: 1}
transactions: [[x, y], [x, y], [x]]
assertions:
  - type: rule_count
    count: 2
`

const failingScenario = `name: wrong
transactions: [[x, y], [x, y]]
assertions:
  - type: itemset_count
    count: 99
`

func writeScenario(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestCheck_HarnessScenariosPass(t *testing.T) {
	c := newTestCLI(t)

	resp, err := c.runJSON("check", scenariosDir)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)

	var res CheckResult
	decodeData(t, resp, &res)
	assert.Equal(t, 7, res.Total)
	assert.Equal(t, 7, res.Passed)
	assert.Zero(t, res.Failed)
}

func TestCheck_Filter(t *testing.T) {
	c := newTestCLI(t)

	stdout, _, err := c.run("check", scenariosDir, "--filter", "basket_*")
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ basket_all_rules")
	assert.Contains(t, stdout, "✓ basket_lift_filter")
	assert.Contains(t, stdout, "2 passed, 0 failed, 2 total")
}

func TestCheck_FailureExitsOne(t *testing.T) {
	c := newTestCLI(t)
	dir := t.TempDir()
	writeScenario(t, dir, "pair.yaml", passingScenario)
	writeScenario(t, dir, "wrong.yaml", failingScenario)

	resp, err := c.runJSON("check", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeScenario, resp.Error.Code)

	var res CheckResult
	decodeData(t, resp, &res)
	assert.Equal(t, 1, res.Passed)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, "wrong", res.Scenarios[1].Name)
	assert.NotEmpty(t, res.Scenarios[1].Errors)
}

func TestCheck_LoadErrorIsFailure(t *testing.T) {
	c := newTestCLI(t)
	dir := t.TempDir()
	writeScenario(t, dir, "broken.yml", "name: [unterminated")

	stdout, _, err := c.run("check", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✗ broken.yml")
	assert.Contains(t, stdout, "failed to load scenario")
}

func TestCheck_GoldenUpdateThenCompare(t *testing.T) {
	c := newTestCLI(t)
	dir := t.TempDir()
	writeScenario(t, dir, "pair.yaml", passingScenario)

	_, _, err := c.run("check", dir, "--update")
	require.NoError(t, err)
	golden := filepath.Join(dir, "golden", "pair.golden")
	require.FileExists(t, golden)

	_, _, err = c.run("check", dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(golden, []byte(`{"tampered":true}`), 0o644))
	stdout, _, err := c.run("check", dir)
	require.Error(t, err)
	assert.Contains(t, stdout, "golden file mismatch")
}

func TestCheck_NoScenarios(t *testing.T) {
	c := newTestCLI(t)

	stdout, _, err := c.run("check", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "No scenarios found.\n", stdout)
}

func TestCheck_MissingDir(t *testing.T) {
	c := newTestCLI(t)

	resp, err := c.runJSON("check", filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}

func TestCheck_BadFilter(t *testing.T) {
	c := newTestCLI(t)

	resp, err := c.runJSON("check", scenariosDir, "--filter", "[")
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidArgs, resp.Error.Code)
}
