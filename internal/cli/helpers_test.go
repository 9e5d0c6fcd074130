package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/incimine/internal/config"
	"github.com/roach88/incimine/internal/model"
	"github.com/roach88/incimine/internal/store"
	"github.com/roach88/incimine/internal/testutil"
)

// testCLI runs commands against a database in a temp dir with a frozen
// clock and fixed run IDs.
type testCLI struct {
	t    *testing.T
	dir  string
	db   string
	opts *RootOptions
}

func newTestCLI(t *testing.T) *testCLI {
	t.Helper()

	for _, name := range []string{
		config.EnvDatabase, config.EnvMinSupport, config.EnvMinConfidence,
		config.EnvMinLift, config.EnvTopN, config.EnvOutputDir,
	} {
		t.Setenv(name, "")
	}

	dir := t.TempDir()
	clock := testutil.NewFrozenClock()
	return &testCLI{
		t:   t,
		dir: dir,
		db:  filepath.Join(dir, "incidents.db"),
		opts: &RootOptions{
			EnvFiles: []string{filepath.Join(dir, "missing.env")},
			Now:      clock.Now,
			RunIDs:   testutil.NewFixedRunIDGenerator("run-test"),
		},
	}
}

// run executes args with --db pointing at the test database.
func (c *testCLI) run(args ...string) (stdout, stderr string, err error) {
	c.t.Helper()

	opts := *c.opts
	cmd := newRootCommand(&opts)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--db", c.db}, args...))
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// runJSON executes args with --format json and decodes the envelope.
func (c *testCLI) runJSON(args ...string) (CLIResponse, error) {
	c.t.Helper()

	stdout, _, err := c.run(append([]string{"--format", "json"}, args...)...)
	var resp CLIResponse
	require.NoError(c.t, json.Unmarshal([]byte(stdout), &resp), "stdout: %s", stdout)
	return resp, err
}

// decodeData re-decodes an envelope's data into v.
func decodeData(t *testing.T, resp CLIResponse, v any) {
	t.Helper()
	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

// insert writes incidents straight into the test database.
func (c *testCLI) insert(incs ...model.Incident) {
	c.t.Helper()

	st, err := store.Open(c.db)
	require.NoError(c.t, err)
	defer st.Close()
	_, err = st.CreateIncidents(context.Background(), incs)
	require.NoError(c.t, err)
}
