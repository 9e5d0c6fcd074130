package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/incimine/internal/config"
	"github.com/roach88/incimine/internal/model"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "incimine", cmd.Use)
	assert.Equal(t, model.EngineVersion, cmd.Version)
	assert.Contains(t, cmd.Long, "Apriori")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"init", "seed", "add", "list", "show", "set-status", "reset", "stats", "analyze", "runs", "check"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	dbFlag := cmd.PersistentFlags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "", dbFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)
}

func TestAnalyzeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	analyzeCmd, _, err := cmd.Find([]string{"analyze"})
	require.NoError(t, err)

	for _, name := range []string{"min-support", "min-confidence", "min-lift", "top-n", "max-len", "workers", "save", "out", "prefix", "record"} {
		assert.NotNil(t, analyzeCmd.Flags().Lookup(name), "flag %s", name)
	}
	assert.Equal(t, "o", analyzeCmd.Flags().Lookup("out").Shorthand)
}

func TestInvalidFormat(t *testing.T) {
	c := newTestCLI(t)
	_, _, err := c.run("--format", "xml", "init")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestConfigFileAndOverrides(t *testing.T) {
	c := newTestCLI(t)
	c.opts.ConfigPath = "testdata/config.yaml"

	cfg, err := c.opts.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 0.3, cfg.Thresholds.MinSupport)
	assert.Equal(t, 2, cfg.Mining.Workers)

	c.opts.Database = "override.db"
	cfg, err = c.opts.loadConfig(func(cfg *config.Config) { cfg.Thresholds.TopN = 9 })
	require.NoError(t, err)
	assert.Equal(t, "override.db", cfg.Database)
	assert.Equal(t, 9, cfg.Thresholds.TopN)
}

func TestConfigEnvOverride(t *testing.T) {
	c := newTestCLI(t)
	t.Setenv(config.EnvMinLift, "2.5")

	cfg, err := c.opts.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 2.5, cfg.Thresholds.MinLift)
}

func TestConfigMissingFile(t *testing.T) {
	c := newTestCLI(t)
	c.opts.ConfigPath = "testdata/nope.yaml"

	_, err := c.opts.loadConfig()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestConfigInvalidOverrideRejected(t *testing.T) {
	c := newTestCLI(t)

	_, err := c.opts.loadConfig(func(cfg *config.Config) { cfg.Thresholds.MinSupport = 0 })
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidConfig))
	assert.Equal(t, ErrCodeConfig, ErrorCode(err))
}
