package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SUSINDRAREDDY/Job-Agent/internal/config"
	"github.com/SUSINDRAREDDY/Job-Agent/internal/observability"
)

// resetForTest clears the package and viper state touched by command runs.
func resetForTest(t *testing.T) {
	t.Helper()

	viper.Reset()
	viper.SetConfigName("a-config-file-that-does-not-exist")

	cfgFile = ""
	appCfg = nil
	osExit = os.Exit
	observability.ResetForTest()
}

func newPristineRootCmd() *cobra.Command {
	return newRootCmd()
}

func TestRootCmdVersionFlag(t *testing.T) {
	resetForTest(t)

	root := newPristineRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"--version"})

	err := root.ExecuteContext(context.Background())

	require.NoError(t, err)
	assert.Contains(t, out.String(), "jobagent version "+Version)
}

func TestRootCmdNoArgsShowsHelp(t *testing.T) {
	resetForTest(t)

	root := newPristineRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{})

	err := root.ExecuteContext(context.Background())

	require.NoError(t, err)
	assert.Contains(t, out.String(), "drives a Chrome instance")
	assert.Contains(t, out.String(), "run")
	assert.Contains(t, out.String(), "tabs")
}

func TestInitializeConfigReadsFileAndEnv(t *testing.T) {
	resetForTest(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
agent:
  max_steps: 7
browser:
  window_width: 1440
`), 0644))

	cfgFile = path
	t.Setenv("JOBAGENT_AGENT_MAX_STEPS", "9")

	require.NoError(t, initializeConfig())
	cfg, err := config.NewConfigFromViper(viper.GetViper())
	require.NoError(t, err)

	// Env beats the file; the file beats the defaults.
	assert.Equal(t, 9, cfg.Agent.MaxSteps)
	assert.Equal(t, 1440, cfg.Browser.WindowWidth)
	assert.Equal(t, 900, cfg.Browser.WindowHeight)
}

func TestInitializeConfigMissingFileUsesDefaults(t *testing.T) {
	resetForTest(t)

	require.NoError(t, initializeConfig())
	cfg, err := config.NewConfigFromViper(viper.GetViper())
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Agent.MaxSteps)
}

func TestInitializeConfigBadFileFails(t *testing.T) {
	resetForTest(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("agent: [not a map"), 0644))

	cfgFile = path
	require.Error(t, initializeConfig())
}

func TestRunCmdRequiresQueryAndBoard(t *testing.T) {
	resetForTest(t)

	root := newPristineRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"run"})

	err := root.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}
