package main

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeagenthq/codeagent/internal/config"
)

// newRootCmdForTest builds a fresh cobra.Command carrying the same flags
// rootCmd registers in init(), so specFromArgs's flag lookups have
// somewhere to read from without depending on the package-level rootCmd
// (and its global flag state) across tests.
func newRootCmdForTest() *cobra.Command {
	cmd := &cobra.Command{Use: "codeagent"}
	cmd.Flags().String("backend", "", "")
	cmd.Flags().String("model", "", "")
	cmd.Flags().String("agent", "", "")
	cmd.Flags().String("prompt-file", "", "")
	cmd.Flags().String("reasoning-effort", "", "")
	cmd.Flags().Bool("skip-permissions", false, "")
	cmd.Flags().Bool("yolo", false, "")
	cmd.Flags().Int("timeout", 0, "")
	cmd.Flags().Bool("parallel", false, "")
	cmd.Flags().Bool("full-output", false, "")
	cmd.Flags().Bool("quiet", false, "")
	cmd.Flags().Bool("backend-output", false, "")
	cmd.Flags().Bool("debug", false, "")
	cmd.Flags().Bool("minimal-env", false, "")
	return cmd
}

func TestSpecFromArgsRequiresTaskOrPromptFile(t *testing.T) {
	cmd := newRootCmdForTest()
	_, err := specFromArgs(cmd, nil, config.Default())
	require.Error(t, err)
}

func TestSpecFromArgsRejectsDashWorkdir(t *testing.T) {
	cmd := newRootCmdForTest()
	_, err := specFromArgs(cmd, []string{"do the thing", "-"}, config.Default())
	require.Error(t, err)
}

func TestSpecFromArgsUsesBackendFromConfigWhenFlagEmpty(t *testing.T) {
	cmd := newRootCmdForTest()
	cfg := config.Default()
	cfg.Backend = "codex"

	spec, err := specFromArgs(cmd, []string{"do the thing"}, cfg)
	require.NoError(t, err)
	assert.Equal(t, "codex", spec.BackendName)
	assert.True(t, strings.HasPrefix(spec.ID, "task-"))
}

func TestSpecFromArgsYoloImpliesSkipPermissions(t *testing.T) {
	cmd := newRootCmdForTest()
	require.NoError(t, cmd.Flags().Set("yolo", "true"))

	spec, err := specFromArgs(cmd, []string{"do the thing"}, config.Default())
	require.NoError(t, err)
	assert.True(t, spec.SkipPermissions)
}

func TestSpecFromArgsPromptFileAloneIsValid(t *testing.T) {
	cmd := newRootCmdForTest()
	require.NoError(t, cmd.Flags().Set("prompt-file", "/tmp/some-prompt.txt"))

	spec, err := specFromArgs(cmd, nil, config.Default())
	require.NoError(t, err)
	assert.Equal(t, "/tmp/some-prompt.txt", spec.PromptFile)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "a", firstNonEmpty("", "a", "b"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}
