package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/codeagenthq/codeagent/internal/config"
	"github.com/codeagenthq/codeagent/internal/types"
)

var resumeCmd = &cobra.Command{
	Use:   "resume <session_id> <task> [workdir]",
	Short: "Resume a previous backend session with a new task",
	Args:  cobra.RangeArgs(2, 3),
	Run:   runResume,
}

func runResume(cmd *cobra.Command, args []string) {
	sessionID := args[0]
	task := args[1]
	var workDir string
	if len(args) == 3 {
		workDir = args[2]
	}

	cfg, err := config.FromEnv()
	if err != nil {
		printFailure(err, types.ExitConfigurationError)
		exitProcess(types.ExitConfigurationError)
		return
	}
	applyFlagOverrides(cmd, &cfg)

	backendName, _ := cmd.Flags().GetString("backend")
	if backendName == "" {
		backendName = cfg.Backend
	}
	if backendName == "" {
		err := types.NewConfigurationError("resume requires --backend")
		printFailure(err, err.ExitCode())
		exitProcess(err.ExitCode())
		return
	}

	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = cfg.Model
	}
	skipPermissions, _ := cmd.Flags().GetBool("skip-permissions")
	yolo, _ := cmd.Flags().GetBool("yolo")
	minimalEnv, _ := cmd.Flags().GetBool("minimal-env")
	reasoningEffort, _ := cmd.Flags().GetString("reasoning-effort")
	promptFile, _ := cmd.Flags().GetString("prompt-file")

	spec := &types.TaskSpec{
		ID:              "resume-" + uuid.NewString(),
		Task:            task,
		WorkDir:         workDir,
		BackendName:     backendName,
		Model:           model,
		SessionID:       sessionID,
		PromptFile:      promptFile,
		ReasoningEffort: reasoningEffort,
		SkipPermissions: skipPermissions || yolo,
		MinimalEnv:      minimalEnv,
	}

	exitProcess(runOneTask(cmd, cfg, spec))
}
