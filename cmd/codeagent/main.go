// Command codeagent fronts the Codex, Claude, Gemini, and Opencode CLIs
// behind a single contract: one task in, one normalized result out, with an
// optional parallel mode for running a dependency graph of tasks.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "codeagent [task] [workdir]",
	Short: "Run an AI coding backend as a uniform child process",
	Long: `codeagent spawns a backend AI CLI (codex, claude, gemini, or opencode),
normalizes its streamed JSON output into a single message/session/progress
model, and reports a deterministic exit code for the result.

Exit codes:
  0   success
  1   generic failure
  2   configuration error
  124 timeout
  127 backend command not found
  130 interrupted`,
	Args:          cobra.MaximumNArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	Run:           runRoot,
}

func init() {
	rootCmd.Flags().String("backend", "", "backend to invoke: codex|claude|gemini|opencode")
	rootCmd.Flags().String("model", "", "model override passed to the backend")
	rootCmd.Flags().String("agent", "", "named agent preset (resolved by the caller, not the core)")
	rootCmd.Flags().String("prompt-file", "", "file whose contents are spliced ahead of the task text")
	rootCmd.Flags().String("reasoning-effort", "", "reasoning effort level, backend-specific")
	rootCmd.Flags().Bool("skip-permissions", false, "bypass the backend's permission prompts")
	rootCmd.Flags().Bool("yolo", false, "alias for --skip-permissions")
	rootCmd.Flags().Int("timeout", 0, "per-task timeout in seconds; 0 falls back to CODEX_TIMEOUT (no timeout if unset)")
	rootCmd.Flags().Bool("parallel", false, "read a ---TASK--- grammar DAG from stdin and run it")
	rootCmd.Flags().Bool("full-output", false, "mirror the backend's raw stdout to this process's stdout")
	rootCmd.Flags().Bool("quiet", false, "suppress progress output")
	rootCmd.Flags().Bool("backend-output", false, "mirror backend stderr, prefixed [BACKEND]")
	rootCmd.Flags().Bool("debug", false, "enable debug logging")
	rootCmd.Flags().Bool("minimal-env", false, "pass only an allow-listed subset of the environment to the child")

	resumeCmd.Flags().AddFlagSet(rootCmd.Flags())
	rootCmd.AddCommand(resumeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Only cobra-level errors (bad flags, unknown subcommand) land here;
		// task-level failures are reported and exited from within runRoot
		// and runResume.
		printFailure(err, exitCodeFor(err))
		os.Exit(exitCodeFor(err))
	}
}
