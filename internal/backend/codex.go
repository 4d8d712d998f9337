package backend

import "github.com/codeagenthq/codeagent/internal/types"

// CodexBuilder builds argv for the "codex" CLI.
type CodexBuilder struct{}

func (b *CodexBuilder) Name() string                 { return "codex" }
func (b *CodexBuilder) Flavor() types.BackendFlavor   { return types.FlavorCodex }

// Build constructs: codex e -C <workdir> --json [-r <session>] [-m <model>]
// [--reasoning-effort <level>] [--full-auto] <targetArg>
func (b *CodexBuilder) Build(spec *types.TaskSpec, targetArg string) Invocation {
	workDir := spec.WorkDir
	if workDir == "" {
		workDir = "."
	}
	args := []string{"e", "-C", workDir, "--json"}
	args = appendIfSet(args, "-r", spec.SessionID)
	args = appendIfSet(args, "-m", spec.Model)
	args = appendIfSet(args, "--reasoning-effort", spec.ReasoningEffort)
	args = appendIf(args, spec.SkipPermissions, "--full-auto")
	args = append(args, targetArg)
	return Invocation{Command: "codex", Args: args}
}
