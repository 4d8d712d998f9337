package backend

import "github.com/codeagenthq/codeagent/internal/types"

// ClaudeBuilder builds argv for the "claude" CLI.
type ClaudeBuilder struct{}

func (b *ClaudeBuilder) Name() string               { return "claude" }
func (b *ClaudeBuilder) Flavor() types.BackendFlavor { return types.FlavorClaude }

// Build constructs: claude -p --output-format stream-json
// [--dangerously-skip-permissions] [--model <model>] [-r <session>]
// --disable-settings-source <targetArg>
func (b *ClaudeBuilder) Build(spec *types.TaskSpec, targetArg string) Invocation {
	args := []string{"-p", "--output-format", "stream-json"}
	args = appendIf(args, spec.SkipPermissions, "--dangerously-skip-permissions")
	args = appendIfSet(args, "--model", spec.Model)
	args = appendIfSet(args, "-r", spec.SessionID)
	args = append(args, "--disable-settings-source", targetArg)
	return Invocation{Command: "claude", Args: args}
}
