package backend

import "github.com/codeagenthq/codeagent/internal/types"

// OpencodeBuilder builds argv for the "opencode" CLI.
type OpencodeBuilder struct{}

func (b *OpencodeBuilder) Name() string               { return "opencode" }
func (b *OpencodeBuilder) Flavor() types.BackendFlavor { return types.FlavorOpencode }

// Build constructs: opencode run --format json [-m <model>] [-s <session>] <targetArg>
func (b *OpencodeBuilder) Build(spec *types.TaskSpec, targetArg string) Invocation {
	args := []string{"run", "--format", "json"}
	args = appendIfSet(args, "-m", spec.Model)
	args = appendIfSet(args, "-s", spec.SessionID)
	args = append(args, targetArg)
	return Invocation{Command: "opencode", Args: args}
}
