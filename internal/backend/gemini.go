package backend

import "github.com/codeagenthq/codeagent/internal/types"

// GeminiBuilder builds argv for the "gemini" CLI.
type GeminiBuilder struct{}

func (b *GeminiBuilder) Name() string               { return "gemini" }
func (b *GeminiBuilder) Flavor() types.BackendFlavor { return types.FlavorGemini }

// Build constructs: gemini -o stream-json -y [-m <model>] [-r <session>] <targetArg>
func (b *GeminiBuilder) Build(spec *types.TaskSpec, targetArg string) Invocation {
	args := []string{"-o", "stream-json", "-y"}
	args = appendIfSet(args, "-m", spec.Model)
	args = appendIfSet(args, "-r", spec.SessionID)
	args = append(args, targetArg)
	return Invocation{Command: "gemini", Args: args}
}
