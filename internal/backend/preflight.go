package backend

import (
	"context"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/codeagenthq/codeagent/internal/types"
)

// preflightModel is the cheapest model used purely to confirm the Anthropic
// API is reachable; the response content is discarded.
const preflightModel = "claude-3-5-haiku-20241022"

// preflightTimeout bounds how long the reachability check may block task
// startup.
const preflightTimeout = 5 * time.Second

// ValidateResumePreflight performs a minimal, best-effort Anthropic API call
// to confirm connectivity before a claude resume is attempted via the CLI
// child process. It is diagnostic only: a failure here never blocks the
// actual task spawn, it only produces a string suitable for a WARN log line.
// Disabled unless spec targets the claude flavor, a session id is present,
// and ANTHROPIC_API_KEY is set.
func ValidateResumePreflight(ctx context.Context, spec *types.TaskSpec) (warning string) {
	if spec.SessionID == "" {
		return ""
	}
	flavor, _ := types.ParseBackendFlavor(spec.BackendName)
	if flavor != types.FlavorClaude {
		return ""
	}
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return ""
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	pingCtx, cancel := context.WithTimeout(ctx, preflightTimeout)
	defer cancel()

	_, err := client.Messages.New(pingCtx, anthropic.MessageNewParams{
		Model:     anthropic.Model(preflightModel),
		MaxTokens: 1,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("ping")),
		},
	})
	if err != nil {
		return "resume preflight: Anthropic API unreachable, proceeding with CLI resume anyway: " + err.Error()
	}
	return ""
}
