package stream

import "github.com/codeagenthq/codeagent/internal/types"

// Classify applies the ordered backend classification rules to one decoded
// event. The first matching rule wins; an event matching none of them
// classifies as FlavorUnknown.
func Classify(e Event) types.BackendFlavor {
	if e == nil {
		return types.FlavorUnknown
	}

	// 1. CODEX: thread_id present, or nested item.type present.
	if e.has("thread_id") {
		return types.FlavorCodex
	}
	if item, ok := e.object("item"); ok {
		if _, ok := item.str("type"); ok {
			return types.FlavorCodex
		}
	}

	// 2. CLAUDE: subtype present, or result present, or (type == "result" and session_id present).
	if e.has("subtype") {
		return types.FlavorClaude
	}
	if e.has("result") {
		return types.FlavorClaude
	}
	if t, _ := e.str("type"); t == "result" && e.has("session_id") {
		return types.FlavorClaude
	}

	// 3. GEMINI: role present, or delta present, or (type == "init" and session_id present).
	if e.has("role") {
		return types.FlavorGemini
	}
	if e.has("delta") {
		return types.FlavorGemini
	}
	if t, _ := e.str("type"); t == "init" && e.has("session_id") {
		return types.FlavorGemini
	}

	// 4. OPENCODE: sessionID (camel-case) and part present.
	if e.has("sessionID") && e.has("part") {
		return types.FlavorOpencode
	}

	return types.FlavorUnknown
}
