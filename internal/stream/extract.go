package stream

import (
	"encoding/json"
	"strings"

	"github.com/codeagenthq/codeagent/internal/types"
)

// asObject decodes v's value at key as a nested object, following one level
// of JSON-encoded-as-string indirection if the backend sent it that way
// (codex and opencode both do this for some event shapes).
func (e Event) asObject(key string) (Event, bool) {
	if obj, ok := e.object(key); ok {
		return obj, true
	}
	if s, ok := e.str(key); ok && s != "" {
		var raw any
		if err := json.Unmarshal([]byte(s), &raw); err == nil {
			if m, ok := raw.(map[string]any); ok {
				return Event(m), true
			}
		}
	}
	return nil, false
}

// extractMessageFragment returns the piece of assistant-visible text carried
// by one event, if any, per spec.md §4.2. The parser concatenates fragments
// across events in arrival order to build the final message.
func extractMessageFragment(flavor types.BackendFlavor, e Event) (string, bool) {
	switch flavor {
	case types.FlavorCodex:
		return extractCodexMessage(e)
	case types.FlavorClaude:
		if s, ok := e.str("result"); ok {
			return s, true
		}
		if s, ok := e.str("content"); ok {
			return s, true
		}
		if tur, ok := e.object("tool_use_result"); ok {
			if s, ok := tur.str("stdout"); ok {
				return s, true
			}
		}
		return "", false

	case types.FlavorGemini:
		if t, _ := e.str("type"); t == "tool_result" {
			if s, ok := e.str("output"); ok {
				return s, true
			}
		}
		return e.str("content")

	case types.FlavorOpencode:
		return extractOpencodeMessage(e)

	default:
		if s, ok := e.str("content"); ok {
			return s, true
		}
		if s, ok := e.str("text"); ok {
			return s, true
		}
		return e.str("message")
	}
}

func extractCodexMessage(e Event) (string, bool) {
	item, ok := e.object("item")
	if !ok {
		if s, ok := e.str("item"); ok && s != "" {
			var raw any
			if err := json.Unmarshal([]byte(s), &raw); err == nil {
				if m, ok := raw.(map[string]any); ok {
					return extractCodexItem(Event(m))
				}
			}
		}
		return "", false
	}
	return extractCodexItem(item)
}

func extractCodexItem(item Event) (string, bool) {
	if t, _ := item.str("type"); t == "command_execution" {
		if s, ok := item.str("aggregated_output"); ok {
			return s, true
		}
	}
	if s, ok := item.str("content"); ok {
		return s, true
	}
	return item.str("text")
}

func extractOpencodeMessage(e Event) (string, bool) {
	part, ok := e.object("part")
	if !ok {
		if s, ok := e.str("part"); ok && s != "" {
			var raw any
			if err := json.Unmarshal([]byte(s), &raw); err == nil {
				if m, ok := raw.(map[string]any); ok {
					return extractOpencodePart(Event(m))
				}
			}
		}
		return "", false
	}
	return extractOpencodePart(part)
}

func extractOpencodePart(part Event) (string, bool) {
	if t, _ := part.str("type"); t == "tool" {
		if state, ok := part.object("state"); ok {
			if s, ok := state.str("output"); ok {
				return s, true
			}
		}
	}
	if s, ok := part.str("text"); ok {
		return s, true
	}
	return part.str("content")
}

// extractSessionID returns the session identifier carried by one event, if
// any, per spec.md §4.2.
func extractSessionID(flavor types.BackendFlavor, e Event) (string, bool) {
	switch flavor {
	case types.FlavorCodex:
		return e.str("thread_id")
	case types.FlavorClaude, types.FlavorGemini:
		return e.str("session_id")
	case types.FlavorOpencode:
		return e.str("sessionID")
	default:
		if s, ok := e.str("session_id"); ok {
			return s, true
		}
		if s, ok := e.str("sessionId"); ok {
			return s, true
		}
		return e.str("thread_id")
	}
}

// extractProgress infers an informational progress stage from one event,
// per spec.md §4.2. Returned ok == false means the event carries no
// progress signal.
func extractProgress(flavor types.BackendFlavor, e Event) (types.Progress, bool) {
	switch flavor {
	case types.FlavorClaude:
		subtype, _ := e.str("subtype")
		if subtype == "tool_use" {
			name := ""
			if content, ok := e.object("content"); ok {
				name, _ = content.str("name")
			}
			return types.Progress{Stage: types.ProgressExecuting, ToolName: name}, true
		}
		if subtype == "tool_result" {
			return types.Progress{Stage: types.ProgressExecuting}, true
		}
		return types.Progress{}, false

	case types.FlavorOpencode:
		part, ok := e.asObject("part")
		if !ok {
			return types.Progress{}, false
		}
		state, ok := part.object("state")
		if !ok {
			return types.Progress{}, false
		}
		status, _ := state.str("status")
		tool, _ := part.str("tool")
		switch status {
		case "input":
			return types.Progress{Stage: types.ProgressAnalyzing, ToolName: tool}, true
		case "running":
			return types.Progress{Stage: types.ProgressExecuting, ToolName: tool}, true
		case "completed", "error":
			return types.Progress{Stage: types.ProgressCompleted, ToolName: tool}, true
		default:
			return types.Progress{Stage: types.ProgressExecuting, ToolName: tool}, true
		}

	case types.FlavorCodex:
		if t, _ := e.str("type"); t == "command_execution" {
			return types.Progress{Stage: types.ProgressExecuting}, true
		}
		item, ok := e.asObject("item")
		if !ok {
			if e.has("thread_id") {
				return types.Progress{Stage: types.ProgressStarted}, true
			}
			return types.Progress{}, false
		}
		if t, _ := item.str("type"); t == "message" {
			content, _ := item.str("content")
			if !strings.HasPrefix(content, "Thinking") {
				return types.Progress{Stage: types.ProgressAnalyzing}, true
			}
		}
		return types.Progress{}, false

	case types.FlavorGemini:
		if t, _ := e.str("type"); t == "tool_use" {
			return types.Progress{Stage: types.ProgressExecuting}, true
		}
		if e.truthy("tool_use") {
			return types.Progress{Stage: types.ProgressExecuting}, true
		}
		if role, _ := e.str("role"); role == "model" && e.has("delta") {
			return types.Progress{Stage: types.ProgressAnalyzing}, true
		}
		return types.Progress{}, false

	default:
		return types.Progress{}, false
	}
}

// isCompletionEvent reports whether e marks the end of a backend's turn, per
// spec.md §4.2. Informational only: the parser never stops reading stdout
// early because of it, it only uses it to flip the completed progress
// stage.
func isCompletionEvent(flavor types.BackendFlavor, e Event) bool {
	switch flavor {
	case types.FlavorCodex:
		t, _ := e.str("type")
		return t == "completed" || t == "done"
	case types.FlavorClaude:
		t, _ := e.str("type")
		subtype, _ := e.str("subtype")
		return t == "result" || subtype == "success"
	case types.FlavorGemini:
		status, _ := e.str("status")
		t, _ := e.str("type")
		return status == "completed" || t == "done"
	case types.FlavorOpencode:
		t, _ := e.str("type")
		return t == "done" || t == "completed"
	default:
		return false
	}
}
