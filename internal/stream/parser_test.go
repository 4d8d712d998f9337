package stream

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeagenthq/codeagent/internal/types"
)

func writeLines(t *testing.T, p *Parser, lines ...string) {
	t.Helper()
	_, err := p.Write([]byte(strings.Join(lines, "\n") + "\n"))
	require.NoError(t, err)
}

func TestParserSingleClaudeResult(t *testing.T) {
	p := NewParser(nil)
	writeLines(t, p, `{"type":"result","session_id":"abc","result":"Hello"}`)
	require.NoError(t, p.Close())

	r := p.Result()
	assert.Equal(t, types.FlavorClaude, r.Flavor)
	assert.Equal(t, "abc", r.SessionID)
	assert.Equal(t, "Hello", r.Message)
}

func TestParserCodexStreamedMessages(t *testing.T) {
	p := NewParser(nil)
	writeLines(t, p,
		`not json, just a banner line`,
		`{"thread_id":"t1"}`,
		`{"type":"item.completed","item":{"type":"agent_message","text":"Hi "}}`,
		`{"type":"item.completed","item":{"type":"agent_message","text":"there"}}`,
	)
	require.NoError(t, p.Close())

	r := p.Result()
	assert.Equal(t, types.FlavorCodex, r.Flavor)
	assert.Equal(t, "t1", r.SessionID)
	assert.Equal(t, "Hi there", r.Message)
}

func TestParserOpencodeToolOutput(t *testing.T) {
	p := NewParser(nil)
	writeLines(t, p, `{"sessionID":"s9","part":{"type":"tool","state":{"output":"ok"}}}`)
	require.NoError(t, p.Close())

	r := p.Result()
	assert.Equal(t, types.FlavorOpencode, r.Flavor)
	assert.Equal(t, "s9", r.SessionID)
	assert.Equal(t, "ok", r.Message)
}

func TestParserSkipsBlankAndWhitespaceOnlyLines(t *testing.T) {
	p := NewParser(nil)
	writeLines(t, p, "", "   ", "\t", `{"type":"result","session_id":"x","result":"y"}`)
	require.NoError(t, p.Close())

	r := p.Result()
	assert.Equal(t, "y", r.Message)
	assert.Equal(t, "x", r.SessionID)
}

func TestParserNoJSONOutputYieldsEmptyUnknownResult(t *testing.T) {
	p := NewParser(nil)
	writeLines(t, p, "plain text", "more plain text", "still no json here")
	require.NoError(t, p.Close())

	r := p.Result()
	assert.Equal(t, types.FlavorUnknown, r.Flavor)
	assert.Equal(t, "", r.Message)
	assert.Equal(t, "", r.SessionID)
}

func TestParserFlavorLatchesOnFirstNonUnknownClassification(t *testing.T) {
	p := NewParser(nil)
	// An ambiguous/unknown-shaped event first must not prevent the later
	// codex classification from sticking, and once latched it must not
	// flip even if a later event would classify differently on its own.
	writeLines(t, p,
		`{"foo":"bar"}`,
		`{"thread_id":"t1"}`,
		`{"subtype":"should-not-override"}`,
	)
	require.NoError(t, p.Close())

	assert.Equal(t, types.FlavorCodex, p.Result().Flavor)
}

func TestParserHandlesChunkedWritesAcrossLineBoundaries(t *testing.T) {
	p := NewParser(nil)
	full := `{"type":"result","session_id":"abc","result":"Hello"}` + "\n"
	mid := len(full) / 2
	_, err := p.Write([]byte(full[:mid]))
	require.NoError(t, err)
	_, err = p.Write([]byte(full[mid:]))
	require.NoError(t, err)
	require.NoError(t, p.Close())

	r := p.Result()
	assert.Equal(t, "Hello", r.Message)
	assert.Equal(t, "abc", r.SessionID)
}

func TestParserFlushesUnterminatedFinalLineOnClose(t *testing.T) {
	p := NewParser(nil)
	_, err := p.Write([]byte(`{"type":"result","session_id":"abc","result":"Hello"}`))
	require.NoError(t, err)
	// No trailing newline written; Close must still process it.
	require.NoError(t, p.Close())

	assert.Equal(t, "Hello", p.Result().Message)
}

func TestParserEnforcesMessageByteCap(t *testing.T) {
	p := NewParser(nil)
	big := strings.Repeat("a", maxMessageBytes-10)
	writeLines(t, p, `{"type":"result","session_id":"x","result":"`+big+`"}`)
	writeLines(t, p, `{"type":"result","session_id":"x","result":"`+strings.Repeat("b", 100)+`"}`)
	require.NoError(t, p.Close())

	r := p.Result()
	assert.LessOrEqual(t, len(r.Message), maxMessageBytes)
	assert.True(t, p.capped)
}

func TestParserReportsProgressCallbacks(t *testing.T) {
	var stages []types.ProgressStage
	p := NewParser(func(pr types.Progress) {
		stages = append(stages, pr.Stage)
	})
	writeLines(t, p,
		`{"thread_id":"t1"}`,
		`{"type":"item.completed","item":{"type":"agent_message","text":"hi"}}`,
		`{"type":"completed"}`,
	)
	require.NoError(t, p.Close())

	require.NotEmpty(t, stages)
	assert.Equal(t, types.ProgressStarted, stages[0])
	assert.Equal(t, types.ProgressCompleted, stages[len(stages)-1])
}
