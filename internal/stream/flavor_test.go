package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codeagenthq/codeagent/internal/types"
)

func mustDecode(t *testing.T, line string) Event {
	t.Helper()
	e, ok := decodeEvent([]byte(line))
	if !ok {
		t.Fatalf("decodeEvent failed for %q", line)
	}
	return e
}

func TestClassifyCodex(t *testing.T) {
	e := mustDecode(t, `{"thread_id":"t1"}`)
	assert.Equal(t, types.FlavorCodex, Classify(e))

	e = mustDecode(t, `{"type":"item.completed","item":{"type":"agent_message","text":"hi"}}`)
	assert.Equal(t, types.FlavorCodex, Classify(e))
}

func TestClassifyClaude(t *testing.T) {
	e := mustDecode(t, `{"type":"result","session_id":"abc","result":"Hello"}`)
	assert.Equal(t, types.FlavorClaude, Classify(e))

	e = mustDecode(t, `{"subtype":"init"}`)
	assert.Equal(t, types.FlavorClaude, Classify(e))
}

func TestClassifyGemini(t *testing.T) {
	e := mustDecode(t, `{"role":"model","delta":"hi"}`)
	assert.Equal(t, types.FlavorGemini, Classify(e))

	e = mustDecode(t, `{"type":"init","session_id":"g1"}`)
	assert.Equal(t, types.FlavorGemini, Classify(e))
}

func TestClassifyOpencode(t *testing.T) {
	e := mustDecode(t, `{"sessionID":"s9","part":{"type":"tool","state":{"output":"ok"}}}`)
	assert.Equal(t, types.FlavorOpencode, Classify(e))
}

func TestClassifyUnknown(t *testing.T) {
	e := mustDecode(t, `{"foo":"bar"}`)
	assert.Equal(t, types.FlavorUnknown, Classify(e))

	assert.Equal(t, types.FlavorUnknown, Classify(nil))
}

func TestClassifyArrayDecodesToEmptyEvent(t *testing.T) {
	e, ok := decodeEvent([]byte(`[1,2,3]`))
	assert.True(t, ok)
	assert.Equal(t, types.FlavorUnknown, Classify(e))
}
