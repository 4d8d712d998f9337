package stream

import (
	"bytes"
	"strings"

	"github.com/codeagenthq/codeagent/internal/types"
)

// maxMessageBytes bounds how much extracted message text one Parser holds in
// memory regardless of how much a child writes to stdout. Once hit, further
// fragments are dropped but session id and progress extraction continue.
const maxMessageBytes = 10 * 1024 * 1024

// Parser consumes a child process's stdout as arbitrary byte chunks,
// reframes it into lines, and incrementally classifies and extracts a
// ParsedStream from the JSON events it finds. It implements io.Writer so it
// can sit directly in an io.MultiWriter alongside a raw-output sink.
type Parser struct {
	onProgress func(types.Progress)

	pending bytes.Buffer // bytes since the last newline

	flavor        types.BackendFlavor
	flavorLatched bool

	message      strings.Builder
	messageBytes int
	capped       bool

	sessionID string
}

// NewParser builds a Parser. onProgress may be nil; when set, it receives
// one Progress value per event that carries a progress signal, in arrival
// order. It is called synchronously from Write, so it must not block.
func NewParser(onProgress func(types.Progress)) *Parser {
	return &Parser{onProgress: onProgress}
}

// Write implements io.Writer. It never returns an error: a child emitting
// garbage on stdout is not a reason to stop reading it.
func (p *Parser) Write(chunk []byte) (int, error) {
	p.pending.Write(chunk)
	for {
		buf := p.pending.Bytes()
		idx := bytes.IndexByte(buf, '\n')
		if idx < 0 {
			break
		}
		line := buf[:idx]
		p.processLine(line)
		p.pending.Next(idx + 1)
	}
	return len(chunk), nil
}

// Close flushes any unterminated final line still held in the pending
// buffer. It always returns nil; Parser holds no resources that can fail to
// release.
func (p *Parser) Close() error {
	if p.pending.Len() > 0 {
		p.processLine(p.pending.Bytes())
		p.pending.Reset()
	}
	return nil
}

// Result returns the ParsedStream accumulated so far. Safe to call after
// every Write, not just after Close.
func (p *Parser) Result() types.ParsedStream {
	return types.ParsedStream{
		Message:   p.message.String(),
		SessionID: p.sessionID,
		Flavor:    p.flavor,
	}
}

func (p *Parser) processLine(line []byte) {
	line = bytes.TrimRight(line, "\r")
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return
	}
	// Fast filter: anything not starting with { or [ cannot be one of our
	// JSON events, so skip the decode attempt entirely.
	switch trimmed[0] {
	case '{', '[':
	default:
		return
	}

	event, ok := decodeEvent(trimmed)
	if !ok {
		return
	}

	classified := Classify(event)
	if !p.flavorLatched && classified != types.FlavorUnknown {
		p.flavor = classified
		p.flavorLatched = true
	}
	effective := classified
	if p.flavorLatched {
		effective = p.flavor
	}

	if sid, ok := extractSessionID(effective, event); ok && sid != "" {
		p.sessionID = sid
	}

	if frag, ok := extractMessageFragment(effective, event); ok && frag != "" {
		p.appendMessage(frag)
	}

	if prog, ok := extractProgress(effective, event); ok && p.onProgress != nil {
		p.onProgress(prog)
	}
	if isCompletionEvent(effective, event) && p.onProgress != nil {
		p.onProgress(types.Progress{Stage: types.ProgressCompleted})
	}
}

// appendMessage adds frag to the accumulated message, unless doing so would
// cross the 10 MiB cap. Per spec.md §4.2, a fragment that would exceed the
// cap is dropped in its entirety (not truncated to fit), and every
// subsequent fragment in the stream is dropped too.
func (p *Parser) appendMessage(frag string) {
	if p.capped {
		return
	}
	if len(frag) > maxMessageBytes-p.messageBytes {
		p.capped = true
		return
	}
	p.message.WriteString(frag)
	p.messageBytes += len(frag)
}
