package executor

import (
	"bytes"
	"io"
	"regexp"
)

// ansiEscape matches a CSI-style ANSI escape sequence, stripped from
// mirrored backend stderr when the destination isn't a TTY.
var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// stderrMirror re-frames a child's raw stderr into lines, prefixes each with
// "[BACKEND] ", optionally strips ANSI escapes, and writes the result to an
// underlying sink (normally the wrapper's own stderr), per spec.md §4.3's
// "optionally mirror each line to the process stderr" behavior.
type stderrMirror struct {
	dst       io.Writer
	stripANSI bool
	pending   bytes.Buffer
}

func newStderrMirror(dst io.Writer, stripANSI bool) *stderrMirror {
	return &stderrMirror{dst: dst, stripANSI: stripANSI}
}

func (m *stderrMirror) Write(p []byte) (int, error) {
	m.pending.Write(p)
	for {
		buf := m.pending.Bytes()
		idx := bytes.IndexByte(buf, '\n')
		if idx < 0 {
			break
		}
		m.writeLine(buf[:idx])
		m.pending.Next(idx + 1)
	}
	return len(p), nil
}

// Close flushes any unterminated trailing line.
func (m *stderrMirror) Close() error {
	if m.pending.Len() > 0 {
		m.writeLine(m.pending.Bytes())
		m.pending.Reset()
	}
	return nil
}

func (m *stderrMirror) writeLine(line []byte) {
	text := string(bytes.TrimRight(line, "\r"))
	if m.stripANSI {
		text = ansiEscape.ReplaceAllString(text, "")
	}
	_, _ = io.WriteString(m.dst, "[BACKEND] "+text+"\n")
}
