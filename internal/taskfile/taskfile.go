// Package taskfile parses the "---TASK---" stdin grammar spec.md §6 defines
// for --parallel mode, turning it into TaskSpecs the DAG Scheduler can run.
package taskfile

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/codeagenthq/codeagent/internal/types"
)

const (
	taskDelimiter    = "---TASK---"
	contentDelimiter = "---CONTENT---"
)

// Parse reads r and returns one TaskSpec per well-formed block. A block
// whose id or content body is empty is silently discarded, per spec.md §6.
// Unknown header keys are ignored rather than rejected.
func Parse(r io.Reader) ([]*types.TaskSpec, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	var (
		specs []*types.TaskSpec
		cur   *rawBlock
		inBody bool
	)

	flush := func() {
		if cur == nil {
			return
		}
		if spec, ok := cur.toSpec(); ok {
			specs = append(specs, spec)
		}
		cur = nil
		inBody = false
	}

	for scanner.Scan() {
		line := scanner.Text()

		if line == taskDelimiter {
			flush()
			cur = &rawBlock{}
			continue
		}
		if cur == nil {
			continue // ignore anything before the first ---TASK---
		}
		if !inBody && line == contentDelimiter {
			inBody = true
			continue
		}
		if inBody {
			cur.body = append(cur.body, line)
			continue
		}

		key, value, ok := splitHeaderLine(line)
		if !ok {
			continue
		}
		cur.setHeader(key, value)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	return specs, nil
}

func splitHeaderLine(line string) (key, value string, ok bool) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:idx])
	value = strings.TrimSpace(line[idx+1:])
	if key == "" {
		return "", "", false
	}
	return key, value, true
}

// rawBlock accumulates one block's header fields and body lines before
// they're validated and converted into a TaskSpec.
type rawBlock struct {
	id              string
	workdir         string
	sessionID       string
	backend         string
	model           string
	agent           string
	dependencies    []string
	skipPermissions bool
	body            []string
}

func (b *rawBlock) setHeader(key, value string) {
	switch key {
	case "id":
		b.id = value
	case "workdir":
		b.workdir = value
	case "session_id":
		b.sessionID = value
	case "backend":
		b.backend = value
	case "model":
		b.model = value
	case "agent":
		b.agent = value
	case "dependencies":
		b.dependencies = splitAndTrim(value)
	case "skip_permissions":
		b.skipPermissions, _ = strconv.ParseBool(value)
	default:
		// unknown keys are ignored, per spec.md §6
	}
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (b *rawBlock) toSpec() (*types.TaskSpec, bool) {
	content := strings.TrimRight(strings.Join(b.body, "\n"), "\n")
	if b.id == "" || strings.TrimSpace(content) == "" {
		return nil, false
	}
	return &types.TaskSpec{
		ID:              b.id,
		Task:            content,
		WorkDir:         b.workdir,
		Dependencies:    b.dependencies,
		BackendName:     b.backend,
		Model:           b.model,
		ReasoningEffort: "",
		SessionID:       b.sessionID,
		SkipPermissions: b.skipPermissions,
	}, true
}
