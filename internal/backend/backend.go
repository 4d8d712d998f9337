// Package backend builds the invocation vector for each supported AI CLI
// backend. Every Builder is a pure function of a TaskSpec plus the resolved
// target argument: given the same inputs it always produces the same
// (command, argv) pair, per spec.md §4.1.
package backend

import (
	"strings"

	"github.com/codeagenthq/codeagent/internal/types"
)

// Invocation is the (command, argv) pair a Builder produces.
type Invocation struct {
	Command string
	Args    []string
}

// Builder constructs the invocation vector for one backend flavor.
type Builder interface {
	// Name returns the canonical lower-case flavor name.
	Name() string
	// Flavor returns the BackendFlavor tag this builder targets.
	Flavor() types.BackendFlavor
	// Build constructs the command/argv for spec, targeting targetArg as the
	// final positional argument (the task text, or "-" for stdin mode).
	Build(spec *types.TaskSpec, targetArg string) Invocation
}

// Registry resolves a backend name to its Builder, case-insensitively.
type Registry struct {
	builders map[string]Builder
}

// NewRegistry returns a Registry pre-populated with the four built-in
// backends.
func NewRegistry() *Registry {
	r := &Registry{builders: make(map[string]Builder)}
	for _, b := range []Builder{
		&CodexBuilder{},
		&ClaudeBuilder{},
		&GeminiBuilder{},
		&OpencodeBuilder{},
	} {
		r.Register(b)
	}
	return r
}

// Register adds or replaces a builder under its own Name(). Exported so
// callers can plug in additional or test-only backends alongside the four
// built-ins.
func (r *Registry) Register(b Builder) {
	r.builders[strings.ToLower(b.Name())] = b
}

// Resolve looks up a builder by name, case-insensitively. An unrecognized
// name is a configuration error per spec.md §4.1.
func (r *Registry) Resolve(name string) (Builder, error) {
	b, ok := r.builders[strings.ToLower(name)]
	if !ok {
		return nil, types.NewConfigurationError("unknown backend %q", name)
	}
	return b, nil
}

func appendIf(args []string, cond bool, extra ...string) []string {
	if !cond {
		return args
	}
	return append(args, extra...)
}

func appendIfSet(args []string, flag, value string) []string {
	if value == "" {
		return args
	}
	return append(args, flag, value)
}
