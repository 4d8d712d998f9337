// Package executor spawns one backend CLI invocation per task, wires its
// stdout through the stream parser and its stderr into a bounded tail
// buffer, and derives a unified TaskResult from however the child exited.
package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"io"
	"os/exec"
	"strings"

	"golang.org/x/time/rate"

	"github.com/codeagenthq/codeagent/internal/backend"
	"github.com/codeagenthq/codeagent/internal/signalbridge"
	"github.com/codeagenthq/codeagent/internal/stream"
	"github.com/codeagenthq/codeagent/internal/types"
)

// Executor runs TaskSpecs as child processes.
type Executor struct {
	Registry *backend.Registry

	// StderrBufferSize bounds the retained stderr tail. Zero uses the
	// default.
	StderrBufferSize int

	// RateLimiter, if set, throttles how often new children are spawned
	// (CODEAGENT_MAX_SPAWN_PER_SEC).
	RateLimiter *rate.Limiter

	// RawStdout and RawStderr, if set, additionally receive a copy of the
	// child's raw stdout/stderr streams. --full-output sets RawStdout;
	// --backend-output goes through MirrorStderr instead of RawStderr.
	RawStdout, RawStderr *os.File

	// Logger receives lifecycle diagnostics (prompt-file read failures,
	// etc). Nil is treated as a no-op sink.
	Logger interface {
		Warn(string)
	}

	// StdinPiped reports whether the wrapper's own stdin is a pipe, one of
	// the inputs to the use-stdin decision in spec.md §4.3. Left false when
	// not applicable (e.g. parallel mode, where each task has its own body).
	StdinPiped bool

	// ForwardSignals arms the Signal Bridge (§4.6) for each child this
	// Executor spawns. Single-task CLI invocations want this; a DAG
	// scheduler running many tasks concurrently installs one bridge for the
	// whole batch instead (see cmd/codeagent), so this stays off by default.
	ForwardSignals bool

	// MirrorStderr, if set, additionally receives every backend stderr line
	// prefixed "[BACKEND] " (CODEAGENT_BACKEND_OUTPUT / --backend-output).
	MirrorStderr io.Writer
	// StripANSI strips ANSI escapes from mirrored lines, for when
	// MirrorStderr isn't a terminal.
	StripANSI bool

	// Sanitizer, if set, runs over the parsed message and its flavor before
	// it lands in the TaskResult, per spec.md §4.3's "message = parsed and
	// later passed through an external sanitizer/filter (out-of-scope
	// collaborator; the core only requires a function from (string,
	// flavor) -> string)". Nil leaves the message untouched.
	Sanitizer func(message string, flavor types.BackendFlavor) string

	// MetricExtractor, if set, derives TaskResult.Metrics from the
	// sanitized message, per spec.md §4.7's reserved metric hook fields.
	// Nil leaves Metrics at its zero value.
	MetricExtractor func(message string) types.Metrics
}

// New builds an Executor against the given backend registry.
func New(reg *backend.Registry) *Executor {
	return &Executor{Registry: reg}
}

// Execute runs one task to completion (or until ctx is done) and returns its
// TaskResult. It never returns an error itself: every failure mode is
// encoded into the result's ExitCode/Error fields so a DAG scheduler can
// treat every task uniformly.
func (e *Executor) Execute(ctx context.Context, spec *types.TaskSpec, onProgress func(types.Progress)) types.TaskResult {
	result := types.TaskResult{TaskID: spec.ID, SessionID: spec.SessionID}

	if err := spec.Validate(); err != nil {
		result.Error = err.Error()
		result.ExitCode = types.ExitConfigurationError
		return result
	}

	builder, err := e.Registry.Resolve(spec.BackendName)
	if err != nil {
		result.Error = err.Error()
		result.ExitCode = types.ExitCodeOf(err)
		return result
	}

	if e.RateLimiter != nil {
		if err := e.RateLimiter.Wait(ctx); err != nil {
			result.Error = err.Error()
			result.ExitCode = exitCodeForContextErr(ctx)
			return result
		}
	}

	taskText := e.resolveTaskText(spec)

	useStdin, _ := ShouldUseStdin(taskText, e.StdinPiped)
	useStdin = useStdin || spec.UseStdin

	targetArg := taskText
	if useStdin {
		targetArg = "-"
	}

	inv := builder.Build(spec, targetArg)

	cmd := exec.Command(inv.Command, inv.Args...)
	cmd.Dir = resolveWorkDir(spec.WorkDir)
	cmd.Env = buildEnv(spec.MinimalEnv)

	if useStdin {
		cmd.Stdin = strings.NewReader(taskText)
	}

	parser := stream.NewParser(onProgress)
	tail := newStderrTail(e.bufferSize())

	cmd.Stdout = multiWriter(parser, e.RawStdout)

	var mirror *stderrMirror
	stderrDst := multiWriter(tail, e.RawStderr)
	if e.MirrorStderr != nil {
		mirror = newStderrMirror(e.MirrorStderr, e.StripANSI)
		stderrDst = io.MultiWriter(stderrDst, mirror)
	}
	cmd.Stderr = stderrDst

	if err := cmd.Start(); err != nil {
		result.ExitCode = types.ExitBackendNotFound
		result.Error = (&types.BackendNotFoundError{Backend: inv.Command, Err: err}).Error()
		return result
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	var sigExitCode int
	if e.ForwardSignals {
		stop := signalbridge.Watch(cmd.Process, func(sig os.Signal) {
			sigExitCode = signalbridge.ExitCodeForSignal(sig)
			cancelRun()
		})
		defer stop()
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var waitErr error
	select {
	case <-runCtx.Done():
		waitErr = terminate(cmd, done)
		switch {
		case sigExitCode != 0:
			result.ExitCode = sigExitCode
			result.Error = "interrupted by signal"
		case ctx.Err() != nil:
			result.ExitCode = exitCodeForContextErr(ctx)
			result.Error = ctx.Err().Error()
		default:
			result.ExitCode = types.ExitInterrupted
			result.Error = "interrupted"
		}
	case waitErr = <-done:
		result.ExitCode = exitCodeFromWaitErr(waitErr)
	}

	_ = parser.Close()
	if mirror != nil {
		_ = mirror.Close()
	}

	parsed := parser.Result()
	result.Message = parsed.Message
	if e.Sanitizer != nil {
		result.Message = e.Sanitizer(result.Message, parsed.Flavor)
	}
	if e.MetricExtractor != nil {
		result.Metrics = e.MetricExtractor(result.Message)
	}
	if parsed.SessionID != "" {
		result.SessionID = parsed.SessionID
	}
	if result.ExitCode != types.ExitOK {
		result.StderrTail = tail.String()
	}

	if waitErr != nil && result.Error == "" {
		result.Error = waitErr.Error()
	}

	return result
}

func (e *Executor) bufferSize() int {
	if e.StderrBufferSize > 0 {
		return e.StderrBufferSize
	}
	return defaultStderrBufferSize
}

// resolveTaskText loads and splices the prompt-file body ahead of the task
// text, per spec.md §4.3: "<prompt>\n\n=== TASK ===\n<task>". A prompt-file
// read failure is logged at WARN and does not fail the task; the plain task
// text is used instead.
func (e *Executor) resolveTaskText(spec *types.TaskSpec) string {
	if spec.PromptFile == "" {
		return spec.Task
	}
	data, err := os.ReadFile(spec.PromptFile)
	if err != nil {
		if e.Logger != nil {
			e.Logger.Warn(fmt.Sprintf("prompt file %q unreadable, continuing without it: %v", spec.PromptFile, err))
		}
		return spec.Task
	}
	return string(data) + "\n\n=== TASK ===\n" + spec.Task
}

// multiWriter returns w alone, or w fanned out to extra as well when extra
// is non-nil (used for --full-output/--backend-output passthrough).
func multiWriter(w io.Writer, extra *os.File) io.Writer {
	if extra == nil {
		return w
	}
	return io.MultiWriter(w, extra)
}

func resolveWorkDir(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}

func exitCodeForContextErr(ctx context.Context) int {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return types.ExitTimeout
	}
	return types.ExitInterrupted
}

func exitCodeFromWaitErr(err error) int {
	if err == nil {
		return types.ExitOK
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			// Killed by signal rather than a normal exit.
			return types.ExitInterrupted
		}
		return code
	}
	return types.ExitGeneralFailure
}
