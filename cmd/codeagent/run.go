package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/codeagenthq/codeagent/internal/backend"
	"github.com/codeagenthq/codeagent/internal/config"
	"github.com/codeagenthq/codeagent/internal/executor"
	"github.com/codeagenthq/codeagent/internal/logger"
	"github.com/codeagenthq/codeagent/internal/scheduler"
	"github.com/codeagenthq/codeagent/internal/signalbridge"
	"github.com/codeagenthq/codeagent/internal/taskfile"
	"github.com/codeagenthq/codeagent/internal/types"
)

func runRoot(cmd *cobra.Command, args []string) {
	cfg, err := config.FromEnv()
	if err != nil {
		printFailure(err, types.ExitConfigurationError)
		os.Exit(types.ExitConfigurationError)
	}
	applyFlagOverrides(cmd, &cfg)

	parallel, _ := cmd.Flags().GetBool("parallel")
	if parallel {
		os.Exit(runParallel(cmd, cfg))
		return
	}

	spec, err := specFromArgs(cmd, args, cfg)
	if err != nil {
		printFailure(err, types.ExitCodeOf(err))
		os.Exit(types.ExitCodeOf(err))
	}

	os.Exit(runOneTask(cmd, cfg, spec))
}

// specFromArgs builds a TaskSpec from the root command's positional args and
// flags, per spec.md §6's CLI surface table.
func specFromArgs(cmd *cobra.Command, args []string, cfg config.Config) (*types.TaskSpec, error) {
	var task, workDir string
	if len(args) > 0 {
		task = args[0]
	}
	if len(args) > 1 {
		workDir = args[1]
	}
	if workDir == "-" {
		return nil, types.NewConfigurationError("workdir cannot be \"-\"")
	}

	backendName, _ := cmd.Flags().GetString("backend")
	if backendName == "" {
		backendName = cfg.Backend
	}
	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = cfg.Model
	}
	promptFile, _ := cmd.Flags().GetString("prompt-file")
	reasoningEffort, _ := cmd.Flags().GetString("reasoning-effort")
	skipPermissions, _ := cmd.Flags().GetBool("skip-permissions")
	yolo, _ := cmd.Flags().GetBool("yolo")
	minimalEnv, _ := cmd.Flags().GetBool("minimal-env")

	explicitStdin := task == "-"
	if explicitStdin {
		data, err := readAllStdin()
		if err != nil {
			return nil, types.NewConfigurationError("reading stdin: %v", err)
		}
		task = data
	}

	if task == "" && promptFile == "" {
		return nil, types.NewConfigurationError("task is required (positional arg, \"-\" for stdin, or --prompt-file)")
	}

	return &types.TaskSpec{
		ID:              "task-" + uuid.NewString(),
		Task:            task,
		WorkDir:         workDir,
		BackendName:     backendName,
		Model:           model,
		PromptFile:      promptFile,
		ReasoningEffort: reasoningEffort,
		SkipPermissions: skipPermissions || yolo,
		MinimalEnv:      minimalEnv,
		UseStdin:        explicitStdin,
	}, nil
}

func readAllStdin() (string, error) {
	data, err := os.ReadFile("/dev/stdin")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// runOneTask executes a single TaskSpec with the single-task-mode
// BackendNotFound pre-validation spec.md §9's open question decides on, then
// runs it to completion and returns the process exit code.
func runOneTask(cmd *cobra.Command, cfg config.Config, spec *types.TaskSpec) int {
	registry := backend.NewRegistry()
	builder, err := registry.Resolve(spec.BackendName)
	if err != nil {
		printFailure(err, types.ExitCodeOf(err))
		return types.ExitCodeOf(err)
	}
	if _, err := exec.LookPath(builder.Build(spec, "").Command); err != nil {
		nf := &types.BackendNotFoundError{Backend: builder.Name(), Err: err}
		printFailure(nf, nf.ExitCode())
		return nf.ExitCode()
	}

	quiet := cfg.Quiet // CODEAGENT_QUIET, with --quiet folded in by applyFlagOverrides
	debug, _ := cmd.Flags().GetBool("debug")
	backendOutput, _ := cmd.Flags().GetBool("backend-output")
	backendOutput = backendOutput || cfg.BackendOutput
	fullOutput, _ := cmd.Flags().GetBool("full-output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	sink := buildLogger(quiet, cfg)
	defer sink.close()
	if debug {
		sink.Debug(fmt.Sprintf("invoking backend=%s model=%s", spec.BackendName, spec.Model))
	}

	ex := executor.New(registry)
	ex.Logger = sink
	ex.ForwardSignals = true
	ex.StdinPiped = stdinIsPiped()
	if cfg.StderrBufferSize > 0 {
		ex.StderrBufferSize = cfg.StderrBufferSize
	}
	if cfg.MaxSpawnPerSec > 0 {
		ex.RateLimiter = rate.NewLimiter(rate.Limit(cfg.MaxSpawnPerSec), 1)
	}
	if cfg.ValidateResume && spec.SessionID != "" {
		if warning := backend.ValidateResumePreflight(context.Background(), spec); warning != "" {
			sink.Warn(warning)
		}
	}
	if backendOutput {
		ex.MirrorStderr = os.Stderr
		ex.StripANSI = !isTerminal(os.Stderr)
	}
	if fullOutput {
		ex.RawStdout = os.Stdout
	}

	ctx := context.Background()
	var cancel context.CancelFunc
	timeout := cfg.Timeout
	if timeoutSecs > 0 {
		timeout = time.Duration(timeoutSecs) * time.Second
	}
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var progress func(types.Progress)
	if !quiet {
		progress = func(p types.Progress) {
			fmt.Fprintf(os.Stderr, "[%s]\n", p.Stage)
		}
	}

	result := ex.Execute(ctx, spec, progress)
	result.LogPath = sink.path()
	printResult(result)
	return result.ExitCode
}

func buildLogger(quiet bool, cfg config.Config) loggerSink {
	if quiet {
		return loggerSink{noop: logger.NoOp{}}
	}
	dir, err := logger.DefaultDir()
	if err != nil {
		return loggerSink{noop: logger.NoOp{}}
	}
	_ = logger.CleanupStale(dir)
	path := logger.NewLogPath(dir, "codeagent", os.Getpid(), "")
	l, err := logger.New(path, logger.Config{
		QueueSize:     cfg.LoggerQueueSize,
		FlushInterval: cfg.LoggerFlushInterval,
		CloseTimeout:  cfg.LoggerCloseTimeout,
	})
	if err != nil {
		return loggerSink{noop: logger.NoOp{}}
	}
	return loggerSink{real: l}
}

// loggerSink wraps either a real async Logger or the NoOp sink behind one
// small interface so callers don't need to branch on quiet mode themselves.
type loggerSink struct {
	real *logger.Logger
	noop logger.NoOp
}

func (s loggerSink) Debug(text string) {
	if s.real != nil {
		s.real.Debug(text)
	}
}
func (s loggerSink) Info(text string) {
	if s.real != nil {
		s.real.Info(text)
	}
}
func (s loggerSink) Warn(text string) {
	if s.real != nil {
		s.real.Warn(text)
	}
}
func (s loggerSink) Error(text string) {
	if s.real != nil {
		s.real.Error(text)
	}
}
func (s loggerSink) close() {
	if s.real != nil {
		_ = s.real.Close()
	}
}
func (s loggerSink) path() string {
	if s.real != nil {
		return s.real.Path()
	}
	return ""
}

func stdinIsPiped() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) == 0
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// applyFlagOverrides layers explicit CLI flags on top of env-derived config.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if v, _ := cmd.Flags().GetBool("quiet"); v {
		cfg.Quiet = true
	}
	if v, _ := cmd.Flags().GetBool("debug"); v {
		cfg.Debug = true
	}
}

// runParallel reads a ---TASK--- grammar DAG from stdin and runs it through
// the DAG Scheduler, printing each task's result via printResult.
func runParallel(cmd *cobra.Command, cfg config.Config) int {
	specs, err := taskfile.Parse(os.Stdin)
	if err != nil {
		printFailure(err, types.ExitGeneralFailure)
		return types.ExitGeneralFailure
	}

	backendFlag, _ := cmd.Flags().GetString("backend")
	for _, s := range specs {
		if s.BackendName == "" {
			s.BackendName = firstNonEmpty(backendFlag, cfg.Backend)
		}
	}

	registry := backend.NewRegistry()
	ex := executor.New(registry)
	if cfg.StderrBufferSize > 0 {
		ex.StderrBufferSize = cfg.StderrBufferSize
	}
	if cfg.MaxSpawnPerSec > 0 {
		ex.RateLimiter = rate.NewLimiter(rate.Limit(cfg.MaxSpawnPerSec), 1)
	}

	sched := scheduler.New(ex, cfg.MaxParallelWorkers)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop := signalbridge.Watch(nil, func(os.Signal) { cancel() })
	defer stop()

	results, err := sched.Run(ctx, specs, func(taskID string, p types.Progress) {
		quiet, _ := cmd.Flags().GetBool("quiet")
		if !quiet {
			fmt.Fprintf(os.Stderr, "[%s] %s\n", taskID, p.Stage)
		}
	})
	if err != nil {
		printFailure(err, types.ExitCodeOf(err))
		return types.ExitCodeOf(err)
	}

	exit := types.ExitOK
	for _, r := range results {
		printResult(r)
		if r.ExitCode != types.ExitOK {
			exit = types.ExitGeneralFailure
		}
	}
	return exit
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
