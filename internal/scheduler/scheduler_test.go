package scheduler

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeagenthq/codeagent/internal/backend"
	"github.com/codeagenthq/codeagent/internal/executor"
	"github.com/codeagenthq/codeagent/internal/types"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("spawns a posix shell")
	}
}

type fakeBuilder struct {
	name   string
	script func(spec *types.TaskSpec) string
}

func (f *fakeBuilder) Name() string               { return f.name }
func (f *fakeBuilder) Flavor() types.BackendFlavor { return types.FlavorUnknown }
func (f *fakeBuilder) Build(spec *types.TaskSpec, _ string) backend.Invocation {
	return backend.Invocation{Command: "/bin/sh", Args: []string{"-c", f.script(spec)}}
}

func newTestExecutor(t *testing.T, script func(spec *types.TaskSpec) string) *executor.Executor {
	t.Helper()
	reg := backend.NewRegistry()
	reg.Register(&fakeBuilder{name: "fake", script: script})
	return executor.New(reg)
}

func okResult(spec *types.TaskSpec) string {
	return `echo '{"type":"result","session_id":"s-` + spec.ID + `","result":"ok"}'`
}

func TestSchedulerRunsIndependentTasksConcurrently(t *testing.T) {
	skipOnWindows(t)
	ex := newTestExecutor(t, okResult)
	s := New(ex, 4)

	specs := []*types.TaskSpec{
		{ID: "a", BackendName: "fake"},
		{ID: "b", BackendName: "fake"},
	}
	results, err := s.Run(context.Background(), specs, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, types.ExitOK, r.ExitCode)
	}
}

func TestSchedulerSkipPropagation(t *testing.T) {
	skipOnWindows(t)
	failing := func(spec *types.TaskSpec) string {
		if spec.ID == "a" {
			return "exit 1"
		}
		return okResult(spec)
	}
	ex := newTestExecutor(t, failing)
	s := New(ex, 4)

	specs := []*types.TaskSpec{
		{ID: "a", BackendName: "fake"},
		{ID: "b", BackendName: "fake", Dependencies: []string{"a"}},
		{ID: "c", BackendName: "fake", Dependencies: []string{"b"}},
	}
	results, err := s.Run(context.Background(), specs, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)

	byID := map[string]types.TaskResult{}
	for _, r := range results {
		byID[r.TaskID] = r
	}

	assert.Equal(t, 1, byID["a"].ExitCode)
	assert.False(t, byID["b"].Succeeded())
	assert.Equal(t, "Dependency failed", byID["b"].Error)
	assert.False(t, byID["c"].Succeeded())
}

func TestSchedulerCycleDetectedReturnsError(t *testing.T) {
	ex := newTestExecutor(t, okResult)
	s := New(ex, 4)

	specs := []*types.TaskSpec{
		{ID: "a", BackendName: "fake", Dependencies: []string{"b"}},
		{ID: "b", BackendName: "fake", Dependencies: []string{"a"}},
	}
	_, err := s.Run(context.Background(), specs, nil)
	require.Error(t, err)
	var cycle *types.CycleDetected
	require.ErrorAs(t, err, &cycle)
}

func TestSchedulerExternalAbortOmitsUnstartedLayers(t *testing.T) {
	skipOnWindows(t)
	slow := func(spec *types.TaskSpec) string { return "sleep 2" }
	ex := newTestExecutor(t, slow)
	s := New(ex, 4)

	specs := []*types.TaskSpec{
		{ID: "a", BackendName: "fake"},
		{ID: "b", BackendName: "fake", Dependencies: []string{"a"}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	results, err := s.Run(ctx, specs, nil)
	require.NoError(t, err)
	// layer 0 ("a") was started and interrupted; layer 1 ("b") never started.
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].TaskID)
	assert.Equal(t, types.ExitInterrupted, results[0].ExitCode)
}

func TestSchedulerDuplicateTaskIDReturnsError(t *testing.T) {
	ex := newTestExecutor(t, okResult)
	s := New(ex, 4)

	specs := []*types.TaskSpec{
		{ID: "a", BackendName: "fake"},
		{ID: "a", BackendName: "fake"},
	}
	_, err := s.Run(context.Background(), specs, nil)
	require.Error(t, err)
	var dup *types.DuplicateTaskID
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, types.ExitConfigurationError, dup.ExitCode())
}

func TestSchedulerEmptySpecs(t *testing.T) {
	ex := newTestExecutor(t, okResult)
	s := New(ex, 4)
	results, err := s.Run(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}
