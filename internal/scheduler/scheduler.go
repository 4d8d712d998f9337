package scheduler

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/codeagenthq/codeagent/internal/executor"
	"github.com/codeagenthq/codeagent/internal/types"
)

// defaultConcurrency bounds per-layer fan-out when Scheduler.Concurrency is
// left at zero.
const defaultConcurrency = 4

// Scheduler runs a set of TaskSpecs in dependency order, executing every
// task within a layer concurrently (bounded) and skipping any task whose
// dependency failed or was itself skipped.
type Scheduler struct {
	Executor    *executor.Executor
	Concurrency int
}

// New builds a Scheduler around ex with the given per-layer concurrency cap
// (CODEAGENT_MAX_PARALLEL_WORKERS). concurrency <= 0 uses the default.
func New(ex *executor.Executor, concurrency int) *Scheduler {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Scheduler{Executor: ex, Concurrency: concurrency}
}

// OnProgress is invoked once per progress signal a running task's stream
// parser surfaces, tagged with the task id it belongs to.
type OnProgress func(taskID string, p types.Progress)

// Run executes specs to completion and returns one TaskResult per task that
// was scheduled. If ctx is canceled between layers, tasks in layers not yet
// started are left out of the returned slice entirely rather than marked
// skipped, since they were never part of a skip-propagation decision.
func (s *Scheduler) Run(ctx context.Context, specs []*types.TaskSpec, onProgress OnProgress) ([]types.TaskResult, error) {
	layers, err := BuildPlan(specs)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		results = make(map[string]types.TaskResult, len(specs))
		order   []string
	)

	dependencyFailed := func(spec *types.TaskSpec) bool {
		mu.Lock()
		defer mu.Unlock()
		for _, dep := range spec.Dependencies {
			if r, ok := results[dep]; ok && !r.Succeeded() {
				return true
			}
		}
		return false
	}

	for _, layer := range layers {
		if ctx.Err() != nil {
			break
		}

		var g errgroup.Group
		g.SetLimit(s.Concurrency)

		for _, spec := range layer {
			spec := spec
			order = append(order, spec.ID)

			if dependencyFailed(spec) {
				mu.Lock()
				results[spec.ID] = types.Skipped(spec.ID)
				mu.Unlock()
				continue
			}

			g.Go(func() error {
				progress := func(p types.Progress) {
					if onProgress != nil {
						onProgress(spec.ID, p)
					}
				}
				result := s.Executor.Execute(ctx, spec, progress)
				mu.Lock()
				results[spec.ID] = result
				mu.Unlock()
				return nil
			})
		}

		_ = g.Wait()
	}

	out := make([]types.TaskResult, 0, len(order))
	for _, id := range order {
		out = append(out, results[id])
	}
	return out, nil
}
