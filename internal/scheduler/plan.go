// Package scheduler topologically layers a set of TaskSpecs by their
// Dependencies and runs each layer with bounded concurrency, propagating
// dependency failures as synthesized skips instead of aborting the batch.
package scheduler

import (
	"github.com/codeagenthq/codeagent/internal/types"
)

// BuildPlan layers specs via Kahn's algorithm: layer 0 holds every task with
// no dependencies, layer 1 holds tasks whose dependencies are all in layer 0,
// and so on. Tasks within a layer have no dependency relationship between
// them and so may run concurrently.
func BuildPlan(specs []*types.TaskSpec) ([][]*types.TaskSpec, error) {
	byID := make(map[string]*types.TaskSpec, len(specs))
	for _, s := range specs {
		if _, dup := byID[s.ID]; dup {
			return nil, &types.DuplicateTaskID{TaskID: s.ID}
		}
		byID[s.ID] = s
	}

	inDegree := make(map[string]int, len(specs))
	dependents := make(map[string][]string, len(specs))

	for _, s := range specs {
		for _, dep := range s.Dependencies {
			if _, ok := byID[dep]; !ok {
				return nil, &types.UnknownDependency{TaskID: s.ID, DependsOn: dep}
			}
			inDegree[s.ID]++
			dependents[dep] = append(dependents[dep], s.ID)
		}
	}

	var layers [][]*types.TaskSpec
	placed := make(map[string]bool, len(specs))

	var frontier []string
	for _, s := range specs {
		if inDegree[s.ID] == 0 {
			frontier = append(frontier, s.ID)
		}
	}

	for len(frontier) > 0 {
		layer := make([]*types.TaskSpec, 0, len(frontier))
		var next []string

		for _, id := range frontier {
			layer = append(layer, byID[id])
			placed[id] = true
		}
		for _, id := range frontier {
			for _, dependent := range dependents[id] {
				inDegree[dependent]--
				if inDegree[dependent] == 0 {
					next = append(next, dependent)
				}
			}
		}

		layers = append(layers, layer)
		frontier = next
	}

	if len(placed) != len(specs) {
		var unplaced []string
		for _, s := range specs {
			if !placed[s.ID] {
				unplaced = append(unplaced, s.ID)
			}
		}
		return nil, &types.CycleDetected{Unplaced: unplaced}
	}

	return layers, nil
}
