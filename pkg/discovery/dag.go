package discovery

import "fmt"

// validateDAG checks that every task_id is unique, every depends_on
// reference resolves to a task in the same workflow, and the
// dependency graph is acyclic. It does not check tool existence; the
// caller does that against the registry, since workflows are
// discovered last.
func validateDAG(tasks []workflowTaskManifest) error {
	ids := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if t.TaskID == "" {
			return fmt.Errorf("task has empty task_id")
		}
		if ids[t.TaskID] {
			return fmt.Errorf("duplicate task_id %q", t.TaskID)
		}
		ids[t.TaskID] = true
	}
	for _, t := range tasks {
		for _, dep := range t.DependsOn {
			if !ids[dep] {
				return fmt.Errorf("task %q depends on undefined task %q", t.TaskID, dep)
			}
		}
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(tasks))
	byID := make(map[string]workflowTaskManifest, len(tasks))
	for _, t := range tasks {
		byID[t.TaskID] = t
	}

	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("cycle detected at task %q", id)
		}
		state[id] = visiting
		for _, dep := range byID[id].DependsOn {
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[id] = done
		return nil
	}

	for _, t := range tasks {
		if err := visit(t.TaskID); err != nil {
			return err
		}
	}
	return nil
}
