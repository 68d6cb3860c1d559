package task

// Index returns a lookup from task ID to task. When the collection contains
// duplicate IDs the first occurrence wins, matching the store's ordering.
func Index(tasks []Task) map[string]*Task {
	m := make(map[string]*Task, len(tasks))
	for i := range tasks {
		if _, seen := m[tasks[i].ID]; seen {
			continue
		}
		m[tasks[i].ID] = &tasks[i]
	}
	return m
}

// Filter returns the tasks for which keep returns true, preserving order.
// A nil keep returns tasks unchanged.
func Filter(tasks []Task, keep func(Task) bool) []Task {
	if keep == nil {
		return tasks
	}
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// WithStatus returns a predicate for Filter that keeps tasks whose status is
// one of statuses. An empty list keeps everything.
func WithStatus(statuses ...Status) func(Task) bool {
	if len(statuses) == 0 {
		return nil
	}
	want := make(map[Status]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}
	return func(t Task) bool { return want[t.Status] }
}

// StatusCounts returns the number of tasks per status.
func StatusCounts(tasks []Task) map[Status]int {
	counts := make(map[Status]int, len(validStatuses))
	for _, t := range tasks {
		counts[t.Status]++
	}
	return counts
}

// MissingDependencies returns the dependency ids of t that are not present
// in the working set, in declaration order.
func MissingDependencies(t Task, working []Task) []string {
	byID := Index(working)
	var missing []string
	for _, dep := range t.Dependencies {
		if _, ok := byID[dep]; !ok {
			missing = append(missing, dep)
		}
	}
	return missing
}
