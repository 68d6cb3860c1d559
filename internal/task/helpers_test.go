package task

import "time"

// ---- Test helpers -----------------------------------------------------------

var testNow = time.Date(2024, 1, 15, 14, 37, 42, 0, time.UTC)

// mk builds a minimal task for test use.
func mk(id string, status Status, deps ...string) Task {
	if deps == nil {
		deps = []string{}
	}
	return Task{
		ID:           id,
		Title:        "Task " + id,
		Status:       status,
		Dependencies: deps,
		CreatedAt:    testNow,
	}
}

func ptr[T any](v T) *T { return &v }
