package task

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidStatus is returned when a status string or value is not one of
// the known statuses.
var ErrInvalidStatus = errors.New("invalid task status")

// Verdict is the outcome of a completion check. When OK is false,
// BlockingID and BlockingTitle name the first unfinished dependency.
type Verdict struct {
	OK            bool
	BlockingID    string
	BlockingTitle string
}

// BlockedError is returned by Transition when a task cannot be completed
// because a dependency is not completed.
type BlockedError struct {
	TaskID        string
	TaskTitle     string
	BlockingID    string
	BlockingTitle string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("cannot complete %q: dependency %q is not completed", e.TaskTitle, e.BlockingTitle)
}

// CanComplete reports whether t may move to StatusCompleted given the
// working set. Every dependency that resolves to a task in working must be
// completed. Dependency ids that are not in working cannot be verified and do
// not block. Only the first blocker, in t.Dependencies order, is reported.
//
// CanComplete is a pure predicate and never mutates its arguments.
func CanComplete(t Task, working []Task) Verdict {
	if len(t.Dependencies) == 0 {
		return Verdict{OK: true}
	}

	byID := Index(working)
	for _, depID := range t.Dependencies {
		dep, ok := byID[depID]
		if !ok {
			continue
		}
		if dep.Status != StatusCompleted {
			return Verdict{BlockingID: dep.ID, BlockingTitle: dep.Title}
		}
	}
	return Verdict{OK: true}
}

// Transition moves t to the target status. Only the move to
// StatusCompleted is guarded; reopening, archiving and leaving archived are
// always allowed.
//
// Side effects applied on success:
//   - entering in_progress records StartedAt if it was never set
//   - entering completed records CompletedAt = now; StartedAt is left as-is
//   - leaving completed clears CompletedAt
//
// On rejection t is not modified and a *BlockedError is returned.
func Transition(t *Task, to Status, working []Task, now time.Time) error {
	if t == nil {
		return errors.New("transitioning task: task is nil")
	}
	if !to.IsValid() {
		return fmt.Errorf("transitioning task %q: %w: %q", t.ID, ErrInvalidStatus, to)
	}

	if to == StatusCompleted && t.Status != StatusCompleted {
		v := CanComplete(*t, working)
		if !v.OK {
			return &BlockedError{
				TaskID:        t.ID,
				TaskTitle:     t.Title,
				BlockingID:    v.BlockingID,
				BlockingTitle: v.BlockingTitle,
			}
		}
	}

	from := t.Status
	t.Status = to

	switch to {
	case StatusInProgress:
		if t.StartedAt == nil {
			ts := now
			t.StartedAt = &ts
		}
	case StatusCompleted:
		if from != StatusCompleted {
			ts := now
			t.CompletedAt = &ts
		}
	}
	if from == StatusCompleted && to != StatusCompleted {
		t.CompletedAt = nil
	}
	return nil
}
