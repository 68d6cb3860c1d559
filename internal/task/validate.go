package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// validate is the shared validator instance. validator.Validate caches struct
// metadata and is safe for concurrent use.
var validate = validator.New()

// NewTask returns a task with creation defaults filled in: a fresh UUID,
// StatusNotStarted, a zero estimate and an empty dependency set.
func NewTask(title string, now time.Time) Task {
	return Task{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(title),
		Status:       StatusNotStarted,
		Dependencies: []string{},
		CreatedAt:    now,
	}
}

// Validate checks a task the way the task-creation layer needs it checked
// before it is persisted. The scheduling engine never calls Validate; it
// tolerates every shape this function rejects.
func Validate(t *Task) error {
	if t == nil {
		return errors.New("validating task: task is nil")
	}
	if err := validate.Struct(t); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validating task %q: %w", t.ID, err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, e := range verrs {
			msgs = append(msgs, fmt.Sprintf("field %s failed rule %q (value: %v)", e.Field(), e.Tag(), e.Value()))
		}
		return fmt.Errorf("validating task %q: %s", t.ID, strings.Join(msgs, "; "))
	}

	if t.DependsOn(t.ID) {
		return fmt.Errorf("validating task %q: task cannot depend on itself", t.ID)
	}
	if t.StartTime != nil && t.EndTime != nil && t.EndTime.Before(*t.StartTime) {
		return fmt.Errorf("validating task %q: end time %s is before start time %s",
			t.ID, t.EndTime.Format(time.RFC3339), t.StartTime.Format(time.RFC3339))
	}
	return nil
}
