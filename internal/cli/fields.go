package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/plotline/internal/logging"
	"github.com/AbdelazizMoustafa10m/plotline/internal/task"
)

// localTimeLayouts are accepted by --start and --end besides RFC3339. They
// are interpreted in the workspace timezone.
var localTimeLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// parseTimeFlag parses an RFC3339 timestamp or a local "YYYY-MM-DD HH:MM".
func parseTimeFlag(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range localTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (want RFC3339 or \"YYYY-MM-DD HH:MM\")", s)
}

// taskFieldFlags are the task attributes shared by add and edit.
type taskFieldFlags struct {
	Title       string
	Description string
	Due         string
	Start       string
	End         string
	Estimate    int
	DependsOn   []string
}

// register declares the field flags on cmd.
func (f *taskFieldFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Title, "title", "", "Task title")
	cmd.Flags().StringVar(&f.Description, "description", "", "Free-form description")
	cmd.Flags().StringVar(&f.Due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.Start, "start", "", "Planned start (RFC3339 or \"YYYY-MM-DD HH:MM\")")
	cmd.Flags().StringVar(&f.End, "end", "", "Planned end (RFC3339 or \"YYYY-MM-DD HH:MM\")")
	cmd.Flags().IntVar(&f.Estimate, "estimate", 0, "Estimated duration in minutes")
	cmd.Flags().StringSliceVarP(&f.DependsOn, "depends-on", "d", nil, "ID of a prerequisite task (repeatable)")
}

// apply copies every flag that was set on cmd into t. Dependency references
// are resolved against known so that id prefixes work.
func (f *taskFieldFlags) apply(cmd *cobra.Command, t *task.Task, known []task.Task, loc *time.Location) error {
	changed := cmd.Flags().Changed

	if changed("title") {
		t.Title = strings.TrimSpace(f.Title)
	}
	if changed("description") {
		t.Description = f.Description
	}
	if changed("due") {
		if f.Due == "" {
			t.DueDate = nil
		} else {
			d, err := task.ParseDate(f.Due)
			if err != nil {
				return err
			}
			t.DueDate = &d
		}
	}
	if changed("start") {
		ts, err := optionalTime(f.Start, loc)
		if err != nil {
			return err
		}
		t.StartTime = ts
	}
	if changed("end") {
		ts, err := optionalTime(f.End, loc)
		if err != nil {
			return err
		}
		t.EndTime = ts
	}
	if changed("estimate") {
		t.EstimatedTime = f.Estimate
	}
	if changed("depends-on") {
		deps, err := resolveDependencyRefs(f.DependsOn, known)
		if err != nil {
			return err
		}
		t.Dependencies = deps
	}
	return nil
}

func optionalTime(s string, loc *time.Location) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	ts, err := parseTimeFlag(s, loc)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

// resolveDependencyRefs expands id prefixes to full ids. Unknown references
// are kept verbatim with a warning; the engine tolerates dangling ids.
func resolveDependencyRefs(refs []string, known []task.Task) ([]string, error) {
	deps := make([]string, 0, len(refs))
	seen := make(map[string]bool, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		id := ref
		if t, err := findTask(known, ref); err == nil {
			id = t.ID
		} else if errors.Is(err, errAmbiguousID) {
			return nil, err
		} else {
			logging.New("cli").Warn("dependency does not match any task yet", "id", ref)
		}
		if !seen[id] {
			seen[id] = true
			deps = append(deps, id)
		}
	}
	return deps, nil
}
