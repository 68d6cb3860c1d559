package schedule

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/plotline/internal/logging"
	"github.com/AbdelazizMoustafa10m/plotline/internal/task"
)

// ---- Test helpers -----------------------------------------------------------

// fixedNow is the injected clock for every resolver test.
var fixedNow = time.Date(2024, 1, 15, 14, 37, 42, 0, time.UTC)

// at returns a UTC instant on 2024-01-01 at hh:mm.
func at(hh, mm int) time.Time {
	return time.Date(2024, 1, 1, hh, mm, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func date(y int, m time.Month, d int) *task.Date {
	return &task.Date{Year: y, Month: m, Day: d}
}

// mkTask builds a minimal task for resolver tests.
func mkTask(id string, deps ...string) task.Task {
	if deps == nil {
		deps = []string{}
	}
	return task.Task{
		ID:           id,
		Title:        "Task " + id,
		Status:       task.StatusNotStarted,
		Dependencies: deps,
		CreatedAt:    at(8, 0),
	}
}

func testOpts() Options {
	return Options{Now: fixedNow, Location: time.UTC, Logger: logging.Discard()}
}

// ---- Concrete scenarios -----------------------------------------------------

func TestResolve_DependencyChainScenario(t *testing.T) {
	t.Parallel()

	b := mkTask("B")
	b.EstimatedTime = 60
	b.StartedAt = ptr(at(9, 0))

	a := mkTask("A", "B")
	a.EstimatedTime = 30

	got := Resolve([]task.Task{a, b}, testOpts())

	require.Contains(t, got, "A")
	require.Contains(t, got, "B")
	assert.Equal(t, at(10, 0), got["B"].End)
	assert.Equal(t, at(10, 0), got["A"].Start)
	assert.Equal(t, at(10, 30), got["A"].End)
	assert.False(t, got["A"].AllDay)
}

func TestResolve_TwoNodeCycleFallsBackToOwnAnchors(t *testing.T) {
	t.Parallel()

	p := mkTask("P", "Q")
	p.DueDate = date(2024, 2, 1)
	q := mkTask("Q", "P")

	got := Resolve([]task.Task{p, q}, testOpts())

	require.Len(t, got, 2)
	// P falls back to its due date, Q to now.
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), got["P"].Start)
	assert.True(t, got["P"].AllDay)
	assert.Equal(t, fixedNow.Truncate(time.Minute), got["Q"].Start)
	assert.Equal(t, fixedNow.Truncate(time.Minute).Add(time.Hour), got["Q"].End)
}

func TestResolve_CycleResultIndependentOfInputOrder(t *testing.T) {
	t.Parallel()

	p := mkTask("P", "Q")
	q := mkTask("Q", "P")

	first := Resolve([]task.Task{p, q}, testOpts())
	second := Resolve([]task.Task{q, p}, testOpts())

	assert.Equal(t, first, second)
}

// ---- Start precedence -------------------------------------------------------

func TestResolve_StartPrecedence(t *testing.T) {
	t.Parallel()

	dep := mkTask("D")
	dep.StartTime = ptr(at(12, 0))
	dep.EndTime = ptr(at(13, 0))

	tests := []struct {
		name       string
		build      func() task.Task
		wantStart  time.Time
		wantEnd    time.Time
		wantAllDay bool
	}{
		{
			name: "started_at wins over dependency end",
			build: func() task.Task {
				tk := mkTask("X", "D")
				tk.StartedAt = ptr(at(9, 0))
				tk.EstimatedTime = 15
				return tk
			},
			wantStart: at(9, 0),
			wantEnd:   at(9, 15),
		},
		{
			name: "dependency end pushes planned start",
			build: func() task.Task {
				tk := mkTask("X", "D")
				tk.StartTime = ptr(at(11, 0))
				tk.EndTime = ptr(at(11, 45))
				return tk
			},
			wantStart: at(13, 0),
			wantEnd:   at(13, 45),
		},
		{
			name: "planned start later than dependency end is kept",
			build: func() task.Task {
				tk := mkTask("X", "D")
				tk.StartTime = ptr(at(15, 0))
				tk.EndTime = ptr(at(16, 0))
				return tk
			},
			wantStart: at(15, 0),
			wantEnd:   at(16, 0),
		},
		{
			name: "dependency end beats due date",
			build: func() task.Task {
				tk := mkTask("X", "D")
				tk.DueDate = date(2024, 1, 1)
				return tk
			},
			wantStart:  at(13, 0),
			wantEnd:    time.Date(2024, 1, 1, 23, 59, 59, 999999999, time.UTC),
			wantAllDay: true,
		},
		{
			name: "due date day start",
			build: func() task.Task {
				tk := mkTask("X")
				tk.DueDate = date(2024, 3, 10)
				return tk
			},
			wantStart:  time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
			wantEnd:    time.Date(2024, 3, 10, 23, 59, 59, 999999999, time.UTC),
			wantAllDay: true,
		},
		{
			name: "due date with estimate uses estimate",
			build: func() task.Task {
				tk := mkTask("X")
				tk.DueDate = date(2024, 3, 10)
				tk.EstimatedTime = 90
				return tk
			},
			wantStart:  time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
			wantEnd:    time.Date(2024, 3, 10, 1, 30, 0, 0, time.UTC),
			wantAllDay: true,
		},
		{
			name: "no anchors falls back to now",
			build: func() task.Task {
				return mkTask("X")
			},
			wantStart: time.Date(2024, 1, 15, 14, 37, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 1, 15, 15, 37, 0, 0, time.UTC),
		},
		{
			name: "explicit start with due date is not all-day",
			build: func() task.Task {
				tk := mkTask("X")
				tk.StartTime = ptr(at(7, 0))
				tk.DueDate = date(2024, 1, 2)
				return tk
			},
			wantStart: at(7, 0),
			wantEnd:   at(8, 0),
		},
		{
			name: "end time alone bounds started task",
			build: func() task.Task {
				tk := mkTask("X")
				tk.StartedAt = ptr(at(9, 0))
				tk.EndTime = ptr(at(9, 20))
				return tk
			},
			wantStart: at(9, 0),
			wantEnd:   at(9, 20),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			x := tt.build()
			got := Resolve([]task.Task{dep, x}, testOpts())

			require.Contains(t, got, "X")
			assert.Equal(t, tt.wantStart, got["X"].Start, "start")
			assert.Equal(t, tt.wantEnd, got["X"].End, "end")
			assert.Equal(t, tt.wantAllDay, got["X"].AllDay, "all-day")
		})
	}
}

func TestResolve_LatestDependencyEndWins(t *testing.T) {
	t.Parallel()

	early := mkTask("E")
	early.StartTime = ptr(at(9, 0))
	early.EndTime = ptr(at(10, 0))
	late := mkTask("L")
	late.StartTime = ptr(at(9, 0))
	late.EndTime = ptr(at(12, 0))
	x := mkTask("X", "E", "L")

	got := Resolve([]task.Task{x, early, late}, testOpts())

	assert.Equal(t, at(12, 0), got["X"].Start)
}

func TestResolve_TransitiveChain(t *testing.T) {
	t.Parallel()

	a := mkTask("A")
	a.StartedAt = ptr(at(8, 0))
	a.EstimatedTime = 30
	b := mkTask("B", "A")
	b.EstimatedTime = 45
	c := mkTask("C", "B")
	c.EstimatedTime = 15

	got := Resolve([]task.Task{c, b, a}, testOpts())

	assert.Equal(t, at(8, 30), got["B"].Start)
	assert.Equal(t, at(9, 15), got["C"].Start)
	assert.Equal(t, at(9, 30), got["C"].End)
}

// ---- Edge cases -------------------------------------------------------------

func TestResolve_DanglingDependencyIgnored(t *testing.T) {
	t.Parallel()

	x := mkTask("X", "missing")
	x.DueDate = date(2024, 5, 5)

	got := Resolve([]task.Task{x}, testOpts())

	assert.Equal(t, time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC), got["X"].Start)
}

func TestResolve_SelfDependency(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	opts := testOpts()
	opts.Logger = log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	x := mkTask("X", "X")
	x.EstimatedTime = 10

	got := Resolve([]task.Task{x}, opts)

	require.Contains(t, got, "X")
	assert.Equal(t, fixedNow.Truncate(time.Minute), got["X"].Start)
	assert.Equal(t, 10*time.Minute, got["X"].Duration())
	assert.Contains(t, buf.String(), "dependency cycle detected")
}

func TestResolve_CycleDoesNotBlockOutsideDependent(t *testing.T) {
	t.Parallel()

	p := mkTask("P", "Q")
	p.StartTime = ptr(at(9, 0))
	p.EndTime = ptr(at(11, 0))
	q := mkTask("Q", "P")
	q.StartTime = ptr(at(9, 0))
	q.EndTime = ptr(at(10, 0))
	r := mkTask("R", "P")

	got := Resolve([]task.Task{p, q, r}, testOpts())

	assert.Equal(t, at(9, 0), got["P"].Start)
	assert.Equal(t, at(9, 0), got["Q"].Start)
	assert.Equal(t, at(11, 0), got["R"].Start)
}

func TestResolve_LongCycleTerminates(t *testing.T) {
	t.Parallel()

	const n = 500
	tasks := make([]task.Task, n)
	for i := 0; i < n; i++ {
		tasks[i] = mkTask(fmt.Sprintf("T%d", i), fmt.Sprintf("T%d", (i+1)%n))
	}

	got := Resolve(tasks, testOpts())

	require.Len(t, got, n)
	for id, iv := range got {
		assert.False(t, iv.End.Before(iv.Start), "task %s end before start", id)
	}
}

func TestResolve_NegativeEstimateClamped(t *testing.T) {
	t.Parallel()

	x := mkTask("X")
	x.StartTime = ptr(at(9, 0))
	x.EstimatedTime = -30

	got := Resolve([]task.Task{x}, testOpts())

	assert.Equal(t, at(10, 0), got["X"].End, "negative estimate behaves like zero")
}

func TestResolve_EndBeforeStartClamped(t *testing.T) {
	t.Parallel()

	x := mkTask("X")
	x.StartTime = ptr(at(10, 0))
	x.EndTime = ptr(at(9, 0))

	got := Resolve([]task.Task{x}, testOpts())

	assert.Equal(t, got["X"].Start, got["X"].End)
}

func TestResolve_CustomDefaultDuration(t *testing.T) {
	t.Parallel()

	x := mkTask("X")
	x.StartTime = ptr(at(9, 0))
	opts := testOpts()
	opts.DefaultDuration = 25 * time.Minute

	got := Resolve([]task.Task{x}, opts)

	assert.Equal(t, at(9, 25), got["X"].End)
}

func TestResolve_DueDateUsesWorkingLocation(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+5", 5*3600)
	x := mkTask("X")
	x.DueDate = date(2024, 6, 1)
	opts := testOpts()
	opts.Location = loc

	got := Resolve([]task.Task{x}, opts)

	assert.True(t, got["X"].Start.Equal(time.Date(2024, 5, 31, 19, 0, 0, 0, time.UTC)))
}

func TestResolve_IncludeFiltersOutputButNotTraversal(t *testing.T) {
	t.Parallel()

	hidden := mkTask("H")
	hidden.StartedAt = ptr(at(9, 0))
	hidden.EstimatedTime = 120
	hidden.Status = task.StatusCompleted
	shown := mkTask("S", "H")

	opts := testOpts()
	opts.Include = func(tk task.Task) bool { return tk.Status != task.StatusCompleted }

	got := Resolve([]task.Task{hidden, shown}, opts)

	assert.NotContains(t, got, "H")
	require.Contains(t, got, "S")
	assert.Equal(t, at(11, 0), got["S"].Start)
}

func TestResolve_EmptyInput(t *testing.T) {
	t.Parallel()

	got := Resolve(nil, testOpts())
	assert.Empty(t, got)
}

// ---- Properties -------------------------------------------------------------

func TestResolve_DependencyOrderingProperty(t *testing.T) {
	t.Parallel()

	tasks := chainFixture(50)
	got := Resolve(tasks, testOpts())

	for _, tk := range tasks {
		for _, dep := range tk.Dependencies {
			depIv, ok := got[dep]
			if !ok {
				continue
			}
			assert.False(t, got[tk.ID].Start.Before(depIv.End),
				"%s starts before dependency %s ends", tk.ID, dep)
		}
	}
}

func TestResolve_Idempotent(t *testing.T) {
	t.Parallel()

	tasks := chainFixture(30)
	tasks = append(tasks, mkTask("cyc1", "cyc2"), mkTask("cyc2", "cyc1"))

	first := Resolve(tasks, testOpts())
	second := Resolve(tasks, testOpts())

	assert.Equal(t, first, second)
	assert.Equal(t, Fingerprint(first, nil), Fingerprint(second, nil))
}

// chainFixture returns n tasks where every task depends on up to two earlier
// ones, with varied estimates and anchors.
func chainFixture(n int) []task.Task {
	tasks := make([]task.Task, 0, n)
	for i := 0; i < n; i++ {
		var deps []string
		if i > 0 {
			deps = append(deps, fmt.Sprintf("T%d", i-1))
		}
		if i > 2 && i%3 == 0 {
			deps = append(deps, fmt.Sprintf("T%d", i-3))
		}
		tk := mkTask(fmt.Sprintf("T%d", i), deps...)
		tk.EstimatedTime = 10 + (i%4)*15
		if i%5 == 0 {
			tk.StartTime = ptr(at(6, 0).Add(time.Duration(i) * time.Minute))
		}
		tasks = append(tasks, tk)
	}
	return tasks
}
