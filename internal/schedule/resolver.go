// Package schedule derives effective time intervals for planner tasks and
// packs them into non-overlapping timeline lanes.
//
// Resolve walks the dependency graph with a per-call memo and an explicit
// "currently resolving" stack, so cycles are detected as a first-class step
// rather than by running out of stack. PackLanes assigns lanes with the
// greedy earliest-fit rule over intervals sorted by start.
//
// Both functions are pure: the same snapshot always yields the same result,
// and nothing survives between calls.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/AbdelazizMoustafa10m/plotline/internal/logging"
	"github.com/AbdelazizMoustafa10m/plotline/internal/task"
)

// DefaultDuration is the length given to a task that has neither an estimate,
// an explicit end, nor an all-day anchor.
const DefaultDuration = 60 * time.Minute

// Interval is the resolved placement of a single task.
type Interval struct {
	Start  time.Time `json:"start" yaml:"start"`
	End    time.Time `json:"end" yaml:"end"`
	AllDay bool      `json:"all_day" yaml:"all_day"`
}

// Duration returns End - Start.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Schedule maps task IDs to their resolved intervals.
type Schedule map[string]Interval

// Options controls a resolution pass.
type Options struct {
	// Now anchors tasks that have no other start. Zero means time.Now().
	Now time.Time

	// Location is the working time zone for date-only anchors. Nil means
	// time.Local.
	Location *time.Location

	// DefaultDuration overrides the 60-minute fallback length when positive.
	DefaultDuration time.Duration

	// Include restricts which tasks appear in the returned Schedule.
	// Resolution still traverses every task so that dependency ends are
	// correct for the tasks that are returned. Nil includes everything.
	Include func(task.Task) bool

	// Logger receives cycle diagnostics. Nil uses the "schedule" component
	// logger.
	Logger *log.Logger
}

// Resolve computes an Interval for every task in tasks (or every task
// accepted by opts.Include).
//
// Start precedence is StartedAt, then the later of StartTime and the latest
// in-scope dependency end, then the start of the due-date day, then Now
// truncated to the minute. Dependency ids that are not in tasks are skipped.
// Cycles never fail the pass: the cyclic contribution is dropped, members of
// the cycle fall back to their own anchors, and a warning is logged.
func Resolve(tasks []task.Task, opts Options) Schedule {
	r := newResolver(tasks, opts)
	for i := range tasks {
		r.resolve(tasks[i].ID)
	}

	out := make(Schedule, len(tasks))
	for _, t := range tasks {
		if opts.Include != nil && !opts.Include(t) {
			continue
		}
		iv, ok := r.memo[t.ID]
		if !ok {
			panic(fmt.Sprintf("schedule: task %q has no resolved interval after a full pass", t.ID))
		}
		out[t.ID] = iv
	}
	return out
}

// resolver holds the state of one resolution pass.
type resolver struct {
	byID     map[string]*task.Task
	memo     map[string]Interval
	stack    []string
	onStack  map[string]int
	cycles   *cycleGroups
	now      time.Time
	loc      *time.Location
	fallback time.Duration
	logger   *log.Logger
}

func newResolver(tasks []task.Task, opts Options) *resolver {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	fallback := opts.DefaultDuration
	if fallback <= 0 {
		fallback = DefaultDuration
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.New("schedule")
	}

	return &resolver{
		byID:     task.Index(tasks),
		memo:     make(map[string]Interval, len(tasks)),
		onStack:  make(map[string]int),
		cycles:   newCycleGroups(),
		now:      now.In(loc),
		loc:      loc,
		fallback: fallback,
		logger:   logger,
	}
}

// resolve returns the interval for id and whether it may contribute to a
// dependent. A false result means id is already being resolved higher up the
// current chain, i.e. a cycle closed here.
func (r *resolver) resolve(id string) (Interval, bool) {
	if pos, resolving := r.onStack[id]; resolving {
		members := r.stack[pos:]
		r.cycles.join(members...)
		path := append(append([]string{}, members...), id)
		r.logger.Warn("dependency cycle detected", "task", id, "path", strings.Join(path, " -> "))
		return Interval{}, false
	}
	if iv, ok := r.memo[id]; ok {
		return iv, true
	}

	t := r.byID[id]
	r.onStack[id] = len(r.stack)
	r.stack = append(r.stack, id)

	var depEnd *time.Time
	for _, depID := range t.Dependencies {
		if _, inScope := r.byID[depID]; !inScope {
			continue
		}
		iv, ok := r.resolve(depID)
		if !ok {
			continue
		}
		// Members of one cycle never push each other.
		if r.cycles.same(id, depID) {
			continue
		}
		if depEnd == nil || iv.End.After(*depEnd) {
			end := iv.End
			depEnd = &end
		}
	}

	iv := r.place(t, depEnd)
	r.memo[id] = iv

	r.stack = r.stack[:len(r.stack)-1]
	delete(r.onStack, id)
	return iv, true
}

// place computes the interval of t given the latest dependency end.
func (r *resolver) place(t *task.Task, depEnd *time.Time) Interval {
	var (
		start       time.Time
		fromPlanned bool
	)
	switch {
	case t.StartedAt != nil:
		start = *t.StartedAt
	case t.StartTime != nil:
		start = *t.StartTime
		fromPlanned = true
		if depEnd != nil && depEnd.After(start) {
			start = *depEnd
		}
	case depEnd != nil:
		start = *depEnd
	case t.DueDate != nil:
		start = t.DueDate.In(r.loc)
	default:
		start = r.now.Truncate(time.Minute)
	}

	allDay := t.StartedAt == nil && t.StartTime == nil && t.DueDate != nil

	var end time.Time
	switch {
	case fromPlanned && t.EndTime != nil:
		end = start.Add(t.EndTime.Sub(*t.StartTime))
	case t.EndTime != nil && !t.EndTime.Before(start):
		end = *t.EndTime
	case t.Estimate() > 0:
		end = start.Add(t.Estimate())
	case allDay:
		end = endOfDay(start, r.loc)
	default:
		end = start.Add(r.fallback)
	}
	if end.Before(start) {
		end = start
	}

	return Interval{Start: start, End: end, AllDay: allDay}
}

// endOfDay returns the last instant of t's calendar day in loc.
func endOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc).Add(-time.Nanosecond)
}

// cycleGroups is a small union-find over task IDs that were found on the same
// dependency cycle during one pass.
type cycleGroups struct {
	parent map[string]string
}

func newCycleGroups() *cycleGroups {
	return &cycleGroups{parent: make(map[string]string)}
}

func (g *cycleGroups) find(id string) (string, bool) {
	p, ok := g.parent[id]
	if !ok {
		return "", false
	}
	for p != id {
		next := g.parent[p]
		g.parent[id] = next
		id, p = p, next
	}
	return p, true
}

func (g *cycleGroups) join(ids ...string) {
	if len(ids) == 0 {
		return
	}
	for _, id := range ids {
		if _, ok := g.parent[id]; !ok {
			g.parent[id] = id
		}
	}
	root, _ := g.find(ids[0])
	for _, id := range ids[1:] {
		r, _ := g.find(id)
		if r != root {
			g.parent[r] = root
		}
	}
}

func (g *cycleGroups) same(a, b string) bool {
	ra, okA := g.find(a)
	rb, okB := g.find(b)
	return okA && okB && ra == rb
}
