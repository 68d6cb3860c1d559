// Package hierarchy arranges planner tasks into a display forest: a single
// "All plans" node, one bucket per creation day, and under each bucket the
// root tasks with their dependents nested beneath them.
//
// The forest follows raw dependency edges, not resolved times. A task with
// several in-scope dependencies appears under each of them; nodes are value
// copies, so shared descendants are duplicated rather than shared.
package hierarchy

import (
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/AbdelazizMoustafa10m/plotline/internal/logging"
	"github.com/AbdelazizMoustafa10m/plotline/internal/task"
)

// Kind identifies what a Node represents.
type Kind string

const (
	// KindAll is the synthetic top-level node.
	KindAll Kind = "all"
	// KindDay is a creation-day bucket.
	KindDay Kind = "day"
	// KindTask is a task.
	KindTask Kind = "task"
)

// AllPlansTitle is the title of the synthetic top-level node.
const AllPlansTitle = "All plans"

// Node is one element of the forest.
type Node struct {
	Kind     Kind        `json:"kind" yaml:"kind"`
	ID       string      `json:"id,omitempty" yaml:"id,omitempty"`
	Title    string      `json:"title" yaml:"title"`
	Status   task.Status `json:"status,omitempty" yaml:"status,omitempty"`
	Date     string      `json:"date,omitempty" yaml:"date,omitempty"`
	Children []Node      `json:"children,omitempty" yaml:"children,omitempty"`
}

// Options controls Build.
type Options struct {
	// Location is used to find the creation day of each root. Nil means
	// time.Local.
	Location *time.Location

	// Include selects the working set. Tasks it rejects are not shown, but
	// they still count as referencing their dependencies. Nil includes
	// everything.
	Include func(task.Task) bool

	// Logger receives debug diagnostics. Nil uses the "hierarchy" component
	// logger.
	Logger *log.Logger
}

// Build returns the forest for tasks.
//
// A task is a root when none of its dependencies is in the working set and
// no task in the full collection lists it as a dependency. Working-set tasks
// that end up nowhere after the roots are expanded but are still connected
// to the working set (prerequisite heads, dependency cycles) are promoted to
// roots. Tasks with no in-scope edges whose only dependents are outside the
// working set are left out.
func Build(tasks []task.Task, opts Options) Node {
	b := newBuilder(tasks, opts)
	roots := b.roots()
	return Node{
		Kind:     KindAll,
		Title:    AllPlansTitle,
		Children: b.buckets(roots),
	}
}

type builder struct {
	working      []task.Task
	position     map[string]int
	inScope      map[string]*task.Task
	children     map[string][]string
	referenced   map[string]bool
	referencedIn map[string]bool
	placed       map[string]bool
	loc          *time.Location
	logger       *log.Logger
}

func newBuilder(tasks []task.Task, opts Options) *builder {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.New("hierarchy")
	}

	working := task.Filter(tasks, opts.Include)
	b := &builder{
		working:      working,
		position:     make(map[string]int, len(working)),
		inScope:      task.Index(working),
		children:     make(map[string][]string),
		referenced:   make(map[string]bool),
		referencedIn: make(map[string]bool),
		placed:       make(map[string]bool),
		loc:          loc,
		logger:       logger,
	}

	for i, t := range working {
		if _, dup := b.position[t.ID]; !dup {
			b.position[t.ID] = i
		}
	}

	for _, t := range tasks {
		for _, dep := range t.Dependencies {
			if dep != t.ID {
				b.referenced[dep] = true
			}
		}
	}

	for i, t := range working {
		if b.position[t.ID] != i {
			continue
		}
		seen := make(map[string]bool, len(t.Dependencies))
		for _, dep := range t.Dependencies {
			if dep == t.ID || seen[dep] {
				continue
			}
			seen[dep] = true
			if _, ok := b.inScope[dep]; !ok {
				continue
			}
			b.referencedIn[dep] = true
			b.children[dep] = append(b.children[dep], t.ID)
		}
	}
	return b
}

// hasInScopeDependency reports whether t lists a dependency that is in the
// working set. A self-reference counts.
func (b *builder) hasInScopeDependency(t task.Task) bool {
	for _, dep := range t.Dependencies {
		if _, ok := b.inScope[dep]; ok {
			return true
		}
	}
	return false
}

// roots returns the expanded root nodes in discovery order.
func (b *builder) roots() []Node {
	var roots []Node
	add := func(t task.Task) {
		roots = append(roots, b.expand(t.ID, map[string]bool{}))
	}

	// Strict roots.
	for i, t := range b.working {
		if b.position[t.ID] != i {
			continue
		}
		if !b.hasInScopeDependency(t) && !b.referenced[t.ID] {
			add(t)
		}
	}

	// Prerequisite heads whose dependents are in view.
	for i, t := range b.working {
		if b.position[t.ID] != i || b.placed[t.ID] {
			continue
		}
		if !b.hasInScopeDependency(t) && b.referencedIn[t.ID] {
			add(t)
		}
	}

	// Whatever is left hangs off a cycle. Root each cycle at its first member
	// in collection order; everything else is reached through expansion.
	for i, t := range b.working {
		if b.position[t.ID] != i || b.placed[t.ID] {
			continue
		}
		if b.onCycle(t.ID) {
			b.logger.Debug("rooting dependency cycle", "task", t.ID)
			add(t)
		}
	}

	for i, t := range b.working {
		if b.position[t.ID] != i || b.placed[t.ID] {
			continue
		}
		if b.hasInScopeDependency(t) || b.referencedIn[t.ID] {
			// Only self-referencing tasks get here.
			b.logger.Debug("task had no placement, treating as root", "task", t.ID)
			add(t)
			continue
		}
		b.logger.Debug("skipping task referenced only outside the view", "task", t.ID)
	}

	return roots
}

// expand builds the subtree for id. path holds the IDs on the current branch
// so that cycle edges are not followed twice.
func (b *builder) expand(id string, path map[string]bool) Node {
	t := b.inScope[id]
	b.placed[id] = true
	node := Node{Kind: KindTask, ID: t.ID, Title: t.Title, Status: t.Status}

	path[id] = true
	for _, childID := range b.children[id] {
		if path[childID] {
			b.logger.Debug("not expanding cycle edge", "parent", id, "child", childID)
			continue
		}
		node.Children = append(node.Children, b.expand(childID, path))
	}
	delete(path, id)
	return node
}

// onCycle reports whether id can reach itself by following dependent edges.
func (b *builder) onCycle(id string) bool {
	visited := make(map[string]bool)
	stack := append([]string(nil), b.children[id]...)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == id {
			return true
		}
		if visited[cur] {
			continue
		}
		visited[cur] = true
		stack = append(stack, b.children[cur]...)
	}
	return false
}

// buckets groups root nodes by the creation day of their task, newest day
// first, and orders roots within a day by creation instant with collection
// order as the tie-break.
func (b *builder) buckets(roots []Node) []Node {
	type entry struct {
		node    Node
		created time.Time
		pos     int
	}
	byDay := make(map[task.Date][]entry)
	for _, n := range roots {
		t := b.inScope[n.ID]
		day := task.DateOf(t.CreatedAt.In(b.loc))
		byDay[day] = append(byDay[day], entry{node: n, created: t.CreatedAt, pos: b.position[n.ID]})
	}

	days := make([]task.Date, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[j].Before(days[i]) })

	out := make([]Node, 0, len(days))
	for _, d := range days {
		entries := byDay[d]
		sort.SliceStable(entries, func(i, j int) bool {
			if !entries[i].created.Equal(entries[j].created) {
				return entries[i].created.Before(entries[j].created)
			}
			return entries[i].pos < entries[j].pos
		})
		bucket := Node{Kind: KindDay, Title: d.String(), Date: d.String()}
		for _, e := range entries {
			bucket.Children = append(bucket.Children, e.node)
		}
		out = append(out, bucket)
	}
	return out
}
