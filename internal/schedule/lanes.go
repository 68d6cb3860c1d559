package schedule

import (
	"sort"
	"time"

	"github.com/AbdelazizMoustafa10m/plotline/internal/task"
)

// Span is a task interval as seen by the lane packer.
type Span struct {
	ID    string    `json:"id" yaml:"id"`
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
}

// Layout is the result of lane packing.
type Layout struct {
	// Lanes maps task ID to a zero-based lane index.
	Lanes map[string]int `json:"lanes" yaml:"lanes"`
	// Count is the number of lanes used.
	Count int `json:"count" yaml:"count"`
}

// Spans converts a schedule into spans in task collection order. Tasks that
// are not in the schedule (filtered out of the view) are skipped.
func Spans(tasks []task.Task, s Schedule) []Span {
	spans := make([]Span, 0, len(s))
	seen := make(map[string]bool, len(s))
	for _, t := range tasks {
		iv, ok := s[t.ID]
		if !ok || seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		spans = append(spans, Span{ID: t.ID, Start: iv.Start, End: iv.End})
	}
	return spans
}

// PackLanes assigns every span a lane so that spans sharing a lane never
// overlap. A span may start exactly when the previous span in its lane ends.
//
// Spans are ordered by start with the input order as a stable tie-break, then
// each goes into the first lane whose last end is not after its start; a new
// lane is opened when none fits. For start-sorted input this uses the minimum
// possible number of lanes, and the same input always yields the same layout.
func PackLanes(spans []Span) Layout {
	ordered := make([]Span, len(spans))
	copy(ordered, spans)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start.Before(ordered[j].Start)
	})

	layout := Layout{Lanes: make(map[string]int, len(spans))}
	var laneEnds []time.Time

	for _, sp := range ordered {
		end := sp.End
		if end.Before(sp.Start) {
			end = sp.Start
		}

		lane := -1
		for i, last := range laneEnds {
			if !last.After(sp.Start) {
				lane = i
				break
			}
		}
		if lane < 0 {
			lane = len(laneEnds)
			laneEnds = append(laneEnds, end)
		} else {
			laneEnds[lane] = end
		}
		layout.Lanes[sp.ID] = lane
	}

	layout.Count = len(laneEnds)
	return layout
}

// ByLane groups spans by their assigned lane, preserving start order within
// each lane. Spans missing from the layout are ignored.
func ByLane(spans []Span, l Layout) [][]Span {
	lanes := make([][]Span, l.Count)
	ordered := make([]Span, len(spans))
	copy(ordered, spans)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start.Before(ordered[j].Start)
	})
	for _, sp := range ordered {
		idx, ok := l.Lanes[sp.ID]
		if !ok || idx >= len(lanes) {
			continue
		}
		lanes[idx] = append(lanes[idx], sp)
	}
	return lanes
}

// MaxConcurrent returns the largest number of spans active at one instant,
// which is the lower bound on lanes for any valid layout. A span is active on
// [Start, End); a zero-length span counts as active at its start instant.
func MaxConcurrent(spans []Span) int {
	const (
		kindEnd = iota
		kindStart
		kindPointEnd
	)
	type event struct {
		at   time.Time
		kind int
	}

	events := make([]event, 0, 2*len(spans))
	for _, sp := range spans {
		events = append(events, event{at: sp.Start, kind: kindStart})
		if sp.End.After(sp.Start) {
			events = append(events, event{at: sp.End, kind: kindEnd})
		} else {
			events = append(events, event{at: sp.Start, kind: kindPointEnd})
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].at.Equal(events[j].at) {
			return events[i].at.Before(events[j].at)
		}
		return events[i].kind < events[j].kind
	})

	active, peak := 0, 0
	for _, ev := range events {
		if ev.kind == kindStart {
			active++
			if active > peak {
				peak = active
			}
			continue
		}
		active--
	}
	return peak
}
