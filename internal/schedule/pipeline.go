package schedule

import "github.com/AbdelazizMoustafa10m/plotline/internal/task"

// Timeline bundles the output of resolve-then-pack for a timeline renderer.
type Timeline struct {
	Schedule Schedule `json:"schedule" yaml:"schedule"`
	Spans    []Span   `json:"spans" yaml:"spans"`
	Layout   Layout   `json:"layout" yaml:"layout"`
}

// BuildTimeline resolves tasks and packs the resulting intervals into lanes.
func BuildTimeline(tasks []task.Task, opts Options) Timeline {
	s := Resolve(tasks, opts)
	spans := Spans(tasks, s)
	return Timeline{
		Schedule: s,
		Spans:    spans,
		Layout:   PackLanes(spans),
	}
}

// Fingerprint returns the digest of the timeline's schedule and layout.
func (tl Timeline) Fingerprint() uint64 {
	return Fingerprint(tl.Schedule, &tl.Layout)
}
