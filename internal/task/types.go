package task

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the lifecycle state of a task.
type Status string

const (
	// StatusNotStarted indicates the task has not begun.
	StatusNotStarted Status = "not_started"

	// StatusInProgress indicates the task is currently being worked on.
	StatusInProgress Status = "in_progress"

	// StatusCompleted indicates the task is done.
	StatusCompleted Status = "completed"

	// StatusArchived indicates the task was put away. Archived is terminal by
	// convention only; nothing prevents leaving it.
	StatusArchived Status = "archived"
)

// validStatuses is the set of all known Status values.
var validStatuses = map[Status]bool{
	StatusNotStarted: true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusArchived:   true,
}

// ValidStatuses returns all valid task status values in lifecycle order.
func ValidStatuses() []Status {
	return []Status{StatusNotStarted, StatusInProgress, StatusCompleted, StatusArchived}
}

// IsValid returns true if the status is a recognized value.
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// ParseStatus converts user input such as "in-progress" or "Completed" into a
// Status. Hyphens and spaces are accepted in place of underscores.
func ParseStatus(s string) (Status, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	st := Status(norm)
	if !st.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// Task is a single planner entry. Dependencies point from this task to the
// prerequisites it waits on.
type Task struct {
	ID            string     `json:"id" yaml:"id" validate:"required"`
	Title         string     `json:"title" yaml:"title" validate:"required"`
	Description   string     `json:"description,omitempty" yaml:"description,omitempty"`
	Status        Status     `json:"status" yaml:"status" validate:"required,oneof=not_started in_progress completed archived"`
	Dependencies  []string   `json:"dependencies" yaml:"dependencies" validate:"dive,required"`
	DueDate       *Date      `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	StartTime     *time.Time `json:"start_time,omitempty" yaml:"start_time,omitempty"`
	EndTime       *time.Time `json:"end_time,omitempty" yaml:"end_time,omitempty"`
	EstimatedTime int        `json:"estimated_time" yaml:"estimated_time" validate:"gte=0"`
	StartedAt     *time.Time `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at" yaml:"created_at" validate:"required"`
}

// DependsOn returns true if id is listed in t.Dependencies.
func (t *Task) DependsOn(id string) bool {
	for _, dep := range t.Dependencies {
		if dep == id {
			return true
		}
	}
	return false
}

// Estimate returns EstimatedTime as a duration. Negative estimates are
// clamped to zero.
func (t *Task) Estimate() time.Duration {
	if t.EstimatedTime <= 0 {
		return 0
	}
	return time.Duration(t.EstimatedTime) * time.Minute
}

// Date is a calendar date without a time of day. It marshals as
// "2006-01-02".
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateLayout is the textual form of a Date.
const DateLayout = "2006-01-02"

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// In returns midnight at the start of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Before reports whether d falls on an earlier day than o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// String returns the "YYYY-MM-DD" form of d.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText implements encoding.TextMarshaler for JSON and YAML.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for JSON and YAML.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
