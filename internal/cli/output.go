package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/AbdelazizMoustafa10m/plotline/internal/task"
)

// ---- Lipgloss styles --------------------------------------------------------

var (
	styleHeader    = lipgloss.NewStyle().Bold(true)
	styleSeparator = lipgloss.NewStyle()
	styleSection   = lipgloss.NewStyle().Bold(true)
	styleMuted     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))             // dark gray
	styleErrorLbl  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)  // red
	styleWarnLbl   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true) // yellow
	styleSuccess   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))            // green
)

// statusStyle returns the foreground style for a task status.
func statusStyle(s task.Status) lipgloss.Style {
	switch s {
	case task.StatusCompleted:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	case task.StatusInProgress:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	case task.StatusArchived:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // dark gray
	default:
		return lipgloss.NewStyle()
	}
}

// printHeader writes an underlined bold title.
func printHeader(out io.Writer, title string) {
	fmt.Fprintln(out, styleHeader.Render(title))
	fmt.Fprintln(out, styleSeparator.Render(strings.Repeat("=", lipgloss.Width(title))))
}

// ---- Output formats ---------------------------------------------------------

// Output formats accepted by --format.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// outputFormat is a pflag.Value restricted to a set of format names.
type outputFormat struct {
	value   string
	allowed []string
}

func newOutputFormat(allowed ...string) *outputFormat {
	return &outputFormat{value: formatText, allowed: allowed}
}

func (f *outputFormat) String() string { return f.value }

func (f *outputFormat) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, a := range f.allowed {
		if s == a {
			f.value = s
			return nil
		}
	}
	return fmt.Errorf("must be one of: %s", strings.Join(f.allowed, ", "))
}

func (f *outputFormat) Type() string { return "format" }

var _ pflag.Value = (*outputFormat)(nil)

// writeJSON encodes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeYAML encodes v as YAML with two-space indentation.
func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// writeStructured writes v in the json or yaml format.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		return writeJSON(w, v)
	case formatYAML:
		return writeYAML(w, v)
	default:
		return fmt.Errorf("unsupported structured format %q", format)
	}
}

// ---- Status filter ----------------------------------------------------------

// statusFilter is a repeatable, comma-separated --status flag.
type statusFilter struct {
	statuses []task.Status
}

func (f *statusFilter) String() string {
	parts := make([]string, len(f.statuses))
	for i, s := range f.statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ",")
}

func (f *statusFilter) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		s, err := task.ParseStatus(part)
		if err != nil {
			return err
		}
		f.statuses = append(f.statuses, s)
	}
	return nil
}

func (f *statusFilter) Type() string { return "status" }

// Append implements pflag.SliceValue.
func (f *statusFilter) Append(v string) error {
	return f.Set(v)
}

// Replace implements pflag.SliceValue.
func (f *statusFilter) Replace(vals []string) error {
	f.statuses = nil
	for _, v := range vals {
		if err := f.Set(v); err != nil {
			return err
		}
	}
	return nil
}

// GetSlice implements pflag.SliceValue.
func (f *statusFilter) GetSlice() []string {
	out := make([]string, len(f.statuses))
	for i, s := range f.statuses {
		out[i] = string(s)
	}
	return out
}

// Predicate returns the include function for the engine, nil when no status
// was given.
func (f *statusFilter) Predicate() func(task.Task) bool {
	return task.WithStatus(f.statuses...)
}

var _ pflag.SliceValue = (*statusFilter)(nil)

// addStatusFlag registers --status on fs.
func addStatusFlag(fs *pflag.FlagSet, f *statusFilter) {
	fs.VarP(f, "status", "s", "Only include tasks with this status (repeatable or comma-separated: not_started, in_progress, completed, archived)")
}

// shortID returns the first 8 characters of a task id.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
