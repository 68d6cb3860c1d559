package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/AbdelazizMoustafa10m/plotline/internal/task"
)

// ---------------------------------------------------------------------------
// Color Palette
// ---------------------------------------------------------------------------

// ColorPrimary is the main accent color used for titles and highlights.
var ColorPrimary = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7B78FF"}

// ColorSecondary is used for date buckets.
var ColorSecondary = lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#60A5FA"}

// ColorSuccess marks completed tasks.
var ColorSuccess = lipgloss.AdaptiveColor{Light: "#16A34A", Dark: "#4ADE80"}

// ColorWarning marks tasks in progress.
var ColorWarning = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// ColorError marks blocked transitions and failures.
var ColorError = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#F87171"}

// ColorMuted is a subdued foreground color for secondary text.
var ColorMuted = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}

// ColorSubtle provides very low-contrast tree guides and dividers.
var ColorSubtle = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#4B5563"}

// ---------------------------------------------------------------------------
// Theme
// ---------------------------------------------------------------------------

// Theme holds the Lipgloss styles shared by the tree renderer, the pager and
// the CLI tables.
type Theme struct {
	TitleBar  lipgloss.Style
	Root      lipgloss.Style
	Bucket    lipgloss.Style
	Guide     lipgloss.Style
	ID        lipgloss.Style
	Muted     lipgloss.Style
	HelpBar   lipgloss.Style
	Error     lipgloss.Style
	statusFgs map[task.Status]lipgloss.Style
}

// DefaultTheme returns the standard theme.
func DefaultTheme() Theme {
	return Theme{
		TitleBar: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(ColorPrimary).
			Padding(0, 1),
		Root:    lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary),
		Bucket:  lipgloss.NewStyle().Bold(true).Foreground(ColorSecondary),
		Guide:   lipgloss.NewStyle().Foreground(ColorSubtle),
		ID:      lipgloss.NewStyle().Foreground(ColorMuted),
		Muted:   lipgloss.NewStyle().Foreground(ColorMuted),
		HelpBar: lipgloss.NewStyle().Foreground(ColorMuted).Padding(0, 1),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(ColorError),
		statusFgs: map[task.Status]lipgloss.Style{
			task.StatusNotStarted: lipgloss.NewStyle(),
			task.StatusInProgress: lipgloss.NewStyle().Foreground(ColorWarning),
			task.StatusCompleted:  lipgloss.NewStyle().Foreground(ColorSuccess),
			task.StatusArchived:   lipgloss.NewStyle().Foreground(ColorMuted).Strikethrough(true),
		},
	}
}

// Status returns the style for a task status.
func (t Theme) Status(s task.Status) lipgloss.Style {
	if st, ok := t.statusFgs[s]; ok {
		return st
	}
	return lipgloss.NewStyle()
}

// StatusIcon returns a one-cell glyph for a task status.
func StatusIcon(s task.Status) string {
	switch s {
	case task.StatusInProgress:
		return "◐"
	case task.StatusCompleted:
		return "●"
	case task.StatusArchived:
		return "◌"
	default:
		return "○"
	}
}
