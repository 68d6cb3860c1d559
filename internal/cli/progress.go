package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/plotline/internal/task"
)

// progressBarWidth is the width of the rendered progress bar in cells.
const progressBarWidth = 40

// progressFlags holds the flag values for the progress command.
type progressFlags struct {
	JSON bool
}

// progressOutput is the JSON output type for the progress command.
type progressOutput struct {
	ProjectName string  `json:"project_name"`
	Total       int     `json:"total"`
	NotStarted  int     `json:"not_started"`
	InProgress  int     `json:"in_progress"`
	Completed   int     `json:"completed"`
	Archived    int     `json:"archived"`
	Blocked     int     `json:"blocked"`
	Percent     float64 `json:"percent"`
}

// newProgressCmd creates the "plotline progress" command.
func newProgressCmd() *cobra.Command {
	var flags progressFlags

	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show how many tasks are done with a progress bar",
		Long: `Summarize the task list by status. Archived tasks are left out of the
percentage. A task counts as blocked when it is not completed and at least
one of its dependencies is unfinished.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgress(cmd, flags)
		},
	}
	cmd.Flags().BoolVar(&flags.JSON, "json", false, "Output structured JSON to stdout")

	return cmd
}

func init() {
	rootCmd.AddCommand(newProgressCmd())
}

func runProgress(cmd *cobra.Command, flags progressFlags) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close() //nolint:errcheck

	tasks, err := ws.tasks(cmd.Context())
	if err != nil {
		return err
	}

	prog := computeProgress(tasks)
	prog.ProjectName = ws.cfg.Project.Name

	if flags.JSON {
		return writeJSON(cmd.OutOrStdout(), prog)
	}
	if prog.Total == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "No tasks found.")
		return nil
	}
	renderProgress(cmd.OutOrStdout(), prog)
	return nil
}

// computeProgress counts tasks per status and the blocked ones.
func computeProgress(tasks []task.Task) progressOutput {
	counts := task.StatusCounts(tasks)
	p := progressOutput{
		Total:      len(tasks),
		NotStarted: counts[task.StatusNotStarted],
		InProgress: counts[task.StatusInProgress],
		Completed:  counts[task.StatusCompleted],
		Archived:   counts[task.StatusArchived],
	}
	for _, t := range tasks {
		if t.Status == task.StatusCompleted || t.Status == task.StatusArchived {
			continue
		}
		if !task.CanComplete(t, tasks).OK {
			p.Blocked++
		}
	}
	if active := p.Total - p.Archived; active > 0 {
		p.Percent = float64(p.Completed) / float64(active) * 100
	}
	return p
}

// renderProgress writes a header, a progress bar and the per-status counts.
//
//	plotline - home
//	===============
//	████████████░░░░░░░░ 60% (6/10)
//	  6 completed, 2 in-progress, 2 not-started (1 blocked)
func renderProgress(w io.Writer, p progressOutput) {
	title := "plotline"
	if p.ProjectName != "" {
		title = "plotline - " + p.ProjectName
	}
	printHeader(w, title)

	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(progressBarWidth),
		progress.WithoutPercentage(),
	)
	active := p.Total - p.Archived
	fmt.Fprintf(w, "%s %.0f%% (%d/%d)\n", bar.ViewAs(p.Percent/100), p.Percent, p.Completed, active)

	var parts []string
	add := func(n int, label string, st task.Status) {
		if n > 0 {
			parts = append(parts, statusStyle(st).Render(fmt.Sprintf("%d %s", n, label)))
		}
	}
	add(p.Completed, "completed", task.StatusCompleted)
	add(p.InProgress, "in-progress", task.StatusInProgress)
	add(p.NotStarted, "not-started", task.StatusNotStarted)
	add(p.Archived, "archived", task.StatusArchived)

	line := "  " + strings.Join(parts, ", ")
	if p.Blocked > 0 {
		line += " " + lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render(fmt.Sprintf("(%d blocked)", p.Blocked))
	}
	fmt.Fprintln(w, line)
}
