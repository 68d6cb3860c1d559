package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/plotline/internal/task"
)

// listFlags holds the flag values for the list command.
type listFlags struct {
	Status statusFilter
	Format *outputFormat
}

// newListCmd creates the "plotline list" command.
func newListCmd() *cobra.Command {
	flags := listFlags{Format: newOutputFormat(formatText, formatJSON, formatYAML)}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks in store order",
		Example: `  plotline list
  plotline list --status not_started,in_progress
  plotline list --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, &flags)
		},
	}

	addStatusFlag(cmd.Flags(), &flags.Status)
	cmd.Flags().VarP(flags.Format, "format", "f", "Output format: text, json, yaml")

	return cmd
}

func init() {
	rootCmd.AddCommand(newListCmd())
}

func runList(cmd *cobra.Command, flags *listFlags) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close() //nolint:errcheck

	all, err := ws.tasks(cmd.Context())
	if err != nil {
		return err
	}
	tasks := task.Filter(all, flags.Status.Predicate())

	out := cmd.OutOrStdout()
	if flags.Format.String() != formatText {
		return writeStructured(out, flags.Format.String(), tasks)
	}
	if len(tasks) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "No tasks found.")
		return nil
	}
	renderTaskTable(out, tasks, all, ws.cfg.Display.DateFormat)
	return nil
}

// renderTaskTable writes one row per task: id, status, due date, estimate,
// title and the number of unfinished dependencies.
func renderTaskTable(w io.Writer, tasks, working []task.Task, dateFormat string) {
	byID := task.Index(working)

	titleWidth := len("TITLE")
	for _, t := range tasks {
		if n := lipgloss.Width(t.Title); n > titleWidth {
			titleWidth = n
		}
	}

	header := fmt.Sprintf("%-8s  %-11s  %-10s  %6s  %-*s  %s",
		"ID", "STATUS", "DUE", "EST", titleWidth, "TITLE", "WAITING ON")
	fmt.Fprintln(w, styleHeader.Render(header))

	for _, t := range tasks {
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.In(nil).Format(dateFormat)
		}
		est := "-"
		if t.EstimatedTime > 0 {
			est = fmt.Sprintf("%dm", t.EstimatedTime)
		}

		var waiting []string
		for _, dep := range t.Dependencies {
			if d, ok := byID[dep]; ok && d.Status != task.StatusCompleted {
				waiting = append(waiting, shortID(dep))
			}
		}

		status := statusStyle(t.Status).Render(fmt.Sprintf("%-11s", t.Status))
		title := t.Title + strings.Repeat(" ", titleWidth-lipgloss.Width(t.Title))
		fmt.Fprintf(w, "%-8s  %s  %-10s  %6s  %s  %s\n",
			shortID(t.ID), status, due, est, title, styleMuted.Render(strings.Join(waiting, ",")))
	}
}
