package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/plotline/internal/store"
	"github.com/AbdelazizMoustafa10m/plotline/internal/task"
)

// statusFlags holds the flag values for the status command.
type statusFlags struct {
	JSON bool
}

// newStatusCmd creates the "plotline status" command.
func newStatusCmd() *cobra.Command {
	var flags statusFlags

	cmd := &cobra.Command{
		Use:   "status ID STATUS",
		Short: "Move a task to another status",
		Long: `Change the status of a stored task. STATUS is one of not_started,
in_progress, completed or archived (hyphens are accepted).

Completing a task is refused while any of its dependencies is not
completed. Dependencies that do not exist do not block. Reopening,
archiving and unarchiving are always allowed.

Starting a task records when it was first started. Completing it records
the completion time, and reopening a completed task clears it.`,
		Example: `  plotline status 3f2a in-progress
  plotline status 3f2a completed`,
		Args: cobra.ExactArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return completeTaskIDs(cmd, args, toComplete)
			}
			if len(args) != 1 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			names := make([]string, 0, len(task.ValidStatuses()))
			for _, s := range task.ValidStatuses() {
				names = append(names, string(s))
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, args[0], args[1], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.JSON, "json", false, "Print the updated task as JSON")

	return cmd
}

func init() {
	rootCmd.AddCommand(newStatusCmd())
}

// runStatus applies a guarded status transition to a stored task. The
// completion check runs against every task, imported ones included.
func runStatus(cmd *cobra.Command, ref, target string, flags statusFlags) error {
	to, err := task.ParseStatus(target)
	if err != nil {
		return err
	}

	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close() //nolint:errcheck

	ctx := cmd.Context()
	stored, err := ws.store.List(ctx)
	if err != nil {
		return err
	}
	working, err := ws.tasks(ctx)
	if err != nil {
		return err
	}

	t, err := findTask(stored, ref)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			if _, ierr := findTask(working, ref); ierr == nil {
				return fmt.Errorf("task %q comes from an imported file; change its status there", ref)
			}
		}
		return err
	}
	from := t.Status

	if err := task.Transition(&t, to, working, nowFunc()); err != nil {
		var blocked *task.BlockedError
		if errors.As(err, &blocked) {
			fmt.Fprintln(cmd.ErrOrStderr(), renderBlocked(blocked))
		}
		return err
	}
	if err := ws.store.Put(ctx, t); err != nil {
		return err
	}

	if flags.JSON {
		return writeJSON(cmd.OutOrStdout(), t)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s -> %s\n",
		styleMuted.Render(shortID(t.ID)), t.Title,
		statusStyle(from).Render(string(from)), statusStyle(to).Render(string(to)))
	return nil
}

// renderBlocked explains which dependency prevents completion.
//
//	Blocked: "Send report" waits on "Write report" (3f2a9c1e)
func renderBlocked(b *task.BlockedError) string {
	var sb strings.Builder
	sb.WriteString(styleErrorLbl.Render("Blocked:"))
	sb.WriteString(fmt.Sprintf(" %q waits on %q", b.TaskTitle, b.BlockingTitle))
	sb.WriteString(" ")
	sb.WriteString(styleMuted.Render("(" + shortID(b.BlockingID) + ")"))
	return sb.String()
}
