package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newDeleteCmd creates the "plotline delete" command.
func newDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Remove a task from the store",
		Long: `Remove a stored task. Tasks that depend on it keep the dangling id; it no
longer blocks their completion and is ignored when scheduling.

Deleting a task that other tasks depend on requires --force.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeTaskIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, args[0], force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Delete even when other tasks depend on it")

	return cmd
}

func init() {
	rootCmd.AddCommand(newDeleteCmd())
}

func runDelete(cmd *cobra.Command, ref string, force bool) error {
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
	t, err := findTask(stored, ref)
	if err != nil {
		return err
	}

	all, err := ws.tasks(ctx)
	if err != nil {
		return err
	}
	var dependents []string
	for _, other := range all {
		if other.ID != t.ID && other.DependsOn(t.ID) {
			dependents = append(dependents, shortID(other.ID))
		}
	}
	if len(dependents) > 0 {
		if !force {
			return fmt.Errorf("task %q is a dependency of %v (use --force to delete anyway)", t.Title, dependents)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %d task(s) keep a dangling dependency on %s\n",
			styleWarnLbl.Render("Warning:"), len(dependents), shortID(t.ID))
	}

	if err := ws.store.Delete(ctx, t.ID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
		styleSuccess.Render("Deleted"), styleMuted.Render(shortID(t.ID)), t.Title)
	return nil
}
