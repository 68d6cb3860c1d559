package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/plotline/internal/store"
	"github.com/AbdelazizMoustafa10m/plotline/internal/task"
)

// editFlags holds the flag values for the edit command.
type editFlags struct {
	taskFieldFlags
	AddDeps    []string
	RemoveDeps []string
	JSON       bool
}

// newEditCmd creates the "plotline edit" command.
func newEditCmd() *cobra.Command {
	var flags editFlags

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change the fields of a stored task",
		Long: `Update the fields of a stored task. Only the flags that are given are
changed. Pass an empty value to clear an optional field, for example
--due "" or --start "".

Use the status command to change a task's status.`,
		Example: `  plotline edit 3f2a --title "Write the quarterly report"
  plotline edit 3f2a --due 2024-01-08 --estimate 90
  plotline edit 3f2a --add-dep 9c1e --remove-dep 77b0`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeTaskIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, args[0], &flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringSliceVar(&flags.AddDeps, "add-dep", nil, "Add a dependency (repeatable)")
	cmd.Flags().StringSliceVar(&flags.RemoveDeps, "remove-dep", nil, "Remove a dependency (repeatable)")
	cmd.Flags().BoolVar(&flags.JSON, "json", false, "Print the updated task as JSON")
	cmd.MarkFlagsMutuallyExclusive("depends-on", "add-dep")
	cmd.MarkFlagsMutuallyExclusive("depends-on", "remove-dep")

	return cmd
}

func init() {
	rootCmd.AddCommand(newEditCmd())
}

func runEdit(cmd *cobra.Command, ref string, flags *editFlags) error {
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
	known, err := ws.tasks(ctx)
	if err != nil {
		return err
	}

	t, err := findTask(stored, ref)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			if _, ierr := findTask(known, ref); ierr == nil {
				return fmt.Errorf("task %q comes from an imported file and cannot be edited", ref)
			}
		}
		return err
	}

	if err := flags.apply(cmd, &t, known, ws.loc); err != nil {
		return err
	}
	if cmd.Flags().Changed("add-dep") {
		added, err := resolveDependencyRefs(flags.AddDeps, known)
		if err != nil {
			return err
		}
		for _, id := range added {
			if !t.DependsOn(id) {
				t.Dependencies = append(t.Dependencies, id)
			}
		}
	}
	if cmd.Flags().Changed("remove-dep") {
		removed, err := resolveDependencyRefs(flags.RemoveDeps, known)
		if err != nil {
			return err
		}
		t.Dependencies = without(t.Dependencies, removed)
	}

	if err := task.Validate(&t); err != nil {
		return err
	}
	if err := ws.store.Put(ctx, t); err != nil {
		return err
	}

	if flags.JSON {
		return writeJSON(cmd.OutOrStdout(), t)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
		styleSuccess.Render("Updated"), styleMuted.Render(shortID(t.ID)), t.Title)
	return nil
}

// without returns ids with every element of drop removed, preserving order.
func without(ids, drop []string) []string {
	skip := make(map[string]bool, len(drop))
	for _, d := range drop {
		skip[d] = true
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !skip[id] {
			out = append(out, id)
		}
	}
	return out
}
