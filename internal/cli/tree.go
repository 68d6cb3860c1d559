package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/plotline/internal/hierarchy"
	"github.com/AbdelazizMoustafa10m/plotline/internal/tui"
)

// treeFlags holds the flag values for the tree command.
type treeFlags struct {
	Status      statusFilter
	Format      *outputFormat
	IDs         bool
	Interactive bool
}

// newTreeCmd creates the "plotline tree" command.
func newTreeCmd() *cobra.Command {
	flags := treeFlags{Format: newOutputFormat(formatText, formatJSON, formatYAML)}

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show tasks as a dependency tree grouped by creation day",
		Long: `Arrange tasks under "All plans", one group per creation day (newest
first). Within a day, tasks without in-scope dependencies are roots and the
tasks that depend on them are nested beneath. A task with several
dependencies appears under each of them.`,
		Example: `  plotline tree
  plotline tree --status not_started --ids
  plotline tree --interactive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(cmd, &flags)
		},
	}

	addStatusFlag(cmd.Flags(), &flags.Status)
	cmd.Flags().VarP(flags.Format, "format", "f", "Output format: text, json, yaml")
	cmd.Flags().BoolVar(&flags.IDs, "ids", false, "Show short task ids")
	cmd.Flags().BoolVarP(&flags.Interactive, "interactive", "i", false, "Browse the tree in a scrollable pager")
	cmd.MarkFlagsMutuallyExclusive("interactive", "format")

	return cmd
}

func init() {
	rootCmd.AddCommand(newTreeCmd())
}

func runTree(cmd *cobra.Command, flags *treeFlags) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close() //nolint:errcheck

	tasks, err := ws.tasks(cmd.Context())
	if err != nil {
		return err
	}

	root := hierarchy.Build(tasks, ws.hierarchyOptions(flags.Status.Predicate()))
	out := cmd.OutOrStdout()

	if flags.Format.String() != formatText {
		return writeStructured(out, flags.Format.String(), root)
	}

	if flags.Interactive {
		title := "plotline"
		if ws.cfg.Project.Name != "" {
			title = ws.cfg.Project.Name
		}
		return tui.RunPager(tui.PagerConfig{
			Title:      fmt.Sprintf("%s (%d entries)", title, len(root.TaskIDs())),
			Tree:       root,
			DateFormat: ws.cfg.Display.DateFormat,
		})
	}

	fmt.Fprintln(out, tui.RenderTree(root, tui.DefaultTheme(), tui.TreeOptions{
		DateFormat: ws.cfg.Display.DateFormat,
		ShowIDs:    flags.IDs,
	}))
	return nil
}
