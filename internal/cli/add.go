package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/plotline/internal/task"
)

// addFlags holds the flag values for the add command.
type addFlags struct {
	taskFieldFlags
	Interactive bool
	JSON        bool
}

// newAddCmd creates the "plotline add" command.
func newAddCmd() *cobra.Command {
	var flags addFlags

	cmd := &cobra.Command{
		Use:   "add [TITLE]",
		Short: "Add a task to the store",
		Long: `Create a new task with a generated id and status not_started.

Dependencies may be given as full ids or unique id prefixes. A dependency
that does not match any task is kept as-is with a warning; it never blocks
completion until a task with that id exists.`,
		Example: `  # A one-hour task due on Friday
  plotline add "Write report" --due 2024-01-05 --estimate 60

  # A task that waits for another one
  plotline add "Send report" --depends-on 3f2a

  # Fill the fields in a form
  plotline add --interactive`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, args, &flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.Interactive, "interactive", "i", false, "Fill in the task with an interactive form")
	cmd.Flags().BoolVar(&flags.JSON, "json", false, "Print the created task as JSON")
	flags.register(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(newAddCmd())
}

func runAdd(cmd *cobra.Command, args []string, flags *addFlags) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close() //nolint:errcheck

	ctx := cmd.Context()
	known, err := ws.tasks(ctx)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		if err := cmd.Flags().Set("title", args[0]); err != nil {
			return err
		}
	}

	if flags.Interactive {
		if err := runAddForm(cmd, flags); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Fprintln(cmd.ErrOrStderr(), "Aborted.")
				return nil
			}
			return fmt.Errorf("running form: %w", err)
		}
	}

	if strings.TrimSpace(flags.Title) == "" {
		return errors.New("a task title is required (pass it as an argument or use --interactive)")
	}

	t := task.NewTask(flags.Title, nowFunc())
	if err := flags.apply(cmd, &t, known, ws.loc); err != nil {
		return err
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
		styleSuccess.Render("Added"), styleMuted.Render(shortID(t.ID)), t.Title)
	return nil
}

// runAddForm prompts for the task fields and marks every answered field as
// changed so apply picks it up.
func runAddForm(cmd *cobra.Command, flags *addFlags) error {
	estimate := ""
	if flags.Estimate > 0 {
		estimate = strconv.Itoa(flags.Estimate)
	}
	deps := strings.Join(flags.DependsOn, ", ")

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&flags.Title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("title is required")
					}
					return nil
				}),
			huh.NewText().
				Title("Description").
				Value(&flags.Description),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Due date").
				Placeholder("YYYY-MM-DD").
				Value(&flags.Due).
				Validate(func(s string) error {
					if s == "" {
						return nil
					}
					_, err := task.ParseDate(s)
					return err
				}),
			huh.NewInput().
				Title("Planned start").
				Placeholder("YYYY-MM-DD HH:MM").
				Value(&flags.Start).
				Validate(validateOptionalTime),
			huh.NewInput().
				Title("Planned end").
				Placeholder("YYYY-MM-DD HH:MM").
				Value(&flags.End).
				Validate(validateOptionalTime),
			huh.NewInput().
				Title("Estimate (minutes)").
				Value(&estimate).
				Validate(func(s string) error {
					if s == "" {
						return nil
					}
					n, err := strconv.Atoi(s)
					if err != nil || n < 0 {
						return errors.New("enter a non-negative number of minutes")
					}
					return nil
				}),
			huh.NewInput().
				Title("Depends on").
				Description("Comma-separated task ids or prefixes").
				Value(&deps),
		),
	).WithTheme(huh.ThemeCharm())

	if err := form.Run(); err != nil {
		return err
	}

	if estimate != "" {
		n, err := strconv.Atoi(estimate)
		if err != nil {
			return fmt.Errorf("parsing estimate: %w", err)
		}
		flags.Estimate = n
	}
	flags.DependsOn = splitList(deps)

	// The form writes straight into the bound flag variables; mark the
	// answered fields so apply treats them like command-line flags.
	answered := map[string]bool{
		"title":       flags.Title != "",
		"description": flags.Description != "",
		"due":         flags.Due != "",
		"start":       flags.Start != "",
		"end":         flags.End != "",
		"estimate":    estimate != "",
		"depends-on":  len(flags.DependsOn) > 0,
	}
	for name, ok := range answered {
		if ok {
			cmd.Flags().Lookup(name).Changed = true
		}
	}
	return nil
}

// splitList splits a comma-separated list and drops empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func validateOptionalTime(s string) error {
	if s == "" {
		return nil
	}
	_, err := parseTimeFlag(s, time.Local)
	return err
}
