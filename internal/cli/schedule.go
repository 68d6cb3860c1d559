package cli

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/plotline/internal/schedule"
	"github.com/AbdelazizMoustafa10m/plotline/internal/task"
)

// scheduleFlags holds the flag values for the schedule command.
type scheduleFlags struct {
	Status      statusFilter
	Format      *outputFormat
	Fingerprint bool
}

// scheduleEntry is one row of the schedule in structured output.
type scheduleEntry struct {
	ID     string      `json:"id" yaml:"id"`
	Title  string      `json:"title" yaml:"title"`
	Status task.Status `json:"status" yaml:"status"`
	Start  time.Time   `json:"start" yaml:"start"`
	End    time.Time   `json:"end" yaml:"end"`
	AllDay bool        `json:"all_day" yaml:"all_day"`
	Lane   int         `json:"lane" yaml:"lane"`
}

// scheduleOutput is the structured output of the schedule command.
type scheduleOutput struct {
	Timezone    string          `json:"timezone" yaml:"timezone"`
	Fingerprint string          `json:"fingerprint" yaml:"fingerprint"`
	Lanes       int             `json:"lanes" yaml:"lanes"`
	Tasks       []scheduleEntry `json:"tasks" yaml:"tasks"`
}

// newScheduleCmd creates the "plotline schedule" command.
func newScheduleCmd() *cobra.Command {
	flags := scheduleFlags{Format: newOutputFormat(formatText, formatJSON, formatYAML)}

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Resolve every task to a concrete time interval",
		Long: `Compute a start and end for every task and print them in start order.

A task starts at the first of: the moment it was actually started, its
planned start pushed back past the end of its latest dependency, the end
of its latest dependency, the start of its due-date day, or now. Its end is
the planned end, the start plus the estimate, the end of the due-date day,
or the start plus the default duration.

--status restricts the output; dependencies outside the filter still push
start times back.`,
		Example: `  plotline schedule
  plotline schedule --status not_started,in_progress
  plotline schedule --format json
  plotline schedule --fingerprint`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(cmd, &flags)
		},
	}

	addStatusFlag(cmd.Flags(), &flags.Status)
	cmd.Flags().VarP(flags.Format, "format", "f", "Output format: text, json, yaml")
	cmd.Flags().BoolVar(&flags.Fingerprint, "fingerprint", false, "Print only the schedule fingerprint")

	return cmd
}

func init() {
	rootCmd.AddCommand(newScheduleCmd())
}

func runSchedule(cmd *cobra.Command, flags *scheduleFlags) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close() //nolint:errcheck

	tasks, err := ws.tasks(cmd.Context())
	if err != nil {
		return err
	}

	tl := schedule.BuildTimeline(tasks, ws.scheduleOptions(flags.Status.Predicate()))
	fp := schedule.FormatFingerprint(tl.Fingerprint())

	out := cmd.OutOrStdout()
	if flags.Fingerprint {
		fmt.Fprintln(out, fp)
		return nil
	}

	entries := scheduleEntries(tasks, tl, ws.loc)
	if flags.Format.String() != formatText {
		return writeStructured(out, flags.Format.String(), scheduleOutput{
			Timezone:    ws.loc.String(),
			Fingerprint: fp,
			Lanes:       tl.Layout.Count,
			Tasks:       entries,
		})
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "No tasks found.")
		return nil
	}
	renderSchedule(out, entries)
	fmt.Fprintln(out, styleMuted.Render(fmt.Sprintf("%d task(s), %d lane(s), fingerprint %s",
		len(entries), tl.Layout.Count, fp)))
	return nil
}

// scheduleEntries joins the timeline with task metadata, ordered by start
// with collection order as the tie-break.
func scheduleEntries(tasks []task.Task, tl schedule.Timeline, loc *time.Location) []scheduleEntry {
	byID := task.Index(tasks)
	entries := make([]scheduleEntry, 0, len(tl.Spans))
	for _, sp := range tl.Spans {
		t := byID[sp.ID]
		iv := tl.Schedule[sp.ID]
		entries = append(entries, scheduleEntry{
			ID:     sp.ID,
			Title:  t.Title,
			Status: t.Status,
			Start:  iv.Start.In(loc),
			End:    iv.End.In(loc),
			AllDay: iv.AllDay,
			Lane:   tl.Layout.Lanes[sp.ID],
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Start.Before(entries[j].Start)
	})
	return entries
}

// renderSchedule writes one line per entry:
//
//	2024-01-02 09:00 -> 10:30  [0] 3f2a9c1e  Write report
func renderSchedule(w io.Writer, entries []scheduleEntry) {
	const layout = "2006-01-02 15:04"
	for _, e := range entries {
		end := e.End.Format(layout)
		if sameDay(e.Start, e.End) {
			end = e.End.Format("15:04")
		}
		span := fmt.Sprintf("%s -> %-16s", e.Start.Format(layout), end)
		if e.AllDay {
			span = fmt.Sprintf("%-16s    %-16s", e.Start.Format("2006-01-02"), "(all day)")
		}
		fmt.Fprintf(w, "%s  [%d] %s  %s\n",
			span, e.Lane, styleMuted.Render(shortID(e.ID)), statusStyle(e.Status).Render(e.Title))
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
