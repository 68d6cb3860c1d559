package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/plotline/internal/schedule"
	"github.com/AbdelazizMoustafa10m/plotline/internal/task"
)

// timelineFlags holds the flag values for the timeline command.
type timelineFlags struct {
	Status statusFilter
	Format *outputFormat
	Width  int
}

// timelineOutput is the structured output of the timeline command.
type timelineOutput struct {
	schedule.Timeline `yaml:",inline"`
	MaxConcurrent     int    `json:"max_concurrent" yaml:"max_concurrent"`
	Fingerprint       string `json:"fingerprint" yaml:"fingerprint"`
}

// laneFills alternate between neighbouring spans so that back-to-back tasks
// in one lane stay distinguishable.
var laneFills = []string{"█", "▓"}

// newTimelineCmd creates the "plotline timeline" command.
func newTimelineCmd() *cobra.Command {
	flags := timelineFlags{Format: newOutputFormat(formatText, formatJSON, formatYAML)}

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Draw the schedule as non-overlapping lanes",
		Long: `Pack the resolved intervals into lanes so that no two tasks in a lane
overlap, then draw each lane as a bar across the scheduled range. A task may
start in the same lane exactly when the previous one ends.

The footer shows the number of lanes and the largest number of tasks that
run at the same moment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTimeline(cmd, &flags)
		},
	}

	addStatusFlag(cmd.Flags(), &flags.Status)
	cmd.Flags().VarP(flags.Format, "format", "f", "Output format: text, json, yaml")
	cmd.Flags().IntVarP(&flags.Width, "width", "w", 0, "Bar width in cells (default: display.lane_width)")

	return cmd
}

func init() {
	rootCmd.AddCommand(newTimelineCmd())
}

func runTimeline(cmd *cobra.Command, flags *timelineFlags) error {
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
	out := cmd.OutOrStdout()

	if flags.Format.String() != formatText {
		return writeStructured(out, flags.Format.String(), timelineOutput{
			Timeline:      tl,
			MaxConcurrent: schedule.MaxConcurrent(tl.Spans),
			Fingerprint:   schedule.FormatFingerprint(tl.Fingerprint()),
		})
	}

	if len(tl.Spans) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "No tasks found.")
		return nil
	}

	width := flags.Width
	if width <= 0 {
		width = ws.cfg.Display.LaneWidth
	}
	renderTimeline(out, tl, task.Index(tasks), width, ws.loc)
	return nil
}

// renderTimeline draws one row per lane.
//
//	2024-01-02 09:00 -> 2024-01-02 13:00
//	lane 0 |████████▓▓▓▓▓▓▓▓        | 3f2a9c1e 77b01c2d
//	lane 1 |        ████████████████| 9c1e5a3b
//	2 lane(s), max 2 concurrent
func renderTimeline(w io.Writer, tl schedule.Timeline, byID map[string]*task.Task, width int, loc *time.Location) {
	from, to := tl.Spans[0].Start, tl.Spans[0].End
	for _, sp := range tl.Spans[1:] {
		if sp.Start.Before(from) {
			from = sp.Start
		}
		if sp.End.After(to) {
			to = sp.End
		}
	}

	const layout = "2006-01-02 15:04"
	fmt.Fprintln(w, styleSection.Render(fmt.Sprintf("%s -> %s", from.In(loc).Format(layout), to.In(loc).Format(layout))))

	labelWidth := len(fmt.Sprintf("lane %d", tl.Layout.Count-1))
	for lane, spans := range schedule.ByLane(tl.Spans, tl.Layout) {
		cells := make([]string, width)
		for i := range cells {
			cells[i] = " "
		}
		ids := make([]string, 0, len(spans))
		for i, sp := range spans {
			lo, hi := cellRange(sp, from, to, width)
			fill := laneFills[i%len(laneFills)]
			if t, ok := byID[sp.ID]; ok {
				fill = statusStyle(t.Status).Render(fill)
			}
			for c := lo; c < hi; c++ {
				cells[c] = fill
			}
			ids = append(ids, shortID(sp.ID))
		}
		label := fmt.Sprintf("%-*s", labelWidth, fmt.Sprintf("lane %d", lane))
		fmt.Fprintf(w, "%s |%s| %s\n", label, strings.Join(cells, ""), styleMuted.Render(strings.Join(ids, " ")))
	}

	fmt.Fprintln(w, styleMuted.Render(fmt.Sprintf("%d lane(s), max %d concurrent",
		tl.Layout.Count, schedule.MaxConcurrent(tl.Spans))))
}

// cellRange maps a span onto [lo, hi) cells of a bar covering [from, to].
// Every span gets at least one cell.
func cellRange(sp schedule.Span, from, to time.Time, width int) (int, int) {
	total := to.Sub(from)
	if total <= 0 {
		return 0, width
	}
	// float64 keeps width * offset from overflowing on multi-year ranges.
	scale := func(t time.Time) int {
		return int(float64(width) * float64(t.Sub(from)) / float64(total))
	}
	lo := min(max(scale(sp.Start), 0), width-1)
	hi := min(max(scale(sp.End), lo+1), width)
	return lo, hi
}
