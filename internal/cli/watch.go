package cli

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/plotline/internal/config"
	"github.com/AbdelazizMoustafa10m/plotline/internal/schedule"
	"github.com/AbdelazizMoustafa10m/plotline/internal/task"
	"github.com/AbdelazizMoustafa10m/plotline/internal/watch"
)

// watchFlags holds the flag values for the watch command.
type watchFlags struct {
	Status   statusFilter
	Debounce time.Duration
}

// newWatchCmd creates the "plotline watch" command.
func newWatchCmd() *cobra.Command {
	var flags watchFlags

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Recompute the schedule whenever tasks change on disk",
		Long: `Watch the task store and the directories of imported task files. After
each burst of changes the schedule is recomputed, and a summary line is
printed when the resolved intervals or the lane layout differ from the
previous run. Press Ctrl+C to stop.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runWatch(ctx, cmd, &flags)
		},
	}

	addStatusFlag(cmd.Flags(), &flags.Status)
	cmd.Flags().DurationVar(&flags.Debounce, "debounce", watch.DefaultDebounce, "Quiet period before recomputing")

	return cmd
}

func init() {
	rootCmd.AddCommand(newWatchCmd())
}

func runWatch(ctx context.Context, cmd *cobra.Command, flags *watchFlags) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close() //nolint:errcheck

	// The store directory must exist before it can be watched.
	if err := os.MkdirAll(filepath.Dir(ws.storePath), 0o755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}
	files := []string{ws.storePath}
	if ws.cfg.Store.Backend == config.BackendSQLite {
		files = append(files, ws.storePath+"-wal")
	}
	dirs, err := importDirs(ws.root, ws.cfg.Store.Import)
	if err != nil {
		return err
	}

	w, err := watch.New(watch.Options{Files: files, Dirs: dirs, Debounce: flags.Debounce})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	r := &refresher{ws: ws, out: out, include: flags.Status.Predicate()}
	if err := r.refresh(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), styleMuted.Render("Watching for changes. Press Ctrl+C to stop."))

	return w.Run(ctx, r.refresh)
}

// refresher recomputes the timeline and reports it when the fingerprint
// changes.
type refresher struct {
	ws      *workspace
	out     io.Writer
	include func(task.Task) bool
	last    uint64
	primed  bool
}

func (r *refresher) refresh(ctx context.Context) error {
	tasks, err := r.ws.tasks(ctx)
	if err != nil {
		return err
	}
	tl := schedule.BuildTimeline(tasks, r.ws.scheduleOptions(r.include))
	fp := tl.Fingerprint()
	if r.primed && fp == r.last {
		return nil
	}
	r.primed = true
	r.last = fp

	fmt.Fprintf(r.out, "%s %d task(s), %d lane(s), max %d concurrent, fingerprint %s\n",
		styleMuted.Render(nowFunc().Format("15:04:05")),
		len(tl.Spans), tl.Layout.Count, schedule.MaxConcurrent(tl.Spans), schedule.FormatFingerprint(fp))
	return nil
}

// importDirs returns the directories that can hold files matched by the
// import patterns: each pattern's static base directory and, for patterns
// that recurse, every directory below it.
func importDirs(root string, patterns []string) ([]string, error) {
	var dirs []string
	seen := make(map[string]bool)
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, pattern := range patterns {
		base, rest := doublestar.SplitPattern(filepath.ToSlash(pattern))
		dir := filepath.Join(root, filepath.FromSlash(base))
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		add(dir)
		if !strings.Contains(rest, "**") {
			continue
		}
		err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning import directory %q: %w", dir, err)
		}
	}
	return dirs, nil
}
