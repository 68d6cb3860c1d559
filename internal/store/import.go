package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/AbdelazizMoustafa10m/plotline/internal/logging"
	"github.com/AbdelazizMoustafa10m/plotline/internal/task"
)

// maxImportConcurrency bounds the number of task files read at once.
const maxImportConcurrency = 8

// Import reads read-only task files matching the doublestar patterns (for
// example "tasks/**/*.json") from fsys. Each file may hold a single task
// object, a JSON array of tasks, or a store document with a "tasks" array.
//
// Files are read concurrently but results are returned in sorted path order,
// so the outcome does not depend on scheduling.
func Import(ctx context.Context, fsys fs.FS, patterns []string) ([]task.Task, error) {
	logger := logging.New("store")
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("importing tasks: invalid glob pattern %q", pattern)
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("importing tasks: expanding %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	sort.Strings(paths)

	results := make([][]task.Task, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxImportConcurrency)

	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := fs.ReadFile(fsys, p)
			if err != nil {
				return fmt.Errorf("reading %q: %w", p, err)
			}
			tasks, err := decodeTaskFile(data)
			if err != nil {
				return fmt.Errorf("decoding %q: %w", p, err)
			}
			results[i] = tasks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("importing tasks: %w", err)
	}

	var out []task.Task
	for i, tasks := range results {
		logger.Debug("imported task file", "path", paths[i], "tasks", len(tasks))
		out = append(out, tasks...)
	}
	return out, nil
}

// decodeTaskFile accepts a task object, an array of tasks, or a document.
func decodeTaskFile(data []byte) ([]task.Task, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var tasks []task.Task
		if err := json.Unmarshal(trimmed, &tasks); err != nil {
			return nil, err
		}
		return tasks, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return nil, err
	}
	if _, ok := probe["tasks"]; ok {
		var doc document
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, err
		}
		return doc.Tasks, nil
	}

	var t task.Task
	if err := json.Unmarshal(trimmed, &t); err != nil {
		return nil, err
	}
	return []task.Task{t}, nil
}

// Merge appends extra to base, skipping tasks whose ID is already present.
// The first occurrence of an ID wins.
func Merge(base, extra []task.Task) []task.Task {
	logger := logging.New("store")
	ids := make(map[string]bool, len(base)+len(extra))
	out := make([]task.Task, 0, len(base)+len(extra))
	for _, t := range base {
		ids[t.ID] = true
		out = append(out, t)
	}
	for _, t := range extra {
		if ids[t.ID] {
			logger.Warn("imported task shadows an existing task, keeping the first", "task", t.ID)
			continue
		}
		ids[t.ID] = true
		out = append(out, t)
	}
	return out
}
