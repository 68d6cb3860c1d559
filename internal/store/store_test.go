package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/plotline/internal/task"
)

// ---- Helpers ----

func sampleTask(id, title string, deps ...string) task.Task {
	if deps == nil {
		deps = []string{}
	}
	return task.Task{
		ID:           id,
		Title:        title,
		Status:       task.StatusNotStarted,
		Dependencies: deps,
		CreatedAt:    time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func ids(tasks []task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

// backends returns a fresh instance of every backend for contract tests.
func backends(t *testing.T) map[string]Store {
	t.Helper()

	sq, err := NewSQLiteStore(MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sq.Close() })

	return map[string]Store{
		BackendFile:   NewFileStore(afero.NewMemMapFs(), "/data/tasks.json"),
		BackendSQLite: sq,
	}
}

// ---- Contract ----

func TestStore_EmptyList(t *testing.T) {
	t.Parallel()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			tasks, err := s.List(context.Background())
			require.NoError(t, err)
			assert.NotNil(t, tasks)
			assert.Empty(t, tasks)
		})
	}
}

func TestStore_PutPreservesInsertionOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put(ctx, sampleTask("c", "Third")))
			require.NoError(t, s.Put(ctx, sampleTask("a", "First")))
			require.NoError(t, s.Put(ctx, sampleTask("b", "Second")))

			tasks, err := s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"c", "a", "b"}, ids(tasks))
		})
	}
}

func TestStore_PutReplacesInPlace(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put(ctx, sampleTask("a", "A")))
			require.NoError(t, s.Put(ctx, sampleTask("b", "B")))

			updated := sampleTask("a", "A renamed", "b")
			updated.Status = task.StatusInProgress
			require.NoError(t, s.Put(ctx, updated))

			tasks, err := s.List(ctx)
			require.NoError(t, err)
			require.Equal(t, []string{"a", "b"}, ids(tasks))
			assert.Equal(t, "A renamed", tasks[0].Title)
			assert.Equal(t, task.StatusInProgress, tasks[0].Status)
			assert.Equal(t, []string{"b"}, tasks[0].Dependencies)
		})
	}
}

func TestStore_GetRoundTripsFields(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	start := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)
	due := task.Date{Year: 2024, Month: time.January, Day: 5}

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			in := sampleTask("x", "Full")
			in.Description = "all fields"
			in.StartTime = &start
			in.EndTime = &end
			in.DueDate = &due
			in.EstimatedTime = 45
			require.NoError(t, s.Put(ctx, in))

			got, err := s.Get(ctx, "x")
			require.NoError(t, err)
			assert.Equal(t, in.Title, got.Title)
			assert.Equal(t, in.Description, got.Description)
			require.NotNil(t, got.StartTime)
			assert.True(t, start.Equal(*got.StartTime))
			require.NotNil(t, got.EndTime)
			assert.True(t, end.Equal(*got.EndTime))
			require.NotNil(t, got.DueDate)
			assert.Equal(t, due, *got.DueDate)
			assert.Equal(t, 45, got.EstimatedTime)
		})
	}
}

func TestStore_GetMissing(t *testing.T) {
	t.Parallel()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(context.Background(), "nope")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.Contains(t, err.Error(), "nope")
		})
	}
}

func TestStore_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put(ctx, sampleTask("a", "A")))
			require.NoError(t, s.Put(ctx, sampleTask("b", "B")))
			require.NoError(t, s.Put(ctx, sampleTask("c", "C")))

			require.NoError(t, s.Delete(ctx, "b"))
			tasks, err := s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "c"}, ids(tasks))

			assert.ErrorIs(t, s.Delete(ctx, "b"), ErrNotFound)
		})
	}
}

func TestStore_PutRejectsEmptyID(t *testing.T) {
	t.Parallel()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			err := s.Put(context.Background(), sampleTask("", "No ID"))
			require.Error(t, err)
		})
	}
}

// ---- FileStore ----

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	ctx := context.Background()

	first := NewFileStore(fs, "/p/tasks.json")
	require.NoError(t, first.Put(ctx, sampleTask("a", "A")))

	second := NewFileStore(fs, "/p/tasks.json")
	tasks, err := second.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(tasks))

	exists, err := afero.Exists(fs, "/p/tasks.json.tmp")
	require.NoError(t, err)
	assert.False(t, exists, "temp file must be renamed away")
}

func TestFileStore_EmptyFileReadsAsEmpty(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/tasks.json", []byte("  \n"), 0o644))

	tasks, err := NewFileStore(fs, "/tasks.json").List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestFileStore_RejectsCorruptDocument(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/tasks.json", []byte("{not json"), 0o644))

	_, err := NewFileStore(fs, "/tasks.json").List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing store")
}

func TestFileStore_RejectsNewerVersion(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/tasks.json", []byte(`{"version": 99, "tasks": []}`), 0o644))

	_, err := NewFileStore(fs, "/tasks.json").List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format version 99")
}

func TestFileStore_CancelledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewFileStore(afero.NewMemMapFs(), "/tasks.json")
	_, err := s.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Put(ctx, sampleTask("a", "A")), context.Canceled)
}

// ---- SQLiteStore ----

func TestSQLiteStore_PersistsOnDisk(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "tasks.db")
	ctx := context.Background()

	first, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Put(ctx, sampleTask("a", "A")))
	require.NoError(t, first.Put(ctx, sampleTask("b", "B")))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer second.Close() //nolint:errcheck

	tasks, err := second.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(tasks))
}

// ---- Open ----

func TestOpen(t *testing.T) {
	t.Parallel()

	s, err := Open(BackendFile, "/x/tasks.json", afero.NewMemMapFs())
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = Open("", "/x/tasks.json", afero.NewMemMapFs())
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = Open(BackendSQLite, MemoryDSN, nil)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open("redis", "x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown backend "redis"`)
}
