package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"github.com/AbdelazizMoustafa10m/plotline/internal/task"
)

// fileFormatVersion is written into every task document.
const fileFormatVersion = 1

// document is the on-disk shape of a FileStore.
type document struct {
	Version int         `json:"version"`
	Tasks   []task.Task `json:"tasks"`
}

// FileStore keeps all tasks in one JSON document. Every mutation rewrites the
// whole file through a temp file and a rename, so readers never observe a
// partial write. A mutex serializes read-modify-write cycles within the
// process.
type FileStore struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
}

// NewFileStore returns a FileStore for path on fs. The file is created on the
// first write; a missing file reads as an empty collection.
func NewFileStore(fs afero.Fs, path string) *FileStore {
	return &FileStore{fs: fs, path: path}
}

// Path returns the document path.
func (s *FileStore) Path() string {
	return s.path
}

// List returns every task in document order.
func (s *FileStore) List(ctx context.Context) ([]task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Get returns the task with the given ID.
func (s *FileStore) Get(ctx context.Context, id string) (task.Task, error) {
	tasks, err := s.List(ctx)
	if err != nil {
		return task.Task{}, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return task.Task{}, notFound(id)
}

// Put inserts or replaces t.
func (s *FileStore) Put(ctx context.Context, t task.Task) error {
	if t.ID == "" {
		return fmt.Errorf("storing task: task ID must not be empty")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load()
	if err != nil {
		return fmt.Errorf("storing task %q: %w", t.ID, err)
	}

	replaced := false
	for i := range tasks {
		if tasks[i].ID == t.ID {
			tasks[i] = t
			replaced = true
			break
		}
	}
	if !replaced {
		tasks = append(tasks, t)
	}
	return s.writeAtomic(tasks)
}

// Delete removes the task with the given ID.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load()
	if err != nil {
		return fmt.Errorf("deleting task %q: %w", id, err)
	}

	kept := tasks[:0]
	found := false
	for _, t := range tasks {
		if t.ID == id {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	if !found {
		return notFound(id)
	}
	return s.writeAtomic(kept)
}

// Close is a no-op; FileStore holds no open handles between calls.
func (s *FileStore) Close() error {
	return nil
}

// load reads the document. Callers must hold s.mu.
func (s *FileStore) load() ([]task.Task, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []task.Task{}, nil
		}
		return nil, fmt.Errorf("loading store %q: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []task.Task{}, nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing store %q: %w", s.path, err)
	}
	if doc.Version > fileFormatVersion {
		return nil, fmt.Errorf("parsing store %q: unsupported format version %d", s.path, doc.Version)
	}
	if doc.Tasks == nil {
		doc.Tasks = []task.Task{}
	}
	return doc.Tasks, nil
}

// writeAtomic writes tasks to a temp file next to s.path and renames it over
// s.path. Callers must hold s.mu.
func (s *FileStore) writeAtomic(tasks []task.Task) error {
	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating store directory %q: %w", dir, err)
	}

	if tasks == nil {
		tasks = []task.Task{}
	}
	data, err := json.MarshalIndent(document{Version: fileFormatVersion, Tasks: tasks}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}
	data = append(data, '\n')

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		s.fs.Remove(tmp) //nolint:errcheck
		return fmt.Errorf("writing temp store file %q: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		s.fs.Remove(tmp) //nolint:errcheck
		return fmt.Errorf("renaming temp store file to %q: %w", s.path, err)
	}
	return nil
}
