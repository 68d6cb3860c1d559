// Package store persists planner tasks as an ordered key/value collection.
//
// The scheduling engine never talks to a store; callers load a snapshot with
// List, run the pipeline over it, and write edits back with Put or Delete.
// Two backends are provided: a single JSON document on an afero filesystem
// and a SQLite table.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/AbdelazizMoustafa10m/plotline/internal/task"
)

// ErrNotFound is returned by Get and Delete when no task has the given ID.
var ErrNotFound = errors.New("task not found")

// Store is an ordered key/value collection of tasks keyed by ID.
type Store interface {
	// List returns every task in insertion order.
	List(ctx context.Context) ([]task.Task, error)
	// Get returns the task with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (task.Task, error)
	// Put inserts t at the end, or replaces the task with the same ID in
	// place.
	Put(ctx context.Context, t task.Task) error
	// Delete removes the task with the given ID or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
	// Close releases any resources held by the store.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Backends returns the supported backend names.
func Backends() []string {
	return []string{BackendFile, BackendSQLite}
}

// notFound wraps ErrNotFound with the task ID.
func notFound(id string) error {
	return fmt.Errorf("task %q: %w", id, ErrNotFound)
}
