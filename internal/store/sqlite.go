package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/AbdelazizMoustafa10m/plotline/internal/task"
)

// MemoryDSN opens a private in-memory SQLite database.
const MemoryDSN = ":memory:"

// SQLiteStore keeps tasks in a single table keyed by ID. The task body is
// stored as JSON; position preserves insertion order.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path. MemoryDSN opens an
// in-memory database, which is what tests use.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != MemoryDSN {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite store %q: %w", path, err)
	}
	// An in-memory database lives and dies with its connection.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing sqlite store %q: %w", path, err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS tasks (
		id       TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		body     TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tasks_position ON tasks(position);`
	_, err := s.db.Exec(schema)
	return err
}

// List returns every task ordered by insertion position.
func (s *SQLiteStore) List(ctx context.Context) ([]task.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT body FROM tasks ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	tasks := []task.Task{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning task row: %w", err)
		}
		var t task.Task
		if err := json.Unmarshal([]byte(body), &t); err != nil {
			return nil, fmt.Errorf("decoding task row: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating task rows: %w", err)
	}
	return tasks, nil
}

// Get returns the task with the given ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (task.Task, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM tasks WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return task.Task{}, notFound(id)
	}
	if err != nil {
		return task.Task{}, fmt.Errorf("getting task %q: %w", id, err)
	}

	var t task.Task
	if err := json.Unmarshal([]byte(body), &t); err != nil {
		return task.Task{}, fmt.Errorf("decoding task %q: %w", id, err)
	}
	return t, nil
}

// Put inserts t after the last task, or replaces the body of an existing
// task while keeping its position.
func (s *SQLiteStore) Put(ctx context.Context, t task.Task) error {
	if t.ID == "" {
		return fmt.Errorf("storing task: task ID must not be empty")
	}
	body, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encoding task %q: %w", t.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, position, body)
		VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM tasks), ?)
		ON CONFLICT(id) DO UPDATE SET body = excluded.body`,
		t.ID, string(body))
	if err != nil {
		return fmt.Errorf("storing task %q: %w", t.ID, err)
	}
	return nil
}

// Delete removes the task with the given ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting task %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting task %q: %w", id, err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
