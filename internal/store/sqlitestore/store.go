// Package sqlitestore persists todo items in a local SQLite database.
//
// Every listing and bulk operation is scoped to "today": the local calendar
// day of the store's clock. created_at is kept in UTC.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"

	"github.com/idilsaglam/todos/internal/model"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const timeLayout = "2006-01-02 15:04:05"

const schema = `
CREATE TABLE IF NOT EXISTS todos (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL,
	description TEXT,
	done        INTEGER NOT NULL DEFAULT 0,
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_todos_created_at ON todos(created_at);
`

var (
	// ErrStorage matches every failure reported by the store.
	ErrStorage = errors.New("storage error")
	// ErrNotFound is returned when an id does not exist.
	ErrNotFound = errors.New("todo not found")
)

// StorageError wraps a database failure with the operation that hit it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now; "today" follows this clock.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.log = l }
}

// Store is a today-scoped item repository.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
	log  *log.Logger
}

// Open creates the database directory if needed, opens the database and
// makes sure the schema exists.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path: path,
		now:  time.Now,
		log:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}

	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, wrap("create database folder", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrap("open database", err)
	}
	// One connection per process; an in-memory database is per connection.
	db.SetMaxOpenConns(1)
	s.db = db

	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.log.Debug("database ready", "path", path)
	return s, nil
}

func (s *Store) initialize() error {
	if _, err := s.db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return wrap("configure database", err)
	}
	if err := s.db.Ping(); err != nil {
		return wrap("connection test", err)
	}
	if _, err := s.db.Exec(schema); err != nil {
		return wrap("create schema", err)
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database connection.
func (s *Store) Close() error {
	return wrap("close database", s.db.Close())
}

// today returns the UTC bounds of the current local day.
func (s *Store) today() (from, to string) {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)
	return start.UTC().Format(timeLayout), end.UTC().Format(timeLayout)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) insert(ctx context.Context, db execer, it model.Item) (model.Item, error) {
	created := s.now().UTC().Truncate(time.Second)
	var description any
	if d := model.NormalizeDescription(it.Description); d != "" {
		description = d
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO todos (title, description, done, created_at) VALUES (?, ?, ?, ?)`,
		it.Title, description, boolInt(it.Done), created.Format(timeLayout))
	if err != nil {
		return model.Item{}, wrap("insert todo", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Item{}, wrap("insert todo", err)
	}
	it.ID = id
	it.Description = model.NormalizeDescription(it.Description)
	it.CreatedAt = created
	return it, nil
}

// Add persists a new item and returns it with its id.
func (s *Store) Add(ctx context.Context, it model.Item) (model.Item, error) {
	saved, err := s.insert(ctx, s.db, it)
	if err != nil {
		return model.Item{}, err
	}
	s.log.Debug("added todo", "id", saved.ID, "title", saved.Title)
	return saved, nil
}

// ListAll returns today's items ordered by id.
func (s *Store) ListAll(ctx context.Context) ([]model.Item, error) {
	return s.list(ctx, "")
}

// ListDone returns today's finished items.
func (s *Store) ListDone(ctx context.Context) ([]model.Item, error) {
	return s.list(ctx, " AND done = 1")
}

// ListUndone returns today's pending items.
func (s *Store) ListUndone(ctx context.Context) ([]model.Item, error) {
	return s.list(ctx, " AND done = 0")
}

func (s *Store) list(ctx context.Context, filter string) ([]model.Item, error) {
	from, to := s.today()
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, done, created_at FROM todos
		 WHERE created_at >= ? AND created_at < ?`+filter+` ORDER BY id`,
		from, to)
	if err != nil {
		return nil, wrap("list todos", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		var (
			it          model.Item
			description sql.NullString
			created     string
		)
		if err := rows.Scan(&it.ID, &it.Title, &description, &it.Done, &created); err != nil {
			return nil, wrap("scan todo", err)
		}
		it.Description = model.NormalizeDescription(description.String)
		if t, err := time.ParseInLocation(timeLayout, created, time.UTC); err == nil {
			it.CreatedAt = t
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list todos", err)
	}
	return items, nil
}

// SetDone updates the completion flag of one item.
func (s *Store) SetDone(ctx context.Context, id int64, done bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE todos SET done = ? WHERE id = ?`, boolInt(done), id)
	if err != nil {
		return wrap("update todo", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("update todo", err)
	}
	if n == 0 {
		return fmt.Errorf("id %d: %w", id, ErrNotFound)
	}
	s.log.Debug("updated todo", "id", id, "done", done)
	return nil
}

// RemoveAllToday deletes today's items and reports how many were removed.
func (s *Store) RemoveAllToday(ctx context.Context) (int64, error) {
	return s.removeToday(ctx, s.db)
}

func (s *Store) removeToday(ctx context.Context, db execer) (int64, error) {
	from, to := s.today()
	res, err := db.ExecContext(ctx, `DELETE FROM todos WHERE created_at >= ? AND created_at < ?`, from, to)
	if err != nil {
		return 0, wrap("remove todos", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrap("remove todos", err)
	}
	return n, nil
}

// ReplaceToday swaps today's items for items in a single transaction.
// On failure the previous set is left untouched.
func (s *Store) ReplaceToday(ctx context.Context, items []model.Item) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("begin transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	removed, err := s.removeToday(ctx, tx)
	if err != nil {
		return err
	}
	for _, it := range items {
		it.ID = 0
		if _, err = s.insert(ctx, tx, it); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return wrap("commit transaction", err)
	}
	s.log.Debug("replaced today's todos", "removed", removed, "added", len(items))
	return nil
}
