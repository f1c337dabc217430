// Package session runs the bulk edit workflow: write today's items to a
// scratch file, let the user edit it, parse it back and replace the day's
// items. The store is only touched once the edited document parses.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/idilsaglam/todos/internal/markdown"
	"github.com/idilsaglam/todos/internal/model"
)

// ScratchName is the fixed scratch file name.
const ScratchName = "todos.md"

// ErrUnsavedEdits is returned when a scratch file from an earlier session is
// still on disk. The file is left alone.
var ErrUnsavedEdits = errors.New("unsaved edits from an earlier session")

// Editor opens a file and blocks until the user is done with it.
type Editor interface {
	Open(ctx context.Context, path string) error
}

// Store is the part of the record store an edit session needs.
type Store interface {
	ListAll(ctx context.Context) ([]model.Item, error)
	ReplaceToday(ctx context.Context, items []model.Item) error
}

// ScratchPath returns the scratch file location inside dir. With unique set,
// every call gets its own file so sessions cannot collide.
func ScratchPath(dir string, unique bool) string {
	if !unique {
		return filepath.Join(dir, ScratchName)
	}
	return uniquePath(dir, "todos")
}

// ListPath returns a fresh read-only view file inside dir. It never
// collides with an edit scratch file.
func ListPath(dir string) string {
	return uniquePath(dir, "todos-list")
}

func uniquePath(dir, prefix string) string {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return filepath.Join(dir, fmt.Sprintf("%s-%d-%s.md", prefix, os.Getpid(), hex.EncodeToString(b[:])))
}

// Session is one scratch file holding a serialized document.
type Session struct {
	path string
}

// Open writes items to a new file at path. An existing file is never
// overwritten: Open fails with ErrUnsavedEdits instead.
func Open(path string, items []model.Item) (*Session, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w in %s", ErrUnsavedEdits, path)
		}
		return nil, fmt.Errorf("create scratch file: %w", err)
	}
	s := &Session{path: path}
	if _, err := f.WriteString(markdown.Serialize(items)); err != nil {
		_ = f.Close()
		_ = s.Close()
		return nil, fmt.Errorf("write scratch file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("write scratch file: %w", err)
	}
	return s, nil
}

// Path returns the scratch file path.
func (s *Session) Path() string { return s.path }

// Launch hands the scratch file to ed and waits for it.
func (s *Session) Launch(ctx context.Context, ed Editor) error {
	return ed.Open(ctx, s.path)
}

// Commit reads the scratch file back. On a parse error the file stays on disk.
func (s *Session) Commit() ([]model.Item, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read scratch file: %w", err)
	}
	return markdown.Parse(string(b))
}

// Close removes the scratch file.
func (s *Session) Close() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove scratch file: %w", err)
	}
	return nil
}

// EditToday runs a full edit session against st and returns the new set of
// items. Any failure leaves st untouched. When the editor fails the scratch
// file is removed since it holds nothing but the store's contents; after a
// parse or replace failure it stays in place with the user's edits.
func EditToday(ctx context.Context, st Store, ed Editor, path string) ([]model.Item, error) {
	before, err := st.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	s, err := Open(path, before)
	if err != nil {
		return nil, err
	}
	if err := s.Launch(ctx, ed); err != nil {
		_ = s.Close()
		return nil, err
	}
	after, err := s.Commit()
	if err != nil {
		return nil, err
	}
	if err := st.ReplaceToday(ctx, after); err != nil {
		return nil, err
	}
	if err := s.Close(); err != nil {
		return after, err
	}
	return after, nil
}
