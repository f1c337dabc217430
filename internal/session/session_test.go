package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todos/internal/launch"
	"github.com/idilsaglam/todos/internal/markdown"
	"github.com/idilsaglam/todos/internal/model"
	"github.com/idilsaglam/todos/internal/store/sqlitestore"
)

// fakeEditor stands in for the user: it sees the document and writes back
// whatever edit returns.
type fakeEditor struct {
	seen string
	edit func(doc string) string
	err  error
}

func (f *fakeEditor) Open(_ context.Context, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	f.seen = string(b)
	if f.err != nil {
		return f.err
	}
	if f.edit == nil {
		return nil
	}
	return os.WriteFile(path, []byte(f.edit(f.seen)), 0o600)
}

func seededStore(t *testing.T, items ...model.Item) *sqlitestore.Store {
	t.Helper()
	st, err := sqlitestore.Open(sqlitestore.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	for _, it := range items {
		_, err := st.Add(context.Background(), it)
		require.NoError(t, err)
	}
	return st
}

func titles(items []model.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Title)
	}
	return out
}

func TestScratchPath(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, ScratchName), ScratchPath(dir, false))
	assert.Equal(t, ScratchPath(dir, false), ScratchPath(dir, false))

	a, b := ScratchPath(dir, true), ScratchPath(dir, true)
	assert.NotEqual(t, a, b)
	assert.Equal(t, dir, filepath.Dir(a))
	assert.True(t, strings.HasSuffix(a, ".md"))
}

func TestListPath(t *testing.T) {
	dir := t.TempDir()
	a, b := ListPath(dir), ListPath(dir)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, ScratchPath(dir, false), a)
	assert.Equal(t, dir, filepath.Dir(a))
	assert.True(t, strings.HasPrefix(filepath.Base(a), "todos-list-"))
}

func TestOpenWritesDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ScratchName)
	s, err := Open(path, []model.Item{{Title: "a"}})
	require.NoError(t, err)

	b, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "# [ ] a\n", string(b))
}

func TestOpenRefusesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ScratchName)
	require.NoError(t, os.WriteFile(path, []byte("earlier edits"), 0o600))

	s, err := Open(path, []model.Item{{Title: "a"}})
	assert.Nil(t, s)
	assert.True(t, errors.Is(err, ErrUnsavedEdits))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "earlier edits", string(b))
}

func TestCommitAndClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), ScratchName)
	s, err := Open(path, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("# [X] new\nnotes"), 0o600))
	items, err := s.Commit()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Done)
	assert.Equal(t, "notes", items[0].Description)

	require.NoError(t, s.Close())
	assert.NoFileExists(t, path)
	require.NoError(t, s.Close(), "closing twice is harmless")
}

func TestCommitMalformedKeepsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ScratchName)
	s, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("not a valid header"), 0o600))

	items, err := s.Commit()
	assert.Nil(t, items)
	assert.True(t, errors.Is(err, markdown.ErrMalformedDocument))
	assert.FileExists(t, path)
}

func TestEditToday(t *testing.T) {
	ctx := context.Background()
	st := seededStore(t, model.Item{Title: "Buy milk"}, model.Item{Title: "Call mum", Description: "after lunch"})
	path := filepath.Join(t.TempDir(), ScratchName)

	ed := &fakeEditor{edit: func(doc string) string {
		doc = strings.Replace(doc, "# [ ] Buy milk", "# [X] Buy milk", 1)
		return doc + markdown.Divider + "# [ ] Book dentist\n"
	}}

	items, err := EditToday(ctx, st, ed, path)
	require.NoError(t, err)
	assert.Equal(t, "# [ ] Buy milk\n"+markdown.Divider+"# [ ] Call mum\nafter lunch", ed.seen)
	assert.Equal(t, []string{"Buy milk", "Call mum", "Book dentist"}, titles(items))

	stored, err := st.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Buy milk", "Call mum", "Book dentist"}, titles(stored))
	assert.True(t, stored[0].Done)
	assert.Equal(t, "after lunch", stored[1].Description)
	assert.NoFileExists(t, path)
}

func TestEditTodayClearingDocumentRemovesItems(t *testing.T) {
	ctx := context.Background()
	st := seededStore(t, model.Item{Title: "a"}, model.Item{Title: "b"})
	path := filepath.Join(t.TempDir(), ScratchName)

	items, err := EditToday(ctx, st, &fakeEditor{edit: func(string) string { return "" }}, path)
	require.NoError(t, err)
	assert.Empty(t, items)

	stored, err := st.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestEditTodayMalformedLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	st := seededStore(t, model.Item{Title: "a"}, model.Item{Title: "b", Done: true})
	before, err := st.ListAll(ctx)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), ScratchName)

	ed := &fakeEditor{edit: func(doc string) string { return "not a valid header\n" + doc }}
	items, err := EditToday(ctx, st, ed, path)
	require.Error(t, err)
	assert.Nil(t, items)
	assert.True(t, errors.Is(err, markdown.ErrMalformedDocument))

	after, err := st.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	b, err := os.ReadFile(path)
	require.NoError(t, err, "scratch file must be preserved")
	assert.True(t, strings.HasPrefix(string(b), "not a valid header"))
}

func TestEditTodayEditorFailure(t *testing.T) {
	ctx := context.Background()
	st := seededStore(t, model.Item{Title: "a"})
	before, err := st.ListAll(ctx)
	require.NoError(t, err)

	ed := &fakeEditor{err: &launch.ExternalProcessError{Program: "nvim", Err: errors.New("exit status 1")}}
	path := filepath.Join(t.TempDir(), ScratchName)
	_, err = EditToday(ctx, st, ed, path)
	assert.True(t, errors.Is(err, launch.ErrExternalProcess))

	after, err := st.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.NoFileExists(t, path)
}

func TestEditTodayKeepsEarlierEdits(t *testing.T) {
	ctx := context.Background()
	st := seededStore(t, model.Item{Title: "a"})
	path := filepath.Join(t.TempDir(), ScratchName)
	require.NoError(t, os.WriteFile(path, []byte("my careful edits\n# [X] a"), 0o600))

	ed := &fakeEditor{}
	items, err := EditToday(ctx, st, ed, path)
	assert.Nil(t, items)
	assert.True(t, errors.Is(err, ErrUnsavedEdits))
	assert.Empty(t, ed.seen, "editor must not run")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "my careful edits\n# [X] a", string(b))
}
