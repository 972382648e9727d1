package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLite_SaveAndGet(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	doc := Document{ID: "doc-1", Title: "My Resume", Content: `{"summary":"x"}`, Kind: "resume", OwnerID: "user-1"}
	require.NoError(t, s.SaveDocument(ctx, doc))

	got, err := s.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "My Resume", got.Title)
	assert.Equal(t, `{"summary":"x"}`, got.Content)
	assert.Equal(t, "resume", got.Kind)
	assert.Equal(t, "user-1", got.OwnerID)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestSQLite_GetMissing(t *testing.T) {
	s := newTestSQLite(t)

	got, err := s.GetDocument(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLite_SaveReplacesContent(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }
	require.NoError(t, s.SaveDocument(ctx, Document{ID: "d", Title: "v1", Content: "one", Kind: "resume"}))

	clock = clock.Add(time.Hour)
	require.NoError(t, s.SaveDocument(ctx, Document{ID: "d", Title: "v2", Content: "two", Kind: "resume"}))

	got, err := s.GetDocument(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Title)
	assert.Equal(t, "two", got.Content)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
}

func TestSQLite_SaveInvalid(t *testing.T) {
	s := newTestSQLite(t)

	err := s.SaveDocument(context.Background(), Document{Title: "no id", Kind: "resume"})
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestSQLite_ListDocuments(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }
	for _, id := range []string{"a", "b", "c"} {
		clock = clock.Add(time.Minute)
		require.NoError(t, s.SaveDocument(ctx, Document{ID: id, Title: id, Content: "{}", Kind: "resume", OwnerID: "owner"}))
	}
	require.NoError(t, s.SaveDocument(ctx, Document{ID: "other", Title: "x", Content: "{}", Kind: "resume", OwnerID: "someone-else"}))

	docs, err := s.ListDocuments(ctx, "owner", 2)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "c", docs[0].ID)
	assert.Equal(t, "b", docs[1].ID)
}

func TestOpenSQLite_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "docs.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveDocument(context.Background(), Document{ID: "x", Title: "t", Content: "{}", Kind: "resume"}))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetDocument(context.Background(), "x")
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestOpen_SelectsBackend(t *testing.T) {
	store, err := Open(context.Background(), "", "")
	require.NoError(t, err)
	assert.Nil(t, store)

	store, err = Open(context.Background(), "", ":memory:")
	require.NoError(t, err)
	defer store.Close()
	assert.IsType(t, &SQLite{}, store)
}
