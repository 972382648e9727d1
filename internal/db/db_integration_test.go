package db

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_DocumentRoundTrip(t *testing.T) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		t.Skip("Skipping integration test: DATABASE_URL not set")
	}

	ctx := context.Background()
	database, err := Connect(ctx, databaseURL)
	require.NoError(t, err)
	defer database.Close()

	id := uuid.New().String()
	owner := "owner-" + uuid.New().String()
	require.NoError(t, database.SaveDocument(ctx, Document{ID: id, Title: "first", Content: "{}", Kind: "resume", OwnerID: owner}))
	require.NoError(t, database.SaveDocument(ctx, Document{ID: id, Title: "second", Content: `{"a":1}`, Kind: "resume", OwnerID: owner}))

	got, err := database.GetDocument(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "second", got.Title)
	assert.Equal(t, owner, got.OwnerID)

	docs, err := database.ListDocuments(ctx, owner, 10)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	missing, err := database.GetDocument(ctx, uuid.New().String())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
