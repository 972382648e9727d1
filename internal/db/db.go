// Package db provides document storage for generated records, backed by PostgreSQL
// or an embedded SQLite file.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Document is a persisted artifact. Content holds the serialized record.
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Kind      string    `json:"kind"`
	OwnerID   string    `json:"owner_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists documents. GetDocument returns nil, nil when no document has the id.
type Store interface {
	SaveDocument(ctx context.Context, doc Document) error
	GetDocument(ctx context.Context, id string) (*Document, error)
	ListDocuments(ctx context.Context, ownerID string, limit int) ([]Document, error)
	Close() error
}

// ErrInvalidDocument is returned when a document is missing its id or kind
var ErrInvalidDocument = errors.New("document requires an id and a kind")

func checkDocument(doc Document) error {
	if doc.ID == "" || doc.Kind == "" {
		return ErrInvalidDocument
	}
	return nil
}

const postgresSchema = `CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	content    TEXT NOT NULL,
	kind       TEXT NOT NULL,
	owner_id   TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_documents_owner ON documents (owner_id, updated_at DESC);`

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database and ensures the schema exists
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() error {
	if db.pool != nil {
		db.pool.Close()
	}
	return nil
}

// SaveDocument inserts doc or replaces the stored title and content
func (db *DB) SaveDocument(ctx context.Context, doc Document) error {
	if err := checkDocument(doc); err != nil {
		return err
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO documents (id, title, content, kind, owner_id)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		 ON CONFLICT (id) DO UPDATE SET title = $2, content = $3, updated_at = NOW()`,
		doc.ID, doc.Title, doc.Content, doc.Kind, doc.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by id
func (db *DB) GetDocument(ctx context.Context, id string) (*Document, error) {
	var doc Document
	err := db.pool.QueryRow(ctx,
		`SELECT id, title, content, kind, COALESCE(owner_id, ''), created_at, updated_at
		 FROM documents WHERE id = $1`,
		id,
	).Scan(&doc.ID, &doc.Title, &doc.Content, &doc.Kind, &doc.OwnerID, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

// ListDocuments returns the most recently updated documents of an owner
func (db *DB) ListDocuments(ctx context.Context, ownerID string, limit int) ([]Document, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, title, content, kind, COALESCE(owner_id, ''), created_at, updated_at
		 FROM documents WHERE owner_id = $1
		 ORDER BY updated_at DESC LIMIT $2`,
		ownerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Content, &doc.Kind, &doc.OwnerID, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// DefaultListLimit caps ListDocuments when no limit is given
const DefaultListLimit = 50
