// Package mirror keeps an off-chain copy of platform metadata in a
// local SQLite database. The chain stays authoritative: writes here are
// best-effort, and readers treat a missing row as "not mirrored yet",
// never as proof of absence.
package mirror

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Collections mirrored off-chain.
const (
	CollectionEvents    = "events"
	CollectionCampaigns = "campaigns"
	CollectionTickets   = "tickets"
)

// Document is one mirrored record. Fields that queries filter or sort
// on are promoted to columns; everything else rides in Data.
type Document struct {
	Collection string
	ID         string
	Category   string
	Creator    string
	Featured   bool
	Published  bool
	StartDate  time.Time
	Data       map[string]interface{}
	CreatedAt  time.Time
}

// Filters narrows a Query. Zero values are ignored.
type Filters struct {
	Category      string
	Creator       string
	Featured      bool
	PublishedOnly bool
	Upcoming      bool // StartDate after now
	Limit         int
}

// Store is a document store over SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the mirror database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("mirror database path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating mirror directory: %w", err)
		}
	}

	zap.L().Info("Opening mirror database", zap.String("file", path))
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000")
	if err != nil {
		return nil, fmt.Errorf("unable to open mirror database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("unable to ping mirror database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("unable to initialize mirror schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close mirror database", zap.Error(err))
	}
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		creator TEXT NOT NULL DEFAULT '',
		featured BOOLEAN NOT NULL DEFAULT 0,
		published BOOLEAN NOT NULL DEFAULT 0,
		start_date TIMESTAMP,
		doc TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (collection, id)
	);

	CREATE INDEX IF NOT EXISTS idx_records_category ON records(collection, category);
	CREATE INDEX IF NOT EXISTS idx_records_creator ON records(collection, creator);
	CREATE INDEX IF NOT EXISTS idx_records_start_date ON records(collection, start_date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Write upserts a document. Failures are logged and returned but
// callers are expected to treat them as non-fatal: the chain write
// already succeeded by the time the mirror is touched.
func (s *Store) Write(ctx context.Context, doc Document) error {
	raw, err := json.Marshal(doc.Data)
	if err != nil {
		return fmt.Errorf("encoding document %s/%s: %w", doc.Collection, doc.ID, err)
	}

	var start interface{}
	if !doc.StartDate.IsZero() {
		start = doc.StartDate.UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (collection, id, category, creator, featured, published, start_date, doc)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			category = excluded.category,
			creator = excluded.creator,
			featured = excluded.featured,
			published = excluded.published,
			start_date = excluded.start_date,
			doc = excluded.doc`,
		doc.Collection, doc.ID, doc.Category, doc.Creator, doc.Featured, doc.Published, start, string(raw))
	if err != nil {
		return fmt.Errorf("writing document %s/%s: %w", doc.Collection, doc.ID, err)
	}

	zap.L().Debug("Mirror document written",
		zap.String("collection", doc.Collection),
		zap.String("id", doc.ID))
	return nil
}

// ReadByID returns the document with the given id, or nil when the
// collection has no such record.
func (s *Store) ReadByID(ctx context.Context, collection, id string) (*Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT collection, id, category, creator, featured, published, start_date, doc, created_at
		FROM records WHERE collection = ? AND id = ?
		ORDER BY created_at ASC`, collection, id)
	if err != nil {
		return nil, fmt.Errorf("reading document %s/%s: %w", collection, id, err)
	}
	defer closeRows(rows)

	docs, err := scanDocuments(rows)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	if len(docs) > 1 {
		// The primary key should prevent this; a corrupted mirror can
		// still produce it. Take the oldest row and flag the rest.
		zap.L().Warn("Duplicate mirror documents, using first",
			zap.String("collection", collection),
			zap.String("id", id),
			zap.Int("count", len(docs)))
	}
	return &docs[0], nil
}

// Query returns documents matching f, newest start date first.
func (s *Store) Query(ctx context.Context, collection string, f Filters) ([]Document, error) {
	query := `
		SELECT collection, id, category, creator, featured, published, start_date, doc, created_at
		FROM records WHERE collection = ?`
	args := []interface{}{collection}

	if f.Category != "" {
		query += " AND category = ?"
		args = append(args, f.Category)
	}
	if f.Creator != "" {
		query += " AND creator = ?"
		args = append(args, f.Creator)
	}
	if f.Featured {
		query += " AND featured = 1"
	}
	if f.PublishedOnly {
		query += " AND published = 1"
	}
	if f.Upcoming {
		query += " AND start_date > ?"
		args = append(args, time.Now().UTC())
	}

	query += " ORDER BY start_date DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", collection, err)
	}
	defer closeRows(rows)

	return scanDocuments(rows)
}

// Delete removes a mirrored document. Missing rows are not an error.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("deleting document %s/%s: %w", collection, id, err)
	}
	return nil
}

func scanDocuments(rows *sql.Rows) ([]Document, error) {
	var docs []Document
	for rows.Next() {
		var d Document
		var start sql.NullTime
		var raw string
		if err := rows.Scan(&d.Collection, &d.ID, &d.Category, &d.Creator, &d.Featured, &d.Published, &start, &raw, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		if start.Valid {
			d.StartDate = start.Time
		}
		if err := json.Unmarshal([]byte(raw), &d.Data); err != nil {
			return nil, fmt.Errorf("decoding document %s/%s: %w", d.Collection, d.ID, err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		zap.L().Warn("Failed to close rows", zap.Error(err))
	}
}
