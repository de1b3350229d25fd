// Package storage provides the SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/chishiki/internal/models"
)

// SQLiteStorage implements Storage using SQLite. Embeddings are stored as
// little-endian float32 blobs alongside the text and metadata.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and
// initializes the schema. Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		seq INTEGER,
		text TEXT NOT NULL,
		source TEXT NOT NULL,
		category TEXT,
		extra TEXT,
		embedding BLOB,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source);
	CREATE INDEX IF NOT EXISTS idx_chunks_seq ON chunks(seq);
	`
	_, err := db.Exec(schema)
	return err
}

// UpsertChunk inserts or replaces a chunk. An existing row keeps its seq so
// that insertion order survives updates.
func (s *SQLiteStorage) UpsertChunk(ctx context.Context, chunk *models.Chunk) error {
	extraJSON, err := json.Marshal(chunk.Metadata.Extra)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	now := time.Now()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO chunks (id, seq, text, source, category, extra, embedding, created_at, updated_at)
		 VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM chunks), ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   text = excluded.text,
		   source = excluded.source,
		   category = excluded.category,
		   extra = excluded.extra,
		   embedding = excluded.embedding,
		   updated_at = excluded.updated_at`,
		chunk.ID, chunk.Text, chunk.Metadata.Source, chunk.Metadata.Category,
		string(extraJSON), vectorToBytes(chunk.Vector), now, now,
	)
	return err
}

// UpsertChunks upserts chunks in one transaction.
func (s *SQLiteStorage) UpsertChunks(ctx context.Context, chunks []*models.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, chunk := range chunks {
		extraJSON, err := json.Marshal(chunk.Metadata.Extra)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		now := time.Now()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chunks (id, seq, text, source, category, extra, embedding, created_at, updated_at)
			 VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM chunks), ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   text = excluded.text,
			   source = excluded.source,
			   category = excluded.category,
			   extra = excluded.extra,
			   embedding = excluded.embedding,
			   updated_at = excluded.updated_at`,
			chunk.ID, chunk.Text, chunk.Metadata.Source, chunk.Metadata.Category,
			string(extraJSON), vectorToBytes(chunk.Vector), now, now,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to upsert chunk %s: %w", chunk.ID, err)
		}
	}
	return tx.Commit()
}

// GetChunk returns a chunk by ID.
func (s *SQLiteStorage) GetChunk(ctx context.Context, id string) (*models.Chunk, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, text, source, category, extra, embedding FROM chunks WHERE id = ?`, id)
	chunk, err := scanChunk(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("chunk not found: %s", id)
	}
	return chunk, err
}

// ListChunks returns all chunks ordered by insertion sequence.
func (s *SQLiteStorage) ListChunks(ctx context.Context) ([]*models.Chunk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, source, category, extra, embedding FROM chunks ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*models.Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

// CountChunks returns the number of stored chunks.
func (s *SQLiteStorage) CountChunks(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count)
	return count, err
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanChunk(row rowScanner) (*models.Chunk, error) {
	var chunk models.Chunk
	var extraJSON string
	var blob []byte
	if err := row.Scan(&chunk.ID, &chunk.Text, &chunk.Metadata.Source,
		&chunk.Metadata.Category, &extraJSON, &blob); err != nil {
		return nil, err
	}
	if extraJSON != "" && extraJSON != "null" {
		if err := json.Unmarshal([]byte(extraJSON), &chunk.Metadata.Extra); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	chunk.Vector = bytesToVector(blob)
	return &chunk, nil
}

// vectorToBytes encodes a float32 vector as little-endian bytes.
func vectorToBytes(v []float32) []byte {
	out := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(out[i*4:(i+1)*4], math.Float32bits(f))
	}
	return out
}

// bytesToVector decodes little-endian bytes back into a float32 vector.
func bytesToVector(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4 : (i+1)*4]))
	}
	return out
}
