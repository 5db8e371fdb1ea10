package embedding

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteCache persists requirement embeddings across process restarts so
// a warm catalog does not have to re-embed on every boot.
type SQLiteCache struct {
	db *sql.DB
}

// NewSQLiteCache creates (and migrates) a cache over the given database.
func NewSQLiteCache(db *sql.DB) (*SQLiteCache, error) {
	c := &SQLiteCache{db: db}
	if err := c.migrate(); err != nil {
		return nil, err
	}
	return c, nil
}

// OpenSQLiteCache opens the database file at path and builds a cache on it.
func OpenSQLiteCache(path string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open embedding cache %s: %w", path, err)
	}
	return NewSQLiteCache(db)
}

func (c *SQLiteCache) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS embeddings (
		requirement_id TEXT PRIMARY KEY,
		vector JSON NOT NULL
	);`
	_, err := c.db.ExecContext(context.Background(), query)
	return err
}

func (c *SQLiteCache) Get(ctx context.Context, key string) ([]float32, bool, error) {
	var raw []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT vector FROM embeddings WHERE requirement_id = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("embedding cache get %s: %w", key, err)
	}

	var vec []float32
	if err := json.Unmarshal(raw, &vec); err != nil {
		return nil, false, fmt.Errorf("embedding cache decode %s: %w", key, err)
	}
	return vec, true, nil
}

func (c *SQLiteCache) Put(ctx context.Context, key string, vec []float32) error {
	raw, err := json.Marshal(vec)
	if err != nil {
		return fmt.Errorf("embedding cache encode %s: %w", key, err)
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO embeddings (requirement_id, vector) VALUES (?, ?)
		ON CONFLICT (requirement_id) DO UPDATE SET vector = excluded.vector`,
		key, raw)
	if err != nil {
		return fmt.Errorf("embedding cache put %s: %w", key, err)
	}
	return nil
}

func (c *SQLiteCache) Len(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM embeddings`).Scan(&n)
	return n, err
}

func (c *SQLiteCache) Clear(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM embeddings`)
	return err
}

// Close closes the underlying database.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
