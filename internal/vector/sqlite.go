package vector

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Compile-time interface check.
var _ Store = (*SQLite)(nil)

// SQLite is a persistent vector store backed by SQLite. Embeddings are
// computed through the injected Embedder at write and query time. Search
// is a brute-force cosine scan, which is plenty for the corpus sizes a
// handful of indexed URLs produce.
type SQLite struct {
	db       *sql.DB
	embedder Embedder
	path     string
}

// NewSQLite opens (or creates) a vector store at the given path.
func NewSQLite(path string, embedder Embedder) (*SQLite, error) {
	if embedder == nil {
		return nil, fmt.Errorf("vector: embedder is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("vector: open database: %w", err)
	}

	s := &SQLite{db: db, embedder: embedder, path: path}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) init() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("vector: pragma failed: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS chunks (
			id TEXT PRIMARY KEY,
			url TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			content TEXT NOT NULL,
			embedding BLOB NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_chunks_url ON chunks(url);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("vector: schema creation failed: %w", err)
	}
	return nil
}

// AddTexts embeds texts in one batch and stores them with their
// metadata. texts and metas must correspond positionally.
func (s *SQLite) AddTexts(ctx context.Context, texts []string, metas []Metadata) error {
	if len(texts) == 0 {
		return nil
	}
	if len(texts) != len(metas) {
		return fmt.Errorf("vector: %d texts but %d metadatas", len(texts), len(metas))
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("vector: embedding batch: %w", err)
	}
	if len(vectors) != len(texts) {
		return fmt.Errorf("vector: embedder returned %d vectors for %d texts", len(vectors), len(texts))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO chunks (id, url, chunk_index, content, embedding) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, text := range texts {
		id := uuid.New().String()
		emb := encodeFloat32Slice(vectors[i])
		if _, err := stmt.ExecContext(ctx, id, metas[i].URL, metas[i].ChunkIndex, text, emb); err != nil {
			return fmt.Errorf("vector: inserting chunk %d of %s: %w", metas[i].ChunkIndex, metas[i].URL, err)
		}
	}

	return tx.Commit()
}

// SimilaritySearch embeds the query and returns the k nearest stored
// chunks by cosine similarity, most similar first. Ties are broken by
// insertion order (rowid), earliest indexed first.
func (s *SQLite) SimilaritySearch(ctx context.Context, query string, k int) ([]Result, error) {
	if k <= 0 {
		return nil, nil
	}

	qvecs, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("vector: embedding query: %w", err)
	}
	if len(qvecs) != 1 {
		return nil, fmt.Errorf("vector: embedder returned %d vectors for query", len(qvecs))
	}
	qvec := qvecs[0]

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, url, chunk_index, content, embedding FROM chunks ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("vector: scanning chunks: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var emb []byte
		if err := rows.Scan(&r.ID, &r.URL, &r.ChunkIndex, &r.Content, &emb); err != nil {
			return nil, err
		}
		stored := decodeFloat32Slice(emb)
		if len(stored) != len(qvec) {
			return nil, fmt.Errorf("vector: chunk %s of %s has %d dimensions but embedder %s produces %d; the store was indexed with a different provider",
				r.ID, r.URL, len(stored), s.embedder.Name(), len(qvec))
		}
		r.Score = cosineSimilarity(qvec, stored)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Stable sort keeps the rowid scan order for equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// DeleteByURL removes every chunk indexed from the given source URL and
// returns the number of rows removed.
func (s *SQLite) DeleteByURL(ctx context.Context, url string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM chunks WHERE url = ?", url)
	if err != nil {
		return 0, fmt.Errorf("vector: deleting chunks for %s: %w", url, err)
	}
	return res.RowsAffected()
}

// Count returns the number of stored chunks.
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n)
	return n, err
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// encodeFloat32Slice converts []float32 to little-endian bytes.
func encodeFloat32Slice(f []float32) []byte {
	buf := make([]byte, len(f)*4)
	for i, v := range f {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// decodeFloat32Slice converts little-endian bytes back to []float32.
func decodeFloat32Slice(b []byte) []float32 {
	f := make([]float32, len(b)/4)
	for i := range f {
		f[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return f
}
