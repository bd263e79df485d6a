package retrieval

import (
	"container/heap"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists fragment embeddings in SQLite. A single table holds all
// collections, keyed by (collection, id).
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the vector database in dataDir and ensures the
// schema exists. Pass ":memory:" as dataDir for an in-memory database (used
// by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "memory.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS fragments (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		text TEXT NOT NULL,
		embedding BLOB NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (collection, id)
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating fragments table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert upserts records into the given collection. Re-inserting an existing
// id replaces its text and embedding, so repeated indexing cannot duplicate
// rows.
func (s *Store) Insert(collection string, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning insert transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO fragments (collection, id, text, embedding, created_at)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		createdAt := r.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		blob := encodeFloat32s(r.Embedding)
		if _, err := stmt.Exec(collection, r.ID, r.Text, blob, createdAt.Format(time.RFC3339)); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting record %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// scored tracks one candidate during the top-K scan.
type scored struct {
	Text  string
	Score float64
}

// Search performs brute-force cosine similarity over all vectors in the
// collection, returning the top-K matches ordered by descending score.
func (s *Store) Search(collection string, vector []float32, topK int) ([]Result, error) {
	if topK <= 0 {
		return nil, nil
	}

	queryNorm := norm(vector)
	if queryNorm == 0 {
		return nil, nil
	}

	rows, err := s.db.Query(`SELECT text, embedding FROM fragments WHERE collection = ?`, collection)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	h := &scoredHeap{}
	heap.Init(h)

	// Reusable buffer for decoding embeddings to avoid per-row allocations.
	var buf []float32

	for rows.Next() {
		var text string
		var blob []byte
		if err := rows.Scan(&text, &blob); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		buf, err = decodeFloat32sInto(buf, blob)
		if err != nil {
			return nil, fmt.Errorf("decoding embedding: %w", err)
		}

		score := cosine(vector, buf, queryNorm)
		if h.Len() < topK {
			heap.Push(h, scored{Text: text, Score: score})
		} else if score > (*h)[0].Score {
			(*h)[0] = scored{Text: text, Score: score}
			heap.Fix(h, 0)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	// Pop the min-heap into descending order.
	results := make([]Result, h.Len())
	for i := len(results) - 1; i >= 0; i-- {
		item := heap.Pop(h).(scored)
		results[i] = Result{Text: item.Text, Score: item.Score}
	}
	return results, nil
}

// Count returns the number of fragments stored in the collection.
func (s *Store) Count(collection string) (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM fragments WHERE collection = ?", collection).Scan(&count)
	return count, err
}

// encodeFloat32s serializes a float32 slice to little-endian bytes.
func encodeFloat32s(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeFloat32sInto decodes little-endian bytes into the provided buffer,
// reusing it to avoid per-row allocations during search scans.
func decodeFloat32sInto(buf []float32, b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("byte slice length %d is not a multiple of 4", len(b))
	}
	n := len(b) / 4
	if cap(buf) < n {
		buf = make([]float32, n)
	} else {
		buf = buf[:n]
	}
	for i := range buf {
		buf[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return buf, nil
}

// norm returns the L2 norm of a vector.
func norm(v []float32) float64 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	return math.Sqrt(sum)
}

// cosine computes cosine similarity as dot(a,b) / (aNorm * bNorm).
// aNorm is the precomputed L2 norm of vector a.
func cosine(a, b []float32, aNorm float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, bNormSq float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		bNormSq += float64(b[i]) * float64(b[i])
	}
	bNorm := math.Sqrt(bNormSq)
	if bNorm == 0 {
		return 0
	}
	return dot / (aNorm * bNorm)
}

// scoredHeap is a min-heap of scored candidates, used to track the current
// top-K during the scan.
type scoredHeap []scored

func (h scoredHeap) Len() int           { return len(h) }
func (h scoredHeap) Less(i, j int) bool { return h[i].Score < h[j].Score }
func (h scoredHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *scoredHeap) Push(x any)        { *h = append(*h, x.(scored)) }
func (h *scoredHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
