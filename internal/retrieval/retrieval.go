// Package retrieval provides embedding-based similarity search over two
// independent fragment collections: the general knowledge base ("kb") and the
// CV corpus ("cv"). Storage is SQLite with brute-force cosine similarity,
// which is more than enough at résumé scale.
package retrieval

import (
	"context"
	"fmt"
	"time"
)

// Collection names. The two corpora are queried with different score
// thresholds by the caller, so they must stay separate.
const (
	KB = "kb"
	CV = "cv"
)

// Fragment is a unit of retrievable text. IDs are unique within one
// collection.
type Fragment struct {
	ID   string
	Text string
}

// Result is one similarity-search hit. Score is cosine similarity
// (1 − cosine distance), in [0, 1] for the embeddings we store.
type Result struct {
	Text  string
	Score float64
}

// Record is a stored fragment with its embedding.
type Record struct {
	ID        string
	Text      string
	Embedding []float32
	CreatedAt time.Time
}

// TextEmbedder turns text into an embedding vector.
type TextEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// StorageError marks a failure of the persistence layer. Callers treat it as
// "this source is unavailable", never as a user-facing error.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
