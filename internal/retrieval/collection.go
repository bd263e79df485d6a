package retrieval

import (
	"context"
	"fmt"
)

// BatchEmbedder extends TextEmbedder with a batch call; *Embedder satisfies
// it, simpler test embedders may not.
type BatchEmbedder interface {
	TextEmbedder
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Collection is a handle to one named fragment collection: it embeds text on
// the way in and on query, and delegates storage to the Store.
type Collection struct {
	store    *Store
	embedder TextEmbedder
	name     string
}

// NewCollection binds a Store and an embedder to the named collection.
func NewCollection(store *Store, embedder TextEmbedder, name string) *Collection {
	return &Collection{store: store, embedder: embedder, name: name}
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Add embeds and upserts fragments. A nil or empty slice is a no-op.
// Failures are reported as *StorageError.
func (c *Collection) Add(ctx context.Context, frags []Fragment) error {
	if len(frags) == 0 {
		return nil
	}

	records := make([]Record, len(frags))
	if batch, ok := c.embedder.(BatchEmbedder); ok {
		texts := make([]string, len(frags))
		for i, f := range frags {
			texts[i] = f.Text
		}
		vecs, err := batch.EmbedBatch(ctx, texts)
		if err != nil {
			return &StorageError{Op: fmt.Sprintf("embedding %d fragments for %s", len(frags), c.name), Err: err}
		}
		for i, f := range frags {
			records[i] = Record{ID: f.ID, Text: f.Text, Embedding: vecs[i]}
		}
	} else {
		for i, f := range frags {
			vec, err := c.embedder.Embed(ctx, f.Text)
			if err != nil {
				return &StorageError{Op: fmt.Sprintf("embedding fragment %s", f.ID), Err: err}
			}
			records[i] = Record{ID: f.ID, Text: f.Text, Embedding: vec}
		}
	}

	if err := c.store.Insert(c.name, records); err != nil {
		return &StorageError{Op: fmt.Sprintf("inserting into %s", c.name), Err: err}
	}
	return nil
}

// Query embeds text and returns up to k most similar fragments, best first.
// k is clamped to the collection size; an empty collection yields an empty
// result, never an error.
func (c *Collection) Query(ctx context.Context, text string, k int) ([]Result, error) {
	count, err := c.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	vec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return nil, &StorageError{Op: fmt.Sprintf("embedding query for %s", c.name), Err: err}
	}

	results, err := c.store.Search(c.name, vec, k)
	if err != nil {
		return nil, &StorageError{Op: fmt.Sprintf("searching %s", c.name), Err: err}
	}
	return results, nil
}

// Count returns the number of stored fragments.
func (c *Collection) Count(ctx context.Context) (int, error) {
	n, err := c.store.Count(c.name)
	if err != nil {
		return 0, &StorageError{Op: fmt.Sprintf("counting %s", c.name), Err: err}
	}
	return n, nil
}
