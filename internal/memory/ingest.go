package memory

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fayzullaev/resumebot/internal/chunk"
	"github.com/fayzullaev/resumebot/internal/retrieval"
)

// kbPopulatedThreshold: above this many fragments the knowledge base is
// considered already populated and the standalone résumé file is skipped.
const kbPopulatedThreshold = 20

// maxPrefixLen keeps chunk id prefixes short when built from file names.
const maxPrefixLen = 20

// IngestResume chunks a single résumé document into the knowledge base.
// Skipped when the file is missing or the collection already looks
// populated. Ingestion is best-effort: every failure is a logged warning.
func (ix *Indexer) IngestResume(ctx context.Context, path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}

	count, err := ix.kb.Count(ctx)
	if err != nil {
		slog.Warn("resume ingest: count failed", "error", err)
		return
	}
	if count > kbPopulatedThreshold {
		return
	}

	ix.ingestFile(ctx, path, "CV_PDF")
}

// IngestDocs chunks every supported file in dir into the knowledge base.
func (ix *Indexer) IngestDocs(ctx context.Context, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".pdf", ".txt", ".md":
			ix.ingestFile(ctx, filepath.Join(dir, entry.Name()), filePrefix(entry.Name()))
		}
	}
}

func (ix *Indexer) ingestFile(ctx context.Context, path, prefix string) {
	text, err := extractText(path)
	if err != nil {
		slog.Warn("could not read document, skipping", "path", path, "error", err)
		return
	}

	frags := chunk.Split(text, prefix, chunk.DefaultSize, chunk.DefaultOverlap)
	if len(frags) == 0 {
		return
	}

	converted := make([]retrieval.Fragment, len(frags))
	for i, f := range frags {
		converted[i] = retrieval.Fragment{ID: f.ID, Text: f.Text}
	}

	if err := ix.kb.Add(ctx, converted); err != nil {
		slog.Warn("could not index document", "path", path, "error", err)
		return
	}
	slog.Info("document indexed", "path", path, "chunks", len(frags))
}

// filePrefix derives a chunk id prefix from a file name: stem, capped. The
// cap counts runes so Cyrillic file names are not cut mid-character.
func filePrefix(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if r := []rune(stem); len(r) > maxPrefixLen {
		stem = string(r[:maxPrefixLen])
	}
	return stem
}
