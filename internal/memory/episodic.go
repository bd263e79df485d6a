package memory

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"

	"github.com/fayzullaev/resumebot/internal/retrieval"
)

// Episodic is the long-term conversational memory, keyed by user identity.
// It is a best-effort enhancement: implementations absorb their own failures
// and never make the caller worse off than having no episodic memory at all.
type Episodic interface {
	// Kind identifies the active backend: "hosted", "embedded" or "none".
	Kind() string
	// Add records one exchange.
	Add(ctx context.Context, userID, query, response string) error
	// Search returns up to k semantically relevant past memories.
	Search(ctx context.Context, userID, query string, k int) ([]string, error)
}

// EpisodicConfig carries everything the fallback chain may need.
type EpisodicConfig struct {
	Mem0APIKey  string
	Mem0BaseURL string
	// Embedder enables the embedded backend; nil means no generation
	// credential is configured.
	Embedder retrieval.TextEmbedder
	DataDir  string
}

// NewEpisodic selects a backend: the hosted service when an API key is
// configured and reachable, otherwise a local embedded store when an
// embedder is available, otherwise a disabled stub. It never fails: every
// initialization problem degrades to the next tier.
func NewEpisodic(ctx context.Context, cfg EpisodicConfig) Episodic {
	if cfg.Mem0APIKey != "" {
		hosted := newMem0Client(cfg.Mem0APIKey, cfg.Mem0BaseURL)
		if err := hosted.ping(ctx); err != nil {
			slog.Warn("hosted episodic backend unreachable, falling back", "error", err)
		} else {
			slog.Info("episodic memory: hosted backend")
			return hosted
		}
	}

	if cfg.Embedder != nil {
		embedded, err := newEmbeddedEpisodic(cfg.DataDir, cfg.Embedder)
		if err != nil {
			slog.Warn("embedded episodic backend failed to initialize, falling back", "error", err)
		} else {
			slog.Info("episodic memory: embedded backend")
			return embedded
		}
	}

	slog.Info("episodic memory disabled: short-term history and RAG only")
	return disabledEpisodic{}
}

// disabledEpisodic is the terminal fallback tier: every call is a no-op.
type disabledEpisodic struct{}

func (disabledEpisodic) Kind() string { return "none" }

func (disabledEpisodic) Add(ctx context.Context, userID, query, response string) error {
	return nil
}

func (disabledEpisodic) Search(ctx context.Context, userID, query string, k int) ([]string, error) {
	return nil, nil
}

// embeddedEpisodic stores exchanges in a local chromem-go database with one
// collection per user.
type embeddedEpisodic struct {
	db       *chromem.DB
	embedder retrieval.TextEmbedder
}

func newEmbeddedEpisodic(dataDir string, embedder retrieval.TextEmbedder) (*embeddedEpisodic, error) {
	db, err := chromem.NewPersistentDB(filepath.Join(dataDir, "episodic"), false)
	if err != nil {
		return nil, fmt.Errorf("opening episodic db: %w", err)
	}
	return &embeddedEpisodic{db: db, embedder: embedder}, nil
}

func (e *embeddedEpisodic) Kind() string { return "embedded" }

func (e *embeddedEpisodic) collection(userID string) (*chromem.Collection, error) {
	name := "user_" + userID
	if userID == "" {
		name = "global"
	}
	return e.db.GetOrCreateCollection(name, nil, chromem.EmbeddingFunc(e.embedder.Embed))
}

func (e *embeddedEpisodic) Add(ctx context.Context, userID, query, response string) error {
	col, err := e.collection(userID)
	if err != nil {
		slog.Warn("episodic add: collection unavailable", "error", err)
		return nil
	}

	doc := chromem.Document{
		ID:      uuid.New().String(),
		Content: fmt.Sprintf("User: %s\nAssistant: %s", query, response),
		Metadata: map[string]string{
			"user_id": userID,
		},
	}
	if err := col.AddDocument(ctx, doc); err != nil {
		slog.Warn("episodic add failed", "error", err)
	}
	return nil
}

func (e *embeddedEpisodic) Search(ctx context.Context, userID, query string, k int) ([]string, error) {
	col, err := e.collection(userID)
	if err != nil {
		slog.Warn("episodic search: collection unavailable", "error", err)
		return nil, nil
	}

	// chromem rejects nResults above the document count.
	if count := col.Count(); k > count {
		k = count
	}
	if k <= 0 {
		return nil, nil
	}

	results, err := col.Query(ctx, query, k, nil, nil)
	if err != nil {
		slog.Warn("episodic search failed", "error", err)
		return nil, nil
	}

	memories := make([]string, 0, len(results))
	for _, r := range results {
		if text := strings.TrimSpace(r.Content); text != "" {
			memories = append(memories, text)
		}
	}
	return memories, nil
}
