// Package memory implements the layered memory subsystem: a vector-indexed
// CV corpus, a vector-indexed knowledge base, an optional episodic backend,
// and a short-term dialogue buffer, merged into one bounded text block per
// query.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fayzullaev/resumebot/internal/retrieval"
)

// Section headers, in render priority order. CV data comes first: it is the
// primary retrieval path.
const (
	headerCV       = "=== ДАННЫЕ ИЗ CV ==="
	headerKB       = "=== ДОПОЛНИТЕЛЬНЫЕ ДОКУМЕНТЫ ==="
	headerEpisodic = "=== ИСТОРИЯ ДИАЛОГА ==="
	headerRecent   = "=== НЕДАВНИЕ СООБЩЕНИЯ ==="
)

// NoContext is returned when all four sources come back empty. Consumers
// can tell "nothing relevant" from a pipeline failure by this sentinel.
const NoContext = "Контекст не найден."

const (
	episodicLimit = 5
	kbLimit       = 8
	cvLimit       = 6
	tailLimit     = 3

	// kbRenderCap caps how many knowledge-base hits are rendered. Fetching
	// more than we render absorbs post-filter attrition.
	kbRenderCap = 5

	// kbSnippetRunes bounds each rendered knowledge-base snippet.
	kbSnippetRunes = 300

	// sourceTimeout bounds each memory-source lookup so a slow backend can
	// never hang assembly.
	sourceTimeout = 3 * time.Second
)

// Source is one vector collection as the assembler sees it.
// *retrieval.Collection implements it.
type Source interface {
	Add(ctx context.Context, frags []retrieval.Fragment) error
	Query(ctx context.Context, text string, k int) ([]retrieval.Result, error)
	Count(ctx context.Context) (int, error)
}

// Manager assembles query context from the four memory sources and records
// finished exchanges back into them. It owns no persistent state itself.
type Manager struct {
	episodic Episodic
	kb       Source
	cv       Source
	dialog   *DialogBuffer

	// Score thresholds are strict lower bounds. They differ deliberately:
	// CV retrieval must stay high-recall.
	kbThreshold float64
	cvThreshold float64
}

// NewManager wires the assembler to its four sources.
func NewManager(episodic Episodic, kb, cv Source, dialog *DialogBuffer, kbThreshold, cvThreshold float64) *Manager {
	return &Manager{
		episodic:    episodic,
		kb:          kb,
		cv:          cv,
		dialog:      dialog,
		kbThreshold: kbThreshold,
		cvThreshold: cvThreshold,
	}
}

// Context queries all four memory sources and renders their results as one
// text block with a fixed section order. It never fails: a source that
// errors or times out simply contributes nothing.
func (m *Manager) Context(ctx context.Context, query, userID string) string {
	var (
		episodic []string
		kbHits   []retrieval.Result
		cvHits   []retrieval.Result
	)

	// The four lookups are independent reads; run them concurrently but
	// join all of them before rendering, since section order is fixed.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		episodic = m.searchEpisodic(gctx, query, userID)
		return nil
	})
	g.Go(func() error {
		kbHits = m.searchCollection(gctx, m.kb, query, kbLimit, m.kbThreshold)
		return nil
	})
	g.Go(func() error {
		cvHits = m.searchCollection(gctx, m.cv, query, cvLimit, m.cvThreshold)
		return nil
	})
	g.Wait()

	tail := m.dialog.Tail(userID, tailLimit)

	slog.Info("context assembled",
		"cv", len(cvHits), "kb", len(kbHits), "episodic", len(episodic), "dialog", len(tail))

	return render(cvHits, kbHits, episodic, tail)
}

// Remember records a finished exchange into the dialogue buffer and the
// episodic backend. Episodic failures are absorbed by the backend itself.
func (m *Manager) Remember(ctx context.Context, userID, query, response string) {
	m.dialog.Append(userID, query, response)

	ctx, cancel := context.WithTimeout(ctx, sourceTimeout)
	defer cancel()
	if err := m.episodic.Add(ctx, userID, query, response); err != nil {
		slog.Warn("episodic record failed", "error", err)
	}
}

// searchEpisodic queries the episodic backend with a bounded timeout.
func (m *Manager) searchEpisodic(ctx context.Context, query, userID string) []string {
	ctx, cancel := context.WithTimeout(ctx, sourceTimeout)
	defer cancel()

	memories, err := m.episodic.Search(ctx, userID, query, episodicLimit)
	if err != nil {
		slog.Warn("episodic search failed", "error", err)
		return nil
	}
	return memories
}

// searchCollection queries one vector collection with a bounded timeout and
// drops results at or below the score threshold.
func (m *Manager) searchCollection(ctx context.Context, src Source, query string, k int, threshold float64) []retrieval.Result {
	ctx, cancel := context.WithTimeout(ctx, sourceTimeout)
	defer cancel()

	results, err := src.Query(ctx, query, k)
	if err != nil {
		slog.Warn("collection search failed", "error", err)
		return nil
	}

	filtered := results[:0:0]
	for _, r := range results {
		if r.Score > threshold {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// render concatenates the non-empty sections in fixed priority order.
func render(cvHits, kbHits []retrieval.Result, episodic []string, tail []Turn) string {
	var parts []string

	if len(cvHits) > 0 {
		parts = append(parts, headerCV)
		for _, r := range cvHits {
			parts = append(parts, "• "+strings.TrimSpace(r.Text))
		}
	}

	if len(kbHits) > 0 {
		if len(kbHits) > kbRenderCap {
			kbHits = kbHits[:kbRenderCap]
		}
		parts = append(parts, headerKB)
		for _, r := range kbHits {
			parts = append(parts, "• "+truncateRunes(strings.TrimSpace(r.Text), kbSnippetRunes))
		}
	}

	if len(episodic) > 0 {
		parts = append(parts, headerEpisodic)
		for _, m := range episodic {
			parts = append(parts, "• "+strings.TrimSpace(m))
		}
	}

	if len(tail) > 0 {
		parts = append(parts, headerRecent)
		for _, t := range tail {
			parts = append(parts, fmt.Sprintf("User: %s\nAssistant: %s", t.Query, t.Response))
		}
	}

	if len(parts) == 0 {
		return NoContext
	}
	return strings.Join(parts, "\n")
}

// Diagnostics reports the state of every memory tier, including a live CV
// smoke search.
func (m *Manager) Diagnostics(ctx context.Context) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Эпизодическая память: %s\n", m.episodic.Kind())

	kbCount, err := m.kb.Count(ctx)
	if err != nil {
		fmt.Fprintf(&sb, "KB документов: ошибка (%v)\n", err)
	} else {
		fmt.Fprintf(&sb, "KB документов: %d\n", kbCount)
	}

	cvCount, err := m.cv.Count(ctx)
	if err != nil {
		fmt.Fprintf(&sb, "CV фрагментов: ошибка (%v)\n", err)
	} else {
		fmt.Fprintf(&sb, "CV фрагментов: %d\n", cvCount)
	}

	fmt.Fprintf(&sb, "Активных диалогов: %d\n", m.dialog.ActiveUsers())

	probe := m.searchCollection(ctx, m.cv, "опыт работы", 3, m.cvThreshold)
	if len(probe) > 0 {
		sb.WriteString("Тест CV поиска: OK")
	} else {
		sb.WriteString("Тест CV поиска: FAIL")
	}
	return sb.String()
}
