package memory

import "sync"

const (
	// maxTurns is the per-user FIFO window of the short-term buffer.
	maxTurns = 15
	// maxResponseRunes bounds response text returned by Tail, to keep the
	// assembled context within budget.
	maxResponseRunes = 200
)

// Turn is one question/answer exchange.
type Turn struct {
	Query    string
	Response string
}

// DialogBuffer keeps a bounded in-memory history of recent exchanges per
// user. It is empty after every restart; long-term recall is the episodic
// backend's job.
type DialogBuffer struct {
	mu    sync.Mutex
	turns map[string][]Turn
}

// NewDialogBuffer creates an empty buffer.
func NewDialogBuffer() *DialogBuffer {
	return &DialogBuffer{turns: make(map[string][]Turn)}
}

// Append records an exchange for the user, evicting the oldest turns once
// the history exceeds the window.
func (b *DialogBuffer) Append(userID, query, response string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	hist := append(b.turns[userID], Turn{Query: query, Response: response})
	if len(hist) > maxTurns {
		hist = hist[len(hist)-maxTurns:]
	}
	b.turns[userID] = hist
}

// Tail returns the user's last n turns in insertion order, with each
// response truncated to 200 runes.
func (b *DialogBuffer) Tail(userID string, n int) []Turn {
	b.mu.Lock()
	defer b.mu.Unlock()

	hist := b.turns[userID]
	if n > len(hist) {
		n = len(hist)
	}
	if n <= 0 {
		return nil
	}

	out := make([]Turn, n)
	for i, turn := range hist[len(hist)-n:] {
		turn.Response = truncateRunes(turn.Response, maxResponseRunes)
		out[i] = turn
	}
	return out
}

// ActiveUsers returns how many users have history in the buffer.
func (b *DialogBuffer) ActiveUsers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.turns)
}

// truncateRunes cuts s to at most n runes without splitting a multi-byte
// character.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
