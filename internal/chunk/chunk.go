// Package chunk splits raw text into overlapping fixed-size fragments
// suitable for embedding and similarity search.
package chunk

import "fmt"

const (
	// DefaultSize is the window length in characters.
	DefaultSize = 800
	// DefaultOverlap is how many characters consecutive windows share.
	DefaultOverlap = 200

	// minStep bounds the window advance so a large overlap cannot stall
	// the scan.
	minStep = 100
	// minFragment drops near-empty trailing windows.
	minFragment = 50
)

// Fragment is one chunk of text with a collection-unique id.
type Fragment struct {
	ID   string
	Text string
}

// Split cuts text into sliding windows of size characters, advancing by
// max(100, size-overlap). Consecutive whitespace is collapsed to a single
// space before windowing. Fragments of 50 characters or fewer are discarded.
// IDs are "{prefix}_{n}" with n starting at 1.
//
// All sizes count runes, not bytes, so Cyrillic text gets the same window
// widths as ASCII and boundaries never cut a UTF-8 sequence in half.
//
// Split is pure and deterministic: identical input yields identical output.
func Split(text, prefix string, size, overlap int) []Fragment {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}

	normalized := []rune(normalizeWhitespace(text))
	if len(normalized) == 0 {
		return nil
	}

	step := size - overlap
	if step < minStep {
		step = minStep
	}

	var frags []Fragment
	n := 1
	for start := 0; start < len(normalized); start += step {
		end := start + size
		if end > len(normalized) {
			end = len(normalized)
		}
		window := normalized[start:end]
		if len(window) > minFragment {
			frags = append(frags, Fragment{
				ID:   fmt.Sprintf("%s_%d", prefix, n),
				Text: string(window),
			})
			n++
		}
	}
	return frags
}

// normalizeWhitespace collapses runs of whitespace into single spaces and
// trims the ends.
func normalizeWhitespace(s string) string {
	buf := make([]byte, 0, len(s))
	inSpace := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f' {
			inSpace = true
			continue
		}
		if inSpace && len(buf) > 0 {
			buf = append(buf, ' ')
		}
		inSpace = false
		buf = append(buf, c)
	}
	return string(buf)
}
