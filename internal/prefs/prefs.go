// Package prefs stores per-user assistant preferences in a single JSON file.
// The store is tiny and rarely written, so one file and one lock are enough.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Prefs are one user's settings. Zero-valued fields fall back to defaults on
// read and mean "leave unchanged" on write.
type Prefs struct {
	Lang  string `json:"lang"`
	Voice string `json:"voice"`
	Style string `json:"style"`
}

// Defaults returns the settings every user starts with.
func Defaults() Prefs {
	return Prefs{
		Lang:  "ru-RU",
		Voice: "ru-RU-Wavenet-D",
		Style: "neutral",
	}
}

// Store is a file-backed preference map keyed by user id.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store persisting to path. The file is created lazily on
// first write.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Get returns the user's preferences with defaults merged in. A missing or
// unreadable file yields plain defaults.
func (s *Store) Get(userID string) Prefs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return merge(Defaults(), s.load()[userID])
}

// Set applies a partial update: only non-empty fields of upd change the
// stored record. The merged result is returned.
func (s *Store) Set(userID string, upd Prefs) (Prefs, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db := s.load()
	cur := merge(Defaults(), db[userID])
	cur = merge(cur, upd)
	db[userID] = cur

	if err := s.save(db); err != nil {
		return cur, err
	}
	return cur, nil
}

func (s *Store) load() map[string]Prefs {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return map[string]Prefs{}
	}
	var db map[string]Prefs
	if err := json.Unmarshal(data, &db); err != nil || db == nil {
		return map[string]Prefs{}
	}
	return db
}

func (s *Store) save(db map[string]Prefs) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating prefs dir: %w", err)
	}
	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding prefs: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing prefs: %w", err)
	}
	return nil
}

// merge overlays non-empty fields of upd onto base.
func merge(base, upd Prefs) Prefs {
	if upd.Lang != "" {
		base.Lang = upd.Lang
	}
	if upd.Voice != "" {
		base.Voice = upd.Voice
	}
	if upd.Style != "" {
		base.Style = upd.Style
	}
	return base
}
