// Package identity persists what a viewer knows about themselves across runs:
// their display name and facilitator token per session, the timer mute
// preference, and a bounded history of visited sessions.
package identity

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/mcdev12/retrospekt/go/internal/models"
)

// MaxHistory bounds the number of remembered sessions.
const MaxHistory = 50

const stateVersion = 1

// Record is what the viewer holds for one session.
type Record struct {
	Name             string `yaml:"name,omitempty"`
	FacilitatorToken string `yaml:"facilitator_token,omitempty"`
}

// HistoryEntry describes a previously visited session.
type HistoryEntry struct {
	ID              string       `yaml:"id"`
	Name            string       `yaml:"name"`
	Phase           models.Phase `yaml:"phase"`
	CreatedAt       time.Time    `yaml:"created_at"`
	ParticipantName string       `yaml:"participant_name"`
	IsFacilitator   bool         `yaml:"is_facilitator"`
	JoinedAt        time.Time    `yaml:"joined_at"`
}

type state struct {
	Version    int               `yaml:"version"`
	TimerMuted bool              `yaml:"timer_muted"`
	Sessions   map[string]Record `yaml:"sessions"`
	History    []HistoryEntry    `yaml:"history"`
}

// Store is safe for concurrent use. Every mutation is written through to disk
// when the store is file-backed.
type Store struct {
	path string

	mu    sync.RWMutex
	state state
}

// NewMemoryStore returns a store that never touches disk.
func NewMemoryStore() *Store {
	return &Store{state: state{Version: stateVersion, Sessions: map[string]Record{}}}
}

// Open loads the state file at path. A missing file yields an empty store; an
// unreadable one is logged and replaced on the next write.
func Open(path string) (*Store, error) {
	s := NewMemoryStore()
	s.path = path

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading state: %w", err)
	}

	var loaded state
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("ignoring malformed state file")
		return s, nil
	}
	if loaded.Sessions == nil {
		loaded.Sessions = map[string]Record{}
	}
	loaded.Version = stateVersion
	s.state = loaded

	return s, nil
}

// Path returns the backing file, or "" for memory stores.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Name(sessionID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Sessions[sessionID].Name
}

func (s *Store) SetName(sessionID, name string) error {
	return s.update(func(st *state) {
		r := st.Sessions[sessionID]
		r.Name = name
		st.Sessions[sessionID] = r
	})
}

func (s *Store) FacilitatorToken(sessionID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Sessions[sessionID].FacilitatorToken
}

func (s *Store) SetFacilitatorToken(sessionID, token string) error {
	return s.update(func(st *state) {
		r := st.Sessions[sessionID]
		r.FacilitatorToken = token
		st.Sessions[sessionID] = r
	})
}

// IsFacilitator reports whether a facilitator token is held for the session.
func (s *Store) IsFacilitator(sessionID string) bool {
	return s.FacilitatorToken(sessionID) != ""
}

// Muted reports whether the expiry cue is suppressed.
func (s *Store) Muted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.TimerMuted
}

func (s *Store) SetMuted(muted bool) error {
	return s.update(func(st *state) {
		st.TimerMuted = muted
	})
}

// History returns a copy of the history, newest first.
func (s *Store) History() []HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]HistoryEntry, len(s.state.History))
	copy(out, s.state.History)
	return out
}

// AddOrUpdateHistory updates an existing entry in place, keeping its original
// JoinedAt, or prepends a new one. The list is capped at MaxHistory.
func (s *Store) AddOrUpdateHistory(entry HistoryEntry) error {
	return s.update(func(st *state) {
		for i := range st.History {
			if st.History[i].ID == entry.ID {
				entry.JoinedAt = st.History[i].JoinedAt
				st.History[i] = entry
				return
			}
		}

		st.History = append([]HistoryEntry{entry}, st.History...)
		if len(st.History) > MaxHistory {
			st.History = st.History[:MaxHistory]
		}
	})
}

// UpdateHistoryPhase refreshes the phase of a known entry. Unknown ids are ignored.
func (s *Store) UpdateHistoryPhase(sessionID string, phase models.Phase) error {
	s.mu.RLock()
	changed := false
	for _, e := range s.state.History {
		if e.ID == sessionID && e.Phase != phase {
			changed = true
			break
		}
	}
	s.mu.RUnlock()
	if !changed {
		return nil
	}

	return s.update(func(st *state) {
		for i := range st.History {
			if st.History[i].ID == sessionID {
				st.History[i].Phase = phase
			}
		}
	})
}

func (s *Store) RemoveFromHistory(sessionID string) error {
	return s.update(func(st *state) {
		kept := st.History[:0]
		for _, e := range st.History {
			if e.ID != sessionID {
				kept = append(kept, e)
			}
		}
		st.History = kept
	})
}

func (s *Store) ClearHistory() error {
	return s.update(func(st *state) {
		st.History = nil
	})
}

func (s *Store) update(fn func(st *state)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.state)

	if s.path == "" {
		return nil
	}
	return s.saveLocked()
}

// saveLocked writes to a sibling temp file and renames it over the target so a
// crash never leaves a truncated state file.
func (s *Store) saveLocked() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	data, err := yaml.Marshal(&s.state)
	if err != nil {
		return fmt.Errorf("marshalling state: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp state: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing state: %w", err)
	}

	return nil
}
