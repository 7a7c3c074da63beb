// Package session holds the live-session controllers for both roles:
// the speaker broadcasting a session and the listener following one.
package session

import (
	"strings"
	"sync"
	"time"

	"github.com/pandalive/panda/internal/domain/entities"
)

// TranscriptStore accumulates transcript chunks for display. It is
// append-only: merging never removes or reorders text already shown.
type TranscriptStore struct {
	mu     sync.RWMutex
	chunks []entities.TranscriptChunk
	seen   map[string]struct{}
	text   string
}

// NewTranscriptStore creates an empty store
func NewTranscriptStore() *TranscriptStore {
	return &TranscriptStore{seen: make(map[string]struct{})}
}

// Append adds one chunk. Chunks already present (by ID) are ignored.
func (s *TranscriptStore) Append(chunk entities.TranscriptChunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if chunk.ID != "" {
		if _, ok := s.seen[chunk.ID]; ok {
			return
		}
		s.seen[chunk.ID] = struct{}{}
	}
	s.chunks = append(s.chunks, chunk)
	s.appendText(chunk.Text)
}

// Reset replaces the store contents with the given chunks. Used when a
// session is first loaded, never during live updates.
func (s *TranscriptStore) Reset(chunks []entities.TranscriptChunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = nil
	s.seen = make(map[string]struct{})
	s.text = ""
	for _, chunk := range chunks {
		if chunk.ID != "" {
			s.seen[chunk.ID] = struct{}{}
		}
		s.chunks = append(s.chunks, chunk)
		s.appendText(chunk.Text)
	}
}

// MergeText reconciles a full transcript snapshot fetched from the
// backend with what is already displayed. The snapshot is adopted only
// when it extends the current text; anything else would rewrite text the
// user has already read, so it is ignored.
func (s *TranscriptStore) MergeText(full string, at time.Time) bool {
	full = strings.TrimSpace(full)

	s.mu.Lock()
	defer s.mu.Unlock()
	if full == s.text || !strings.HasPrefix(full, s.text) {
		return false
	}
	tail := strings.TrimSpace(full[len(s.text):])
	if tail == "" {
		return false
	}

	chunk := entities.NewTranscriptChunk(tail, "", at)
	s.seen[chunk.ID] = struct{}{}
	s.chunks = append(s.chunks, chunk)
	s.appendText(chunk.Text)
	return true
}

// Text returns the flattened transcript
func (s *TranscriptStore) Text() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text
}

// Chunks returns a copy of the accumulated chunks in arrival order
func (s *TranscriptStore) Chunks() []entities.TranscriptChunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.TranscriptChunk, len(s.chunks))
	copy(out, s.chunks)
	return out
}

// Len returns the number of accumulated chunks
func (s *TranscriptStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

func (s *TranscriptStore) appendText(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if s.text == "" {
		s.text = text
		return
	}
	s.text = s.text + " " + text
}
