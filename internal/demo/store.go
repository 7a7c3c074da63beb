// Package demo hosts the in-process backend used when no real backend
// is configured. It implements the full HTTP surface in memory, so demo
// mode and tests exercise the same client code paths as production.
package demo

import (
	"sort"
	"sync"
	"time"

	"github.com/pandalive/panda/internal/domain/entities"
)

// Store is the in-memory state behind the demo backend
type Store struct {
	mu           sync.RWMutex
	sessions     map[string]*entities.Session
	byJoinCode   map[string]string
	participants map[string]map[string]struct{}
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		sessions:     make(map[string]*entities.Session),
		byJoinCode:   make(map[string]string),
		participants: make(map[string]map[string]struct{}),
	}
}

// CreateSession creates an active session owned by the speaker
func (s *Store) CreateSession(title string, speaker *entities.User) *entities.Session {
	session := entities.NewSession(title, speaker)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	s.byJoinCode[session.JoinCode] = session.ID
	s.participants[session.ID] = make(map[string]struct{})
	return session
}

// Session returns a session by id
func (s *Store) Session(id string) (*entities.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

// SessionByJoinCode resolves a join code
func (s *Store) SessionByJoinCode(code string) (*entities.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byJoinCode[code]
	if !ok {
		return nil, false
	}
	session, ok := s.sessions[id]
	return session, ok
}

// SessionsBySpeaker returns the sessions owned by a speaker, oldest
// first.
func (s *Store) SessionsBySpeaker(uid string) []entities.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entities.Session
	for _, session := range s.sessions {
		if session.SpeakerID == uid {
			out = append(out, *session)
		}
	}
	sortSessions(out)
	return out
}

// AddParticipant records session membership; joining twice is a no-op
func (s *Store) AddParticipant(sessionID, uid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if members, ok := s.participants[sessionID]; ok {
		members[uid] = struct{}{}
	}
}

// ParticipantCount returns the number of distinct joined listeners
func (s *Store) ParticipantCount(sessionID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.participants[sessionID])
}

// AppendChunk appends a transcript chunk to a session
func (s *Store) AppendChunk(sessionID, text, speakerID string, at time.Time) (entities.TranscriptChunk, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return entities.TranscriptChunk{}, false
	}
	chunk := entities.NewTranscriptChunk(text, speakerID, at)
	session.AppendChunk(chunk)
	return chunk, true
}

// SetTasks replaces a session's task set
func (s *Store) SetTasks(sessionID string, tasks []entities.Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return false
	}
	session.Tasks = tasks
	return true
}

// AddResource attaches an uploaded resource to a session
func (s *Store) AddResource(sessionID string, resource entities.Resource) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return false
	}
	session.Resources = append(session.Resources, resource)
	return true
}

// SetActiveResource promotes one resource to the single active slot
func (s *Store) SetActiveResource(sessionID, resourceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return entities.ErrSessionNotActive
	}
	return session.SetActiveResource(resourceID)
}

// EndSession marks a session ended
func (s *Store) EndSession(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return false
	}
	session.End()
	return true
}

func sortSessions(sessions []entities.Session) {
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
}
