package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionStatus represents the lifecycle state of a live session
type SessionStatus string

const (
	SessionStatusActive SessionStatus = "active"
	SessionStatusEnded  SessionStatus = "ended"
)

// JoinCodeLength is the length of the human-shareable join code
const JoinCodeLength = 8

// Session represents one live broadcast owned by exactly one speaker.
// Listeners never own a session, only reference it by id after joining.
type Session struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	SpeakerID        string            `json:"speakerId"`
	SpeakerName      string            `json:"speakerName"`
	Status           SessionStatus     `json:"status"`
	CreatedAt        time.Time         `json:"createdAt"`
	Transcript       []TranscriptChunk `json:"transcript"`
	Resources        []Resource        `json:"resources"`
	ActiveResourceID string            `json:"activeResourceId,omitempty"`
	Tasks            []Task            `json:"tasks"`
	JoinCode         string            `json:"joinCode"`
}

// SessionInfo is the unauthenticated preview returned for a join code
type SessionInfo struct {
	Title       string        `json:"title"`
	SpeakerName string        `json:"speakerName"`
	Status      SessionStatus `json:"status"`
}

// NewSession creates an active session owned by the given speaker
func NewSession(title string, speaker *User) *Session {
	return &Session{
		ID:          uuid.NewString(),
		Title:       title,
		SpeakerID:   speaker.UID,
		SpeakerName: speaker.DisplayName,
		Status:      SessionStatusActive,
		CreatedAt:   time.Now().UTC(),
		Transcript:  []TranscriptChunk{},
		Resources:   []Resource{},
		Tasks:       []Task{},
		JoinCode:    NewJoinCode(),
	}
}

// NewJoinCode generates a short human-shareable join code, distinct from
// the session id.
func NewJoinCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:JoinCodeLength])
}

// Clone returns a deep copy detached from the receiver. Chunk, resource
// and task values carry no references, so copying the slices is enough.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Transcript = append([]TranscriptChunk(nil), s.Transcript...)
	out.Resources = append([]Resource(nil), s.Resources...)
	out.Tasks = append([]Task(nil), s.Tasks...)
	return &out
}

// IsActive checks if the session is currently broadcasting
func (s *Session) IsActive() bool {
	return s.Status == SessionStatusActive
}

// End marks the session as ended
func (s *Session) End() {
	s.Status = SessionStatusEnded
}

// Info returns the unauthenticated preview of the session
func (s *Session) Info() SessionInfo {
	return SessionInfo{
		Title:       s.Title,
		SpeakerName: s.SpeakerName,
		Status:      s.Status,
	}
}

// AppendChunk appends a transcript chunk. The transcript is append-only;
// chunks are never edited or removed once appended.
func (s *Session) AppendChunk(chunk TranscriptChunk) {
	s.Transcript = append(s.Transcript, chunk)
}

// TranscriptText flattens the transcript in arrival order
func (s *Session) TranscriptText() string {
	parts := make([]string, 0, len(s.Transcript))
	for _, chunk := range s.Transcript {
		parts = append(parts, chunk.Text)
	}
	return strings.Join(parts, " ")
}

// ActiveResource returns the resource currently highlighted for listener
// viewing, or nil when none is active.
func (s *Session) ActiveResource() *Resource {
	if s.ActiveResourceID == "" {
		return nil
	}
	for i := range s.Resources {
		if s.Resources[i].ID == s.ActiveResourceID {
			return &s.Resources[i]
		}
	}
	return nil
}

// SetActiveResource marks the given resource active and clears the flag on
// every other resource. At most one resource is active at a time.
func (s *Session) SetActiveResource(resourceID string) error {
	found := false
	for i := range s.Resources {
		if s.Resources[i].ID == resourceID {
			found = true
			break
		}
	}
	if !found {
		return ErrUnknownResource
	}
	for i := range s.Resources {
		s.Resources[i].IsActive = s.Resources[i].ID == resourceID
	}
	s.ActiveResourceID = resourceID
	return nil
}

// Validate checks the session invariants: an owning speaker, a join code,
// and an activeResourceId referencing a resource in the resource set.
func (s *Session) Validate() error {
	if s.Title == "" {
		return ErrInvalidTitle
	}
	if s.SpeakerID == "" {
		return ErrInvalidName
	}
	if s.ActiveResourceID != "" && s.ActiveResource() == nil {
		return ErrUnknownResource
	}
	return nil
}
