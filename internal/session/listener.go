package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pandalive/panda/errors"
	"github.com/pandalive/panda/internal/api"
	"github.com/pandalive/panda/internal/domain/entities"
)

// JoinState is the listener's participation state
type JoinState int

const (
	// JoinStateNone means no session is joined
	JoinStateNone JoinState = iota
	// JoinStateJoining means a join request is in flight
	JoinStateJoining
	// JoinStateJoined means the listener is following a session
	JoinStateJoined
)

// String returns a readable state name
func (s JoinState) String() string {
	switch s {
	case JoinStateJoining:
		return "joining"
	case JoinStateJoined:
		return "joined"
	default:
		return "none"
	}
}

// Listener drives the following side of a live session: joining by
// code, the streaming transcript, task updates, the highlighted
// resource and the Q&A chat.
type Listener struct {
	mu       sync.Mutex
	api      *api.Client
	logger   *zap.Logger
	identity Identity

	state      JoinState
	joinCode   string
	session    *entities.Session
	transcript *TranscriptStore
	tasks      []entities.Task
	active     *entities.Resource
	history    []entities.ChatMessage
	pending    map[string]bool
}

// NewListener creates a controller backed by the given identity
func NewListener(client *api.Client, identity Identity, logger *zap.Logger) *Listener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Listener{
		api:        client,
		logger:     logger,
		identity:   identity,
		transcript: NewTranscriptStore(),
		pending:    make(map[string]bool),
	}
}

// State returns the participation state
func (l *Listener) State() JoinState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Session returns a copy of the joined session, or nil. Callers hold no
// reference into guarded state.
func (l *Listener) Session() *entities.Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.session.Clone()
}

// Transcript returns the flattened transcript text
func (l *Listener) Transcript() string {
	return l.transcript.Text()
}

// Tasks returns the last fetched task set
func (l *Listener) Tasks() []entities.Task {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]entities.Task, len(l.tasks))
	copy(out, l.tasks)
	return out
}

// ActiveResource returns the highlighted resource, or nil
func (l *Listener) ActiveResource() *entities.Resource {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// History returns the chat exchanges in submission order
func (l *Listener) History() []entities.ChatMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]entities.ChatMessage, len(l.history))
	copy(out, l.history)
	return out
}

// Preview resolves a join code into session metadata without joining.
// It requires no authentication.
func (l *Listener) Preview(ctx context.Context, joinCode string) (*entities.SessionInfo, error) {
	joinCode = normalizeJoinCode(joinCode)
	if joinCode == "" {
		return nil, errors.ErrValidation("join code is required")
	}
	return l.api.SessionInfo(ctx, joinCode)
}

// Join converts a join code into session membership and performs the
// initial fetch of transcript, tasks and active resource. Joining the
// already-joined session is a no-op returning the current session; a
// failed join returns the listener to the not-joined state.
func (l *Listener) Join(ctx context.Context, joinCode string) (*entities.Session, error) {
	joinCode = normalizeJoinCode(joinCode)
	if joinCode == "" {
		return nil, errors.ErrValidation("join code is required")
	}

	l.mu.Lock()
	if l.state == JoinStateJoining {
		l.mu.Unlock()
		return nil, errors.ErrOperationPending("join")
	}
	if l.state == JoinStateJoined && l.joinCode == joinCode {
		session := l.session.Clone()
		l.mu.Unlock()
		return session, nil
	}
	l.state = JoinStateJoining
	l.mu.Unlock()

	session, err := l.api.Join(ctx, joinCode)
	if err != nil {
		l.mu.Lock()
		l.state = JoinStateNone
		l.mu.Unlock()
		return nil, err
	}

	l.mu.Lock()
	l.state = JoinStateJoined
	l.joinCode = joinCode
	l.session = session
	l.tasks = session.Tasks
	l.active = session.ActiveResource()
	l.history = nil
	l.mu.Unlock()
	l.transcript.Reset(session.Transcript)

	l.refresh(ctx, session.ID)

	l.logger.Info("listener.joined",
		zap.String("session_id", session.ID),
		zap.String("join_code", joinCode),
	)
	return session.Clone(), nil
}

// Leave drops session membership and clears the per-session state
func (l *Listener) Leave() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = JoinStateNone
	l.joinCode = ""
	l.session = nil
	l.tasks = nil
	l.active = nil
	l.history = nil
	l.transcript = NewTranscriptStore()
}

// Ask submits a question about the session content. Exactly one
// exchange is appended to the history per successful call, in
// submission order. A second Ask while one is in flight is rejected.
func (l *Listener) Ask(ctx context.Context, message string) (*entities.ChatMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, errors.ErrValidation("message is required")
	}

	l.mu.Lock()
	if l.state != JoinStateJoined {
		l.mu.Unlock()
		return nil, errors.ErrSessionNotJoined()
	}
	if l.pending["ask"] {
		l.mu.Unlock()
		return nil, errors.ErrOperationPending("ask")
	}
	l.pending["ask"] = true
	sessionID := l.session.ID
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		delete(l.pending, "ask")
		l.mu.Unlock()
	}()

	answer, err := l.api.Query(ctx, sessionID, message)
	if err != nil {
		return nil, err
	}

	exchange := entities.NewChatMessage(message, answer, uidOf(l.identity))
	l.mu.Lock()
	l.history = append(l.history, exchange)
	l.mu.Unlock()
	return &exchange, nil
}

// refresh pulls the current transcript, tasks and active resource.
// Failures here are logged, not fatal: the join itself succeeded.
func (l *Listener) refresh(ctx context.Context, sessionID string) {
	if text, err := l.api.Transcript(ctx, sessionID); err == nil {
		l.transcript.MergeText(text, time.Now().UTC())
	} else {
		l.logger.Warn("listener.transcript.fetch_failed", zap.Error(err))
	}
	if tasks, err := l.api.Tasks(ctx, sessionID); err == nil {
		l.mu.Lock()
		l.tasks = tasks
		l.mu.Unlock()
	} else {
		l.logger.Warn("listener.tasks.fetch_failed", zap.Error(err))
	}
	if active, err := l.api.ActiveResource(ctx, sessionID); err == nil {
		l.mu.Lock()
		l.active = active
		l.mu.Unlock()
	} else {
		l.logger.Warn("listener.resource.fetch_failed", zap.Error(err))
	}
}

func normalizeJoinCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
