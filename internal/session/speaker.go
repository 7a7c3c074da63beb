package session

import (
	"context"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/pandalive/panda/errors"
	"github.com/pandalive/panda/internal/api"
	"github.com/pandalive/panda/internal/domain/entities"
	"github.com/pandalive/panda/pkg/stt"
)

// Speaker drives the broadcasting side of a live session: session
// creation, the recording toggle, resource upload and task generation.
type Speaker struct {
	mu          sync.Mutex
	api         *api.Client
	transcriber stt.Transcriber
	logger      *zap.Logger
	identity    Identity

	sessions   []entities.Session
	current    *entities.Session
	transcript *TranscriptStore
	events     chan Event

	recording bool
	stopFn    context.CancelFunc
	streaming sync.WaitGroup
	pending   map[string]bool
}

// NewSpeaker creates a controller backed by the given identity
func NewSpeaker(client *api.Client, transcriber stt.Transcriber, identity Identity, logger *zap.Logger) *Speaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Speaker{
		api:         client,
		transcriber: transcriber,
		logger:      logger,
		identity:    identity,
		transcript:  NewTranscriptStore(),
		events:      make(chan Event, 16),
		pending:     make(map[string]bool),
	}
}

// Events delivers asynchronous updates produced while recording
func (s *Speaker) Events() <-chan Event {
	return s.events
}

// Sessions returns the last loaded session list
func (s *Speaker) Sessions() []entities.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.Session, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// Current returns a copy of the selected session, or nil when none is
// selected. Callers hold no reference into guarded state.
func (s *Speaker) Current() *entities.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Transcript returns the flattened transcript of the selected session
func (s *Speaker) Transcript() string {
	return s.transcript.Text()
}

// Recording reports whether the recording toggle is on
func (s *Speaker) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

// LoadSessions fetches the speaker's sessions from the backend
func (s *Speaker) LoadSessions(ctx context.Context) ([]entities.Session, error) {
	sessions, err := s.api.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.sessions = sessions
	s.mu.Unlock()
	return sessions, nil
}

// Create creates a new active session and selects it. A second Create
// while one is in flight is rejected; a failed Create leaves the session
// list untouched.
func (s *Speaker) Create(ctx context.Context, title string) (*entities.Session, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.ErrValidation("session title is required")
	}
	if err := s.begin("create"); err != nil {
		return nil, err
	}
	defer s.end("create")

	session, err := s.api.CreateSession(ctx, title)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions = append(s.sessions, *session)
	s.current = session
	s.mu.Unlock()
	s.transcript.Reset(session.Transcript)

	s.logger.Info("speaker.session.created",
		zap.String("session_id", session.ID),
		zap.String("join_code", session.JoinCode),
	)
	return session.Clone(), nil
}

// Select picks one of the loaded sessions as the current session
func (s *Speaker) Select(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sessions {
		if s.sessions[i].ID == sessionID {
			s.current = &s.sessions[i]
			s.transcript.Reset(s.current.Transcript)
			return nil
		}
	}
	return errors.ErrNotFound("session")
}

// StartRecording turns the recording toggle on and begins streaming
// recognized speech into the session transcript. Starting while already
// recording is a no-op.
func (s *Speaker) StartRecording(ctx context.Context) error {
	s.mu.Lock()
	if s.recording {
		s.mu.Unlock()
		return nil
	}
	if s.current == nil {
		s.mu.Unlock()
		return errors.ErrSessionNotJoined()
	}
	if !s.current.IsActive() {
		sessionID := s.current.ID
		s.mu.Unlock()
		return errors.ErrSessionEnded(sessionID)
	}
	sessionID := s.current.ID
	s.mu.Unlock()

	streamCtx, cancel := context.WithCancel(ctx)
	chunks, err := s.transcriber.Stream(streamCtx)
	if err != nil {
		cancel()
		return errors.ErrInternal(err)
	}

	s.mu.Lock()
	s.recording = true
	s.stopFn = cancel
	s.mu.Unlock()

	s.streaming.Add(1)
	go s.consume(streamCtx, sessionID, chunks)

	s.logger.Info("speaker.recording.started", zap.String("session_id", sessionID))
	return nil
}

// StopRecording turns the recording toggle off. Stopping while idle is a
// no-op. The transcript accumulated so far stays intact.
func (s *Speaker) StopRecording() {
	s.mu.Lock()
	if !s.recording {
		s.mu.Unlock()
		return
	}
	s.recording = false
	stop := s.stopFn
	s.stopFn = nil
	s.mu.Unlock()

	stop()
	s.streaming.Wait()
	s.logger.Info("speaker.recording.stopped")
}

// consume drains the recognition stream, appending each chunk locally
// and forwarding it to the backend. A failed forward keeps the local
// transcript intact and is surfaced as a stream event.
func (s *Speaker) consume(ctx context.Context, sessionID string, chunks <-chan stt.Chunk) {
	defer s.streaming.Done()
	uid := uidOf(s.identity)
	for chunk := range chunks {
		tc := entities.NewTranscriptChunk(chunk.Text, uid, chunk.At)
		s.transcript.Append(tc)

		s.mu.Lock()
		if s.current != nil && s.current.ID == sessionID {
			s.current.AppendChunk(tc)
		}
		s.mu.Unlock()

		if err := s.api.AppendTranscript(ctx, sessionID, chunk.Text, chunk.At); err != nil {
			s.logger.Warn("speaker.transcript.push_failed",
				zap.String("session_id", sessionID),
				zap.Error(err),
			)
			s.emit(StreamFailed{Err: err})
		}
		s.emit(TranscriptUpdated{Text: s.transcript.Text()})
	}

	s.mu.Lock()
	if s.recording {
		// Stream ended on its own, not via StopRecording
		s.recording = false
		s.stopFn = nil
	}
	s.mu.Unlock()
}

// Upload sends a file to the session's resource set. The resource starts
// inactive. A second upload while one is in flight is rejected.
func (s *Speaker) Upload(ctx context.Context, filename string, r io.Reader) (*entities.Resource, error) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return nil, errors.ErrSessionNotJoined()
	}
	sessionID := s.current.ID
	s.mu.Unlock()

	if err := s.begin("upload"); err != nil {
		return nil, err
	}
	defer s.end("upload")

	resource, err := s.api.UploadResource(ctx, sessionID, filename, r)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.current != nil && s.current.ID == sessionID {
		s.current.Resources = append(s.current.Resources, *resource)
	}
	s.mu.Unlock()

	s.logger.Info("speaker.resource.uploaded",
		zap.String("session_id", sessionID),
		zap.String("resource_id", resource.ID),
	)
	return resource, nil
}

// SetActive promotes one uploaded resource to the single active slot.
// Selecting the already-active resource is a no-op.
func (s *Speaker) SetActive(ctx context.Context, resourceID string) error {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return errors.ErrSessionNotJoined()
	}
	if s.current.ActiveResourceID == resourceID {
		s.mu.Unlock()
		return nil
	}
	sessionID := s.current.ID
	s.mu.Unlock()

	if err := s.api.SetActiveResource(ctx, sessionID, resourceID); err != nil {
		return err
	}

	s.mu.Lock()
	if s.current != nil && s.current.ID == sessionID {
		_ = s.current.SetActiveResource(resourceID)
	}
	s.mu.Unlock()
	return nil
}

// GenerateTasks asks the backend to derive tasks from the transcript
// accumulated so far. The previous task set is replaced only on success.
func (s *Speaker) GenerateTasks(ctx context.Context) ([]entities.Task, error) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return nil, errors.ErrSessionNotJoined()
	}
	sessionID := s.current.ID
	s.mu.Unlock()

	if err := s.begin("generate-tasks"); err != nil {
		return nil, err
	}
	defer s.end("generate-tasks")

	tasks, err := s.api.GenerateTasks(ctx, sessionID, s.transcript.Text())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.current != nil && s.current.ID == sessionID {
		s.current.Tasks = tasks
	}
	s.mu.Unlock()

	s.emit(TasksUpdated{Tasks: tasks})
	return tasks, nil
}

// begin marks an operation in flight; a duplicate submission while the
// first is pending is rejected.
func (s *Speaker) begin(operation string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending[operation] {
		return errors.ErrOperationPending(operation)
	}
	s.pending[operation] = true
	return nil
}

func (s *Speaker) end(operation string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, operation)
}

func (s *Speaker) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
		// A stalled consumer must not block the recording stream
	}
}
