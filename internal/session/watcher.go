package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pandalive/panda/errors"
	"github.com/pandalive/panda/internal/domain/entities"
)

// Watcher polls the joined session for transcript, task and resource
// updates and delivers them as events. Every Subscribe is paired with an
// Unsubscribe: after Unsubscribe returns, no further event is delivered
// and the poll loop is gone.
type Watcher struct {
	cancel context.CancelFunc
	done   chan struct{}
	events chan Event

	unsubOnce sync.Once
}

// Events delivers session updates until the watcher is torn down. The
// channel closes when the session ends or Unsubscribe is called.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Unsubscribe stops the poll loop. It blocks until the loop has exited,
// so no event is delivered after it returns. Safe to call twice.
func (w *Watcher) Unsubscribe() {
	w.unsubOnce.Do(func() {
		w.cancel()
		<-w.done
	})
}

// Subscribe starts polling the joined session every interval. It
// returns an error when no session is joined.
func (l *Listener) Subscribe(interval time.Duration) (*Watcher, error) {
	l.mu.Lock()
	if l.state != JoinStateJoined {
		l.mu.Unlock()
		return nil, errors.ErrSessionNotJoined()
	}
	sessionID := l.session.ID
	l.mu.Unlock()

	if interval <= 0 {
		interval = 5 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		cancel: cancel,
		done:   make(chan struct{}),
		events: make(chan Event, 16),
	}
	go l.watch(ctx, w, sessionID, interval)
	return w, nil
}

func (l *Listener) watch(ctx context.Context, w *Watcher, sessionID string, interval time.Duration) {
	defer close(w.events)
	defer close(w.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastTasks, lastResource string
	l.mu.Lock()
	lastTasks = taskFingerprint(l.tasks)
	if l.active != nil {
		lastResource = l.active.ID
	}
	l.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if ended := l.pollOnce(ctx, w, sessionID, &lastTasks, &lastResource); ended {
			return
		}
	}
}

// pollOnce performs one update round. It reports true when the session
// has ended, which stops the watcher for good.
func (l *Listener) pollOnce(ctx context.Context, w *Watcher, sessionID string, lastTasks, lastResource *string) bool {
	text, err := l.api.Transcript(ctx, sessionID)
	switch {
	case err == nil:
		if l.transcript.MergeText(text, time.Now().UTC()) {
			l.deliver(ctx, w, TranscriptUpdated{Text: l.transcript.Text()})
		}
	case errors.CodeOf(err) == errors.ErrorCode_SESSION_ENDED:
		l.mu.Lock()
		if l.session != nil {
			l.session.End()
		}
		l.mu.Unlock()
		l.deliver(ctx, w, Ended{SessionID: sessionID})
		l.logger.Info("listener.session.ended", zap.String("session_id", sessionID))
		return true
	default:
		l.logger.Warn("listener.watch.transcript_failed", zap.Error(err))
	}

	if tasks, err := l.api.Tasks(ctx, sessionID); err == nil {
		if fp := taskFingerprint(tasks); fp != *lastTasks {
			*lastTasks = fp
			l.mu.Lock()
			l.tasks = tasks
			l.mu.Unlock()
			l.deliver(ctx, w, TasksUpdated{Tasks: tasks})
		}
	}

	if active, err := l.api.ActiveResource(ctx, sessionID); err == nil {
		id := ""
		if active != nil {
			id = active.ID
		}
		if id != *lastResource {
			*lastResource = id
			l.mu.Lock()
			l.active = active
			l.mu.Unlock()
			l.deliver(ctx, w, ActiveResourceChanged{Resource: active})
		}
	}
	return false
}

// deliver pushes an event unless teardown has started
func (l *Listener) deliver(ctx context.Context, w *Watcher, ev Event) {
	select {
	case w.events <- ev:
	case <-ctx.Done():
	}
}

func taskFingerprint(tasks []entities.Task) string {
	var sb strings.Builder
	for _, t := range tasks {
		sb.WriteString(t.ID)
		sb.WriteByte('|')
		if t.Completed {
			sb.WriteByte('x')
		}
		sb.WriteByte(';')
	}
	return sb.String()
}
