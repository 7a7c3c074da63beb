package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pandalive/panda/errors"
)

func TestListenerJoinUnknownCode(t *testing.T) {
	backend := newTestBackend(t)
	client := backend.clientFor(t, backend.listener)
	ctl := NewListener(client, staticIdentity{user: backend.listener}, nil)

	_, err := ctl.Join(context.Background(), "NOPE1234")
	require.Error(t, err)
	assert.Equal(t, errors.ErrorCode_SESSION_NOT_FOUND, errors.CodeOf(err))
	assert.Equal(t, JoinStateNone, ctl.State(), "failed join returns to not-joined")
}

func TestListenerJoinIsIdempotent(t *testing.T) {
	backend := newTestBackend(t)
	live := backend.server.Store().CreateSession("AI basics", backend.speaker)
	backend.server.Store().AppendChunk(live.ID, "welcome to the session", backend.speaker.UID, time.Now())

	client := backend.clientFor(t, backend.listener)
	ctl := NewListener(client, staticIdentity{user: backend.listener}, nil)

	joined, err := ctl.Join(context.Background(), live.JoinCode)
	require.NoError(t, err)
	assert.Equal(t, JoinStateJoined, ctl.State())
	assert.Equal(t, live.ID, joined.ID)
	assert.Contains(t, ctl.Transcript(), "welcome to the session")

	again, err := ctl.Join(context.Background(), live.JoinCode)
	require.NoError(t, err)
	assert.Equal(t, joined.ID, again.ID)
	assert.Equal(t, 1, backend.server.Store().ParticipantCount(live.ID), "rejoin adds no duplicate membership")
}

func TestListenerJoinLowercaseCode(t *testing.T) {
	backend := newTestBackend(t)
	live := backend.server.Store().CreateSession("Case test", backend.speaker)

	client := backend.clientFor(t, backend.listener)
	ctl := NewListener(client, staticIdentity{user: backend.listener}, nil)

	joined, err := ctl.Join(context.Background(), " "+strings.ToLower(live.JoinCode)+" ")
	require.NoError(t, err)
	assert.Equal(t, live.ID, joined.ID)
}

func TestListenerPreviewRequiresNoAuth(t *testing.T) {
	backend := newTestBackend(t)
	live := backend.server.Store().CreateSession("Open preview", backend.speaker)

	// No token attached at all
	anon := NewListener(backendClientNoAuth(t, backend), nil, nil)

	info, err := anon.Preview(context.Background(), live.JoinCode)
	require.NoError(t, err)
	assert.Equal(t, "Open preview", info.Title)
	assert.Equal(t, backend.speaker.DisplayName, info.SpeakerName)

	_, err = anon.Preview(context.Background(), "MISSING1")
	require.Error(t, err)
	assert.Equal(t, errors.ErrorCode_SESSION_NOT_FOUND, errors.CodeOf(err))
}

func TestListenerSessionIsDetachedSnapshot(t *testing.T) {
	backend := newTestBackend(t)
	live := backend.server.Store().CreateSession("Snapshot", backend.speaker)

	client := backend.clientFor(t, backend.listener)
	ctl := NewListener(client, staticIdentity{user: backend.listener}, nil)
	_, err := ctl.Join(context.Background(), live.JoinCode)
	require.NoError(t, err)

	snapshot := ctl.Session()
	require.NotNil(t, snapshot)
	assert.NotSame(t, snapshot, ctl.Session())

	snapshot.End()
	assert.True(t, ctl.Session().IsActive(), "mutating a snapshot leaves controller state intact")
}

func TestListenerAskAppendsOneExchange(t *testing.T) {
	backend := newTestBackend(t)
	live := backend.server.Store().CreateSession("Q&A", backend.speaker)

	client := backend.clientFor(t, backend.listener)
	ctl := NewListener(client, staticIdentity{user: backend.listener}, nil)

	_, err := ctl.Join(context.Background(), live.JoinCode)
	require.NoError(t, err)

	first, err := ctl.Ask(context.Background(), "What is a neural network?")
	require.NoError(t, err)
	assert.Contains(t, first.Response, "What is a neural network?")

	_, err = ctl.Ask(context.Background(), "And what about ethics?")
	require.NoError(t, err)

	history := ctl.History()
	require.Len(t, history, 2)
	assert.Equal(t, "What is a neural network?", history[0].Message)
	assert.Equal(t, "And what about ethics?", history[1].Message)
	assert.Equal(t, backend.listener.UID, history[0].UserID)
}

func TestListenerAskRequiresJoin(t *testing.T) {
	backend := newTestBackend(t)
	client := backend.clientFor(t, backend.listener)
	ctl := NewListener(client, staticIdentity{user: backend.listener}, nil)

	_, err := ctl.Ask(context.Background(), "hello?")
	require.Error(t, err)
	assert.Equal(t, errors.ErrorCode_SESSION_NOT_JOINED, errors.CodeOf(err))
}

func TestWatcherDeliversUpdatesAndStopsOnEnd(t *testing.T) {
	backend := newTestBackend(t)
	live := backend.server.Store().CreateSession("Watched", backend.speaker)

	client := backend.clientFor(t, backend.listener)
	ctl := NewListener(client, staticIdentity{user: backend.listener}, nil)
	_, err := ctl.Join(context.Background(), live.JoinCode)
	require.NoError(t, err)

	watcher, err := ctl.Subscribe(20 * time.Millisecond)
	require.NoError(t, err)

	backend.server.Store().AppendChunk(live.ID, "a new thought arrived", backend.speaker.UID, time.Now())

	require.Eventually(t, func() bool {
		select {
		case ev, ok := <-watcher.Events():
			if !ok {
				return false
			}
			if up, isUpdate := ev.(TranscriptUpdated); isUpdate {
				return strings.Contains(up.Text, "a new thought arrived")
			}
			return false
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	backend.server.Store().EndSession(live.ID)

	var sawEnded bool
	deadline := time.After(2 * time.Second)
	for !sawEnded {
		select {
		case ev, ok := <-watcher.Events():
			if !ok {
				t.Fatal("event stream closed before the end notification")
			}
			if _, isEnd := ev.(Ended); isEnd {
				sawEnded = true
			}
		case <-deadline:
			t.Fatal("end-of-session event did not arrive")
		}
	}

	// After the end event the stream closes on its own
	_, open := <-watcher.Events()
	assert.False(t, open)
	require.NotNil(t, ctl.Session())
	assert.False(t, ctl.Session().IsActive())

	// Unsubscribe after natural shutdown is safe
	watcher.Unsubscribe()
}

func TestWatcherUnsubscribeStopsDelivery(t *testing.T) {
	backend := newTestBackend(t)
	live := backend.server.Store().CreateSession("Torn down", backend.speaker)

	client := backend.clientFor(t, backend.listener)
	ctl := NewListener(client, staticIdentity{user: backend.listener}, nil)
	_, err := ctl.Join(context.Background(), live.JoinCode)
	require.NoError(t, err)

	watcher, err := ctl.Subscribe(10 * time.Millisecond)
	require.NoError(t, err)

	watcher.Unsubscribe()
	watcher.Unsubscribe()

	// The poll loop is gone: the channel drains and closes
	for range watcher.Events() {
	}
}

func TestSubscribeRequiresJoin(t *testing.T) {
	backend := newTestBackend(t)
	client := backend.clientFor(t, backend.listener)
	ctl := NewListener(client, staticIdentity{user: backend.listener}, nil)

	_, err := ctl.Subscribe(time.Second)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorCode_SESSION_NOT_JOINED, errors.CodeOf(err))
}
