package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pandalive/panda/errors"
	"github.com/pandalive/panda/pkg/stt"
)

func TestSpeakerCreateAssignsDistinctSessions(t *testing.T) {
	backend := newTestBackend(t)
	client := backend.clientFor(t, backend.speaker)
	ctl := NewSpeaker(client, nil, staticIdentity{user: backend.speaker}, nil)

	first, err := ctl.Create(context.Background(), "Monday standup")
	require.NoError(t, err)
	second, err := ctl.Create(context.Background(), "Monday standup")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.JoinCode, second.JoinCode)
	assert.Len(t, first.JoinCode, 8)
	assert.Equal(t, first.JoinCode, strings.ToUpper(first.JoinCode))

	sessions, err := ctl.LoadSessions(context.Background())
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestSpeakerCreateValidatesTitle(t *testing.T) {
	backend := newTestBackend(t)
	client := backend.clientFor(t, backend.speaker)
	ctl := NewSpeaker(client, nil, staticIdentity{user: backend.speaker}, nil)

	_, err := ctl.Create(context.Background(), "   ")
	require.Error(t, err)
	assert.Equal(t, errors.ErrorCode_VALIDATION_FAILED, errors.CodeOf(err))
}

func TestSpeakerRecordingToggleStreamsTranscript(t *testing.T) {
	backend := newTestBackend(t)
	client := backend.clientFor(t, backend.speaker)
	transcriber := stt.NewScriptedTranscriber([]string{"hello everyone", "welcome back"}, 10*time.Millisecond)
	ctl := NewSpeaker(client, transcriber, staticIdentity{user: backend.speaker}, nil)

	created, err := ctl.Create(context.Background(), "Live recording")
	require.NoError(t, err)

	// Stopping while idle is a no-op
	ctl.StopRecording()
	assert.False(t, ctl.Recording())

	require.NoError(t, ctl.StartRecording(context.Background()))
	assert.True(t, ctl.Recording())
	// Starting while recording is a no-op
	require.NoError(t, ctl.StartRecording(context.Background()))

	deadline := time.After(2 * time.Second)
	for ctl.transcript.Len() < 2 {
		select {
		case <-deadline:
			t.Fatal("transcript chunks did not arrive in time")
		case <-time.After(5 * time.Millisecond):
		}
	}

	ctl.StopRecording()
	assert.False(t, ctl.Recording())

	text := ctl.Transcript()
	assert.Contains(t, text, "hello everyone")
	assert.Contains(t, text, "welcome back")

	// The chunks were forwarded to the backend as well
	stored, ok := backend.server.Store().Session(created.ID)
	require.True(t, ok)
	assert.Contains(t, stored.TranscriptText(), "hello everyone")
}

func TestSpeakerUploadAndSetActive(t *testing.T) {
	backend := newTestBackend(t)
	client := backend.clientFor(t, backend.speaker)
	ctl := NewSpeaker(client, nil, staticIdentity{user: backend.speaker}, nil)

	_, err := ctl.Create(context.Background(), "Resources")
	require.NoError(t, err)

	slides, err := ctl.Upload(context.Background(), "slides.pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.False(t, slides.IsActive)

	diagram, err := ctl.Upload(context.Background(), "diagram.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)

	require.NoError(t, ctl.SetActive(context.Background(), slides.ID))
	require.NoError(t, ctl.SetActive(context.Background(), diagram.ID))
	// Re-activating the active resource is a no-op
	require.NoError(t, ctl.SetActive(context.Background(), diagram.ID))

	current := ctl.Current()
	require.NotNil(t, current)
	assert.Equal(t, diagram.ID, current.ActiveResourceID)

	stored, ok := backend.server.Store().Session(current.ID)
	require.True(t, ok)
	active := 0
	for _, r := range stored.Resources {
		if r.IsActive {
			active++
		}
	}
	assert.Equal(t, 1, active)
}

func TestSpeakerGenerateTasksReplacesTaskSet(t *testing.T) {
	backend := newTestBackend(t)
	client := backend.clientFor(t, backend.speaker)
	ctl := NewSpeaker(client, nil, staticIdentity{user: backend.speaker}, nil)

	created, err := ctl.Create(context.Background(), "Tasks")
	require.NoError(t, err)

	first, err := ctl.GenerateTasks(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := ctl.GenerateTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, second, len(first))
	assert.NotEqual(t, first[0].ID, second[0].ID, "generation replaces, never appends")

	stored, ok := backend.server.Store().Session(created.ID)
	require.True(t, ok)
	assert.Len(t, stored.Tasks, len(second))
}

func TestSpeakerCurrentIsDetachedSnapshot(t *testing.T) {
	backend := newTestBackend(t)
	client := backend.clientFor(t, backend.speaker)
	ctl := NewSpeaker(client, nil, staticIdentity{user: backend.speaker}, nil)

	_, err := ctl.Create(context.Background(), "Snapshots")
	require.NoError(t, err)

	before := ctl.Current()
	require.NotNil(t, before)
	require.Empty(t, before.Tasks)

	_, err = ctl.GenerateTasks(context.Background())
	require.NoError(t, err)
	_, err = ctl.Upload(context.Background(), "slides.pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)

	assert.Empty(t, before.Tasks, "earlier snapshot is unaffected by later mutations")
	assert.Empty(t, before.Resources)

	after := ctl.Current()
	assert.NotSame(t, before, after)
	assert.NotEmpty(t, after.Tasks)
	assert.Len(t, after.Resources, 1)
}

func TestSpeakerCurrentSafeUnderConcurrentReads(t *testing.T) {
	backend := newTestBackend(t)
	client := backend.clientFor(t, backend.speaker)
	ctl := NewSpeaker(client, nil, staticIdentity{user: backend.speaker}, nil)

	_, err := ctl.Create(context.Background(), "Concurrent reads")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			if current := ctl.Current(); current != nil {
				_ = len(current.Tasks)
				_ = len(current.Resources)
				_ = current.ActiveResourceID
			}
		}
	}()

	for i := 0; i < 5; i++ {
		_, err := ctl.GenerateTasks(context.Background())
		require.NoError(t, err)
	}
	<-done
}

func TestSpeakerOperationsRequireSession(t *testing.T) {
	backend := newTestBackend(t)
	client := backend.clientFor(t, backend.speaker)
	ctl := NewSpeaker(client, nil, staticIdentity{user: backend.speaker}, nil)

	assert.Error(t, ctl.StartRecording(context.Background()))
	_, err := ctl.GenerateTasks(context.Background())
	assert.Error(t, err)
	_, err = ctl.Upload(context.Background(), "a.pdf", strings.NewReader("x"))
	assert.Error(t, err)
	assert.Error(t, ctl.SetActive(context.Background(), "r1"))
}

func TestSpeakerDoubleSubmitGuard(t *testing.T) {
	backend := newTestBackend(t)
	client := backend.clientFor(t, backend.speaker)
	ctl := NewSpeaker(client, nil, staticIdentity{user: backend.speaker}, nil)

	require.NoError(t, ctl.begin("create"))
	err := ctl.begin("create")
	require.Error(t, err)
	assert.Equal(t, errors.ErrorCode_OPERATION_PENDING, errors.CodeOf(err))
	// Guards are per-operation, not view-wide
	require.NoError(t, ctl.begin("upload"))

	ctl.end("create")
	require.NoError(t, ctl.begin("create"))
}
