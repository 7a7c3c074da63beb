package stt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptedTranscriberReplaysScript(t *testing.T) {
	lines := []string{"one", "two", "three"}
	transcriber := NewScriptedTranscriber(lines, time.Millisecond)

	chunks, err := transcriber.Stream(context.Background())
	require.NoError(t, err)

	var got []string
	for chunk := range chunks {
		got = append(got, chunk.Text)
		assert.False(t, chunk.At.IsZero())
	}
	assert.Equal(t, lines, got)
}

func TestScriptedTranscriberStopsOnCancel(t *testing.T) {
	transcriber := NewScriptedTranscriber(nil, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	chunks, err := transcriber.Stream(ctx)
	require.NoError(t, err)

	<-chunks
	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, open := <-chunks:
			if !open {
				return
			}
		case <-deadline:
			t.Fatal("stream did not close after cancel")
		}
	}
}

func TestScriptedTranscriberDefaults(t *testing.T) {
	transcriber := NewScriptedTranscriber(nil, 0)
	assert.Equal(t, DefaultScript, transcriber.lines)
	assert.Equal(t, 3*time.Second, transcriber.interval)
}
