// Package stt provides speech-to-text capture for the speaker's
// broadcast. The live controller only depends on the Transcriber
// interface; the concrete source is chosen at wiring time.
package stt

import (
	"context"
	"time"
)

// Chunk is one recognized fragment of speech
type Chunk struct {
	Text string
	At   time.Time
}

// Transcriber emits recognized speech while recording is on. The
// returned channel closes when recording stops or ctx is cancelled.
type Transcriber interface {
	Stream(ctx context.Context) (<-chan Chunk, error)
}
