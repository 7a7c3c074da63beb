package entities

import (
	"time"

	"github.com/google/uuid"
)

// TranscriptChunk is an ordered, append-only unit of transcribed speech.
// Ordering is by timestamp/append order.
type TranscriptChunk struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	SpeakerID string    `json:"speakerId"`
}

// NewTranscriptChunk creates a chunk authored by the given speaker
func NewTranscriptChunk(text, speakerID string, at time.Time) TranscriptChunk {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return TranscriptChunk{
		ID:        uuid.NewString(),
		Text:      text,
		Timestamp: at,
		SpeakerID: speakerID,
	}
}
