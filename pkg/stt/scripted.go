package stt

import (
	"context"
	"time"
)

// DefaultScript is the canned narration used when no transcription
// service is configured.
var DefaultScript = []string{
	"Welcome everyone to today's session. We'll be discussing the latest developments in artificial intelligence and machine learning.",
	"Additionally, we should consider the ethical implications of AI systems.",
	"The key challenge is ensuring transparency in algorithmic decision making.",
	"Machine learning models require careful validation and testing procedures.",
	"Data privacy remains a critical concern in AI development.",
}

// ScriptedTranscriber replays a fixed script on a timer. It stands in
// for live speech capture in demo mode and in tests.
type ScriptedTranscriber struct {
	lines    []string
	interval time.Duration
}

// NewScriptedTranscriber replays lines one per interval. Empty lines
// selects DefaultScript.
func NewScriptedTranscriber(lines []string, interval time.Duration) *ScriptedTranscriber {
	if len(lines) == 0 {
		lines = DefaultScript
	}
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &ScriptedTranscriber{lines: lines, interval: interval}
}

// Stream emits one scripted line per interval and closes the channel
// after the last line or when ctx is cancelled.
func (s *ScriptedTranscriber) Stream(ctx context.Context) (<-chan Chunk, error) {
	out := make(chan Chunk)
	go func() {
		defer close(out)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for _, line := range s.lines {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			select {
			case out <- Chunk{Text: line, At: time.Now().UTC()}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
