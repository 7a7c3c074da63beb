package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// RemoteTranscriber is a minimal client for an AssemblyAI-style
// transcription API. It opens a transcript job and polls it while
// recording is on, emitting the newly recognized tail of the text.
type RemoteTranscriber struct {
	apiKey   string
	baseURL  string
	client   *http.Client
	interval time.Duration
}

// NewRemoteTranscriber creates a transcriber for the given API endpoint.
// An empty apiKey falls back to the STT_API_KEY environment variable.
func NewRemoteTranscriber(baseURL, apiKey string) *RemoteTranscriber {
	if apiKey == "" {
		apiKey = os.Getenv("STT_API_KEY")
	}
	if baseURL == "" {
		baseURL = "https://api.assemblyai.com"
	}
	return &RemoteTranscriber{
		apiKey:   apiKey,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: 30 * time.Second},
		interval: 2 * time.Second,
	}
}

type transcriptJob struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Text   string `json:"text"`
}

// Stream opens a transcript job and polls it until ctx is cancelled or
// the job completes. Each poll emits only the text recognized since the
// previous poll.
func (t *RemoteTranscriber) Stream(ctx context.Context) (<-chan Chunk, error) {
	job, err := t.open(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan Chunk)
	go func() {
		defer close(out)
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		var emitted string
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			cur, err := t.poll(ctx, job.ID)
			if err != nil {
				continue
			}
			if len(cur.Text) > len(emitted) && strings.HasPrefix(cur.Text, emitted) {
				tail := strings.TrimSpace(cur.Text[len(emitted):])
				if tail != "" {
					select {
					case out <- Chunk{Text: tail, At: time.Now().UTC()}:
						emitted = cur.Text
					case <-ctx.Done():
						return
					}
				}
			}
			if cur.Status == "completed" || cur.Status == "error" {
				return
			}
		}
	}()
	return out, nil
}

func (t *RemoteTranscriber) open(ctx context.Context) (*transcriptJob, error) {
	payload := map[string]interface{}{
		"speaker_labels":     false,
		"language_detection": true,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", t.baseURL+"/v2/transcripts", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", t.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("stt returned status %d", resp.StatusCode)
	}

	var job transcriptJob
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (t *RemoteTranscriber) poll(ctx context.Context, id string) (*transcriptJob, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", t.baseURL+"/v2/transcripts/"+id, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("stt returned status %d", resp.StatusCode)
	}

	var job transcriptJob
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return nil, err
	}
	return &job, nil
}
