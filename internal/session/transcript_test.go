package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pandalive/panda/internal/domain/entities"
)

func TestTranscriptStoreAppendDeduplicates(t *testing.T) {
	store := NewTranscriptStore()

	chunk := entities.NewTranscriptChunk("hello", "uid", time.Now())
	store.Append(chunk)
	store.Append(chunk)
	store.Append(entities.NewTranscriptChunk("world", "uid", time.Now()))

	assert.Equal(t, 2, store.Len())
	assert.Equal(t, "hello world", store.Text())
}

func TestTranscriptStoreMergeExtendsPrefix(t *testing.T) {
	store := NewTranscriptStore()
	store.Append(entities.NewTranscriptChunk("hello world", "uid", time.Now()))

	changed := store.MergeText("hello world and more", time.Now())
	require.True(t, changed)
	assert.Equal(t, "hello world and more", store.Text())
	assert.Equal(t, 2, store.Len())
}

func TestTranscriptStoreMergeIgnoresRewrites(t *testing.T) {
	store := NewTranscriptStore()
	store.Append(entities.NewTranscriptChunk("hello world", "uid", time.Now()))

	assert.False(t, store.MergeText("hello world", time.Now()), "identical snapshot")
	assert.False(t, store.MergeText("goodbye world", time.Now()), "non-monotonic rewrite")
	assert.False(t, store.MergeText("hello", time.Now()), "truncated snapshot")
	assert.Equal(t, "hello world", store.Text())
	assert.Equal(t, 1, store.Len())
}

func TestTranscriptStoreMergeIntoEmpty(t *testing.T) {
	store := NewTranscriptStore()

	require.True(t, store.MergeText("first snapshot", time.Now()))
	assert.Equal(t, "first snapshot", store.Text())
}

func TestTranscriptStoreResetThenMerge(t *testing.T) {
	store := NewTranscriptStore()
	store.Reset([]entities.TranscriptChunk{
		entities.NewTranscriptChunk("one", "uid", time.Now()),
		entities.NewTranscriptChunk("two", "uid", time.Now()),
	})
	assert.Equal(t, "one two", store.Text())

	require.True(t, store.MergeText("one two three", time.Now()))
	assert.Equal(t, "one two three", store.Text())

	chunks := store.Chunks()
	require.Len(t, chunks, 3)
	assert.Equal(t, "three", chunks[2].Text)
}
