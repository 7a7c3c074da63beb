package api

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pandalive/panda/errors"
	"github.com/pandalive/panda/internal/demo"
	"github.com/pandalive/panda/internal/domain/entities"
)

// fixture is a demo backend plus a client whose token can be swapped
type fixture struct {
	server *demo.Server
	ts     *httptest.Server
	token  string
	client *Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{server: demo.NewServer("api-test-secret", nil)}
	f.ts = httptest.NewServer(f.server)
	t.Cleanup(f.ts.Close)

	f.client = New(f.ts.URL,
		WithToken(func() string { return f.token }),
		WithRetries(0),
	)
	return f
}

func (f *fixture) signInAs(t *testing.T, user *entities.User) {
	t.Helper()
	token, err := f.server.Identity().Token(user)
	require.NoError(t, err)
	f.token = token
}

func TestClientAuthFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.client.Register(ctx, "maya@example.com", "secret1", "Maya", entities.RoleSpeaker)
	require.NoError(t, err)
	require.NotNil(t, resp.User)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, entities.RoleSpeaker, resp.User.Role)

	// Duplicate registration conflicts
	_, err = f.client.Register(ctx, "maya@example.com", "secret1", "Maya", entities.RoleSpeaker)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorCode_ALREADY_EXISTS, errors.CodeOf(err))

	signed, err := f.client.SignIn(ctx, "maya@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, resp.User.UID, signed.User.UID)

	_, err = f.client.SignIn(ctx, "maya@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, errors.ErrorCode_UNAUTHENTICATED, errors.CodeOf(err))

	f.token = signed.Token
	profile, err := f.client.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "maya@example.com", profile.Email)

	require.NoError(t, f.client.SignOut(ctx, signed.Token))
	_, err = f.client.Profile(ctx)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorCode_UNAUTHENTICATED, errors.CodeOf(err))

	// The revoked token stays invalid even when still attached locally
	_, ok := f.server.Identity().Validate(signed.Token)
	assert.False(t, ok)
}

func TestClientOAuthSignIn(t *testing.T) {
	f := newFixture(t)

	resp, err := f.client.OAuthSignIn(context.Background(), "google", "assertion-abc")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "Demo Google User", resp.User.DisplayName)

	// The same assertion resolves to the same account
	again, err := f.client.OAuthSignIn(context.Background(), "google", "assertion-abc")
	require.NoError(t, err)
	assert.Equal(t, resp.User.UID, again.User.UID)
}

func TestClientErrorMapping(t *testing.T) {
	f := newFixture(t)
	speaker, listener := f.server.Seed()
	ctx := context.Background()

	// No credential
	_, err := f.client.ListSessions(ctx)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorCode_UNAUTHENTICATED, errors.CodeOf(err))

	// Wrong role
	f.signInAs(t, listener)
	_, err = f.client.CreateSession(ctx, "Not allowed")
	require.Error(t, err)
	assert.Equal(t, errors.ErrorCode_PERMISSION_DENIED, errors.CodeOf(err))

	// Unknown join code
	_, err = f.client.SessionInfo(ctx, "ZZZZZZZZ")
	require.Error(t, err)
	assert.Equal(t, errors.ErrorCode_SESSION_NOT_FOUND, errors.CodeOf(err))

	// Ended session
	ended := f.server.Store().CreateSession("Over", speaker)
	f.server.Store().EndSession(ended.ID)
	_, err = f.client.Join(ctx, ended.JoinCode)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorCode_SESSION_ENDED, errors.CodeOf(err))

	// Unreachable backend
	offline := New("http://127.0.0.1:1", WithRetries(0))
	_, err = offline.ListSessions(ctx)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorCode_NETWORK_FAILED, errors.CodeOf(err))
	assert.True(t, errors.IsRetryable(err))
}

func TestClientSessionRoundTrip(t *testing.T) {
	f := newFixture(t)
	speaker, listener := f.server.Seed()
	ctx := context.Background()

	f.signInAs(t, speaker)
	created, err := f.client.CreateSession(ctx, "Full flow")
	require.NoError(t, err)
	require.Len(t, created.JoinCode, 8)

	require.NoError(t, f.client.AppendTranscript(ctx, created.ID, "first words", time.Now()))
	require.NoError(t, f.client.AppendTranscript(ctx, created.ID, "more words", time.Now()))

	text, err := f.client.Transcript(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "first words more words", text)

	tasks, err := f.client.GenerateTasks(ctx, created.ID, text)
	require.NoError(t, err)
	assert.NotEmpty(t, tasks)

	fetched, err := f.client.Tasks(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, fetched, len(tasks))

	// No resource active yet
	active, err := f.client.ActiveResource(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, active)

	uploaded, err := f.client.UploadResource(ctx, created.ID, "slides.pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, entities.ResourceTypePDF, uploaded.Type)
	assert.False(t, uploaded.IsActive)

	require.NoError(t, f.client.SetActiveResource(ctx, created.ID, uploaded.ID))
	active, err = f.client.ActiveResource(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, uploaded.ID, active.ID)

	// Listener side
	f.signInAs(t, listener)
	info, err := f.client.SessionInfo(ctx, created.JoinCode)
	require.NoError(t, err)
	assert.Equal(t, "Full flow", info.Title)

	joined, err := f.client.Join(ctx, created.JoinCode)
	require.NoError(t, err)
	assert.Equal(t, created.ID, joined.ID)

	answer, err := f.client.Query(ctx, created.ID, "what was discussed?")
	require.NoError(t, err)
	assert.Contains(t, answer, "what was discussed?")
}
