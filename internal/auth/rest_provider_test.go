package auth

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pandalive/panda/errors"
	"github.com/pandalive/panda/internal/api"
	"github.com/pandalive/panda/internal/demo"
)

// newBackendHolder wires a holder against an in-process backend the same
// way the application does: the client's token source reads the holder.
func newBackendHolder(t *testing.T) (*demo.Server, *Holder) {
	t.Helper()

	server := demo.NewServer("test-secret", nil)
	server.Seed()
	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)

	var holder *Holder
	client := api.New(ts.URL,
		api.WithRetries(0),
		api.WithToken(func() string {
			if holder == nil {
				return ""
			}
			return holder.Token()
		}),
	)
	holder = NewHolder(NewRestProvider(client, nil, nil), nil, nil)
	holder.Init(context.Background())
	return server, holder
}

func TestRestProviderSignIn(t *testing.T) {
	_, holder := newBackendHolder(t)

	require.NoError(t, holder.SignIn(context.Background(), "speaker@panda.live", "demo123"))
	user, ok := holder.CurrentUser()
	require.True(t, ok)
	assert.True(t, user.IsSpeaker())
	assert.NotEmpty(t, holder.Token())

	err := holder.SignIn(context.Background(), "speaker@panda.live", "wrong")
	require.Error(t, err)
	assert.Equal(t, errors.ErrorCode_AUTH_INVALID_CREDENTIALS, errors.CodeOf(err))
}

func TestSignOutRevokesTokenServerSide(t *testing.T) {
	server, holder := newBackendHolder(t)

	require.NoError(t, holder.SignIn(context.Background(), "speaker@panda.live", "demo123"))
	token := holder.Token()
	require.NotEmpty(t, token)

	_, ok := server.Identity().Validate(token)
	require.True(t, ok)

	require.NoError(t, holder.SignOut(context.Background()))
	assert.Empty(t, holder.Token())
	_, ok = holder.CurrentUser()
	assert.False(t, ok)

	_, ok = server.Identity().Validate(token)
	assert.False(t, ok, "token is invalid server-side after sign-out")
}
