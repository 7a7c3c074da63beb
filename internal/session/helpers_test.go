package session

import (
	"net/http/httptest"
	"testing"

	"github.com/pandalive/panda/internal/api"
	"github.com/pandalive/panda/internal/demo"
	"github.com/pandalive/panda/internal/domain/entities"
)

// staticIdentity is a fixed signed-in user for controller tests
type staticIdentity struct {
	user *entities.User
}

func (s staticIdentity) CurrentUser() (*entities.User, bool) {
	return s.user, s.user != nil
}

// testBackend is a demo backend with one authenticated client per role
type testBackend struct {
	server   *demo.Server
	ts       *httptest.Server
	speaker  *entities.User
	listener *entities.User
}

func newTestBackend(t *testing.T) *testBackend {
	t.Helper()

	server := demo.NewServer("test-secret", nil)
	speaker, listener := server.Seed()
	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)

	return &testBackend{
		server:   server,
		ts:       ts,
		speaker:  speaker,
		listener: listener,
	}
}

// clientFor returns an API client authenticated as the given user
func (b *testBackend) clientFor(t *testing.T, user *entities.User) *api.Client {
	t.Helper()

	token, err := b.server.Identity().Token(user)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return api.New(b.ts.URL,
		api.WithToken(func() string { return token }),
		api.WithRetries(0),
	)
}

// backendClientNoAuth returns a client with no credential attached
func backendClientNoAuth(t *testing.T, b *testBackend) *api.Client {
	t.Helper()
	return api.New(b.ts.URL, api.WithRetries(0))
}
