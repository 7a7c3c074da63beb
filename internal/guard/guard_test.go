package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pandalive/panda/internal/domain/entities"
)

func TestDecide(t *testing.T) {
	speaker := entities.NewUser("s@example.com", "Speaker", entities.RoleSpeaker)
	listener := entities.NewUser("l@example.com", "Listener", entities.RoleListener)

	tests := []struct {
		name     string
		user     *entities.User
		required entities.UserRole
		loading  bool
		want     Outcome
	}{
		{name: "loading waits even when signed out", user: nil, loading: true, want: OutcomeWait},
		{name: "loading waits even when signed in", user: speaker, loading: true, want: OutcomeWait},
		{name: "signed out redirects to sign-in", user: nil, want: OutcomeRedirectSignIn},
		{name: "signed out with role requirement redirects to sign-in", user: nil, required: entities.RoleSpeaker, want: OutcomeRedirectSignIn},
		{name: "matching role renders", user: speaker, required: entities.RoleSpeaker, want: OutcomeRender},
		{name: "mismatched role redirects to dashboard", user: listener, required: entities.RoleSpeaker, want: OutcomeRedirectDashboard},
		{name: "no role requirement renders any user", user: listener, want: OutcomeRender},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.user, tt.required, tt.loading)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecideIsDeterministic(t *testing.T) {
	user := entities.NewUser("s@example.com", "Speaker", entities.RoleSpeaker)
	first := Decide(user, entities.RoleSpeaker, false)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Decide(user, entities.RoleSpeaker, false))
	}
}

func TestResolve(t *testing.T) {
	route, ok := Resolve("/join/ABCD1234")
	require.True(t, ok)
	assert.Equal(t, "/join/:joinCode", route.Path)

	route, ok = Resolve("/speaker")
	require.True(t, ok)
	assert.True(t, route.Protected)
	assert.Equal(t, entities.RoleSpeaker, route.Requires)

	_, ok = Resolve("/nope")
	assert.False(t, ok)

	_, ok = Resolve("/join/")
	assert.False(t, ok)
}

func TestDashboardFor(t *testing.T) {
	assert.Equal(t, "/auth", DashboardFor(nil))
	assert.Equal(t, "/speaker", DashboardFor(entities.NewUser("s@example.com", "S", entities.RoleSpeaker)))
	assert.Equal(t, "/listener", DashboardFor(entities.NewUser("l@example.com", "L", entities.RoleListener)))
}

func TestSignInPath(t *testing.T) {
	assert.Equal(t, "/auth", SignInPath("", ""))

	got := SignInPath(entities.RoleListener, "/join/ABCD1234")
	assert.Contains(t, got, "role=listener")
	assert.Contains(t, got, "redirect=%2Fjoin%2FABCD1234")
}

func TestSignInPathRoundTrip(t *testing.T) {
	path := SignInPath(entities.RoleSpeaker, "/speaker")
	assert.Equal(t, "/speaker", SignInRedirect(path))
	assert.Equal(t, entities.RoleSpeaker, SignInRole(path))

	assert.Empty(t, SignInRedirect("/auth"))
	assert.Empty(t, SignInRedirect("/speaker"))
	assert.Empty(t, string(SignInRole("/auth")))
}

func TestResolveIgnoresQuery(t *testing.T) {
	route, ok := Resolve("/auth?redirect=%2Fspeaker&role=speaker")
	require.True(t, ok)
	assert.Equal(t, "/auth", route.Path)
	assert.False(t, route.Protected)
}
