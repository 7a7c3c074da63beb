package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pandalive/panda/internal/auth"
	"github.com/pandalive/panda/internal/domain/entities"
	"github.com/pandalive/panda/internal/guard"
	"github.com/pandalive/panda/internal/session"
)

// stubProvider signs everyone in as a fixed user
type stubProvider struct {
	user *entities.User
}

func (s *stubProvider) SignIn(ctx context.Context, email, password string) (*entities.User, string, error) {
	return s.user, "tok", nil
}

func (s *stubProvider) SignUp(ctx context.Context, req auth.SignUpRequest) (*entities.User, string, error) {
	return s.user, "tok", nil
}

func (s *stubProvider) SignInWithProvider(ctx context.Context, assertion string) (*entities.User, string, error) {
	return s.user, "tok", nil
}

func (s *stubProvider) Resume(ctx context.Context, token string) (*entities.User, error) {
	return s.user, nil
}

func (s *stubProvider) SignOut(ctx context.Context, token string) error {
	return nil
}

func newTestModel(t *testing.T, user *entities.User, initialPath string) Model {
	t.Helper()

	holder := auth.NewHolder(&stubProvider{user: user}, nil, nil)
	holder.Init(context.Background())
	if user != nil {
		require.NoError(t, holder.SignIn(context.Background(), user.Email, "secret"))
	}

	return New(Options{
		Holder:      holder,
		Speaker:     session.NewSpeaker(nil, nil, holder, nil),
		Listener:    session.NewListener(nil, holder, nil),
		InitialPath: initialPath,
	})
}

func TestNavigateRedirectsSignedOutToAuth(t *testing.T) {
	m := newTestModel(t, nil, "/")

	m = m.navigate("/speaker")
	assert.Equal(t, viewAuth, m.currentView())
	assert.Equal(t, "/speaker", guard.SignInRedirect(m.route), "intended destination is preserved")
	assert.Equal(t, entities.RoleSpeaker, m.form.role, "role hint preselects the form")
}

func TestSignInReturnsToIntendedDestination(t *testing.T) {
	speaker := entities.NewUser("s@example.com", "Speaker", entities.RoleSpeaker)
	m := newTestModel(t, nil, "/")
	m = m.navigate("/speaker")
	require.Equal(t, viewAuth, m.currentView())

	// The holder behind the model now has a user; the sign-in path still
	// carries the destination
	signedIn := newTestModel(t, speaker, "/")
	signedIn.route = m.route
	updated, _ := signedIn.Update(signedInMsg{User: speaker})

	assert.Equal(t, "/speaker", updated.(Model).route)
}

func TestSignInWithoutRedirectLandsOnRoleDashboard(t *testing.T) {
	listener := entities.NewUser("l@example.com", "Listener", entities.RoleListener)
	m := newTestModel(t, listener, "/")

	updated, _ := m.Update(signedInMsg{User: listener})
	assert.Equal(t, "/listener", updated.(Model).route)
}

func TestNavigateRedirectsWrongRoleToDashboard(t *testing.T) {
	listener := entities.NewUser("l@example.com", "Listener", entities.RoleListener)
	m := newTestModel(t, listener, "/")

	m = m.navigate("/speaker")
	assert.Equal(t, "/listener", m.route)
	assert.Equal(t, viewListener, m.currentView())
}

func TestJoinRouteCarriesCode(t *testing.T) {
	m := newTestModel(t, nil, "/join/ABCD1234")
	m = m.navigate(m.route)

	assert.Equal(t, viewJoin, m.currentView())
	assert.Equal(t, "ABCD1234", joinCodeFromRoute(m.route))
	assert.Empty(t, joinCodeFromRoute("/speaker"))
}

func TestSpeakerEventWaiterArmsOncePerStream(t *testing.T) {
	speaker := entities.NewUser("s@example.com", "Speaker", entities.RoleSpeaker)
	m := newTestModel(t, speaker, "/")

	updated, _ := m.Update(signedInMsg{User: speaker})
	m = updated.(Model)
	require.Equal(t, "/speaker", m.route)
	require.True(t, m.sp.eventsArmed)

	// Re-entering the view does not park a second waiter
	m, _ = m.enterCmd()
	assert.True(t, m.sp.eventsArmed)

	// A closed stream releases the flag so a fresh one can be armed
	updated, _ = m.Update(streamClosedMsg{Source: sourceSpeaker})
	m = updated.(Model)
	assert.False(t, m.sp.eventsArmed)
	m, _ = m.enterCmd()
	assert.True(t, m.sp.eventsArmed)
}

func TestGoogleSignInCollectsAuthorizationCode(t *testing.T) {
	m := newTestModel(t, nil, "/auth")
	m.google = auth.NewGoogleOAuth("client-1", "secret", "http://localhost:8910/callback")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	m = updated.(Model)
	assert.Nil(t, cmd, "nothing is submitted before the code is pasted")
	require.True(t, m.form.googleFlow)
	assert.Contains(t, m.form.googleURL, "accounts.google.com")
	assert.Contains(t, m.form.googleURL, "client_id=client-1")

	for _, r := range "auth-code-1" {
		updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = updated.(Model)
	}
	assert.Equal(t, "auth-code-1", m.form.googleCode)

	updated, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	assert.NotNil(t, cmd)
	assert.False(t, m.form.googleFlow)
	assert.True(t, m.form.submitting)
}

func TestGoogleSignInFlowCancels(t *testing.T) {
	m := newTestModel(t, nil, "/auth")
	m.google = auth.NewGoogleOAuth("client-1", "secret", "http://localhost:8910/callback")

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	m = updated.(Model)
	require.True(t, m.form.googleFlow)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	assert.False(t, m.form.googleFlow)
	assert.False(t, m.form.submitting)
}

func TestGoogleSignInWithoutFlowSubmitsDirectly(t *testing.T) {
	m := newTestModel(t, nil, "/auth")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	m = updated.(Model)
	assert.NotNil(t, cmd)
	assert.True(t, m.form.submitting)
}
