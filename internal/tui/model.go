// Package tui renders the terminal client: the auth form, the join
// preview and the role dashboards. Which view renders is decided by the
// route guard, never by the views themselves.
package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/pandalive/panda/internal/auth"
	"github.com/pandalive/panda/internal/domain/entities"
	"github.com/pandalive/panda/internal/guard"
	"github.com/pandalive/panda/internal/session"
)

// Options wires the controllers into the root model
type Options struct {
	Holder       *auth.Holder
	Speaker      *session.Speaker
	Listener     *session.Listener
	Google       *auth.GoogleOAuth
	Logger       *zap.Logger
	Demo         bool
	PollInterval time.Duration
	// InitialPath is where navigation starts; /join/{code} lands on the
	// join preview.
	InitialPath string
}

// Model is the root bubbletea model
type Model struct {
	holder   *auth.Holder
	speaker  *session.Speaker
	listener *session.Listener
	google   *auth.GoogleOAuth
	logger   *zap.Logger
	demo     bool
	interval time.Duration

	route   string
	width   int
	height  int
	status  string
	errText string

	form authForm
	sp   speakerView
	ls   listenerView
}

// New creates the root model
func New(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	path := opts.InitialPath
	if path == "" {
		path = "/"
	}
	return Model{
		holder:   opts.Holder,
		speaker:  opts.Speaker,
		listener: opts.Listener,
		google:   opts.Google,
		logger:   opts.Logger,
		demo:     opts.Demo,
		interval: opts.PollInterval,
		route:    path,
		form:     newAuthForm(),
		sp:       newSpeakerView(),
		ls:       newListenerView(),
		status:   "Resolving session...",
	}
}

// Init resolves the auth state before anything else renders
func (m Model) Init() tea.Cmd {
	return resolveAuthCmd(m.holder)
}

func resolveAuthCmd(holder *auth.Holder) tea.Cmd {
	return func() tea.Msg {
		holder.Init(context.Background())
		return authResolvedMsg{}
	}
}

// Update is the root message loop
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.teardown()
			return m, tea.Quit
		}

	case authResolvedMsg:
		m.status = ""
		m = m.navigate(m.route)
		var cmd tea.Cmd
		m, cmd = m.enterCmd()
		return m, cmd

	case signedInMsg:
		m.errText = ""
		dest := guard.SignInRedirect(m.route)
		if dest == "" {
			dest = guard.DashboardFor(msg.User)
		}
		m = m.navigate(dest)
		var cmd tea.Cmd
		m, cmd = m.enterCmd()
		return m, cmd

	case signedOutMsg:
		m.teardown()
		m = m.navigate("/auth")
		return m, nil

	case controllerEventMsg:
		return m.applyEvent(msg)

	case streamClosedMsg:
		if msg.Source == sourceSpeaker {
			m.sp.eventsArmed = false
		} else {
			m.ls.watcher = nil
		}
		return m, nil

	case authFailedMsg:
		m.form.submitting = false
		m.form.errText = msg.Err.Error()
		return m, nil

	case opFailedMsg:
		m.errText = msg.Err.Error()
		m.sp.busy = false
		m.ls.busy = false
		return m, nil
	}

	switch m.currentView() {
	case viewAuth:
		return m.updateAuth(msg)
	case viewJoin:
		return m.updateJoin(msg)
	case viewSpeaker:
		return m.updateSpeaker(msg)
	case viewListener:
		return m.updateListener(msg)
	}
	return m, nil
}

// View renders the current route
func (m Model) View() string {
	if m.holder.Loading() {
		return statusStyle.Render("\n  Resolving session...\n")
	}
	switch m.currentView() {
	case viewAuth:
		return m.viewAuth()
	case viewJoin:
		return m.viewJoin()
	case viewSpeaker:
		return m.viewSpeaker()
	case viewListener:
		return m.viewListener()
	}
	return statusStyle.Render("\n  Loading...\n")
}

type viewKind int

const (
	viewWait viewKind = iota
	viewAuth
	viewJoin
	viewSpeaker
	viewListener
)

// currentView maps the route to a view, re-checking the guard so a
// state change can never leave a protected view rendered.
func (m Model) currentView() viewKind {
	user, _ := m.holder.CurrentUser()
	route, ok := guard.Resolve(m.route)
	if !ok {
		return viewAuth
	}
	if route.Protected {
		switch guard.Decide(user, route.Requires, m.holder.Loading()) {
		case guard.OutcomeWait:
			return viewWait
		case guard.OutcomeRedirectSignIn:
			return viewAuth
		case guard.OutcomeRedirectDashboard:
			if user != nil && user.IsSpeaker() {
				return viewSpeaker
			}
			return viewListener
		}
	}
	switch route.Path {
	case "/auth":
		return viewAuth
	case "/join/:joinCode":
		return viewJoin
	case "/speaker":
		return viewSpeaker
	case "/listener":
		return viewListener
	case "/dashboard":
		if user != nil && user.IsSpeaker() {
			return viewSpeaker
		}
		return viewListener
	}
	if user == nil {
		return viewAuth
	}
	if user.IsSpeaker() {
		return viewSpeaker
	}
	return viewListener
}

// navigate applies the route guard to a navigation request. A denied
// protected route redirects to a sign-in path carrying the intended
// destination and the required role.
func (m Model) navigate(path string) Model {
	route, ok := guard.Resolve(path)
	if !ok {
		path = "/"
		route, _ = guard.Resolve(path)
	}
	if !route.Protected {
		m.route = path
		return m
	}

	user, _ := m.holder.CurrentUser()
	switch guard.Decide(user, route.Requires, m.holder.Loading()) {
	case guard.OutcomeRender, guard.OutcomeWait:
		m.route = path
	case guard.OutcomeRedirectSignIn:
		m.route = guard.SignInPath(route.Requires, path)
		if role := guard.SignInRole(m.route); role != "" {
			m.form.role = role
		}
	case guard.OutcomeRedirectDashboard:
		m.route = guard.DashboardFor(user)
	}
	return m
}

// enterCmd triggers the data load for the view the route landed on. The
// speaker event waiter is armed at most once; each delivered event
// re-arms the next wait.
func (m Model) enterCmd() (Model, tea.Cmd) {
	switch m.currentView() {
	case viewSpeaker:
		cmds := []tea.Cmd{loadSessionsCmd(m.speaker)}
		if !m.sp.eventsArmed {
			m.sp.eventsArmed = true
			cmds = append(cmds, waitEventCmd(sourceSpeaker, m.speaker.Events()))
		}
		return m, tea.Batch(cmds...)
	case viewJoin:
		if code := joinCodeFromRoute(m.route); code != "" {
			return m, previewCmd(m.listener, code)
		}
	}
	return m, nil
}

// applyEvent routes a controller event to the state it updates. Handled
// at the root so a delivery while another view is showing still re-arms
// its own stream and no other.
func (m Model) applyEvent(msg controllerEventMsg) (tea.Model, tea.Cmd) {
	if msg.Source == sourceSpeaker {
		switch ev := msg.Event.(type) {
		case session.TranscriptUpdated:
			m.sp.transcript = ev.Text
		case session.TasksUpdated:
			m.sp.notice = fmt.Sprintf("Tasks updated (%d)", len(ev.Tasks))
		case session.StreamFailed:
			m.errText = ev.Err.Error()
		}
		return m, waitEventCmd(sourceSpeaker, m.speaker.Events())
	}

	var cmd tea.Cmd
	if m.ls.watcher != nil {
		cmd = waitEventCmd(sourceWatcher, m.ls.watcher.Events())
	}
	switch ev := msg.Event.(type) {
	case session.Ended:
		m.ls.notice = "The session has ended."
		if m.ls.watcher != nil {
			m.ls.watcher.Unsubscribe()
			m.ls.watcher = nil
		}
		return m, nil
	case session.StreamFailed:
		m.errText = ev.Err.Error()
	}
	return m, cmd
}

// teardown releases live subscriptions before leaving or quitting
func (m *Model) teardown() {
	if m.ls.watcher != nil {
		m.ls.watcher.Unsubscribe()
		m.ls.watcher = nil
	}
	if m.speaker != nil && m.speaker.Recording() {
		m.speaker.StopRecording()
	}
}

func joinCodeFromRoute(route string) string {
	const prefix = "/join/"
	if len(route) > len(prefix) && route[:len(prefix)] == prefix {
		return route[len(prefix):]
	}
	return ""
}

func roleLabel(user *entities.User) string {
	if user == nil {
		return ""
	}
	return user.DisplayName + " (" + string(user.Role) + ")"
}
