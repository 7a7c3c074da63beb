package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pandalive/panda/internal/domain/entities"
	"github.com/pandalive/panda/internal/guard"
	"github.com/pandalive/panda/internal/session"
)

type listenerMode int

const (
	lsModeCode listenerMode = iota
	lsModeMain
)

// listenerView is the following dashboard state
type listenerView struct {
	mode    listenerMode
	input   string
	busy    bool
	watcher *session.Watcher
	notice  string

	previewCode string
	preview     *entities.SessionInfo
	previewErr  error
}

func newListenerView() listenerView {
	return listenerView{}
}

func (m Model) updateListener(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case joinedMsg:
		return m.afterJoin(msg.Session)

	case askAnsweredMsg:
		m.ls.busy = false
		m.ls.input = ""
		return m, nil

	case tea.KeyMsg:
		return m.listenerKeys(msg)
	}
	return m, nil
}

func (m Model) afterJoin(joined *entities.Session) (tea.Model, tea.Cmd) {
	m.ls.busy = false
	m.ls.input = ""
	m.ls.mode = lsModeMain
	m.ls.notice = "Joined " + joined.Title
	m = m.navigate("/listener")

	if m.ls.watcher != nil {
		m.ls.watcher.Unsubscribe()
	}
	watcher, err := m.listener.Subscribe(m.interval)
	if err != nil {
		m.errText = err.Error()
		return m, nil
	}
	m.ls.watcher = watcher
	return m, waitEventCmd(sourceWatcher, watcher.Events())
}

func (m Model) listenerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ls.busy {
		return m, nil
	}

	switch msg.String() {
	case "ctrl+o":
		return m, signOutCmd(m.holder)
	case "ctrl+l":
		if m.ls.watcher != nil {
			m.ls.watcher.Unsubscribe()
			m.ls.watcher = nil
		}
		m.listener.Leave()
		m.ls = newListenerView()
		return m, nil
	case "enter":
		input := strings.TrimSpace(m.ls.input)
		if input == "" {
			return m, nil
		}
		m.ls.busy = true
		if m.ls.mode == lsModeCode {
			return m, joinCmd(m.listener, input)
		}
		return m, askCmd(m.listener, input)
	case "backspace":
		if m.ls.input != "" {
			m.ls.input = m.ls.input[:len(m.ls.input)-1]
		}
		return m, nil
	}
	if msg.Type == tea.KeyRunes {
		m.ls.input += string(msg.Runes)
	} else if msg.Type == tea.KeySpace {
		m.ls.input += " "
	}
	return m, nil
}

func (m Model) viewListener() string {
	user, _ := m.holder.CurrentUser()

	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("PANDA · Listener") + "  " + statusStyle.Render(roleLabel(user)) + "\n\n")

	if m.ls.mode == lsModeCode || m.listener.State() != session.JoinStateJoined {
		b.WriteString("  " + labelStyle.Render("Join code: ") + valueStyle.Render(m.ls.input) + focusedStyle.Render("_") + "\n")
		if m.ls.busy {
			b.WriteString("  " + statusStyle.Render("Joining...") + "\n")
		}
		b.WriteString("\n  " + statusStyle.Render("enter: join · ctrl+o: sign out · ctrl+c: quit") + "\n")
	} else {
		joined := m.listener.Session()
		b.WriteString("  " + valueStyle.Render(joined.Title) + "  " + statusStyle.Render("by "+joined.SpeakerName) + "\n\n")

		b.WriteString("  " + labelStyle.Render("Transcript") + "\n")
		b.WriteString(panelStyle.Width(max(40, m.width-6)).Render(orPlaceholder(m.listener.Transcript(), "Waiting for the speaker...")) + "\n\n")

		if active := m.listener.ActiveResource(); active != nil {
			b.WriteString("  " + labelStyle.Render("Now showing: ") + activeStyle.Render(active.OriginalName) + "\n\n")
		}

		if tasks := m.listener.Tasks(); len(tasks) > 0 {
			b.WriteString("  " + labelStyle.Render("Tasks") + "\n")
			for _, t := range tasks {
				b.WriteString("    - " + valueStyle.Render(t.Title) + " " + statusStyle.Render("["+string(t.Priority)+"]") + "\n")
			}
			b.WriteString("\n")
		}

		history := m.listener.History()
		if len(history) > 0 {
			b.WriteString("  " + labelStyle.Render("Q&A") + "\n")
			for _, ex := range history {
				b.WriteString("    " + focusedStyle.Render("you: ") + valueStyle.Render(ex.Message) + "\n")
				b.WriteString("    " + labelStyle.Render("panda: ") + valueStyle.Render(ex.Response) + "\n")
			}
			b.WriteString("\n")
		}

		b.WriteString("  " + labelStyle.Render("Ask: ") + valueStyle.Render(m.ls.input) + focusedStyle.Render("_") + "\n")
		if m.ls.busy {
			b.WriteString("  " + statusStyle.Render("Thinking...") + "\n")
		}
		b.WriteString("\n  " + statusStyle.Render("enter: ask · ctrl+l: leave · ctrl+o: sign out · ctrl+c: quit") + "\n")
	}

	if m.ls.notice != "" {
		b.WriteString("\n  " + activeStyle.Render(m.ls.notice) + "\n")
	}
	if m.errText != "" {
		b.WriteString("\n  " + errorStyle.Render(m.errText) + "\n")
	}
	return b.String()
}

func (m Model) updateJoin(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case previewLoadedMsg:
		m.ls.previewCode = msg.JoinCode
		m.ls.preview = msg.Info
		m.ls.previewErr = msg.Err
		return m, nil

	case joinedMsg:
		return m.afterJoin(msg.Session)

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			code := joinCodeFromRoute(m.route)
			if code == "" || m.ls.preview == nil {
				return m, nil
			}
			user, ok := m.holder.CurrentUser()
			if !ok {
				// Joining requires auth; come back here afterwards
				m = m.navigate(guard.SignInPath("", m.route))
				return m, nil
			}
			if !user.IsSpeaker() {
				m.ls.busy = true
				return m, joinCmd(m.listener, code)
			}
			m = m.navigate("/speaker")
			var cmd tea.Cmd
			m, cmd = m.enterCmd()
			return m, cmd
		case "esc":
			m = m.navigate("/")
			return m, nil
		}
	}
	return m, nil
}

func (m Model) viewJoin() string {
	code := joinCodeFromRoute(m.route)

	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("PANDA · Join session") + "\n\n")
	b.WriteString("  " + labelStyle.Render("Code: ") + joinCodeStyle.Render(strings.ToUpper(code)) + "\n\n")

	switch {
	case m.ls.previewErr != nil:
		b.WriteString("  " + errorStyle.Render("This session doesn't exist or has already ended.") + "\n")
	case m.ls.preview == nil:
		b.WriteString("  " + statusStyle.Render("Looking up session...") + "\n")
	default:
		b.WriteString("  " + valueStyle.Render(m.ls.preview.Title) + "\n")
		b.WriteString("  " + statusStyle.Render("by "+m.ls.preview.SpeakerName) + "\n")
		b.WriteString("  " + statusStyle.Render("status: "+string(m.ls.preview.Status)) + "\n\n")
		b.WriteString("  " + statusStyle.Render("enter: join · esc: back") + "\n")
	}
	return b.String()
}
