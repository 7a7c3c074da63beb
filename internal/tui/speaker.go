package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type speakerMode int

const (
	spModeList speakerMode = iota
	spModeTitle
	spModeUpload
	spModeMain
)

// speakerView is the broadcasting dashboard state
type speakerView struct {
	mode       speakerMode
	input      string
	cursor     int
	busy       bool
	transcript string
	notice     string

	// eventsArmed reports that one waiter is parked on the speaker event
	// stream; re-entering the view must not add another.
	eventsArmed bool
}

func newSpeakerView() speakerView {
	return speakerView{}
}

func (m Model) updateSpeaker(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionsLoadedMsg:
		m.sp.busy = false
		if len(msg.Sessions) == 0 {
			m.sp.mode = spModeTitle
		}
		return m, nil

	case sessionCreatedMsg:
		m.sp.busy = false
		m.sp.mode = spModeMain
		m.sp.transcript = ""
		m.sp.notice = "Share join code " + msg.Session.JoinCode
		return m, nil

	case recordingToggledMsg:
		m.sp.busy = false
		if msg.Recording {
			m.sp.notice = "Recording"
		} else {
			m.sp.notice = "Recording stopped"
		}
		return m, nil

	case tasksGeneratedMsg:
		m.sp.busy = false
		m.sp.notice = fmt.Sprintf("Generated %d tasks", len(msg.Tasks))
		return m, nil

	case resourceUploadedMsg:
		m.sp.busy = false
		if msg.Resource != nil {
			m.sp.notice = "Resource ready: " + msg.Resource.OriginalName
		}
		return m, nil

	case tea.KeyMsg:
		return m.speakerKeys(msg)
	}
	return m, nil
}

func (m Model) speakerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.sp.busy {
		return m, nil
	}

	switch m.sp.mode {
	case spModeTitle, spModeUpload:
		switch msg.String() {
		case "esc":
			m.sp.input = ""
			if m.speaker.Current() != nil {
				m.sp.mode = spModeMain
			} else {
				m.sp.mode = spModeList
			}
			return m, nil
		case "enter":
			input := strings.TrimSpace(m.sp.input)
			m.sp.input = ""
			if input == "" {
				return m, nil
			}
			m.sp.busy = true
			if m.sp.mode == spModeTitle {
				return m, createSessionCmd(m.speaker, input)
			}
			m.sp.mode = spModeMain
			return m, uploadCmd(m.speaker, input)
		case "backspace":
			if m.sp.input != "" {
				m.sp.input = m.sp.input[:len(m.sp.input)-1]
			}
			return m, nil
		}
		if msg.Type == tea.KeyRunes {
			m.sp.input += string(msg.Runes)
		} else if msg.Type == tea.KeySpace {
			m.sp.input += " "
		}
		return m, nil

	case spModeList:
		sessions := m.speaker.Sessions()
		switch msg.String() {
		case "up", "k":
			if m.sp.cursor > 0 {
				m.sp.cursor--
			}
		case "down", "j":
			if m.sp.cursor < len(sessions)-1 {
				m.sp.cursor++
			}
		case "enter":
			if m.sp.cursor < len(sessions) {
				if err := m.speaker.Select(sessions[m.sp.cursor].ID); err == nil {
					m.sp.mode = spModeMain
					m.sp.transcript = m.speaker.Transcript()
				}
			}
		case "n":
			m.sp.mode = spModeTitle
		case "ctrl+o":
			return m, signOutCmd(m.holder)
		}
		return m, nil

	default: // spModeMain
		switch msg.String() {
		case "r":
			m.sp.busy = true
			return m, toggleRecordingCmd(m.speaker)
		case "g":
			m.sp.busy = true
			return m, generateTasksCmd(m.speaker)
		case "u":
			m.sp.mode = spModeUpload
			m.sp.input = ""
			return m, nil
		case "a":
			if id := m.nextResourceID(); id != "" {
				m.sp.busy = true
				return m, setActiveCmd(m.speaker, id)
			}
			return m, nil
		case "b":
			m.sp.mode = spModeList
			return m, loadSessionsCmd(m.speaker)
		case "ctrl+o":
			return m, signOutCmd(m.holder)
		}
		return m, nil
	}
}

// nextResourceID cycles the active slot through the uploaded resources
func (m Model) nextResourceID() string {
	current := m.speaker.Current()
	if current == nil || len(current.Resources) == 0 {
		return ""
	}
	if current.ActiveResourceID == "" {
		return current.Resources[0].ID
	}
	for i := range current.Resources {
		if current.Resources[i].ID == current.ActiveResourceID {
			return current.Resources[(i+1)%len(current.Resources)].ID
		}
	}
	return current.Resources[0].ID
}

func (m Model) viewSpeaker() string {
	user, _ := m.holder.CurrentUser()

	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("PANDA · Speaker") + "  " + statusStyle.Render(roleLabel(user)) + "\n\n")

	switch m.sp.mode {
	case spModeTitle:
		b.WriteString("  " + labelStyle.Render("New session title: ") + valueStyle.Render(m.sp.input) + focusedStyle.Render("_") + "\n")
		b.WriteString("\n  " + statusStyle.Render("enter: create · esc: cancel") + "\n")

	case spModeUpload:
		b.WriteString("  " + labelStyle.Render("File to upload: ") + valueStyle.Render(m.sp.input) + focusedStyle.Render("_") + "\n")
		b.WriteString("\n  " + statusStyle.Render("enter: upload · esc: cancel") + "\n")

	case spModeList:
		sessions := m.speaker.Sessions()
		if len(sessions) == 0 {
			b.WriteString("  " + statusStyle.Render("No sessions yet.") + "\n")
		}
		for i, s := range sessions {
			marker := "  "
			if i == m.sp.cursor {
				marker = focusedStyle.Render("> ")
			}
			b.WriteString("  " + marker + valueStyle.Render(s.Title) +
				"  " + joinCodeStyle.Render(s.JoinCode) +
				"  " + statusStyle.Render(string(s.Status)) + "\n")
		}
		b.WriteString("\n  " + statusStyle.Render("enter: open · n: new session · ctrl+o: sign out · ctrl+c: quit") + "\n")

	default:
		current := m.speaker.Current()
		if current == nil {
			b.WriteString("  " + statusStyle.Render("No session selected.") + "\n")
			break
		}
		b.WriteString("  " + valueStyle.Render(current.Title) +
			"   " + labelStyle.Render("join code ") + joinCodeStyle.Render(current.JoinCode) + "\n")
		if m.speaker.Recording() {
			b.WriteString("  " + recordingStyle.Render("● REC") + "\n\n")
		} else {
			b.WriteString("  " + idleStyle.Render("○ idle") + "\n\n")
		}

		b.WriteString("  " + labelStyle.Render("Transcript") + "\n")
		b.WriteString(panelStyle.Width(max(40, m.width-6)).Render(orPlaceholder(m.sp.transcript, "Nothing transcribed yet.")) + "\n\n")

		if tasks := current.Tasks; len(tasks) > 0 {
			b.WriteString("  " + labelStyle.Render("Tasks") + "\n")
			for _, t := range tasks {
				b.WriteString("    - " + valueStyle.Render(t.Title) + " " + statusStyle.Render("["+string(t.Priority)+"]") + "\n")
			}
			b.WriteString("\n")
		}
		if len(current.Resources) > 0 {
			b.WriteString("  " + labelStyle.Render("Resources") + "\n")
			for _, r := range current.Resources {
				line := "    - " + valueStyle.Render(r.OriginalName)
				if r.ID == current.ActiveResourceID {
					line += " " + activeStyle.Render("(active)")
				}
				b.WriteString(line + "\n")
			}
			b.WriteString("\n")
		}

		b.WriteString("  " + statusStyle.Render("r: record · g: tasks · u: upload · a: activate next · b: sessions · ctrl+o: sign out") + "\n")
	}

	if m.sp.notice != "" {
		b.WriteString("\n  " + activeStyle.Render(m.sp.notice) + "\n")
	}
	if m.errText != "" {
		b.WriteString("\n  " + errorStyle.Render(m.errText) + "\n")
	}
	return b.String()
}

func orPlaceholder(text, placeholder string) string {
	if strings.TrimSpace(text) == "" {
		return statusStyle.Render(placeholder)
	}
	return text
}
