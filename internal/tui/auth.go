package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/pandalive/panda/internal/auth"
	"github.com/pandalive/panda/internal/domain/entities"
)

const (
	fieldEmail = iota
	fieldPassword
	fieldConfirm
	fieldName
	fieldCount
)

// authForm is the sign-in / sign-up form state
type authForm struct {
	signUp     bool
	role       entities.UserRole
	fields     [fieldCount]string
	focus      int
	submitting bool
	errText    string

	// Google consent sub-flow: the consent URL is shown and the pasted
	// authorization code collected before anything is submitted.
	googleFlow bool
	googleURL  string
	googleCode string
}

func newAuthForm() authForm {
	return authForm{role: entities.RoleListener}
}

func (f authForm) lastField() int {
	if f.signUp {
		return fieldName
	}
	return fieldPassword
}

func (m Model) updateAuth(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.form.submitting {
			return m, nil
		}
		if m.form.googleFlow {
			return m.updateGoogleFlow(msg)
		}
		switch msg.String() {
		case "tab", "down":
			m.form.focus = (m.form.focus + 1) % (m.form.lastField() + 1)
			return m, nil
		case "shift+tab", "up":
			m.form.focus--
			if m.form.focus < 0 {
				m.form.focus = m.form.lastField()
			}
			return m, nil
		case "ctrl+t":
			m.form.signUp = !m.form.signUp
			m.form.focus = fieldEmail
			m.form.errText = ""
			return m, nil
		case "ctrl+r":
			if m.form.role == entities.RoleListener {
				m.form.role = entities.RoleSpeaker
			} else {
				m.form.role = entities.RoleListener
			}
			return m, nil
		case "ctrl+g":
			if m.google == nil {
				// No consent flow configured; the demo identity service
				// accepts the assertion as-is.
				m.form.submitting = true
				return m, signInWithProviderCmd(m.holder, "demo-google-user")
			}
			m.form.googleFlow = true
			m.form.googleCode = ""
			m.form.errText = ""
			m.form.googleURL = m.google.AuthURL(uuid.NewString())
			return m, nil
		case "enter":
			if m.form.focus < m.form.lastField() {
				m.form.focus++
				return m, nil
			}
			return m.submitAuth()
		case "backspace":
			cur := m.form.fields[m.form.focus]
			if cur != "" {
				m.form.fields[m.form.focus] = cur[:len(cur)-1]
			}
			return m, nil
		}
		if msg.Type == tea.KeyRunes {
			m.form.fields[m.form.focus] += string(msg.Runes)
		} else if msg.Type == tea.KeySpace {
			m.form.fields[m.form.focus] += " "
		}
		return m, nil
	}
	return m, nil
}

func (m Model) updateGoogleFlow(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.form.googleFlow = false
		m.form.googleCode = ""
		return m, nil
	case "enter":
		code := strings.TrimSpace(m.form.googleCode)
		if code == "" {
			return m, nil
		}
		m.form.googleFlow = false
		m.form.googleCode = ""
		m.form.submitting = true
		return m, signInWithProviderCmd(m.holder, code)
	case "backspace":
		if m.form.googleCode != "" {
			m.form.googleCode = m.form.googleCode[:len(m.form.googleCode)-1]
		}
		return m, nil
	}
	if msg.Type == tea.KeyRunes {
		m.form.googleCode += string(msg.Runes)
	}
	return m, nil
}

func (m Model) submitAuth() (tea.Model, tea.Cmd) {
	m.form.submitting = true
	m.form.errText = ""
	if m.form.signUp {
		req := auth.SignUpRequest{
			Email:           strings.TrimSpace(m.form.fields[fieldEmail]),
			Password:        m.form.fields[fieldPassword],
			ConfirmPassword: m.form.fields[fieldConfirm],
			DisplayName:     strings.TrimSpace(m.form.fields[fieldName]),
			Role:            m.form.role,
		}
		return m, signUpCmd(m.holder, req)
	}
	return m, signInCmd(m.holder,
		strings.TrimSpace(m.form.fields[fieldEmail]),
		m.form.fields[fieldPassword],
	)
}

func (m Model) viewAuth() string {
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("PANDA") + "\n")
	if m.form.googleFlow {
		b.WriteString("  " + statusStyle.Render("Sign in with Google") + "\n\n")
		b.WriteString("  " + statusStyle.Render("Open this URL, grant access, then paste the authorization code:") + "\n")
		b.WriteString("  " + valueStyle.Render(m.form.googleURL) + "\n\n")
		b.WriteString("  " + labelStyle.Render(padLabel("Code")) + valueStyle.Render(m.form.googleCode) + focusedStyle.Render("_") + "\n")
		if m.form.errText != "" {
			b.WriteString("\n  " + errorStyle.Render(m.form.errText) + "\n")
		}
		b.WriteString("\n  " + statusStyle.Render("enter: submit · esc: back") + "\n")
		return b.String()
	}
	if m.form.signUp {
		b.WriteString("  " + statusStyle.Render("Create an account") + "\n\n")
	} else {
		b.WriteString("  " + statusStyle.Render("Sign in") + "\n\n")
	}

	b.WriteString(m.formField("Email", fieldEmail, false))
	b.WriteString(m.formField("Password", fieldPassword, true))
	if m.form.signUp {
		b.WriteString(m.formField("Confirm", fieldConfirm, true))
		b.WriteString(m.formField("Name", fieldName, false))
		b.WriteString("  " + labelStyle.Render("Role: ") + valueStyle.Render(string(m.form.role)) +
			statusStyle.Render("  (ctrl+r to switch)") + "\n")
	}

	b.WriteString("\n")
	if m.form.submitting {
		b.WriteString("  " + statusStyle.Render("Submitting...") + "\n")
	}
	if m.form.errText != "" {
		b.WriteString("  " + errorStyle.Render(m.form.errText) + "\n")
	}
	b.WriteString("\n  " + statusStyle.Render("enter: submit · tab: next field · ctrl+t: sign-in/sign-up · ctrl+g: google · ctrl+c: quit") + "\n")
	if m.demo {
		b.WriteString("  " + statusStyle.Render("demo accounts: speaker@panda.live or listener@panda.live, password demo123") + "\n")
	}
	return b.String()
}

func (m Model) formField(label string, idx int, mask bool) string {
	value := m.form.fields[idx]
	if mask {
		value = strings.Repeat("*", len(value))
	}
	style := labelStyle
	if m.form.focus == idx {
		style = focusedStyle
	}
	return "  " + style.Render(padLabel(label)) + valueStyle.Render(value) + cursorFor(m.form.focus == idx) + "\n"
}

func padLabel(label string) string {
	const width = 10
	if len(label) >= width {
		return label + " "
	}
	return label + strings.Repeat(" ", width-len(label))
}

func cursorFor(focused bool) string {
	if focused {
		return focusedStyle.Render("_")
	}
	return ""
}
