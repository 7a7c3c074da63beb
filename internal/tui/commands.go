package tui

import (
	"context"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pandalive/panda/internal/auth"
	"github.com/pandalive/panda/internal/session"
)

func signInCmd(holder *auth.Holder, email, password string) tea.Cmd {
	return func() tea.Msg {
		if err := holder.SignIn(context.Background(), email, password); err != nil {
			return authFailedMsg{Err: err}
		}
		user, _ := holder.CurrentUser()
		return signedInMsg{User: user}
	}
}

func signUpCmd(holder *auth.Holder, req auth.SignUpRequest) tea.Cmd {
	return func() tea.Msg {
		if err := holder.SignUp(context.Background(), req); err != nil {
			return authFailedMsg{Err: err}
		}
		user, _ := holder.CurrentUser()
		return signedInMsg{User: user}
	}
}

func signInWithProviderCmd(holder *auth.Holder, assertion string) tea.Cmd {
	return func() tea.Msg {
		if err := holder.SignInWithProvider(context.Background(), assertion); err != nil {
			return authFailedMsg{Err: err}
		}
		user, _ := holder.CurrentUser()
		return signedInMsg{User: user}
	}
}

func signOutCmd(holder *auth.Holder) tea.Cmd {
	return func() tea.Msg {
		_ = holder.SignOut(context.Background())
		return signedOutMsg{}
	}
}

func loadSessionsCmd(speaker *session.Speaker) tea.Cmd {
	return func() tea.Msg {
		sessions, err := speaker.LoadSessions(context.Background())
		if err != nil {
			return opFailedMsg{Err: err}
		}
		return sessionsLoadedMsg{Sessions: sessions}
	}
}

func createSessionCmd(speaker *session.Speaker, title string) tea.Cmd {
	return func() tea.Msg {
		created, err := speaker.Create(context.Background(), title)
		if err != nil {
			return opFailedMsg{Err: err}
		}
		return sessionCreatedMsg{Session: created}
	}
}

func toggleRecordingCmd(speaker *session.Speaker) tea.Cmd {
	return func() tea.Msg {
		if speaker.Recording() {
			speaker.StopRecording()
			return recordingToggledMsg{Recording: false}
		}
		if err := speaker.StartRecording(context.Background()); err != nil {
			return opFailedMsg{Err: err}
		}
		return recordingToggledMsg{Recording: true}
	}
}

func generateTasksCmd(speaker *session.Speaker) tea.Cmd {
	return func() tea.Msg {
		tasks, err := speaker.GenerateTasks(context.Background())
		if err != nil {
			return opFailedMsg{Err: err}
		}
		return tasksGeneratedMsg{Tasks: tasks}
	}
}

func uploadCmd(speaker *session.Speaker, path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return opFailedMsg{Err: err}
		}
		defer f.Close()

		resource, err := speaker.Upload(context.Background(), filepath.Base(path), f)
		if err != nil {
			return opFailedMsg{Err: err}
		}
		return resourceUploadedMsg{Resource: resource}
	}
}

func setActiveCmd(speaker *session.Speaker, resourceID string) tea.Cmd {
	return func() tea.Msg {
		if err := speaker.SetActive(context.Background(), resourceID); err != nil {
			return opFailedMsg{Err: err}
		}
		return resourceUploadedMsg{Resource: speaker.Current().ActiveResource()}
	}
}

func previewCmd(listener *session.Listener, code string) tea.Cmd {
	return func() tea.Msg {
		info, err := listener.Preview(context.Background(), code)
		return previewLoadedMsg{JoinCode: code, Info: info, Err: err}
	}
}

func joinCmd(listener *session.Listener, code string) tea.Cmd {
	return func() tea.Msg {
		joined, err := listener.Join(context.Background(), code)
		if err != nil {
			return opFailedMsg{Err: err}
		}
		return joinedMsg{Session: joined}
	}
}

func askCmd(listener *session.Listener, message string) tea.Cmd {
	return func() tea.Msg {
		exchange, err := listener.Ask(context.Background(), message)
		if err != nil {
			return opFailedMsg{Err: err}
		}
		return askAnsweredMsg{Exchange: exchange}
	}
}

// waitEventCmd blocks on a controller event stream and wraps the next
// event as a message. Re-issued once per delivery, never per view entry.
func waitEventCmd(source eventSource, events <-chan session.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return streamClosedMsg{Source: source}
		}
		return controllerEventMsg{Source: source, Event: ev}
	}
}
