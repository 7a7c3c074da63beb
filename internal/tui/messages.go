package tui

import (
	"github.com/pandalive/panda/internal/domain/entities"
	"github.com/pandalive/panda/internal/session"
)

// authResolvedMsg is sent when the resume check finished and the auth
// loading state resolved.
type authResolvedMsg struct{}

// signedInMsg is sent when sign-in or sign-up succeeded
type signedInMsg struct {
	User *entities.User
}

// signedOutMsg is sent when sign-out completed
type signedOutMsg struct{}

// authFailedMsg carries a sign-in/sign-up failure for inline display
type authFailedMsg struct {
	Err error
}

// sessionsLoadedMsg carries the speaker's session list
type sessionsLoadedMsg struct {
	Sessions []entities.Session
}

// sessionCreatedMsg is sent when a new session was created and selected
type sessionCreatedMsg struct {
	Session *entities.Session
}

// recordingToggledMsg reports the new recording state
type recordingToggledMsg struct {
	Recording bool
}

// tasksGeneratedMsg carries a freshly generated task set
type tasksGeneratedMsg struct {
	Tasks []entities.Task
}

// resourceUploadedMsg is sent when an upload finished
type resourceUploadedMsg struct {
	Resource *entities.Resource
}

// previewLoadedMsg carries the unauthenticated join-code preview
type previewLoadedMsg struct {
	JoinCode string
	Info     *entities.SessionInfo
	Err      error
}

// joinedMsg is sent when the listener joined a session
type joinedMsg struct {
	Session *entities.Session
}

// askAnsweredMsg carries one completed chat exchange
type askAnsweredMsg struct {
	Exchange *entities.ChatMessage
}

// eventSource identifies which controller stream produced a message, so
// exactly one waiter is re-armed per stream.
type eventSource int

const (
	sourceSpeaker eventSource = iota
	sourceWatcher
)

// controllerEventMsg wraps an asynchronous controller event
type controllerEventMsg struct {
	Source eventSource
	Event  session.Event
}

// streamClosedMsg is sent when a controller event stream closed
type streamClosedMsg struct {
	Source eventSource
}

// opFailedMsg carries a failed operation for status-line display
type opFailedMsg struct {
	Err error
}
