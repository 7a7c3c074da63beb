// Package guard decides whether a navigation target is reachable given
// the current auth state and the role the target requires.
package guard

import (
	"net/url"

	"github.com/pandalive/panda/internal/domain/entities"
)

// Outcome is the route guard decision
type Outcome int

const (
	// OutcomeWait renders a neutral loading state while auth state is
	// still resolving; deciding prematurely would misroute the user.
	OutcomeWait Outcome = iota
	// OutcomeRender renders the requested content
	OutcomeRender
	// OutcomeRedirectSignIn redirects to the sign-in flow
	OutcomeRedirectSignIn
	// OutcomeRedirectDashboard redirects an authenticated user whose role
	// does not match to the generic dashboard.
	OutcomeRedirectDashboard
)

// String returns a readable name for the outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeWait:
		return "wait"
	case OutcomeRender:
		return "render"
	case OutcomeRedirectSignIn:
		return "redirect-sign-in"
	case OutcomeRedirectDashboard:
		return "redirect-dashboard"
	}
	return "unknown"
}

// Decide resolves the guard outcome. It is deterministic and
// side-effect-free given (user, requiredRole, loading). An empty
// requiredRole means any authenticated user may enter.
func Decide(user *entities.User, requiredRole entities.UserRole, loading bool) Outcome {
	if loading {
		return OutcomeWait
	}
	if user == nil {
		return OutcomeRedirectSignIn
	}
	if requiredRole != "" && user.Role != requiredRole {
		return OutcomeRedirectDashboard
	}
	return OutcomeRender
}

// SignInPath builds the sign-in destination, preserving the intended
// destination so the user lands back on it post-authentication.
func SignInPath(role entities.UserRole, redirect string) string {
	q := url.Values{}
	if role != "" {
		q.Set("role", string(role))
	}
	if redirect != "" {
		q.Set("redirect", redirect)
	}
	if len(q) == 0 {
		return "/auth"
	}
	return "/auth?" + q.Encode()
}

// SignInRedirect extracts the destination carried by a sign-in path
// built with SignInPath. Returns "" when none is present.
func SignInRedirect(path string) string {
	u, err := url.Parse(path)
	if err != nil || u.Path != "/auth" {
		return ""
	}
	return u.Query().Get("redirect")
}

// SignInRole extracts the role hint carried by a sign-in path
func SignInRole(path string) entities.UserRole {
	u, err := url.Parse(path)
	if err != nil || u.Path != "/auth" {
		return ""
	}
	return entities.UserRole(u.Query().Get("role"))
}
