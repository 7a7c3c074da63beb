package session

import "github.com/pandalive/panda/internal/domain/entities"

// Identity resolves the signed-in user at call time. Controllers are
// wired before sign-in completes, so they never hold a user directly.
type Identity interface {
	CurrentUser() (*entities.User, bool)
}

func uidOf(identity Identity) string {
	if identity == nil {
		return ""
	}
	if user, ok := identity.CurrentUser(); ok {
		return user.UID
	}
	return ""
}
