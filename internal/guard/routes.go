package guard

import (
	"strings"

	"github.com/pandalive/panda/internal/domain/entities"
)

// Route is one client-side navigation target
type Route struct {
	Path      string
	Protected bool
	Requires  entities.UserRole
}

// Client-side route table. /dashboard dispatches on role; /speaker and
// /listener additionally require that role.
var Routes = []Route{
	{Path: "/"},
	{Path: "/auth"},
	{Path: "/join/:joinCode"},
	{Path: "/dashboard", Protected: true},
	{Path: "/speaker", Protected: true, Requires: entities.RoleSpeaker},
	{Path: "/listener", Protected: true, Requires: entities.RoleListener},
}

// Resolve matches a concrete path against the route table. A query
// string, such as the redirect carried by a sign-in path, is ignored for
// matching. Join codes are carried as the single parameter segment of
// /join/:joinCode.
func Resolve(path string) (Route, bool) {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if strings.HasPrefix(path, "/join/") && len(path) > len("/join/") {
		return Route{Path: "/join/:joinCode"}, true
	}
	for _, r := range Routes {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}

// DashboardFor returns the role-specific dashboard path
func DashboardFor(user *entities.User) string {
	if user == nil {
		return "/auth"
	}
	if user.Role == entities.RoleSpeaker {
		return "/speaker"
	}
	return "/listener"
}
