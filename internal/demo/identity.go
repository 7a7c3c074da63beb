package demo

import (
	"strings"
	"sync"

	"github.com/pandalive/panda/internal/domain/entities"
	"github.com/pandalive/panda/pkg/jwt"
)

// Identity is the demo identity service. It keeps accounts in memory
// and issues signed HS256 tokens accepted by the demo backend.
type Identity struct {
	mu       sync.RWMutex
	jwt      *jwt.Manager
	accounts map[string]*account
	byUID    map[string]*account
	google   map[string]*account
	revoked  map[string]struct{}
}

type account struct {
	user     *entities.User
	password string
}

// NewIdentity creates an identity service signing with the given manager
func NewIdentity(manager *jwt.Manager) *Identity {
	return &Identity{
		jwt:      manager,
		accounts: make(map[string]*account),
		byUID:    make(map[string]*account),
		google:   make(map[string]*account),
		revoked:  make(map[string]struct{}),
	}
}

// Register creates an account. Returns false when the email is taken.
func (i *Identity) Register(email, password, displayName string, role entities.UserRole) (*entities.User, bool) {
	email = strings.ToLower(strings.TrimSpace(email))

	i.mu.Lock()
	defer i.mu.Unlock()
	if _, exists := i.accounts[email]; exists {
		return nil, false
	}
	user := entities.NewUser(email, displayName, role)
	acc := &account{user: user, password: password}
	i.accounts[email] = acc
	i.byUID[user.UID] = acc
	return user, true
}

// SignIn verifies credentials. Returns false on unknown email or wrong
// password; callers cannot distinguish the two.
func (i *Identity) SignIn(email, password string) (*entities.User, bool) {
	email = strings.ToLower(strings.TrimSpace(email))

	i.mu.RLock()
	defer i.mu.RUnlock()
	acc, ok := i.accounts[email]
	if !ok || acc.password != password {
		return nil, false
	}
	return acc.user, true
}

// SignInWithGoogle resolves a Google identity assertion, fabricating a
// demo account on first sight of the subject.
func (i *Identity) SignInWithGoogle(assertion string) *entities.User {
	i.mu.Lock()
	defer i.mu.Unlock()
	if acc, ok := i.google[assertion]; ok {
		return acc.user
	}
	user := entities.NewUser("demo.google@example.com", "Demo Google User", entities.RoleListener)
	acc := &account{user: user}
	i.google[assertion] = acc
	i.byUID[user.UID] = acc
	return user
}

// User resolves a uid to its account
func (i *Identity) User(uid string) (*entities.User, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	acc, ok := i.byUID[uid]
	if !ok {
		return nil, false
	}
	return acc.user, true
}

// UpdateProfile overwrites display name and role for an existing account
func (i *Identity) UpdateProfile(uid, displayName string, role entities.UserRole) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	acc, ok := i.byUID[uid]
	if !ok {
		return false
	}
	if displayName != "" {
		acc.user.DisplayName = displayName
	}
	if role.IsValid() {
		acc.user.Role = role
	}
	return true
}

// Token issues a signed token for the user
func (i *Identity) Token(user *entities.User) (string, error) {
	return i.jwt.Generate(user.UID, user.Email, user.DisplayName, string(user.Role))
}

// Validate parses a token and resolves its user. Revoked tokens are
// rejected.
func (i *Identity) Validate(token string) (*entities.User, bool) {
	i.mu.RLock()
	_, revoked := i.revoked[token]
	i.mu.RUnlock()
	if revoked {
		return nil, false
	}

	claims, err := i.jwt.Validate(token)
	if err != nil {
		return nil, false
	}
	return i.User(claims.UID)
}

// Revoke invalidates a token
func (i *Identity) Revoke(token string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.revoked[token] = struct{}{}
}
