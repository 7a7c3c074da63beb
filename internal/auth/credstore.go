package auth

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// CredentialStore persists the bearer token of the previously
// authenticated session so auth state can resume across restarts.
type CredentialStore struct {
	path string
}

type storedCredential struct {
	Token string `json:"token"`
}

// NewCredentialStore creates a store rooted at dir. An empty dir selects
// the user config directory.
func NewCredentialStore(dir string) (*CredentialStore, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "panda")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &CredentialStore{path: filepath.Join(dir, "session.json")}, nil
}

// Load returns the stored token, or empty when none is stored
func (s *CredentialStore) Load() string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	var cred storedCredential
	if err := json.Unmarshal(data, &cred); err != nil {
		return ""
	}
	return cred.Token
}

// Save stores the token
func (s *CredentialStore) Save(token string) error {
	data, err := json.Marshal(storedCredential{Token: token})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Clear removes the stored token
func (s *CredentialStore) Clear() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
