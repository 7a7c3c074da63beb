package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pandalive/panda/errors"
	"github.com/pandalive/panda/internal/domain/entities"
)

// TokenResponse is the identity service response installing a signed-in
// user.
type TokenResponse struct {
	Token string         `json:"token"`
	User  *entities.User `json:"user"`
}

// SignIn exchanges credentials for a token and profile
func (c *Client) SignIn(ctx context.Context, email, password string) (*TokenResponse, error) {
	var resp TokenResponse
	req := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/token", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and returns a signed-in token and profile
func (c *Client) Register(ctx context.Context, email, password, displayName string, role entities.UserRole) (*TokenResponse, error) {
	var resp TokenResponse
	req := map[string]string{
		"email":       email,
		"password":    password,
		"displayName": displayName,
		"role":        string(role),
	}
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// OAuthSignIn exchanges a third-party identity assertion for a token and
// profile.
func (c *Client) OAuthSignIn(ctx context.Context, provider, assertion string) (*TokenResponse, error) {
	var resp TokenResponse
	req := map[string]string{"provider": provider, "assertion": assertion}
	if err := c.do(ctx, http.MethodPost, "/auth/oauth", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SignOut revokes the given token server-side. The token travels
// explicitly rather than through the client's token source, so the
// request stays authenticated regardless of local sign-out state.
func (c *Client) SignOut(ctx context.Context, token string) error {
	const path = "/auth/logout"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return errors.ErrInternal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.ErrNetworkFailed("POST "+path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		return c.mapError("POST "+path, resp.StatusCode, eb.text())
	}
	return nil
}
