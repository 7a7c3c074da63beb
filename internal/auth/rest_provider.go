package auth

import (
	"context"

	"go.uber.org/zap"

	"github.com/pandalive/panda/errors"
	"github.com/pandalive/panda/internal/api"
	"github.com/pandalive/panda/internal/domain/entities"
)

// RestProvider authenticates against the identity endpoints of the
// backend. When a Google flow is configured, SignInWithProvider exchanges
// the pasted authorization code first and forwards the resulting identity
// assertion; otherwise the assertion is passed through as-is (the demo
// identity service accepts it).
type RestProvider struct {
	api    *api.Client
	google *GoogleOAuth
	logger *zap.Logger
}

// NewRestProvider creates a provider over the given API gateway
func NewRestProvider(client *api.Client, google *GoogleOAuth, logger *zap.Logger) *RestProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RestProvider{
		api:    client,
		google: google,
		logger: logger,
	}
}

// SignIn authenticates with email/password credentials
func (p *RestProvider) SignIn(ctx context.Context, email, password string) (*entities.User, string, error) {
	resp, err := p.api.SignIn(ctx, email, password)
	if err != nil {
		if errors.CodeOf(err) == errors.ErrorCode_UNAUTHENTICATED {
			return nil, "", errors.ErrInvalidCredentials()
		}
		return nil, "", err
	}
	return resp.User, resp.Token, nil
}

// SignUp creates an account and registers its profile
func (p *RestProvider) SignUp(ctx context.Context, req SignUpRequest) (*entities.User, string, error) {
	resp, err := p.api.Register(ctx, req.Email, req.Password, req.DisplayName, req.Role)
	if err != nil {
		if errors.CodeOf(err) == errors.ErrorCode_ALREADY_EXISTS {
			return nil, "", errors.ErrUserAlreadyExists(req.Email)
		}
		return nil, "", err
	}
	return resp.User, resp.Token, nil
}

// SignInWithProvider authenticates via the third-party identity provider
func (p *RestProvider) SignInWithProvider(ctx context.Context, assertion string) (*entities.User, string, error) {
	if p.google != nil {
		token, err := p.google.Exchange(ctx, assertion)
		if err != nil {
			return nil, "", errors.ErrProviderFailed("google", err)
		}
		info, err := p.google.UserInfo(ctx, token)
		if err != nil {
			return nil, "", errors.ErrProviderFailed("google", err)
		}
		assertion = info.ID
	}

	resp, err := p.api.OAuthSignIn(ctx, "google", assertion)
	if err != nil {
		return nil, "", err
	}
	return resp.User, resp.Token, nil
}

// Resume restores the user for a previously stored token
func (p *RestProvider) Resume(ctx context.Context, token string) (*entities.User, error) {
	return p.api.Profile(ctx)
}

// SignOut revokes the token server-side
func (p *RestProvider) SignOut(ctx context.Context, token string) error {
	return p.api.SignOut(ctx, token)
}
