// Package auth holds the process-wide authentication state and the
// swappable identity provider behind it.
package auth

import (
	"context"

	"github.com/pandalive/panda/internal/domain/entities"
)

// SignUpRequest carries the sign-up form. ConfirmPassword mismatches are
// caught before any request is issued.
type SignUpRequest struct {
	Email           string            `validate:"required,email"`
	Password        string            `validate:"required,min=6"`
	ConfirmPassword string            `validate:"required"`
	DisplayName     string            `validate:"required,min=1,max=255"`
	Role            entities.UserRole `validate:"required,oneof=speaker listener"`
}

// Provider is the swappable identity capability consumed by the Holder.
// Implementations return the authenticated user together with the bearer
// token to attach to API calls.
type Provider interface {
	// SignIn authenticates with email/password credentials
	SignIn(ctx context.Context, email, password string) (*entities.User, string, error)
	// SignUp creates an account with credentials, name and role
	SignUp(ctx context.Context, req SignUpRequest) (*entities.User, string, error)
	// SignInWithProvider authenticates via a third-party identity
	// provider. assertion is the authorization code from the provider's
	// consent flow; providers without a configured flow ignore it.
	SignInWithProvider(ctx context.Context, assertion string) (*entities.User, string, error)
	// Resume restores the user for a previously stored token
	Resume(ctx context.Context, token string) (*entities.User, error)
	// SignOut revokes the token
	SignOut(ctx context.Context, token string) error
}
