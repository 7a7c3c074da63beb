package auth

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pandalive/panda/errors"
	"github.com/pandalive/panda/internal/domain/entities"
)

// Holder is the process-wide auth state read by every protected view.
// Only the Holder itself mutates the state; it has exactly one writer and
// many readers.
type Holder struct {
	mu       sync.RWMutex
	provider Provider
	creds    *CredentialStore
	validate *validator.Validate
	logger   *zap.Logger

	user    *entities.User
	token   string
	loading bool
}

// NewHolder creates a Holder in the loading state. Loading resolves only
// after Init checks for a previously authenticated session.
func NewHolder(provider Provider, creds *CredentialStore, logger *zap.Logger) *Holder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Holder{
		provider: provider,
		creds:    creds,
		validate: validator.New(),
		logger:   logger,
		loading:  true,
	}
}

// Init resolves the loading flag, restoring a previously stored session
// when one exists and still validates.
func (h *Holder) Init(ctx context.Context) {
	defer func() {
		h.mu.Lock()
		h.loading = false
		h.mu.Unlock()
	}()

	if h.creds == nil {
		return
	}
	token := h.creds.Load()
	if token == "" {
		return
	}

	h.mu.Lock()
	h.token = token
	h.mu.Unlock()

	user, err := h.provider.Resume(ctx, token)
	if err != nil {
		h.logger.Info("auth.resume.rejected", zap.Error(err))
		h.mu.Lock()
		h.token = ""
		h.mu.Unlock()
		_ = h.creds.Clear()
		return
	}

	h.mu.Lock()
	h.user = user
	h.mu.Unlock()
	h.logger.Info("auth.resume.ok", zap.String("uid", user.UID))
}

// SignIn authenticates with credentials and installs the user on success
func (h *Holder) SignIn(ctx context.Context, email, password string) error {
	if err := h.validate.Var(email, "required,email"); err != nil {
		return errors.ErrValidation("a valid email is required")
	}
	if err := h.validate.Var(password, "required"); err != nil {
		return errors.ErrValidation("password is required")
	}

	user, token, err := h.provider.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	h.install(user, token)
	return nil
}

// SignUp creates an account and installs the user on success. Validation
// failures, including a password confirmation mismatch, are caught before
// any request is issued.
func (h *Holder) SignUp(ctx context.Context, req SignUpRequest) error {
	if err := h.validate.Struct(req); err != nil {
		return errors.ErrValidation("all fields are required")
	}
	if req.Password != req.ConfirmPassword {
		return errors.ErrValidation("passwords do not match")
	}

	user, token, err := h.provider.SignUp(ctx, req)
	if err != nil {
		return err
	}
	h.install(user, token)
	return nil
}

// SignInWithProvider authenticates via the third-party identity provider
func (h *Holder) SignInWithProvider(ctx context.Context, assertion string) error {
	user, token, err := h.provider.SignInWithProvider(ctx, assertion)
	if err != nil {
		return err
	}
	h.install(user, token)
	return nil
}

// SignOut revokes the session server-side, then clears the local state.
// Revocation runs first, while the credential is still valid; a failed
// revocation still signs the user out locally.
func (h *Holder) SignOut(ctx context.Context) error {
	h.mu.RLock()
	token := h.token
	h.mu.RUnlock()

	if token != "" {
		if err := h.provider.SignOut(ctx, token); err != nil {
			h.logger.Warn("auth.signout.revoke_failed", zap.Error(err))
		}
	}

	h.mu.Lock()
	h.user = nil
	h.token = ""
	h.mu.Unlock()

	if h.creds != nil {
		_ = h.creds.Clear()
	}
	return nil
}

// CurrentUser returns the authenticated user, or false when signed out
func (h *Holder) CurrentUser() (*entities.User, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.user, h.user != nil
}

// Loading reports whether auth state is still resolving
func (h *Holder) Loading() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.loading
}

// Token returns the bearer token for the current session; it is the
// TokenSource used by the API gateway.
func (h *Holder) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *Holder) install(user *entities.User, token string) {
	h.mu.Lock()
	h.user = user
	h.token = token
	h.loading = false
	h.mu.Unlock()

	if h.creds != nil {
		if err := h.creds.Save(token); err != nil {
			h.logger.Warn("auth.credential.save_failed", zap.Error(err))
		}
	}
	h.logger.Info("auth.signed_in",
		zap.String("uid", user.UID),
		zap.String("role", string(user.Role)),
	)
}
