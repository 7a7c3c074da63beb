package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/pandalive/panda/errors"
	"github.com/pandalive/panda/internal/domain/entities"
)

// TokenSource supplies the bearer token for authenticated calls. An empty
// string means no credential is attached.
type TokenSource func() string

// Client is the single HTTP gateway used by every view to reach the
// backend.
type Client struct {
	baseURL string
	http    *http.Client
	token   TokenSource
	logger  *zap.Logger
	retries uint64
}

// Option configures a Client
type Option func(*Client)

// WithToken attaches a bearer-token source to every request
func WithToken(src TokenSource) Option {
	return func(c *Client) { c.token = src }
}

// WithHTTPClient overrides the underlying HTTP client
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the structured logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithRetries sets the number of retries for idempotent requests
func WithRetries(n uint64) Option {
	return func(c *Client) { c.retries = n }
}

// New creates a Client for the given backend base URL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		token:   func() string { return "" },
		logger:  zap.NewNop(),
		retries: 3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// errorBody is the error payload shape returned by the backend
type errorBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

func (b errorBody) text() string {
	if b.Detail != "" {
		return b.Detail
	}
	return b.Message
}

// do executes one request/response pair. in is JSON-encoded when non-nil;
// out is JSON-decoded when non-nil and the response succeeds.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.ErrInternal(err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.ErrInternal(err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.ErrNetworkFailed(method+" "+path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		return c.mapError(method+" "+path, resp.StatusCode, eb.text())
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.ErrBackendFailed(method+" "+path, resp.StatusCode, err)
		}
	}
	return nil
}

// get executes an idempotent request with bounded exponential retry on
// transient failures.
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	op := func() error {
		err := c.do(ctx, http.MethodGet, path, nil, out)
		if err != nil && !errors.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = 15 * time.Second

	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, c.retries), ctx)); err != nil {
		c.logger.Warn("api.request.failed",
			zap.String("path", path),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// mapError converts a backend status into the application error taxonomy
func (c *Client) mapError(op string, status int, detail string) error {
	cause := fmt.Errorf("%s", detail)
	if detail == "" {
		cause = fmt.Errorf("status %d", status)
	}
	switch status {
	case http.StatusUnauthorized:
		return errors.ErrUnauthenticated()
	case http.StatusForbidden:
		return errors.ErrPermissionDenied(op)
	case http.StatusNotFound:
		return errors.AppError{
			Raw:      cause,
			HTTPCode: status,
			Code:     errors.ErrorCode_NOT_FOUND,
			Message:  detail,
		}
	case http.StatusGone:
		return errors.AppError{
			Raw:      cause,
			HTTPCode: status,
			Code:     errors.ErrorCode_SESSION_ENDED,
			Message:  detail,
		}
	case http.StatusConflict:
		return errors.AppError{
			Raw:      cause,
			HTTPCode: status,
			Code:     errors.ErrorCode_ALREADY_EXISTS,
			Message:  detail,
		}
	case http.StatusBadRequest:
		return errors.ErrInvalidArgument(detail)
	default:
		return errors.ErrBackendFailed(op, status, cause)
	}
}

// SessionInfo fetches session metadata for a join code without requiring
// authentication.
func (c *Client) SessionInfo(ctx context.Context, joinCode string) (*entities.SessionInfo, error) {
	var info entities.SessionInfo
	if err := c.get(ctx, "/sessions/info/"+joinCode, &info); err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.ErrSessionNotFound(joinCode)
		}
		return nil, err
	}
	return &info, nil
}

// Join converts a join code into session membership
func (c *Client) Join(ctx context.Context, joinCode string) (*entities.Session, error) {
	var session entities.Session
	req := map[string]string{"joinCode": joinCode}
	if err := c.do(ctx, http.MethodPost, "/sessions/join", req, &session); err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.ErrSessionNotFound(joinCode)
		}
		return nil, err
	}
	return &session, nil
}

// ListSessions returns the sessions owned by the authenticated speaker
func (c *Client) ListSessions(ctx context.Context) ([]entities.Session, error) {
	var sessions []entities.Session
	if err := c.get(ctx, "/sessions/list", &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// CreateSession creates a new active session with a fresh join code
func (c *Client) CreateSession(ctx context.Context, title string) (*entities.Session, error) {
	var session entities.Session
	req := map[string]string{"title": title}
	if err := c.do(ctx, http.MethodPost, "/sessions/create", req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Transcript fetches the flattened transcript text for a session
func (c *Client) Transcript(ctx context.Context, sessionID string) (string, error) {
	var resp struct {
		Text string `json:"text"`
	}
	if err := c.get(ctx, "/sessions/"+sessionID+"/transcript", &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

// AppendTranscript appends a transcript chunk to the session
func (c *Client) AppendTranscript(ctx context.Context, sessionID, text string, timestamp time.Time) error {
	req := map[string]string{
		"text":      text,
		"timestamp": timestamp.UTC().Format(time.RFC3339),
	}
	return c.do(ctx, http.MethodPost, "/sessions/"+sessionID+"/transcript", req, nil)
}

// Tasks fetches the task set for a session
func (c *Client) Tasks(ctx context.Context, sessionID string) ([]entities.Task, error) {
	var tasks []entities.Task
	if err := c.get(ctx, "/sessions/"+sessionID+"/tasks", &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GenerateTasks asks the backend to produce tasks from the transcript
func (c *Client) GenerateTasks(ctx context.Context, sessionID, transcript string) ([]entities.Task, error) {
	var tasks []entities.Task
	req := map[string]string{"transcript": transcript}
	if err := c.do(ctx, http.MethodPost, "/sessions/"+sessionID+"/tasks", req, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// ActiveResource fetches the resource currently highlighted for listener
// viewing. Returns nil when no resource is active.
func (c *Client) ActiveResource(ctx context.Context, sessionID string) (*entities.Resource, error) {
	var resource *entities.Resource
	if err := c.get(ctx, "/sessions/"+sessionID+"/resources/active", &resource); err != nil {
		return nil, err
	}
	if resource == nil || resource.ID == "" {
		return nil, nil
	}
	return resource, nil
}

// UploadResource uploads a file as a multipart form payload
func (c *Client) UploadResource(ctx context.Context, sessionID, filename string, r io.Reader) (*entities.Resource, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, errors.ErrInternal(err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, errors.ErrInternal(err)
	}
	if err := mw.Close(); err != nil {
		return nil, errors.ErrInternal(err)
	}

	path := "/sessions/" + sessionID + "/resources/upload"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, errors.ErrInternal(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.ErrNetworkFailed("POST "+path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		return nil, c.mapError("POST "+path, resp.StatusCode, eb.text())
	}

	var resource entities.Resource
	if err := json.NewDecoder(resp.Body).Decode(&resource); err != nil {
		return nil, errors.ErrBackendFailed("POST "+path, resp.StatusCode, err)
	}
	return &resource, nil
}

// SetActiveResource promotes one resource to the active slot
func (c *Client) SetActiveResource(ctx context.Context, sessionID, resourceID string) error {
	path := "/sessions/" + sessionID + "/resources/" + resourceID + "/active"
	return c.do(ctx, http.MethodPatch, path, nil, nil)
}

// Query submits a question about the session content and returns the
// assistant's answer.
func (c *Client) Query(ctx context.Context, sessionID, message string) (string, error) {
	var resp struct {
		Answer string `json:"answer"`
	}
	req := map[string]string{"message": message}
	if err := c.do(ctx, http.MethodPost, "/sessions/"+sessionID+"/query", req, &resp); err != nil {
		return "", err
	}
	return resp.Answer, nil
}

// CreateProfile registers the user profile after identity sign-up
func (c *Client) CreateProfile(ctx context.Context, user *entities.User) error {
	req := map[string]string{
		"uid":         user.UID,
		"email":       user.Email,
		"displayName": user.DisplayName,
		"role":        string(user.Role),
	}
	return c.do(ctx, http.MethodPost, "/auth/create-profile", req, nil)
}

// Profile fetches the authenticated user's profile
func (c *Client) Profile(ctx context.Context) (*entities.User, error) {
	var user entities.User
	if err := c.get(ctx, "/auth/profile", &user); err != nil {
		return nil, err
	}
	return &user, nil
}
