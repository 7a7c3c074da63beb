package demo

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/pandalive/panda/internal/domain/entities"
	"github.com/pandalive/panda/pkg/jwt"
)

// Server is the in-process demo backend. It serves the same HTTP
// surface as the production backend, so the client code paths are
// identical in demo mode.
type Server struct {
	echo     *echo.Echo
	store    *Store
	identity *Identity
	validate *validator.Validate
	logger   *zap.Logger
}

// NewServer creates a demo backend signing tokens with the given secret
func NewServer(secret string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		echo:     echo.New(),
		store:    NewStore(),
		identity: NewIdentity(jwt.NewManager(secret, 24*time.Hour)),
		validate: validator.New(),
		logger:   logger,
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(middleware.Recover())
	s.routes()
	return s
}

// ServeHTTP makes the server mountable as a plain http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Store exposes the backing store for seeding and assertions
func (s *Server) Store() *Store {
	return s.store
}

// Identity exposes the identity service for seeding
func (s *Server) Identity() *Identity {
	return s.identity
}

// Seed registers the built-in demo accounts and returns them
func (s *Server) Seed() (speaker, listener *entities.User) {
	speaker, _ = s.identity.Register("speaker@panda.live", "demo123", "Demo Speaker", entities.RoleSpeaker)
	listener, _ = s.identity.Register("listener@panda.live", "demo123", "Demo Listener", entities.RoleListener)
	return speaker, listener
}

func (s *Server) routes() {
	e := s.echo

	e.POST("/auth/token", s.signIn)
	e.POST("/auth/register", s.register)
	e.POST("/auth/oauth", s.oauth)
	e.GET("/sessions/info/:joinCode", s.sessionInfo)

	auth := e.Group("", s.requireAuth)
	auth.POST("/auth/logout", s.signOut)
	auth.POST("/auth/create-profile", s.createProfile)
	auth.GET("/auth/profile", s.profile)

	auth.POST("/sessions/join", s.join)
	auth.GET("/sessions/list", s.listSessions)
	auth.POST("/sessions/create", s.createSession)
	auth.POST("/sessions/:id/end", s.endSession)
	auth.GET("/sessions/:id/transcript", s.transcript)
	auth.POST("/sessions/:id/transcript", s.appendTranscript)
	auth.GET("/sessions/:id/tasks", s.tasks)
	auth.POST("/sessions/:id/tasks", s.generateTasks)
	auth.GET("/sessions/:id/resources/active", s.activeResource)
	auth.POST("/sessions/:id/resources/upload", s.uploadResource)
	auth.PATCH("/sessions/:id/resources/:resourceId/active", s.setActiveResource)
	auth.POST("/sessions/:id/query", s.query)
}

// requireAuth validates the bearer token and installs the user on the
// request context.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if header == "" || token == header {
			return fail(c, http.StatusUnauthorized, "Authentication required")
		}
		user, ok := s.identity.Validate(token)
		if !ok {
			return fail(c, http.StatusUnauthorized, "Invalid or expired token")
		}
		c.Set("user", user)
		c.Set("token", token)
		return next(c)
	}
}

func currentUser(c echo.Context) *entities.User {
	user, _ := c.Get("user").(*entities.User)
	return user
}

// fail writes the backend error payload shape
func fail(c echo.Context, status int, detail string) error {
	return c.JSON(status, map[string]string{"detail": detail})
}

type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) signIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return fail(c, http.StatusBadRequest, "Email and password are required")
	}

	user, ok := s.identity.SignIn(req.Email, req.Password)
	if !ok {
		return fail(c, http.StatusUnauthorized, "Invalid email or password")
	}
	return s.issueToken(c, user)
}

type registerRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	DisplayName string `json:"displayName" validate:"required"`
	Role        string `json:"role" validate:"required,oneof=speaker listener"`
}

func (s *Server) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return fail(c, http.StatusBadRequest, "All fields are required")
	}

	user, ok := s.identity.Register(req.Email, req.Password, req.DisplayName, entities.UserRole(req.Role))
	if !ok {
		return fail(c, http.StatusConflict, "An account with this email already exists")
	}
	s.logger.Info("demo.account.registered", zap.String("uid", user.UID))
	return s.issueToken(c, user)
}

type oauthRequest struct {
	Provider  string `json:"provider" validate:"required"`
	Assertion string `json:"assertion" validate:"required"`
}

func (s *Server) oauth(c echo.Context) error {
	var req oauthRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return fail(c, http.StatusBadRequest, "Provider and assertion are required")
	}
	if req.Provider != "google" {
		return fail(c, http.StatusBadRequest, "Unsupported provider")
	}

	user := s.identity.SignInWithGoogle(req.Assertion)
	return s.issueToken(c, user)
}

func (s *Server) issueToken(c echo.Context, user *entities.User) error {
	token, err := s.identity.Token(user)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to issue token")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

func (s *Server) signOut(c echo.Context) error {
	token, _ := c.Get("token").(string)
	s.identity.Revoke(token)
	return c.JSON(http.StatusOK, map[string]string{"message": "Signed out"})
}

type profileRequest struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName" validate:"required"`
	Role        string `json:"role" validate:"required,oneof=speaker listener"`
}

func (s *Server) createProfile(c echo.Context) error {
	var req profileRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return fail(c, http.StatusBadRequest, "Display name and role are required")
	}

	user := currentUser(c)
	if !s.identity.UpdateProfile(user.UID, req.DisplayName, entities.UserRole(req.Role)) {
		return fail(c, http.StatusNotFound, "User not found")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Profile updated"})
}

func (s *Server) profile(c echo.Context) error {
	return c.JSON(http.StatusOK, currentUser(c))
}

func (s *Server) sessionInfo(c echo.Context) error {
	code := strings.ToUpper(c.Param("joinCode"))
	session, ok := s.store.SessionByJoinCode(code)
	if !ok {
		return fail(c, http.StatusNotFound, "Session not found")
	}
	return c.JSON(http.StatusOK, session.Info())
}

type joinRequest struct {
	JoinCode string `json:"joinCode" validate:"required"`
}

func (s *Server) join(c echo.Context) error {
	var req joinRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return fail(c, http.StatusBadRequest, "Join code is required")
	}

	session, ok := s.store.SessionByJoinCode(strings.ToUpper(req.JoinCode))
	if !ok {
		return fail(c, http.StatusNotFound, "Session not found")
	}
	if !session.IsActive() {
		return fail(c, http.StatusGone, "Session has ended")
	}

	s.store.AddParticipant(session.ID, currentUser(c).UID)
	return c.JSON(http.StatusOK, session)
}

func (s *Server) listSessions(c echo.Context) error {
	user := currentUser(c)
	if !user.IsSpeaker() {
		return fail(c, http.StatusForbidden, "Only speakers can list their sessions")
	}
	sessions := s.store.SessionsBySpeaker(user.UID)
	if sessions == nil {
		sessions = []entities.Session{}
	}
	return c.JSON(http.StatusOK, sessions)
}

type createSessionRequest struct {
	Title string `json:"title" validate:"required,min=1,max=255"`
}

func (s *Server) createSession(c echo.Context) error {
	user := currentUser(c)
	if !user.IsSpeaker() {
		return fail(c, http.StatusForbidden, "Only speakers can create sessions")
	}

	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return fail(c, http.StatusBadRequest, "Session title is required")
	}

	session := s.store.CreateSession(strings.TrimSpace(req.Title), user)
	s.logger.Info("demo.session.created",
		zap.String("session_id", session.ID),
		zap.String("join_code", session.JoinCode),
	)
	return c.JSON(http.StatusOK, session)
}

func (s *Server) endSession(c echo.Context) error {
	session, ok := s.ownedSession(c)
	if !ok {
		return nil
	}
	s.store.EndSession(session.ID)
	return c.JSON(http.StatusOK, map[string]string{"message": "Session ended"})
}

func (s *Server) transcript(c echo.Context) error {
	session, ok := s.store.Session(c.Param("id"))
	if !ok {
		return fail(c, http.StatusNotFound, "Session not found")
	}
	if !session.IsActive() && !currentUser(c).IsSpeaker() {
		return fail(c, http.StatusGone, "Session has ended")
	}
	return c.JSON(http.StatusOK, map[string]string{"text": session.TranscriptText()})
}

type appendTranscriptRequest struct {
	Text      string `json:"text" validate:"required"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) appendTranscript(c echo.Context) error {
	session, ok := s.ownedSession(c)
	if !ok {
		return nil
	}
	if !session.IsActive() {
		return fail(c, http.StatusGone, "Session has ended")
	}

	var req appendTranscriptRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return fail(c, http.StatusBadRequest, "Text is required")
	}

	at, err := time.Parse(time.RFC3339, req.Timestamp)
	if err != nil {
		at = time.Now().UTC()
	}
	s.store.AppendChunk(session.ID, req.Text, session.SpeakerID, at)
	return c.JSON(http.StatusOK, map[string]string{"message": "Chunk appended"})
}

func (s *Server) tasks(c echo.Context) error {
	session, ok := s.store.Session(c.Param("id"))
	if !ok {
		return fail(c, http.StatusNotFound, "Session not found")
	}
	tasks := session.Tasks
	if tasks == nil {
		tasks = []entities.Task{}
	}
	return c.JSON(http.StatusOK, tasks)
}

type generateTasksRequest struct {
	Transcript string `json:"transcript"`
}

func (s *Server) generateTasks(c echo.Context) error {
	session, ok := s.ownedSession(c)
	if !ok {
		return nil
	}

	var req generateTasksRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	tasks := GenerateTasks(req.Transcript)
	s.store.SetTasks(session.ID, tasks)
	return c.JSON(http.StatusOK, tasks)
}

func (s *Server) activeResource(c echo.Context) error {
	session, ok := s.store.Session(c.Param("id"))
	if !ok {
		return fail(c, http.StatusNotFound, "Session not found")
	}
	return c.JSON(http.StatusOK, session.ActiveResource())
}

func (s *Server) uploadResource(c echo.Context) error {
	session, ok := s.ownedSession(c)
	if !ok {
		return nil
	}

	file, err := c.FormFile("file")
	if err != nil {
		return fail(c, http.StatusBadRequest, "A file is required")
	}

	stored := entities.NewResource(file.Filename, file.Filename, "/uploads/"+session.ID+"/"+file.Filename)
	s.store.AddResource(session.ID, stored)
	s.logger.Info("demo.resource.uploaded",
		zap.String("session_id", session.ID),
		zap.String("resource_id", stored.ID),
	)
	return c.JSON(http.StatusOK, stored)
}

func (s *Server) setActiveResource(c echo.Context) error {
	session, ok := s.ownedSession(c)
	if !ok {
		return nil
	}
	if err := s.store.SetActiveResource(session.ID, c.Param("resourceId")); err != nil {
		return fail(c, http.StatusNotFound, "Resource not found")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Resource activated"})
}

type queryRequest struct {
	Message string `json:"message" validate:"required"`
}

func (s *Server) query(c echo.Context) error {
	if _, ok := s.store.Session(c.Param("id")); !ok {
		return fail(c, http.StatusNotFound, "Session not found")
	}

	var req queryRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return fail(c, http.StatusBadRequest, "Message is required")
	}

	return c.JSON(http.StatusOK, map[string]string{"answer": Answer(req.Message)})
}

// ownedSession resolves the path id and checks the caller owns it. On
// failure the error response has already been written.
func (s *Server) ownedSession(c echo.Context) (*entities.Session, bool) {
	session, ok := s.store.Session(c.Param("id"))
	if !ok {
		_ = fail(c, http.StatusNotFound, "Session not found")
		return nil, false
	}
	if session.SpeakerID != currentUser(c).UID {
		_ = fail(c, http.StatusForbidden, "Only the session owner can do this")
		return nil, false
	}
	return session, true
}
