package identity

import (
	"errors"
	"strings"
	"time"

	"github.com/Morgan5/digital-planner/internal/app/workspace"
	"github.com/Morgan5/digital-planner/internal/contracts"
	"github.com/Morgan5/digital-planner/internal/platform/auth"
	"github.com/Morgan5/digital-planner/internal/sharding"
	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("username and password are required")
	ErrSessionNotFound    = errors.New("session not found")
)

// Session is one logged-in user together with the workspace they own.
type Session struct {
	ID        string
	User      contracts.User
	Workspace *workspace.Workspace
	ExpiresAt time.Time
}

type LoginResult struct {
	Token     string         `json:"token"`
	User      contracts.User `json:"user"`
	ExpiresAt time.Time      `json:"expires_at"`
	Section   string         `json:"section"`

	Session *Session `json:"-"`
}

type Service struct {
	AuthToken    auth.Manager
	NewID        func() string
	Now          func() time.Time
	NewWorkspace func() *workspace.Workspace

	sessions *sharding.Map[*Session]
}

func NewService(tokenManager auth.Manager) *Service {
	return &Service{
		AuthToken:    tokenManager,
		NewID:        uuid.NewString,
		Now:          func() time.Time { return time.Now().UTC() },
		NewWorkspace: func() *workspace.Workspace { return workspace.New(workspace.Options{}) },
		sessions:     sharding.NewMap[*Session](),
	}
}

func NewTokenManager(secret string, ttl time.Duration) auth.Manager {
	return auth.NewManager(secret, ttl)
}

// Login accepts any pair of non-blank credentials. Every login opens a new
// session with an empty workspace.
func (s *Service) Login(username, password string) (LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	sessionID := s.NewID()
	token, expiresAt, err := s.AuthToken.Sign(sessionID, username)
	if err != nil {
		return LoginResult{}, err
	}

	session := &Session{
		ID:        sessionID,
		User:      contracts.User{Username: username, IsAuthenticated: true},
		Workspace: s.NewWorkspace(),
		ExpiresAt: expiresAt,
	}

	s.sessions.Store(sessionID, session)

	return LoginResult{
		Token:     token,
		User:      session.User,
		ExpiresAt: expiresAt,
		Section:   string(session.Workspace.Navigator.Active()),
		Session:   session,
	}, nil
}

// Authenticate resolves a token to its live session.
func (s *Service) Authenticate(token string) (*Session, error) {
	claims, err := s.AuthToken.Parse(token)
	if err != nil {
		return nil, err
	}

	session, ok := s.sessions.Load(claims.Subject)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Logout drops the session and its workspace. Unknown ids are ignored.
func (s *Service) Logout(sessionID string) {
	s.sessions.Delete(sessionID)
}

// Sweep removes expired sessions and returns how many were dropped.
func (s *Service) Sweep() int {
	now := s.Now()
	return s.sessions.DeleteFunc(func(_ string, session *Session) bool {
		return !now.Before(session.ExpiresAt)
	})
}

func (s *Service) Active() int {
	return s.sessions.Len()
}
