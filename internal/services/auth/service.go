package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/mcoot/scoreboard/internal/dependencies/clock"
	"github.com/mcoot/scoreboard/internal/dependencies/idgen"
	"github.com/mcoot/scoreboard/internal/model"
	"github.com/mcoot/scoreboard/internal/services/password"
	"github.com/mcoot/scoreboard/internal/storage"
)

// Errors
var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password so callers cannot tell which one failed
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// TokenIssuer signs bearer tokens for authenticated users
type TokenIssuer interface {
	Issue(user *model.User) (string, error)
}

// Session is the outcome of a successful register or login
type Session struct {
	Token string
	User  *model.User
}

// Service handles registration, login and identity lookup
type Service struct {
	users  storage.UserStore
	hasher *password.Hasher
	tokens TokenIssuer
	ids    idgen.Generator
	clock  clock.Clock
	logger *slog.Logger
}

// New creates a new auth Service
func New(users storage.UserStore, hasher *password.Hasher, tokens TokenIssuer, ids idgen.Generator, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		ids:    ids,
		clock:  clk,
		logger: logger,
	}
}

// Register creates an account and returns a token for it
func (s *Service) Register(ctx context.Context, username, email, plaintext string) (*Session, error) {
	if blank(username) || blank(email) || plaintext == "" {
		return nil, model.NewValidationError("Username, email, and password are required")
	}
	if utf8.RuneCountInString(plaintext) < password.MinLength {
		return nil, model.NewValidationError("Password must be at least %d characters long", password.MinLength)
	}

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           model.UserID(s.ids.NewID()),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now(),
	}

	// Uniqueness is enforced by the store in the same step as the write
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, model.ErrDuplicateIdentity) {
			s.logger.Info("registration rejected: identity taken", "username", username)
		}
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)

	return s.newSession(user)
}

// Login checks a username/password pair and returns a token
func (s *Service) Login(ctx context.Context, username, plaintext string) (*Session, error) {
	if blank(username) || plaintext == "" {
		return nil, model.NewValidationError("Username and password are required")
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			s.logger.Debug("login failed", "username", username)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(plaintext, user.PasswordHash) {
		s.logger.Debug("login failed", "username", username)
		return nil, ErrInvalidCredentials
	}

	s.logger.Info("user logged in", "user_id", user.ID)

	return s.newSession(user)
}

// Me returns the stored account behind a verified identity
func (s *Service) Me(ctx context.Context, identity model.Identity) (*model.User, error) {
	return s.users.GetUser(ctx, identity.SubjectID)
}

func (s *Service) newSession(user *model.User) (*Session, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &Session{Token: token, User: user}, nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
