package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mcoot/scoreboard/internal/dependencies/clock"
	"github.com/mcoot/scoreboard/internal/model"
)

// Errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrEmptySecret  = errors.New("token signing secret must not be empty")
)

// Claims is the signed payload of a bearer token.
// The subject claim carries the user id.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// Manager issues and verifies HMAC-signed bearer tokens.
// Tokens are stateless: nothing is persisted server-side.
type Manager struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

// Config holds configuration for the token manager
type Config struct {
	Secret string
	// TTL bounds token lifetime. Zero issues tokens without an exp claim.
	TTL time.Duration
}

// New creates a token Manager
func New(cfg Config, clk clock.Clock) (*Manager, error) {
	if cfg.Secret == "" {
		return nil, ErrEmptySecret
	}
	return &Manager{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		clock:  clk,
	}, nil
}

// Issue signs a token identifying the given user
func (m *Manager) Issue(user *model.User) (string, error) {
	now := m.clock.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  string(user.ID),
			IssuedAt: jwt.NewNumericDate(now),
		},
		Username: user.Username,
	}
	if m.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the token signature (and expiry, when present) and returns
// the identity it carries. Every failure is reported as ErrInvalidToken.
func (m *Manager) Verify(tokenString string) (model.Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
			}
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.clock.Now),
	)
	if err != nil {
		return model.Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return model.Identity{}, ErrInvalidToken
	}

	return model.Identity{
		SubjectID: model.UserID(claims.Subject),
		Username:  claims.Username,
	}, nil
}
