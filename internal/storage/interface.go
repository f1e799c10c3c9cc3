package storage

import (
	"context"
	"time"

	"github.com/mcoot/scoreboard/internal/model"
)

// UserStore persists registered users
type UserStore interface {
	// CreateUser inserts a user, failing with model.ErrDuplicateIdentity if
	// the username or email is taken. The check and insert are atomic.
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// ScoreStore persists score records. Every operation is scoped to an owner;
// a score belonging to someone else behaves exactly like a missing one.
type ScoreStore interface {
	// ListScores returns the owner's scores, highest first, ties in
	// insertion order. Never returns a nil slice on success.
	ListScores(ctx context.Context, ownerID model.UserID) ([]*model.Score, error)
	CreateScore(ctx context.Context, score *model.Score) error
	UpdateScore(ctx context.Context, id model.ScoreID, ownerID model.UserID, playerName string, score int64, updatedAt time.Time) (*model.Score, error)
	DeleteScore(ctx context.Context, id model.ScoreID, ownerID model.UserID) error
}

// Storage defines the interface for data persistence
type Storage interface {
	UserStore
	ScoreStore

	// Ping reports whether the backend is reachable
	Ping(ctx context.Context) error
	Close() error
}
