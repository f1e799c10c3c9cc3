// Package sqlstore is the relational storage backend. It runs on SQLite
// (modernc.org/sqlite) or PostgreSQL (pgx) through database/sql.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/scoreboard/internal/model"
	"github.com/mcoot/scoreboard/internal/storage"
)

const (
	userColumns  = "id, username, email, password_hash, created_at"
	scoreColumns = "id, owner_id, player_name, score, created_at, updated_at"
)

// Storage is a database/sql backed store
type Storage struct {
	db     *sql.DB
	driver Driver
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Open connects to the configured database and applies migrations
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Storage, error) {
	driver, err := ParseDriver(string(cfg.Driver))
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(string(driver), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == DriverSQLite {
		// One connection serialises writers and keeps :memory: databases alive
		db.SetMaxOpenConns(1)
	} else if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", model.ErrBackendUnavailable, err)
	}

	if err := Migrate(db, driver, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	return NewWithDB(db, driver), nil
}

// NewWithDB wraps an existing, already migrated database (for testing)
func NewWithDB(db *sql.DB, driver Driver) *Storage {
	return &Storage{
		db:     db,
		driver: driver,
	}
}

// Close closes the connection pool
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ping checks that the database answers
func (s *Storage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", model.ErrBackendUnavailable, err)
	}
	return nil
}

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	query := s.driver.rebind(`INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?)`)

	_, err := s.db.ExecContext(ctx, query,
		string(user.ID), user.Username, user.Email, user.PasswordHash, user.CreatedAt.UnixMicro())
	if err != nil {
		if s.driver.isUniqueViolation(err) {
			return model.ErrDuplicateIdentity
		}
		return s.failed("create user", err)
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	query := s.driver.rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	return s.getUser(ctx, query, string(id))
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	query := s.driver.rebind(`SELECT ` + userColumns + ` FROM users WHERE username = ?`)
	return s.getUser(ctx, query, username)
}

func (s *Storage) getUser(ctx context.Context, query string, arg string) (*model.User, error) {
	var (
		user      model.User
		id        string
		createdAt int64
	)

	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&id, &user.Username, &user.Email, &user.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, s.failed("get user", err)
	}

	user.ID = model.UserID(id)
	user.CreatedAt = fromMicros(createdAt)
	return &user, nil
}

// Score operations

func (s *Storage) ListScores(ctx context.Context, ownerID model.UserID) ([]*model.Score, error) {
	query := s.driver.rebind(`SELECT ` + scoreColumns + ` FROM scores WHERE owner_id = ? ORDER BY score DESC, seq ASC`)

	rows, err := s.db.QueryContext(ctx, query, string(ownerID))
	if err != nil {
		return nil, s.failed("list scores", err)
	}
	defer rows.Close()

	scores := []*model.Score{}
	for rows.Next() {
		score, err := scanScore(rows)
		if err != nil {
			return nil, s.failed("scan score", err)
		}
		scores = append(scores, score)
	}
	if err := rows.Err(); err != nil {
		return nil, s.failed("list scores", err)
	}
	return scores, nil
}

func (s *Storage) CreateScore(ctx context.Context, score *model.Score) error {
	query := s.driver.rebind(`INSERT INTO scores (id, owner_id, player_name, score, created_at) VALUES (?, ?, ?, ?, ?)`)

	_, err := s.db.ExecContext(ctx, query,
		string(score.ID), string(score.OwnerID), score.PlayerName, score.Score, score.CreatedAt.UnixMicro())
	if err != nil {
		return s.failed("create score", err)
	}
	return nil
}

func (s *Storage) UpdateScore(ctx context.Context, id model.ScoreID, ownerID model.UserID, playerName string, score int64, updatedAt time.Time) (*model.Score, error) {
	// Ownership is part of the WHERE clause, so the check and the write
	// are one statement
	query := s.driver.rebind(`UPDATE scores SET player_name = ?, score = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?
		RETURNING ` + scoreColumns)

	row := s.db.QueryRowContext(ctx, query,
		playerName, score, updatedAt.UnixMicro(), string(id), string(ownerID))

	updated, err := scanScore(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrScoreNotFound
		}
		return nil, s.failed("update score", err)
	}
	return updated, nil
}

func (s *Storage) DeleteScore(ctx context.Context, id model.ScoreID, ownerID model.UserID) error {
	query := s.driver.rebind(`DELETE FROM scores WHERE id = ? AND owner_id = ?`)

	result, err := s.db.ExecContext(ctx, query, string(id), string(ownerID))
	if err != nil {
		return s.failed("delete score", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return s.failed("delete score", err)
	}
	if affected == 0 {
		return model.ErrScoreNotFound
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanScore(row rowScanner) (*model.Score, error) {
	var (
		score     model.Score
		id        string
		ownerID   string
		createdAt int64
		updatedAt sql.NullInt64
	)

	if err := row.Scan(&id, &ownerID, &score.PlayerName, &score.Score, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	score.ID = model.ScoreID(id)
	score.OwnerID = model.UserID(ownerID)
	score.CreatedAt = fromMicros(createdAt)
	if updatedAt.Valid {
		t := fromMicros(updatedAt.Int64)
		score.UpdatedAt = &t
	}
	return &score, nil
}

// failed wraps a driver error. Constraint violations are classified by
// the caller before reaching here.
func (s *Storage) failed(op string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", op, model.ErrBackendUnavailable, err)
}

func fromMicros(v int64) time.Time {
	return time.UnixMicro(v).UTC()
}
