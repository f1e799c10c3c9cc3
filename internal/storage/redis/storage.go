package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/scoreboard/internal/model"
	"github.com/mcoot/scoreboard/internal/storage"
)

// Storage is a Redis-backed document store: users and scores are JSON
// documents, with secondary keys acting as unique indexes
type Storage struct {
	client *redis.Client
	cfg    Config
}

// scoreDocument is the stored form of a score
type scoreDocument struct {
	model.Score
	Seq int64 // insertion order, used as the ordering tie-break
}

// createUserScript claims both unique indexes and writes the user in one
// atomic step. KEYS: user, username index, email index. ARGV: document, id.
var createUserScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[2]) == 1 or redis.call("EXISTS", KEYS[3]) == 1 then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1])
redis.call("SET", KEYS[2], ARGV[2])
redis.call("SET", KEYS[3], ARGV[2])
return 1
`)

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().DialTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %w", model.ErrBackendUnavailable, err)
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ping checks that the server answers
func (s *Storage) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return wrapErr("ping", err)
	}
	return nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	keys := []string{userKey(user.ID), usernameIndexKey(user.Username), emailIndexKey(user.Email)}
	created, err := createUserScript.Run(ctx, s.client, keys, data, string(user.ID)).Int()
	if err != nil {
		return wrapErr("create user", err)
	}
	if created == 0 {
		return model.ErrDuplicateIdentity
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, wrapErr("get user", err)
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	// Look up user ID from username index
	id, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, wrapErr("get user by username", err)
	}

	return s.GetUser(ctx, model.UserID(id))
}

// Score operations

func (s *Storage) ListScores(ctx context.Context, ownerID model.UserID) ([]*model.Score, error) {
	// Ids come back in insertion order
	ids, err := s.client.ZRange(ctx, scoresForOwnerIndexKey(ownerID), 0, -1).Result()
	if err != nil {
		return nil, wrapErr("list scores", err)
	}

	if len(ids) == 0 {
		return []*model.Score{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = scoreKey(ownerID, model.ScoreID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, wrapErr("list scores", err)
	}

	docs := make([]scoreDocument, 0, len(values))
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue // Deleted between ZRANGE and MGET
		}
		var doc scoreDocument
		if err := json.Unmarshal([]byte(str), &doc); err != nil {
			return nil, fmt.Errorf("corrupt score document: %w", err)
		}
		docs = append(docs, doc)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].Score.Score != docs[j].Score.Score {
			return docs[i].Score.Score > docs[j].Score.Score
		}
		return docs[i].Seq < docs[j].Seq
	})

	scores := make([]*model.Score, len(docs))
	for i := range docs {
		sc := docs[i].Score
		scores[i] = &sc
	}
	return scores, nil
}

func (s *Storage) CreateScore(ctx context.Context, score *model.Score) error {
	seq, err := s.client.Incr(ctx, scoreSequenceKey()).Result()
	if err != nil {
		return wrapErr("create score", err)
	}

	data, err := json.Marshal(scoreDocument{Score: *score, Seq: seq})
	if err != nil {
		return err
	}

	// Document and index are written in one MULTI/EXEC
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, scoreKey(score.OwnerID, score.ID), data, 0)
		pipe.ZAdd(ctx, scoresForOwnerIndexKey(score.OwnerID), redis.Z{Score: float64(seq), Member: string(score.ID)})
		return nil
	})
	if err != nil {
		return wrapErr("create score", err)
	}
	return nil
}

func (s *Storage) UpdateScore(ctx context.Context, id model.ScoreID, ownerID model.UserID, playerName string, score int64, updatedAt time.Time) (*model.Score, error) {
	if !validScoreID(id) {
		return nil, model.ErrScoreNotFound
	}

	key := scoreKey(ownerID, id)
	var updated model.Score

	// Optimistic transaction: the write aborts if the document changes
	// between the read and EXEC
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrScoreNotFound
			}
			return err
		}

		var doc scoreDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("corrupt score document: %w", err)
		}
		if doc.OwnerID != ownerID {
			return model.ErrScoreNotFound
		}

		doc.PlayerName = playerName
		doc.Score.Score = score
		doc.UpdatedAt = &updatedAt

		out, err := json.Marshal(doc)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		if err != nil {
			return err
		}

		updated = doc.Score
		return nil
	}, key)
	if err != nil {
		if errors.Is(err, model.ErrScoreNotFound) {
			return nil, err
		}
		if errors.Is(err, redis.TxFailedErr) {
			return nil, fmt.Errorf("score modified concurrently: %w", err)
		}
		return nil, wrapErr("update score", err)
	}

	return &updated, nil
}

func (s *Storage) DeleteScore(ctx context.Context, id model.ScoreID, ownerID model.UserID) error {
	if !validScoreID(id) {
		return model.ErrScoreNotFound
	}

	var deleted *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, scoreKey(ownerID, id))
		pipe.ZRem(ctx, scoresForOwnerIndexKey(ownerID), string(id))
		return nil
	})
	if err != nil {
		return wrapErr("delete score", err)
	}
	if deleted.Val() == 0 {
		return model.ErrScoreNotFound
	}
	return nil
}

// validScoreID rejects ids that could address a key outside the owner's
// namespace
func validScoreID(id model.ScoreID) bool {
	return id != "" && !strings.Contains(string(id), ":")
}

// wrapErr classifies a client error. Server replies are returned as-is;
// anything else (network, timeouts, closed pool) means the backend is
// unreachable.
func wrapErr(op string, err error) error {
	var replyErr redis.Error
	if errors.As(err, &replyErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, model.ErrBackendUnavailable, err)
}
