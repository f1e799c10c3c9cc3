package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mcoot/scoreboard/internal/model"
	"github.com/mcoot/scoreboard/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// A single lock guards every check-then-write sequence.
type Storage struct {
	mu sync.RWMutex

	users         map[model.UserID]*model.User
	usernameIndex map[string]model.UserID
	emailIndex    map[string]model.UserID

	// scores are partitioned by owner so lookups can never cross users
	scores map[model.UserID]map[model.ScoreID]*scoreEntry
	seq    int64
}

type scoreEntry struct {
	score *model.Score
	seq   int64 // insertion order, used as the ordering tie-break
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:         make(map[model.UserID]*model.User),
		usernameIndex: make(map[string]model.UserID),
		emailIndex:    make(map[string]model.UserID),
		scores:        make(map[model.UserID]map[model.ScoreID]*scoreEntry),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) Ping(ctx context.Context) error {
	return nil
}

func (s *Storage) Close() error {
	return nil
}

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.usernameIndex[user.Username]; ok {
		return model.ErrDuplicateIdentity
	}
	if _, ok := s.emailIndex[user.Email]; ok {
		return model.ErrDuplicateIdentity
	}

	stored := *user
	s.users[user.ID] = &stored
	s.usernameIndex[user.Username] = user.ID
	s.emailIndex[user.Email] = user.ID
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	out := *user
	return &out, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	out := *user
	return &out, nil
}

// Score operations

func (s *Storage) ListScores(ctx context.Context, ownerID model.UserID) ([]*model.Score, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := s.scores[ownerID]
	entries := make([]*scoreEntry, 0, len(owned))
	for _, e := range owned {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].score.Score != entries[j].score.Score {
			return entries[i].score.Score > entries[j].score.Score
		}
		return entries[i].seq < entries[j].seq
	})

	result := make([]*model.Score, len(entries))
	for i, e := range entries {
		result[i] = copyScore(e.score)
	}
	return result, nil
}

func (s *Storage) CreateScore(ctx context.Context, score *model.Score) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	owned, ok := s.scores[score.OwnerID]
	if !ok {
		owned = make(map[model.ScoreID]*scoreEntry)
		s.scores[score.OwnerID] = owned
	}
	s.seq++
	owned[score.ID] = &scoreEntry{score: copyScore(score), seq: s.seq}
	return nil
}

func (s *Storage) UpdateScore(ctx context.Context, id model.ScoreID, ownerID model.UserID, playerName string, score int64, updatedAt time.Time) (*model.Score, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.scores[ownerID][id]
	if !ok {
		return nil, model.ErrScoreNotFound
	}
	e.score.PlayerName = playerName
	e.score.Score = score
	e.score.UpdatedAt = &updatedAt
	return copyScore(e.score), nil
}

func (s *Storage) DeleteScore(ctx context.Context, id model.ScoreID, ownerID model.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	owned := s.scores[ownerID]
	if _, ok := owned[id]; !ok {
		return model.ErrScoreNotFound
	}
	delete(owned, id)
	return nil
}

// copyScore detaches stored records from callers
func copyScore(sc *model.Score) *model.Score {
	out := *sc
	if sc.UpdatedAt != nil {
		t := *sc.UpdatedAt
		out.UpdatedAt = &t
	}
	return &out
}
