// Package storagetest holds the behavioural contract every storage backend
// must satisfy. Backend packages run it from their own tests.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/scoreboard/internal/model"
	"github.com/mcoot/scoreboard/internal/storage"
)

// ContractSuite exercises a storage.Storage implementation.
// NewStorage is called once per test and must return an empty store.
type ContractSuite struct {
	suite.Suite
	NewStorage func() storage.Storage

	store storage.Storage
	ctx   context.Context
	now   time.Time
	ids   int
}

func (s *ContractSuite) SetupTest() {
	s.Require().NotNil(s.NewStorage, "NewStorage must be set")
	s.store = s.NewStorage()
	s.ctx = context.Background()
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.ids = 0
}

func (s *ContractSuite) TearDownTest() {
	if s.store != nil {
		_ = s.store.Close()
	}
}

func (s *ContractSuite) nextID(prefix string) string {
	s.ids++
	return fmt.Sprintf("%s-%04d", prefix, s.ids)
}

func (s *ContractSuite) newUser(username, email string) *model.User {
	return &model.User{
		ID:           model.UserID(s.nextID("user")),
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$10$hash-for-" + username,
		CreatedAt:    s.now,
	}
}

func (s *ContractSuite) addScore(owner model.UserID, name string, value int64) *model.Score {
	score := &model.Score{
		ID:         model.ScoreID(s.nextID("score")),
		OwnerID:    owner,
		PlayerName: name,
		Score:      value,
		CreatedAt:  s.now,
	}
	s.Require().NoError(s.store.CreateScore(s.ctx, score))
	return score
}

func scoreValues(scores []*model.Score) []int64 {
	out := make([]int64, len(scores))
	for i, sc := range scores {
		out[i] = sc.Score
	}
	return out
}

// Backend tests

func (s *ContractSuite) TestPing() {
	s.NoError(s.store.Ping(s.ctx))
}

// User tests

func (s *ContractSuite) TestCreateAndGetUser() {
	user := s.newUser("alice", "a@x.com")
	s.Require().NoError(s.store.CreateUser(s.ctx, user))

	byName, err := s.store.GetUserByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(user.ID, byName.ID)
	s.Equal("a@x.com", byName.Email)
	s.Equal(user.PasswordHash, byName.PasswordHash)
	s.True(user.CreatedAt.Equal(byName.CreatedAt))

	byID, err := s.store.GetUser(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal("alice", byID.Username)
}

func (s *ContractSuite) TestGetUserNotFound() {
	_, err := s.store.GetUserByUsername(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrUserNotFound)

	_, err = s.store.GetUser(s.ctx, "missing-id")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *ContractSuite) TestCreateUserDuplicateUsername() {
	s.Require().NoError(s.store.CreateUser(s.ctx, s.newUser("alice", "a@x.com")))

	err := s.store.CreateUser(s.ctx, s.newUser("alice", "other@x.com"))
	s.ErrorIs(err, model.ErrDuplicateIdentity)

	// The failed attempt must not have claimed the other email
	s.NoError(s.store.CreateUser(s.ctx, s.newUser("carol", "other@x.com")))
}

func (s *ContractSuite) TestCreateUserDuplicateEmail() {
	s.Require().NoError(s.store.CreateUser(s.ctx, s.newUser("alice", "a@x.com")))

	err := s.store.CreateUser(s.ctx, s.newUser("bob", "a@x.com"))
	s.ErrorIs(err, model.ErrDuplicateIdentity)

	_, err = s.store.GetUserByUsername(s.ctx, "bob")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *ContractSuite) TestUsernamesAreCaseSensitive() {
	s.Require().NoError(s.store.CreateUser(s.ctx, s.newUser("alice", "a@x.com")))
	s.NoError(s.store.CreateUser(s.ctx, s.newUser("Alice", "A@x.com")))
}

func (s *ContractSuite) TestConcurrentRegistrationSameUsername() {
	const attempts = 16
	users := make([]*model.User, attempts)
	for i := range users {
		users[i] = s.newUser("racer", fmt.Sprintf("racer%d@x.com", i))
	}

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := range users {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.store.CreateUser(s.ctx, users[i])
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.ErrorIs(err, model.ErrDuplicateIdentity)
	}
	s.Equal(1, succeeded)
}

// Score tests

func (s *ContractSuite) TestListScoresEmpty() {
	scores, err := s.store.ListScores(s.ctx, "nobody")
	s.Require().NoError(err)
	s.NotNil(scores)
	s.Empty(scores)
}

func (s *ContractSuite) TestCreateScoreRoundTrip() {
	created := s.addScore("owner-a", "alice", 42)

	scores, err := s.store.ListScores(s.ctx, "owner-a")
	s.Require().NoError(err)
	s.Require().Len(scores, 1)

	got := scores[0]
	s.Equal(created.ID, got.ID)
	s.Equal(model.UserID("owner-a"), got.OwnerID)
	s.Equal("alice", got.PlayerName)
	s.Equal(int64(42), got.Score)
	s.True(created.CreatedAt.Equal(got.CreatedAt))
	s.Nil(got.UpdatedAt)
}

func (s *ContractSuite) TestListScoresOrderedDescending() {
	s.addScore("owner-a", "p", 30)
	s.addScore("owner-a", "p", 90)
	s.addScore("owner-a", "p", 10)

	scores, err := s.store.ListScores(s.ctx, "owner-a")
	s.Require().NoError(err)
	s.Equal([]int64{90, 30, 10}, scoreValues(scores))
}

func (s *ContractSuite) TestListScoresTiesKeepInsertionOrder() {
	first := s.addScore("owner-a", "first", 50)
	s.addScore("owner-a", "top", 70)
	second := s.addScore("owner-a", "second", 50)
	third := s.addScore("owner-a", "third", 50)

	scores, err := s.store.ListScores(s.ctx, "owner-a")
	s.Require().NoError(err)
	s.Require().Len(scores, 4)
	s.Equal([]model.ScoreID{first.ID, second.ID, third.ID},
		[]model.ScoreID{scores[1].ID, scores[2].ID, scores[3].ID})
}

func (s *ContractSuite) TestListScoresIsolatedByOwner() {
	s.addScore("owner-a", "alice", 10)
	s.addScore("owner-b", "bob", 20)

	scores, err := s.store.ListScores(s.ctx, "owner-b")
	s.Require().NoError(err)
	s.Require().Len(scores, 1)
	s.Equal("bob", scores[0].PlayerName)
}

func (s *ContractSuite) TestUpdateScore() {
	created := s.addScore("owner-a", "alice", 10)
	later := s.now.Add(time.Minute)

	updated, err := s.store.UpdateScore(s.ctx, created.ID, "owner-a", "alice2", 99, later)
	s.Require().NoError(err)
	s.Equal(created.ID, updated.ID)
	s.Equal(model.UserID("owner-a"), updated.OwnerID)
	s.Equal("alice2", updated.PlayerName)
	s.Equal(int64(99), updated.Score)
	s.True(created.CreatedAt.Equal(updated.CreatedAt))
	s.Require().NotNil(updated.UpdatedAt)
	s.True(later.Equal(*updated.UpdatedAt))

	scores, err := s.store.ListScores(s.ctx, "owner-a")
	s.Require().NoError(err)
	s.Require().Len(scores, 1)
	s.Equal("alice2", scores[0].PlayerName)
	s.Equal(int64(99), scores[0].Score)
	s.Require().NotNil(scores[0].UpdatedAt)
}

func (s *ContractSuite) TestUpdateScoreReordersList() {
	low := s.addScore("owner-a", "low", 10)
	s.addScore("owner-a", "high", 50)

	_, err := s.store.UpdateScore(s.ctx, low.ID, "owner-a", "low", 80, s.now)
	s.Require().NoError(err)

	scores, err := s.store.ListScores(s.ctx, "owner-a")
	s.Require().NoError(err)
	s.Equal([]int64{80, 50}, scoreValues(scores))
}

func (s *ContractSuite) TestUpdateScoreNotFound() {
	_, err := s.store.UpdateScore(s.ctx, "missing", "owner-a", "x", 1, s.now)
	s.ErrorIs(err, model.ErrScoreNotFound)
}

func (s *ContractSuite) TestUpdateScoreOtherOwner() {
	created := s.addScore("owner-a", "alice", 10)

	_, err := s.store.UpdateScore(s.ctx, created.ID, "owner-b", "mallory", 0, s.now)
	s.ErrorIs(err, model.ErrScoreNotFound)

	scores, err := s.store.ListScores(s.ctx, "owner-a")
	s.Require().NoError(err)
	s.Require().Len(scores, 1)
	s.Equal("alice", scores[0].PlayerName)
	s.Equal(int64(10), scores[0].Score)
	s.Nil(scores[0].UpdatedAt)
}

func (s *ContractSuite) TestDeleteScore() {
	keep := s.addScore("owner-a", "keep", 1)
	drop := s.addScore("owner-a", "drop", 2)

	s.Require().NoError(s.store.DeleteScore(s.ctx, drop.ID, "owner-a"))

	scores, err := s.store.ListScores(s.ctx, "owner-a")
	s.Require().NoError(err)
	s.Require().Len(scores, 1)
	s.Equal(keep.ID, scores[0].ID)
}

func (s *ContractSuite) TestDeleteScoreTwice() {
	created := s.addScore("owner-a", "alice", 1)

	s.Require().NoError(s.store.DeleteScore(s.ctx, created.ID, "owner-a"))
	s.ErrorIs(s.store.DeleteScore(s.ctx, created.ID, "owner-a"), model.ErrScoreNotFound)
	s.ErrorIs(s.store.DeleteScore(s.ctx, created.ID, "owner-a"), model.ErrScoreNotFound)
}

func (s *ContractSuite) TestDeleteScoreOtherOwner() {
	created := s.addScore("owner-a", "alice", 1)

	s.ErrorIs(s.store.DeleteScore(s.ctx, created.ID, "owner-b"), model.ErrScoreNotFound)

	scores, err := s.store.ListScores(s.ctx, "owner-a")
	s.Require().NoError(err)
	s.Len(scores, 1)
}

func (s *ContractSuite) TestMalformedScoreIDIsNotFound() {
	s.addScore("owner-a", "alice", 1)

	_, err := s.store.UpdateScore(s.ctx, "../../etc", "owner-a", "x", 1, s.now)
	s.ErrorIs(err, model.ErrScoreNotFound)
	s.ErrorIs(s.store.DeleteScore(s.ctx, "' OR 1=1 --", "owner-a"), model.ErrScoreNotFound)
}

func (s *ContractSuite) TestConcurrentScoreCreation() {
	const count = 20
	scores := make([]*model.Score, count)
	for i := range scores {
		scores[i] = &model.Score{
			ID:         model.ScoreID(s.nextID("score")),
			OwnerID:    "owner-a",
			PlayerName: "p",
			Score:      int64(i),
			CreatedAt:  s.now,
		}
	}

	var wg sync.WaitGroup
	for _, sc := range scores {
		wg.Add(1)
		go func(sc *model.Score) {
			defer wg.Done()
			s.NoError(s.store.CreateScore(s.ctx, sc))
		}(sc)
	}
	wg.Wait()

	listed, err := s.store.ListScores(s.ctx, "owner-a")
	s.Require().NoError(err)
	s.Len(listed, count)
}
