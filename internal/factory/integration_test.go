package factory

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/scoreboard/internal/config"
	"github.com/mcoot/scoreboard/internal/model"
	redisstorage "github.com/mcoot/scoreboard/internal/storage/redis"
	"github.com/mcoot/scoreboard/internal/storage/sqlstore"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

// Test: two users keep fully separate scoreboards
func (s *IntegrationSuite) TestScoreboardsAreIsolated() {
	s.app.MockIDs.Queue("alice-id", "bob-id", "score-1", "score-2")

	// Step 1: Register two users
	alice, err := s.app.AuthService.Register(s.ctx, "alice", "a@x.com", "secret1")
	s.Require().NoError(err)
	bob, err := s.app.AuthService.Register(s.ctx, "bob", "b@x.com", "secret2")
	s.Require().NoError(err)

	// Step 2: Each identity comes back from its token
	aliceIdentity, err := s.app.Tokens.Verify(alice.Token)
	s.Require().NoError(err)
	bobIdentity, err := s.app.Tokens.Verify(bob.Token)
	s.Require().NoError(err)
	s.Equal(model.UserID("alice-id"), aliceIdentity.SubjectID)
	s.Equal(model.UserID("bob-id"), bobIdentity.SubjectID)

	// Step 3: Alice records a score
	score, err := s.app.ScoresService.Create(s.ctx, aliceIdentity.SubjectID, "alice", "42")
	s.Require().NoError(err)
	s.Equal(model.ScoreID("score-1"), score.ID)
	s.Equal(int64(42), score.Score)

	// Step 4: Bob sees nothing and cannot touch it
	bobScores, err := s.app.ScoresService.List(s.ctx, bobIdentity.SubjectID)
	s.Require().NoError(err)
	s.Empty(bobScores)

	_, err = s.app.ScoresService.Update(s.ctx, score.ID, bobIdentity.SubjectID, "bob", "1")
	s.ErrorIs(err, model.ErrScoreNotFound)
	s.ErrorIs(s.app.ScoresService.Delete(s.ctx, score.ID, bobIdentity.SubjectID), model.ErrScoreNotFound)

	// Step 5: Alice updates after time passes
	s.app.MockClock.Advance(time.Minute)
	updated, err := s.app.ScoresService.Update(s.ctx, score.ID, aliceIdentity.SubjectID, "alice", "50")
	s.Require().NoError(err)
	s.Equal(int64(50), updated.Score)
	s.Require().NotNil(updated.UpdatedAt)
	s.Equal(s.app.MockClock.Now(), *updated.UpdatedAt)

	// Step 6: Alice deletes; a second delete is not found
	s.Require().NoError(s.app.ScoresService.Delete(s.ctx, score.ID, aliceIdentity.SubjectID))
	s.ErrorIs(s.app.ScoresService.Delete(s.ctx, score.ID, aliceIdentity.SubjectID), model.ErrScoreNotFound)
}

// Test: an expired token stops verifying
func (s *IntegrationSuite) TestTokensExpire() {
	session, err := s.app.AuthService.Register(s.ctx, "alice", "a@x.com", "secret1")
	s.Require().NoError(err)

	s.app.MockClock.Advance(2 * time.Hour)

	_, err = s.app.Tokens.Verify(session.Token)
	s.Error(err)
}

func (s *IntegrationSuite) TestSeedUserIsIdempotent() {
	seed := config.Seed{Username: "demo", Email: "demo@example.com", Password: "demo123"}

	s.Require().NoError(s.app.SeedUser(s.ctx, seed))
	s.Require().NoError(s.app.SeedUser(s.ctx, seed))

	session, err := s.app.AuthService.Login(s.ctx, "demo", "demo123")
	s.Require().NoError(err)
	s.Equal("demo", session.User.Username)
}

func (s *IntegrationSuite) TestSeedUserDisabled() {
	s.Require().NoError(s.app.SeedUser(s.ctx, config.Seed{}))

	_, err := s.app.Storage.GetUserByUsername(s.ctx, "demo")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func TestNewSelectsStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("memory by default", func(t *testing.T) {
		app, err := New(ctx, Config{})
		require.NoError(t, err)
		defer app.Close()
		assert.Equal(t, config.StorageMemory, app.StorageType)
	})

	t.Run("redis", func(t *testing.T) {
		mini := miniredis.RunT(t)
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = "redis://" + mini.Addr() + "/0"

		app, err := New(ctx, Config{StorageType: config.StorageRedis, RedisConfig: &redisCfg})
		require.NoError(t, err)
		defer app.Close()
		assert.NoError(t, app.Storage.Ping(ctx))
	})

	t.Run("sql", func(t *testing.T) {
		dbCfg := sqlstore.Config{Driver: sqlstore.DriverSQLite, DSN: ":memory:"}

		app, err := New(ctx, Config{StorageType: config.StorageSQL, DatabaseConfig: &dbCfg})
		require.NoError(t, err)
		defer app.Close()
		assert.NoError(t, app.Storage.Ping(ctx))
	})

	t.Run("redis without config", func(t *testing.T) {
		_, err := New(ctx, Config{StorageType: config.StorageRedis})
		assert.Error(t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := New(ctx, Config{StorageType: "mongo"})
		assert.Error(t, err)
	})
}
