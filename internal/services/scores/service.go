// Package scores implements owner-scoped scoreboard entries on top of a
// storage.ScoreStore.
package scores

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mcoot/scoreboard/internal/dependencies/clock"
	"github.com/mcoot/scoreboard/internal/dependencies/idgen"
	"github.com/mcoot/scoreboard/internal/model"
	"github.com/mcoot/scoreboard/internal/storage"
)

// Service validates score input and scopes every call to its owner
type Service struct {
	store  storage.ScoreStore
	ids    idgen.Generator
	clock  clock.Clock
	logger *slog.Logger
}

// New creates a new scores Service
func New(store storage.ScoreStore, ids idgen.Generator, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		ids:    ids,
		clock:  clk,
		logger: logger,
	}
}

// List returns the owner's scores, highest first
func (s *Service) List(ctx context.Context, owner model.UserID) ([]*model.Score, error) {
	return s.store.ListScores(ctx, owner)
}

// Create records a new score for owner
func (s *Service) Create(ctx context.Context, owner model.UserID, playerName string, rawScore any) (*model.Score, error) {
	value, err := validate(playerName, rawScore)
	if err != nil {
		return nil, err
	}

	score := &model.Score{
		ID:         model.ScoreID(s.ids.NewID()),
		OwnerID:    owner,
		PlayerName: playerName,
		Score:      value,
		CreatedAt:  s.clock.Now(),
	}

	if err := s.store.CreateScore(ctx, score); err != nil {
		return nil, err
	}

	s.logger.Debug("score created", "score_id", score.ID, "owner_id", owner)

	return score, nil
}

// Update replaces the name and value of one of owner's scores
func (s *Service) Update(ctx context.Context, id model.ScoreID, owner model.UserID, playerName string, rawScore any) (*model.Score, error) {
	value, err := validate(playerName, rawScore)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, model.ErrScoreNotFound
	}

	updated, err := s.store.UpdateScore(ctx, id, owner, playerName, value, s.clock.Now())
	if err != nil {
		return nil, err
	}

	s.logger.Debug("score updated", "score_id", id, "owner_id", owner)

	return updated, nil
}

// Delete removes one of owner's scores
func (s *Service) Delete(ctx context.Context, id model.ScoreID, owner model.UserID) error {
	if id == "" {
		return model.ErrScoreNotFound
	}

	if err := s.store.DeleteScore(ctx, id, owner); err != nil {
		return err
	}

	s.logger.Debug("score deleted", "score_id", id, "owner_id", owner)

	return nil
}

func validate(playerName string, rawScore any) (int64, error) {
	if strings.TrimSpace(playerName) == "" || rawScore == nil {
		return 0, model.NewValidationError("Player name and score are required")
	}
	return Coerce(rawScore)
}
