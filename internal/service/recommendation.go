package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/filmorate/internal/metrics"
	"github.com/sakif/filmorate/internal/model"
	"github.com/sakif/filmorate/internal/rank"
	"github.com/sakif/filmorate/internal/repository"
)

type RecommendationStore interface {
	repository.UserRepository
	repository.LikeRepository
	repository.FilmRepository
}

// RecommendationService suggests films from the taste of the most similar
// user (see rank.Neighbor).
type RecommendationService struct {
	store  RecommendationStore
	logger *slog.Logger
}

func NewRecommendationService(store RecommendationStore, logger *slog.Logger) *RecommendationService {
	return &RecommendationService{store: store, logger: logger}
}

// Recommend returns films for userID, ascending by id. A user with no
// neighbor gets an empty list.
func (s *RecommendationService) Recommend(ctx context.Context, userID int64) ([]model.Film, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	likes, err := s.store.LikesByUser(ctx)
	if err != nil {
		s.logger.Error("failed to load likes", slog.Int64("user_id", userID), errAttr(err))
		return nil, fmt.Errorf("loading likes: %w", err)
	}

	films, err := s.store.GetFilmsByIDs(ctx, rank.Recommend(userID, likes))
	if err != nil {
		s.logger.Error("failed to load recommended films", slog.Int64("user_id", userID), errAttr(err))
		return nil, fmt.Errorf("loading recommended films: %w", err)
	}
	metrics.RecordRecommendation(len(films))

	s.logger.Debug("recommendations computed",
		slog.Int64("user_id", userID),
		slog.Int("count", len(films)),
	)
	return films, nil
}
