package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/filmorate/internal/apperror"
	"github.com/sakif/filmorate/internal/model"
	"github.com/sakif/filmorate/internal/repository"
	"github.com/sakif/filmorate/internal/validation"
)

// DefaultReviewCount is used when a review listing gives no count.
const DefaultReviewCount = 10

type ReviewStore interface {
	repository.ReviewRepository
	repository.UserRepository
	repository.FilmRepository
}

// ReviewService manages reviews and their usefulness votes.
//
// Review changes appear in the author's feed. Votes do not: a vote only
// moves the usefulness score.
type ReviewService struct {
	store  ReviewStore
	feed   *FeedService
	logger *slog.Logger
}

func NewReviewService(store ReviewStore, feed *FeedService, logger *slog.Logger) *ReviewService {
	return &ReviewService{store: store, feed: feed, logger: logger}
}

func validateReview(review *model.Review) error {
	if err := validation.Struct(review); err != nil {
		return err
	}
	if strings.TrimSpace(review.Content) == "" {
		return apperror.ValidationFailed("content", "content must not be blank")
	}
	return nil
}

// Create stores a review by an existing user about an existing film. The
// usefulness score always starts at zero.
func (s *ReviewService) Create(ctx context.Context, review *model.Review) (*model.Review, error) {
	if err := validateReview(review); err != nil {
		s.logger.Warn("review rejected", errAttr(err))
		return nil, err
	}
	if _, err := s.store.GetUser(ctx, *review.UserID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetFilm(ctx, *review.FilmID); err != nil {
		return nil, err
	}

	review.ID = 0
	if err := s.store.CreateReview(ctx, review); err != nil {
		s.logger.Error("failed to create review", slog.Int64("film_id", *review.FilmID), errAttr(err))
		return nil, fmt.Errorf("creating review: %w", err)
	}
	s.logger.Info("review created",
		slog.Int64("review_id", review.ID),
		slog.Int64("user_id", *review.UserID),
		slog.Int64("film_id", *review.FilmID),
	)

	if err := s.feed.emit(ctx, *review.UserID, review.ID, model.EventReview, model.OpAdd); err != nil {
		return nil, err
	}
	return review, nil
}

// Update changes the content and sentiment of a review. The author, film and
// score stay as stored, and the event goes to the stored author's feed.
func (s *ReviewService) Update(ctx context.Context, review *model.Review) (*model.Review, error) {
	if err := validateReview(review); err != nil {
		s.logger.Warn("review update rejected", slog.Int64("review_id", review.ID), errAttr(err))
		return nil, err
	}
	existing, err := s.store.GetReview(ctx, review.ID)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateReview(ctx, review); err != nil {
		if apperror.IsNotFound(err) {
			return nil, err
		}
		s.logger.Error("failed to update review", slog.Int64("review_id", review.ID), errAttr(err))
		return nil, fmt.Errorf("updating review: %w", err)
	}
	s.logger.Info("review updated", slog.Int64("review_id", review.ID))

	if err := s.feed.emit(ctx, *existing.UserID, review.ID, model.EventReview, model.OpUpdate); err != nil {
		return nil, err
	}
	return s.store.GetReview(ctx, review.ID)
}

func (s *ReviewService) Delete(ctx context.Context, id int64) error {
	existing, err := s.store.GetReview(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteReview(ctx, id); err != nil {
		if apperror.IsNotFound(err) {
			return err
		}
		s.logger.Error("failed to delete review", slog.Int64("review_id", id), errAttr(err))
		return fmt.Errorf("deleting review: %w", err)
	}
	s.logger.Info("review deleted", slog.Int64("review_id", id))

	return s.feed.emit(ctx, *existing.UserID, id, model.EventReview, model.OpRemove)
}

func (s *ReviewService) Get(ctx context.Context, id int64) (*model.Review, error) {
	return s.store.GetReview(ctx, id)
}

// List returns up to count reviews, of one film when filmID is set, most
// useful first.
func (s *ReviewService) List(ctx context.Context, filmID *int64, count int) ([]model.Review, error) {
	if count <= 0 {
		return nil, apperror.ValidationFailed("count", "count must be greater than 0")
	}
	if filmID != nil {
		if _, err := s.store.GetFilm(ctx, *filmID); err != nil {
			return nil, err
		}
	}

	reviews, err := s.store.ListReviews(ctx, repository.ReviewFilter{FilmID: filmID, Limit: count})
	if err != nil {
		s.logger.Error("failed to list reviews", errAttr(err))
		return nil, fmt.Errorf("listing reviews: %w", err)
	}
	return reviews, nil
}

// =========================================================================
// VOTES
// =========================================================================

// Vote records voterID's opinion of the review: useful (like) or not
// useful (dislike). Repeating the same vote changes nothing; switching
// moves the score by two.
func (s *ReviewService) Vote(ctx context.Context, reviewID, voterID int64, useful bool) error {
	if err := s.requireReviewAndVoter(ctx, reviewID, voterID); err != nil {
		return err
	}
	change, err := s.store.CastVote(ctx, reviewID, voterID, useful)
	if err != nil {
		if apperror.IsNotFound(err) {
			return err
		}
		s.logger.Error("failed to cast vote",
			slog.Int64("review_id", reviewID), slog.Int64("user_id", voterID), errAttr(err))
		return fmt.Errorf("casting vote: %w", err)
	}
	s.logVote(ctx, "vote cast", reviewID, voterID, useful, change)
	return nil
}

// Unvote retracts voterID's vote of the given direction. A missing vote, or
// one in the other direction, is left alone.
func (s *ReviewService) Unvote(ctx context.Context, reviewID, voterID int64, useful bool) error {
	if err := s.requireReviewAndVoter(ctx, reviewID, voterID); err != nil {
		return err
	}
	change, err := s.store.RetractVote(ctx, reviewID, voterID, useful)
	if err != nil {
		if apperror.IsNotFound(err) {
			return err
		}
		s.logger.Error("failed to retract vote",
			slog.Int64("review_id", reviewID), slog.Int64("user_id", voterID), errAttr(err))
		return fmt.Errorf("retracting vote: %w", err)
	}
	s.logVote(ctx, "vote retracted", reviewID, voterID, useful, change)
	return nil
}

func (s *ReviewService) requireReviewAndVoter(ctx context.Context, reviewID, voterID int64) error {
	if _, err := s.store.GetReview(ctx, reviewID); err != nil {
		return err
	}
	if _, err := s.store.GetUser(ctx, voterID); err != nil {
		return err
	}
	return nil
}

func (s *ReviewService) logVote(ctx context.Context, msg string, reviewID, voterID int64, useful bool, change model.VoteChange) {
	level := slog.LevelInfo
	if !change.Changed() {
		level = slog.LevelDebug
	}
	s.logger.Log(ctx, level, msg,
		slog.Int64("review_id", reviewID),
		slog.Int64("user_id", voterID),
		slog.Bool("useful", useful),
		slog.Int("delta", change.Delta),
	)
}
