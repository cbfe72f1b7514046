package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/filmorate/internal/apperror"
	"github.com/sakif/filmorate/internal/model"
	"github.com/sakif/filmorate/internal/rank"
	"github.com/sakif/filmorate/internal/repository"
	"github.com/sakif/filmorate/internal/validation"
)

// EarliestReleaseDate is the first public film screening. No film may be
// released before it.
var EarliestReleaseDate = model.NewDate(1895, time.December, 28)

// DefaultPopularCount is used when a popular-films query gives no count.
const DefaultPopularCount = 10

// FilmStore is what FilmService needs from the store.
type FilmStore interface {
	repository.FilmRepository
	repository.LikeRepository
	repository.UserRepository
	repository.GenreRepository
	repository.MpaRepository
	repository.DirectorRepository
}

// FilmService manages the catalog, likes, and the aggregate film queries
// (popular, by director, search, common films).
type FilmService struct {
	store  FilmStore
	feed   *FeedService
	logger *slog.Logger
}

func NewFilmService(store FilmStore, feed *FeedService, logger *slog.Logger) *FilmService {
	return &FilmService{
		store:  store,
		feed:   feed,
		logger: logger,
	}
}

// validate checks a film's own fields and that every reference points at an
// existing row.
func (s *FilmService) validate(ctx context.Context, film *model.Film) error {
	if err := validation.Struct(film); err != nil {
		return err
	}
	if strings.TrimSpace(film.Name) == "" {
		return apperror.ValidationFailed("name", "name must not be blank")
	}
	if film.ReleaseDate.IsZero() {
		return apperror.ValidationFailed("releaseDate", "releaseDate is required")
	}
	if film.ReleaseDate.Before(EarliestReleaseDate.Time) {
		return apperror.ValidationFailed("releaseDate",
			"releaseDate must not be before "+EarliestReleaseDate.String())
	}

	if film.Mpa != nil && film.Mpa.ID != 0 {
		if _, err := s.store.GetMpa(ctx, film.Mpa.ID); err != nil {
			return err
		}
	}

	genreIDs := make([]int64, len(film.Genres))
	for i, g := range film.Genres {
		genreIDs[i] = g.ID
	}
	if err := requireAll(ctx, "genre", genreIDs, s.store.ExistingGenreIDs); err != nil {
		return err
	}

	directorIDs := make([]int64, len(film.Directors))
	for i, d := range film.Directors {
		directorIDs[i] = d.ID
	}
	return requireAll(ctx, "director", directorIDs, s.store.ExistingDirectorIDs)
}

// requireAll returns NotFound for the first id the lookup reports missing.
func requireAll(ctx context.Context, resource string, ids []int64,
	exists func(context.Context, []int64) (map[int64]bool, error),
) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := exists(ctx, ids)
	if err != nil {
		return fmt.Errorf("checking %s ids: %w", resource, err)
	}
	for _, id := range ids {
		if !found[id] {
			return apperror.NotFound(resource, id)
		}
	}
	return nil
}

func (s *FilmService) Create(ctx context.Context, film *model.Film) (*model.Film, error) {
	if err := s.validate(ctx, film); err != nil {
		s.logger.Warn("film rejected", slog.String("name", film.Name), errAttr(err))
		return nil, err
	}

	film.ID = 0
	if err := s.store.CreateFilm(ctx, film); err != nil {
		s.logger.Error("failed to create film", slog.String("name", film.Name), errAttr(err))
		return nil, fmt.Errorf("creating film: %w", err)
	}

	s.logger.Info("film created", slog.Int64("film_id", film.ID), slog.String("name", film.Name))
	return s.store.GetFilm(ctx, film.ID)
}

// Update replaces every writable field of the film, including its genre and
// director lists. Likes are untouched.
func (s *FilmService) Update(ctx context.Context, film *model.Film) (*model.Film, error) {
	if err := s.validate(ctx, film); err != nil {
		s.logger.Warn("film update rejected", slog.Int64("film_id", film.ID), errAttr(err))
		return nil, err
	}

	if err := s.store.UpdateFilm(ctx, film); err != nil {
		if apperror.IsNotFound(err) {
			return nil, err
		}
		s.logger.Error("failed to update film", slog.Int64("film_id", film.ID), errAttr(err))
		return nil, fmt.Errorf("updating film: %w", err)
	}

	s.logger.Info("film updated", slog.Int64("film_id", film.ID))
	return s.store.GetFilm(ctx, film.ID)
}

func (s *FilmService) Get(ctx context.Context, id int64) (*model.Film, error) {
	return s.store.GetFilm(ctx, id)
}

func (s *FilmService) List(ctx context.Context) ([]model.Film, error) {
	films, err := s.store.ListFilms(ctx)
	if err != nil {
		s.logger.Error("failed to list films", errAttr(err))
		return nil, fmt.Errorf("listing films: %w", err)
	}
	return films, nil
}

func (s *FilmService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteFilm(ctx, id); err != nil {
		if apperror.IsNotFound(err) {
			return err
		}
		s.logger.Error("failed to delete film", slog.Int64("film_id", id), errAttr(err))
		return fmt.Errorf("deleting film: %w", err)
	}
	s.logger.Info("film deleted", slog.Int64("film_id", id))
	return nil
}

// =========================================================================
// LIKES
// =========================================================================

func (s *FilmService) requireFilmAndUser(ctx context.Context, filmID, userID int64) error {
	if _, err := s.store.GetFilm(ctx, filmID); err != nil {
		return err
	}
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return err
	}
	return nil
}

// AddLike records that userID likes filmID. Liking the same film twice is a
// validation error.
func (s *FilmService) AddLike(ctx context.Context, filmID, userID int64) error {
	if err := s.requireFilmAndUser(ctx, filmID, userID); err != nil {
		return err
	}

	liked, err := s.store.HasLike(ctx, filmID, userID)
	if err != nil {
		s.logger.Error("failed to check like",
			slog.Int64("film_id", filmID), slog.Int64("user_id", userID), errAttr(err))
		return fmt.Errorf("checking like: %w", err)
	}
	if liked {
		return apperror.ValidationFailed("userId", fmt.Sprintf("user %d already likes film %d", userID, filmID))
	}

	if err := s.store.AddLike(ctx, filmID, userID); err != nil {
		s.logger.Error("failed to add like",
			slog.Int64("film_id", filmID), slog.Int64("user_id", userID), errAttr(err))
		return fmt.Errorf("adding like: %w", err)
	}
	s.logger.Info("like added", slog.Int64("film_id", filmID), slog.Int64("user_id", userID))

	return s.feed.emit(ctx, userID, filmID, model.EventLike, model.OpAdd)
}

// RemoveLike withdraws userID's like. Removing a like that is not there
// succeeds without recording anything.
func (s *FilmService) RemoveLike(ctx context.Context, filmID, userID int64) error {
	if err := s.requireFilmAndUser(ctx, filmID, userID); err != nil {
		return err
	}

	removed, err := s.store.RemoveLike(ctx, filmID, userID)
	if err != nil {
		s.logger.Error("failed to remove like",
			slog.Int64("film_id", filmID), slog.Int64("user_id", userID), errAttr(err))
		return fmt.Errorf("removing like: %w", err)
	}
	if !removed {
		return nil
	}
	s.logger.Info("like removed", slog.Int64("film_id", filmID), slog.Int64("user_id", userID))

	return s.feed.emit(ctx, userID, filmID, model.EventLike, model.OpRemove)
}

// =========================================================================
// AGGREGATE QUERIES
// =========================================================================

// Popular returns the count most liked films, optionally restricted to one
// genre and/or one release year.
func (s *FilmService) Popular(ctx context.Context, count int, genreID *int64, year *int) ([]model.Film, error) {
	if count <= 0 {
		return nil, apperror.ValidationFailed("count", "count must be greater than 0")
	}
	if genreID != nil {
		if _, err := s.store.GetGenre(ctx, *genreID); err != nil {
			return nil, err
		}
	}

	films, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return rank.Popular(films, count, rank.PopularFilter{GenreID: genreID, Year: year}), nil
}

// ByDirector lists the director's films sorted by "year" or "likes".
// Other sortBy values return them by id.
func (s *FilmService) ByDirector(ctx context.Context, directorID int64, sortBy string) ([]model.Film, error) {
	if _, err := s.store.GetDirector(ctx, directorID); err != nil {
		return nil, err
	}

	films, err := s.store.FilmsByDirector(ctx, directorID)
	if err != nil {
		s.logger.Error("failed to list director films", slog.Int64("director_id", directorID), errAttr(err))
		return nil, fmt.Errorf("listing director films: %w", err)
	}
	rank.SortDirectorFilms(films, strings.ToLower(strings.TrimSpace(sortBy)))
	return films, nil
}

// Search matches query against titles and/or director names. by is a comma
// separated list of "title" and "director"; blank means both.
func (s *FilmService) Search(ctx context.Context, query, by string) ([]model.Film, error) {
	fields, err := rank.ParseFields(by)
	if err != nil {
		if errors.Is(err, rank.ErrUnknownField) {
			return nil, apperror.ValidationFailed("by", "by must be a comma separated list of title, director")
		}
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return []model.Film{}, nil
	}

	films, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return rank.Search(films, query, fields), nil
}

// CommonFilms returns the films both users like, most liked first.
func (s *FilmService) CommonFilms(ctx context.Context, userID, friendID int64) ([]model.Film, error) {
	for _, id := range []int64{userID, friendID} {
		if _, err := s.store.GetUser(ctx, id); err != nil {
			return nil, err
		}
	}

	mine, err := s.store.LikedFilmIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing liked films: %w", err)
	}
	theirs, err := s.store.LikedFilmIDs(ctx, friendID)
	if err != nil {
		return nil, fmt.Errorf("listing liked films: %w", err)
	}

	films, err := s.store.GetFilmsByIDs(ctx, rank.Intersect(mine, theirs))
	if err != nil {
		return nil, fmt.Errorf("loading common films: %w", err)
	}
	rank.ByLikes(films)
	return films, nil
}
