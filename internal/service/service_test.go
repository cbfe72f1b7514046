package service

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sakif/filmorate/internal/model"
	"github.com/sakif/filmorate/internal/repository/sqlite"
)

// =========================================================================
// TEST HARNESS
// =========================================================================
//
// Services run against a real in-memory SQLite store, so the SQL semantics
// (cascades, ordering, vote transactions) are exercised together with the
// business rules.

// testClock starts at a fixed instant and advances one second per call, so
// consecutive events get strictly increasing timestamps.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

type testEnv struct {
	store     *sqlite.DB
	clock     *testClock
	feed      *FeedService
	users     *UserService
	films     *FilmService
	directors *DirectorService
	catalog   *CatalogService
	reviews   *ReviewService
	recs      *RecommendationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	clock := &testClock{now: time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)}

	feed := NewFeedService(store, store, logger).WithClock(clock.Now)
	users := NewUserService(store, feed, logger)
	users.now = clock.Now

	return &testEnv{
		store:     store,
		clock:     clock,
		feed:      feed,
		users:     users,
		films:     NewFilmService(store, feed, logger),
		directors: NewDirectorService(store, logger),
		catalog:   NewCatalogService(store),
		reviews:   NewReviewService(store, feed, logger),
		recs:      NewRecommendationService(store, logger),
	}
}

func (e *testEnv) user(t *testing.T, login string) *model.User {
	t.Helper()
	u, err := e.users.Create(context.Background(), &model.User{
		Email:    login + "@example.com",
		Login:    login,
		Birthday: model.NewDate(1990, time.January, 1),
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) film(t *testing.T, name string, release model.Date, genres ...int64) *model.Film {
	t.Helper()
	film := &model.Film{
		Name:        name,
		Description: "a film called " + name,
		ReleaseDate: release,
		Duration:    120,
		Mpa:         &model.Mpa{ID: 1},
	}
	for _, g := range genres {
		film.Genres = append(film.Genres, model.Genre{ID: g})
	}
	f, err := e.films.Create(context.Background(), film)
	require.NoError(t, err)
	return f
}

func (e *testEnv) like(t *testing.T, filmID int64, userIDs ...int64) {
	t.Helper()
	for _, u := range userIDs {
		require.NoError(t, e.films.AddLike(context.Background(), filmID, u))
	}
}

func filmIDs(films []model.Film) []int64 {
	ids := make([]int64, len(films))
	for i, f := range films {
		ids[i] = f.ID
	}
	return ids
}

func userIDs(users []model.User) []int64 {
	ids := make([]int64, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids
}

func date(year int, month time.Month, day int) model.Date {
	return model.NewDate(year, month, day)
}
