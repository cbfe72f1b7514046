package service

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/filmorate/internal/apperror"
	"github.com/sakif/filmorate/internal/model"
)

func boolPtr(b bool) *bool  { return &b }
func idPtr(id int64) *int64 { return &id }

func (e *testEnv) review(t *testing.T, userID, filmID int64, content string) *model.Review {
	t.Helper()
	r, err := e.reviews.Create(context.Background(), &model.Review{
		Content:    content,
		IsPositive: boolPtr(true),
		UserID:     idPtr(userID),
		FilmID:     idPtr(filmID),
	})
	require.NoError(t, err)
	return r
}

func TestReviewCreate_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u := env.user(t, "critic")
	f := env.film(t, "Film", date(2000, time.January, 1))

	tests := []struct {
		name     string
		review   model.Review
		notFound bool
	}{
		{"missing content", model.Review{IsPositive: boolPtr(true), UserID: idPtr(u.ID), FilmID: idPtr(f.ID)}, false},
		{"blank content", model.Review{Content: " \n", IsPositive: boolPtr(true), UserID: idPtr(u.ID), FilmID: idPtr(f.ID)}, false},
		{"missing isPositive", model.Review{Content: "ok", UserID: idPtr(u.ID), FilmID: idPtr(f.ID)}, false},
		{"missing userId", model.Review{Content: "ok", IsPositive: boolPtr(false), FilmID: idPtr(f.ID)}, false},
		{"missing filmId", model.Review{Content: "ok", IsPositive: boolPtr(false), UserID: idPtr(u.ID)}, false},
		{"unknown user", model.Review{Content: "ok", IsPositive: boolPtr(false), UserID: idPtr(999), FilmID: idPtr(f.ID)}, true},
		{"unknown film", model.Review{Content: "ok", IsPositive: boolPtr(false), UserID: idPtr(u.ID), FilmID: idPtr(999)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.review
			_, err := env.reviews.Create(ctx, &r)
			require.Error(t, err)
			if tt.notFound {
				assert.True(t, apperror.IsNotFound(err), "got %v", err)
			} else {
				assert.True(t, apperror.IsValidation(err), "got %v", err)
			}
		})
	}
}

func TestReviewLifecycle_Feed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.user(t, "author")
	intruder := env.user(t, "intruder")
	f := env.film(t, "Film", date(2000, time.January, 1))

	r := env.review(t, author.ID, f.ID, "great")
	assert.Equal(t, 0, r.Useful)

	updated, err := env.reviews.Update(ctx, &model.Review{
		ID:         r.ID,
		Content:    "actually fine",
		IsPositive: boolPtr(false),
		UserID:     idPtr(intruder.ID),
		FilmID:     idPtr(f.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, "actually fine", updated.Content)
	assert.Equal(t, author.ID, *updated.UserID, "the author cannot be reassigned")

	require.NoError(t, env.reviews.Delete(ctx, r.ID))
	_, err = env.reviews.Get(ctx, r.ID)
	assert.True(t, apperror.IsNotFound(err))
	assert.True(t, apperror.IsNotFound(env.reviews.Delete(ctx, r.ID)))

	events, err := env.feed.Feed(ctx, author.ID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	for i, op := range []model.Operation{model.OpAdd, model.OpUpdate, model.OpRemove} {
		assert.Equal(t, model.EventReview, events[i].EventType)
		assert.Equal(t, op, events[i].Operation)
		assert.Equal(t, r.ID, events[i].EntityID)
	}

	intruderEvents, err := env.feed.Feed(ctx, intruder.ID)
	require.NoError(t, err)
	assert.Empty(t, intruderEvents)
}

func TestReviewList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.user(t, "author")
	voter := env.user(t, "voter")
	f1 := env.film(t, "F1", date(2000, time.January, 1))
	f2 := env.film(t, "F2", date(2000, time.January, 1))

	r1 := env.review(t, author.ID, f1.ID, "one")
	r2 := env.review(t, author.ID, f1.ID, "two")
	r3 := env.review(t, author.ID, f2.ID, "three")
	require.NoError(t, env.reviews.Vote(ctx, r2.ID, voter.ID, true))
	require.NoError(t, env.reviews.Vote(ctx, r1.ID, voter.ID, false))

	all, err := env.reviews.List(ctx, nil, DefaultReviewCount)
	require.NoError(t, err)
	ids := make([]int64, len(all))
	for i, r := range all {
		ids[i] = r.ID
	}
	assert.Equal(t, []int64{r2.ID, r3.ID, r1.ID}, ids)

	forF1, err := env.reviews.List(ctx, &f1.ID, 1)
	require.NoError(t, err)
	require.Len(t, forF1, 1)
	assert.Equal(t, r2.ID, forF1[0].ID)

	_, err = env.reviews.List(ctx, nil, 0)
	assert.True(t, apperror.IsValidation(err))

	missing := int64(999)
	_, err = env.reviews.List(ctx, &missing, 10)
	assert.True(t, apperror.IsNotFound(err))
}

func TestReviewVotes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.user(t, "author")
	voter := env.user(t, "voter")
	f := env.film(t, "F", date(2000, time.January, 1))
	r := env.review(t, author.ID, f.ID, "text")

	score := func() int {
		got, err := env.reviews.Get(ctx, r.ID)
		require.NoError(t, err)
		return got.Useful
	}

	require.NoError(t, env.reviews.Vote(ctx, r.ID, voter.ID, true))
	require.NoError(t, env.reviews.Vote(ctx, r.ID, voter.ID, true))
	assert.Equal(t, 1, score(), "casting useful twice counts once")

	require.NoError(t, env.reviews.Vote(ctx, r.ID, voter.ID, false))
	assert.Equal(t, -1, score(), "switching to not useful moves the score by -2")

	require.NoError(t, env.reviews.Unvote(ctx, r.ID, voter.ID, true))
	assert.Equal(t, -1, score(), "retracting the other direction is a no-op")

	require.NoError(t, env.reviews.Unvote(ctx, r.ID, voter.ID, false))
	assert.Equal(t, 0, score())

	require.NoError(t, env.reviews.Vote(ctx, r.ID, author.ID, true))
	assert.Equal(t, 1, score(), "authors may vote on their own review")

	assert.True(t, apperror.IsNotFound(env.reviews.Vote(ctx, 999, voter.ID, true)))
	assert.True(t, apperror.IsNotFound(env.reviews.Vote(ctx, r.ID, 999, true)))
	assert.True(t, apperror.IsNotFound(env.reviews.Unvote(ctx, r.ID, 999, true)))

	events, err := env.feed.Feed(ctx, voter.ID)
	require.NoError(t, err)
	assert.Empty(t, events, "votes do not appear in the feed")
}

func TestReviewVotes_VoterDeleted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.user(t, "author")
	fan := env.user(t, "fan")
	critic := env.user(t, "critic")
	f := env.film(t, "F", date(2000, time.January, 1))
	r := env.review(t, author.ID, f.ID, "text")

	require.NoError(t, env.reviews.Vote(ctx, r.ID, fan.ID, true))
	require.NoError(t, env.reviews.Vote(ctx, r.ID, critic.ID, false))
	require.NoError(t, env.reviews.Vote(ctx, r.ID, author.ID, true))

	require.NoError(t, env.users.Delete(ctx, fan.ID))
	got, err := env.reviews.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Useful)

	require.NoError(t, env.users.Delete(ctx, critic.ID))
	got, err = env.reviews.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Useful, "only the author's vote remains")
}

func TestReviewVotes_NoopLoggedAtDebug(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var buf bytes.Buffer
	reviews := NewReviewService(env.store, env.feed,
		slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	author := env.user(t, "author")
	voter := env.user(t, "voter")
	f := env.film(t, "F", date(2000, time.January, 1))
	r := env.review(t, author.ID, f.ID, "text")

	require.NoError(t, reviews.Vote(ctx, r.ID, voter.ID, true))
	require.NoError(t, reviews.Vote(ctx, r.ID, voter.ID, true))
	require.NoError(t, reviews.Unvote(ctx, r.ID, voter.ID, false))

	type line struct {
		Level string `json:"level"`
		Msg   string `json:"msg"`
		Delta int    `json:"delta"`
	}
	var got []line
	dec := json.NewDecoder(&buf)
	for dec.More() {
		var l line
		require.NoError(t, dec.Decode(&l))
		if l.Msg == "vote cast" || l.Msg == "vote retracted" {
			got = append(got, l)
		}
	}
	assert.Equal(t, []line{
		{Level: "INFO", Msg: "vote cast", Delta: 1},
		{Level: "DEBUG", Msg: "vote cast", Delta: 0},
		{Level: "DEBUG", Msg: "vote retracted", Delta: 0},
	}, got)
}
