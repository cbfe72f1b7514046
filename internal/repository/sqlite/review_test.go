package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/filmorate/internal/apperror"
	"github.com/sakif/filmorate/internal/model"
	"github.com/sakif/filmorate/internal/repository"
)

func createTestReview(t *testing.T, db *DB, userID, filmID int64, content string) *model.Review {
	t.Helper()
	positive := true
	review := &model.Review{Content: content, IsPositive: &positive, UserID: &userID, FilmID: &filmID}
	require.NoError(t, db.CreateReview(context.Background(), review))
	return review
}

func TestReviewCRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	u := createTestUser(t, db, "critic")
	f := createTestFilm(t, db, "Vertigo")
	review := createTestReview(t, db, u.ID, f.ID, "dizzying")
	assert.NotZero(t, review.ID)
	assert.Equal(t, 0, review.Useful)

	negative := false
	other := int64(9999)
	update := &model.Review{ID: review.ID, Content: "too dizzying", IsPositive: &negative, UserID: &other, FilmID: &other}
	require.NoError(t, db.UpdateReview(ctx, update))

	got, err := db.GetReview(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, "too dizzying", got.Content)
	assert.False(t, *got.IsPositive)
	assert.Equal(t, u.ID, *got.UserID, "author is immutable")
	assert.Equal(t, f.ID, *got.FilmID, "film is immutable")

	require.NoError(t, db.DeleteReview(ctx, review.ID))
	_, err = db.GetReview(ctx, review.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.ErrorIs(t, db.DeleteReview(ctx, review.ID), apperror.ErrNotFound)
	assert.ErrorIs(t, db.UpdateReview(ctx, update), apperror.ErrNotFound)
}

func TestListReviews_OrderAndFilter(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	voter := createTestUser(t, db, "voter")
	f1 := createTestFilm(t, db, "F1")
	f2 := createTestFilm(t, db, "F2")

	r1 := createTestReview(t, db, author.ID, f1.ID, "first")
	r2 := createTestReview(t, db, author.ID, f1.ID, "second")
	r3 := createTestReview(t, db, author.ID, f2.ID, "third")

	_, err := db.CastVote(ctx, r2.ID, voter.ID, true)
	require.NoError(t, err)
	_, err = db.CastVote(ctx, r3.ID, voter.ID, false)
	require.NoError(t, err)

	all, err := db.ListReviews(ctx, repository.ReviewFilter{Limit: 10})
	require.NoError(t, err)
	ids := make([]int64, len(all))
	for i, r := range all {
		ids[i] = r.ID
	}
	assert.Equal(t, []int64{r2.ID, r1.ID, r3.ID}, ids)

	limited, err := db.ListReviews(ctx, repository.ReviewFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, r2.ID, limited[0].ID)

	forFilm, err := db.ListReviews(ctx, repository.ReviewFilter{FilmID: &f2.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, forFilm, 1)
	assert.Equal(t, r3.ID, forFilm[0].ID)
	assert.Equal(t, -1, forFilm[0].Useful)
}

// TestVoteStateMachine walks one voter through every transition and checks
// both the reported delta and the stored usefulness after each step.
func TestVoteStateMachine(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	voter := createTestUser(t, db, "voter")
	film := createTestFilm(t, db, "Psycho")
	review := createTestReview(t, db, author.ID, film.ID, "shower scene")

	type step struct {
		name    string
		retract bool
		useful  bool
		delta   int
		score   int
	}
	steps := []step{
		{"like from no vote", false, true, 1, 1},
		{"repeated like is no-op", false, true, 0, 1},
		{"dislike flips", false, false, -2, -1},
		{"retract like while disliked is no-op", true, true, 0, -1},
		{"retract dislike", true, false, 1, 0},
		{"retract with no vote is no-op", true, false, 0, 0},
		{"dislike from no vote", false, false, -1, -1},
		{"like flips", false, true, 2, 1},
		{"retract like", true, true, -1, 0},
	}

	for _, s := range steps {
		var (
			change model.VoteChange
			err    error
		)
		if s.retract {
			change, err = db.RetractVote(ctx, review.ID, voter.ID, s.useful)
		} else {
			change, err = db.CastVote(ctx, review.ID, voter.ID, s.useful)
		}
		require.NoError(t, err, s.name)
		assert.Equal(t, s.delta, change.Delta, s.name)
		assert.Equal(t, s.delta != 0, change.Changed(), s.name)

		got, err := db.GetReview(ctx, review.ID)
		require.NoError(t, err)
		assert.Equal(t, s.score, got.Useful, s.name)
	}
}

func TestVotes_IndependentVoters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	film := createTestFilm(t, db, "Rope")
	review := createTestReview(t, db, author.ID, film.ID, "one take")

	for _, login := range []string{"v1", "v2", "v3"} {
		v := createTestUser(t, db, login)
		_, err := db.CastVote(ctx, review.ID, v.ID, true)
		require.NoError(t, err)
	}
	v4 := createTestUser(t, db, "v4")
	_, err := db.CastVote(ctx, review.ID, v4.ID, false)
	require.NoError(t, err)

	got, err := db.GetReview(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Useful)
}

// =========================================================================
// DIRECTORS
// =========================================================================

func TestDirectorCRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	d := &model.Director{Name: "Kubrick"}
	require.NoError(t, db.CreateDirector(ctx, d))

	d.Name = "Stanley Kubrick"
	require.NoError(t, db.UpdateDirector(ctx, d))

	got, err := db.GetDirector(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Stanley Kubrick", got.Name)

	list, err := db.ListDirectors(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	film := &model.Film{Name: "Barry Lyndon", ReleaseDate: model.NewDate(1975, 12, 18), Duration: 185,
		Directors: []model.Director{{ID: d.ID}}}
	require.NoError(t, db.CreateFilm(ctx, film))

	require.NoError(t, db.DeleteDirector(ctx, d.ID))
	_, err = db.GetDirector(ctx, d.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	kept, err := db.GetFilm(ctx, film.ID)
	require.NoError(t, err, "deleting a director keeps its films")
	assert.Empty(t, kept.Directors)

	assert.ErrorIs(t, db.UpdateDirector(ctx, d), apperror.ErrNotFound)
	assert.ErrorIs(t, db.DeleteDirector(ctx, d.ID), apperror.ErrNotFound)
}

func TestReferenceGet_NotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.GetGenre(ctx, 42)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = db.GetMpa(ctx, 42)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	g, err := db.GetGenre(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Animation", g.Name)
	m, err := db.GetMpa(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "PG-13", m.Name)
}

// =========================================================================
// EVENTS
// =========================================================================

func TestEvents(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	u := createTestUser(t, db, "active")
	insert := func(ts int64, typ model.EventType, op model.Operation, entity int64) *model.Event {
		e := &model.Event{UserID: u.ID, EntityID: entity, EventType: typ, Operation: op, Timestamp: ts}
		require.NoError(t, db.InsertEvent(ctx, e))
		return e
	}

	first := insert(100, model.EventLike, model.OpAdd, 7)
	second := insert(100, model.EventFriend, model.OpAdd, 3)
	third := insert(200, model.EventLike, model.OpRemove, 7)

	events, err := db.EventsForUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, []int64{first.ID, second.ID, third.ID}, []int64{events[0].ID, events[1].ID, events[2].ID})
	assert.Equal(t, model.EventFriend, events[1].EventType)

	last, err := db.LastEvent(ctx, u.ID, model.EventLike, 7)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, model.OpRemove, last.Operation)

	none, err := db.LastEvent(ctx, u.ID, model.EventReview, 7)
	require.NoError(t, err)
	assert.Nil(t, none)
}
