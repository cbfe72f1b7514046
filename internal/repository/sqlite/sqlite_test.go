package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/filmorate/internal/model"
)

// newTestDB opens a fresh in-memory database with the schema and seed rows.
// Each test gets its own database; t.Cleanup closes it.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test db")
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, login string) *model.User {
	t.Helper()
	user := &model.User{
		Email:    login + "@example.com",
		Login:    login,
		Name:     login,
		Birthday: model.NewDate(1990, time.May, 17),
	}
	require.NoError(t, db.CreateUser(context.Background(), user))
	return user
}

func createTestFilm(t *testing.T, db *DB, name string, genres ...int64) *model.Film {
	t.Helper()
	film := &model.Film{
		Name:        name,
		Description: "about " + name,
		ReleaseDate: model.NewDate(2001, time.March, 3),
		Duration:    100,
		Mpa:         &model.Mpa{ID: 1},
	}
	for _, g := range genres {
		film.Genres = append(film.Genres, model.Genre{ID: g})
	}
	require.NoError(t, db.CreateFilm(context.Background(), film))
	return film
}

func TestNew_SeedsReferenceData(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mpa, err := db.ListMpa(ctx)
	require.NoError(t, err)
	names := make([]string, len(mpa))
	for i, m := range mpa {
		names[i] = m.Name
	}
	assert.Equal(t, []string{"G", "PG", "PG-13", "R", "NC-17"}, names)

	genres, err := db.ListGenres(ctx)
	require.NoError(t, err)
	assert.Len(t, genres, 6)
	assert.Equal(t, "Comedy", genres[0].Name)
}

func TestNew_ReopenFileIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filmorate.db")

	db, err := New(path)
	require.NoError(t, err)
	createTestUser(t, db, "keeper")
	require.NoError(t, db.Close())

	db, err = New(path)
	require.NoError(t, err)
	defer db.Close()

	users, err := db.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)

	genres, err := db.ListGenres(context.Background())
	require.NoError(t, err)
	assert.Len(t, genres, 6, "seeding twice must not duplicate rows")
}

func TestPing(t *testing.T) {
	db := newTestDB(t)
	assert.NoError(t, db.Ping(context.Background()))
}

func TestInClause(t *testing.T) {
	clause, args := inClause([]int64{4, 5, 6})
	assert.Equal(t, "(?, ?, ?)", clause)
	assert.Equal(t, []any{int64(4), int64(5), int64(6)}, args)
}

func TestExistingIDs(t *testing.T) {
	db := newTestDB(t)

	found, err := db.ExistingGenreIDs(context.Background(), []int64{1, 3, 99})
	require.NoError(t, err)
	assert.Equal(t, map[int64]bool{1: true, 3: true}, found)

	found, err = db.ExistingGenreIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestUniqueSorted(t *testing.T) {
	assert.Equal(t, []int64{1, 2, 5}, uniqueSorted([]int64{5, 1, 2, 5, 1}))
	assert.Empty(t, uniqueSorted(nil))
}

func TestLoads_SpanSeveralChunks(t *testing.T) {
	old := maxInParams
	maxInParams = 2
	t.Cleanup(func() { maxInParams = old })

	db := newTestDB(t)
	ctx := context.Background()

	users := make([]*model.User, 5)
	for i := range users {
		users[i] = createTestUser(t, db, fmt.Sprintf("user%d", i))
	}
	films := make([]*model.Film, 5)
	for i := range films {
		films[i] = createTestFilm(t, db, fmt.Sprintf("film%d", i), int64(i%6+1))
		require.NoError(t, db.AddLike(ctx, films[i].ID, users[i].ID))
		require.NoError(t, db.AddFriend(ctx, users[i].ID, users[(i+1)%5].ID))
	}

	all, err := db.ListFilms(ctx)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i, f := range all {
		assert.Equal(t, films[i].ID, f.ID)
		require.Len(t, f.Genres, 1, f.Name)
		assert.Equal(t, int64(i%6+1), f.Genres[0].ID)
		assert.Equal(t, []int64{users[i].ID}, f.Likes)
	}

	some, err := db.GetFilmsByIDs(ctx, []int64{films[4].ID, films[0].ID, 999, films[2].ID, films[0].ID})
	require.NoError(t, err)
	require.Len(t, some, 3, "duplicates and missing ids are dropped")
	assert.Equal(t, []int64{films[0].ID, films[2].ID, films[4].ID},
		[]int64{some[0].ID, some[1].ID, some[2].ID})
	assert.Equal(t, []int64{users[4].ID}, some[2].Likes)

	loaded, err := db.GetUsersByIDs(ctx, []int64{users[3].ID, users[1].ID, users[0].ID, users[4].ID})
	require.NoError(t, err)
	require.Len(t, loaded, 4)
	for _, u := range loaded {
		require.Len(t, u.Friends, 1, u.Login)
	}
	assert.Equal(t, []int64{users[1].ID}, loaded[0].Friends)

	found, err := db.ExistingGenreIDs(ctx, []int64{1, 2, 3, 4, 5, 99})
	require.NoError(t, err)
	assert.Len(t, found, 5)
}

func TestGetFilmsByIDs_ManyIDs(t *testing.T) {
	db := newTestDB(t)
	film := createTestFilm(t, db, "Heat")

	// More ids than SQLite binds into one statement.
	ids := make([]int64, 0, 40000)
	for id := int64(1); id <= 40000; id++ {
		ids = append(ids, id)
	}
	got, err := db.GetFilmsByIDs(context.Background(), ids)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, film.ID, got[0].ID)
}
