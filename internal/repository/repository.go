// Package repository declares the persistence capabilities the services
// depend on, one interface per entity.
//
// There is exactly one production implementation (package sqlite). Tests use
// the same implementation against an in-memory database, so no fake store
// has to be kept in sync with the SQL semantics.
//
// CONVENTIONS:
//   - Get* methods return apperror.ErrNotFound when the row does not exist.
//   - Methods that remove an edge (RemoveFriend, RemoveLike) report whether
//     an edge actually existed instead of failing, so callers can decide
//     whether anything changed.
//   - Every other failure is a wrapped driver error.
package repository

import (
	"context"

	"github.com/sakif/filmorate/internal/model"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	UpdateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id int64) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUsersByIDs(ctx context.Context, ids []int64) ([]model.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// FriendRepository stores directed friendship edges (user → friend).
type FriendRepository interface {
	AddFriend(ctx context.Context, userID, friendID int64) error
	RemoveFriend(ctx context.Context, userID, friendID int64) (bool, error)
	FriendIDs(ctx context.Context, userID int64) ([]int64, error)
	AreFriends(ctx context.Context, userID, friendID int64) (bool, error)
}

type FilmRepository interface {
	CreateFilm(ctx context.Context, film *model.Film) error
	UpdateFilm(ctx context.Context, film *model.Film) error
	GetFilm(ctx context.Context, id int64) (*model.Film, error)
	ListFilms(ctx context.Context) ([]model.Film, error)
	GetFilmsByIDs(ctx context.Context, ids []int64) ([]model.Film, error)
	FilmsByDirector(ctx context.Context, directorID int64) ([]model.Film, error)
	DeleteFilm(ctx context.Context, id int64) error
}

type LikeRepository interface {
	AddLike(ctx context.Context, filmID, userID int64) error
	RemoveLike(ctx context.Context, filmID, userID int64) (bool, error)
	HasLike(ctx context.Context, filmID, userID int64) (bool, error)
	LikedFilmIDs(ctx context.Context, userID int64) ([]int64, error)
	// LikesByUser returns a snapshot of every like, keyed by user id.
	LikesByUser(ctx context.Context) (map[int64][]int64, error)
}

type GenreRepository interface {
	ListGenres(ctx context.Context) ([]model.Genre, error)
	GetGenre(ctx context.Context, id int64) (*model.Genre, error)
	ExistingGenreIDs(ctx context.Context, ids []int64) (map[int64]bool, error)
}

type MpaRepository interface {
	ListMpa(ctx context.Context) ([]model.Mpa, error)
	GetMpa(ctx context.Context, id int64) (*model.Mpa, error)
}

type DirectorRepository interface {
	CreateDirector(ctx context.Context, director *model.Director) error
	UpdateDirector(ctx context.Context, director *model.Director) error
	GetDirector(ctx context.Context, id int64) (*model.Director, error)
	ListDirectors(ctx context.Context) ([]model.Director, error)
	DeleteDirector(ctx context.Context, id int64) error
	ExistingDirectorIDs(ctx context.Context, ids []int64) (map[int64]bool, error)
}

// ReviewFilter narrows ListReviews. A nil FilmID lists reviews of all films.
type ReviewFilter struct {
	FilmID *int64
	Limit  int
}

type ReviewRepository interface {
	CreateReview(ctx context.Context, review *model.Review) error
	UpdateReview(ctx context.Context, review *model.Review) error
	GetReview(ctx context.Context, id int64) (*model.Review, error)
	ListReviews(ctx context.Context, filter ReviewFilter) ([]model.Review, error)
	DeleteReview(ctx context.Context, id int64) error
	// CastVote records voter's opinion of a review and adjusts its usefulness
	// in the same transaction.
	CastVote(ctx context.Context, reviewID, voterID int64, useful bool) (model.VoteChange, error)
	// RetractVote removes voter's vote only if it has the given direction.
	RetractVote(ctx context.Context, reviewID, voterID int64, useful bool) (model.VoteChange, error)
}

type EventRepository interface {
	InsertEvent(ctx context.Context, event *model.Event) error
	EventsForUser(ctx context.Context, userID int64) ([]model.Event, error)
	// LastEvent returns the most recent event of the given type about entityID
	// by userID, or nil when there is none.
	LastEvent(ctx context.Context, userID int64, eventType model.EventType, entityID int64) (*model.Event, error)
}

// Store bundles every capability. *sqlite.DB satisfies it.
type Store interface {
	UserRepository
	FriendRepository
	FilmRepository
	LikeRepository
	GenreRepository
	MpaRepository
	DirectorRepository
	ReviewRepository
	EventRepository
}
