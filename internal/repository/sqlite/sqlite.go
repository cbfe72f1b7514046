// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY modernc.org/sqlite?
// It is a pure Go translation of SQLite, so the binary builds without a C
// toolchain and tests can run against ":memory:" databases anywhere.
//
// ONE CONNECTION:
// The pool is capped at a single open connection. SQLite allows one writer
// at a time anyway, and ":memory:" databases exist per connection: a second
// pooled connection would see an empty database. The consequence for code in
// this package is a hard rule: always finish (Close) a *sql.Rows before
// issuing the next query, and inside a transaction use only the *sql.Tx.
//
// FILE LAYOUT:
//   - sqlite.go      connection, pragmas, migrations, seed data
//   - user.go        users + friendships
//   - film.go        films + genre/director links
//   - like.go        film likes
//   - reference.go   genres, MPA ratings, directors
//   - review.go      reviews + usefulness votes
//   - event.go       feed events
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/sakif/filmorate/internal/repository"
)

// compile-time check that *DB provides every capability the services need
var _ repository.Store = (*DB)(nil)

// DB wraps a sql.DB connection pool and provides repository methods.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/filmorate.db"  → file-based database (persistent)
//   - ":memory:"           → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in progress (file databases only;
	// ":memory:" silently keeps its own journal mode).
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. The cascades in the schema
	// (user deletion removing likes, reviews, events...) depend on them.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	if err := db.seed(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: seeding reference data: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable. Used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// migrations run in order on every start. Each statement is idempotent
// (IF NOT EXISTS), so re-running them against an existing file is safe.
var migrations = []struct {
	name string
	sql  string
}{
	{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			email    TEXT NOT NULL,
			login    TEXT NOT NULL,
			name     TEXT NOT NULL DEFAULT '',
			birthday TEXT
		);`},
	{"friendships", `
		CREATE TABLE IF NOT EXISTS friendships (
			user_id   INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			friend_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			PRIMARY KEY (user_id, friend_id)
		);`},
	{"mpa_ratings", `
		CREATE TABLE IF NOT EXISTS mpa_ratings (
			id   INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);`},
	{"genres", `
		CREATE TABLE IF NOT EXISTS genres (
			id   INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);`},
	{"directors", `
		CREATE TABLE IF NOT EXISTS directors (
			id   INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL
		);`},
	{"films", `
		CREATE TABLE IF NOT EXISTS films (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			name         TEXT NOT NULL,
			description  TEXT NOT NULL DEFAULT '',
			release_date TEXT NOT NULL,
			duration     INTEGER NOT NULL,
			mpa_id       INTEGER REFERENCES mpa_ratings(id)
		);`},
	{"film_genres", `
		CREATE TABLE IF NOT EXISTS film_genres (
			film_id  INTEGER NOT NULL REFERENCES films(id) ON DELETE CASCADE,
			genre_id INTEGER NOT NULL REFERENCES genres(id) ON DELETE CASCADE,
			PRIMARY KEY (film_id, genre_id)
		);`},
	{"film_directors", `
		CREATE TABLE IF NOT EXISTS film_directors (
			film_id     INTEGER NOT NULL REFERENCES films(id) ON DELETE CASCADE,
			director_id INTEGER NOT NULL REFERENCES directors(id) ON DELETE CASCADE,
			position    INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (film_id, director_id)
		);
		CREATE INDEX IF NOT EXISTS idx_film_directors_director ON film_directors(director_id);`},
	{"film_likes", `
		CREATE TABLE IF NOT EXISTS film_likes (
			film_id INTEGER NOT NULL REFERENCES films(id) ON DELETE CASCADE,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			PRIMARY KEY (film_id, user_id)
		);
		CREATE INDEX IF NOT EXISTS idx_film_likes_user ON film_likes(user_id);`},
	{"reviews", `
		CREATE TABLE IF NOT EXISTS reviews (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			content     TEXT NOT NULL,
			is_positive INTEGER NOT NULL,
			user_id     INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			film_id     INTEGER NOT NULL REFERENCES films(id) ON DELETE CASCADE,
			useful      INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_reviews_film ON reviews(film_id);`},
	{"review_votes", `
		CREATE TABLE IF NOT EXISTS review_votes (
			review_id INTEGER NOT NULL REFERENCES reviews(id) ON DELETE CASCADE,
			user_id   INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			is_useful INTEGER NOT NULL,
			PRIMARY KEY (review_id, user_id)
		);`},
	{"feed_events", `
		CREATE TABLE IF NOT EXISTS feed_events (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			event_type TEXT NOT NULL,
			operation  TEXT NOT NULL,
			entity_id  INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_feed_events_user ON feed_events(user_id, timestamp);`},
}

func (db *DB) migrate() error {
	for _, m := range migrations {
		if _, err := db.conn.Exec(m.sql); err != nil {
			return fmt.Errorf("creating %s: %w", m.name, err)
		}
	}
	return nil
}

// seed inserts the fixed reference rows. INSERT OR IGNORE keeps it idempotent.
func (db *DB) seed() error {
	mpa := []string{"G", "PG", "PG-13", "R", "NC-17"}
	for i, name := range mpa {
		if _, err := db.conn.Exec(
			`INSERT OR IGNORE INTO mpa_ratings (id, name) VALUES (?, ?)`, i+1, name,
		); err != nil {
			return fmt.Errorf("seeding mpa %s: %w", name, err)
		}
	}

	genres := []string{"Comedy", "Drama", "Animation", "Thriller", "Documentary", "Action"}
	for i, name := range genres {
		if _, err := db.conn.Exec(
			`INSERT OR IGNORE INTO genres (id, name) VALUES (?, ?)`, i+1, name,
		); err != nil {
			return fmt.Errorf("seeding genre %s: %w", name, err)
		}
	}
	return nil
}

// maxInParams caps the ids bound into one IN list. SQLite rejects
// statements with more than SQLITE_MAX_VARIABLE_NUMBER parameters, which
// older builds set to 999. Tests lower it to force several chunks.
var maxInParams = 500

// uniqueSorted returns a sorted copy of ids without duplicates.
func uniqueSorted(ids []int64) []int64 {
	return slices.Compact(slices.Sorted(slices.Values(ids)))
}

// inClause builds "(?, ?, ?)" and the matching argument slice for ids.
// ids must be non-empty and at most maxInParams long.
func inClause(ids []int64) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return "(" + strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ") + ")", args
}

// queryIDs runs a query returning a single integer column.
func (db *DB) queryIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// existingIDs returns the subset of ids present in table.
// table is always a constant from this package, never user input.
func (db *DB) existingIDs(ctx context.Context, table string, ids []int64) (map[int64]bool, error) {
	found := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	for chunk := range slices.Chunk(ids, maxInParams) {
		clause, args := inClause(chunk)
		existing, err := db.queryIDs(ctx, fmt.Sprintf(`SELECT id FROM %s WHERE id IN %s`, table, clause), args...)
		if err != nil {
			return nil, err
		}
		for _, id := range existing {
			found[id] = true
		}
	}
	return found, nil
}
