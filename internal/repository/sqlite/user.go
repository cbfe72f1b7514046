package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/sakif/filmorate/internal/apperror"
	"github.com/sakif/filmorate/internal/model"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (model.User, error) {
	var (
		u        model.User
		birthday sql.NullString
	)
	if err := s.Scan(&u.ID, &u.Email, &u.Login, &u.Name, &birthday); err != nil {
		return model.User{}, err
	}
	if birthday.Valid && birthday.String != "" {
		d, err := model.ParseDate(birthday.String)
		if err != nil {
			return model.User{}, fmt.Errorf("parsing birthday of user %d: %w", u.ID, err)
		}
		u.Birthday = d
	}
	return u, nil
}

// nullableDate stores the zero Date as NULL.
func nullableDate(d model.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}

// CreateUser inserts a user and sets user.ID from the generated key.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (email, login, name, birthday) VALUES (?, ?, ?, ?)`,
		user.Email, user.Login, user.Name, nullableDate(user.Birthday),
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading user id: %w", err)
	}
	user.ID = id
	user.Friends = []int64{}
	return nil
}

// UpdateUser overwrites the profile fields of an existing user.
func (db *DB) UpdateUser(ctx context.Context, user *model.User) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET email = ?, login = ?, name = ?, birthday = ? WHERE id = ?`,
		user.Email, user.Login, user.Name, nullableDate(user.Birthday), user.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %d: %w", user.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("user", user.ID)
	}
	return nil
}

// GetUser returns the user with its friend ids loaded.
func (db *DB) GetUser(ctx context.Context, id int64) (*model.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT id, email, login, name, birthday FROM users WHERE id = ?`, id,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}

	friends, err := db.FriendIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Friends = friends
	return &u, nil
}

// ListUsers returns every user ordered by id, with friend ids loaded.
func (db *DB) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := db.queryUsers(ctx, `SELECT id, email, login, name, birthday FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	if err := db.attachFriends(ctx, users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUsersByIDs returns the users that exist among ids, ordered by id.
// Missing ids are skipped silently.
func (db *DB) GetUsersByIDs(ctx context.Context, ids []int64) ([]model.User, error) {
	users := make([]model.User, 0, len(ids))
	for chunk := range slices.Chunk(uniqueSorted(ids), maxInParams) {
		clause, args := inClause(chunk)
		part, err := db.queryUsers(ctx,
			`SELECT id, email, login, name, birthday FROM users WHERE id IN `+clause+` ORDER BY id`, args...)
		if err != nil {
			return nil, fmt.Errorf("sqlite: getting users by ids: %w", err)
		}
		users = append(users, part...)
	}
	if err := db.attachFriends(ctx, users); err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUser removes a user. Friendships in both directions, likes,
// reviews, votes and feed events go with it via ON DELETE CASCADE.
// Reviews by other authors lose the weight of the user's votes first, so
// useful stays equal to the sum of the votes that remain.
func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning user delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE reviews SET useful = useful - (
			SELECT CASE WHEN v.is_useful THEN 1 ELSE -1 END
			FROM review_votes v
			WHERE v.review_id = reviews.id AND v.user_id = ?)
		 WHERE id IN (SELECT review_id FROM review_votes WHERE user_id = ?)`,
		id, id,
	); err != nil {
		return fmt.Errorf("sqlite: retracting votes of user %d: %w", id, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("user", id)
	}
	return tx.Commit()
}

func (db *DB) queryUsers(ctx context.Context, query string, args ...any) ([]model.User, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		u.Friends = []int64{}
		users = append(users, u)
	}
	return users, rows.Err()
}

// attachFriends loads friend ids for all users with one query.
func (db *DB) attachFriends(ctx context.Context, users []model.User) error {
	if len(users) == 0 {
		return nil
	}
	ids := make([]int64, len(users))
	index := make(map[int64]int, len(users))
	for i, u := range users {
		ids[i] = u.ID
		index[u.ID] = i
	}

	for chunk := range slices.Chunk(ids, maxInParams) {
		clause, args := inClause(chunk)
		err := db.eachRow(ctx,
			`SELECT user_id, friend_id FROM friendships WHERE user_id IN `+clause+` ORDER BY user_id, friend_id`,
			args,
			func(s rowScanner) error {
				var userID, friendID int64
				if err := s.Scan(&userID, &friendID); err != nil {
					return err
				}
				u := &users[index[userID]]
				u.Friends = append(u.Friends, friendID)
				return nil
			})
		if err != nil {
			return fmt.Errorf("sqlite: loading friends: %w", err)
		}
	}
	return nil
}

// =========================================================================
// FRIENDSHIPS
// =========================================================================

// AddFriend stores the directed edge userID → friendID.
// Adding an edge that already exists is a no-op.
func (db *DB) AddFriend(ctx context.Context, userID, friendID int64) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO friendships (user_id, friend_id) VALUES (?, ?)`, userID, friendID)
	if err != nil {
		return fmt.Errorf("sqlite: adding friend %d -> %d: %w", userID, friendID, err)
	}
	return nil
}

// RemoveFriend deletes the directed edge and reports whether it existed.
func (db *DB) RemoveFriend(ctx context.Context, userID, friendID int64) (bool, error) {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM friendships WHERE user_id = ? AND friend_id = ?`, userID, friendID)
	if err != nil {
		return false, fmt.Errorf("sqlite: removing friend %d -> %d: %w", userID, friendID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: removing friend %d -> %d: %w", userID, friendID, err)
	}
	return n > 0, nil
}

// FriendIDs returns the ids userID points to, ascending.
func (db *DB) FriendIDs(ctx context.Context, userID int64) ([]int64, error) {
	ids, err := db.queryIDs(ctx,
		`SELECT friend_id FROM friendships WHERE user_id = ? ORDER BY friend_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing friends of %d: %w", userID, err)
	}
	return ids, nil
}

func (db *DB) AreFriends(ctx context.Context, userID, friendID int64) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM friendships WHERE user_id = ? AND friend_id = ?`, userID, friendID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking friendship %d -> %d: %w", userID, friendID, err)
	}
	return count > 0, nil
}
