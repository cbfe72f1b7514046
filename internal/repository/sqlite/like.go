package sqlite

import (
	"context"
	"fmt"
)

// AddLike records that userID likes filmID. Repeating it is a no-op.
func (db *DB) AddLike(ctx context.Context, filmID, userID int64) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO film_likes (film_id, user_id) VALUES (?, ?)`, filmID, userID)
	if err != nil {
		return fmt.Errorf("sqlite: adding like film=%d user=%d: %w", filmID, userID, err)
	}
	return nil
}

// RemoveLike deletes the like and reports whether there was one.
func (db *DB) RemoveLike(ctx context.Context, filmID, userID int64) (bool, error) {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM film_likes WHERE film_id = ? AND user_id = ?`, filmID, userID)
	if err != nil {
		return false, fmt.Errorf("sqlite: removing like film=%d user=%d: %w", filmID, userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: removing like film=%d user=%d: %w", filmID, userID, err)
	}
	return n > 0, nil
}

func (db *DB) HasLike(ctx context.Context, filmID, userID int64) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM film_likes WHERE film_id = ? AND user_id = ?`, filmID, userID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking like film=%d user=%d: %w", filmID, userID, err)
	}
	return count > 0, nil
}

// LikedFilmIDs returns the films userID likes, ascending.
func (db *DB) LikedFilmIDs(ctx context.Context, userID int64) ([]int64, error) {
	ids, err := db.queryIDs(ctx,
		`SELECT film_id FROM film_likes WHERE user_id = ? ORDER BY film_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing likes of user %d: %w", userID, err)
	}
	return ids, nil
}

// LikesByUser loads the whole like relation as user id → ascending film ids.
// Users without likes are absent from the map.
func (db *DB) LikesByUser(ctx context.Context) (map[int64][]int64, error) {
	likes := make(map[int64][]int64)
	err := db.eachRow(ctx,
		`SELECT user_id, film_id FROM film_likes ORDER BY user_id, film_id`, nil,
		func(s rowScanner) error {
			var userID, filmID int64
			if err := s.Scan(&userID, &filmID); err != nil {
				return err
			}
			likes[userID] = append(likes[userID], filmID)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading likes: %w", err)
	}
	return likes, nil
}
