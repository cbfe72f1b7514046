package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/filmorate/internal/apperror"
	"github.com/sakif/filmorate/internal/model"
	"github.com/sakif/filmorate/internal/repository"
)

const reviewColumns = `id, content, is_positive, user_id, film_id, useful`

func scanReview(s rowScanner) (model.Review, error) {
	var (
		r        model.Review
		positive bool
		userID   int64
		filmID   int64
	)
	if err := s.Scan(&r.ID, &r.Content, &positive, &userID, &filmID, &r.Useful); err != nil {
		return model.Review{}, err
	}
	r.IsPositive = &positive
	r.UserID = &userID
	r.FilmID = &filmID
	return r, nil
}

// CreateReview inserts a review with a usefulness of zero and sets its ID.
// The caller has already checked that UserID, FilmID and IsPositive are set.
func (db *DB) CreateReview(ctx context.Context, review *model.Review) error {
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO reviews (content, is_positive, user_id, film_id, useful) VALUES (?, ?, ?, ?, 0)`,
		review.Content, *review.IsPositive, *review.UserID, *review.FilmID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating review: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading review id: %w", err)
	}
	review.ID = id
	review.Useful = 0
	return nil
}

// UpdateReview changes content and sentiment only. Author, film and
// usefulness are not writable through an update.
func (db *DB) UpdateReview(ctx context.Context, review *model.Review) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE reviews SET content = ?, is_positive = ? WHERE id = ?`,
		review.Content, *review.IsPositive, review.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating review %d: %w", review.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("review", review.ID)
	}
	return nil
}

func (db *DB) GetReview(ctx context.Context, id int64) (*model.Review, error) {
	r, err := scanReview(db.conn.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("review", id)
		}
		return nil, fmt.Errorf("sqlite: getting review %d: %w", id, err)
	}
	return &r, nil
}

// ListReviews returns the most useful reviews first, ties by id.
func (db *DB) ListReviews(ctx context.Context, filter repository.ReviewFilter) ([]model.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews`
	args := []any{}
	if filter.FilmID != nil {
		query += ` WHERE film_id = ?`
		args = append(args, *filter.FilmID)
	}
	query += ` ORDER BY useful DESC, id ASC LIMIT ?`
	args = append(args, filter.Limit)

	reviews := make([]model.Review, 0)
	err := db.eachRow(ctx, query, args, func(s rowScanner) error {
		r, err := scanReview(s)
		if err != nil {
			return err
		}
		reviews = append(reviews, r)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing reviews: %w", err)
	}
	return reviews, nil
}

func (db *DB) DeleteReview(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting review %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("review", id)
	}
	return nil
}

// =========================================================================
// USEFULNESS VOTES
// =========================================================================
//
// STATE MACHINE per (review, voter):
//
//	no vote    --cast(useful)-->      useful      score +1
//	no vote    --cast(not useful)-->  not useful  score -1
//	useful     --cast(not useful)-->  not useful  score -2
//	not useful --cast(useful)-->      useful      score +2
//	useful     --retract(useful)-->   no vote     score -1
//	not useful --retract(not useful)->no vote     score +1
//
// Everything else (same vote twice, retracting a vote that is not there or
// has the other direction) is a no-op. The vote row and the score are
// written in one transaction so two concurrent voters cannot lose an update.

func voteWeight(useful bool) int {
	if useful {
		return 1
	}
	return -1
}

// CastVote applies voter's vote to the review.
func (db *DB) CastVote(ctx context.Context, reviewID, voterID int64, useful bool) (model.VoteChange, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return model.VoteChange{}, fmt.Errorf("sqlite: beginning vote: %w", err)
	}
	defer tx.Rollback()

	var current bool
	err = tx.QueryRowContext(ctx,
		`SELECT is_useful FROM review_votes WHERE review_id = ? AND user_id = ?`, reviewID, voterID,
	).Scan(&current)

	var delta int
	switch {
	case err == sql.ErrNoRows:
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO review_votes (review_id, user_id, is_useful) VALUES (?, ?, ?)`,
			reviewID, voterID, useful,
		); err != nil {
			return model.VoteChange{}, fmt.Errorf("sqlite: inserting vote review=%d user=%d: %w", reviewID, voterID, err)
		}
		delta = voteWeight(useful)
	case err != nil:
		return model.VoteChange{}, fmt.Errorf("sqlite: reading vote review=%d user=%d: %w", reviewID, voterID, err)
	case current == useful:
		return model.VoteChange{}, nil
	default:
		if _, err := tx.ExecContext(ctx,
			`UPDATE review_votes SET is_useful = ? WHERE review_id = ? AND user_id = ?`,
			useful, reviewID, voterID,
		); err != nil {
			return model.VoteChange{}, fmt.Errorf("sqlite: flipping vote review=%d user=%d: %w", reviewID, voterID, err)
		}
		delta = 2 * voteWeight(useful)
	}

	if err := adjustUsefulness(ctx, tx, reviewID, delta); err != nil {
		return model.VoteChange{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.VoteChange{}, fmt.Errorf("sqlite: committing vote: %w", err)
	}
	return model.VoteChange{Delta: delta}, nil
}

// RetractVote removes voter's vote if it has the given direction.
func (db *DB) RetractVote(ctx context.Context, reviewID, voterID int64, useful bool) (model.VoteChange, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return model.VoteChange{}, fmt.Errorf("sqlite: beginning vote retraction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM review_votes WHERE review_id = ? AND user_id = ? AND is_useful = ?`,
		reviewID, voterID, useful,
	)
	if err != nil {
		return model.VoteChange{}, fmt.Errorf("sqlite: deleting vote review=%d user=%d: %w", reviewID, voterID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.VoteChange{}, fmt.Errorf("sqlite: deleting vote review=%d user=%d: %w", reviewID, voterID, err)
	}
	if n == 0 {
		return model.VoteChange{}, nil
	}

	delta := -voteWeight(useful)
	if err := adjustUsefulness(ctx, tx, reviewID, delta); err != nil {
		return model.VoteChange{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.VoteChange{}, fmt.Errorf("sqlite: committing vote retraction: %w", err)
	}
	return model.VoteChange{Delta: delta}, nil
}

func adjustUsefulness(ctx context.Context, tx *sql.Tx, reviewID int64, delta int) error {
	res, err := tx.ExecContext(ctx, `UPDATE reviews SET useful = useful + ? WHERE id = ?`, delta, reviewID)
	if err != nil {
		return fmt.Errorf("sqlite: adjusting usefulness of review %d: %w", reviewID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("review", reviewID)
	}
	return nil
}
