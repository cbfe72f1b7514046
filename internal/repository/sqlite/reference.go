package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/filmorate/internal/apperror"
	"github.com/sakif/filmorate/internal/model"
)

// =========================================================================
// GENRES (read-only, seeded)
// =========================================================================

func (db *DB) ListGenres(ctx context.Context) ([]model.Genre, error) {
	genres := make([]model.Genre, 0)
	err := db.eachRow(ctx, `SELECT id, name FROM genres ORDER BY id`, nil, func(s rowScanner) error {
		var g model.Genre
		if err := s.Scan(&g.ID, &g.Name); err != nil {
			return err
		}
		genres = append(genres, g)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing genres: %w", err)
	}
	return genres, nil
}

func (db *DB) GetGenre(ctx context.Context, id int64) (*model.Genre, error) {
	var g model.Genre
	err := db.conn.QueryRowContext(ctx, `SELECT id, name FROM genres WHERE id = ?`, id).Scan(&g.ID, &g.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("genre", id)
		}
		return nil, fmt.Errorf("sqlite: getting genre %d: %w", id, err)
	}
	return &g, nil
}

func (db *DB) ExistingGenreIDs(ctx context.Context, ids []int64) (map[int64]bool, error) {
	found, err := db.existingIDs(ctx, "genres", ids)
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking genres: %w", err)
	}
	return found, nil
}

// =========================================================================
// MPA RATINGS (read-only, seeded)
// =========================================================================

func (db *DB) ListMpa(ctx context.Context) ([]model.Mpa, error) {
	ratings := make([]model.Mpa, 0)
	err := db.eachRow(ctx, `SELECT id, name FROM mpa_ratings ORDER BY id`, nil, func(s rowScanner) error {
		var m model.Mpa
		if err := s.Scan(&m.ID, &m.Name); err != nil {
			return err
		}
		ratings = append(ratings, m)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing mpa ratings: %w", err)
	}
	return ratings, nil
}

func (db *DB) GetMpa(ctx context.Context, id int64) (*model.Mpa, error) {
	var m model.Mpa
	err := db.conn.QueryRowContext(ctx, `SELECT id, name FROM mpa_ratings WHERE id = ?`, id).Scan(&m.ID, &m.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("mpa", id)
		}
		return nil, fmt.Errorf("sqlite: getting mpa %d: %w", id, err)
	}
	return &m, nil
}

// =========================================================================
// DIRECTORS
// =========================================================================

func (db *DB) CreateDirector(ctx context.Context, director *model.Director) error {
	res, err := db.conn.ExecContext(ctx, `INSERT INTO directors (name) VALUES (?)`, director.Name)
	if err != nil {
		return fmt.Errorf("sqlite: creating director: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading director id: %w", err)
	}
	director.ID = id
	return nil
}

func (db *DB) UpdateDirector(ctx context.Context, director *model.Director) error {
	res, err := db.conn.ExecContext(ctx, `UPDATE directors SET name = ? WHERE id = ?`, director.Name, director.ID)
	if err != nil {
		return fmt.Errorf("sqlite: updating director %d: %w", director.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("director", director.ID)
	}
	return nil
}

func (db *DB) GetDirector(ctx context.Context, id int64) (*model.Director, error) {
	var d model.Director
	err := db.conn.QueryRowContext(ctx, `SELECT id, name FROM directors WHERE id = ?`, id).Scan(&d.ID, &d.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("director", id)
		}
		return nil, fmt.Errorf("sqlite: getting director %d: %w", id, err)
	}
	return &d, nil
}

func (db *DB) ListDirectors(ctx context.Context) ([]model.Director, error) {
	directors := make([]model.Director, 0)
	err := db.eachRow(ctx, `SELECT id, name FROM directors ORDER BY id`, nil, func(s rowScanner) error {
		var d model.Director
		if err := s.Scan(&d.ID, &d.Name); err != nil {
			return err
		}
		directors = append(directors, d)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing directors: %w", err)
	}
	return directors, nil
}

// DeleteDirector removes the director and, by cascade, its film links.
// The films themselves stay.
func (db *DB) DeleteDirector(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM directors WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting director %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("director", id)
	}
	return nil
}

func (db *DB) ExistingDirectorIDs(ctx context.Context, ids []int64) (map[int64]bool, error) {
	found, err := db.existingIDs(ctx, "directors", ids)
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking directors: %w", err)
	}
	return found, nil
}
