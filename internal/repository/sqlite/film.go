package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/sakif/filmorate/internal/apperror"
	"github.com/sakif/filmorate/internal/model"
)

const filmColumns = `f.id, f.name, f.description, f.release_date, f.duration, m.id, m.name`

const filmFrom = ` FROM films f LEFT JOIN mpa_ratings m ON f.mpa_id = m.id`

func scanFilm(s rowScanner) (model.Film, error) {
	var (
		f       model.Film
		release string
		mpaID   sql.NullInt64
		mpaName sql.NullString
	)
	if err := s.Scan(&f.ID, &f.Name, &f.Description, &release, &f.Duration, &mpaID, &mpaName); err != nil {
		return model.Film{}, err
	}
	d, err := model.ParseDate(release)
	if err != nil {
		return model.Film{}, fmt.Errorf("parsing release date of film %d: %w", f.ID, err)
	}
	f.ReleaseDate = d
	if mpaID.Valid {
		f.Mpa = &model.Mpa{ID: mpaID.Int64, Name: mpaName.String}
	}
	f.Genres = []model.Genre{}
	f.Directors = []model.Director{}
	f.Likes = []int64{}
	return f, nil
}

func mpaArg(film *model.Film) any {
	if film.Mpa == nil || film.Mpa.ID == 0 {
		return nil
	}
	return film.Mpa.ID
}

// CreateFilm inserts the film and its genre/director links in one
// transaction, then sets film.ID.
func (db *DB) CreateFilm(ctx context.Context, film *model.Film) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning film insert: %w", err)
	}
	defer tx.Rollback() // no-op after Commit

	res, err := tx.ExecContext(ctx,
		`INSERT INTO films (name, description, release_date, duration, mpa_id) VALUES (?, ?, ?, ?, ?)`,
		film.Name, film.Description, film.ReleaseDate.String(), film.Duration, mpaArg(film),
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating film: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading film id: %w", err)
	}

	if err := writeFilmLinks(ctx, tx, id, film); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing film insert: %w", err)
	}

	film.ID = id
	return nil
}

// UpdateFilm overwrites the film row and replaces its genre/director links.
func (db *DB) UpdateFilm(ctx context.Context, film *model.Film) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning film update: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE films SET name = ?, description = ?, release_date = ?, duration = ?, mpa_id = ? WHERE id = ?`,
		film.Name, film.Description, film.ReleaseDate.String(), film.Duration, mpaArg(film), film.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating film %d: %w", film.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("film", film.ID)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM film_genres WHERE film_id = ?`, film.ID); err != nil {
		return fmt.Errorf("sqlite: clearing genres of film %d: %w", film.ID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM film_directors WHERE film_id = ?`, film.ID); err != nil {
		return fmt.Errorf("sqlite: clearing directors of film %d: %w", film.ID, err)
	}
	if err := writeFilmLinks(ctx, tx, film.ID, film); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing film update: %w", err)
	}
	return nil
}

// writeFilmLinks inserts genre and director rows for filmID.
// Duplicate genres/directors in the input collapse into one row.
func writeFilmLinks(ctx context.Context, tx *sql.Tx, filmID int64, film *model.Film) error {
	for _, g := range film.Genres {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO film_genres (film_id, genre_id) VALUES (?, ?)`, filmID, g.ID,
		); err != nil {
			return fmt.Errorf("sqlite: linking genre %d to film %d: %w", g.ID, filmID, err)
		}
	}
	for pos, d := range film.Directors {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO film_directors (film_id, director_id, position) VALUES (?, ?, ?)`,
			filmID, d.ID, pos,
		); err != nil {
			return fmt.Errorf("sqlite: linking director %d to film %d: %w", d.ID, filmID, err)
		}
	}
	return nil
}

// GetFilm returns one film with genres, directors and likes loaded.
func (db *DB) GetFilm(ctx context.Context, id int64) (*model.Film, error) {
	f, err := scanFilm(db.conn.QueryRowContext(ctx, `SELECT `+filmColumns+filmFrom+` WHERE f.id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("film", id)
		}
		return nil, fmt.Errorf("sqlite: getting film %d: %w", id, err)
	}

	films := []model.Film{f}
	if err := db.attachFilmRelations(ctx, films); err != nil {
		return nil, err
	}
	return &films[0], nil
}

// ListFilms returns every film ordered by id.
func (db *DB) ListFilms(ctx context.Context) ([]model.Film, error) {
	return db.loadFilms(ctx, `SELECT `+filmColumns+filmFrom+` ORDER BY f.id`)
}

// GetFilmsByIDs returns the films that exist among ids, ordered by id.
func (db *DB) GetFilmsByIDs(ctx context.Context, ids []int64) ([]model.Film, error) {
	films := make([]model.Film, 0, len(ids))
	for chunk := range slices.Chunk(uniqueSorted(ids), maxInParams) {
		clause, args := inClause(chunk)
		part, err := db.loadFilms(ctx, `SELECT `+filmColumns+filmFrom+` WHERE f.id IN `+clause+` ORDER BY f.id`, args...)
		if err != nil {
			return nil, err
		}
		films = append(films, part...)
	}
	return films, nil
}

// FilmsByDirector returns the films linked to directorID, ordered by id.
func (db *DB) FilmsByDirector(ctx context.Context, directorID int64) ([]model.Film, error) {
	return db.loadFilms(ctx,
		`SELECT `+filmColumns+filmFrom+`
		 JOIN film_directors fd ON fd.film_id = f.id
		 WHERE fd.director_id = ?
		 ORDER BY f.id`, directorID)
}

// DeleteFilm removes a film; genre, director, like and review rows cascade.
func (db *DB) DeleteFilm(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM films WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting film %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("film", id)
	}
	return nil
}

func (db *DB) loadFilms(ctx context.Context, query string, args ...any) ([]model.Film, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying films: %w", err)
	}

	films := make([]model.Film, 0)
	for rows.Next() {
		f, err := scanFilm(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("sqlite: scanning film: %w", err)
		}
		films = append(films, f)
	}
	err = rows.Err()
	rows.Close() // release the connection before the relation queries below
	if err != nil {
		return nil, fmt.Errorf("sqlite: iterating films: %w", err)
	}

	if err := db.attachFilmRelations(ctx, films); err != nil {
		return nil, err
	}
	return films, nil
}

// attachFilmRelations loads genres, directors and likes for films with one
// query per relation and id chunk (not one per film).
func (db *DB) attachFilmRelations(ctx context.Context, films []model.Film) error {
	if len(films) == 0 {
		return nil
	}
	ids := make([]int64, len(films))
	index := make(map[int64]int, len(films))
	for i, f := range films {
		ids[i] = f.ID
		index[f.ID] = i
	}
	for chunk := range slices.Chunk(ids, maxInParams) {
		if err := db.attachFilmChunk(ctx, films, index, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) attachFilmChunk(ctx context.Context, films []model.Film, index map[int64]int, ids []int64) error {
	clause, args := inClause(ids)

	err := db.eachRow(ctx,
		`SELECT fg.film_id, g.id, g.name FROM film_genres fg
		 JOIN genres g ON g.id = fg.genre_id
		 WHERE fg.film_id IN `+clause+` ORDER BY fg.film_id, g.id`,
		args,
		func(s rowScanner) error {
			var filmID int64
			var g model.Genre
			if err := s.Scan(&filmID, &g.ID, &g.Name); err != nil {
				return err
			}
			f := &films[index[filmID]]
			f.Genres = append(f.Genres, g)
			return nil
		})
	if err != nil {
		return fmt.Errorf("sqlite: loading film genres: %w", err)
	}

	err = db.eachRow(ctx,
		`SELECT fd.film_id, d.id, d.name FROM film_directors fd
		 JOIN directors d ON d.id = fd.director_id
		 WHERE fd.film_id IN `+clause+` ORDER BY fd.film_id, fd.position`,
		args,
		func(s rowScanner) error {
			var filmID int64
			var d model.Director
			if err := s.Scan(&filmID, &d.ID, &d.Name); err != nil {
				return err
			}
			f := &films[index[filmID]]
			f.Directors = append(f.Directors, d)
			return nil
		})
	if err != nil {
		return fmt.Errorf("sqlite: loading film directors: %w", err)
	}

	err = db.eachRow(ctx,
		`SELECT film_id, user_id FROM film_likes WHERE film_id IN `+clause+` ORDER BY film_id, user_id`,
		args,
		func(s rowScanner) error {
			var filmID, userID int64
			if err := s.Scan(&filmID, &userID); err != nil {
				return err
			}
			f := &films[index[filmID]]
			f.Likes = append(f.Likes, userID)
			return nil
		})
	if err != nil {
		return fmt.Errorf("sqlite: loading film likes: %w", err)
	}
	return nil
}

// eachRow runs query and calls fn for every row, closing the rows before returning.
func (db *DB) eachRow(ctx context.Context, query string, args []any, fn func(rowScanner) error) error {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
