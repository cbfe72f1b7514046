package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/filmorate/internal/apperror"
	"github.com/sakif/filmorate/internal/model"
	"github.com/sakif/filmorate/internal/service"
)

// FilmHandler serves the film catalog, likes and the aggregate film queries.
//
// ROUTES:
//
//	GET    /films
//	POST   /films
//	PUT    /films
//	GET    /films/popular?count=&genreId=&year=
//	GET    /films/director/{directorId}?sortBy=year|likes
//	GET    /films/search?query=&by=title,director
//	GET    /films/common?userId=&friendId=
//	GET    /films/{id}
//	DELETE /films/{id}
//	PUT    /films/{id}/like/{userId}
//	DELETE /films/{id}/like/{userId}
//
// The static segments (popular, search, common, director) are registered
// alongside {id}; chi prefers static matches, so /films/popular never
// reaches HandleGet.
type FilmHandler struct {
	films  *service.FilmService
	logger *slog.Logger
}

// NewFilmHandler creates a new FilmHandler.
func NewFilmHandler(films *service.FilmService, logger *slog.Logger) *FilmHandler {
	return &FilmHandler{films: films, logger: logger}
}

// Routes mounts the film endpoints on r.
func (h *FilmHandler) Routes(r chi.Router) {
	r.Route("/films", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Put("/", h.HandleUpdate)

		r.Get("/popular", h.HandlePopular)
		r.Get("/director/{directorId}", h.HandleByDirector)
		r.Get("/search", h.HandleSearch)
		r.Get("/common", h.HandleCommon)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Delete("/", h.HandleDelete)
			r.Put("/like/{userId}", h.HandleAddLike)
			r.Delete("/like/{userId}", h.HandleRemoveLike)
		})
	})
}

func (h *FilmHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	films, err := h.films.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, films)
}

func (h *FilmHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	film, err := h.films.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, film)
}

// HandleCreate adds a film to the catalog.
//
// HTTP: POST /films
// REQUEST BODY:
//
//	{"name":"Alien","description":"...","releaseDate":"1979-05-25","duration":117,
//	 "mpa":{"id":4},"genres":[{"id":6}],"directors":[{"id":1}]}
//
// Only ids are read from mpa, genres and directors; the response carries
// the resolved names. Client supplied likes are ignored.
func (h *FilmHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var film model.Film
	if err := decodeJSON(w, r, &film); err != nil {
		h.logger.Warn("invalid film JSON", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	film.ID = 0

	created, err := h.films.Create(r.Context(), &film)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *FilmHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var film model.Film
	if err := decodeJSON(w, r, &film); err != nil {
		h.logger.Warn("invalid film JSON", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	if film.ID <= 0 {
		writeError(w, apperror.ValidationFailed("id", "id is required"))
		return
	}

	updated, err := h.films.Update(r.Context(), &film)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *FilmHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.films.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func likePair(r *http.Request) (filmID, userID int64, err error) {
	if filmID, err = pathID(r, "id"); err != nil {
		return 0, 0, err
	}
	if userID, err = pathID(r, "userId"); err != nil {
		return 0, 0, err
	}
	return filmID, userID, nil
}

func (h *FilmHandler) HandleAddLike(w http.ResponseWriter, r *http.Request) {
	filmID, userID, err := likePair(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.films.AddLike(r.Context(), filmID, userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FilmHandler) HandleRemoveLike(w http.ResponseWriter, r *http.Request) {
	filmID, userID, err := likePair(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.films.RemoveLike(r.Context(), filmID, userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandlePopular lists the most liked films.
//
// HTTP: GET /films/popular?count=10&genreId=1&year=1999
// count defaults to 10; genreId and year are optional filters.
func (h *FilmHandler) HandlePopular(w http.ResponseWriter, r *http.Request) {
	count, err := queryIntDefault(r, "count", service.DefaultPopularCount)
	if err != nil {
		writeError(w, err)
		return
	}

	var genreID *int64
	if v, ok, err := queryInt(r, "genreId"); err != nil {
		writeError(w, err)
		return
	} else if ok {
		genreID = &v
	}

	var year *int
	if v, ok, err := queryInt(r, "year"); err != nil {
		writeError(w, err)
		return
	} else if ok {
		y := int(v)
		year = &y
	}

	films, err := h.films.Popular(r.Context(), count, genreID, year)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, films)
}

func (h *FilmHandler) HandleByDirector(w http.ResponseWriter, r *http.Request) {
	directorID, err := pathID(r, "directorId")
	if err != nil {
		writeError(w, err)
		return
	}
	films, err := h.films.ByDirector(r.Context(), directorID, r.URL.Query().Get("sortBy"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, films)
}

func (h *FilmHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	films, err := h.films.Search(r.Context(), q.Get("query"), q.Get("by"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, films)
}

// HandleCommon lists films liked by both userId and friendId.
func (h *FilmHandler) HandleCommon(w http.ResponseWriter, r *http.Request) {
	userID, err := requiredQueryID(r, "userId")
	if err != nil {
		writeError(w, err)
		return
	}
	friendID, err := requiredQueryID(r, "friendId")
	if err != nil {
		writeError(w, err)
		return
	}
	films, err := h.films.CommonFilms(r.Context(), userID, friendID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, films)
}
