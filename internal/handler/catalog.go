package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/filmorate/internal/apperror"
	"github.com/sakif/filmorate/internal/model"
	"github.com/sakif/filmorate/internal/service"
)

// CatalogHandler serves the read-only reference data: genres and MPA ratings.
type CatalogHandler struct {
	catalog *service.CatalogService
}

func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Routes mounts /genres and /mpa on r.
func (h *CatalogHandler) Routes(r chi.Router) {
	r.Get("/genres", h.HandleGenres)
	r.Get("/genres/{id}", h.HandleGenre)
	r.Get("/mpa", h.HandleMpaRatings)
	r.Get("/mpa/{id}", h.HandleMpa)
}

func (h *CatalogHandler) HandleGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.catalog.Genres(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, genres)
}

func (h *CatalogHandler) HandleGenre(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	genre, err := h.catalog.Genre(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, genre)
}

func (h *CatalogHandler) HandleMpaRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.catalog.MpaRatings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ratings)
}

func (h *CatalogHandler) HandleMpa(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	mpa, err := h.catalog.Mpa(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mpa)
}

// DirectorHandler manages /directors.
type DirectorHandler struct {
	directors *service.DirectorService
	logger    *slog.Logger
}

func NewDirectorHandler(directors *service.DirectorService, logger *slog.Logger) *DirectorHandler {
	return &DirectorHandler{directors: directors, logger: logger}
}

// Routes mounts the director endpoints on r.
func (h *DirectorHandler) Routes(r chi.Router) {
	r.Route("/directors", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Put("/", h.HandleUpdate)
		r.Get("/{id}", h.HandleGet)
		r.Delete("/{id}", h.HandleDelete)
	})
}

func (h *DirectorHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	directors, err := h.directors.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, directors)
}

func (h *DirectorHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	director, err := h.directors.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, director)
}

func (h *DirectorHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var director model.Director
	if err := decodeJSON(w, r, &director); err != nil {
		h.logger.Warn("invalid director JSON", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	director.ID = 0

	created, err := h.directors.Create(r.Context(), &director)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *DirectorHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var director model.Director
	if err := decodeJSON(w, r, &director); err != nil {
		h.logger.Warn("invalid director JSON", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	if director.ID <= 0 {
		writeError(w, apperror.ValidationFailed("id", "id is required"))
		return
	}

	updated, err := h.directors.Update(r.Context(), &director)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *DirectorHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.directors.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
