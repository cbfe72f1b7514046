package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/filmorate/internal/apperror"
	"github.com/sakif/filmorate/internal/model"
	"github.com/sakif/filmorate/internal/service"
)

// ReviewHandler serves reviews and their usefulness votes.
//
// ROUTES:
//
//	GET    /reviews?filmId=&count=
//	POST   /reviews
//	PUT    /reviews
//	GET    /reviews/{id}
//	DELETE /reviews/{id}
//	PUT    /reviews/{id}/like/{userId}       vote useful
//	PUT    /reviews/{id}/dislike/{userId}    vote not useful
//	DELETE /reviews/{id}/like/{userId}       retract a useful vote
//	DELETE /reviews/{id}/dislike/{userId}    retract a not useful vote
type ReviewHandler struct {
	reviews *service.ReviewService
	logger  *slog.Logger
}

func NewReviewHandler(reviews *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, logger: logger}
}

// Routes mounts the review endpoints on r.
func (h *ReviewHandler) Routes(r chi.Router) {
	r.Route("/reviews", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Put("/", h.HandleUpdate)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Delete("/", h.HandleDelete)
			r.Put("/like/{userId}", h.vote(true))
			r.Put("/dislike/{userId}", h.vote(false))
			r.Delete("/like/{userId}", h.unvote(true))
			r.Delete("/dislike/{userId}", h.unvote(false))
		})
	})
}

func (h *ReviewHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	count, err := queryIntDefault(r, "count", service.DefaultReviewCount)
	if err != nil {
		writeError(w, err)
		return
	}

	var filmID *int64
	if v, ok, err := queryInt(r, "filmId"); err != nil {
		writeError(w, err)
		return
	} else if ok {
		filmID = &v
	}

	reviews, err := h.reviews.List(r.Context(), filmID, count)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *ReviewHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	review, err := h.reviews.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

// HandleCreate posts a review. useful always starts at 0.
//
// HTTP: POST /reviews
// REQUEST BODY: {"content":"...","isPositive":true,"userId":1,"filmId":2}
func (h *ReviewHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var review model.Review
	if err := decodeJSON(w, r, &review); err != nil {
		h.logger.Warn("invalid review JSON", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	review.ID = 0

	created, err := h.reviews.Create(r.Context(), &review)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleUpdate edits content and isPositive of the review named by reviewId.
func (h *ReviewHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var review model.Review
	if err := decodeJSON(w, r, &review); err != nil {
		h.logger.Warn("invalid review JSON", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	if review.ID <= 0 {
		writeError(w, apperror.ValidationFailed("reviewId", "reviewId is required"))
		return
	}

	updated, err := h.reviews.Update(r.Context(), &review)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ReviewHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.reviews.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func votePair(r *http.Request) (reviewID, userID int64, err error) {
	if reviewID, err = pathID(r, "id"); err != nil {
		return 0, 0, err
	}
	if userID, err = pathID(r, "userId"); err != nil {
		return 0, 0, err
	}
	return reviewID, userID, nil
}

func (h *ReviewHandler) vote(useful bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reviewID, userID, err := votePair(r)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := h.reviews.Vote(r.Context(), reviewID, userID, useful); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *ReviewHandler) unvote(useful bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reviewID, userID, err := votePair(r)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := h.reviews.Unvote(r.Context(), reviewID, userID, useful); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
