package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/filmorate/internal/apperror"
	"github.com/sakif/filmorate/internal/model"
	"github.com/sakif/filmorate/internal/service"
)

// UserHandler serves users, their friendships, their recommendations and
// their activity feed.
//
// ROUTES:
//
//	GET    /users
//	POST   /users
//	PUT    /users
//	GET    /users/{id}
//	DELETE /users/{id}
//	GET    /users/{id}/friends
//	PUT    /users/{id}/friends/{friendId}
//	DELETE /users/{id}/friends/{friendId}
//	GET    /users/{id}/friends/common/{otherId}
//	GET    /users/{id}/recommendations
//	GET    /users/{id}/feed
//	POST   /users/{id}/feed
type UserHandler struct {
	users  *service.UserService
	recs   *service.RecommendationService
	feed   *service.FeedService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService, recs *service.RecommendationService, feed *service.FeedService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, recs: recs, feed: feed, logger: logger}
}

// Routes mounts the user endpoints on r.
func (h *UserHandler) Routes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Put("/", h.HandleUpdate)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Delete("/", h.HandleDelete)
			r.Get("/friends", h.HandleFriends)
			r.Put("/friends/{friendId}", h.HandleAddFriend)
			r.Delete("/friends/{friendId}", h.HandleRemoveFriend)
			r.Get("/friends/common/{otherId}", h.HandleCommonFriends)
			r.Get("/recommendations", h.HandleRecommendations)
			r.Get("/feed", h.HandleFeed)
			r.Post("/feed", h.HandleRecordEvent)
		})
	})
}

func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleCreate registers a user. Any id in the body is ignored.
//
// HTTP: POST /users
// REQUEST BODY: {"email":"a@b.c","login":"neo","name":"","birthday":"1990-01-01"}
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var user model.User
	if err := decodeJSON(w, r, &user); err != nil {
		h.logger.Warn("invalid user JSON", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	user.ID = 0

	created, err := h.users.Create(r.Context(), &user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleUpdate replaces a user's profile. The target id comes from the body.
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var user model.User
	if err := decodeJSON(w, r, &user); err != nil {
		h.logger.Warn("invalid user JSON", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	if user.ID <= 0 {
		writeError(w, apperror.ValidationFailed("id", "id is required"))
		return
	}

	updated, err := h.users.Update(r.Context(), &user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.users.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) HandleFriends(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	friends, err := h.users.Friends(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, friends)
}

// friendPair extracts {id} and {friendId}.
func friendPair(r *http.Request) (userID, friendID int64, err error) {
	if userID, err = pathID(r, "id"); err != nil {
		return 0, 0, err
	}
	if friendID, err = pathID(r, "friendId"); err != nil {
		return 0, 0, err
	}
	return userID, friendID, nil
}

func (h *UserHandler) HandleAddFriend(w http.ResponseWriter, r *http.Request) {
	userID, friendID, err := friendPair(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.users.AddFriend(r.Context(), userID, friendID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) HandleRemoveFriend(w http.ResponseWriter, r *http.Request) {
	userID, friendID, err := friendPair(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.users.RemoveFriend(r.Context(), userID, friendID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) HandleCommonFriends(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	otherID, err := pathID(r, "otherId")
	if err != nil {
		writeError(w, err)
		return
	}
	common, err := h.users.CommonFriends(r.Context(), userID, otherID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, common)
}

func (h *UserHandler) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	films, err := h.recs.Recommend(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, films)
}

func (h *UserHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	events, err := h.feed.Feed(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// recordEventRequest is the body of POST /users/{id}/feed. The user comes
// from the path and the timestamp from the server clock.
type recordEventRequest struct {
	EntityID  int64           `json:"entityId"`
	EventType model.EventType `json:"eventType"`
	Operation model.Operation `json:"operation"`
}

// HandleRecordEvent appends an event to a user's feed directly.
//
// HTTP: POST /users/{id}/feed
// REQUEST BODY: {"entityId": 7, "eventType": "LIKE", "operation": "ADD"}
func (h *UserHandler) HandleRecordEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req recordEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	event, err := h.feed.Record(r.Context(), id, req.EntityID, req.EventType, req.Operation)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}
