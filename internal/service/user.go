package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/sakif/filmorate/internal/apperror"
	"github.com/sakif/filmorate/internal/model"
	"github.com/sakif/filmorate/internal/rank"
	"github.com/sakif/filmorate/internal/repository"
	"github.com/sakif/filmorate/internal/validation"
)

// UserStore is what UserService needs from the store.
type UserStore interface {
	repository.UserRepository
	repository.FriendRepository
}

// UserService manages user profiles and the directed friendship graph.
type UserService struct {
	store  UserStore
	feed   *FeedService
	now    Clock
	logger *slog.Logger
}

func NewUserService(store UserStore, feed *FeedService, logger *slog.Logger) *UserService {
	return &UserService{
		store:  store,
		feed:   feed,
		now:    time.Now,
		logger: logger,
	}
}

// validate checks a profile and fills the display name.
//
// RULES:
//   - email required and well formed, login required (struct tags)
//   - login contains no whitespace
//   - birthday, when given, is not after today
//   - a blank name is replaced by the login
func (s *UserService) validate(user *model.User) error {
	if err := validation.Struct(user); err != nil {
		return err
	}
	if strings.ContainsFunc(user.Login, unicode.IsSpace) {
		return apperror.ValidationFailed("login", "login must not contain whitespace")
	}
	if !user.Birthday.IsZero() {
		today := s.now().UTC()
		if user.Birthday.After(time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)) {
			return apperror.ValidationFailed("birthday", "birthday must not be in the future")
		}
	}
	if strings.TrimSpace(user.Name) == "" {
		user.Name = user.Login
	}
	return nil
}

// Create validates and stores a new user. Any friends in the input are ignored.
func (s *UserService) Create(ctx context.Context, user *model.User) (*model.User, error) {
	if err := s.validate(user); err != nil {
		s.logger.Warn("user rejected", slog.String("login", user.Login), errAttr(err))
		return nil, err
	}

	user.ID = 0
	if err := s.store.CreateUser(ctx, user); err != nil {
		s.logger.Error("failed to create user", slog.String("login", user.Login), errAttr(err))
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user created", slog.Int64("user_id", user.ID), slog.String("login", user.Login))
	return user, nil
}

// Update overwrites the profile of an existing user.
func (s *UserService) Update(ctx context.Context, user *model.User) (*model.User, error) {
	if err := s.validate(user); err != nil {
		s.logger.Warn("user update rejected", slog.Int64("user_id", user.ID), errAttr(err))
		return nil, err
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		if apperror.IsNotFound(err) {
			return nil, err
		}
		s.logger.Error("failed to update user", slog.Int64("user_id", user.ID), errAttr(err))
		return nil, fmt.Errorf("updating user: %w", err)
	}

	s.logger.Info("user updated", slog.Int64("user_id", user.ID))
	return s.store.GetUser(ctx, user.ID)
}

func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	return s.store.GetUser(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		s.logger.Error("failed to list users", errAttr(err))
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// Delete removes the user together with everything that references it.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		if apperror.IsNotFound(err) {
			return err
		}
		s.logger.Error("failed to delete user", slog.Int64("user_id", id), errAttr(err))
		return fmt.Errorf("deleting user: %w", err)
	}
	s.logger.Info("user deleted", slog.Int64("user_id", id))
	return nil
}

// =========================================================================
// FRIENDS
// =========================================================================

// requireUsers returns NotFound for the first id that has no user.
func (s *UserService) requireUsers(ctx context.Context, ids ...int64) error {
	for _, id := range ids {
		if _, err := s.store.GetUser(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// AddFriend adds friendID to userID's friends. The edge is one-directional:
// friendID's list is unchanged.
func (s *UserService) AddFriend(ctx context.Context, userID, friendID int64) error {
	if userID == friendID {
		return apperror.ValidationFailed("friendId", "a user cannot befriend themselves")
	}
	if err := s.requireUsers(ctx, userID, friendID); err != nil {
		return err
	}

	already, err := s.store.AreFriends(ctx, userID, friendID)
	if err != nil {
		s.logger.Error("failed to check friendship",
			slog.Int64("user_id", userID), slog.Int64("friend_id", friendID), errAttr(err))
		return fmt.Errorf("checking friendship: %w", err)
	}
	if already {
		return apperror.ValidationFailed("friendId", fmt.Sprintf("user %d is already a friend of user %d", friendID, userID))
	}

	if err := s.store.AddFriend(ctx, userID, friendID); err != nil {
		s.logger.Error("failed to add friend",
			slog.Int64("user_id", userID), slog.Int64("friend_id", friendID), errAttr(err))
		return fmt.Errorf("adding friend: %w", err)
	}
	s.logger.Info("friend added", slog.Int64("user_id", userID), slog.Int64("friend_id", friendID))

	return s.feed.emit(ctx, userID, friendID, model.EventFriend, model.OpAdd)
}

// RemoveFriend drops friendID from userID's friends. Removing someone who is
// not a friend succeeds without recording anything.
func (s *UserService) RemoveFriend(ctx context.Context, userID, friendID int64) error {
	if err := s.requireUsers(ctx, userID, friendID); err != nil {
		return err
	}

	removed, err := s.store.RemoveFriend(ctx, userID, friendID)
	if err != nil {
		s.logger.Error("failed to remove friend",
			slog.Int64("user_id", userID), slog.Int64("friend_id", friendID), errAttr(err))
		return fmt.Errorf("removing friend: %w", err)
	}
	if !removed {
		return nil
	}
	s.logger.Info("friend removed", slog.Int64("user_id", userID), slog.Int64("friend_id", friendID))

	return s.feed.emit(ctx, userID, friendID, model.EventFriend, model.OpRemove)
}

// Friends returns the users userID has added, ascending by id.
func (s *UserService) Friends(ctx context.Context, userID int64) ([]model.User, error) {
	if err := s.requireUsers(ctx, userID); err != nil {
		return nil, err
	}
	ids, err := s.store.FriendIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing friends: %w", err)
	}
	return s.store.GetUsersByIDs(ctx, ids)
}

// CommonFriends returns the users that both userID and otherID have added,
// ascending by id. The result does not depend on argument order.
func (s *UserService) CommonFriends(ctx context.Context, userID, otherID int64) ([]model.User, error) {
	if err := s.requireUsers(ctx, userID, otherID); err != nil {
		return nil, err
	}

	mine, err := s.store.FriendIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing friends: %w", err)
	}
	theirs, err := s.store.FriendIDs(ctx, otherID)
	if err != nil {
		return nil, fmt.Errorf("listing friends: %w", err)
	}

	return s.store.GetUsersByIDs(ctx, rank.Intersect(mine, theirs))
}
