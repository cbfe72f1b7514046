package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/filmorate/internal/apperror"
	"github.com/sakif/filmorate/internal/metrics"
	"github.com/sakif/filmorate/internal/model"
	"github.com/sakif/filmorate/internal/repository"
)

// FeedService records and lists user activity events.
type FeedService struct {
	users  repository.UserRepository
	events repository.EventRepository
	now    Clock
	logger *slog.Logger
}

func NewFeedService(users repository.UserRepository, events repository.EventRepository, logger *slog.Logger) *FeedService {
	return &FeedService{
		users:  users,
		events: events,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock replaces the timestamp source and returns s.
func (s *FeedService) WithClock(now Clock) *FeedService {
	s.now = now
	return s
}

// Record appends an event submitted from outside the service layer.
//
// RULES:
//   - the user must exist (NotFound)
//   - entityID must be positive, type and operation must be known (Validation)
//   - a LIKE/ADD is rejected when the user's latest LIKE event for the same
//     entity is already an ADD (a like cannot be added twice in a row)
func (s *FeedService) Record(ctx context.Context, userID, entityID int64, eventType model.EventType, op model.Operation) (*model.Event, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	if entityID <= 0 {
		return nil, apperror.ValidationFailed("entityId", "entityId must be a positive id")
	}
	if !eventType.Valid() {
		return nil, apperror.ValidationFailed("eventType", "eventType must be one of REVIEW, FRIEND, LIKE")
	}
	if !op.Valid() {
		return nil, apperror.ValidationFailed("operation", "operation must be one of ADD, REMOVE, UPDATE")
	}

	if eventType == model.EventLike && op == model.OpAdd {
		last, err := s.events.LastEvent(ctx, userID, model.EventLike, entityID)
		if err != nil {
			s.logger.Error("failed to read last like event",
				slog.Int64("user_id", userID), slog.Int64("entity_id", entityID), errAttr(err))
			return nil, fmt.Errorf("checking duplicate like event: %w", err)
		}
		if last != nil && last.Operation == model.OpAdd {
			s.logger.Warn("duplicate like event rejected",
				slog.Int64("user_id", userID), slog.Int64("entity_id", entityID))
			return nil, apperror.ValidationFailed("operation", "like already recorded for this entity")
		}
	}

	return s.append(ctx, userID, entityID, eventType, op)
}

// emit appends an event for a state change another service has already
// validated and applied.
func (s *FeedService) emit(ctx context.Context, userID, entityID int64, eventType model.EventType, op model.Operation) error {
	_, err := s.append(ctx, userID, entityID, eventType, op)
	return err
}

func (s *FeedService) append(ctx context.Context, userID, entityID int64, eventType model.EventType, op model.Operation) (*model.Event, error) {
	event := &model.Event{
		UserID:    userID,
		EntityID:  entityID,
		EventType: eventType,
		Operation: op,
		Timestamp: s.now().UnixMilli(),
	}
	if err := s.events.InsertEvent(ctx, event); err != nil {
		s.logger.Error("failed to record event",
			slog.Int64("user_id", userID),
			slog.String("event_type", string(eventType)),
			slog.String("operation", string(op)),
			errAttr(err),
		)
		return nil, fmt.Errorf("recording %s %s event: %w", eventType, op, err)
	}
	metrics.RecordFeedEvent(eventType, op)

	s.logger.Debug("event recorded",
		slog.Int64("event_id", event.ID),
		slog.Int64("user_id", userID),
		slog.String("event_type", string(eventType)),
		slog.String("operation", string(op)),
		slog.Int64("entity_id", entityID),
	)
	return event, nil
}

// Feed returns userID's events oldest first.
func (s *FeedService) Feed(ctx context.Context, userID int64) ([]model.Event, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	events, err := s.events.EventsForUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to load feed", slog.Int64("user_id", userID), errAttr(err))
		return nil, fmt.Errorf("loading feed: %w", err)
	}
	return events, nil
}
