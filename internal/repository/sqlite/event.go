package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/filmorate/internal/model"
)

const eventColumns = `id, timestamp, user_id, event_type, operation, entity_id`

func scanEvent(s rowScanner) (model.Event, error) {
	var e model.Event
	var eventType, operation string
	if err := s.Scan(&e.ID, &e.Timestamp, &e.UserID, &eventType, &operation, &e.EntityID); err != nil {
		return model.Event{}, err
	}
	e.EventType = model.EventType(eventType)
	e.Operation = model.Operation(operation)
	return e, nil
}

// InsertEvent appends an event and sets its ID. Events are never updated.
func (db *DB) InsertEvent(ctx context.Context, event *model.Event) error {
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO feed_events (timestamp, user_id, event_type, operation, entity_id) VALUES (?, ?, ?, ?, ?)`,
		event.Timestamp, event.UserID, string(event.EventType), string(event.Operation), event.EntityID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting event for user %d: %w", event.UserID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading event id: %w", err)
	}
	event.ID = id
	return nil
}

// EventsForUser returns userID's events oldest first. Events sharing a
// timestamp come back in insertion order.
func (db *DB) EventsForUser(ctx context.Context, userID int64) ([]model.Event, error) {
	events := make([]model.Event, 0)
	err := db.eachRow(ctx,
		`SELECT `+eventColumns+` FROM feed_events WHERE user_id = ? ORDER BY timestamp ASC, id ASC`,
		[]any{userID},
		func(s rowScanner) error {
			e, err := scanEvent(s)
			if err != nil {
				return err
			}
			events = append(events, e)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing events of user %d: %w", userID, err)
	}
	return events, nil
}

// LastEvent returns the most recently inserted event for the triple, or nil.
// Insertion order wins over timestamps, which can go backwards.
func (db *DB) LastEvent(ctx context.Context, userID int64, eventType model.EventType, entityID int64) (*model.Event, error) {
	e, err := scanEvent(db.conn.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM feed_events
		 WHERE user_id = ? AND event_type = ? AND entity_id = ?
		 ORDER BY id DESC LIMIT 1`,
		userID, string(eventType), entityID,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: reading last %s event of user %d: %w", eventType, userID, err)
	}
	return &e, nil
}
