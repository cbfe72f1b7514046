package model

// EventType classifies what a feed event is about.
type EventType string

const (
	EventReview EventType = "REVIEW"
	EventFriend EventType = "FRIEND"
	EventLike   EventType = "LIKE"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventReview, EventFriend, EventLike:
		return true
	}
	return false
}

// Operation is the kind of change an event records.
type Operation string

const (
	OpAdd    Operation = "ADD"
	OpRemove Operation = "REMOVE"
	OpUpdate Operation = "UPDATE"
)

// Valid reports whether o is one of the known operations.
func (o Operation) Valid() bool {
	switch o {
	case OpAdd, OpRemove, OpUpdate:
		return true
	}
	return false
}

// Event is one append-only entry of a user's activity feed.
// Timestamp is Unix milliseconds, assigned by the server.
type Event struct {
	ID        int64     `json:"eventId"`
	UserID    int64     `json:"userId"`
	EntityID  int64     `json:"entityId"`
	EventType EventType `json:"eventType"`
	Operation Operation `json:"operation"`
	Timestamp int64     `json:"timestamp"`
}
