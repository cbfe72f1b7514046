// Package service contains the business logic layer of the application.
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces rules, orchestrates
//	Repository (data layer)  → reads/writes the database
//
// Services take repository interfaces, never *sqlite.DB, and return
// apperror kinds for the handler to translate into status codes. Store
// failures are logged here at Error and propagated wrapped.
//
// Any operation that changes social state (friendships, likes, reviews)
// appends an event to the acting user's feed through FeedService, and only
// when something actually changed.
package service

import (
	"log/slog"
	"time"
)

// Clock returns the current time. Services default to time.Now; tests
// substitute a fixed clock.
type Clock func() time.Time

func errAttr(err error) slog.Attr {
	return slog.String("error", err.Error())
}
