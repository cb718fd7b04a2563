package calendar

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrRateLimited marks destination quota errors. The syncer retries
	// these with backoff; every other error fails the fixture immediately.
	ErrRateLimited = errors.New("calendar: rate limited")

	// ErrEventExists is returned by providers that detect an id collision
	// on insert.
	ErrEventExists = errors.New("calendar: event already exists")

	// ErrEventNotFound is returned by update and delete when the id is
	// unknown to the destination.
	ErrEventNotFound = errors.New("calendar: event not found")
)

// API is the destination calendar behind the reconcile engine. How calls
// reach the real service (transport, auth, token refresh) is the provider's
// business; the engine only needs these five operations.
//
// FindEvent returns (nil, nil) when no event within the window carries the
// fixture id. Absence is an expected outcome, not an error.
type API interface {
	FindEvent(ctx context.Context, fixtureID string, timeMin time.Time) (*Event, error)
	ListEvents(ctx context.Context, syncTag string, timeMin time.Time) ([]*Event, error)
	InsertEvent(ctx context.Context, ev *Event) (*Event, error)
	UpdateEvent(ctx context.Context, ev *Event) (*Event, error)
	DeleteEvent(ctx context.Context, id string) error
}
