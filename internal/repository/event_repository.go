package repository

import (
	"context"

	"github.com/mahimasingh04/OpenEvent/internal/domain"
)

// UpdateFunc mutates an event inside its critical section.
// Returning an error discards every mutation it made.
type UpdateFunc func(ctx context.Context, state *domain.EventState) error

// EventRepository stores per-event state with per-event atomic updates
type EventRepository interface {
	// Create persists a new event with its tiers
	Create(ctx context.Context, state *domain.EventState) error

	// Get returns a snapshot of an event's state
	Get(ctx context.Context, id uint64) (*domain.EventState, error)

	// Update runs fn with exclusive access to the event. Different events never contend.
	Update(ctx context.Context, id uint64, fn UpdateFunc) error

	// EventIDForListing resolves the event a resale listing belongs to
	EventIDForListing(ctx context.Context, listingID uint64) (uint64, error)
}

// Sequencer hands out event and listing ids
type Sequencer interface {
	NextEventID(ctx context.Context) (uint64, error)
	NextListingID(ctx context.Context) (uint64, error)
}
