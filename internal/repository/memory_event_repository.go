package repository

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/mahimasingh04/OpenEvent/internal/domain"
)

// ErrEventExists is returned when creating an event id twice
var ErrEventExists = errors.New("event already exists")

type memoryEntry struct {
	mu    sync.Mutex
	state *domain.EventState
}

// MemoryEventRepository keeps event state in process memory behind one mutex per event
type MemoryEventRepository struct {
	mu       sync.RWMutex
	events   map[uint64]*memoryEntry
	listings map[uint64]uint64
}

// NewMemoryEventRepository creates an empty repository
func NewMemoryEventRepository() *MemoryEventRepository {
	return &MemoryEventRepository{
		events:   make(map[uint64]*memoryEntry),
		listings: make(map[uint64]uint64),
	}
}

// Create stores a copy of state
func (r *MemoryEventRepository) Create(ctx context.Context, state *domain.EventState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[state.Event.ID]; ok {
		return ErrEventExists
	}
	r.events[state.Event.ID] = &memoryEntry{state: state.Clone()}
	r.indexListingsLocked(state)
	return nil
}

// Get returns a copy of the event's state
func (r *MemoryEventRepository) Get(ctx context.Context, id uint64) (*domain.EventState, error) {
	entry, err := r.entry(id)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.state.Clone(), nil
}

// Update runs fn on a copy under the event's mutex and keeps the copy only if fn succeeds
func (r *MemoryEventRepository) Update(ctx context.Context, id uint64, fn UpdateFunc) error {
	entry, err := r.entry(id)
	if err != nil {
		return err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := entry.state.Clone()
	if err := fn(ctx, work); err != nil {
		return err
	}
	entry.state = work

	r.mu.Lock()
	r.indexListingsLocked(work)
	r.mu.Unlock()
	return nil
}

// EventIDForListing resolves a listing id
func (r *MemoryEventRepository) EventIDForListing(ctx context.Context, listingID uint64) (uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.listings[listingID]
	if !ok {
		return 0, domain.ErrListingNotFound
	}
	return id, nil
}

func (r *MemoryEventRepository) entry(id uint64) (*memoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return entry, nil
}

func (r *MemoryEventRepository) indexListingsLocked(state *domain.EventState) {
	for id := range state.Listings {
		r.listings[id] = state.Event.ID
	}
}

// MemorySequencer hands out ids from in-process counters
type MemorySequencer struct {
	nextEvent   atomic.Uint64
	nextListing atomic.Uint64
}

// NewMemorySequencer starts the counters at the given first ids
func NewMemorySequencer(firstEventID, firstListingID uint64) *MemorySequencer {
	s := &MemorySequencer{}
	s.nextEvent.Store(firstEventID)
	s.nextListing.Store(firstListingID)
	return s
}

// NextEventID returns the next event id
func (s *MemorySequencer) NextEventID(ctx context.Context) (uint64, error) {
	return s.nextEvent.Add(1) - 1, nil
}

// NextListingID returns the next listing id
func (s *MemorySequencer) NextListingID(ctx context.Context) (uint64, error) {
	return s.nextListing.Add(1) - 1, nil
}
