package domain

import (
	"strings"
	"time"
)

// MaxOrganizerSharePercent caps the organizer's revenue share
const MaxOrganizerSharePercent = 90

// Event represents a ticketed event owned by one organizer
type Event struct {
	ID                    uint64    `json:"id"`
	Name                  string    `json:"name"`
	Description           string    `json:"description"`
	Venue                 string    `json:"venue"`
	EventDate             time.Time `json:"event_date"`
	OriginalDate          time.Time `json:"original_date,omitempty"`
	Rescheduled           bool      `json:"rescheduled"`
	Organizer             string    `json:"organizer"`
	OrganizerSharePercent int64     `json:"organizer_share_percent"`
	MaxCapacity           int64     `json:"max_capacity"`
	CurrentCapacity       int64     `json:"current_capacity"`
	IsActive              bool      `json:"is_active"`
	IsCancelled           bool      `json:"is_cancelled"`
	TotalRevenue          int64     `json:"total_revenue"`
	TotalSales            int64     `json:"total_sales"`
	CreatedAt             time.Time `json:"created_at"`
}

// RemainingTickets returns capacity not yet sold
func (e *Event) RemainingTickets() int64 {
	return e.MaxCapacity - e.CurrentCapacity
}

// IsOperator reports whether caller may run privileged operations on the event
func (e *Event) IsOperator(caller, platformOwner string) bool {
	caller = NormalizeAccount(caller)
	return caller != "" && (caller == e.Organizer || caller == NormalizeAccount(platformOwner))
}

// AuthorizeOperator is the single organizer-or-owner check
func AuthorizeOperator(e *Event, caller, platformOwner string) error {
	if !e.IsOperator(caller, platformOwner) {
		return ErrUnauthorized
	}
	return nil
}

// EnsureOpen rejects operations on events that are cancelled, inactive or already held
func (e *Event) EnsureOpen(now time.Time) error {
	if e.IsCancelled {
		return ErrEventCancelled
	}
	if !e.IsActive {
		return ErrEventInactive
	}
	if !now.Before(e.EventDate) {
		return ErrEventPassed
	}
	return nil
}

// EnsureCancelled is the gate for refund and insurance claims
func (e *Event) EnsureCancelled() error {
	if !e.IsCancelled {
		return ErrEventNotCancelled
	}
	return nil
}

// EventParams describes a new event
type EventParams struct {
	Name                  string
	Description           string
	Venue                 string
	EventDate             time.Time
	Organizer             string
	OrganizerSharePercent int64
	MaxCapacity           int64
	Tiers                 []TierParams
}

// NewEventState validates params and builds the initial state of an event
func NewEventState(id uint64, p EventParams, now time.Time) (*EventState, error) {
	organizer := NormalizeAccount(p.Organizer)
	if organizer == "" {
		return nil, ErrInvalidAccount
	}
	if !p.EventDate.After(now) {
		return nil, ErrInvalidEventDate
	}
	if p.OrganizerSharePercent < 0 || p.OrganizerSharePercent > MaxOrganizerSharePercent {
		return nil, ErrInvalidSharePercent
	}
	if p.MaxCapacity <= 0 {
		return nil, ErrInvalidCapacity
	}

	s := newEventState(Event{
		ID:                    id,
		Name:                  strings.TrimSpace(p.Name),
		Description:           p.Description,
		Venue:                 p.Venue,
		EventDate:             p.EventDate.UTC(),
		Organizer:             organizer,
		OrganizerSharePercent: p.OrganizerSharePercent,
		MaxCapacity:           p.MaxCapacity,
		IsActive:              true,
		CreatedAt:             now,
	})
	for _, tp := range p.Tiers {
		if err := s.AddTier(tp); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Reschedule moves the event to a new future date, remembering the first original date
func (e *Event) Reschedule(newDate, now time.Time) error {
	if !newDate.After(now) {
		return ErrInvalidEventDate
	}
	if !e.Rescheduled {
		e.OriginalDate = e.EventDate
		e.Rescheduled = true
	}
	e.EventDate = newDate.UTC()
	return nil
}

// Cancel performs the one-way transition to cancelled
func (e *Event) Cancel() error {
	if e.IsCancelled {
		return ErrEventCancelled
	}
	e.IsActive = false
	e.IsCancelled = true
	return nil
}
