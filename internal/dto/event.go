package dto

import (
	"time"

	"github.com/mahimasingh04/OpenEvent/internal/domain"
)

// TierRequest describes a tier in a create or add-tier request
type TierRequest struct {
	Name              string    `json:"name" binding:"required"`
	BasePrice         int64     `json:"base_price" binding:"required"`
	Quantity          int64     `json:"quantity" binding:"required"`
	EarlyBirdPrice    int64     `json:"early_bird_price,omitempty"`
	EarlyBirdEndTime  time.Time `json:"early_bird_end_time,omitempty"`
	EarlyBirdQuantity int64     `json:"early_bird_quantity,omitempty"`
	Perks             []string  `json:"perks,omitempty"`
}

// ToParams converts the request to domain params
func (r TierRequest) ToParams() domain.TierParams {
	return domain.TierParams{
		Name:              r.Name,
		BasePrice:         r.BasePrice,
		Quantity:          r.Quantity,
		EarlyBirdPrice:    r.EarlyBirdPrice,
		EarlyBirdEndTime:  r.EarlyBirdEndTime,
		EarlyBirdQuantity: r.EarlyBirdQuantity,
		Perks:             r.Perks,
	}
}

// CreateEventRequest represents request to create an event
type CreateEventRequest struct {
	Name                  string        `json:"name" binding:"required"`
	Description           string        `json:"description,omitempty"`
	Venue                 string        `json:"venue,omitempty"`
	EventDate             time.Time     `json:"event_date" binding:"required"`
	OrganizerSharePercent int64         `json:"organizer_share_percent"`
	MaxCapacity           int64         `json:"max_capacity" binding:"required"`
	Tiers                 []TierRequest `json:"tiers,omitempty" binding:"dive"`
}

// ToParams converts the request to domain params
func (r *CreateEventRequest) ToParams() domain.EventParams {
	tiers := make([]domain.TierParams, 0, len(r.Tiers))
	for _, t := range r.Tiers {
		tiers = append(tiers, t.ToParams())
	}
	return domain.EventParams{
		Name:                  r.Name,
		Description:           r.Description,
		Venue:                 r.Venue,
		EventDate:             r.EventDate,
		OrganizerSharePercent: r.OrganizerSharePercent,
		MaxCapacity:           r.MaxCapacity,
		Tiers:                 tiers,
	}
}

// RescheduleRequest moves an event to a new date
type RescheduleRequest struct {
	EventDate time.Time `json:"event_date" binding:"required"`
}

// UpdateTierRequest changes a tier's sale state and/or perks
type UpdateTierRequest struct {
	Active *bool    `json:"active,omitempty"`
	Perks  []string `json:"perks,omitempty"`
}

// EventResponse represents an event with its tiers
type EventResponse struct {
	domain.Event
	Tiers []domain.TicketTier `json:"tiers"`
}

// AddTierResponse carries the index of a new tier
type AddTierResponse struct {
	EventID uint64 `json:"event_id"`
	Tier    int    `json:"tier"`
}

// RepriceResponse carries a tier's new base price
type RepriceResponse struct {
	EventID   uint64 `json:"event_id"`
	Tier      int    `json:"tier"`
	BasePrice int64  `json:"base_price"`
}

// FromEventState converts an event state to its API form
func FromEventState(s *domain.EventState) *EventResponse {
	tiers := make([]domain.TicketTier, len(s.Tiers))
	for i, t := range s.Tiers {
		tiers[i] = *t
	}
	return &EventResponse{Event: s.Event, Tiers: tiers}
}
