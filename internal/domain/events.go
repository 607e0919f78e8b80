package domain

import (
	"strconv"
	"time"
)

// EngineEventType names a committed state change published downstream
type EngineEventType string

const (
	EngineEventCreated            EngineEventType = "event.created"
	EngineEventUpdated            EngineEventType = "event.updated"
	EngineEventCancelled          EngineEventType = "event.cancelled"
	EngineEventRescheduled        EngineEventType = "event.rescheduled"
	EngineEventTierRepriced       EngineEventType = "tier.repriced"
	EngineEventTicketsPurchased   EngineEventType = "tickets.purchased"
	EngineEventTicketsTransferred EngineEventType = "tickets.transferred"
	EngineEventListingCreated     EngineEventType = "listing.created"
	EngineEventListingSold        EngineEventType = "listing.sold"
	EngineEventListingCancelled   EngineEventType = "listing.cancelled"
	EngineEventWaitlistJoined     EngineEventType = "waitlist.joined"
	EngineEventWaitlistLeft       EngineEventType = "waitlist.left"
	EngineEventWaitlistFilled     EngineEventType = "waitlist.filled"
	EngineEventPromotionCreated   EngineEventType = "promotion.created"
	EngineEventPromotionDisabled  EngineEventType = "promotion.deactivated"
	EngineEventRefundPaid         EngineEventType = "refund.paid"
	EngineEventInsuranceBought    EngineEventType = "insurance.purchased"
	EngineEventInsurancePaid      EngineEventType = "insurance.claimed"
	EngineEventCheckedIn          EngineEventType = "checkin.recorded"
)

// EngineEvent is the envelope written to the event stream
type EngineEvent struct {
	ID        string          `json:"id"`
	Type      EngineEventType `json:"type"`
	EventID   uint64          `json:"event_id"`
	Actor     string          `json:"actor"`
	Data      interface{}     `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Key partitions the stream by event so per-event order is kept
func (e *EngineEvent) Key() string {
	return strconv.FormatUint(e.EventID, 10)
}
