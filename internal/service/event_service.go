package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mahimasingh04/OpenEvent/internal/domain"
	"github.com/mahimasingh04/OpenEvent/pkg/saga"
	"github.com/mahimasingh04/OpenEvent/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// TierUpdate changes a tier's availability or perks; nil fields are left alone
type TierUpdate struct {
	Active *bool
	Perks  []string
}

// TransferRequest moves held tickets between holders
type TransferRequest struct {
	EventID  uint64
	From     string
	To       string
	Tier     int
	Quantity int64
}

// EventService defines event administration and read queries
type EventService interface {
	// CreateEvent creates an event organized by caller
	CreateEvent(ctx context.Context, caller string, params domain.EventParams) (*domain.EventState, error)

	// AddTier appends a tier and returns its index
	AddTier(ctx context.Context, eventID uint64, params domain.TierParams, caller string) (int, error)

	// SetTierActive opens or closes a tier for sale
	SetTierActive(ctx context.Context, eventID uint64, tier int, active bool, caller string) error

	// SetTierPerks replaces a tier's perks
	SetTierPerks(ctx context.Context, eventID uint64, tier int, perks []string, caller string) error

	// UpdateTier applies a combined tier change atomically
	UpdateTier(ctx context.Context, eventID uint64, tier int, update TierUpdate, caller string) (*domain.TicketTier, error)

	// RescheduleEvent moves the event to a new future date
	RescheduleEvent(ctx context.Context, eventID uint64, newDate time.Time, caller string) (*domain.Event, error)

	// CancelEvent cancels the event and unwinds its active listings
	CancelEvent(ctx context.Context, eventID uint64, caller string) (*domain.Event, error)

	// UpdateDynamicPricing reprices a tier by demand and returns the new base price
	UpdateDynamicPricing(ctx context.Context, eventID uint64, tier int, caller string) (int64, error)

	// TransferTickets moves tickets from one holder to another at the sender's cost basis
	TransferTickets(ctx context.Context, req *TransferRequest) error

	// GetEvent returns the event with its tiers
	GetEvent(ctx context.Context, eventID uint64) (*domain.EventState, error)

	// ListTiers returns the event's tiers in index order
	ListTiers(ctx context.Context, eventID uint64) ([]domain.TicketTier, error)

	// GetHoldings returns the holder's non-empty positions
	GetHoldings(ctx context.Context, eventID uint64, holder string) ([]domain.Holding, error)

	// GetAnalytics summarizes sales, escrow, waitlist and check-ins
	GetAnalytics(ctx context.Context, eventID uint64) (*domain.Analytics, error)
}

type eventService struct {
	*core
	priceInterval time.Duration
	maxMultiplier int64
}

// NewEventService creates a new event service
func NewEventService(deps *Dependencies, cfg *EngineConfig) EventService {
	if cfg == nil {
		cfg = DefaultEngineConfig()
	}
	maxMultiplier := cfg.MaxDemandMultiplier
	if maxMultiplier <= 0 {
		maxMultiplier = domain.DefaultMaxDemandMultiplier
	}
	return &eventService{
		core:          newCore(deps, cfg),
		priceInterval: cfg.PriceUpdateInterval,
		maxMultiplier: maxMultiplier,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, caller string, params domain.EventParams) (*domain.EventState, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.create")
	defer span.End()

	params.Organizer = caller
	span.SetAttributes(
		attribute.String("organizer", domain.NormalizeAccount(caller)),
		attribute.Int64("max_capacity", params.MaxCapacity),
		attribute.Int("tiers", len(params.Tiers)),
	)

	id, err := s.sequencer.NextEventID(ctx)
	if err != nil {
		return nil, fail(ctx, span, "create_event", fmt.Errorf("failed to allocate event id: %w", err))
	}
	state, err := domain.NewEventState(id, params, s.clock.Now())
	if err != nil {
		return nil, fail(ctx, span, "create_event", err)
	}
	if err := s.events.Create(ctx, state); err != nil {
		return nil, fail(ctx, span, "create_event", fmt.Errorf("failed to create event: %w", err))
	}

	span.SetAttributes(attribute.Int64("event_id", int64(id)))
	s.publish(ctx, domain.EngineEventCreated, id, state.Event.Organizer, state.Event)
	return state, nil
}

func (s *eventService) AddTier(ctx context.Context, eventID uint64, params domain.TierParams, caller string) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.add_tier")
	defer span.End()
	span.SetAttributes(attribute.Int64("event_id", int64(eventID)))

	var index int
	var tier domain.TicketTier
	err := s.transact(ctx, "add_tier", eventID, func(ctx context.Context, state *domain.EventState, now time.Time) (*saga.Definition, error) {
		if err := s.authorizeOperator(&state.Event, caller); err != nil {
			return nil, err
		}
		if err := state.Event.EnsureOpen(now); err != nil {
			return nil, err
		}
		if err := state.AddTier(params); err != nil {
			return nil, err
		}
		index = len(state.Tiers) - 1
		tier = *state.Tiers[index]
		return nil, nil
	})
	if err != nil {
		return 0, fail(ctx, span, "add_tier", err)
	}

	s.publish(ctx, domain.EngineEventUpdated, eventID, domain.NormalizeAccount(caller), map[string]interface{}{"tier_added": index, "tier": tier})
	return index, nil
}

func (s *eventService) SetTierActive(ctx context.Context, eventID uint64, tier int, active bool, caller string) error {
	_, err := s.UpdateTier(ctx, eventID, tier, TierUpdate{Active: &active}, caller)
	return err
}

func (s *eventService) SetTierPerks(ctx context.Context, eventID uint64, tier int, perks []string, caller string) error {
	if perks == nil {
		perks = []string{}
	}
	_, err := s.UpdateTier(ctx, eventID, tier, TierUpdate{Perks: perks}, caller)
	return err
}

func (s *eventService) UpdateTier(ctx context.Context, eventID uint64, tier int, update TierUpdate, caller string) (*domain.TicketTier, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.update_tier")
	defer span.End()
	span.SetAttributes(attribute.Int64("event_id", int64(eventID)), attribute.Int("tier", tier))

	var updated domain.TicketTier
	err := s.transact(ctx, "update_tier", eventID, func(ctx context.Context, state *domain.EventState, now time.Time) (*saga.Definition, error) {
		if err := s.authorizeOperator(&state.Event, caller); err != nil {
			return nil, err
		}
		if state.Event.IsCancelled {
			return nil, domain.ErrEventCancelled
		}
		t, err := state.Tier(tier)
		if err != nil {
			return nil, err
		}
		if update.Active != nil {
			t.IsActive = *update.Active
		}
		if update.Perks != nil {
			t.SetPerks(update.Perks)
		}
		updated = *t
		return nil, nil
	})
	if err != nil {
		return nil, fail(ctx, span, "update_tier", err)
	}

	s.publish(ctx, domain.EngineEventUpdated, eventID, domain.NormalizeAccount(caller), map[string]interface{}{"tier_updated": tier, "tier": updated})
	return &updated, nil
}

func (s *eventService) RescheduleEvent(ctx context.Context, eventID uint64, newDate time.Time, caller string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.reschedule")
	defer span.End()
	span.SetAttributes(attribute.Int64("event_id", int64(eventID)), attribute.String("new_date", newDate.UTC().Format(time.RFC3339)))

	var event domain.Event
	err := s.transact(ctx, "reschedule", eventID, func(ctx context.Context, state *domain.EventState, now time.Time) (*saga.Definition, error) {
		if err := s.authorizeOperator(&state.Event, caller); err != nil {
			return nil, err
		}
		if state.Event.IsCancelled {
			return nil, domain.ErrEventCancelled
		}
		if err := state.Reschedule(newDate, now); err != nil {
			return nil, err
		}
		event = state.Event
		return nil, nil
	})
	if err != nil {
		return nil, fail(ctx, span, "reschedule", err)
	}

	s.publish(ctx, domain.EngineEventRescheduled, eventID, domain.NormalizeAccount(caller), event)
	return &event, nil
}

func (s *eventService) CancelEvent(ctx context.Context, eventID uint64, caller string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.cancel")
	defer span.End()
	span.SetAttributes(attribute.Int64("event_id", int64(eventID)))

	var event domain.Event
	var unwound int
	err := s.transact(ctx, "cancel_event", eventID, func(ctx context.Context, state *domain.EventState, now time.Time) (*saga.Definition, error) {
		if err := s.authorizeOperator(&state.Event, caller); err != nil {
			return nil, err
		}
		if err := state.Event.Cancel(); err != nil {
			return nil, err
		}
		unwound = state.UnwindListings()
		event = state.Event
		return nil, nil
	})
	if err != nil {
		return nil, fail(ctx, span, "cancel_event", err)
	}

	span.SetAttributes(attribute.Int("listings_unwound", unwound))
	s.publish(ctx, domain.EngineEventCancelled, eventID, domain.NormalizeAccount(caller), map[string]interface{}{"event": event, "listings_unwound": unwound})
	return &event, nil
}

func (s *eventService) UpdateDynamicPricing(ctx context.Context, eventID uint64, tier int, caller string) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.update_dynamic_pricing")
	defer span.End()
	span.SetAttributes(attribute.Int64("event_id", int64(eventID)), attribute.Int("tier", tier))

	var price, multiplier int64
	err := s.transact(ctx, "reprice", eventID, func(ctx context.Context, state *domain.EventState, now time.Time) (*saga.Definition, error) {
		if err := s.authorizeOperator(&state.Event, caller); err != nil {
			return nil, err
		}
		if state.Event.IsCancelled {
			return nil, domain.ErrEventCancelled
		}
		t, err := state.Tier(tier)
		if err != nil {
			return nil, err
		}
		p, err := t.Reprice(now, s.priceInterval, s.maxMultiplier)
		if err != nil {
			return nil, err
		}
		price, multiplier = p, t.DemandMultiplier
		return nil, nil
	})
	if err != nil {
		return 0, fail(ctx, span, "reprice", err)
	}

	span.SetAttributes(attribute.Int64("base_price", price), attribute.Int64("demand_multiplier", multiplier))
	s.publish(ctx, domain.EngineEventTierRepriced, eventID, domain.NormalizeAccount(caller), map[string]int64{
		"tier":              int64(tier),
		"base_price":        price,
		"demand_multiplier": multiplier,
	})
	return price, nil
}

func (s *eventService) TransferTickets(ctx context.Context, req *TransferRequest) error {
	ctx, span := telemetry.StartSpan(ctx, "service.event.transfer_tickets")
	defer span.End()

	from, to := domain.NormalizeAccount(req.From), domain.NormalizeAccount(req.To)
	span.SetAttributes(
		attribute.Int64("event_id", int64(req.EventID)),
		attribute.String("from", from),
		attribute.String("to", to),
		attribute.Int64("quantity", req.Quantity),
	)
	if from == "" || to == "" {
		return fail(ctx, span, "transfer", domain.ErrInvalidAccount)
	}
	if from == to {
		return fail(ctx, span, "transfer", domain.ErrSelfTransfer)
	}

	err := s.transact(ctx, "transfer", req.EventID, func(ctx context.Context, state *domain.EventState, now time.Time) (*saga.Definition, error) {
		if err := state.Event.EnsureOpen(now); err != nil {
			return nil, err
		}
		if _, err := state.Tier(req.Tier); err != nil {
			return nil, err
		}
		basis := state.Holding(from, req.Tier).CostBasis
		if err := state.Debit(from, req.Tier, req.Quantity); err != nil {
			return nil, err
		}
		state.CreditTransfer(to, req.Tier, req.Quantity, basis)
		return nil, nil
	})
	if err != nil {
		return fail(ctx, span, "transfer", err)
	}

	s.publish(ctx, domain.EngineEventTicketsTransferred, req.EventID, from, map[string]interface{}{
		"to":       to,
		"tier":     req.Tier,
		"quantity": req.Quantity,
	})
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID uint64) (*domain.EventState, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.get")
	defer span.End()

	state, err := s.snapshot(ctx, eventID)
	if err != nil {
		return nil, fail(ctx, span, "get_event", err)
	}
	return state, nil
}

func (s *eventService) ListTiers(ctx context.Context, eventID uint64) ([]domain.TicketTier, error) {
	state, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	tiers := make([]domain.TicketTier, len(state.Tiers))
	for i, t := range state.Tiers {
		tiers[i] = *t
	}
	return tiers, nil
}

func (s *eventService) GetHoldings(ctx context.Context, eventID uint64, holder string) ([]domain.Holding, error) {
	state, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return state.HoldingsOf(domain.NormalizeAccount(holder)), nil
}

func (s *eventService) GetAnalytics(ctx context.Context, eventID uint64) (*domain.Analytics, error) {
	state, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	a := state.Analytics()
	return &a, nil
}
