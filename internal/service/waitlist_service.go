package service

import (
	"context"
	"time"

	"github.com/mahimasingh04/OpenEvent/internal/domain"
	"github.com/mahimasingh04/OpenEvent/internal/metrics"
	"github.com/mahimasingh04/OpenEvent/pkg/saga"
	"github.com/mahimasingh04/OpenEvent/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// WaitlistService defines the waitlist for sold-out tiers
type WaitlistService interface {
	// Join records the holder's demand, replacing an earlier entry
	Join(ctx context.Context, eventID uint64, holder string, tier int, quantity int64) (*domain.WaitlistEntry, error)

	// Leave deactivates the holder's entry
	Leave(ctx context.Context, eventID uint64, holder string) error

	// Fill settles part or all of an entry at base price; operators only
	Fill(ctx context.Context, eventID uint64, holder string, quantity int64, caller string) (*domain.Receipt, error)
}

type waitlistService struct {
	*core
}

// NewWaitlistService creates a new waitlist service
func NewWaitlistService(deps *Dependencies, cfg *EngineConfig) WaitlistService {
	return &waitlistService{core: newCore(deps, cfg)}
}

func (s *waitlistService) Join(ctx context.Context, eventID uint64, holder string, tier int, quantity int64) (*domain.WaitlistEntry, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.waitlist.join")
	defer span.End()

	holder = domain.NormalizeAccount(holder)
	span.SetAttributes(attribute.Int64("event_id", int64(eventID)), attribute.Int("tier", tier), attribute.Int64("quantity", quantity))

	var entry domain.WaitlistEntry
	err := s.transact(ctx, "waitlist_join", eventID, func(ctx context.Context, state *domain.EventState, now time.Time) (*saga.Definition, error) {
		if err := state.Event.EnsureOpen(now); err != nil {
			return nil, err
		}
		w, err := state.JoinWaitlist(holder, tier, quantity, now)
		if err != nil {
			return nil, err
		}
		entry = *w
		return nil, nil
	})
	if err != nil {
		return nil, fail(ctx, span, "waitlist_join", err)
	}

	s.publish(ctx, domain.EngineEventWaitlistJoined, eventID, holder, entry)
	return &entry, nil
}

func (s *waitlistService) Leave(ctx context.Context, eventID uint64, holder string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.waitlist.leave")
	defer span.End()

	holder = domain.NormalizeAccount(holder)
	err := s.transact(ctx, "waitlist_leave", eventID, func(ctx context.Context, state *domain.EventState, now time.Time) (*saga.Definition, error) {
		return nil, state.LeaveWaitlist(holder)
	})
	if err != nil {
		return fail(ctx, span, "waitlist_leave", err)
	}

	s.publish(ctx, domain.EngineEventWaitlistLeft, eventID, holder, nil)
	return nil
}

// Fill settles through the same reservation and saga path as a purchase,
// priced at base price with no early-bird units and no promotion.
func (s *waitlistService) Fill(ctx context.Context, eventID uint64, holder string, quantity int64, caller string) (*domain.Receipt, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.waitlist.fill")
	defer span.End()

	holder = domain.NormalizeAccount(holder)
	span.SetAttributes(attribute.Int64("event_id", int64(eventID)), attribute.String("holder", holder), attribute.Int64("quantity", quantity))

	var receipt *domain.Receipt
	err := s.transact(ctx, "waitlist_fill", eventID, func(ctx context.Context, state *domain.EventState, now time.Time) (*saga.Definition, error) {
		if err := s.authorizeOperator(&state.Event, caller); err != nil {
			return nil, err
		}
		if err := state.Event.EnsureOpen(now); err != nil {
			return nil, err
		}
		entry, err := state.ActiveWaitlistEntry(holder)
		if err != nil {
			return nil, err
		}
		if err := entry.Satisfy(quantity); err != nil {
			return nil, err
		}
		tier, err := state.Tier(entry.Tier)
		if err != nil {
			return nil, err
		}
		if !tier.IsActive {
			return nil, domain.ErrTierInactive
		}

		quote, err := tier.BaseQuote(quantity)
		if err != nil {
			return nil, err
		}
		r, def, err := s.settleSale(state, "waitlist_fill", holder, entry.Tier, quantity, quote, 0)
		if err != nil {
			return nil, err
		}
		receipt = r
		return def, nil
	})
	if err != nil {
		return nil, fail(ctx, span, "waitlist_fill", err)
	}

	metrics.RecordWaitlistFill(ctx, eventID, quantity)
	metrics.RecordSale(ctx, eventID, receipt.Tier, receipt.Quantity, receipt.FinalPrice, 0)
	s.publish(ctx, domain.EngineEventWaitlistFilled, eventID, caller, receipt)
	return receipt, nil
}
