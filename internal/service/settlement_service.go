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

// PurchaseRequest is a primary-market purchase
type PurchaseRequest struct {
	EventID   uint64
	Buyer     string
	Tier      int
	Quantity  int64
	PromoCode string
}

// SettlementService defines the primary sale path
type SettlementService interface {
	// Purchase prices, reserves and settles tickets in one step
	Purchase(ctx context.Context, req *PurchaseRequest) (*domain.Receipt, error)
}

type settlementService struct {
	*core
}

// NewSettlementService creates a new settlement service
func NewSettlementService(deps *Dependencies, cfg *EngineConfig) SettlementService {
	return &settlementService{core: newCore(deps, cfg)}
}

// Purchase settles a purchase. A failed ledger transfer rolls back the
// reservation, the early-bird allocation and the promotion use.
func (s *settlementService) Purchase(ctx context.Context, req *PurchaseRequest) (*domain.Receipt, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.settlement.purchase")
	defer span.End()

	buyer := domain.NormalizeAccount(req.Buyer)
	span.SetAttributes(
		attribute.Int64("event_id", int64(req.EventID)),
		attribute.String("buyer", buyer),
		attribute.Int("tier", req.Tier),
		attribute.Int64("quantity", req.Quantity),
	)
	if buyer == "" {
		return nil, fail(ctx, span, "purchase", domain.ErrInvalidAccount)
	}

	started := time.Now()
	var receipt *domain.Receipt
	err := s.transact(ctx, "purchase", req.EventID, func(ctx context.Context, state *domain.EventState, now time.Time) (*saga.Definition, error) {
		if err := state.Event.EnsureOpen(now); err != nil {
			return nil, err
		}
		tier, err := state.Tier(req.Tier)
		if err != nil {
			return nil, err
		}
		if !tier.IsActive {
			return nil, domain.ErrTierInactive
		}
		if req.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}

		quote, err := tier.Quote(req.Quantity, now)
		if err != nil {
			return nil, err
		}
		var discount int64
		code := domain.NormalizePromoCode(req.PromoCode)
		if code != "" {
			promo, err := state.ConsumePromotion(code, now)
			if err != nil {
				return nil, err
			}
			discount = promo.Discount(quote.Total)
		}

		r, def, err := s.settleSale(state, "purchase", buyer, req.Tier, req.Quantity, quote, discount)
		if err != nil {
			return nil, err
		}
		r.PromoCode = code
		receipt = r
		return def, nil
	})
	if err != nil {
		return nil, fail(ctx, span, "purchase", err)
	}

	metrics.RecordSale(ctx, receipt.EventID, receipt.Tier, receipt.Quantity, receipt.FinalPrice, time.Since(started).Seconds())
	s.publish(ctx, domain.EngineEventTicketsPurchased, req.EventID, buyer, receipt)
	return receipt, nil
}

// settleSale reserves inventory, credits the buyer and returns the saga that
// moves the money: the buyer pays the treasury, which pays out the organizer
// and platform shares.
func (c *core) settleSale(state *domain.EventState, name, buyer string, tierIndex int, quantity int64, quote domain.Quote, discount int64) (*domain.Receipt, *saga.Definition, error) {
	if err := state.Reserve(tierIndex, quantity); err != nil {
		return nil, nil, err
	}
	tier := state.Tiers[tierIndex]
	tier.ApplyQuote(quote)

	final := quote.Total - discount
	organizerAmount, platformAmount := domain.SplitRevenue(final, state.Event.OrganizerSharePercent)
	basis := final / quantity

	state.CreditPurchase(buyer, tierIndex, quantity, basis)
	state.RecordSale(quantity, final)

	def := saga.NewDefinition(name).
		AddStep(c.collectStep("debit_buyer", buyer, final)).
		AddStep(c.payoutStep("credit_organizer", state.Event.Organizer, organizerAmount)).
		AddStep(c.payoutStep("credit_platform", c.platformOwner, platformAmount))

	return &domain.Receipt{
		EventID:          state.Event.ID,
		Buyer:            buyer,
		Tier:             tierIndex,
		Quantity:         quantity,
		UnitsAtEarlyBird: quote.EarlyBirdUnits,
		QuotedPrice:      quote.Total,
		Discount:         discount,
		FinalPrice:       final,
		OrganizerAmount:  organizerAmount,
		PlatformAmount:   platformAmount,
		CostBasis:        basis,
	}, def, nil
}
