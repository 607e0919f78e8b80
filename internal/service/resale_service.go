package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mahimasingh04/OpenEvent/internal/domain"
	"github.com/mahimasingh04/OpenEvent/internal/metrics"
	"github.com/mahimasingh04/OpenEvent/pkg/saga"
	"github.com/mahimasingh04/OpenEvent/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// ListingRequest offers held tickets on the secondary market
type ListingRequest struct {
	EventID  uint64
	Seller   string
	Tier     int
	Quantity int64
	AskPrice int64
}

// ResaleService defines the secondary market
type ResaleService interface {
	// List escrows tickets into a new listing
	List(ctx context.Context, req *ListingRequest) (*domain.ResaleListing, error)

	// Buy fills a listing in full
	Buy(ctx context.Context, listingID uint64, buyer string) (*domain.ResaleReceipt, error)

	// CancelListing returns a listing's escrow to its seller
	CancelListing(ctx context.Context, listingID uint64, caller string) (*domain.ResaleListing, error)

	// ListListings returns an event's active listings
	ListListings(ctx context.Context, eventID uint64) ([]domain.ResaleListing, error)
}

type resaleService struct {
	*core
	feePercent int64
}

// NewResaleService creates a new resale service
func NewResaleService(deps *Dependencies, cfg *EngineConfig) ResaleService {
	if cfg == nil {
		cfg = DefaultEngineConfig()
	}
	return &resaleService{
		core:       newCore(deps, cfg),
		feePercent: cfg.ResaleFeePercent,
	}
}

// List escrows tickets at an ask above the seller's cost basis
func (s *resaleService) List(ctx context.Context, req *ListingRequest) (*domain.ResaleListing, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.resale.list")
	defer span.End()

	seller := domain.NormalizeAccount(req.Seller)
	span.SetAttributes(
		attribute.Int64("event_id", int64(req.EventID)),
		attribute.String("seller", seller),
		attribute.Int("tier", req.Tier),
		attribute.Int64("quantity", req.Quantity),
		attribute.Int64("ask_price", req.AskPrice),
	)

	id, err := s.sequencer.NextListingID(ctx)
	if err != nil {
		return nil, fail(ctx, span, "list", fmt.Errorf("failed to allocate listing id: %w", err))
	}

	var listing domain.ResaleListing
	err = s.transact(ctx, "list", req.EventID, func(ctx context.Context, state *domain.EventState, now time.Time) (*saga.Definition, error) {
		if err := state.Event.EnsureOpen(now); err != nil {
			return nil, err
		}
		l, err := state.OpenListing(id, seller, req.Tier, req.Quantity, req.AskPrice, now)
		if err != nil {
			return nil, err
		}
		listing = *l
		return nil, nil
	})
	if err != nil {
		return nil, fail(ctx, span, "list", err)
	}

	s.publish(ctx, domain.EngineEventListingCreated, req.EventID, seller, listing)
	return &listing, nil
}

// Buy charges the buyer the full listing and splits it between platform fee and seller
func (s *resaleService) Buy(ctx context.Context, listingID uint64, buyer string) (*domain.ResaleReceipt, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.resale.buy")
	defer span.End()

	buyer = domain.NormalizeAccount(buyer)
	span.SetAttributes(attribute.Int64("listing_id", int64(listingID)), attribute.String("buyer", buyer))

	eventID, err := s.events.EventIDForListing(ctx, listingID)
	if err != nil {
		return nil, fail(ctx, span, "buy", err)
	}

	var receipt *domain.ResaleReceipt
	err = s.transact(ctx, "buy", eventID, func(ctx context.Context, state *domain.EventState, now time.Time) (*saga.Definition, error) {
		if err := state.Event.EnsureOpen(now); err != nil {
			return nil, err
		}
		l, err := state.FillListing(listingID, buyer)
		if err != nil {
			return nil, err
		}
		total := l.Total()
		fee, proceeds := domain.SplitResale(total, s.feePercent)
		receipt = &domain.ResaleReceipt{
			ListingID:      l.ID,
			EventID:        eventID,
			Seller:         l.Seller,
			Buyer:          buyer,
			Tier:           l.Tier,
			Quantity:       l.Quantity,
			Total:          total,
			Fee:            fee,
			SellerProceeds: proceeds,
		}
		return saga.NewDefinition("resale").
			AddStep(s.collectStep("debit_buyer", buyer, total)).
			AddStep(s.payoutStep("credit_platform", s.platformOwner, fee)).
			AddStep(s.payoutStep("credit_seller", l.Seller, proceeds)), nil
	})
	if err != nil {
		return nil, fail(ctx, span, "buy", err)
	}

	metrics.RecordResale(ctx, eventID, receipt.Total, receipt.Fee)
	s.publish(ctx, domain.EngineEventListingSold, eventID, buyer, receipt)
	return receipt, nil
}

// CancelListing lets the seller withdraw an active listing
func (s *resaleService) CancelListing(ctx context.Context, listingID uint64, caller string) (*domain.ResaleListing, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.resale.cancel_listing")
	defer span.End()

	caller = domain.NormalizeAccount(caller)
	span.SetAttributes(attribute.Int64("listing_id", int64(listingID)))

	eventID, err := s.events.EventIDForListing(ctx, listingID)
	if err != nil {
		return nil, fail(ctx, span, "cancel_listing", err)
	}

	var listing domain.ResaleListing
	err = s.transact(ctx, "cancel_listing", eventID, func(ctx context.Context, state *domain.EventState, now time.Time) (*saga.Definition, error) {
		l, err := state.CancelListing(listingID, caller)
		if err != nil {
			return nil, err
		}
		listing = *l
		return nil, nil
	})
	if err != nil {
		return nil, fail(ctx, span, "cancel_listing", err)
	}

	s.publish(ctx, domain.EngineEventListingCancelled, eventID, caller, listing)
	return &listing, nil
}

// ListListings returns the active listings of an event ordered by id
func (s *resaleService) ListListings(ctx context.Context, eventID uint64) ([]domain.ResaleListing, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.resale.list_listings")
	defer span.End()

	state, err := s.snapshot(ctx, eventID)
	if err != nil {
		return nil, fail(ctx, span, "list_listings", err)
	}
	return state.ActiveListings(), nil
}
