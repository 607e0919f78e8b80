package service

import (
	"context"
	"testing"
	"time"

	"github.com/mahimasingh04/OpenEvent/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	state, err := f.events.CreateEvent(ctx, " ORG ", domain.EventParams{
		Name:                  "Launch Night",
		EventDate:             testNow.Add(time.Hour),
		Organizer:             "someone-else",
		OrganizerSharePercent: 70,
		MaxCapacity:           10,
		Tiers:                 []domain.TierParams{gaTier(100, 4), gaTier(200, 6)},
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), state.Event.ID)
	assert.Equal(t, "org", state.Event.Organizer, "caller becomes the organizer")
	assert.Len(t, state.Tiers, 2)
	assert.Equal(t, []domain.EngineEventType{domain.EngineEventCreated}, f.publisher.Types())

	tests := []struct {
		name    string
		params  domain.EventParams
		wantErr error
	}{
		{"past date", domain.EventParams{EventDate: testNow, MaxCapacity: 1}, domain.ErrInvalidEventDate},
		{"share above cap", domain.EventParams{EventDate: testNow.Add(time.Hour), OrganizerSharePercent: 91, MaxCapacity: 1}, domain.ErrInvalidSharePercent},
		{"no capacity", domain.EventParams{EventDate: testNow.Add(time.Hour)}, domain.ErrInvalidCapacity},
		{"tiers over capacity", domain.EventParams{EventDate: testNow.Add(time.Hour), MaxCapacity: 5, Tiers: []domain.TierParams{gaTier(10, 6)}}, domain.ErrTierCapacityExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.events.CreateEvent(ctx, "org", tt.params)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, domain.IsValidationError(err))
		})
	}
}

func TestAddTier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	eventID := f.createEvent(10, gaTier(100, 6))

	_, err := f.events.AddTier(ctx, eventID, gaTier(50, 4), "mallory")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	index, err := f.events.AddTier(ctx, eventID, gaTier(50, 4), testOwner)
	require.NoError(t, err)
	assert.Equal(t, 1, index)

	_, err = f.events.AddTier(ctx, eventID, gaTier(50, 1), testOrganizer)
	assert.ErrorIs(t, err, domain.ErrTierCapacityExceeded)

	tiers, err := f.events.ListTiers(ctx, eventID)
	require.NoError(t, err)
	assert.Len(t, tiers, 2)
}

func TestUpdateTier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	eventID := f.createEvent(10, gaTier(100, 5))
	f.fund("alice", 1000)

	require.NoError(t, f.events.SetTierActive(ctx, eventID, 0, false, testOrganizer))
	_, err := f.settlement.Purchase(ctx, &PurchaseRequest{EventID: eventID, Buyer: "alice", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrTierInactive)

	require.NoError(t, f.events.SetTierPerks(ctx, eventID, 0, []string{" lounge ", "", "merch"}, testOrganizer))
	tier, err := f.events.UpdateTier(ctx, eventID, 0, TierUpdate{Active: boolPtr(true)}, testOrganizer)
	require.NoError(t, err)
	assert.True(t, tier.IsActive)
	assert.Equal(t, []string{"lounge", "merch"}, tier.Perks)

	assert.ErrorIs(t, f.events.SetTierActive(ctx, eventID, 3, true, testOrganizer), domain.ErrInvalidTier)
	assert.ErrorIs(t, f.events.SetTierActive(ctx, eventID, 0, true, "alice"), domain.ErrUnauthorized)
}

func TestUpdateDynamicPricing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	eventID := f.createEvent(10, gaTier(100, 10))
	f.fund("alice", 1000)
	f.buy(eventID, "alice", 0, 8)

	_, err := f.events.UpdateDynamicPricing(ctx, eventID, 0, "alice")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	price, err := f.events.UpdateDynamicPricing(ctx, eventID, 0, testOrganizer)
	require.NoError(t, err)
	if price != 150 {
		t.Errorf("UpdateDynamicPricing at 80%% sold = %d, want 150", price)
	}

	_, err = f.events.UpdateDynamicPricing(ctx, eventID, 0, testOrganizer)
	assert.ErrorIs(t, err, domain.ErrPriceUpdateTooSoon)

	f.clock.Advance(time.Hour)
	price, err = f.events.UpdateDynamicPricing(ctx, eventID, 0, testOwner)
	require.NoError(t, err)
	assert.Equal(t, int64(150), price, "same band keeps the price")
	assert.Contains(t, f.publisher.Types(), domain.EngineEventTierRepriced)
}

func TestRescheduleEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	eventID := f.createEvent(10, gaTier(100, 10))
	original := testNow.Add(48 * time.Hour)

	_, err := f.events.RescheduleEvent(ctx, eventID, testNow.Add(-time.Hour), testOrganizer)
	assert.ErrorIs(t, err, domain.ErrInvalidEventDate)

	ev, err := f.events.RescheduleEvent(ctx, eventID, testNow.Add(72*time.Hour), testOrganizer)
	require.NoError(t, err)
	assert.True(t, ev.Rescheduled)
	assert.Equal(t, original, ev.OriginalDate)

	ev, err = f.events.RescheduleEvent(ctx, eventID, testNow.Add(96*time.Hour), testOrganizer)
	require.NoError(t, err)
	assert.Equal(t, original, ev.OriginalDate)
}

func TestCancelEvent_UnwindsListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	eventID := f.createEvent(10, gaTier(100, 10))
	f.fund("alice", 1000)
	f.buy(eventID, "alice", 0, 3)
	_, err := f.resale.List(ctx, &ListingRequest{EventID: eventID, Seller: "alice", Quantity: 2, AskPrice: 150})
	require.NoError(t, err)

	_, err = f.events.CancelEvent(ctx, eventID, "alice")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	ev, err := f.events.CancelEvent(ctx, eventID, testOrganizer)
	require.NoError(t, err)
	assert.True(t, ev.IsCancelled)
	assert.False(t, ev.IsActive)

	s := f.state(eventID)
	assert.Equal(t, int64(3), s.Holding("alice", 0).Quantity)
	assert.Empty(t, s.ActiveListings())

	_, err = f.events.CancelEvent(ctx, eventID, testOrganizer)
	assert.ErrorIs(t, err, domain.ErrEventCancelled)

	_, err = f.settlement.Purchase(ctx, &PurchaseRequest{EventID: eventID, Buyer: "alice", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrEventCancelled)
}

func TestTransferTickets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	eventID := f.createEvent(10, gaTier(100, 10))
	f.fund("alice", 1000)
	f.fund("bob", 1000)
	f.buy(eventID, "alice", 0, 5)
	_, err := f.events.UpdateDynamicPricing(ctx, eventID, 0, testOrganizer)
	require.NoError(t, err)
	f.buy(eventID, "bob", 0, 1)

	err = f.events.TransferTickets(ctx, &TransferRequest{EventID: eventID, From: "alice", To: "bob", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, domain.Holding{Holder: "bob", Tier: 0, Quantity: 2, CostBasis: 112}, f.state(eventID).Holding("bob", 0))
	assert.Equal(t, int64(4), f.state(eventID).Holding("alice", 0).Quantity)

	err = f.events.TransferTickets(ctx, &TransferRequest{EventID: eventID, From: "alice", To: "bob", Quantity: 5})
	assert.ErrorIs(t, err, domain.ErrInsufficientTickets)
	err = f.events.TransferTickets(ctx, &TransferRequest{EventID: eventID, From: "alice", To: "ALICE", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrSelfTransfer)
}

func TestGetAnalytics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	eventID := f.createEvent(20, gaTier(100, 10), gaTier(200, 10))
	f.fund("alice", 10_000)
	f.buy(eventID, "alice", 0, 5)
	f.buy(eventID, "alice", 1, 1)
	_, err := f.waitlist.Join(ctx, eventID, "bob", 1, 2)
	require.NoError(t, err)

	a, err := f.events.GetAnalytics(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, int64(700), a.TotalRevenue)
	assert.Equal(t, int64(6), a.TotalSales)
	assert.Equal(t, int64(14), a.RemainingTickets)
	assert.Equal(t, []int64{50, 10}, a.SoldPercentPerTier)
	assert.Equal(t, 1, a.WaitlistDepth)

	holdings, err := f.events.GetHoldings(ctx, eventID, " ALICE ")
	require.NoError(t, err)
	assert.Len(t, holdings, 2)

	_, err = f.events.GetAnalytics(ctx, 42)
	assert.True(t, domain.IsNotFoundError(err))
}
