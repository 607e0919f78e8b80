package service

import (
	"context"
	"testing"

	"github.com/mahimasingh04/OpenEvent/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResale_ListAndBuy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	eventID := f.createEvent(10, gaTier(100, 10))
	f.fund("alice", 300)
	f.fund("bob", 500)
	f.buy(eventID, "alice", 0, 3)

	_, err := f.resale.List(ctx, &ListingRequest{EventID: eventID, Seller: "alice", Quantity: 3, AskPrice: 100})
	assert.ErrorIs(t, err, domain.ErrAskPriceTooLow)

	listing, err := f.resale.List(ctx, &ListingRequest{EventID: eventID, Seller: "alice", Quantity: 3, AskPrice: 120})
	require.NoError(t, err)
	assert.True(t, listing.IsActive)
	assert.Equal(t, int64(0), f.state(eventID).Holding("alice", 0).Quantity)

	_, err = f.resale.Buy(ctx, listing.ID, "alice")
	assert.ErrorIs(t, err, domain.ErrSelfPurchase)

	receipt, err := f.resale.Buy(ctx, listing.ID, "bob")
	require.NoError(t, err)
	wantFee := int64(360 * 5 / 100)
	assert.Equal(t, int64(360), receipt.Total)
	assert.Equal(t, wantFee, receipt.Fee)
	assert.Equal(t, 360-wantFee, receipt.SellerProceeds)

	assert.Equal(t, int64(140), f.balance("bob"))
	assert.Equal(t, 360-wantFee, f.balance("alice"))
	assert.Equal(t, 60+wantFee, f.balance(testOwner))
	assert.Equal(t, int64(0), f.balance(testTreasury))

	s := f.state(eventID)
	assert.Equal(t, domain.Holding{Holder: "bob", Tier: 0, Quantity: 3, CostBasis: 120}, s.Holding("bob", 0))
	assert.False(t, s.Listings[listing.ID].IsActive)

	_, err = f.resale.Buy(ctx, listing.ID, "carol")
	assert.ErrorIs(t, err, domain.ErrListingInactive)
	_, err = f.resale.Buy(ctx, 999, "carol")
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
}

func TestResale_ListingTotalAboveMaxAmount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	eventID := f.createEvent(10, gaTier(100, 10))
	f.fund("alice", 300)
	f.buy(eventID, "alice", 0, 3)

	_, err := f.resale.List(ctx, &ListingRequest{EventID: eventID, Seller: "alice", Quantity: 3, AskPrice: 6148914691236517206})
	assert.ErrorIs(t, err, domain.ErrPriceTooHigh)
	_, err = f.resale.List(ctx, &ListingRequest{EventID: eventID, Seller: "alice", Quantity: 3, AskPrice: domain.MaxAmount/3 + 1})
	assert.ErrorIs(t, err, domain.ErrAmountOverflow)

	s := f.state(eventID)
	assert.Empty(t, s.Listings)
	assert.Equal(t, int64(3), s.Holding("alice", 0).Quantity)
}

func TestResale_BuyWithoutFundsKeepsListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	eventID := f.createEvent(10, gaTier(100, 10))
	f.fund("alice", 200)
	f.fund("bob", 100)
	f.buy(eventID, "alice", 0, 2)
	listing, err := f.resale.List(ctx, &ListingRequest{EventID: eventID, Seller: "alice", Quantity: 2, AskPrice: 110})
	require.NoError(t, err)

	_, err = f.resale.Buy(ctx, listing.ID, "bob")
	assert.ErrorIs(t, err, domain.ErrPaymentFailed)

	s := f.state(eventID)
	assert.True(t, s.Listings[listing.ID].IsActive)
	assert.Equal(t, int64(0), s.Holding("bob", 0).Quantity)
	assert.Equal(t, int64(100), f.balance("bob"))
}

func TestResale_CancelListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	eventID := f.createEvent(10, gaTier(100, 10))
	f.fund("alice", 300)
	f.buy(eventID, "alice", 0, 3)
	first, err := f.resale.List(ctx, &ListingRequest{EventID: eventID, Seller: "alice", Quantity: 1, AskPrice: 150})
	require.NoError(t, err)
	second, err := f.resale.List(ctx, &ListingRequest{EventID: eventID, Seller: "alice", Quantity: 2, AskPrice: 130})
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)

	listings, err := f.resale.ListListings(ctx, eventID)
	require.NoError(t, err)
	assert.Len(t, listings, 2)

	_, err = f.resale.CancelListing(ctx, first.ID, "bob")
	assert.ErrorIs(t, err, domain.ErrNotListingSeller)

	_, err = f.resale.CancelListing(ctx, first.ID, "Alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.state(eventID).Holding("alice", 0).Quantity)

	listings, err = f.resale.ListListings(ctx, eventID)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, second.ID, listings[0].ID)
	assert.Contains(t, f.publisher.Types(), domain.EngineEventListingCancelled)
}
