package domain

import (
	"reflect"
	"testing"
	"time"

	"pgregory.net/rapid"
)

var propertyHolders = []string{"alice", "bob", "carol"}

// checkInventory asserts the conservation invariants over tiers, holdings and escrow
func checkInventory(t *rapid.T, s *EventState) {
	var sold int64
	for i, tier := range s.Tiers {
		if tier.Remaining < 0 || tier.Remaining > tier.Quantity {
			t.Fatalf("tier %d remaining %d outside [0, %d]", i, tier.Remaining, tier.Quantity)
		}
		if tier.EarlyBirdRemaining < 0 || tier.EarlyBirdRemaining > tier.EarlyBirdQuantity {
			t.Fatalf("tier %d early-bird remaining %d outside [0, %d]", i, tier.EarlyBirdRemaining, tier.EarlyBirdQuantity)
		}
		if got := s.TierHeld(i) + s.TierEscrowed(i); got != tier.Sold() {
			t.Fatalf("tier %d holdings+escrow = %d, sold = %d", i, got, tier.Sold())
		}
		sold += tier.Sold()
	}
	if s.Event.CurrentCapacity != sold {
		t.Fatalf("current capacity %d != sold %d", s.Event.CurrentCapacity, sold)
	}
	if s.Event.CurrentCapacity > s.Event.MaxCapacity {
		t.Fatalf("current capacity %d above max %d", s.Event.CurrentCapacity, s.Event.MaxCapacity)
	}
}

func TestInventoryInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.Int64Range(1, 40).Draw(t, "capacity")
		s, err := NewEventState(1, EventParams{
			Name: "p", EventDate: testNow.Add(time.Hour), Organizer: "org",
			OrganizerSharePercent: 50, MaxCapacity: capacity,
		}, testNow)
		if err != nil {
			t.Fatal(err)
		}
		tiers := rapid.IntRange(1, 3).Draw(t, "tiers")
		left := capacity
		for i := 0; i < tiers && left > 0; i++ {
			q := rapid.Int64Range(1, left).Draw(t, "tierQty")
			eb := rapid.Int64Range(0, q).Draw(t, "ebQty")
			if err := s.AddTier(TierParams{Name: "t", BasePrice: 100, Quantity: q, EarlyBirdPrice: 60, EarlyBirdQuantity: eb, EarlyBirdEndTime: testNow}); err != nil {
				t.Fatal(err)
			}
			left -= q
		}

		var nextListing uint64
		steps := rapid.IntRange(1, 60).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			before := s.Clone()
			holder := rapid.SampledFrom(propertyHolders).Draw(t, "holder")
			tier := rapid.IntRange(-1, len(s.Tiers)).Draw(t, "tier")
			qty := rapid.Int64Range(0, 8).Draw(t, "qty")

			var opErr error
			switch rapid.IntRange(0, 6).Draw(t, "op") {
			case 0: // purchase
				if opErr = s.Reserve(tier, qty); opErr == nil {
					quote, err := s.Tiers[tier].Quote(qty, testNow)
					if err != nil {
						t.Fatalf("quote after reserve: %v", err)
					}
					s.Tiers[tier].ApplyQuote(quote)
					s.CreditPurchase(holder, tier, qty, quote.Total/qty)
					s.RecordSale(qty, quote.Total)
				}
			case 1: // list
				nextListing++
				_, opErr = s.OpenListing(nextListing, holder, tier, qty, 200, testNow)
			case 2: // buy the oldest active listing
				if active := s.ActiveListings(); len(active) > 0 {
					_, opErr = s.FillListing(active[0].ID, holder)
				}
			case 3: // transfer
				to := rapid.SampledFrom(propertyHolders).Draw(t, "to")
				basis := s.Holding(holder, tier).CostBasis
				if opErr = s.Debit(holder, tier, qty); opErr == nil {
					s.CreditTransfer(to, tier, qty, basis)
				}
			case 4: // refund everything the holder owns
				_, opErr = s.SurrenderHoldings(holder)
			case 5: // seller withdraws the newest listing
				if active := s.ActiveListings(); len(active) > 0 {
					_, opErr = s.CancelListing(active[len(active)-1].ID, holder)
				}
			case 6: // unwind escrow
				s.UnwindListings()
			}

			if opErr != nil && !reflect.DeepEqual(before, s) {
				t.Fatalf("step %d failed with %v but mutated state", i, opErr)
			}
			checkInventory(t, s)
		}
	})
}
