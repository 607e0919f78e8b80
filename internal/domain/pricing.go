package domain

import (
	"math"
	"time"
)

// DefaultMaxDemandMultiplier applies when the tier is at least 90 percent sold
const DefaultMaxDemandMultiplier = 200

// Quote is the charge for a quantity of tickets in a tier
type Quote struct {
	Total          int64 `json:"total"`
	EarlyBirdUnits int64 `json:"early_bird_units"`
}

// Quote prices quantity units. While the early-bird window is open and
// allocation remains, the first units are charged the early-bird price.
// The tier is not changed; see ApplyQuote.
// Totals above MaxAmount are rejected with ErrAmountOverflow.
func (t *TicketTier) Quote(quantity int64, now time.Time) (Quote, error) {
	if quantity <= 0 {
		return Quote{}, ErrInvalidQuantity
	}
	var ebUnits int64
	if t.EarlyBirdRemaining > 0 && !now.After(t.EarlyBirdEndTime) {
		ebUnits = min(quantity, t.EarlyBirdRemaining)
	}
	ebTotal, err := MulAmount(ebUnits, t.EarlyBirdPrice)
	if err != nil {
		return Quote{}, err
	}
	baseTotal, err := MulAmount(quantity-ebUnits, t.BasePrice)
	if err != nil {
		return Quote{}, err
	}
	total, err := AddAmount(ebTotal, baseTotal)
	if err != nil {
		return Quote{}, err
	}
	return Quote{Total: total, EarlyBirdUnits: ebUnits}, nil
}

// BaseQuote prices quantity units at the base price only
func (t *TicketTier) BaseQuote(quantity int64) (Quote, error) {
	if quantity <= 0 {
		return Quote{}, ErrInvalidQuantity
	}
	total, err := MulAmount(quantity, t.BasePrice)
	if err != nil {
		return Quote{}, err
	}
	return Quote{Total: total}, nil
}

// ApplyQuote consumes the early-bird allocation the quote used
func (t *TicketTier) ApplyQuote(q Quote) {
	t.EarlyBirdRemaining -= q.EarlyBirdUnits
}

// SoldPercent returns the integer percentage of the tier sold
func (t *TicketTier) SoldPercent() int64 {
	if t.Quantity == 0 {
		return 0
	}
	return t.Sold() * 100 / t.Quantity
}

// DemandMultiplierFor maps sell-through to a multiplier in percent
func DemandMultiplierFor(soldPercent, maxMultiplier int64) int64 {
	switch {
	case soldPercent >= 90:
		return maxMultiplier
	case soldPercent >= 75:
		return 150
	case soldPercent >= 50:
		return 125
	default:
		return DefaultDemandMultiplier
	}
}

// Reprice applies the demand band to the base price at most once per interval.
// A tier that was never repriced is always eligible. Returns the new base price.
func (t *TicketTier) Reprice(now time.Time, interval time.Duration, maxMultiplier int64) (int64, error) {
	if !t.LastPriceUpdate.IsZero() && now.Sub(t.LastPriceUpdate) < interval {
		return 0, ErrPriceUpdateTooSoon
	}
	oldMultiplier := t.DemandMultiplier
	if oldMultiplier <= 0 {
		oldMultiplier = DefaultDemandMultiplier
	}
	newMultiplier := DemandMultiplierFor(t.SoldPercent(), maxMultiplier)
	if newMultiplier > 0 && t.BasePrice > math.MaxInt64/newMultiplier {
		return 0, ErrAmountOverflow
	}
	price := t.BasePrice * newMultiplier / oldMultiplier
	if price > MaxAmount {
		return 0, ErrAmountOverflow
	}
	t.BasePrice = price
	t.DemandMultiplier = newMultiplier
	t.LastPriceUpdate = now
	return t.BasePrice, nil
}
