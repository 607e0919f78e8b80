package domain

import (
	"strings"
	"time"
)

// DefaultDemandMultiplier is the neutral multiplier in percent
const DefaultDemandMultiplier = 100

// TicketTier is a priced category of tickets within an event
type TicketTier struct {
	Name               string    `json:"name"`
	BasePrice          int64     `json:"base_price"`
	Quantity           int64     `json:"quantity"`
	Remaining          int64     `json:"remaining"`
	IsActive           bool      `json:"is_active"`
	EarlyBirdPrice     int64     `json:"early_bird_price"`
	EarlyBirdEndTime   time.Time `json:"early_bird_end_time"`
	EarlyBirdQuantity  int64     `json:"early_bird_quantity"`
	EarlyBirdRemaining int64     `json:"early_bird_remaining"`
	DemandMultiplier   int64     `json:"demand_multiplier"`
	LastPriceUpdate    time.Time `json:"last_price_update,omitempty"`
	Perks              []string  `json:"perks"`
}

// TierParams describes a tier to add
type TierParams struct {
	Name              string
	BasePrice         int64
	Quantity          int64
	EarlyBirdPrice    int64
	EarlyBirdEndTime  time.Time
	EarlyBirdQuantity int64
	Perks             []string
}

// NewTier validates params and builds an active tier with full inventory
func NewTier(p TierParams) (*TicketTier, error) {
	if strings.TrimSpace(p.Name) == "" || p.BasePrice <= 0 || p.Quantity <= 0 {
		return nil, ErrInvalidTierConfig
	}
	if p.BasePrice > MaxAmount {
		return nil, ErrPriceTooHigh
	}
	if p.EarlyBirdPrice < 0 || p.EarlyBirdPrice > p.BasePrice {
		return nil, ErrInvalidTierConfig
	}
	if p.EarlyBirdQuantity < 0 || p.EarlyBirdQuantity > p.Quantity {
		return nil, ErrInvalidTierConfig
	}
	return &TicketTier{
		Name:               strings.TrimSpace(p.Name),
		BasePrice:          p.BasePrice,
		Quantity:           p.Quantity,
		Remaining:          p.Quantity,
		IsActive:           true,
		EarlyBirdPrice:     p.EarlyBirdPrice,
		EarlyBirdEndTime:   p.EarlyBirdEndTime.UTC(),
		EarlyBirdQuantity:  p.EarlyBirdQuantity,
		EarlyBirdRemaining: p.EarlyBirdQuantity,
		DemandMultiplier:   DefaultDemandMultiplier,
		Perks:              clonePerks(p.Perks),
	}, nil
}

// Sold returns the number of units taken out of inventory
func (t *TicketTier) Sold() int64 {
	return t.Quantity - t.Remaining
}

// SetPerks replaces the tier's perks
func (t *TicketTier) SetPerks(perks []string) {
	t.Perks = clonePerks(perks)
}

func clonePerks(perks []string) []string {
	out := make([]string, 0, len(perks))
	for _, p := range perks {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
