package domain

import "time"

// SurrenderHoldings returns every ticket the holder owns to inventory and
// reports the refund due, the sum of quantity times cost basis.
func (s *EventState) SurrenderHoldings(holder string) (int64, error) {
	held := s.HoldingsOf(holder)
	if len(held) == 0 {
		return 0, ErrNothingToRefund
	}
	var refund int64
	for _, h := range held {
		if err := s.Release(h.Tier, h.Quantity); err != nil {
			return 0, err
		}
		refund += h.Value()
		s.Holdings[HoldingKey{Holder: holder, Tier: h.Tier}].Quantity = 0
	}
	return refund, nil
}

// Insure prices and records a policy over the holder's current holdings
func (s *EventState) Insure(holder string, terms InsuranceTerms, now time.Time) (*InsurancePolicy, error) {
	if _, ok := s.Policies[holder]; ok {
		return nil, ErrAlreadyInsured
	}
	if len(s.HoldingsOf(holder)) == 0 {
		return nil, ErrNoTicketsHeld
	}
	p, err := NewInsurancePolicy(holder, s.HeldValue(holder), terms, s.Event.EventDate, now)
	if err != nil {
		return nil, err
	}
	s.Policies[holder] = p
	return p, nil
}

// ClaimPolicy pays out the holder's policy once inside its claim window
func (s *EventState) ClaimPolicy(holder string, now time.Time) (*InsurancePolicy, error) {
	p, ok := s.Policies[holder]
	if !ok {
		return nil, ErrNotInsured
	}
	if err := p.Claim(now); err != nil {
		return nil, err
	}
	return p, nil
}

// Reschedule moves the event date and carries every open claim window with it,
// so a policy stays claimable for the same span after the new date.
func (s *EventState) Reschedule(newDate, now time.Time) error {
	before := s.Event.EventDate
	if err := s.Event.Reschedule(newDate, now); err != nil {
		return err
	}
	d := s.Event.EventDate.Sub(before)
	for _, p := range s.Policies {
		p.shift(d)
	}
	return nil
}

// Analytics is the read-only summary of an event
type Analytics struct {
	EventID            uint64  `json:"event_id"`
	TotalRevenue       int64   `json:"total_revenue"`
	TotalSales         int64   `json:"total_sales"`
	CurrentCapacity    int64   `json:"current_capacity"`
	RemainingTickets   int64   `json:"remaining_tickets"`
	SoldPercentPerTier []int64 `json:"sold_percent_per_tier"`
	ActiveListings     int     `json:"active_listings"`
	WaitlistDepth      int     `json:"waitlist_depth"`
	CheckIns           int     `json:"checkins"`
}

// Analytics computes the event summary
func (s *EventState) Analytics() Analytics {
	sold := make([]int64, len(s.Tiers))
	for i, t := range s.Tiers {
		sold[i] = t.SoldPercent()
	}
	return Analytics{
		EventID:            s.Event.ID,
		TotalRevenue:       s.Event.TotalRevenue,
		TotalSales:         s.Event.TotalSales,
		CurrentCapacity:    s.Event.CurrentCapacity,
		RemainingTickets:   s.Event.RemainingTickets(),
		SoldPercentPerTier: sold,
		ActiveListings:     len(s.ActiveListings()),
		WaitlistDepth:      s.WaitlistDepth(),
		CheckIns:           len(s.CheckIns),
	}
}
