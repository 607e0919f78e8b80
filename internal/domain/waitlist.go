package domain

import "time"

// JoinWaitlist records demand for a tier, replacing any earlier entry of the holder
func (s *EventState) JoinWaitlist(holder string, tier int, quantity int64, now time.Time) (*WaitlistEntry, error) {
	if holder == "" {
		return nil, ErrInvalidAccount
	}
	t, err := s.Tier(tier)
	if err != nil {
		return nil, err
	}
	if !t.IsActive {
		return nil, ErrTierInactive
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	w := &WaitlistEntry{
		Holder:   holder,
		Tier:     tier,
		Quantity: quantity,
		JoinedAt: now,
		IsActive: true,
	}
	s.Waitlist[holder] = w
	return w, nil
}

// LeaveWaitlist deactivates the holder's entry
func (s *EventState) LeaveWaitlist(holder string) error {
	w, ok := s.Waitlist[holder]
	if !ok || !w.IsActive {
		return ErrNotOnWaitlist
	}
	w.IsActive = false
	return nil
}

// ActiveWaitlistEntry returns the holder's active entry
func (s *EventState) ActiveWaitlistEntry(holder string) (*WaitlistEntry, error) {
	w, ok := s.Waitlist[holder]
	if !ok || !w.IsActive {
		return nil, ErrNotOnWaitlist
	}
	return w, nil
}

// Satisfy takes quantity off the entry, deactivating it when nothing is left
func (w *WaitlistEntry) Satisfy(quantity int64) error {
	if quantity <= 0 || quantity > w.Quantity {
		return ErrWaitlistQuantity
	}
	w.Quantity -= quantity
	if w.Quantity == 0 {
		w.IsActive = false
	}
	return nil
}
