package domain

// Reserve takes quantity units from a tier's inventory and the event's capacity
func (s *EventState) Reserve(tier int, quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	t, err := s.Tier(tier)
	if err != nil {
		return err
	}
	if quantity > t.Remaining {
		return ErrOutOfStock
	}
	if s.Event.CurrentCapacity+quantity > s.Event.MaxCapacity {
		return ErrCapacityExceeded
	}
	t.Remaining -= quantity
	s.Event.CurrentCapacity += quantity
	return nil
}

// Release returns quantity units to inventory; the exact inverse of Reserve
func (s *EventState) Release(tier int, quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	t, err := s.Tier(tier)
	if err != nil {
		return err
	}
	if quantity > t.Sold() || quantity > s.Event.CurrentCapacity {
		return ErrInvalidQuantity
	}
	t.Remaining += quantity
	s.Event.CurrentCapacity -= quantity
	return nil
}
