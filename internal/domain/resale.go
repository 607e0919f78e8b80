package domain

import "time"

// ResaleReceipt summarizes a filled listing
type ResaleReceipt struct {
	ListingID      uint64 `json:"listing_id"`
	EventID        uint64 `json:"event_id"`
	Seller         string `json:"seller"`
	Buyer          string `json:"buyer"`
	Tier           int    `json:"tier"`
	Quantity       int64  `json:"quantity"`
	Total          int64  `json:"total"`
	Fee            int64  `json:"fee"`
	SellerProceeds int64  `json:"seller_proceeds"`
}

// OpenListing escrows quantity units out of the seller's holding into a new active listing.
// The ask must exceed the seller's cost basis and the full-fill total must fit MaxAmount.
func (s *EventState) OpenListing(id uint64, seller string, tier int, quantity, askPrice int64, now time.Time) (*ResaleListing, error) {
	if seller == "" {
		return nil, ErrInvalidAccount
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if _, err := s.Tier(tier); err != nil {
		return nil, err
	}
	h := s.Holding(seller, tier)
	if h.Quantity < quantity {
		return nil, ErrInsufficientTickets
	}
	if askPrice <= h.CostBasis {
		return nil, ErrAskPriceTooLow
	}
	if askPrice > MaxAmount {
		return nil, ErrPriceTooHigh
	}
	if _, err := MulAmount(askPrice, quantity); err != nil {
		return nil, err
	}
	if err := s.Debit(seller, tier, quantity); err != nil {
		return nil, err
	}
	l := &ResaleListing{
		ID:        id,
		EventID:   s.Event.ID,
		Seller:    seller,
		Tier:      tier,
		Quantity:  quantity,
		AskPrice:  askPrice,
		IsActive:  true,
		CreatedAt: now,
	}
	s.Listings[id] = l
	return l, nil
}

func (s *EventState) activeListing(id uint64) (*ResaleListing, error) {
	l, ok := s.Listings[id]
	if !ok {
		return nil, ErrListingNotFound
	}
	if !l.IsActive {
		return nil, ErrListingInactive
	}
	return l, nil
}

// CancelListing returns a listing's escrow to its seller
func (s *EventState) CancelListing(id uint64, caller string) (*ResaleListing, error) {
	l, err := s.activeListing(id)
	if err != nil {
		return nil, err
	}
	if caller != l.Seller {
		return nil, ErrNotListingSeller
	}
	s.returnEscrow(l)
	return l, nil
}

// FillListing closes a listing in full and moves its tickets to buyer at the ask price
func (s *EventState) FillListing(id uint64, buyer string) (*ResaleListing, error) {
	if buyer == "" {
		return nil, ErrInvalidAccount
	}
	l, err := s.activeListing(id)
	if err != nil {
		return nil, err
	}
	if buyer == l.Seller {
		return nil, ErrSelfPurchase
	}
	l.IsActive = false
	l.Buyer = buyer
	s.CreditPurchase(buyer, l.Tier, l.Quantity, l.AskPrice)
	return l, nil
}

func (s *EventState) returnEscrow(l *ResaleListing) {
	s.holding(l.Seller, l.Tier).Quantity += l.Quantity
	l.IsActive = false
}
