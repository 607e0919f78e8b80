package domain

import (
	"slices"
	"sort"
	"time"
)

// HoldingKey addresses one holder's tickets in one tier
type HoldingKey struct {
	Holder string
	Tier   int
}

// Holding is a holder's position in a tier
type Holding struct {
	Holder    string `json:"holder"`
	Tier      int    `json:"tier"`
	Quantity  int64  `json:"quantity"`
	CostBasis int64  `json:"cost_basis"`
}

// Value returns the refundable value of the position
func (h *Holding) Value() int64 {
	return h.Quantity * h.CostBasis
}

// ResaleListing is an escrowed offer to sell held tickets
type ResaleListing struct {
	ID        uint64    `json:"id"`
	EventID   uint64    `json:"event_id"`
	Seller    string    `json:"seller"`
	Tier      int       `json:"tier"`
	Quantity  int64     `json:"quantity"`
	AskPrice  int64     `json:"ask_price"`
	IsActive  bool      `json:"is_active"`
	Buyer     string    `json:"buyer,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Total returns the full-fill price of the listing
func (l *ResaleListing) Total() int64 {
	return l.AskPrice * l.Quantity
}

// WaitlistEntry is a holder's outstanding demand for a tier
type WaitlistEntry struct {
	Holder   string    `json:"holder"`
	Tier     int       `json:"tier"`
	Quantity int64     `json:"quantity"`
	JoinedAt time.Time `json:"joined_at"`
	IsActive bool      `json:"is_active"`
}

// CheckInRecord is the immutable attestation that a holder attended
type CheckInRecord struct {
	Holder     string    `json:"holder"`
	Timestamp  uint64    `json:"timestamp"`
	Validator  string    `json:"validator"`
	Signature  []byte    `json:"signature"`
	IsValid    bool      `json:"is_valid"`
	RecordedAt time.Time `json:"recorded_at"`
}

// EventState is the unit of per-event atomicity
type EventState struct {
	Event      Event
	Tiers      []*TicketTier
	Holdings   map[HoldingKey]*Holding
	Listings   map[uint64]*ResaleListing
	Waitlist   map[string]*WaitlistEntry
	Promotions map[string]*Promotion
	Policies   map[string]*InsurancePolicy
	CheckIns   map[string]*CheckInRecord
}

func newEventState(ev Event) *EventState {
	return &EventState{
		Event:      ev,
		Holdings:   make(map[HoldingKey]*Holding),
		Listings:   make(map[uint64]*ResaleListing),
		Waitlist:   make(map[string]*WaitlistEntry),
		Promotions: make(map[string]*Promotion),
		Policies:   make(map[string]*InsurancePolicy),
		CheckIns:   make(map[string]*CheckInRecord),
	}
}

// NewEmptyState builds a state around an already persisted event
func NewEmptyState(ev Event) *EventState {
	return newEventState(ev)
}

// Clone returns a deep copy
func (s *EventState) Clone() *EventState {
	c := newEventState(s.Event)
	if s.Tiers != nil {
		c.Tiers = make([]*TicketTier, len(s.Tiers))
	}
	for i, t := range s.Tiers {
		tc := *t
		tc.Perks = slices.Clone(t.Perks)
		c.Tiers[i] = &tc
	}
	for k, h := range s.Holdings {
		hc := *h
		c.Holdings[k] = &hc
	}
	for k, l := range s.Listings {
		lc := *l
		c.Listings[k] = &lc
	}
	for k, w := range s.Waitlist {
		wc := *w
		c.Waitlist[k] = &wc
	}
	for k, p := range s.Promotions {
		pc := *p
		c.Promotions[k] = &pc
	}
	for k, p := range s.Policies {
		pc := *p
		c.Policies[k] = &pc
	}
	for k, r := range s.CheckIns {
		rc := *r
		rc.Signature = slices.Clone(r.Signature)
		c.CheckIns[k] = &rc
	}
	return c
}

// Tier returns the tier at index i
func (s *EventState) Tier(i int) (*TicketTier, error) {
	if i < 0 || i >= len(s.Tiers) {
		return nil, ErrInvalidTier
	}
	return s.Tiers[i], nil
}

// AddTier appends a tier, keeping the total quantity within capacity
func (s *EventState) AddTier(p TierParams) error {
	t, err := NewTier(p)
	if err != nil {
		return err
	}
	var total int64
	for _, existing := range s.Tiers {
		total += existing.Quantity
	}
	if total+t.Quantity > s.Event.MaxCapacity {
		return ErrTierCapacityExceeded
	}
	s.Tiers = append(s.Tiers, t)
	return nil
}

// Holding returns the holder's position in a tier; a missing position reads as zero
func (s *EventState) Holding(holder string, tier int) Holding {
	if h, ok := s.Holdings[HoldingKey{Holder: holder, Tier: tier}]; ok {
		return *h
	}
	return Holding{Holder: holder, Tier: tier}
}

func (s *EventState) holding(holder string, tier int) *Holding {
	key := HoldingKey{Holder: holder, Tier: tier}
	h, ok := s.Holdings[key]
	if !ok {
		h = &Holding{Holder: holder, Tier: tier}
		s.Holdings[key] = h
	}
	return h
}

// CreditPurchase records bought units; the basis becomes the unit price just paid
func (s *EventState) CreditPurchase(holder string, tier int, quantity, unitBasis int64) {
	h := s.holding(holder, tier)
	h.Quantity += quantity
	h.CostBasis = unitBasis
}

// CreditTransfer records transferred-in units at a quantity-weighted basis
func (s *EventState) CreditTransfer(holder string, tier int, quantity, unitBasis int64) {
	h := s.holding(holder, tier)
	total := h.Quantity + quantity
	if total > 0 {
		h.CostBasis = (h.Quantity*h.CostBasis + quantity*unitBasis) / total
	}
	h.Quantity = total
}

// Debit removes units from a holding. Emptied holdings stay in the index with zero quantity.
func (s *EventState) Debit(holder string, tier int, quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	h, ok := s.Holdings[HoldingKey{Holder: holder, Tier: tier}]
	if !ok || h.Quantity < quantity {
		return ErrInsufficientTickets
	}
	h.Quantity -= quantity
	return nil
}

// HoldingsOf returns the holder's non-empty positions ordered by tier
func (s *EventState) HoldingsOf(holder string) []Holding {
	var out []Holding
	for i := range s.Tiers {
		if h, ok := s.Holdings[HoldingKey{Holder: holder, Tier: i}]; ok && h.Quantity > 0 {
			out = append(out, *h)
		}
	}
	return out
}

// HeldValue sums quantity times cost basis across the holder's positions
func (s *EventState) HeldValue(holder string) int64 {
	var total int64
	for _, h := range s.HoldingsOf(holder) {
		total += h.Value()
	}
	return total
}

// TierHeld sums all holders' quantity in a tier, excluding escrow
func (s *EventState) TierHeld(tier int) int64 {
	var total int64
	for k, h := range s.Holdings {
		if k.Tier == tier {
			total += h.Quantity
		}
	}
	return total
}

// TierEscrowed sums active listing quantity in a tier
func (s *EventState) TierEscrowed(tier int) int64 {
	var total int64
	for _, l := range s.Listings {
		if l.IsActive && l.Tier == tier {
			total += l.Quantity
		}
	}
	return total
}

// ActiveListings returns active listings ordered by id
func (s *EventState) ActiveListings() []ResaleListing {
	out := make([]ResaleListing, 0, len(s.Listings))
	for _, l := range s.Listings {
		if l.IsActive {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UnwindListings returns every active listing's escrow to its seller
func (s *EventState) UnwindListings() int {
	n := 0
	for _, l := range s.Listings {
		if !l.IsActive {
			continue
		}
		s.returnEscrow(l)
		n++
	}
	return n
}

// WaitlistDepth counts active waitlist entries
func (s *EventState) WaitlistDepth() int {
	n := 0
	for _, w := range s.Waitlist {
		if w.IsActive {
			n++
		}
	}
	return n
}
