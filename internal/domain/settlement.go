package domain

// Receipt summarizes a settled primary sale
type Receipt struct {
	EventID          uint64 `json:"event_id"`
	Buyer            string `json:"buyer"`
	Tier             int    `json:"tier"`
	Quantity         int64  `json:"quantity"`
	UnitsAtEarlyBird int64  `json:"units_at_early_bird"`
	QuotedPrice      int64  `json:"quoted_price"`
	Discount         int64  `json:"discount"`
	FinalPrice       int64  `json:"final_price"`
	OrganizerAmount  int64  `json:"organizer_amount"`
	PlatformAmount   int64  `json:"platform_amount"`
	CostBasis        int64  `json:"cost_basis"`
	PromoCode        string `json:"promo_code,omitempty"`
}

// SplitRevenue divides a sale between organizer and platform
func SplitRevenue(amount, organizerSharePercent int64) (organizer, platform int64) {
	organizer = amount * organizerSharePercent / 100
	return organizer, amount - organizer
}

// SplitResale divides a resale between platform fee and seller proceeds
func SplitResale(total, feePercent int64) (fee, seller int64) {
	fee = total * feePercent / 100
	return fee, total - fee
}

// RecordSale updates event aggregates for a primary sale
func (s *EventState) RecordSale(quantity, amount int64) {
	s.Event.TotalRevenue += amount
	s.Event.TotalSales += quantity
}
