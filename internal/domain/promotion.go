package domain

import (
	"strings"
	"time"
)

// MaxDiscountPercent caps promotion discounts
const MaxDiscountPercent = 50

// Promotion is a time-boxed discount code with a usage cap
type Promotion struct {
	Code            string    `json:"code"`
	DiscountPercent int64     `json:"discount_percent"`
	MaxUses         int64     `json:"max_uses"`
	UsedCount       int64     `json:"used_count"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	IsActive        bool      `json:"is_active"`
}

// NormalizePromoCode trims a code; codes are case-sensitive
func NormalizePromoCode(code string) string {
	return strings.TrimSpace(code)
}

// NewPromotion validates and builds an active promotion with zero usage
func NewPromotion(code string, discountPercent, maxUses int64, start, end time.Time) (*Promotion, error) {
	code = NormalizePromoCode(code)
	if code == "" {
		return nil, ErrInvalidPromoCode
	}
	if discountPercent <= 0 || discountPercent > MaxDiscountPercent {
		return nil, ErrInvalidDiscount
	}
	if maxUses <= 0 {
		return nil, ErrInvalidMaxUses
	}
	if !start.Before(end) {
		return nil, ErrInvalidPromotionTimes
	}
	return &Promotion{
		Code:            code,
		DiscountPercent: discountPercent,
		MaxUses:         maxUses,
		StartTime:       start.UTC(),
		EndTime:         end.UTC(),
		IsActive:        true,
	}, nil
}

// ValidateAndConsume checks the code is usable at now and records one use
func (p *Promotion) ValidateAndConsume(now time.Time) error {
	switch {
	case !p.IsActive:
		return ErrPromotionInactive
	case now.Before(p.StartTime):
		return ErrPromotionNotStarted
	case now.After(p.EndTime):
		return ErrPromotionExpired
	case p.UsedCount >= p.MaxUses:
		return ErrPromotionExhausted
	}
	p.UsedCount++
	return nil
}

// Discount returns the amount taken off a quoted total
func (p *Promotion) Discount(quoted int64) int64 {
	return quoted * p.DiscountPercent / 100
}

// PutPromotion creates or overwrites a code; overwriting resets usage
func (s *EventState) PutPromotion(p *Promotion) {
	s.Promotions[p.Code] = p
}

// ConsumePromotion validates and consumes a code; unknown codes read as inactive
func (s *EventState) ConsumePromotion(code string, now time.Time) (*Promotion, error) {
	p, ok := s.Promotions[NormalizePromoCode(code)]
	if !ok {
		return nil, ErrPromotionInactive
	}
	if err := p.ValidateAndConsume(now); err != nil {
		return nil, err
	}
	return p, nil
}
