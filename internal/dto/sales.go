package dto

import (
	"time"

	"github.com/mahimasingh04/OpenEvent/internal/domain"
)

// PurchaseRequest represents a primary purchase by the caller
type PurchaseRequest struct {
	Tier      int    `json:"tier"`
	Quantity  int64  `json:"quantity" binding:"required"`
	PromoCode string `json:"promo_code,omitempty"`
}

// TransferRequest moves the caller's tickets to another holder
type TransferRequest struct {
	To       string `json:"to" binding:"required"`
	Tier     int    `json:"tier"`
	Quantity int64  `json:"quantity" binding:"required"`
}

// HoldingsResponse lists a holder's positions in an event
type HoldingsResponse struct {
	EventID  uint64           `json:"event_id"`
	Holder   string           `json:"holder"`
	Holdings []domain.Holding `json:"holdings"`
}

// PromotionRequest creates or overwrites a discount code
type PromotionRequest struct {
	Code            string    `json:"code" binding:"required"`
	DiscountPercent int64     `json:"discount_percent" binding:"required"`
	MaxUses         int64     `json:"max_uses" binding:"required"`
	StartTime       time.Time `json:"start_time" binding:"required"`
	EndTime         time.Time `json:"end_time" binding:"required"`
}
