package dto

// ListingRequest escrows the caller's tickets into a resale listing
type ListingRequest struct {
	Tier     int   `json:"tier"`
	Quantity int64 `json:"quantity" binding:"required"`
	AskPrice int64 `json:"ask_price" binding:"required"`
}

// WaitlistJoinRequest records the caller's demand for a tier
type WaitlistJoinRequest struct {
	Tier     int   `json:"tier"`
	Quantity int64 `json:"quantity" binding:"required"`
}

// WaitlistFillRequest settles part of a holder's waitlist entry
type WaitlistFillRequest struct {
	Holder   string `json:"holder" binding:"required"`
	Quantity int64  `json:"quantity" binding:"required"`
}
