package dto

// CheckInRequest carries a signer attestation for a holder
type CheckInRequest struct {
	Holder    string `json:"holder" binding:"required"`
	Timestamp uint64 `json:"timestamp" binding:"required"`
	// Signature is hex encoded, with or without a 0x prefix
	Signature string `json:"signature" binding:"required"`
}
