package dto

// MintRequest credits new tokens to an account
type MintRequest struct {
	Account string `json:"account" binding:"required"`
	Amount  int64  `json:"amount" binding:"required"`
}

// BalanceResponse represents an account balance
type BalanceResponse struct {
	Account string `json:"account"`
	Balance int64  `json:"balance"`
}
