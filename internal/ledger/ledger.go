package ledger

import (
	"context"
	"errors"
)

// Ledger errors
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInvalidAccount    = errors.New("account is required")
)

// Ledger is the fungible token ledger the engine settles against.
// All amounts are in the smallest token unit.
type Ledger interface {
	// BalanceOf returns the balance of account; unknown accounts hold zero
	BalanceOf(ctx context.Context, account string) (int64, error)

	// Debit moves amount from one account to another, failing with ErrInsufficientFunds
	Debit(ctx context.Context, from, to string, amount int64) error

	// Credit pays amount to an account out of the treasury
	Credit(ctx context.Context, to string, amount int64) error

	// Mint creates amount in an account
	Mint(ctx context.Context, to string, amount int64) error
}

// Transactional is implemented by ledgers whose writes can join a
// transaction carried by the context and roll back with it
type Transactional interface {
	JoinsTx(ctx context.Context) bool
}

func validate(amount int64, accounts ...string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	for _, a := range accounts {
		if a == "" {
			return ErrInvalidAccount
		}
	}
	return nil
}
