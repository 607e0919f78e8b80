package ledger

import (
	"context"
	"sync"

	"github.com/mahimasingh04/OpenEvent/internal/domain"
)

// MemoryLedger keeps balances in process memory
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[string]int64
	treasury string
}

// NewMemoryLedger creates an empty ledger paying credits out of treasury
func NewMemoryLedger(treasury string) *MemoryLedger {
	return &MemoryLedger{
		balances: make(map[string]int64),
		treasury: domain.NormalizeAccount(treasury),
	}
}

// BalanceOf returns the balance of account
func (l *MemoryLedger) BalanceOf(ctx context.Context, account string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[domain.NormalizeAccount(account)], nil
}

// Debit moves amount between accounts
func (l *MemoryLedger) Debit(ctx context.Context, from, to string, amount int64) error {
	from, to = domain.NormalizeAccount(from), domain.NormalizeAccount(to)
	if err := validate(amount, from, to); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.move(from, to, amount)
}

// Credit pays amount out of the treasury
func (l *MemoryLedger) Credit(ctx context.Context, to string, amount int64) error {
	to = domain.NormalizeAccount(to)
	if err := validate(amount, to); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.move(l.treasury, to, amount)
}

// Mint creates amount in an account
func (l *MemoryLedger) Mint(ctx context.Context, to string, amount int64) error {
	to = domain.NormalizeAccount(to)
	if err := validate(amount, to); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[to] += amount
	return nil
}

func (l *MemoryLedger) move(from, to string, amount int64) error {
	if l.balances[from] < amount {
		return ErrInsufficientFunds
	}
	l.balances[from] -= amount
	l.balances[to] += amount
	return nil
}
