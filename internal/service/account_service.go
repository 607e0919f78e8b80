package service

import (
	"context"
	"fmt"

	"github.com/mahimasingh04/OpenEvent/internal/domain"
	"github.com/mahimasingh04/OpenEvent/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// AccountService exposes the token ledger the engine settles against
type AccountService interface {
	// Balance returns an account's balance
	Balance(ctx context.Context, account string) (int64, error)

	// Mint creates tokens in an account; platform owner only
	Mint(ctx context.Context, to string, amount int64, caller string) (int64, error)
}

type accountService struct {
	*core
}

// NewAccountService creates a new account service
func NewAccountService(deps *Dependencies, cfg *EngineConfig) AccountService {
	return &accountService{core: newCore(deps, cfg)}
}

func (s *accountService) Balance(ctx context.Context, account string) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.account.balance")
	defer span.End()

	account = domain.NormalizeAccount(account)
	if account == "" {
		return 0, fail(ctx, span, "balance", domain.ErrInvalidAccount)
	}
	balance, err := s.ledger.BalanceOf(ctx, account)
	if err != nil {
		return 0, fail(ctx, span, "balance", fmt.Errorf("failed to read balance: %w", err))
	}
	return balance, nil
}

// Mint returns the new balance of to
func (s *accountService) Mint(ctx context.Context, to string, amount int64, caller string) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.account.mint")
	defer span.End()

	to = domain.NormalizeAccount(to)
	span.SetAttributes(attribute.String("to", to), attribute.Int64("amount", amount))
	if !s.isPlatformOwner(caller) {
		return 0, fail(ctx, span, "mint", domain.ErrUnauthorized)
	}
	if to == "" {
		return 0, fail(ctx, span, "mint", domain.ErrInvalidAccount)
	}
	if amount <= 0 {
		return 0, fail(ctx, span, "mint", domain.ErrInvalidAmount)
	}
	if err := s.ledger.Mint(ctx, to, amount); err != nil {
		return 0, fail(ctx, span, "mint", fmt.Errorf("failed to mint: %w", err))
	}

	s.logger.InfoContext(ctx, "tokens minted", zap.String("to", to), zap.Int64("amount", amount))
	return s.Balance(ctx, to)
}
