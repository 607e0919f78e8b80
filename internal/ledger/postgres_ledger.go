package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mahimasingh04/OpenEvent/internal/domain"
	"github.com/mahimasingh04/OpenEvent/pkg/database"
	"github.com/mahimasingh04/OpenEvent/pkg/retry"
	"github.com/mahimasingh04/OpenEvent/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostgresLedger keeps balances in ledger_accounts and an audit trail in ledger_entries.
// A call made inside an event transaction runs in a savepoint on that
// transaction's connection and commits or rolls back with it.
type PostgresLedger struct {
	pool     *pgxpool.Pool
	treasury string
	retry    *retry.Config
}

// NewPostgresLedger creates a ledger paying credits out of treasury
func NewPostgresLedger(pool *pgxpool.Pool, treasury string) *PostgresLedger {
	cfg := retry.DefaultConfig()
	cfg.ShouldRetry = database.IsRetryable
	return &PostgresLedger{
		pool:     pool,
		treasury: domain.NormalizeAccount(treasury),
		retry:    cfg,
	}
}

// JoinsTx reports whether calls made with ctx run inside its transaction
func (l *PostgresLedger) JoinsTx(ctx context.Context) bool {
	return database.TxFromContext(ctx) != nil
}

// BalanceOf returns the balance of account
func (l *PostgresLedger) BalanceOf(ctx context.Context, account string) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ledger.balance_of")
	defer span.End()

	var balance int64
	err := database.Conn(ctx, l.pool).QueryRow(ctx, `SELECT balance FROM ledger_accounts WHERE account = $1`,
		domain.NormalizeAccount(account)).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}
	return balance, nil
}

// Debit moves amount between accounts
func (l *PostgresLedger) Debit(ctx context.Context, from, to string, amount int64) error {
	return l.transfer(ctx, "debit", domain.NormalizeAccount(from), domain.NormalizeAccount(to), amount)
}

// Credit pays amount out of the treasury
func (l *PostgresLedger) Credit(ctx context.Context, to string, amount int64) error {
	return l.transfer(ctx, "credit", l.treasury, domain.NormalizeAccount(to), amount)
}

// Mint creates amount in an account
func (l *PostgresLedger) Mint(ctx context.Context, to string, amount int64) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ledger.mint")
	defer span.End()

	to = domain.NormalizeAccount(to)
	if err := validate(amount, to); err != nil {
		return err
	}
	err := l.inTx(ctx, func(ctx context.Context) error {
		q := database.Conn(ctx, l.pool)
		if err := deposit(ctx, q, to, amount); err != nil {
			return err
		}
		return record(ctx, q, "mint", "", to, amount)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (l *PostgresLedger) transfer(ctx context.Context, kind, from, to string, amount int64) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ledger."+kind)
	defer span.End()
	span.SetAttributes(
		attribute.String("from", from),
		attribute.String("to", to),
		attribute.Int64("amount", amount),
	)

	if err := validate(amount, from, to); err != nil {
		return err
	}

	err := l.inTx(ctx, func(ctx context.Context) error {
		q := database.Conn(ctx, l.pool)
		tag, err := q.Exec(ctx, `
UPDATE ledger_accounts SET balance = balance - $2, updated_at = NOW()
WHERE account = $1 AND balance >= $2`, from, amount)
		if err != nil {
			return fmt.Errorf("failed to debit %s: %w", from, err)
		}
		if tag.RowsAffected() == 0 {
			return retry.Permanent(ErrInsufficientFunds)
		}
		if err := deposit(ctx, q, to, amount); err != nil {
			return err
		}
		return record(ctx, q, kind, from, to, amount)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// inTx joins the context transaction when there is one. The caller owns
// retries then, since a deadlock aborts the whole outer transaction.
// Standalone calls run in a fresh transaction, retrying deadlocks between
// opposing transfers.
func (l *PostgresLedger) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if database.TxFromContext(ctx) != nil {
		err := database.WithSavepoint(ctx, l.pool, fn)
		var perm *retry.PermanentError
		if errors.As(err, &perm) {
			return perm.Err
		}
		return err
	}
	result := retry.Do(ctx, l.retry, func(ctx context.Context) error {
		return database.WithTx(ctx, l.pool, fn)
	})
	return result.Err
}

func deposit(ctx context.Context, q database.Querier, to string, amount int64) error {
	_, err := q.Exec(ctx, `
INSERT INTO ledger_accounts (account, balance) VALUES ($1, $2)
ON CONFLICT (account) DO UPDATE SET balance = ledger_accounts.balance + EXCLUDED.balance, updated_at = NOW()`,
		to, amount)
	if err != nil {
		return fmt.Errorf("failed to credit %s: %w", to, err)
	}
	return nil
}

func record(ctx context.Context, q database.Querier, kind, from, to string, amount int64) error {
	_, err := q.Exec(ctx, `INSERT INTO ledger_entries (kind, from_account, to_account, amount) VALUES ($1, $2, $3, $4)`,
		kind, from, to, amount)
	if err != nil {
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}
	return nil
}
