package service

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mahimasingh04/OpenEvent/internal/domain"
	"github.com/mahimasingh04/OpenEvent/internal/ledger"
	"github.com/mahimasingh04/OpenEvent/internal/repository"
	"github.com/mahimasingh04/OpenEvent/pkg/clock"
	"github.com/mahimasingh04/OpenEvent/pkg/logger"
	"github.com/mahimasingh04/OpenEvent/pkg/saga"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const (
	testOrganizer = "org"
	testOwner     = "platform"
	testTreasury  = "treasury"
	testSignerKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
)

var errCommitFailed = errors.New("commit failed")

// MockLedger wraps a memory ledger; a non-nil Func intercepts that call
type MockLedger struct {
	*ledger.MemoryLedger
	DebitFunc  func(ctx context.Context, from, to string, amount int64) error
	CreditFunc func(ctx context.Context, to string, amount int64) error
}

func (m *MockLedger) Debit(ctx context.Context, from, to string, amount int64) error {
	if m.DebitFunc != nil {
		return m.DebitFunc(ctx, from, to, amount)
	}
	return m.MemoryLedger.Debit(ctx, from, to, amount)
}

func (m *MockLedger) Credit(ctx context.Context, to string, amount int64) error {
	if m.CreditFunc != nil {
		return m.CreditFunc(ctx, to, amount)
	}
	return m.MemoryLedger.Credit(ctx, to, amount)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu          sync.Mutex
	events      []*domain.EngineEvent
	PublishFunc func(ctx context.Context, event *domain.EngineEvent) error
}

func (m *MockEventPublisher) Publish(ctx context.Context, event *domain.EngineEvent) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockEventPublisher) Close() error { return nil }

func (m *MockEventPublisher) Types() []domain.EngineEventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.EngineEventType, len(m.events))
	for i, e := range m.events {
		out[i] = e.Type
	}
	return out
}

// flakyCommitRepository fails the commit of the next failCommits updates after fn succeeded.
// With retry set it re-runs fn the way the postgres store does after a retryable failure.
type flakyCommitRepository struct {
	*repository.MemoryEventRepository
	mu          sync.Mutex
	failCommits int
	retry       bool
	attempts    int
}

func (r *flakyCommitRepository) Update(ctx context.Context, id uint64, fn repository.UpdateFunc) error {
	for {
		err := r.MemoryEventRepository.Update(ctx, id, func(ctx context.Context, s *domain.EventState) error {
			r.mu.Lock()
			r.attempts++
			r.mu.Unlock()
			if err := fn(ctx, s); err != nil {
				return err
			}
			r.mu.Lock()
			defer r.mu.Unlock()
			if r.failCommits > 0 {
				r.failCommits--
				return errCommitFailed
			}
			return nil
		})
		if errors.Is(err, errCommitFailed) && r.retry {
			continue
		}
		return err
	}
}

type fixture struct {
	t         *testing.T
	clock     *clock.Manual
	memory    *repository.MemoryEventRepository
	ledger    *MockLedger
	publisher *MockEventPublisher
	signerKey *ecdsa.PrivateKey

	events     EventService
	settlement SettlementService
	resale     ResaleService
	waitlist   WaitlistService
	promotions PromotionService
	refunds    RefundService
	checkins   CheckInService
	accounts   AccountService
}

type fixtureOption func(deps *Dependencies, cfg *EngineConfig)

// withFlakyCommits routes updates through repo, wrapping the fixture's memory store
func withFlakyCommits(repo *flakyCommitRepository) fixtureOption {
	return func(deps *Dependencies, cfg *EngineConfig) {
		repo.MemoryEventRepository = deps.Events.(*repository.MemoryEventRepository)
		deps.Events = repo
	}
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	key, err := crypto.HexToECDSA(testSignerKey)
	require.NoError(t, err)

	f := &fixture{
		t:         t,
		clock:     clock.NewManual(testNow),
		memory:    repository.NewMemoryEventRepository(),
		ledger:    &MockLedger{MemoryLedger: ledger.NewMemoryLedger(testTreasury)},
		publisher: &MockEventPublisher{},
		signerKey: key,
	}

	cfg := DefaultEngineConfig()
	cfg.PlatformOwner = testOwner
	cfg.Treasury = testTreasury
	cfg.CheckInSigner = crypto.PubkeyToAddress(key.PublicKey).Hex()
	cfg.Insurance.ClaimWindow = 24 * time.Hour

	deps := &Dependencies{
		Events:       f.memory,
		Sequencer:    repository.NewMemorySequencer(1, 1),
		Ledger:       f.ledger,
		Orchestrator: saga.NewOrchestrator(&saga.OrchestratorConfig{Logger: logger.NewNop()}),
		Publisher:    f.publisher,
		Clock:        f.clock,
		Logger:       logger.NewNop(),
	}
	for _, opt := range opts {
		opt(deps, cfg)
	}

	f.events = NewEventService(deps, cfg)
	f.settlement = NewSettlementService(deps, cfg)
	f.resale = NewResaleService(deps, cfg)
	f.waitlist = NewWaitlistService(deps, cfg)
	f.promotions = NewPromotionService(deps, cfg)
	f.refunds = NewRefundService(deps, cfg)
	f.checkins, err = NewCheckInService(deps, cfg)
	require.NoError(t, err)
	f.accounts = NewAccountService(deps, cfg)
	return f
}

// createEvent creates an event 48 hours out with an 80 percent organizer share
func (f *fixture) createEvent(capacity int64, tiers ...domain.TierParams) uint64 {
	f.t.Helper()
	state, err := f.events.CreateEvent(context.Background(), testOrganizer, domain.EventParams{
		Name:                  "Launch Night",
		Venue:                 "Hall A",
		EventDate:             testNow.Add(48 * time.Hour),
		OrganizerSharePercent: 80,
		MaxCapacity:           capacity,
		Tiers:                 tiers,
	})
	require.NoError(f.t, err)
	return state.Event.ID
}

func (f *fixture) fund(account string, amount int64) {
	f.t.Helper()
	require.NoError(f.t, f.ledger.Mint(context.Background(), account, amount))
}

func (f *fixture) buy(eventID uint64, buyer string, tier int, quantity int64) *domain.Receipt {
	f.t.Helper()
	r, err := f.settlement.Purchase(context.Background(), &PurchaseRequest{EventID: eventID, Buyer: buyer, Tier: tier, Quantity: quantity})
	require.NoError(f.t, err)
	return r
}

func (f *fixture) balance(account string) int64 {
	f.t.Helper()
	b, err := f.ledger.BalanceOf(context.Background(), account)
	require.NoError(f.t, err)
	return b
}

func (f *fixture) state(eventID uint64) *domain.EventState {
	f.t.Helper()
	s, err := f.memory.Get(context.Background(), eventID)
	require.NoError(f.t, err)
	return s
}

func gaTier(price, quantity int64) domain.TierParams {
	return domain.TierParams{Name: "General", BasePrice: price, Quantity: quantity}
}
