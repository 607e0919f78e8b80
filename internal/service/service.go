package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mahimasingh04/OpenEvent/internal/domain"
	"github.com/mahimasingh04/OpenEvent/internal/ledger"
	"github.com/mahimasingh04/OpenEvent/internal/metrics"
	"github.com/mahimasingh04/OpenEvent/internal/repository"
	"github.com/mahimasingh04/OpenEvent/pkg/clock"
	"github.com/mahimasingh04/OpenEvent/pkg/logger"
	"github.com/mahimasingh04/OpenEvent/pkg/saga"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Dependencies are the collaborators shared by every engine service
type Dependencies struct {
	Events       repository.EventRepository
	Sequencer    repository.Sequencer
	Ledger       ledger.Ledger
	Orchestrator *saga.Orchestrator
	Publisher    EventPublisher
	Clock        clock.Clock
	Logger       *logger.Logger
}

// EngineConfig holds the platform-wide engine parameters
type EngineConfig struct {
	PlatformOwner       string
	Treasury            string
	ResaleFeePercent    int64
	Insurance           domain.InsuranceTerms
	PriceUpdateInterval time.Duration
	MaxDemandMultiplier int64
	CheckInWindow       time.Duration
	CheckInSigner       string
}

// DefaultEngineConfig returns the default engine parameters
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		PlatformOwner:    "platform",
		Treasury:         "treasury",
		ResaleFeePercent: 5,
		Insurance: domain.InsuranceTerms{
			CoverageRate: 80,
			PremiumRate:  10,
			ClaimWindow:  30 * 24 * time.Hour,
		},
		PriceUpdateInterval: time.Hour,
		MaxDemandMultiplier: domain.DefaultMaxDemandMultiplier,
		CheckInWindow:       6 * time.Hour,
	}
}

// core carries what every service needs to mutate an event and settle it
type core struct {
	events       repository.EventRepository
	sequencer    repository.Sequencer
	ledger       ledger.Ledger
	orchestrator *saga.Orchestrator
	publisher    EventPublisher
	clock        clock.Clock
	logger       *logger.Logger

	platformOwner string
	treasury      string
}

func newCore(deps *Dependencies, cfg *EngineConfig) *core {
	if cfg == nil {
		cfg = DefaultEngineConfig()
	}
	c := &core{
		events:        deps.Events,
		sequencer:     deps.Sequencer,
		ledger:        deps.Ledger,
		orchestrator:  deps.Orchestrator,
		publisher:     deps.Publisher,
		clock:         deps.Clock,
		logger:        deps.Logger,
		platformOwner: domain.NormalizeAccount(cfg.PlatformOwner),
		treasury:      domain.NormalizeAccount(cfg.Treasury),
	}
	if c.publisher == nil {
		c.publisher = NewNoOpEventPublisher()
	}
	if c.clock == nil {
		c.clock = clock.NewSystem()
	}
	if c.logger == nil {
		c.logger = logger.NewNop()
	}
	if c.orchestrator == nil {
		c.orchestrator = saga.NewOrchestrator(&saga.OrchestratorConfig{Logger: c.logger})
	}
	return c
}

// mutation runs inside an event's critical section. The saga it returns
// settles the mutation in the ledger and runs before the state commits.
type mutation func(ctx context.Context, state *domain.EventState, now time.Time) (*saga.Definition, error)

// transact applies fn to one event atomically. A failed saga leaves the state
// untouched; a saga that settled but whose commit then failed is compensated,
// unless the ledger wrote inside the store's transaction and rolled back with it.
func (c *core) transact(ctx context.Context, op string, eventID uint64, fn mutation) error {
	var settled *saga.Instance

	err := c.events.Update(ctx, eventID, func(ctx context.Context, state *domain.EventState) error {
		if settled != nil {
			// the store retried after a failed commit
			c.compensate(ctx, op, eventID, settled)
			settled = nil
		}

		def, err := fn(ctx, state, c.clock.Now())
		if err != nil {
			return err
		}
		if def == nil || len(def.Steps) == 0 {
			return nil
		}

		instance, err := c.orchestrator.Execute(ctx, def)
		if err != nil {
			metrics.RecordPaymentRollback(ctx, eventID, op)
			return paymentFailure(err)
		}
		if !c.settlesWithStore(ctx) {
			settled = instance
		}
		return nil
	})
	if err != nil && settled != nil {
		c.compensate(ctx, op, eventID, settled)
	}
	return err
}

func (c *core) settlesWithStore(ctx context.Context) bool {
	t, ok := c.ledger.(ledger.Transactional)
	return ok && t.JoinsTx(ctx)
}

func (c *core) compensate(ctx context.Context, op string, eventID uint64, instance *saga.Instance) {
	ctx = context.WithoutCancel(ctx)
	err := c.orchestrator.Compensate(ctx, instance)
	metrics.RecordCompensation(ctx, eventID, op, err == nil)
	if err != nil {
		c.logger.ErrorContext(ctx, "settlement compensation incomplete",
			zap.String("operation", op),
			zap.Uint64("event_id", eventID),
			zap.String("saga_id", instance.ID),
			zap.Error(err),
		)
		return
	}
	c.logger.WarnContext(ctx, "settlement compensated after failed commit",
		zap.String("operation", op),
		zap.Uint64("event_id", eventID),
		zap.String("saga_id", instance.ID),
	)
}

// paymentFailure surfaces the ledger error that stopped a saga
func paymentFailure(err error) error {
	var stepErr *saga.StepError
	if errors.As(err, &stepErr) {
		err = stepErr.Err
	}
	return fmt.Errorf("%w: %w", domain.ErrPaymentFailed, err)
}

// authorizeOperator is the organizer-or-platform-owner check used by every operator entry point
func (c *core) authorizeOperator(e *domain.Event, caller string) error {
	return domain.AuthorizeOperator(e, caller, c.platformOwner)
}

func (c *core) isPlatformOwner(caller string) bool {
	caller = domain.NormalizeAccount(caller)
	return caller != "" && caller == c.platformOwner
}

// transfer describes a ledger movement for dead letter reconciliation
type transfer struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

// collectStep charges from into the treasury. Zero amounts produce no step.
func (c *core) collectStep(name, from string, amount int64) *saga.Step {
	if amount <= 0 {
		return nil
	}
	return &saga.Step{
		Name: name,
		Execute: func(ctx context.Context) error {
			return c.ledger.Debit(ctx, from, c.treasury, amount)
		},
		Compensate: func(ctx context.Context) error {
			return c.ledger.Credit(ctx, from, amount)
		},
		Payload: transfer{From: from, To: c.treasury, Amount: amount},
	}
}

// payoutStep pays to out of the treasury. Zero amounts produce no step.
func (c *core) payoutStep(name, to string, amount int64) *saga.Step {
	if amount <= 0 {
		return nil
	}
	return &saga.Step{
		Name: name,
		Execute: func(ctx context.Context) error {
			return c.ledger.Credit(ctx, to, amount)
		},
		Compensate: func(ctx context.Context) error {
			return c.ledger.Debit(ctx, to, c.treasury, amount)
		},
		Payload: transfer{From: c.treasury, To: to, Amount: amount},
	}
}

// publish emits a domain event after commit; failures are logged, never returned
func (c *core) publish(ctx context.Context, eventType domain.EngineEventType, eventID uint64, actor string, data interface{}) {
	ev := &domain.EngineEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		EventID:   eventID,
		Actor:     actor,
		Data:      data,
		Timestamp: c.clock.Now(),
	}
	if err := c.publisher.Publish(ctx, ev); err != nil {
		c.logger.WarnContext(ctx, "failed to publish engine event",
			zap.String("type", string(eventType)),
			zap.Uint64("event_id", eventID),
			zap.Error(err),
		)
	}
}

// fail marks the span failed and counts the rejection
func fail(ctx context.Context, span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	code := "INTERNAL_ERROR"
	if de, ok := domain.AsError(err); ok {
		code = de.Code
	}
	metrics.RecordFailure(ctx, op, code)
	return err
}

// snapshot reads an event's committed state
func (c *core) snapshot(ctx context.Context, eventID uint64) (*domain.EventState, error) {
	return c.events.Get(ctx, eventID)
}
