package di

import (
	"fmt"

	"github.com/mahimasingh04/OpenEvent/internal/domain"
	"github.com/mahimasingh04/OpenEvent/internal/handler"
	"github.com/mahimasingh04/OpenEvent/internal/ledger"
	"github.com/mahimasingh04/OpenEvent/internal/repository"
	"github.com/mahimasingh04/OpenEvent/internal/service"
	"github.com/mahimasingh04/OpenEvent/pkg/clock"
	"github.com/mahimasingh04/OpenEvent/pkg/config"
	"github.com/mahimasingh04/OpenEvent/pkg/database"
	"github.com/mahimasingh04/OpenEvent/pkg/kafka"
	"github.com/mahimasingh04/OpenEvent/pkg/logger"
	"github.com/mahimasingh04/OpenEvent/pkg/redis"
	"github.com/mahimasingh04/OpenEvent/pkg/retry"
	"github.com/mahimasingh04/OpenEvent/pkg/saga"
	"go.uber.org/zap"
)

// Container holds all dependencies for the engine
type Container struct {
	// Infrastructure
	DB       *database.PostgresDB
	Redis    *redis.Client
	Producer *kafka.Producer

	// Stores
	Events    repository.EventRepository
	Sequencer repository.Sequencer
	Ledger    ledger.Ledger

	// Publishers
	EventPublisher service.EventPublisher

	// Services
	EventService      service.EventService
	SettlementService service.SettlementService
	ResaleService     service.ResaleService
	WaitlistService   service.WaitlistService
	PromotionService  service.PromotionService
	RefundService     service.RefundService
	CheckInService    service.CheckInService
	AccountService    service.AccountService

	// Handlers
	HealthHandler *handler.HealthHandler
	Handlers      *handler.Handlers
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	// DB selects the postgres stores; nil keeps everything in memory
	DB *database.PostgresDB
	// Redis and Producer are optional
	Redis    *redis.Client
	Producer *kafka.Producer

	ServiceName string
	EventsTopic string
	DLQTopic    string
	Engine      *service.EngineConfig
	Clock       clock.Clock
	Logger      *logger.Logger
}

// EngineConfigFrom maps the loaded ENGINE_* settings onto the service parameters
func EngineConfigFrom(cfg *config.EngineConfig) *service.EngineConfig {
	return &service.EngineConfig{
		PlatformOwner:    cfg.PlatformOwner,
		Treasury:         cfg.TreasuryAccount,
		ResaleFeePercent: cfg.ResaleFeePercent,
		Insurance: domain.InsuranceTerms{
			CoverageRate: cfg.InsuranceCoverageRate,
			PremiumRate:  cfg.InsurancePremiumRate,
			ClaimWindow:  cfg.InsuranceClaimWindow,
		},
		PriceUpdateInterval: cfg.PriceUpdateInterval,
		MaxDemandMultiplier: cfg.MaxDemandMultiplier,
		CheckInWindow:       cfg.CheckInWindow,
		CheckInSigner:       cfg.CheckInSigner,
	}
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) (*Container, error) {
	if cfg.Engine == nil {
		cfg.Engine = service.DefaultEngineConfig()
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}

	c := &Container{
		DB:       cfg.DB,
		Redis:    cfg.Redis,
		Producer: cfg.Producer,
	}

	// Stores
	treasury := domain.NormalizeAccount(cfg.Engine.Treasury)
	if c.DB != nil {
		pool := c.DB.Pool()
		c.Events = repository.NewPostgresEventRepository(pool)
		c.Sequencer = repository.NewPostgresSequencer(pool)
		c.Ledger = ledger.NewPostgresLedger(pool, treasury)
	} else {
		c.Events = repository.NewMemoryEventRepository()
		c.Sequencer = repository.NewMemorySequencer(1, 1)
		c.Ledger = ledger.NewMemoryLedger(treasury)
	}

	// Publishers and the compensation dead letter queue
	var dlqPublisher retry.DLQPublisher = retry.NoOpDLQPublisher{}
	if c.Producer != nil {
		publisher, err := service.NewKafkaEventPublisher(c.Producer, &service.EventPublisherConfig{
			Topic:       cfg.EventsTopic,
			ServiceName: cfg.ServiceName,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create event publisher: %w", err)
		}
		c.EventPublisher = publisher
		dlqPublisher = retry.NewKafkaDLQPublisher(c.Producer, cfg.DLQTopic, cfg.ServiceName)
	} else {
		c.EventPublisher = service.NewNoOpEventPublisher()
	}

	compensation := retry.NewDLQHandler(retry.CompensationConfig(), dlqPublisher, func(msg *retry.DeadLetter) {
		log.Error("compensation parked in dead letter queue",
			zap.String("id", msg.ID),
			zap.String("key", msg.Key),
			zap.Int("attempts", msg.Attempts),
			zap.String("error", msg.Error),
		)
	})

	deps := &service.Dependencies{
		Events:       c.Events,
		Sequencer:    c.Sequencer,
		Ledger:       c.Ledger,
		Orchestrator: saga.NewOrchestrator(&saga.OrchestratorConfig{Logger: log, Compensation: compensation}),
		Publisher:    c.EventPublisher,
		Clock:        cfg.Clock,
		Logger:       log,
	}

	// Initialize services
	c.EventService = service.NewEventService(deps, cfg.Engine)
	c.SettlementService = service.NewSettlementService(deps, cfg.Engine)
	c.ResaleService = service.NewResaleService(deps, cfg.Engine)
	c.WaitlistService = service.NewWaitlistService(deps, cfg.Engine)
	c.PromotionService = service.NewPromotionService(deps, cfg.Engine)
	c.RefundService = service.NewRefundService(deps, cfg.Engine)
	c.AccountService = service.NewAccountService(deps, cfg.Engine)
	checkins, err := service.NewCheckInService(deps, cfg.Engine)
	if err != nil {
		return nil, fmt.Errorf("failed to create check-in service: %w", err)
	}
	c.CheckInService = checkins

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(cfg.ServiceName, c.readinessChecks())
	c.Handlers = &handler.Handlers{
		Event:   handler.NewEventHandler(c.EventService),
		Sales:   handler.NewSalesHandler(c.SettlementService, c.PromotionService, c.RefundService),
		Market:  handler.NewMarketHandler(c.ResaleService, c.WaitlistService),
		CheckIn: handler.NewCheckInHandler(c.CheckInService),
		Ledger:  handler.NewLedgerHandler(c.AccountService),
	}

	return c, nil
}

func (c *Container) readinessChecks() map[string]handler.Checker {
	checks := map[string]handler.Checker{}
	if c.DB != nil {
		checks["postgres"] = c.DB.HealthCheck
	}
	if c.Redis != nil {
		checks["redis"] = c.Redis.HealthCheck
	}
	if c.Producer != nil {
		checks["kafka"] = c.Producer.Ping
	}
	return checks
}

// Close closes the event publisher, which owns the Kafka producer
func (c *Container) Close() error {
	if c.EventPublisher != nil {
		return c.EventPublisher.Close()
	}
	return nil
}
