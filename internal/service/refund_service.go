package service

import (
	"context"
	"time"

	"github.com/mahimasingh04/OpenEvent/internal/domain"
	"github.com/mahimasingh04/OpenEvent/internal/metrics"
	"github.com/mahimasingh04/OpenEvent/pkg/saga"
	"github.com/mahimasingh04/OpenEvent/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// Refund is a paid cancellation refund
type Refund struct {
	EventID uint64 `json:"event_id"`
	Holder  string `json:"holder"`
	Amount  int64  `json:"amount"`
}

// RefundService defines cancellation refunds and ticket insurance.
// Refunds and insurance claims are independent payouts.
type RefundService interface {
	// ClaimRefund returns all of the holder's tickets for their cost basis
	ClaimRefund(ctx context.Context, eventID uint64, holder string) (*Refund, error)

	// PurchaseInsurance buys cancellation cover over the holder's current tickets
	PurchaseInsurance(ctx context.Context, eventID uint64, holder string) (*domain.InsurancePolicy, error)

	// ClaimInsurance pays out the holder's policy after cancellation
	ClaimInsurance(ctx context.Context, eventID uint64, holder string) (*domain.InsurancePolicy, error)
}

type refundService struct {
	*core
	terms domain.InsuranceTerms
}

// NewRefundService creates a new refund service
func NewRefundService(deps *Dependencies, cfg *EngineConfig) RefundService {
	if cfg == nil {
		cfg = DefaultEngineConfig()
	}
	return &refundService{
		core:  newCore(deps, cfg),
		terms: cfg.Insurance,
	}
}

func (s *refundService) ClaimRefund(ctx context.Context, eventID uint64, holder string) (*Refund, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.refund.claim_refund")
	defer span.End()

	holder = domain.NormalizeAccount(holder)
	span.SetAttributes(attribute.Int64("event_id", int64(eventID)), attribute.String("holder", holder))

	refund := &Refund{EventID: eventID, Holder: holder}
	err := s.transact(ctx, "claim_refund", eventID, func(ctx context.Context, state *domain.EventState, now time.Time) (*saga.Definition, error) {
		if err := state.Event.EnsureCancelled(); err != nil {
			return nil, err
		}
		amount, err := state.SurrenderHoldings(holder)
		if err != nil {
			return nil, err
		}
		refund.Amount = amount
		return saga.NewDefinition("refund").
			AddStep(s.payoutStep("credit_holder", holder, amount)), nil
	})
	if err != nil {
		return nil, fail(ctx, span, "claim_refund", err)
	}

	metrics.RecordRefund(ctx, eventID, refund.Amount)
	s.publish(ctx, domain.EngineEventRefundPaid, eventID, holder, refund)
	return refund, nil
}

func (s *refundService) PurchaseInsurance(ctx context.Context, eventID uint64, holder string) (*domain.InsurancePolicy, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.refund.purchase_insurance")
	defer span.End()

	holder = domain.NormalizeAccount(holder)
	span.SetAttributes(attribute.Int64("event_id", int64(eventID)), attribute.String("holder", holder))

	var policy domain.InsurancePolicy
	err := s.transact(ctx, "purchase_insurance", eventID, func(ctx context.Context, state *domain.EventState, now time.Time) (*saga.Definition, error) {
		if err := state.Event.EnsureOpen(now); err != nil {
			return nil, err
		}
		p, err := state.Insure(holder, s.terms, now)
		if err != nil {
			return nil, err
		}
		policy = *p
		return saga.NewDefinition("insurance_premium").
			AddStep(s.collectStep("debit_premium", holder, p.Premium)), nil
	})
	if err != nil {
		return nil, fail(ctx, span, "purchase_insurance", err)
	}

	s.publish(ctx, domain.EngineEventInsuranceBought, eventID, holder, policy)
	return &policy, nil
}

func (s *refundService) ClaimInsurance(ctx context.Context, eventID uint64, holder string) (*domain.InsurancePolicy, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.refund.claim_insurance")
	defer span.End()

	holder = domain.NormalizeAccount(holder)
	span.SetAttributes(attribute.Int64("event_id", int64(eventID)), attribute.String("holder", holder))

	var policy domain.InsurancePolicy
	err := s.transact(ctx, "claim_insurance", eventID, func(ctx context.Context, state *domain.EventState, now time.Time) (*saga.Definition, error) {
		if err := state.Event.EnsureCancelled(); err != nil {
			return nil, err
		}
		p, err := state.ClaimPolicy(holder, now)
		if err != nil {
			return nil, err
		}
		policy = *p
		return saga.NewDefinition("insurance_claim").
			AddStep(s.payoutStep("credit_coverage", holder, p.CoverageAmount)), nil
	})
	if err != nil {
		return nil, fail(ctx, span, "claim_insurance", err)
	}

	metrics.RecordInsuranceClaim(ctx, eventID, policy.CoverageAmount)
	s.publish(ctx, domain.EngineEventInsurancePaid, eventID, holder, policy)
	return &policy, nil
}
