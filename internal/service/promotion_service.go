package service

import (
	"context"
	"time"

	"github.com/mahimasingh04/OpenEvent/internal/domain"
	"github.com/mahimasingh04/OpenEvent/pkg/saga"
	"github.com/mahimasingh04/OpenEvent/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// PromotionRequest creates or replaces a discount code
type PromotionRequest struct {
	EventID         uint64
	Code            string
	DiscountPercent int64
	MaxUses         int64
	StartTime       time.Time
	EndTime         time.Time
}

// PromotionService manages discount codes; codes are consumed by purchases
type PromotionService interface {
	// Create creates or overwrites a code, resetting its usage
	Create(ctx context.Context, req *PromotionRequest, caller string) (*domain.Promotion, error)

	// Deactivate disables a code
	Deactivate(ctx context.Context, eventID uint64, code, caller string) error
}

type promotionService struct {
	*core
}

// NewPromotionService creates a new promotion service
func NewPromotionService(deps *Dependencies, cfg *EngineConfig) PromotionService {
	return &promotionService{core: newCore(deps, cfg)}
}

func (s *promotionService) Create(ctx context.Context, req *PromotionRequest, caller string) (*domain.Promotion, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.promotion.create")
	defer span.End()
	span.SetAttributes(attribute.Int64("event_id", int64(req.EventID)), attribute.Int64("discount_percent", req.DiscountPercent))

	var promo domain.Promotion
	err := s.transact(ctx, "promotion_create", req.EventID, func(ctx context.Context, state *domain.EventState, now time.Time) (*saga.Definition, error) {
		if err := s.authorizeOperator(&state.Event, caller); err != nil {
			return nil, err
		}
		if err := state.Event.EnsureOpen(now); err != nil {
			return nil, err
		}
		p, err := domain.NewPromotion(req.Code, req.DiscountPercent, req.MaxUses, req.StartTime, req.EndTime)
		if err != nil {
			return nil, err
		}
		state.PutPromotion(p)
		promo = *p
		return nil, nil
	})
	if err != nil {
		return nil, fail(ctx, span, "promotion_create", err)
	}

	s.publish(ctx, domain.EngineEventPromotionCreated, req.EventID, domain.NormalizeAccount(caller), promo)
	return &promo, nil
}

func (s *promotionService) Deactivate(ctx context.Context, eventID uint64, code, caller string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.promotion.deactivate")
	defer span.End()

	code = domain.NormalizePromoCode(code)
	err := s.transact(ctx, "promotion_deactivate", eventID, func(ctx context.Context, state *domain.EventState, now time.Time) (*saga.Definition, error) {
		if err := s.authorizeOperator(&state.Event, caller); err != nil {
			return nil, err
		}
		p, ok := state.Promotions[code]
		if !ok {
			return nil, domain.ErrPromotionNotFound
		}
		p.IsActive = false
		return nil, nil
	})
	if err != nil {
		return fail(ctx, span, "promotion_deactivate", err)
	}

	s.publish(ctx, domain.EngineEventPromotionDisabled, eventID, domain.NormalizeAccount(caller), map[string]string{"code": code})
	return nil
}
