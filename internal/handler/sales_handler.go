package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/mahimasingh04/OpenEvent/internal/dto"
	"github.com/mahimasingh04/OpenEvent/internal/service"
	"github.com/mahimasingh04/OpenEvent/pkg/response"
	"github.com/mahimasingh04/OpenEvent/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// SalesHandler handles primary sales, promotions, refunds and insurance
type SalesHandler struct {
	settlementService service.SettlementService
	promotionService  service.PromotionService
	refundService     service.RefundService
}

// NewSalesHandler creates a new sales handler
func NewSalesHandler(settlement service.SettlementService, promotions service.PromotionService, refunds service.RefundService) *SalesHandler {
	return &SalesHandler{
		settlementService: settlement,
		promotionService:  promotions,
		refundService:     refunds,
	}
}

// Purchase handles POST /events/:id/purchase
func (h *SalesHandler) Purchase(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.sales.purchase")
	defer span.End()

	account, ok := caller(c, span)
	if !ok {
		return
	}
	eventID, ok := uintParam(c, span, "id")
	if !ok {
		return
	}
	var req dto.PurchaseRequest
	if !bindJSON(c, span, &req) {
		return
	}

	span.SetAttributes(
		attribute.Int64("event_id", int64(eventID)),
		attribute.Int("tier", req.Tier),
		attribute.Int64("quantity", req.Quantity),
	)

	receipt, err := h.settlementService.Purchase(ctx, &service.PurchaseRequest{
		EventID:   eventID,
		Buyer:     account,
		Tier:      req.Tier,
		Quantity:  req.Quantity,
		PromoCode: req.PromoCode,
	})
	if err != nil {
		handleError(c, span, err)
		return
	}

	span.SetAttributes(attribute.Int64("final_price", receipt.FinalPrice))
	succeed(span)
	response.Created(c, receipt)
}

// CreatePromotion handles POST /events/:id/promotions
func (h *SalesHandler) CreatePromotion(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.sales.create_promotion")
	defer span.End()

	account, ok := caller(c, span)
	if !ok {
		return
	}
	eventID, ok := uintParam(c, span, "id")
	if !ok {
		return
	}
	var req dto.PromotionRequest
	if !bindJSON(c, span, &req) {
		return
	}

	promo, err := h.promotionService.Create(ctx, &service.PromotionRequest{
		EventID:         eventID,
		Code:            req.Code,
		DiscountPercent: req.DiscountPercent,
		MaxUses:         req.MaxUses,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
	}, account)
	if err != nil {
		handleError(c, span, err)
		return
	}
	succeed(span)
	response.Created(c, promo)
}

// DeactivatePromotion handles DELETE /events/:id/promotions/:code
func (h *SalesHandler) DeactivatePromotion(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.sales.deactivate_promotion")
	defer span.End()

	account, ok := caller(c, span)
	if !ok {
		return
	}
	eventID, ok := uintParam(c, span, "id")
	if !ok {
		return
	}
	code := c.Param("code")
	if err := h.promotionService.Deactivate(ctx, eventID, code, account); err != nil {
		handleError(c, span, err)
		return
	}
	succeed(span)
	response.Success(c, gin.H{"event_id": eventID, "code": code, "is_active": false})
}

// ClaimRefund handles POST /events/:id/refund
func (h *SalesHandler) ClaimRefund(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.sales.refund")
	defer span.End()

	account, ok := caller(c, span)
	if !ok {
		return
	}
	eventID, ok := uintParam(c, span, "id")
	if !ok {
		return
	}
	refund, err := h.refundService.ClaimRefund(ctx, eventID, account)
	if err != nil {
		handleError(c, span, err)
		return
	}
	succeed(span)
	response.Success(c, refund)
}

// PurchaseInsurance handles POST /events/:id/insurance
func (h *SalesHandler) PurchaseInsurance(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.sales.insurance")
	defer span.End()

	account, ok := caller(c, span)
	if !ok {
		return
	}
	eventID, ok := uintParam(c, span, "id")
	if !ok {
		return
	}
	policy, err := h.refundService.PurchaseInsurance(ctx, eventID, account)
	if err != nil {
		handleError(c, span, err)
		return
	}
	succeed(span)
	response.Created(c, policy)
}

// ClaimInsurance handles POST /events/:id/insurance/claim
func (h *SalesHandler) ClaimInsurance(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.sales.insurance_claim")
	defer span.End()

	account, ok := caller(c, span)
	if !ok {
		return
	}
	eventID, ok := uintParam(c, span, "id")
	if !ok {
		return
	}
	policy, err := h.refundService.ClaimInsurance(ctx, eventID, account)
	if err != nil {
		handleError(c, span, err)
		return
	}
	succeed(span)
	response.Success(c, policy)
}
