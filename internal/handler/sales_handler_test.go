package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mahimasingh04/OpenEvent/internal/domain"
	"github.com/mahimasingh04/OpenEvent/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSalesHandler_Purchase(t *testing.T) {
	api := newTestAPI()
	var got *service.PurchaseRequest
	api.settlement.PurchaseFunc = func(ctx context.Context, req *service.PurchaseRequest) (*domain.Receipt, error) {
		got = req
		return &domain.Receipt{EventID: req.EventID, Buyer: req.Buyer, Quantity: req.Quantity, FinalPrice: 1100}, nil
	}

	w := doRequest(t, api.router("alice"), http.MethodPost, "/api/v1/events/9/purchase", gin.H{"tier": 1, "quantity": 15, "promo_code": "early"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, &service.PurchaseRequest{EventID: 9, Buyer: "alice", Tier: 1, Quantity: 15, PromoCode: "early"}, got)

	var receipt domain.Receipt
	decodeData(t, w, &receipt)
	assert.Equal(t, int64(1100), receipt.FinalPrice)

	w = doRequest(t, api.router("alice"), http.MethodPost, "/api/v1/events/9/purchase", gin.H{"tier": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSalesHandler_Promotions(t *testing.T) {
	api := newTestAPI()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	api.promotions.CreateFunc = func(ctx context.Context, req *service.PromotionRequest, caller string) (*domain.Promotion, error) {
		if caller != "org" {
			return nil, domain.ErrUnauthorized
		}
		return &domain.Promotion{Code: "EARLY", DiscountPercent: req.DiscountPercent, MaxUses: req.MaxUses, IsActive: true}, nil
	}
	api.promotions.DeactivateFunc = func(ctx context.Context, eventID uint64, code, caller string) error {
		if code != "EARLY" {
			return domain.ErrPromotionNotFound
		}
		return nil
	}

	body := gin.H{"code": "early", "discount_percent": 20, "max_uses": 5, "start_time": start, "end_time": start.Add(time.Hour)}
	w := doRequest(t, api.router("org"), http.MethodPost, "/api/v1/events/1/promotions", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doRequest(t, api.router("bob"), http.MethodPost, "/api/v1/events/1/promotions", body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, api.router("org"), http.MethodDelete, "/api/v1/events/1/promotions/EARLY", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, api.router("org"), http.MethodDelete, "/api/v1/events/1/promotions/NOPE", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSalesHandler_RefundAndInsurance(t *testing.T) {
	api := newTestAPI()
	api.refunds.ClaimRefundFunc = func(ctx context.Context, eventID uint64, holder string) (*service.Refund, error) {
		return &service.Refund{EventID: eventID, Holder: holder, Amount: 180}, nil
	}
	api.refunds.PurchaseInsuranceFunc = func(ctx context.Context, eventID uint64, holder string) (*domain.InsurancePolicy, error) {
		return nil, domain.ErrAlreadyInsured
	}
	api.refunds.ClaimInsuranceFunc = func(ctx context.Context, eventID uint64, holder string) (*domain.InsurancePolicy, error) {
		return &domain.InsurancePolicy{Holder: holder, CoverageAmount: 144, IsClaimed: true}, nil
	}
	router := api.router("alice")

	w := doRequest(t, router, http.MethodPost, "/api/v1/events/1/refund", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var refund service.Refund
	decodeData(t, w, &refund)
	assert.Equal(t, int64(180), refund.Amount)
	assert.Equal(t, "alice", refund.Holder)

	w = doRequest(t, router, http.MethodPost, "/api/v1/events/1/insurance", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(t, router, http.MethodPost, "/api/v1/events/1/insurance/claim", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var policy domain.InsurancePolicy
	decodeData(t, w, &policy)
	assert.True(t, policy.IsClaimed)
}
