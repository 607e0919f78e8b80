package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mahimasingh04/OpenEvent/internal/domain"
	"github.com/mahimasingh04/OpenEvent/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestHandleError_StatusByKind(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", domain.ErrInvalidQuantity, http.StatusBadRequest, "INVALID_QUANTITY"},
		{"state", domain.ErrEventCancelled, http.StatusConflict, "EVENT_CANCELLED"},
		{"exhausted", domain.ErrOutOfStock, http.StatusConflict, "OUT_OF_STOCK"},
		{"payment", fmt.Errorf("%w: %w", domain.ErrPaymentFailed, errors.New("insufficient balance")), http.StatusPaymentRequired, "PAYMENT_FAILED"},
		{"authorization", domain.ErrUnauthorized, http.StatusForbidden, "UNAUTHORIZED"},
		{"not found", domain.ErrEventNotFound, http.StatusNotFound, "EVENT_NOT_FOUND"},
		{"infrastructure", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI()
			api.settlement.PurchaseFunc = func(ctx context.Context, req *service.PurchaseRequest) (*domain.Receipt, error) {
				return nil, tt.err
			}
			w := doRequest(t, api.router("alice"), http.MethodPost, "/api/v1/events/1/purchase", gin.H{"quantity": 1})

			assert.Equal(t, tt.wantStatus, w.Code)
			env := decode(t, w)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantCode, env.Error.Code)
			if tt.wantStatus == http.StatusInternalServerError {
				assert.NotContains(t, env.Error.Message, "connection reset")
			}
		})
	}
}
