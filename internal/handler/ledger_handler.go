package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/mahimasingh04/OpenEvent/internal/domain"
	"github.com/mahimasingh04/OpenEvent/internal/dto"
	"github.com/mahimasingh04/OpenEvent/internal/service"
	"github.com/mahimasingh04/OpenEvent/pkg/response"
	"github.com/mahimasingh04/OpenEvent/pkg/telemetry"
)

// LedgerHandler exposes balances and platform minting
type LedgerHandler struct {
	accountService service.AccountService
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(accountService service.AccountService) *LedgerHandler {
	return &LedgerHandler{accountService: accountService}
}

// GetBalance handles GET /ledger/:account
func (h *LedgerHandler) GetBalance(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.ledger.balance")
	defer span.End()

	account := domain.NormalizeAccount(c.Param("account"))
	balance, err := h.accountService.Balance(ctx, account)
	if err != nil {
		handleError(c, span, err)
		return
	}
	succeed(span)
	response.Success(c, dto.BalanceResponse{Account: account, Balance: balance})
}

// Mint handles POST /ledger/mint
func (h *LedgerHandler) Mint(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.ledger.mint")
	defer span.End()

	account, ok := caller(c, span)
	if !ok {
		return
	}
	var req dto.MintRequest
	if !bindJSON(c, span, &req) {
		return
	}
	balance, err := h.accountService.Mint(ctx, req.Account, req.Amount, account)
	if err != nil {
		handleError(c, span, err)
		return
	}
	succeed(span)
	response.Success(c, dto.BalanceResponse{Account: domain.NormalizeAccount(req.Account), Balance: balance})
}
