package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/mahimasingh04/OpenEvent/internal/dto"
	"github.com/mahimasingh04/OpenEvent/internal/service"
	"github.com/mahimasingh04/OpenEvent/pkg/response"
	"github.com/mahimasingh04/OpenEvent/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// MarketHandler handles resale listings and the waitlist
type MarketHandler struct {
	resaleService   service.ResaleService
	waitlistService service.WaitlistService
}

// NewMarketHandler creates a new market handler
func NewMarketHandler(resale service.ResaleService, waitlist service.WaitlistService) *MarketHandler {
	return &MarketHandler{
		resaleService:   resale,
		waitlistService: waitlist,
	}
}

// CreateListing handles POST /events/:id/listings
func (h *MarketHandler) CreateListing(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.market.create_listing")
	defer span.End()

	account, ok := caller(c, span)
	if !ok {
		return
	}
	eventID, ok := uintParam(c, span, "id")
	if !ok {
		return
	}
	var req dto.ListingRequest
	if !bindJSON(c, span, &req) {
		return
	}

	listing, err := h.resaleService.List(ctx, &service.ListingRequest{
		EventID:  eventID,
		Seller:   account,
		Tier:     req.Tier,
		Quantity: req.Quantity,
		AskPrice: req.AskPrice,
	})
	if err != nil {
		handleError(c, span, err)
		return
	}

	span.SetAttributes(attribute.Int64("listing_id", int64(listing.ID)))
	succeed(span)
	response.Created(c, listing)
}

// ListListings handles GET /events/:id/listings
func (h *MarketHandler) ListListings(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.market.list_listings")
	defer span.End()

	eventID, ok := uintParam(c, span, "id")
	if !ok {
		return
	}
	listings, err := h.resaleService.ListListings(ctx, eventID)
	if err != nil {
		handleError(c, span, err)
		return
	}
	succeed(span)
	response.Success(c, listings)
}

// BuyListing handles POST /listings/:listingId/buy
func (h *MarketHandler) BuyListing(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.market.buy_listing")
	defer span.End()

	account, ok := caller(c, span)
	if !ok {
		return
	}
	listingID, ok := uintParam(c, span, "listingId")
	if !ok {
		return
	}
	receipt, err := h.resaleService.Buy(ctx, listingID, account)
	if err != nil {
		handleError(c, span, err)
		return
	}
	succeed(span)
	response.Success(c, receipt)
}

// CancelListing handles DELETE /listings/:listingId
func (h *MarketHandler) CancelListing(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.market.cancel_listing")
	defer span.End()

	account, ok := caller(c, span)
	if !ok {
		return
	}
	listingID, ok := uintParam(c, span, "listingId")
	if !ok {
		return
	}
	listing, err := h.resaleService.CancelListing(ctx, listingID, account)
	if err != nil {
		handleError(c, span, err)
		return
	}
	succeed(span)
	response.Success(c, listing)
}

// JoinWaitlist handles POST /events/:id/waitlist
func (h *MarketHandler) JoinWaitlist(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.market.join_waitlist")
	defer span.End()

	account, ok := caller(c, span)
	if !ok {
		return
	}
	eventID, ok := uintParam(c, span, "id")
	if !ok {
		return
	}
	var req dto.WaitlistJoinRequest
	if !bindJSON(c, span, &req) {
		return
	}
	entry, err := h.waitlistService.Join(ctx, eventID, account, req.Tier, req.Quantity)
	if err != nil {
		handleError(c, span, err)
		return
	}
	succeed(span)
	response.Created(c, entry)
}

// LeaveWaitlist handles DELETE /events/:id/waitlist
func (h *MarketHandler) LeaveWaitlist(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.market.leave_waitlist")
	defer span.End()

	account, ok := caller(c, span)
	if !ok {
		return
	}
	eventID, ok := uintParam(c, span, "id")
	if !ok {
		return
	}
	if err := h.waitlistService.Leave(ctx, eventID, account); err != nil {
		handleError(c, span, err)
		return
	}
	succeed(span)
	response.Success(c, gin.H{"event_id": eventID, "holder": account, "is_active": false})
}

// FillWaitlist handles POST /events/:id/waitlist/fill
func (h *MarketHandler) FillWaitlist(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.market.fill_waitlist")
	defer span.End()

	account, ok := caller(c, span)
	if !ok {
		return
	}
	eventID, ok := uintParam(c, span, "id")
	if !ok {
		return
	}
	var req dto.WaitlistFillRequest
	if !bindJSON(c, span, &req) {
		return
	}
	receipt, err := h.waitlistService.Fill(ctx, eventID, req.Holder, req.Quantity, account)
	if err != nil {
		handleError(c, span, err)
		return
	}
	succeed(span)
	response.Created(c, receipt)
}
