package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/mahimasingh04/OpenEvent/internal/dto"
	"github.com/mahimasingh04/OpenEvent/internal/service"
	"github.com/mahimasingh04/OpenEvent/pkg/response"
	"github.com/mahimasingh04/OpenEvent/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// EventHandler handles event administration, holdings and transfers
type EventHandler struct {
	eventService service.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.create")
	defer span.End()

	account, ok := caller(c, span)
	if !ok {
		return
	}
	var req dto.CreateEventRequest
	if !bindJSON(c, span, &req) {
		return
	}

	state, err := h.eventService.CreateEvent(ctx, account, req.ToParams())
	if err != nil {
		handleError(c, span, err)
		return
	}

	span.SetAttributes(attribute.Int64("event_id", int64(state.Event.ID)))
	succeed(span)
	response.Created(c, dto.FromEventState(state))
}

// GetEvent handles GET /events/:id
func (h *EventHandler) GetEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.get")
	defer span.End()

	eventID, ok := uintParam(c, span, "id")
	if !ok {
		return
	}
	state, err := h.eventService.GetEvent(ctx, eventID)
	if err != nil {
		handleError(c, span, err)
		return
	}
	succeed(span)
	response.Success(c, dto.FromEventState(state))
}

// GetAnalytics handles GET /events/:id/analytics
func (h *EventHandler) GetAnalytics(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.analytics")
	defer span.End()

	eventID, ok := uintParam(c, span, "id")
	if !ok {
		return
	}
	analytics, err := h.eventService.GetAnalytics(ctx, eventID)
	if err != nil {
		handleError(c, span, err)
		return
	}
	succeed(span)
	response.Success(c, analytics)
}

// CancelEvent handles POST /events/:id/cancel
func (h *EventHandler) CancelEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.cancel")
	defer span.End()

	account, ok := caller(c, span)
	if !ok {
		return
	}
	eventID, ok := uintParam(c, span, "id")
	if !ok {
		return
	}
	event, err := h.eventService.CancelEvent(ctx, eventID, account)
	if err != nil {
		handleError(c, span, err)
		return
	}
	succeed(span)
	response.Success(c, event)
}

// RescheduleEvent handles POST /events/:id/reschedule
func (h *EventHandler) RescheduleEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.reschedule")
	defer span.End()

	account, ok := caller(c, span)
	if !ok {
		return
	}
	eventID, ok := uintParam(c, span, "id")
	if !ok {
		return
	}
	var req dto.RescheduleRequest
	if !bindJSON(c, span, &req) {
		return
	}
	event, err := h.eventService.RescheduleEvent(ctx, eventID, req.EventDate, account)
	if err != nil {
		handleError(c, span, err)
		return
	}
	succeed(span)
	response.Success(c, event)
}

// AddTier handles POST /events/:id/tiers
func (h *EventHandler) AddTier(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.add_tier")
	defer span.End()

	account, ok := caller(c, span)
	if !ok {
		return
	}
	eventID, ok := uintParam(c, span, "id")
	if !ok {
		return
	}
	var req dto.TierRequest
	if !bindJSON(c, span, &req) {
		return
	}
	index, err := h.eventService.AddTier(ctx, eventID, req.ToParams(), account)
	if err != nil {
		handleError(c, span, err)
		return
	}
	succeed(span)
	response.Created(c, dto.AddTierResponse{EventID: eventID, Tier: index})
}

// UpdateTier handles PATCH /events/:id/tiers/:tier
func (h *EventHandler) UpdateTier(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.update_tier")
	defer span.End()

	account, ok := caller(c, span)
	if !ok {
		return
	}
	eventID, ok := uintParam(c, span, "id")
	if !ok {
		return
	}
	tier, ok := intParam(c, span, "tier")
	if !ok {
		return
	}
	var req dto.UpdateTierRequest
	if !bindJSON(c, span, &req) {
		return
	}
	updated, err := h.eventService.UpdateTier(ctx, eventID, tier, service.TierUpdate{Active: req.Active, Perks: req.Perks}, account)
	if err != nil {
		handleError(c, span, err)
		return
	}
	succeed(span)
	response.Success(c, updated)
}

// Reprice handles POST /events/:id/tiers/:tier/reprice
func (h *EventHandler) Reprice(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.reprice")
	defer span.End()

	account, ok := caller(c, span)
	if !ok {
		return
	}
	eventID, ok := uintParam(c, span, "id")
	if !ok {
		return
	}
	tier, ok := intParam(c, span, "tier")
	if !ok {
		return
	}
	price, err := h.eventService.UpdateDynamicPricing(ctx, eventID, tier, account)
	if err != nil {
		handleError(c, span, err)
		return
	}
	succeed(span)
	response.Success(c, dto.RepriceResponse{EventID: eventID, Tier: tier, BasePrice: price})
}

// GetHoldings handles GET /events/:id/holdings/:holder
func (h *EventHandler) GetHoldings(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.holdings")
	defer span.End()

	eventID, ok := uintParam(c, span, "id")
	if !ok {
		return
	}
	holder := c.Param("holder")
	holdings, err := h.eventService.GetHoldings(ctx, eventID, holder)
	if err != nil {
		handleError(c, span, err)
		return
	}
	succeed(span)
	response.Success(c, dto.HoldingsResponse{EventID: eventID, Holder: holder, Holdings: holdings})
}

// Transfer handles POST /events/:id/transfer
func (h *EventHandler) Transfer(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.transfer")
	defer span.End()

	account, ok := caller(c, span)
	if !ok {
		return
	}
	eventID, ok := uintParam(c, span, "id")
	if !ok {
		return
	}
	var req dto.TransferRequest
	if !bindJSON(c, span, &req) {
		return
	}
	err := h.eventService.TransferTickets(ctx, &service.TransferRequest{
		EventID:  eventID,
		From:     account,
		To:       req.To,
		Tier:     req.Tier,
		Quantity: req.Quantity,
	})
	if err != nil {
		handleError(c, span, err)
		return
	}

	holdings, err := h.eventService.GetHoldings(ctx, eventID, account)
	if err != nil {
		handleError(c, span, err)
		return
	}
	succeed(span)
	response.Success(c, dto.HoldingsResponse{EventID: eventID, Holder: account, Holdings: holdings})
}
