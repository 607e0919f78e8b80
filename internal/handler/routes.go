package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/mahimasingh04/OpenEvent/pkg/response"
)

// Handlers groups the API handlers mounted under /api/v1
type Handlers struct {
	Event   *EventHandler
	Sales   *SalesHandler
	Market  *MarketHandler
	CheckIn *CheckInHandler
	Ledger  *LedgerHandler
}

// Register mounts the API on r. write runs before every mutating route.
func (h *Handlers) Register(r gin.IRouter, write ...gin.HandlerFunc) {
	mut := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		chain := make([]gin.HandlerFunc, 0, len(write)+1)
		chain = append(chain, write...)
		return append(chain, fn)
	}

	events := r.Group("/events")
	{
		events.POST("", mut(h.Event.CreateEvent)...)
		events.GET("/:id", h.Event.GetEvent)
		events.GET("/:id/analytics", h.Event.GetAnalytics)
		events.POST("/:id/cancel", mut(h.Event.CancelEvent)...)
		events.POST("/:id/reschedule", mut(h.Event.RescheduleEvent)...)
		events.POST("/:id/tiers", mut(h.Event.AddTier)...)
		events.PATCH("/:id/tiers/:tier", mut(h.Event.UpdateTier)...)
		events.POST("/:id/tiers/:tier/reprice", mut(h.Event.Reprice)...)
		events.GET("/:id/holdings/:holder", h.Event.GetHoldings)
		events.POST("/:id/transfer", mut(h.Event.Transfer)...)

		events.POST("/:id/purchase", mut(h.Sales.Purchase)...)
		events.POST("/:id/promotions", mut(h.Sales.CreatePromotion)...)
		events.DELETE("/:id/promotions/:code", mut(h.Sales.DeactivatePromotion)...)
		events.POST("/:id/refund", mut(h.Sales.ClaimRefund)...)
		events.POST("/:id/insurance", mut(h.Sales.PurchaseInsurance)...)
		events.POST("/:id/insurance/claim", mut(h.Sales.ClaimInsurance)...)

		events.POST("/:id/listings", mut(h.Market.CreateListing)...)
		events.GET("/:id/listings", h.Market.ListListings)
		events.POST("/:id/waitlist", mut(h.Market.JoinWaitlist)...)
		events.DELETE("/:id/waitlist", mut(h.Market.LeaveWaitlist)...)
		events.POST("/:id/waitlist/fill", mut(h.Market.FillWaitlist)...)

		events.POST("/:id/checkins", mut(h.CheckIn.CheckIn)...)
	}

	listings := r.Group("/listings")
	{
		listings.POST("/:listingId/buy", mut(h.Market.BuyListing)...)
		listings.DELETE("/:listingId", mut(h.Market.CancelListing)...)
	}

	ledger := r.Group("/ledger")
	{
		ledger.GET("/:account", h.Ledger.GetBalance)
		ledger.POST("/mint", mut(h.Ledger.Mint)...)
	}
}

// NoRoute answers unknown paths with the error envelope
func NoRoute(c *gin.Context) {
	response.NotFound(c, "route not found")
}
