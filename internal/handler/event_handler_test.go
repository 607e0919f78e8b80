package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mahimasingh04/OpenEvent/internal/domain"
	"github.com/mahimasingh04/OpenEvent/internal/dto"
	"github.com/mahimasingh04/OpenEvent/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventHandler_CreateEvent(t *testing.T) {
	eventDate := time.Date(2026, 12, 1, 20, 0, 0, 0, time.UTC)

	t.Run("organizer is the caller", func(t *testing.T) {
		api := newTestAPI()
		var gotCaller string
		var gotParams domain.EventParams
		api.events.CreateEventFunc = func(ctx context.Context, caller string, params domain.EventParams) (*domain.EventState, error) {
			gotCaller, gotParams = caller, params
			return &domain.EventState{
				Event: domain.Event{ID: 7, Name: params.Name, Organizer: caller, MaxCapacity: params.MaxCapacity},
				Tiers: []*domain.TicketTier{{Name: "General", BasePrice: 100, Quantity: 50, Remaining: 50}},
			}, nil
		}

		w := doRequest(t, api.router("org"), http.MethodPost, "/api/v1/events", dto.CreateEventRequest{
			Name:                  "Launch Night",
			EventDate:             eventDate,
			OrganizerSharePercent: 80,
			MaxCapacity:           100,
			Tiers:                 []dto.TierRequest{{Name: "General", BasePrice: 100, Quantity: 50}},
		})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, "org", gotCaller)
		assert.Equal(t, int64(80), gotParams.OrganizerSharePercent)
		require.Len(t, gotParams.Tiers, 1)
		assert.Equal(t, int64(50), gotParams.Tiers[0].Quantity)

		var resp dto.EventResponse
		decodeData(t, w, &resp)
		assert.Equal(t, uint64(7), resp.ID)
		assert.Equal(t, "org", resp.Organizer)
		require.Len(t, resp.Tiers, 1)
		assert.Equal(t, int64(50), resp.Tiers[0].Remaining)
	})

	t.Run("missing name", func(t *testing.T) {
		api := newTestAPI()
		w := doRequest(t, api.router("org"), http.MethodPost, "/api/v1/events", gin.H{"event_date": eventDate, "max_capacity": 10})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_REQUEST", decode(t, w).Error.Code)
	})

	t.Run("domain validation", func(t *testing.T) {
		api := newTestAPI()
		api.events.CreateEventFunc = func(ctx context.Context, caller string, params domain.EventParams) (*domain.EventState, error) {
			return nil, domain.ErrInvalidSharePercent
		}
		w := doRequest(t, api.router("org"), http.MethodPost, "/api/v1/events", gin.H{
			"name": "x", "event_date": eventDate, "max_capacity": 10, "organizer_share_percent": 95,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_SHARE_PERCENT", decode(t, w).Error.Code)
	})
}

func TestEventHandler_GetEvent(t *testing.T) {
	api := newTestAPI()
	api.events.GetEventFunc = func(ctx context.Context, eventID uint64) (*domain.EventState, error) {
		if eventID != 3 {
			return nil, domain.ErrEventNotFound
		}
		return &domain.EventState{Event: domain.Event{ID: 3}}, nil
	}
	router := api.router("")

	w := doRequest(t, router, http.MethodGet, "/api/v1/events/3", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/v1/events/4", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/v1/events/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_EVENT_ID", decode(t, w).Error.Code)
}

func TestEventHandler_UpdateTier(t *testing.T) {
	api := newTestAPI()
	var got service.TierUpdate
	api.events.UpdateTierFunc = func(ctx context.Context, eventID uint64, tier int, update service.TierUpdate, caller string) (*domain.TicketTier, error) {
		got = update
		assert.Equal(t, 1, tier)
		return &domain.TicketTier{Name: "VIP", IsActive: *update.Active, Perks: update.Perks}, nil
	}

	w := doRequest(t, api.router("org"), http.MethodPatch, "/api/v1/events/1/tiers/1", gin.H{"active": false, "perks": []string{"lounge"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, got.Active)
	assert.False(t, *got.Active)
	assert.Equal(t, []string{"lounge"}, got.Perks)

	w = doRequest(t, api.router("org"), http.MethodPatch, "/api/v1/events/1/tiers/-1", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_TIER", decode(t, w).Error.Code)
}

func TestEventHandler_Reprice(t *testing.T) {
	api := newTestAPI()
	api.events.UpdateDynamicPricingFunc = func(ctx context.Context, eventID uint64, tier int, caller string) (int64, error) {
		if caller != "org" {
			return 0, domain.ErrUnauthorized
		}
		return 150, nil
	}

	w := doRequest(t, api.router("org"), http.MethodPost, "/api/v1/events/1/tiers/0/reprice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.RepriceResponse
	decodeData(t, w, &resp)
	assert.Equal(t, int64(150), resp.BasePrice)

	w = doRequest(t, api.router("mallory"), http.MethodPost, "/api/v1/events/1/tiers/0/reprice", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestEventHandler_Transfer(t *testing.T) {
	api := newTestAPI()
	var got *service.TransferRequest
	api.events.TransferTicketsFunc = func(ctx context.Context, req *service.TransferRequest) error {
		got = req
		return nil
	}
	api.events.GetHoldingsFunc = func(ctx context.Context, eventID uint64, holder string) ([]domain.Holding, error) {
		return []domain.Holding{{Holder: holder, Quantity: 3, CostBasis: 100}}, nil
	}

	w := doRequest(t, api.router("alice"), http.MethodPost, "/api/v1/events/5/transfer", gin.H{"to": "bob", "tier": 0, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, &service.TransferRequest{EventID: 5, From: "alice", To: "bob", Tier: 0, Quantity: 2}, got)

	var resp dto.HoldingsResponse
	decodeData(t, w, &resp)
	assert.Equal(t, "alice", resp.Holder)
	require.Len(t, resp.Holdings, 1)
	assert.Equal(t, int64(3), resp.Holdings[0].Quantity)
}

func TestEventHandler_CancelAndReschedule(t *testing.T) {
	api := newTestAPI()
	api.events.CancelEventFunc = func(ctx context.Context, eventID uint64, caller string) (*domain.Event, error) {
		return nil, domain.ErrEventCancelled
	}
	newDate := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	api.events.RescheduleEventFunc = func(ctx context.Context, eventID uint64, date time.Time, caller string) (*domain.Event, error) {
		return &domain.Event{ID: eventID, EventDate: date, Rescheduled: true}, nil
	}
	router := api.router("org")

	w := doRequest(t, router, http.MethodPost, "/api/v1/events/1/cancel", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(t, router, http.MethodPost, "/api/v1/events/1/reschedule", gin.H{"event_date": newDate})
	require.Equal(t, http.StatusOK, w.Code)
	var event domain.Event
	decodeData(t, w, &event)
	assert.True(t, event.Rescheduled)
	assert.True(t, event.EventDate.Equal(newDate))
}
