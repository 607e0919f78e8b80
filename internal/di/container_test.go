package di

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mahimasingh04/OpenEvent/internal/domain"
	"github.com/mahimasingh04/OpenEvent/internal/dto"
	"github.com/mahimasingh04/OpenEvent/internal/service"
	"github.com/mahimasingh04/OpenEvent/pkg/config"
	"github.com/mahimasingh04/OpenEvent/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type apiClient struct {
	t      *testing.T
	router *gin.Engine
}

func (a *apiClient) call(account, method, path string, body interface{}) (int, json.RawMessage) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if account != "" {
		token, err := middleware.SignToken(testSecret, "", account, time.Hour)
		require.NoError(a.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w.Code, env.Data
}

func newMemoryAPI(t *testing.T) (*Container, *apiClient) {
	t.Helper()
	engine := service.DefaultEngineConfig()
	engine.CheckInSigner = ""

	c, err := NewContainer(&ContainerConfig{ServiceName: "openevent-test", Engine: engine})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ready", c.HealthHandler.Ready)
	v1 := router.Group("/api/v1")
	v1.Use(middleware.JWTMiddleware(&middleware.JWTConfig{Secret: testSecret}))
	c.Handlers.Register(v1)
	return c, &apiClient{t: t, router: router}
}

func TestContainer_PurchaseFlowOverHTTP(t *testing.T) {
	_, api := newMemoryAPI(t)

	code, _ := api.call("platform", http.MethodPost, "/api/v1/ledger/mint", dto.MintRequest{Account: "alice", Amount: 1000})
	require.Equal(t, http.StatusOK, code)

	code, data := api.call("org", http.MethodPost, "/api/v1/events", dto.CreateEventRequest{
		Name:                  "Launch Night",
		EventDate:             time.Now().Add(48 * time.Hour),
		OrganizerSharePercent: 80,
		MaxCapacity:           100,
		Tiers:                 []dto.TierRequest{{Name: "General", BasePrice: 100, Quantity: 50}},
	})
	require.Equal(t, http.StatusCreated, code, string(data))
	var event dto.EventResponse
	require.NoError(t, json.Unmarshal(data, &event))

	base := "/api/v1/events/" + jsonNumber(event.ID)
	code, data = api.call("alice", http.MethodPost, base+"/purchase", dto.PurchaseRequest{Tier: 0, Quantity: 3})
	require.Equal(t, http.StatusCreated, code, string(data))
	var receipt domain.Receipt
	require.NoError(t, json.Unmarshal(data, &receipt))
	assert.Equal(t, int64(300), receipt.FinalPrice)
	assert.Equal(t, int64(240), receipt.OrganizerAmount)

	code, data = api.call("", http.MethodGet, "/api/v1/ledger/org", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, data = api.call("alice", http.MethodGet, "/api/v1/ledger/org", nil)
	require.Equal(t, http.StatusOK, code)
	var balance dto.BalanceResponse
	require.NoError(t, json.Unmarshal(data, &balance))
	assert.Equal(t, int64(240), balance.Balance)

	code, _ = api.call("alice", http.MethodPost, base+"/purchase", dto.PurchaseRequest{Tier: 0, Quantity: 51})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = api.call("alice", http.MethodPost, base+"/checkins", dto.CheckInRequest{Holder: "0x00000000000000000000000000000000000000aa", Timestamp: 1, Signature: "0x01"})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestContainer_ReadyWithoutInfrastructure(t *testing.T) {
	_, api := newMemoryAPI(t)
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEngineConfigFrom(t *testing.T) {
	cfg := EngineConfigFrom(&config.EngineConfig{
		PlatformOwner:         "owner",
		TreasuryAccount:       "vault",
		ResaleFeePercent:      7,
		InsuranceCoverageRate: 75,
		InsurancePremiumRate:  12,
		InsuranceClaimWindow:  48 * time.Hour,
		PriceUpdateInterval:   time.Minute,
		MaxDemandMultiplier:   180,
		CheckInWindow:         time.Hour,
	})
	assert.Equal(t, "vault", cfg.Treasury)
	assert.Equal(t, domain.InsuranceTerms{CoverageRate: 75, PremiumRate: 12, ClaimWindow: 48 * time.Hour}, cfg.Insurance)
	assert.Equal(t, int64(180), cfg.MaxDemandMultiplier)
}

func TestNewContainer_RejectsBadSigner(t *testing.T) {
	engine := service.DefaultEngineConfig()
	engine.CheckInSigner = "not-an-address"
	_, err := NewContainer(&ContainerConfig{Engine: engine})
	assert.Error(t, err)
}

func jsonNumber(v uint64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
