package handler

import (
	"context"
	"time"

	"github.com/mahimasingh04/OpenEvent/internal/domain"
	"github.com/mahimasingh04/OpenEvent/internal/service"
)

// MockEventService is a mock implementation of EventService for testing
type MockEventService struct {
	CreateEventFunc          func(ctx context.Context, caller string, params domain.EventParams) (*domain.EventState, error)
	AddTierFunc              func(ctx context.Context, eventID uint64, params domain.TierParams, caller string) (int, error)
	SetTierActiveFunc        func(ctx context.Context, eventID uint64, tier int, active bool, caller string) error
	SetTierPerksFunc         func(ctx context.Context, eventID uint64, tier int, perks []string, caller string) error
	UpdateTierFunc           func(ctx context.Context, eventID uint64, tier int, update service.TierUpdate, caller string) (*domain.TicketTier, error)
	RescheduleEventFunc      func(ctx context.Context, eventID uint64, newDate time.Time, caller string) (*domain.Event, error)
	CancelEventFunc          func(ctx context.Context, eventID uint64, caller string) (*domain.Event, error)
	UpdateDynamicPricingFunc func(ctx context.Context, eventID uint64, tier int, caller string) (int64, error)
	TransferTicketsFunc      func(ctx context.Context, req *service.TransferRequest) error
	GetEventFunc             func(ctx context.Context, eventID uint64) (*domain.EventState, error)
	ListTiersFunc            func(ctx context.Context, eventID uint64) ([]domain.TicketTier, error)
	GetHoldingsFunc          func(ctx context.Context, eventID uint64, holder string) ([]domain.Holding, error)
	GetAnalyticsFunc         func(ctx context.Context, eventID uint64) (*domain.Analytics, error)
}

func (m *MockEventService) CreateEvent(ctx context.Context, caller string, params domain.EventParams) (*domain.EventState, error) {
	if m.CreateEventFunc != nil {
		return m.CreateEventFunc(ctx, caller, params)
	}
	return nil, nil
}

func (m *MockEventService) AddTier(ctx context.Context, eventID uint64, params domain.TierParams, caller string) (int, error) {
	if m.AddTierFunc != nil {
		return m.AddTierFunc(ctx, eventID, params, caller)
	}
	return 0, nil
}

func (m *MockEventService) SetTierActive(ctx context.Context, eventID uint64, tier int, active bool, caller string) error {
	if m.SetTierActiveFunc != nil {
		return m.SetTierActiveFunc(ctx, eventID, tier, active, caller)
	}
	return nil
}

func (m *MockEventService) SetTierPerks(ctx context.Context, eventID uint64, tier int, perks []string, caller string) error {
	if m.SetTierPerksFunc != nil {
		return m.SetTierPerksFunc(ctx, eventID, tier, perks, caller)
	}
	return nil
}

func (m *MockEventService) UpdateTier(ctx context.Context, eventID uint64, tier int, update service.TierUpdate, caller string) (*domain.TicketTier, error) {
	if m.UpdateTierFunc != nil {
		return m.UpdateTierFunc(ctx, eventID, tier, update, caller)
	}
	return &domain.TicketTier{}, nil
}

func (m *MockEventService) RescheduleEvent(ctx context.Context, eventID uint64, newDate time.Time, caller string) (*domain.Event, error) {
	if m.RescheduleEventFunc != nil {
		return m.RescheduleEventFunc(ctx, eventID, newDate, caller)
	}
	return &domain.Event{}, nil
}

func (m *MockEventService) CancelEvent(ctx context.Context, eventID uint64, caller string) (*domain.Event, error) {
	if m.CancelEventFunc != nil {
		return m.CancelEventFunc(ctx, eventID, caller)
	}
	return &domain.Event{}, nil
}

func (m *MockEventService) UpdateDynamicPricing(ctx context.Context, eventID uint64, tier int, caller string) (int64, error) {
	if m.UpdateDynamicPricingFunc != nil {
		return m.UpdateDynamicPricingFunc(ctx, eventID, tier, caller)
	}
	return 0, nil
}

func (m *MockEventService) TransferTickets(ctx context.Context, req *service.TransferRequest) error {
	if m.TransferTicketsFunc != nil {
		return m.TransferTicketsFunc(ctx, req)
	}
	return nil
}

func (m *MockEventService) GetEvent(ctx context.Context, eventID uint64) (*domain.EventState, error) {
	if m.GetEventFunc != nil {
		return m.GetEventFunc(ctx, eventID)
	}
	return nil, domain.ErrEventNotFound
}

func (m *MockEventService) ListTiers(ctx context.Context, eventID uint64) ([]domain.TicketTier, error) {
	if m.ListTiersFunc != nil {
		return m.ListTiersFunc(ctx, eventID)
	}
	return nil, nil
}

func (m *MockEventService) GetHoldings(ctx context.Context, eventID uint64, holder string) ([]domain.Holding, error) {
	if m.GetHoldingsFunc != nil {
		return m.GetHoldingsFunc(ctx, eventID, holder)
	}
	return nil, nil
}

func (m *MockEventService) GetAnalytics(ctx context.Context, eventID uint64) (*domain.Analytics, error) {
	if m.GetAnalyticsFunc != nil {
		return m.GetAnalyticsFunc(ctx, eventID)
	}
	return &domain.Analytics{EventID: eventID}, nil
}

// MockSettlementService is a mock implementation of SettlementService for testing
type MockSettlementService struct {
	PurchaseFunc func(ctx context.Context, req *service.PurchaseRequest) (*domain.Receipt, error)
}

func (m *MockSettlementService) Purchase(ctx context.Context, req *service.PurchaseRequest) (*domain.Receipt, error) {
	if m.PurchaseFunc != nil {
		return m.PurchaseFunc(ctx, req)
	}
	return &domain.Receipt{}, nil
}

// MockPromotionService is a mock implementation of PromotionService for testing
type MockPromotionService struct {
	CreateFunc     func(ctx context.Context, req *service.PromotionRequest, caller string) (*domain.Promotion, error)
	DeactivateFunc func(ctx context.Context, eventID uint64, code, caller string) error
}

func (m *MockPromotionService) Create(ctx context.Context, req *service.PromotionRequest, caller string) (*domain.Promotion, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req, caller)
	}
	return &domain.Promotion{}, nil
}

func (m *MockPromotionService) Deactivate(ctx context.Context, eventID uint64, code, caller string) error {
	if m.DeactivateFunc != nil {
		return m.DeactivateFunc(ctx, eventID, code, caller)
	}
	return nil
}

// MockRefundService is a mock implementation of RefundService for testing
type MockRefundService struct {
	ClaimRefundFunc       func(ctx context.Context, eventID uint64, holder string) (*service.Refund, error)
	PurchaseInsuranceFunc func(ctx context.Context, eventID uint64, holder string) (*domain.InsurancePolicy, error)
	ClaimInsuranceFunc    func(ctx context.Context, eventID uint64, holder string) (*domain.InsurancePolicy, error)
}

func (m *MockRefundService) ClaimRefund(ctx context.Context, eventID uint64, holder string) (*service.Refund, error) {
	if m.ClaimRefundFunc != nil {
		return m.ClaimRefundFunc(ctx, eventID, holder)
	}
	return &service.Refund{}, nil
}

func (m *MockRefundService) PurchaseInsurance(ctx context.Context, eventID uint64, holder string) (*domain.InsurancePolicy, error) {
	if m.PurchaseInsuranceFunc != nil {
		return m.PurchaseInsuranceFunc(ctx, eventID, holder)
	}
	return &domain.InsurancePolicy{}, nil
}

func (m *MockRefundService) ClaimInsurance(ctx context.Context, eventID uint64, holder string) (*domain.InsurancePolicy, error) {
	if m.ClaimInsuranceFunc != nil {
		return m.ClaimInsuranceFunc(ctx, eventID, holder)
	}
	return &domain.InsurancePolicy{}, nil
}

// MockResaleService is a mock implementation of ResaleService for testing
type MockResaleService struct {
	ListFunc          func(ctx context.Context, req *service.ListingRequest) (*domain.ResaleListing, error)
	BuyFunc           func(ctx context.Context, listingID uint64, buyer string) (*domain.ResaleReceipt, error)
	CancelListingFunc func(ctx context.Context, listingID uint64, caller string) (*domain.ResaleListing, error)
	ListListingsFunc  func(ctx context.Context, eventID uint64) ([]domain.ResaleListing, error)
}

func (m *MockResaleService) List(ctx context.Context, req *service.ListingRequest) (*domain.ResaleListing, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, req)
	}
	return &domain.ResaleListing{}, nil
}

func (m *MockResaleService) Buy(ctx context.Context, listingID uint64, buyer string) (*domain.ResaleReceipt, error) {
	if m.BuyFunc != nil {
		return m.BuyFunc(ctx, listingID, buyer)
	}
	return &domain.ResaleReceipt{}, nil
}

func (m *MockResaleService) CancelListing(ctx context.Context, listingID uint64, caller string) (*domain.ResaleListing, error) {
	if m.CancelListingFunc != nil {
		return m.CancelListingFunc(ctx, listingID, caller)
	}
	return &domain.ResaleListing{}, nil
}

func (m *MockResaleService) ListListings(ctx context.Context, eventID uint64) ([]domain.ResaleListing, error) {
	if m.ListListingsFunc != nil {
		return m.ListListingsFunc(ctx, eventID)
	}
	return []domain.ResaleListing{}, nil
}

// MockWaitlistService is a mock implementation of WaitlistService for testing
type MockWaitlistService struct {
	JoinFunc  func(ctx context.Context, eventID uint64, holder string, tier int, quantity int64) (*domain.WaitlistEntry, error)
	LeaveFunc func(ctx context.Context, eventID uint64, holder string) error
	FillFunc  func(ctx context.Context, eventID uint64, holder string, quantity int64, caller string) (*domain.Receipt, error)
}

func (m *MockWaitlistService) Join(ctx context.Context, eventID uint64, holder string, tier int, quantity int64) (*domain.WaitlistEntry, error) {
	if m.JoinFunc != nil {
		return m.JoinFunc(ctx, eventID, holder, tier, quantity)
	}
	return &domain.WaitlistEntry{}, nil
}

func (m *MockWaitlistService) Leave(ctx context.Context, eventID uint64, holder string) error {
	if m.LeaveFunc != nil {
		return m.LeaveFunc(ctx, eventID, holder)
	}
	return nil
}

func (m *MockWaitlistService) Fill(ctx context.Context, eventID uint64, holder string, quantity int64, caller string) (*domain.Receipt, error) {
	if m.FillFunc != nil {
		return m.FillFunc(ctx, eventID, holder, quantity, caller)
	}
	return &domain.Receipt{}, nil
}

// MockCheckInService is a mock implementation of CheckInService for testing
type MockCheckInService struct {
	CheckInFunc func(ctx context.Context, req *service.CheckInRequest, caller string) (*domain.CheckInRecord, error)
}

func (m *MockCheckInService) CheckIn(ctx context.Context, req *service.CheckInRequest, caller string) (*domain.CheckInRecord, error) {
	if m.CheckInFunc != nil {
		return m.CheckInFunc(ctx, req, caller)
	}
	return &domain.CheckInRecord{}, nil
}

// MockAccountService is a mock implementation of AccountService for testing
type MockAccountService struct {
	BalanceFunc func(ctx context.Context, account string) (int64, error)
	MintFunc    func(ctx context.Context, to string, amount int64, caller string) (int64, error)
}

func (m *MockAccountService) Balance(ctx context.Context, account string) (int64, error) {
	if m.BalanceFunc != nil {
		return m.BalanceFunc(ctx, account)
	}
	return 0, nil
}

func (m *MockAccountService) Mint(ctx context.Context, to string, amount int64, caller string) (int64, error) {
	if m.MintFunc != nil {
		return m.MintFunc(ctx, to, amount, caller)
	}
	return amount, nil
}
