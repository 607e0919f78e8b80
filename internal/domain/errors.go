package domain

import "errors"

// Kind classifies domain errors for callers and the HTTP layer
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindState
	KindResourceExhausted
	KindPayment
	KindAuthorization
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindState:
		return "state"
	case KindResourceExhausted:
		return "resource_exhausted"
	case KindPayment:
		return "payment"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Error is a classified domain error. Sentinels are compared by identity.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Domain errors
var (
	// Validation errors
	ErrInvalidQuantity       = newError(KindValidation, "INVALID_QUANTITY", "quantity must be greater than zero")
	ErrInvalidTier           = newError(KindValidation, "INVALID_TIER", "tier index out of range")
	ErrInvalidAccount        = newError(KindValidation, "INVALID_ACCOUNT", "account is required")
	ErrInvalidEventDate      = newError(KindValidation, "INVALID_EVENT_DATE", "event date must be in the future")
	ErrInvalidSharePercent   = newError(KindValidation, "INVALID_SHARE_PERCENT", "organizer share cannot exceed 90 percent")
	ErrInvalidCapacity       = newError(KindValidation, "INVALID_CAPACITY", "max capacity must be greater than zero")
	ErrInvalidTierConfig     = newError(KindValidation, "INVALID_TIER_CONFIG", "invalid ticket tier configuration")
	ErrTierCapacityExceeded  = newError(KindValidation, "TIER_CAPACITY_EXCEEDED", "total tier quantity exceeds event capacity")
	ErrInvalidDiscount       = newError(KindValidation, "INVALID_DISCOUNT", "discount must be between 1 and 50 percent")
	ErrInvalidMaxUses        = newError(KindValidation, "INVALID_MAX_USES", "max uses must be greater than zero")
	ErrInvalidPromotionTimes = newError(KindValidation, "INVALID_PROMOTION_WINDOW", "promotion start must be before end")
	ErrInvalidPromoCode      = newError(KindValidation, "INVALID_PROMO_CODE", "promotion code is required")
	ErrAskPriceTooLow        = newError(KindValidation, "ASK_PRICE_TOO_LOW", "ask price must exceed cost basis")
	ErrInsufficientTickets   = newError(KindValidation, "INSUFFICIENT_TICKETS", "not enough tickets held")
	ErrSelfPurchase          = newError(KindValidation, "SELF_PURCHASE", "cannot buy your own listing")
	ErrSelfTransfer          = newError(KindValidation, "SELF_TRANSFER", "cannot transfer tickets to yourself")
	ErrNothingToRefund       = newError(KindValidation, "NOTHING_TO_REFUND", "no tickets to refund")
	ErrWaitlistQuantity      = newError(KindValidation, "WAITLIST_QUANTITY_EXCEEDED", "fill quantity exceeds waitlist entry")
	ErrInvalidAmount         = newError(KindValidation, "INVALID_AMOUNT", "amount must be greater than zero")
	ErrInvalidTimestamp      = newError(KindValidation, "INVALID_TIMESTAMP", "timestamp must be positive")
	ErrPriceTooHigh          = newError(KindValidation, "PRICE_TOO_HIGH", "price exceeds the supported maximum")
	ErrAmountOverflow        = newError(KindValidation, "AMOUNT_OVERFLOW", "amount exceeds the supported maximum")

	// State errors
	ErrEventInactive        = newError(KindState, "EVENT_INACTIVE", "event is not active")
	ErrEventCancelled       = newError(KindState, "EVENT_CANCELLED", "event has been cancelled")
	ErrEventPassed          = newError(KindState, "EVENT_PASSED", "event has already occurred")
	ErrEventNotCancelled    = newError(KindState, "EVENT_NOT_CANCELLED", "event is not cancelled")
	ErrTierInactive         = newError(KindState, "TIER_INACTIVE", "ticket tier is not active")
	ErrListingInactive      = newError(KindState, "LISTING_INACTIVE", "listing is not active")
	ErrNotOnWaitlist        = newError(KindState, "NOT_ON_WAITLIST", "no active waitlist entry")
	ErrPriceUpdateTooSoon   = newError(KindState, "PRICE_UPDATE_TOO_SOON", "price was updated too recently")
	ErrPromotionInactive    = newError(KindState, "PROMOTION_INACTIVE", "promotion is not active")
	ErrPromotionNotStarted  = newError(KindState, "PROMOTION_NOT_STARTED", "promotion has not started")
	ErrPromotionExpired     = newError(KindState, "PROMOTION_EXPIRED", "promotion has expired")
	ErrAlreadyInsured       = newError(KindState, "ALREADY_INSURED", "insurance already purchased")
	ErrNotInsured           = newError(KindState, "NOT_INSURED", "no insurance policy")
	ErrInsuranceClaimed     = newError(KindState, "INSURANCE_CLAIMED", "insurance already claimed")
	ErrClaimWindowClosed    = newError(KindState, "CLAIM_WINDOW_CLOSED", "insurance claim window has closed")
	ErrAlreadyCheckedIn     = newError(KindState, "ALREADY_CHECKED_IN", "holder already checked in")
	ErrCheckInWindow        = newError(KindState, "CHECKIN_OUTSIDE_WINDOW", "timestamp outside check-in window")
	ErrNoTicketsHeld        = newError(KindState, "NO_TICKETS_HELD", "holder holds no tickets")
	ErrCheckInNotConfigured = newError(KindState, "CHECKIN_NOT_CONFIGURED", "check-in signer is not configured")

	// Resource exhausted errors
	ErrOutOfStock         = newError(KindResourceExhausted, "OUT_OF_STOCK", "not enough tickets remaining in tier")
	ErrCapacityExceeded   = newError(KindResourceExhausted, "CAPACITY_EXCEEDED", "event capacity exceeded")
	ErrPromotionExhausted = newError(KindResourceExhausted, "PROMOTION_EXHAUSTED", "promotion usage limit reached")

	// Payment errors
	ErrPaymentFailed = newError(KindPayment, "PAYMENT_FAILED", "payment failed")

	// Authorization errors
	ErrUnauthorized     = newError(KindAuthorization, "UNAUTHORIZED", "caller is not the organizer or platform owner")
	ErrNotListingSeller = newError(KindAuthorization, "NOT_LISTING_SELLER", "caller is not the listing seller")
	ErrInvalidSignature = newError(KindAuthorization, "INVALID_SIGNATURE", "check-in signature is not from the configured signer")

	// Not found errors
	ErrEventNotFound     = newError(KindNotFound, "EVENT_NOT_FOUND", "event not found")
	ErrListingNotFound   = newError(KindNotFound, "LISTING_NOT_FOUND", "listing not found")
	ErrPromotionNotFound = newError(KindNotFound, "PROMOTION_NOT_FOUND", "promotion not found")
)

// AsError returns the outermost domain error in err's chain
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// KindOf returns the kind of the outermost domain error in err's chain
func KindOf(err error) Kind {
	if de, ok := AsError(err); ok {
		return de.Kind
	}
	return KindUnknown
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool { return KindOf(err) == KindValidation }

// IsStateError checks if the error is a state error
func IsStateError(err error) bool { return KindOf(err) == KindState }

// IsResourceExhausted checks if the error is a resource exhausted error
func IsResourceExhausted(err error) bool { return KindOf(err) == KindResourceExhausted }

// IsPaymentFailure checks if the error is a payment failure
func IsPaymentFailure(err error) bool { return KindOf(err) == KindPayment }

// IsAuthorizationError checks if the error is an authorization error
func IsAuthorizationError(err error) bool { return KindOf(err) == KindAuthorization }

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool { return KindOf(err) == KindNotFound }
