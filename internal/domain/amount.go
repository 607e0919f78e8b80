package domain

import "math"

// MaxAmount bounds every price and every single charge in token units.
// Percentage splits of amounts up to this bound stay inside int64.
const MaxAmount int64 = 1_000_000_000_000_000

// MulAmount returns a*b, rejecting products above MaxAmount
func MulAmount(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, ErrInvalidAmount
	}
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > MaxAmount/b {
		return 0, ErrAmountOverflow
	}
	return a * b, nil
}

// AddAmount returns a+b, rejecting sums above MaxAmount
func AddAmount(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, ErrInvalidAmount
	}
	if a > MaxAmount-b {
		return 0, ErrAmountOverflow
	}
	return a + b, nil
}

// scalePercent returns amount*percent/100 without intermediate overflow
func scalePercent(amount, percent int64) (int64, error) {
	if amount < 0 || percent < 0 {
		return 0, ErrInvalidAmount
	}
	if percent > 0 && amount > math.MaxInt64/percent {
		return 0, ErrAmountOverflow
	}
	scaled := amount * percent / 100
	if scaled > MaxAmount {
		return 0, ErrAmountOverflow
	}
	return scaled, nil
}
