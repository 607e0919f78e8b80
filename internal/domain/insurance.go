package domain

import "time"

// InsurancePolicy pays CoverageAmount if the event is cancelled
type InsurancePolicy struct {
	Holder         string    `json:"holder"`
	CoverageAmount int64     `json:"coverage_amount"`
	Premium        int64     `json:"premium"`
	ClaimDeadline  time.Time `json:"claim_deadline"`
	IsClaimed      bool      `json:"is_claimed"`
	PurchasedAt    time.Time `json:"purchased_at"`
}

// InsuranceTerms are the platform-wide insurance rates
type InsuranceTerms struct {
	CoverageRate int64
	PremiumRate  int64
	ClaimWindow  time.Duration
}

// NewInsurancePolicy prices a policy over the holder's held value
func NewInsurancePolicy(holder string, heldValue int64, terms InsuranceTerms, eventDate, now time.Time) (*InsurancePolicy, error) {
	coverage, err := scalePercent(heldValue, terms.CoverageRate)
	if err != nil {
		return nil, err
	}
	premium, err := scalePercent(coverage, terms.PremiumRate)
	if err != nil {
		return nil, err
	}
	return &InsurancePolicy{
		Holder:         holder,
		CoverageAmount: coverage,
		Premium:        premium,
		ClaimDeadline:  eventDate.Add(terms.ClaimWindow),
		PurchasedAt:    now,
	}, nil
}

// shift moves an open claim window by d
func (p *InsurancePolicy) shift(d time.Duration) {
	if !p.IsClaimed {
		p.ClaimDeadline = p.ClaimDeadline.Add(d)
	}
}

// Claim marks the policy paid if still inside the claim window
func (p *InsurancePolicy) Claim(now time.Time) error {
	if p.IsClaimed {
		return ErrInsuranceClaimed
	}
	if now.After(p.ClaimDeadline) {
		return ErrClaimWindowClosed
	}
	p.IsClaimed = true
	return nil
}
