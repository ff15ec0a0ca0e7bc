package model

import "time"

// Subscription plans.
const (
	PlanMonthly  = "MONTHLY"
	PlanYearly   = "YEARLY"
	PlanLifetime = "LIFETIME"
)

// Currency is the only currency the platform charges in.
const Currency = "INR"

// PlanTerms is the fixed price and duration of a plan.
type PlanTerms struct {
	Plan  string `json:"plan"`
	Price int64  `json:"price"`
	Days  int    `json:"days"`
}

// Duration returns the length of a grant under this plan.
func (p PlanTerms) Duration() time.Duration {
	return time.Duration(p.Days) * 24 * time.Hour
}

// Plans is the price/duration table. LIFETIME is modelled as a hundred
// year grant.
var Plans = map[string]PlanTerms{
	PlanMonthly:  {Plan: PlanMonthly, Price: 299, Days: 30},
	PlanYearly:   {Plan: PlanYearly, Price: 2990, Days: 365},
	PlanLifetime: {Plan: PlanLifetime, Price: 9990, Days: 36500},
}

// Subscription is a time-boxed grant. Cancelling clears IsActive but keeps
// EndDate.
type Subscription struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Plan      string    `json:"plan"`
	Price     int64     `json:"price"`
	Currency  string    `json:"currency"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	IsActive  bool      `json:"isActive"`
	PaymentID *string   `json:"paymentId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ActiveAt reports whether the grant is currently active at now.
func (s Subscription) ActiveAt(now time.Time) bool {
	return s.IsActive && s.EndDate.After(now)
}
