package model

import "github.com/shopspring/decimal"

// RateDefinition is a catalog entry a RatePeriod can reference.
type RateDefinition struct {
	ID             string          `json:"id"`
	LenderID       string          `json:"lender_id"`
	Name           string          `json:"name,omitempty"`
	Rate           decimal.Decimal `json:"rate"` // annual %, e.g. 3.5
	Type           RateType        `json:"type"`
	FixedTermYears int             `json:"fixed_term_years,omitempty"`
}

// Lender holds the eligibility rules checked during rate-period resolution.
// Empty BEREligible or BuyerTypes means no restriction.
type Lender struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	MinLTV              decimal.Decimal `json:"min_ltv"` // percent
	MaxLTV              decimal.Decimal `json:"max_ltv"` // percent
	BEREligible         []string        `json:"ber_eligible,omitempty"`
	BuyerTypes          []BuyerType     `json:"buyer_types,omitempty"`
	AllowsSelfBuild     bool            `json:"allows_self_build"`
	OverpaymentPolicyID string          `json:"overpayment_policy_id,omitempty"`
}

// AllowanceType is percentage or flat.
type AllowanceType string

const (
	AllowancePercentage AllowanceType = "percentage"
	AllowanceFlat       AllowanceType = "flat"
)

// AllowanceBasis selects what a percentage allowance is measured against.
type AllowanceBasis string

const (
	BasisBalance  AllowanceBasis = "balance"
	BasisOriginal AllowanceBasis = "original"
)

// BasisPeriod selects the window the allowance applies over.
type BasisPeriod string

const (
	PeriodAnnual         BasisPeriod = "annual"
	PeriodPerFixedPeriod BasisPeriod = "per_fixed_period"
)

// OverpaymentPolicy is a lender rule capping penalty-free overpayments.
// AllowanceValue is a percentage for AllowancePercentage and a cent amount
// for AllowanceFlat.
type OverpaymentPolicy struct {
	ID             string          `json:"id"`
	AllowanceType  AllowanceType   `json:"allowance_type"`
	AllowanceValue decimal.Decimal `json:"allowance_value"`
	AllowanceBasis AllowanceBasis  `json:"allowance_basis"`
	BasisPeriod    BasisPeriod     `json:"basis_period"`
}

// Catalog bundles the lookup tables supplied by the calling layer. The
// engine consults these as plain maps and never fetches or caches them
// itself.
type Catalog struct {
	Rates       map[string]RateDefinition    `json:"rates"`
	CustomRates map[string]RateDefinition    `json:"custom_rates,omitempty"`
	Lenders     map[string]Lender            `json:"lenders"`
	Policies    map[string]OverpaymentPolicy `json:"policies,omitempty"`
}

// Rate looks up a rate definition in the custom or catalog table.
func (c Catalog) Rate(id string, custom bool) (RateDefinition, bool) {
	if custom {
		r, ok := c.CustomRates[id]
		return r, ok
	}
	r, ok := c.Rates[id]
	return r, ok
}

// PolicyForLender returns the overpayment policy of a lender, if any.
func (c Catalog) PolicyForLender(lenderID string) (OverpaymentPolicy, bool) {
	l, ok := c.Lenders[lenderID]
	if !ok || l.OverpaymentPolicyID == "" {
		return OverpaymentPolicy{}, false
	}
	p, ok := c.Policies[l.OverpaymentPolicyID]
	return p, ok
}
