// Package model defines the core value types shared across the mortgage
// engine. All monetary values are int64 minor units (cents) — never float64
// for money. Rates and percentages use shopspring/decimal.
//
// Every type here is a pure value object: recomputed on each input change,
// carrying no identity beyond caller-assigned ID strings.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BuyerType classifies the borrower for lender eligibility checks.
type BuyerType string

const (
	BuyerFirstTime BuyerType = "first_time"
	BuyerMover     BuyerType = "mover"
	BuyerSwitcher  BuyerType = "switcher"
)

// RateType distinguishes fixed-term rates from variable rates.
type RateType string

const (
	RateFixed    RateType = "fixed"
	RateVariable RateType = "variable"
)

// SimulationInput holds the top-level mortgage parameters.
// A zero amount, zero term, or empty rate-period list yields an empty
// schedule, not an error.
type SimulationInput struct {
	MortgageAmount     int64      `json:"mortgage_amount"` // cents
	MortgageTermMonths int        `json:"mortgage_term_months"`
	PropertyValue      int64      `json:"property_value"`       // cents
	StartDate          *time.Time `json:"start_date,omitempty"` // display only, never affects numbers
	BERRating          string     `json:"ber_rating,omitempty"`
	BuyerType          BuyerType  `json:"buyer_type,omitempty"`
}

// LTV returns the loan-to-value ratio as a percentage (e.g. 85.5).
// Returns zero when no property value is given.
func (in SimulationInput) LTV() decimal.Decimal {
	if in.PropertyValue <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(in.MortgageAmount).
		Div(decimal.NewFromInt(in.PropertyValue)).
		Mul(decimal.NewFromInt(100))
}

// MonthDate projects the calendar date of a 1-indexed month, or nil when no
// start date was supplied.
func (in SimulationInput) MonthDate(month int) *time.Time {
	if in.StartDate == nil {
		return nil
	}
	d := in.StartDate.AddDate(0, month-1, 0)
	return &d
}

// RatePeriod is a user-declared rate period referencing a catalog or custom
// rate. Periods are ordered and non-overlapping by construction; exactly one
// period may have DurationMonths = 0 ("until term end") and it must be last.
type RatePeriod struct {
	ID             string `json:"id"`
	LenderID       string `json:"lender_id"`
	RateID         string `json:"rate_id"`
	IsCustom       bool   `json:"is_custom,omitempty"`
	DurationMonths int    `json:"duration_months"`
	Label          string `json:"label,omitempty"`
}

// ResolvedRatePeriod is a RatePeriod with absolute month bounds and the
// resolved numeric rate. Derived, recomputed on every input change, never
// persisted.
type ResolvedRatePeriod struct {
	RatePeriod
	StartMonth     int             `json:"start_month"`
	EndMonth       int             `json:"end_month"` // inclusive
	Rate           decimal.Decimal `json:"rate"`      // annual %, e.g. 3.5
	RateType       RateType        `json:"rate_type"`
	FixedTermYears int             `json:"fixed_term_years,omitempty"`
}

// Contains reports whether the 1-indexed month falls inside the period.
func (p ResolvedRatePeriod) Contains(month int) bool {
	return month >= p.StartMonth && month <= p.EndMonth
}

// OverpaymentType is one_time or recurring.
type OverpaymentType string

const (
	OverpaymentOneTime   OverpaymentType = "one_time"
	OverpaymentRecurring OverpaymentType = "recurring"
)

// OverpaymentFrequency applies to recurring overpayments only.
type OverpaymentFrequency string

const (
	FrequencyMonthly   OverpaymentFrequency = "monthly"
	FrequencyQuarterly OverpaymentFrequency = "quarterly"
	FrequencyYearly    OverpaymentFrequency = "yearly"
)

// StepMonths returns the month stride for a frequency (1/3/12).
func (f OverpaymentFrequency) StepMonths() int {
	switch f {
	case FrequencyQuarterly:
		return 3
	case FrequencyYearly:
		return 12
	default:
		return 1
	}
}

// OverpaymentEffect selects between shortening the payoff date at constant
// payment (reduce_term) and re-amortizing to a lower payment at the same end
// date (reduce_payment).
type OverpaymentEffect string

const (
	EffectReduceTerm    OverpaymentEffect = "reduce_term"
	EffectReducePayment OverpaymentEffect = "reduce_payment"
)

// OverpaymentConfig declares a one-time or recurring overpayment.
// RatePeriodID is an explicit foreign key to the governing rate period —
// never a positional array index.
type OverpaymentConfig struct {
	RatePeriodID string               `json:"rate_period_id"`
	Type         OverpaymentType      `json:"type"`
	Frequency    OverpaymentFrequency `json:"frequency,omitempty"` // recurring only
	Amount       int64                `json:"amount"`              // cents
	StartMonth   int                  `json:"start_month"`
	EndMonth     int                  `json:"end_month,omitempty"` // recurring only; 0 = open-ended
	Effect       OverpaymentEffect    `json:"effect"`
	Enabled      *bool                `json:"enabled,omitempty"` // nil defaults to true
}

// IsEnabled applies the default-true rule for the Enabled flag.
func (c OverpaymentConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// ConstructionRepaymentType controls whether principal is repaid during the
// construction phase of a self-build mortgage.
type ConstructionRepaymentType string

const (
	ConstructionInterestOnly       ConstructionRepaymentType = "interest_only"
	ConstructionInterestAndCapital ConstructionRepaymentType = "interest_and_capital"
)

// DrawdownStage is one staged release of self-build funds.
type DrawdownStage struct {
	Month  int    `json:"month"`
	Amount int64  `json:"amount"` // cents
	Label  string `json:"label,omitempty"`
}

// SelfBuildConfig describes staged drawdowns and the interest-only window
// appended after the final drawdown. When the stage amounts do not sum to the
// mortgage amount, self-build is treated as inactive even if Enabled is set.
type SelfBuildConfig struct {
	Enabled                   bool                      `json:"enabled"`
	ConstructionRepaymentType ConstructionRepaymentType `json:"construction_repayment_type"`
	InterestOnlyMonths        int                       `json:"interest_only_months"`
	DrawdownStages            []DrawdownStage           `json:"drawdown_stages"`
}

// Phase is the financing phase of a month.
type Phase string

const (
	PhaseConstruction Phase = "construction"
	PhaseInterestOnly Phase = "interest_only"
	PhaseRepayment    Phase = "repayment"
)

// MonthlyBreakdown is the engine's primary output unit: one row per elapsed
// month. OpeningBalance includes the month's drawdown, so
// ClosingBalance = OpeningBalance - PrincipalPortion - Overpayment and
// OpeningBalance(m+1) = ClosingBalance(m) + DrawdownThisMonth(m+1).
// CumulativePrincipal counts both scheduled principal and overpayments.
type MonthlyBreakdown struct {
	Month               int        `json:"month"`
	Date                *time.Time `json:"date,omitempty"`
	OpeningBalance      int64      `json:"opening_balance"`
	DrawdownThisMonth   int64      `json:"drawdown_this_month"`
	CumulativeDrawn     int64      `json:"cumulative_drawn"`
	Phase               Phase      `json:"phase"`
	IsInterestOnly      bool       `json:"is_interest_only"`
	ScheduledPayment    int64      `json:"scheduled_payment"`
	InterestPortion     int64      `json:"interest_portion"`
	PrincipalPortion    int64      `json:"principal_portion"`
	Overpayment         int64      `json:"overpayment"`
	TotalPayment        int64      `json:"total_payment"`
	ClosingBalance      int64      `json:"closing_balance"`
	CumulativeInterest  int64      `json:"cumulative_interest"`
	CumulativePrincipal int64      `json:"cumulative_principal"`
}

// YearlyBreakdown aggregates up to 12 consecutive months.
type YearlyBreakdown struct {
	Year             int      `json:"year"` // 1-indexed
	StartMonth       int      `json:"start_month"`
	EndMonth         int      `json:"end_month"`
	OpeningBalance   int64    `json:"opening_balance"`
	ClosingBalance   int64    `json:"closing_balance"`
	TotalInterest    int64    `json:"total_interest"`
	TotalPrincipal   int64    `json:"total_principal"`
	TotalOverpayment int64    `json:"total_overpayment"`
	TotalPaid        int64    `json:"total_paid"`
	RateChanges      []string `json:"rate_changes"` // rate-period IDs active during the year
}

// MilestoneType enumerates the emitted milestone events.
type MilestoneType string

const (
	MilestoneMortgageStart        MilestoneType = "mortgage_start"
	MilestoneLTV80Percent         MilestoneType = "ltv_80_percent"
	MilestoneConstructionComplete MilestoneType = "construction_complete"
	MilestoneFullPaymentsStart    MilestoneType = "full_payments_start"
	MilestonePrincipal25Percent   MilestoneType = "principal_25_percent"
	MilestonePrincipal50Percent   MilestoneType = "principal_50_percent"
	MilestonePrincipal75Percent   MilestoneType = "principal_75_percent"
	MilestoneMortgageComplete     MilestoneType = "mortgage_complete"
)

// Milestone is a schedule event. Produced in strictly ascending month order;
// no milestone type is emitted twice.
type Milestone struct {
	Type  MilestoneType `json:"type"`
	Month int           `json:"month"`
	Date  *time.Time    `json:"date,omitempty"`
	Value int64         `json:"value"` // cents
	Label string        `json:"label"`
}

// WarningType enumerates advisory simulation warnings.
type WarningType string

const (
	WarningEarlyRedemption  WarningType = "early_redemption"
	WarningExceedsAllowance WarningType = "overpayment_exceeds_allowance"
)

// SimulationWarning is attached to the month it occurs in. Warnings are
// advisory and never abort a run.
type SimulationWarning struct {
	Type    WarningType `json:"type"`
	Month   int         `json:"month"`
	Message string      `json:"message"`
}

// Schedule is the engine output: the monthly breakdown plus any warnings.
type Schedule struct {
	Months   []MonthlyBreakdown  `json:"months"`
	Warnings []SimulationWarning `json:"warnings"`
}

// TotalInterest returns the cumulative interest of the final month.
func (s Schedule) TotalInterest() int64 {
	if len(s.Months) == 0 {
		return 0
	}
	return s.Months[len(s.Months)-1].CumulativeInterest
}

// TotalPaid sums every month's total payment.
func (s Schedule) TotalPaid() int64 {
	var total int64
	for _, m := range s.Months {
		total += m.TotalPayment
	}
	return total
}

// SimulationSummary holds lifetime statistics. InterestSaved and MonthsSaved
// compare against a baseline schedule with all overpayments disabled;
// ExtraInterestFromSelfBuild compares the interest-only-construction baseline
// against an interest-and-capital baseline.
type SimulationSummary struct {
	TotalInterest              int64 `json:"total_interest"`
	TotalPaid                  int64 `json:"total_paid"`
	InterestSaved              int64 `json:"interest_saved"`
	MonthsSaved                int   `json:"months_saved"`
	ExtraInterestFromSelfBuild int64 `json:"extra_interest_from_self_build"`
}
