// Package overpay expands overpayment configurations into per-month
// contribution amounts and enforces lender allowance policies.
//
// The resolver only sums amounts; the effect of an overpayment (reduce_term
// vs reduce_payment) is consumed by the amortization engine, not here.
package overpay

import (
	"github.com/avoca/mortgage-engine/internal/model"
	"github.com/avoca/mortgage-engine/internal/rateperiod"
	"github.com/avoca/mortgage-engine/internal/selfbuild"
	"github.com/shopspring/decimal"
)

// Contribution is the resolved overpayment for one month. ReducePayment is
// the part contributed by reduce_payment configs; the engine uses it to
// decide whether the scheduled payment must be recomputed.
type Contribution struct {
	Total         int64
	ReducePayment int64
}

// ForMonth resolves the stacked overpayment contribution for a month.
// One-time configs contribute exactly at their start month; recurring
// configs contribute at every month m with m >= start,
// m <= (end or termMonths), and (m - start) divisible by the frequency step.
func ForMonth(month, termMonths int, configs []model.OverpaymentConfig) Contribution {
	var c Contribution
	for _, cfg := range configs {
		if !cfg.IsEnabled() || cfg.Amount <= 0 {
			continue
		}
		if !appliesAt(month, termMonths, cfg) {
			continue
		}
		c.Total += cfg.Amount
		if cfg.Effect == model.EffectReducePayment {
			c.ReducePayment += cfg.Amount
		}
	}
	return c
}

// AmountForMonth returns just the summed contribution for a month.
func AmountForMonth(month, termMonths int, configs []model.OverpaymentConfig) int64 {
	return ForMonth(month, termMonths, configs).Total
}

func appliesAt(month, termMonths int, cfg model.OverpaymentConfig) bool {
	switch cfg.Type {
	case model.OverpaymentOneTime:
		return month == cfg.StartMonth
	case model.OverpaymentRecurring:
		if month < cfg.StartMonth {
			return false
		}
		end := cfg.EndMonth
		if end == 0 {
			end = termMonths
		}
		if month > end {
			return false
		}
		return (month-cfg.StartMonth)%cfg.Frequency.StepMonths() == 0
	default:
		return false
	}
}

// AllowanceCap returns the penalty-free overpayment cap for one allowance
// window in cents. baseBalance is the outstanding balance at the window
// start; originalAmount is the initial principal.
func AllowanceCap(policy model.OverpaymentPolicy, originalAmount, baseBalance int64) int64 {
	if policy.AllowanceType == model.AllowanceFlat {
		return policy.AllowanceValue.Round(0).IntPart()
	}
	base := baseBalance
	if policy.AllowanceBasis == model.BasisOriginal {
		base = originalAmount
	}
	return policy.AllowanceValue.
		Mul(decimal.NewFromInt(base)).
		Div(decimal.NewFromInt(100)).
		Round(0).IntPart()
}

// YearlyPlan is one 12-month planning window with the maximum one-time
// overpayment that stays within the governing allowance policy.
type YearlyPlan struct {
	WindowStart    int   `json:"window_start"`
	WindowEnd      int   `json:"window_end"`
	OpeningBalance int64 `json:"opening_balance"`
	Allowance      int64 `json:"allowance"`       // window cap, 0 when no policy applies
	MaxOverpayment int64 `json:"max_overpayment"` // cap minus overpayments already in the schedule
}

// YearlyOverpaymentPlans computes, per 12-month window over a computed
// schedule, the maximum permissible one-time overpayment without breaching
// the allowance policy of the rate period active at the window start.
//
// When self-build is active the first window starts strictly after the final
// drawdown month, never at month 1. Windows with no governing policy are
// capped only by the outstanding balance.
func YearlyOverpaymentPlans(
	months []model.MonthlyBreakdown,
	resolved []model.ResolvedRatePeriod,
	cat model.Catalog,
	input model.SimulationInput,
	sb *model.SelfBuildConfig,
) []YearlyPlan {
	if len(months) == 0 || len(resolved) == 0 {
		return nil
	}

	first := 1
	if selfbuild.Effective(sb, input.MortgageAmount) {
		first = selfbuild.ConstructionEnd(sb) + 1
	}

	var plans []YearlyPlan
	for start := first; start <= len(months); start += 12 {
		end := start + 11
		if end > len(months) {
			end = len(months)
		}

		opening := months[start-1].OpeningBalance
		var spent int64
		for m := start; m <= end; m++ {
			spent += months[m-1].Overpayment
		}

		period := rateperiod.At(resolved, start)
		plan := YearlyPlan{
			WindowStart:    start,
			WindowEnd:      end,
			OpeningBalance: opening,
			MaxOverpayment: opening,
		}
		if policy, ok := cat.PolicyForLender(period.LenderID); ok {
			plan.Allowance = AllowanceCap(policy, input.MortgageAmount, opening)
			plan.MaxOverpayment = plan.Allowance - spent
		}
		if plan.MaxOverpayment > opening {
			plan.MaxOverpayment = opening
		}
		if plan.MaxOverpayment < 0 {
			plan.MaxOverpayment = 0
		}
		plans = append(plans, plan)
	}
	return plans
}
