// Package engine implements the month-by-month mortgage amortization state
// machine: staged self-build drawdowns, sequential rate periods, recurring
// and one-time overpayments, allowance and early-redemption warnings.
//
// Simulate is a pure function of its inputs — no module-level state, no
// caching, no time-of-day dependency. Identical inputs always yield an
// identical schedule, so independent runs may execute concurrently.
//
// All monetary values are int64 cents. Interest is computed in decimal and
// rounded half away from zero; the annuity power term runs in float64 and is
// converted to cents immediately. The final month's principal portion is
// forced to equal the opening balance so the schedule always terminates at
// exactly zero.
package engine

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/avoca/mortgage-engine/internal/model"
	"github.com/avoca/mortgage-engine/internal/overpay"
	"github.com/avoca/mortgage-engine/internal/rateperiod"
	"github.com/avoca/mortgage-engine/internal/selfbuild"
)

// Request bundles everything one simulation run needs besides the catalog.
type Request struct {
	Input        model.SimulationInput     `json:"input"`
	RatePeriods  []model.RatePeriod        `json:"rate_periods"`
	Overpayments []model.OverpaymentConfig `json:"overpayments,omitempty"`
	SelfBuild    *model.SelfBuildConfig    `json:"self_build,omitempty"`
}

// WithoutOverpayments returns a copy of the request with all overpayments
// removed, used for baseline schedules.
func (r Request) WithoutOverpayments() Request {
	r.Overpayments = nil
	return r
}

// WithConstructionType returns a copy of the request with the self-build
// construction repayment type replaced. No-op without a self-build config.
func (r Request) WithConstructionType(t model.ConstructionRepaymentType) Request {
	if r.SelfBuild == nil {
		return r
	}
	sb := *r.SelfBuild
	sb.ConstructionRepaymentType = t
	r.SelfBuild = &sb
	return r
}

// allowanceWindow tracks overpayments against one allowance window so the
// exceeds-allowance warning fires at most once per window.
type allowanceWindow struct {
	spent  int64
	warned bool
}

// Simulate produces the full monthly schedule from first drawdown to payoff
// or term exhaustion. Degenerate inputs (zero amount, zero term, no rate
// periods) return an empty schedule and no error; an unresolvable rate
// period returns an error and no schedule.
func Simulate(req Request, cat model.Catalog) (model.Schedule, error) {
	in := req.Input
	if in.MortgageAmount <= 0 || in.MortgageTermMonths <= 0 || len(req.RatePeriods) == 0 {
		return model.Schedule{}, nil
	}

	resolved, err := rateperiod.Resolve(in, req.RatePeriods, req.SelfBuild, cat)
	if err != nil {
		return model.Schedule{}, err
	}

	sb := req.SelfBuild
	effectiveSB := selfbuild.Effective(sb, in.MortgageAmount)
	repayStart := 1
	if effectiveSB {
		repayStart = selfbuild.RepaymentStart(sb)
	}

	term := in.MortgageTermMonths
	var (
		months        []model.MonthlyBreakdown
		warnings      []model.SimulationWarning
		balance       int64
		cumDrawn      int64
		cumInterest   int64
		cumPrincipal  int64
		scheduled     int64
		recomputeNext bool
	)
	windows := make(map[int]*allowanceWindow)

	for m := 1; m <= term; m++ {
		period := rateperiod.At(resolved, m)

		phase := model.PhaseRepayment
		if effectiveSB {
			phase = selfbuild.Phase(m, sb)
		}

		// Apply this month's drawdown before anything else. A standard
		// mortgage is a single full drawdown at month 1.
		var draw int64
		if effectiveSB {
			draw = selfbuild.DrawdownAt(m, sb)
		} else if m == 1 {
			draw = in.MortgageAmount
		}
		balance += draw
		cumDrawn += draw
		opening := balance

		paysPrincipal := phase == model.PhaseRepayment ||
			(phase == model.PhaseConstruction &&
				sb.ConstructionRepaymentType == model.ConstructionInterestAndCapital)

		monthlyRate := period.Rate.Div(decimal.NewFromInt(1200))
		interest := roundCents(decimal.NewFromInt(balance).Mul(monthlyRate))

		// Recompute the scheduled payment on every rate boundary, on entry
		// into repayment, after a reduce_payment overpayment, and whenever a
		// drawdown changed the balance being amortized.
		if paysPrincipal &&
			(m == period.StartMonth || m == repayStart || recomputeNext || draw > 0) {
			scheduled = annuityPayment(balance, period.Rate, term-m+1)
		}
		recomputeNext = false

		var principal int64
		emittedScheduled := interest // interest-only months pay interest only
		if paysPrincipal {
			principal = scheduled - interest
			if principal < 0 {
				principal = 0
			}
			if principal > balance {
				principal = balance
			}
			if m == term {
				principal = balance // absorb all rounding residue
			}
			emittedScheduled = scheduled
		}

		contrib := overpay.ForMonth(m, term, req.Overpayments)
		op := contrib.Total
		if op > balance-principal {
			op = balance - principal
		}
		if op < 0 {
			op = 0
		}

		if op > 0 {
			if policy, ok := cat.PolicyForLender(period.LenderID); ok {
				wStart := allowanceWindowStart(policy, period, m)
				w := windows[wStart]
				if w == nil {
					w = &allowanceWindow{}
					windows[wStart] = w
				}
				base := opening
				if wStart < m {
					base = months[wStart-1].OpeningBalance
				}
				cap := overpay.AllowanceCap(policy, in.MortgageAmount, base)
				w.spent += op
				if w.spent > cap && !w.warned {
					w.warned = true
					warnings = append(warnings, model.SimulationWarning{
						Type:  model.WarningExceedsAllowance,
						Month: m,
						Message: fmt.Sprintf(
							"overpayments of %d in the window starting month %d exceed the allowance of %d",
							w.spent, wStart, cap),
					})
				}
			}
			if contrib.ReducePayment > 0 {
				recomputeNext = true
			}
		}

		closing := balance - principal - op
		cumInterest += interest
		cumPrincipal += principal + op

		months = append(months, model.MonthlyBreakdown{
			Month:               m,
			Date:                in.MonthDate(m),
			OpeningBalance:      opening,
			DrawdownThisMonth:   draw,
			CumulativeDrawn:     cumDrawn,
			Phase:               phase,
			IsInterestOnly:      !paysPrincipal,
			ScheduledPayment:    emittedScheduled,
			InterestPortion:     interest,
			PrincipalPortion:    principal,
			Overpayment:         op,
			TotalPayment:        interest + principal + op,
			ClosingBalance:      closing,
			CumulativeInterest:  cumInterest,
			CumulativePrincipal: cumPrincipal,
		})

		if closing == 0 {
			if op > 0 && period.RateType == model.RateFixed && m < period.EndMonth {
				warnings = append(warnings, model.SimulationWarning{
					Type:  model.WarningEarlyRedemption,
					Month: m,
					Message: fmt.Sprintf(
						"overpayment repays the mortgage in month %d, inside a fixed period ending month %d",
						m, period.EndMonth),
				})
			}
			break
		}
		balance = closing
	}

	return model.Schedule{Months: months, Warnings: warnings}, nil
}

// allowanceWindowStart returns the first month of the allowance window
// containing month m: the whole rate period for per-fixed-period policies,
// consecutive 12-month windows from month 1 otherwise.
func allowanceWindowStart(policy model.OverpaymentPolicy, period model.ResolvedRatePeriod, m int) int {
	if policy.BasisPeriod == model.PeriodPerFixedPeriod {
		return period.StartMonth
	}
	return 1 + 12*((m-1)/12)
}

// annuityPayment computes the fixed monthly payment for a balance amortized
// over n months at an annual percentage rate:
//
//	P = B*r / (1 - (1+r)^-n),  r = rate/100/12
//
// At rate 0 the payment is B/n. The power term runs in float64 and the
// result is rounded half away from zero to cents.
func annuityPayment(balance int64, annualRate decimal.Decimal, n int) int64 {
	if n <= 0 {
		return balance
	}
	if annualRate.IsZero() {
		return roundCents(decimal.NewFromInt(balance).Div(decimal.NewFromInt(int64(n))))
	}
	r, _ := annualRate.Div(decimal.NewFromInt(1200)).Float64()
	p := float64(balance) * r / (1 - math.Pow(1+r, -float64(n)))
	return int64(math.Round(p))
}

// roundCents rounds a decimal cent amount half away from zero to an int64.
func roundCents(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}
