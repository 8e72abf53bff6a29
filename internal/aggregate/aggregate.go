// Package aggregate rolls a monthly schedule into yearly summaries, lifetime
// statistics, and milestone events.
//
// Summary statistics deliberately re-run the engine for their baselines
// (overpayments disabled, and for self-build a second interest-and-capital
// baseline) instead of tracking deltas incrementally: the engine is a cheap
// bounded fold and two extra runs keep the arithmetic trivially correct.
package aggregate

import (
	"sort"

	"github.com/avoca/mortgage-engine/internal/engine"
	"github.com/avoca/mortgage-engine/internal/model"
	"github.com/avoca/mortgage-engine/internal/rateperiod"
	"github.com/avoca/mortgage-engine/internal/selfbuild"
)

// Outcome is everything the UI layer consumes for one simulation.
type Outcome struct {
	Schedule   model.Schedule          `json:"schedule"`
	Yearly     []model.YearlyBreakdown `json:"yearly"`
	Summary    model.SimulationSummary `json:"summary"`
	Milestones []model.Milestone       `json:"milestones"`
}

// Aggregate runs the engine and derives the yearly rollup, summary, and
// milestones. Degenerate inputs yield an Outcome with empty collections.
func Aggregate(req engine.Request, cat model.Catalog) (*Outcome, error) {
	sched, err := engine.Simulate(req, cat)
	if err != nil {
		return nil, err
	}
	out := &Outcome{Schedule: sched}
	if len(sched.Months) == 0 {
		return out, nil
	}

	resolved, err := rateperiod.Resolve(req.Input, req.RatePeriods, req.SelfBuild, cat)
	if err != nil {
		return nil, err
	}

	out.Yearly = Yearly(sched.Months, resolved)
	out.Summary, err = BuildSummary(req, cat, sched)
	if err != nil {
		return nil, err
	}
	out.Milestones = Milestones(req.Input, req.SelfBuild, sched.Months)
	return out, nil
}

// Yearly partitions the schedule into consecutive 12-month windows (the last
// may be shorter) and sums each window's flows. RateChanges lists the
// distinct rate-period IDs active during the window, in period order.
func Yearly(months []model.MonthlyBreakdown, resolved []model.ResolvedRatePeriod) []model.YearlyBreakdown {
	var years []model.YearlyBreakdown
	for start := 1; start <= len(months); start += 12 {
		end := start + 11
		if end > len(months) {
			end = len(months)
		}

		y := model.YearlyBreakdown{
			Year:           (start-1)/12 + 1,
			StartMonth:     start,
			EndMonth:       end,
			OpeningBalance: months[start-1].OpeningBalance,
			ClosingBalance: months[end-1].ClosingBalance,
		}
		for m := start; m <= end; m++ {
			row := months[m-1]
			y.TotalInterest += row.InterestPortion
			y.TotalPrincipal += row.PrincipalPortion
			y.TotalOverpayment += row.Overpayment
			y.TotalPaid += row.TotalPayment
		}
		for _, p := range resolved {
			if p.StartMonth <= end && p.EndMonth >= start {
				y.RateChanges = append(y.RateChanges, p.ID)
			}
		}
		years = append(years, y)
	}
	return years
}

// BuildSummary computes lifetime statistics against a baseline schedule with
// all overpayments disabled, plus the extra interest attributable to an
// interest-only construction phase when self-build is active.
func BuildSummary(req engine.Request, cat model.Catalog, actual model.Schedule) (model.SimulationSummary, error) {
	s := model.SimulationSummary{
		TotalInterest: actual.TotalInterest(),
		TotalPaid:     actual.TotalPaid(),
	}

	baseline, err := engine.Simulate(req.WithoutOverpayments(), cat)
	if err != nil {
		return s, err
	}
	s.InterestSaved = baseline.TotalInterest() - s.TotalInterest
	s.MonthsSaved = len(baseline.Months) - len(actual.Months)

	sb := req.SelfBuild
	if selfbuild.Effective(sb, req.Input.MortgageAmount) &&
		sb.ConstructionRepaymentType == model.ConstructionInterestOnly {
		capital, err := engine.Simulate(
			req.WithoutOverpayments().WithConstructionType(model.ConstructionInterestAndCapital), cat)
		if err != nil {
			return s, err
		}
		s.ExtraInterestFromSelfBuild = baseline.TotalInterest() - capital.TotalInterest()
	}
	return s, nil
}

// Milestones derives the schedule's milestone events in strictly ascending
// month order. Gating rules:
//   - ltv_80_percent only when the starting LTV exceeds 80%
//   - construction_complete / full_payments_start only for effective
//     self-build (stages summing to the principal)
//   - principal thresholds never before the repayment phase when self-build
//     is active
//   - mortgage_complete only when the mortgage actually reaches zero
func Milestones(input model.SimulationInput, sb *model.SelfBuildConfig, months []model.MonthlyBreakdown) []model.Milestone {
	if len(months) == 0 {
		return nil
	}

	effectiveSB := selfbuild.Effective(sb, input.MortgageAmount)
	repayStart := 1
	if effectiveSB {
		repayStart = selfbuild.RepaymentStart(sb)
	}

	var ms []model.Milestone
	add := func(t model.MilestoneType, month int, value int64, label string) {
		ms = append(ms, model.Milestone{
			Type:  t,
			Month: month,
			Date:  input.MonthDate(month),
			Value: value,
			Label: label,
		})
	}

	add(model.MilestoneMortgageStart, 1, months[0].OpeningBalance, "Mortgage start")

	// Starting LTV above 80%: record the month the balance first crosses it.
	if input.PropertyValue > 0 && input.MortgageAmount*10 > input.PropertyValue*8 {
		for _, row := range months {
			if row.ClosingBalance*10 <= input.PropertyValue*8 {
				add(model.MilestoneLTV80Percent, row.Month, row.ClosingBalance, "LTV below 80%")
				break
			}
		}
	}

	if effectiveSB {
		ce := selfbuild.ConstructionEnd(sb)
		if ce <= len(months) {
			add(model.MilestoneConstructionComplete, ce, months[ce-1].CumulativeDrawn, "Construction complete")
		}
		if sb.InterestOnlyMonths > 0 && repayStart <= len(months) {
			add(model.MilestoneFullPaymentsStart, repayStart, months[repayStart-1].OpeningBalance, "Full payments start")
		}
	}

	thresholds := []struct {
		t     model.MilestoneType
		num   int64 // threshold = num/den of original principal
		den   int64
		label string
	}{
		{model.MilestonePrincipal25Percent, 1, 4, "25% of principal repaid"},
		{model.MilestonePrincipal50Percent, 1, 2, "50% of principal repaid"},
		{model.MilestonePrincipal75Percent, 3, 4, "75% of principal repaid"},
	}
	for _, th := range thresholds {
		for _, row := range months {
			if effectiveSB && row.Month < repayStart {
				continue
			}
			if row.CumulativePrincipal*th.den >= input.MortgageAmount*th.num {
				add(th.t, row.Month, row.CumulativePrincipal, th.label)
				break
			}
		}
	}

	last := months[len(months)-1]
	if last.ClosingBalance == 0 {
		add(model.MilestoneMortgageComplete, last.Month, 0, "Mortgage complete")
	}

	sort.SliceStable(ms, func(i, j int) bool { return ms[i].Month < ms[j].Month })
	return ms
}
