// Package rateperiod resolves user-declared rate periods against the rate
// catalog and lender eligibility rules.
//
// Resolution is pure and order-preserving: period i starts the month after
// period i-1 ends, the first period starts at month 1, and a zero-duration
// period runs until term end. Any ineligibility fails the whole resolution —
// the engine must never run on a partially resolved period list.
package rateperiod

import (
	"errors"
	"fmt"

	"github.com/avoca/mortgage-engine/internal/model"
	"github.com/avoca/mortgage-engine/internal/selfbuild"
)

var (
	// ErrRateNotFound is returned when a referenced rate ID is missing from
	// the catalog (or custom-rate table).
	ErrRateNotFound = errors.New("rateperiod: rate not found")

	// ErrLenderNotFound is returned when a referenced lender ID is unknown.
	ErrLenderNotFound = errors.New("rateperiod: lender not found")

	// ErrLTVIneligible is returned when the input LTV falls outside the
	// lender's supported range.
	ErrLTVIneligible = errors.New("rateperiod: lender does not support this LTV")

	// ErrBERIneligible is returned when the lender restricts BER ratings and
	// the input rating is not among them.
	ErrBERIneligible = errors.New("rateperiod: lender does not support this BER rating")

	// ErrBuyerTypeIneligible is returned when the lender restricts buyer
	// types and the input type is not among them.
	ErrBuyerTypeIneligible = errors.New("rateperiod: lender does not support this buyer type")

	// ErrSelfBuildUnsupported is returned when a self-build config is active
	// but the lender does not offer self-build mortgages.
	ErrSelfBuildUnsupported = errors.New("rateperiod: lender does not support self-build")

	// ErrOpenEndedNotLast is returned when a zero-duration ("until term end")
	// period is not the final period, or appears more than once.
	ErrOpenEndedNotLast = errors.New("rateperiod: open-ended period must be the single last period")
)

// IsResolutionError reports whether err is one of this package's resolution
// failures, i.e. the simulation is unavailable rather than faulted.
func IsResolutionError(err error) bool {
	for _, e := range []error{
		ErrRateNotFound, ErrLenderNotFound, ErrLTVIneligible, ErrBERIneligible,
		ErrBuyerTypeIneligible, ErrSelfBuildUnsupported, ErrOpenEndedNotLast,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// Resolve turns ordered rate periods into fully resolved periods with
// absolute month bounds and numeric rates. Returns an error when any period
// cannot be resolved; a nil error guarantees the periods cover months
// 1..termMonths (the final period is extended to term end when the declared
// durations fall short).
func Resolve(
	input model.SimulationInput,
	periods []model.RatePeriod,
	sb *model.SelfBuildConfig,
	cat model.Catalog,
) ([]model.ResolvedRatePeriod, error) {
	if len(periods) == 0 {
		return nil, nil
	}

	selfBuildActive := selfbuild.IsActive(sb)

	resolved := make([]model.ResolvedRatePeriod, 0, len(periods))
	start := 1

	for i, p := range periods {
		if p.DurationMonths == 0 && i != len(periods)-1 {
			return nil, fmt.Errorf("%w: period %q", ErrOpenEndedNotLast, p.ID)
		}

		rate, ok := cat.Rate(p.RateID, p.IsCustom)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrRateNotFound, p.RateID)
		}

		lender, ok := cat.Lenders[p.LenderID]
		if !ok && !p.IsCustom {
			return nil, fmt.Errorf("%w: %q", ErrLenderNotFound, p.LenderID)
		}
		if ok {
			if err := checkEligibility(lender, input, selfBuildActive); err != nil {
				return nil, fmt.Errorf("%w (lender %q, period %q)", err, p.LenderID, p.ID)
			}
		}

		end := input.MortgageTermMonths
		if p.DurationMonths > 0 {
			end = start + p.DurationMonths - 1
			if end > input.MortgageTermMonths {
				end = input.MortgageTermMonths
			}
		}
		if start > input.MortgageTermMonths {
			break // declared periods already cover the full term
		}

		resolved = append(resolved, model.ResolvedRatePeriod{
			RatePeriod:     p,
			StartMonth:     start,
			EndMonth:       end,
			Rate:           rate.Rate,
			RateType:       rate.Type,
			FixedTermYears: rate.FixedTermYears,
		})
		start = end + 1
	}

	// Months past the last declared period keep its rate.
	if n := len(resolved); n > 0 && resolved[n-1].EndMonth < input.MortgageTermMonths {
		resolved[n-1].EndMonth = input.MortgageTermMonths
	}

	return resolved, nil
}

// At returns the resolved period governing a 1-indexed month. Falls back to
// the last period so callers never run a month without a rate.
func At(resolved []model.ResolvedRatePeriod, month int) model.ResolvedRatePeriod {
	for _, p := range resolved {
		if p.Contains(month) {
			return p
		}
	}
	return resolved[len(resolved)-1]
}

func checkEligibility(l model.Lender, input model.SimulationInput, selfBuildActive bool) error {
	if input.PropertyValue > 0 {
		v := input.LTV()
		if v.LessThan(l.MinLTV) || (l.MaxLTV.IsPositive() && v.GreaterThan(l.MaxLTV)) {
			return ErrLTVIneligible
		}
	}
	if len(l.BEREligible) > 0 && input.BERRating != "" {
		if !containsString(l.BEREligible, input.BERRating) {
			return ErrBERIneligible
		}
	}
	if len(l.BuyerTypes) > 0 && input.BuyerType != "" {
		found := false
		for _, bt := range l.BuyerTypes {
			if bt == input.BuyerType {
				found = true
				break
			}
		}
		if !found {
			return ErrBuyerTypeIneligible
		}
	}
	if selfBuildActive && !l.AllowsSelfBuild {
		return ErrSelfBuildUnsupported
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
