// Package selfbuild determines the financing phase of a self-build mortgage
// month: construction while drawdowns are still being released, an optional
// interest-only window after the final drawdown, then standard repayment.
package selfbuild

import "github.com/avoca/mortgage-engine/internal/model"

// IsActive reports whether a self-build config is enabled with at least one
// drawdown stage. Callers must additionally verify the stage sum against the
// mortgage amount (see Effective) before treating construction milestones as
// meaningful.
func IsActive(cfg *model.SelfBuildConfig) bool {
	return cfg != nil && cfg.Enabled && len(cfg.DrawdownStages) > 0
}

// StagesSumTo reports whether the drawdown stage amounts sum exactly to the
// given principal.
func StagesSumTo(cfg *model.SelfBuildConfig, amount int64) bool {
	if cfg == nil {
		return false
	}
	var sum int64
	for _, s := range cfg.DrawdownStages {
		sum += s.Amount
	}
	return sum == amount
}

// Effective reports whether self-build behaviour applies at all: enabled,
// stages present, and stage amounts summing exactly to the principal. When
// the sum mismatches, the mortgage is simulated as a standard full drawdown
// at month 1 and construction milestones are suppressed.
func Effective(cfg *model.SelfBuildConfig, amount int64) bool {
	return IsActive(cfg) && StagesSumTo(cfg, amount)
}

// ConstructionEnd returns the month of the final drawdown stage, or 0 when
// inactive.
func ConstructionEnd(cfg *model.SelfBuildConfig) int {
	if !IsActive(cfg) {
		return 0
	}
	end := 0
	for _, s := range cfg.DrawdownStages {
		if s.Month > end {
			end = s.Month
		}
	}
	return end
}

// RepaymentStart returns the first month of the repayment phase:
// constructionEnd + interestOnlyMonths + 1.
func RepaymentStart(cfg *model.SelfBuildConfig) int {
	if !IsActive(cfg) {
		return 1
	}
	return ConstructionEnd(cfg) + cfg.InterestOnlyMonths + 1
}

// Phase returns the financing phase for a 1-indexed month. Inactive configs
// are always in repayment.
func Phase(month int, cfg *model.SelfBuildConfig) model.Phase {
	if !IsActive(cfg) {
		return model.PhaseRepayment
	}
	end := ConstructionEnd(cfg)
	switch {
	case month <= end:
		return model.PhaseConstruction
	case month <= end+cfg.InterestOnlyMonths:
		return model.PhaseInterestOnly
	default:
		return model.PhaseRepayment
	}
}

// DrawdownAt sums the stage amounts released in a given month.
func DrawdownAt(month int, cfg *model.SelfBuildConfig) int64 {
	if !IsActive(cfg) {
		return 0
	}
	var sum int64
	for _, s := range cfg.DrawdownStages {
		if s.Month == month {
			sum += s.Amount
		}
	}
	return sum
}
