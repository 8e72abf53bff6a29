package selfbuild

import (
	"testing"

	"github.com/avoca/mortgage-engine/internal/model"
)

func stagedConfig(interestOnlyMonths int) *model.SelfBuildConfig {
	return &model.SelfBuildConfig{
		Enabled:                   true,
		ConstructionRepaymentType: model.ConstructionInterestOnly,
		InterestOnlyMonths:        interestOnlyMonths,
		DrawdownStages: []model.DrawdownStage{
			{Month: 1, Amount: 7_500_000},
			{Month: 4, Amount: 10_500_000},
			{Month: 8, Amount: 12_000_000},
		},
	}
}

func TestIsActive(t *testing.T) {
	if IsActive(nil) {
		t.Error("nil config should be inactive")
	}
	if IsActive(&model.SelfBuildConfig{Enabled: true}) {
		t.Error("config without stages should be inactive")
	}
	cfg := stagedConfig(0)
	cfg.Enabled = false
	if IsActive(cfg) {
		t.Error("disabled config should be inactive")
	}
	if !IsActive(stagedConfig(0)) {
		t.Error("enabled config with stages should be active")
	}
}

func TestEffective_RequiresExactStageSum(t *testing.T) {
	cfg := stagedConfig(0)
	if !Effective(cfg, 30_000_000) {
		t.Error("stages summing to the principal should be effective")
	}
	if Effective(cfg, 30_000_001) {
		t.Error("stage sum mismatch should not be effective")
	}
}

func TestConstructionEnd(t *testing.T) {
	if got := ConstructionEnd(stagedConfig(0)); got != 8 {
		t.Errorf("expected construction end at month 8, got %d", got)
	}
	if got := ConstructionEnd(nil); got != 0 {
		t.Errorf("expected 0 for inactive config, got %d", got)
	}
}

func TestRepaymentStart(t *testing.T) {
	if got := RepaymentStart(stagedConfig(3)); got != 12 {
		t.Errorf("expected repayment from month 12, got %d", got)
	}
	if got := RepaymentStart(stagedConfig(0)); got != 9 {
		t.Errorf("expected repayment from month 9 without interest-only window, got %d", got)
	}
	if got := RepaymentStart(nil); got != 1 {
		t.Errorf("expected 1 for inactive config, got %d", got)
	}
}

func TestPhase(t *testing.T) {
	cfg := stagedConfig(3)
	tests := []struct {
		month int
		want  model.Phase
	}{
		{1, model.PhaseConstruction},
		{8, model.PhaseConstruction},
		{9, model.PhaseInterestOnly},
		{11, model.PhaseInterestOnly},
		{12, model.PhaseRepayment},
		{360, model.PhaseRepayment},
	}
	for _, tt := range tests {
		if got := Phase(tt.month, cfg); got != tt.want {
			t.Errorf("Phase(%d) = %s, want %s", tt.month, got, tt.want)
		}
	}
	if got := Phase(1, nil); got != model.PhaseRepayment {
		t.Errorf("inactive config should always be repayment, got %s", got)
	}
}

func TestDrawdownAt(t *testing.T) {
	cfg := stagedConfig(0)
	if got := DrawdownAt(4, cfg); got != 10_500_000 {
		t.Errorf("expected 10500000 at month 4, got %d", got)
	}
	if got := DrawdownAt(5, cfg); got != 0 {
		t.Errorf("expected 0 at month 5, got %d", got)
	}

	// Two stages in the same month stack.
	cfg.DrawdownStages = append(cfg.DrawdownStages, model.DrawdownStage{Month: 4, Amount: 1_000_000})
	if got := DrawdownAt(4, cfg); got != 11_500_000 {
		t.Errorf("expected stacked drawdowns 11500000, got %d", got)
	}
}
