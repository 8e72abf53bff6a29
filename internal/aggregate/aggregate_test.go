package aggregate

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/avoca/mortgage-engine/internal/engine"
	"github.com/avoca/mortgage-engine/internal/model"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func testCatalog() model.Catalog {
	return model.Catalog{
		Rates: map[string]model.RateDefinition{
			"var-4": {ID: "var-4", LenderID: "acme", Rate: d(4), Type: model.RateVariable},
			"fix-3": {ID: "fix-3", LenderID: "acme", Rate: d(3.45), Type: model.RateFixed, FixedTermYears: 3},
		},
		Lenders: map[string]model.Lender{
			"acme": {ID: "acme", Name: "Acme Bank", AllowsSelfBuild: true},
		},
	}
}

func basicRequest(amount int64, term int) engine.Request {
	return engine.Request{
		Input: model.SimulationInput{
			MortgageAmount:     amount,
			MortgageTermMonths: term,
		},
		RatePeriods: []model.RatePeriod{
			{ID: "p1", LenderID: "acme", RateID: "var-4"},
		},
	}
}

func aggregateOutcome(t *testing.T, req engine.Request) *Outcome {
	t.Helper()
	out, err := Aggregate(req, testCatalog())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return out
}

// --- Yearly rollup ---

func TestYearly_WindowSums(t *testing.T) {
	out := aggregateOutcome(t, basicRequest(20_000_000, 30))

	if len(out.Yearly) != 3 {
		t.Fatalf("expected 3 yearly windows for 30 months, got %d", len(out.Yearly))
	}
	y1 := out.Yearly[0]
	if y1.StartMonth != 1 || y1.EndMonth != 12 {
		t.Errorf("first window = [%d,%d], want [1,12]", y1.StartMonth, y1.EndMonth)
	}
	last := out.Yearly[2]
	if last.StartMonth != 25 || last.EndMonth != 30 {
		t.Errorf("trailing window = [%d,%d], want [25,30]", last.StartMonth, last.EndMonth)
	}

	var wantInterest, wantPaid int64
	for m := 1; m <= 12; m++ {
		row := out.Schedule.Months[m-1]
		wantInterest += row.InterestPortion
		wantPaid += row.TotalPayment
	}
	if y1.TotalInterest != wantInterest {
		t.Errorf("year-1 interest %d != sum of months %d", y1.TotalInterest, wantInterest)
	}
	if y1.TotalPaid != wantPaid {
		t.Errorf("year-1 paid %d != sum of months %d", y1.TotalPaid, wantPaid)
	}
	if y1.OpeningBalance != out.Schedule.Months[0].OpeningBalance {
		t.Errorf("year-1 opening %d != month-1 opening", y1.OpeningBalance)
	}
	if y1.ClosingBalance != out.Schedule.Months[11].ClosingBalance {
		t.Errorf("year-1 closing %d != month-12 closing", y1.ClosingBalance)
	}
}

func TestYearly_RateChanges(t *testing.T) {
	req := engine.Request{
		Input: model.SimulationInput{MortgageAmount: 20_000_000, MortgageTermMonths: 60},
		RatePeriods: []model.RatePeriod{
			{ID: "p1", LenderID: "acme", RateID: "fix-3", DurationMonths: 18},
			{ID: "p2", LenderID: "acme", RateID: "var-4"},
		},
	}
	out := aggregateOutcome(t, req)

	// Year 1 is all p1; year 2 straddles the switch at month 19; year 3 is all p2.
	if got := out.Yearly[0].RateChanges; len(got) != 1 || got[0] != "p1" {
		t.Errorf("year 1 rate changes = %v, want [p1]", got)
	}
	if got := out.Yearly[1].RateChanges; len(got) != 2 {
		t.Errorf("year 2 rate changes = %v, want [p1 p2]", got)
	}
	if got := out.Yearly[2].RateChanges; len(got) != 1 || got[0] != "p2" {
		t.Errorf("year 3 rate changes = %v, want [p2]", got)
	}
}

// --- Summary ---

func TestBuildSummary_OverpaymentSavings(t *testing.T) {
	req := basicRequest(20_000_000, 360)
	req.Overpayments = []model.OverpaymentConfig{{
		RatePeriodID: "p1",
		Type:         model.OverpaymentRecurring,
		Frequency:    model.FrequencyMonthly,
		Amount:       20_000,
		StartMonth:   1,
		Effect:       model.EffectReduceTerm,
	}}
	out := aggregateOutcome(t, req)

	if out.Summary.InterestSaved <= 0 {
		t.Errorf("expected positive interest saved, got %d", out.Summary.InterestSaved)
	}
	if out.Summary.MonthsSaved <= 0 {
		t.Errorf("expected positive months saved, got %d", out.Summary.MonthsSaved)
	}
	if out.Summary.TotalInterest != out.Schedule.TotalInterest() {
		t.Errorf("summary interest %d != schedule interest %d",
			out.Summary.TotalInterest, out.Schedule.TotalInterest())
	}
}

func TestBuildSummary_NoOverpaymentsNoSavings(t *testing.T) {
	out := aggregateOutcome(t, basicRequest(20_000_000, 360))
	if out.Summary.InterestSaved != 0 {
		t.Errorf("expected zero interest saved, got %d", out.Summary.InterestSaved)
	}
	if out.Summary.MonthsSaved != 0 {
		t.Errorf("expected zero months saved, got %d", out.Summary.MonthsSaved)
	}
	if out.Summary.ExtraInterestFromSelfBuild != 0 {
		t.Errorf("expected no self-build cost without self-build, got %d",
			out.Summary.ExtraInterestFromSelfBuild)
	}
}

func selfBuildRequest(rt model.ConstructionRepaymentType) engine.Request {
	req := basicRequest(30_000_000, 360)
	req.SelfBuild = &model.SelfBuildConfig{
		Enabled:                   true,
		ConstructionRepaymentType: rt,
		InterestOnlyMonths:        3,
		DrawdownStages: []model.DrawdownStage{
			{Month: 1, Amount: 7_500_000},
			{Month: 4, Amount: 10_500_000},
			{Month: 8, Amount: 12_000_000},
		},
	}
	return req
}

func TestBuildSummary_ExtraInterestFromSelfBuild(t *testing.T) {
	out := aggregateOutcome(t, selfBuildRequest(model.ConstructionInterestOnly))
	if out.Summary.ExtraInterestFromSelfBuild <= 0 {
		t.Errorf("expected interest-only construction to cost extra interest, got %d",
			out.Summary.ExtraInterestFromSelfBuild)
	}

	// Interest-and-capital construction carries no interest-only premium.
	out = aggregateOutcome(t, selfBuildRequest(model.ConstructionInterestAndCapital))
	if out.Summary.ExtraInterestFromSelfBuild != 0 {
		t.Errorf("expected no premium for interest-and-capital, got %d",
			out.Summary.ExtraInterestFromSelfBuild)
	}
}

// --- Milestones ---

func milestonesByType(ms []model.Milestone) map[model.MilestoneType]model.Milestone {
	byType := make(map[model.MilestoneType]model.Milestone, len(ms))
	for _, m := range ms {
		byType[m.Type] = m
	}
	return byType
}

func TestMilestones_StandardMortgage(t *testing.T) {
	req := basicRequest(20_000_000, 360)
	req.Input.PropertyValue = 22_000_000 // ~91% LTV
	out := aggregateOutcome(t, req)

	byType := milestonesByType(out.Milestones)

	start, ok := byType[model.MilestoneMortgageStart]
	if !ok || start.Month != 1 {
		t.Errorf("expected mortgage_start at month 1, got %+v", start)
	}
	if start.Value != 20_000_000 {
		t.Errorf("expected start value 20000000, got %d", start.Value)
	}
	if _, ok := byType[model.MilestoneLTV80Percent]; !ok {
		t.Error("expected ltv_80_percent milestone for a 91% LTV mortgage")
	}
	complete, ok := byType[model.MilestoneMortgageComplete]
	if !ok || complete.Month != 360 {
		t.Errorf("expected mortgage_complete at month 360, got %+v", complete)
	}
	for _, mt := range []model.MilestoneType{
		model.MilestonePrincipal25Percent,
		model.MilestonePrincipal50Percent,
		model.MilestonePrincipal75Percent,
	} {
		if _, ok := byType[mt]; !ok {
			t.Errorf("expected %s milestone", mt)
		}
	}
	if byType[model.MilestonePrincipal25Percent].Month >= byType[model.MilestonePrincipal50Percent].Month {
		t.Error("principal milestones out of order")
	}

	for i := 1; i < len(out.Milestones); i++ {
		if out.Milestones[i].Month < out.Milestones[i-1].Month {
			t.Fatal("milestones not in ascending month order")
		}
	}
}

func TestMilestones_LTVGated(t *testing.T) {
	req := basicRequest(20_000_000, 360)
	req.Input.PropertyValue = 30_000_000 // ~67% LTV from day one
	out := aggregateOutcome(t, req)

	if _, ok := milestonesByType(out.Milestones)[model.MilestoneLTV80Percent]; ok {
		t.Error("ltv_80_percent must not fire when the mortgage starts below 80%")
	}
}

func TestMilestones_SelfBuild(t *testing.T) {
	out := aggregateOutcome(t, selfBuildRequest(model.ConstructionInterestOnly))
	byType := milestonesByType(out.Milestones)

	cc, ok := byType[model.MilestoneConstructionComplete]
	if !ok || cc.Month != 8 {
		t.Errorf("expected construction_complete at month 8, got %+v", cc)
	}
	if cc.Value != 30_000_000 {
		t.Errorf("expected construction value 30000000, got %d", cc.Value)
	}
	fp, ok := byType[model.MilestoneFullPaymentsStart]
	if !ok || fp.Month != 12 {
		t.Errorf("expected full_payments_start at month 12, got %+v", fp)
	}
	// Principal thresholds cannot fire during construction.
	if m := byType[model.MilestonePrincipal25Percent]; m.Month < 12 {
		t.Errorf("principal milestone fired before repayment phase: month %d", m.Month)
	}
}

func TestMilestones_StageMismatchSuppressesConstruction(t *testing.T) {
	req := selfBuildRequest(model.ConstructionInterestOnly)
	req.SelfBuild.DrawdownStages[0].Amount = 1 // breaks the sum
	out := aggregateOutcome(t, req)

	byType := milestonesByType(out.Milestones)
	if _, ok := byType[model.MilestoneConstructionComplete]; ok {
		t.Error("construction_complete must be suppressed on stage-sum mismatch")
	}
	if _, ok := byType[model.MilestoneFullPaymentsStart]; ok {
		t.Error("full_payments_start must be suppressed on stage-sum mismatch")
	}
}

func TestAggregate_DegenerateInput(t *testing.T) {
	out := aggregateOutcome(t, basicRequest(0, 360))
	if len(out.Schedule.Months) != 0 || len(out.Yearly) != 0 || len(out.Milestones) != 0 {
		t.Error("expected empty outcome for degenerate input")
	}
}
