package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/avoca/mortgage-engine/internal/model"
)

// SeedDefaults populates a memory store with a small representative lender
// catalog so the service is usable without a database.
func SeedDefaults(s *MemoryStore) {
	s.PutPolicy(model.OverpaymentPolicy{
		ID:             "policy-10pct-balance",
		AllowanceType:  model.AllowancePercentage,
		AllowanceValue: decimal.NewFromInt(10),
		AllowanceBasis: model.BasisBalance,
		BasisPeriod:    model.PeriodAnnual,
	})
	s.PutPolicy(model.OverpaymentPolicy{
		ID:             "policy-10pct-original",
		AllowanceType:  model.AllowancePercentage,
		AllowanceValue: decimal.NewFromInt(10),
		AllowanceBasis: model.BasisOriginal,
		BasisPeriod:    model.PeriodPerFixedPeriod,
	})

	s.PutLender(model.Lender{
		ID:                  "coastal",
		Name:                "Coastal Mutual",
		MinLTV:              decimal.Zero,
		MaxLTV:              decimal.NewFromInt(90),
		AllowsSelfBuild:     true,
		OverpaymentPolicyID: "policy-10pct-balance",
	})
	s.PutLender(model.Lender{
		ID:                  "harbour",
		Name:                "Harbour Bank",
		MinLTV:              decimal.Zero,
		MaxLTV:              decimal.NewFromInt(80),
		BEREligible:         []string{"A1", "A2", "A3", "B1", "B2", "B3"},
		AllowsSelfBuild:     false,
		OverpaymentPolicyID: "policy-10pct-original",
	})

	s.PutRate(model.RateDefinition{
		ID:       "coastal-var",
		LenderID: "coastal",
		Name:     "Variable",
		Rate:     decimal.NewFromFloat(4.15),
		Type:     model.RateVariable,
	})
	s.PutRate(model.RateDefinition{
		ID:             "coastal-fixed-3",
		LenderID:       "coastal",
		Name:           "3 Year Fixed",
		Rate:           decimal.NewFromFloat(3.45),
		Type:           model.RateFixed,
		FixedTermYears: 3,
	})
	s.PutRate(model.RateDefinition{
		ID:             "coastal-fixed-5",
		LenderID:       "coastal",
		Name:           "5 Year Fixed",
		Rate:           decimal.NewFromFloat(3.65),
		Type:           model.RateFixed,
		FixedTermYears: 5,
	})
	s.PutRate(model.RateDefinition{
		ID:             "harbour-green-4",
		LenderID:       "harbour",
		Name:           "4 Year Green Fixed",
		Rate:           decimal.NewFromFloat(3.25),
		Type:           model.RateFixed,
		FixedTermYears: 4,
	})
	s.PutRate(model.RateDefinition{
		ID:       "harbour-var",
		LenderID: "harbour",
		Name:     "Variable",
		Rate:     decimal.NewFromFloat(3.95),
		Type:     model.RateVariable,
	})
}
