package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/avoca/mortgage-engine/internal/model"
)

func TestMemoryStore_GetLender(t *testing.T) {
	s := NewMemoryStore()
	s.PutLender(model.Lender{ID: "acme", Name: "Acme Bank", MaxLTV: decimal.NewFromInt(90)})

	l, err := s.GetLender(context.Background(), "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Name != "Acme Bank" {
		t.Errorf("expected Acme Bank, got %s", l.Name)
	}

	if _, err := s.GetLender(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_ListRatesByLender(t *testing.T) {
	s := NewMemoryStore()
	s.PutRate(model.RateDefinition{ID: "r1", LenderID: "acme"})
	s.PutRate(model.RateDefinition{ID: "r2", LenderID: "acme"})
	s.PutRate(model.RateDefinition{ID: "r3", LenderID: "other"})

	rates, err := s.ListRatesByLender(context.Background(), "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rates) != 2 {
		t.Errorf("expected 2 rates for acme, got %d", len(rates))
	}
}

func TestMemoryStore_LoadCatalog(t *testing.T) {
	s := NewMemoryStore()
	s.PutLender(model.Lender{ID: "acme", OverpaymentPolicyID: "pol"})
	s.PutRate(model.RateDefinition{ID: "r1", LenderID: "acme"})
	s.PutPolicy(model.OverpaymentPolicy{ID: "pol"})

	cat, err := s.LoadCatalog(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := cat.Lenders["acme"]; !ok {
		t.Error("expected lender in catalog")
	}
	if _, ok := cat.Rates["r1"]; !ok {
		t.Error("expected rate in catalog")
	}
	if _, ok := cat.PolicyForLender("acme"); !ok {
		t.Error("expected policy lookup through lender to succeed")
	}
}

func TestSeedDefaults_Consistent(t *testing.T) {
	s := NewMemoryStore()
	SeedDefaults(s)

	cat, err := s.LoadCatalog(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cat.Lenders) == 0 || len(cat.Rates) == 0 {
		t.Fatal("expected seeded lenders and rates")
	}

	// Every seeded rate references a seeded lender; every lender policy exists.
	for id, r := range cat.Rates {
		if _, ok := cat.Lenders[r.LenderID]; !ok {
			t.Errorf("rate %s references unknown lender %s", id, r.LenderID)
		}
	}
	for id, l := range cat.Lenders {
		if l.OverpaymentPolicyID == "" {
			continue
		}
		if _, ok := cat.Policies[l.OverpaymentPolicyID]; !ok {
			t.Errorf("lender %s references unknown policy %s", id, l.OverpaymentPolicyID)
		}
	}
}
