package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/avoca/mortgage-engine/internal/model"
)

// MemoryStore implements Store with in-memory maps. Used for testing and
// standalone development runs. Not suitable for production (no persistence).
type MemoryStore struct {
	mu       sync.RWMutex
	lenders  map[string]model.Lender
	rates    map[string]model.RateDefinition
	policies map[string]model.OverpaymentPolicy
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		lenders:  make(map[string]model.Lender),
		rates:    make(map[string]model.RateDefinition),
		policies: make(map[string]model.OverpaymentPolicy),
	}
}

// PutLender inserts or replaces a lender.
func (s *MemoryStore) PutLender(l model.Lender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lenders[l.ID] = l
}

// PutRate inserts or replaces a rate definition.
func (s *MemoryStore) PutRate(r model.RateDefinition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[r.ID] = r
}

// PutPolicy inserts or replaces an overpayment policy.
func (s *MemoryStore) PutPolicy(p model.OverpaymentPolicy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[p.ID] = p
}

func (s *MemoryStore) GetLender(_ context.Context, id string) (*model.Lender, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.lenders[id]
	if !ok {
		return nil, fmt.Errorf("%w: lender %s", ErrNotFound, id)
	}
	return &l, nil
}

func (s *MemoryStore) ListLenders(_ context.Context) ([]model.Lender, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lenders := make([]model.Lender, 0, len(s.lenders))
	for _, l := range s.lenders {
		lenders = append(lenders, l)
	}
	return lenders, nil
}

func (s *MemoryStore) GetRate(_ context.Context, id string) (*model.RateDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rates[id]
	if !ok {
		return nil, fmt.Errorf("%w: rate %s", ErrNotFound, id)
	}
	return &r, nil
}

func (s *MemoryStore) ListRatesByLender(_ context.Context, lenderID string) ([]model.RateDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rates []model.RateDefinition
	for _, r := range s.rates {
		if r.LenderID == lenderID {
			rates = append(rates, r)
		}
	}
	return rates, nil
}

func (s *MemoryStore) LoadCatalog(_ context.Context) (model.Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cat := model.Catalog{
		Rates:    make(map[string]model.RateDefinition, len(s.rates)),
		Lenders:  make(map[string]model.Lender, len(s.lenders)),
		Policies: make(map[string]model.OverpaymentPolicy, len(s.policies)),
	}
	for id, r := range s.rates {
		cat.Rates[id] = r
	}
	for id, l := range s.lenders {
		cat.Lenders[id] = l
	}
	for id, p := range s.policies {
		cat.Policies[id] = p
	}
	return cat, nil
}
