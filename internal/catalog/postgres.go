package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/avoca/mortgage-engine/internal/model"
)

// PostgresStore implements Store using PostgreSQL as the source of truth.
// Rates and percentages are stored as NUMERIC and scanned through TEXT for
// exact decimal precision.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed catalog store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) GetLender(ctx context.Context, id string) (*model.Lender, error) {
	var l model.Lender
	var minLTV, maxLTV string

	err := s.pool.QueryRow(ctx,
		`SELECT id, name, min_ltv::TEXT, max_ltv::TEXT,
		        ber_eligible, buyer_types, allows_self_build,
		        COALESCE(overpayment_policy_id, '')
		 FROM lenders WHERE id = $1`, id).
		Scan(&l.ID, &l.Name, &minLTV, &maxLTV,
			&l.BEREligible, &buyerTypesScanner{&l.BuyerTypes}, &l.AllowsSelfBuild,
			&l.OverpaymentPolicyID)
	if err != nil {
		return nil, fmt.Errorf("get lender %s: %w", id, err)
	}

	l.MinLTV, _ = decimal.NewFromString(minLTV)
	l.MaxLTV, _ = decimal.NewFromString(maxLTV)
	return &l, nil
}

func (s *PostgresStore) ListLenders(ctx context.Context) ([]model.Lender, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, min_ltv::TEXT, max_ltv::TEXT,
		        ber_eligible, buyer_types, allows_self_build,
		        COALESCE(overpayment_policy_id, '')
		 FROM lenders ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lenders []model.Lender
	for rows.Next() {
		var l model.Lender
		var minLTV, maxLTV string
		if err := rows.Scan(&l.ID, &l.Name, &minLTV, &maxLTV,
			&l.BEREligible, &buyerTypesScanner{&l.BuyerTypes}, &l.AllowsSelfBuild,
			&l.OverpaymentPolicyID); err != nil {
			return nil, err
		}
		l.MinLTV, _ = decimal.NewFromString(minLTV)
		l.MaxLTV, _ = decimal.NewFromString(maxLTV)
		lenders = append(lenders, l)
	}
	return lenders, rows.Err()
}

func (s *PostgresStore) GetRate(ctx context.Context, id string) (*model.RateDefinition, error) {
	var r model.RateDefinition
	var rate string

	err := s.pool.QueryRow(ctx,
		`SELECT id, lender_id, name, rate::TEXT, rate_type, fixed_term_years
		 FROM rate_definitions WHERE id = $1`, id).
		Scan(&r.ID, &r.LenderID, &r.Name, &rate, &r.Type, &r.FixedTermYears)
	if err != nil {
		return nil, fmt.Errorf("get rate %s: %w", id, err)
	}

	r.Rate, _ = decimal.NewFromString(rate)
	return &r, nil
}

func (s *PostgresStore) ListRatesByLender(ctx context.Context, lenderID string) ([]model.RateDefinition, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, lender_id, name, rate::TEXT, rate_type, fixed_term_years
		 FROM rate_definitions WHERE lender_id = $1 ORDER BY rate`, lenderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRates(rows)
}

func (s *PostgresStore) LoadCatalog(ctx context.Context) (model.Catalog, error) {
	cat := model.Catalog{
		Rates:    make(map[string]model.RateDefinition),
		Lenders:  make(map[string]model.Lender),
		Policies: make(map[string]model.OverpaymentPolicy),
	}

	lenders, err := s.ListLenders(ctx)
	if err != nil {
		return cat, err
	}
	for _, l := range lenders {
		cat.Lenders[l.ID] = l
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, lender_id, name, rate::TEXT, rate_type, fixed_term_years
		 FROM rate_definitions`)
	if err != nil {
		return cat, err
	}
	defer rows.Close()
	rates, err := scanRates(rows)
	if err != nil {
		return cat, err
	}
	for _, r := range rates {
		cat.Rates[r.ID] = r
	}

	prows, err := s.pool.Query(ctx,
		`SELECT id, allowance_type, allowance_value::TEXT, allowance_basis, basis_period
		 FROM overpayment_policies`)
	if err != nil {
		return cat, err
	}
	defer prows.Close()
	for prows.Next() {
		var p model.OverpaymentPolicy
		var value string
		if err := prows.Scan(&p.ID, &p.AllowanceType, &value, &p.AllowanceBasis, &p.BasisPeriod); err != nil {
			return cat, err
		}
		p.AllowanceValue, _ = decimal.NewFromString(value)
		cat.Policies[p.ID] = p
	}
	return cat, prows.Err()
}

// pgxRows is the minimal row interface shared by Query results.
type pgxRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanRates(rows pgxRows) ([]model.RateDefinition, error) {
	var rates []model.RateDefinition
	for rows.Next() {
		var r model.RateDefinition
		var rate string
		if err := rows.Scan(&r.ID, &r.LenderID, &r.Name, &rate, &r.Type, &r.FixedTermYears); err != nil {
			return nil, err
		}
		r.Rate, _ = decimal.NewFromString(rate)
		rates = append(rates, r)
	}
	return rates, rows.Err()
}

// buyerTypesScanner adapts a TEXT[] column to []model.BuyerType.
type buyerTypesScanner struct {
	dst *[]model.BuyerType
}

func (b *buyerTypesScanner) Scan(src interface{}) error {
	*b.dst = nil
	switch v := src.(type) {
	case nil:
		return nil
	case []string:
		for _, s := range v {
			*b.dst = append(*b.dst, model.BuyerType(s))
		}
		return nil
	case []interface{}:
		for _, e := range v {
			if s, ok := e.(string); ok {
				*b.dst = append(*b.dst, model.BuyerType(s))
			}
		}
		return nil
	default:
		return fmt.Errorf("catalog: unsupported buyer_types column type %T", src)
	}
}
