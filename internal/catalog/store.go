// Package catalog persists the lookup tables the engine consumes: lenders,
// rate definitions, and overpayment policies. Implementations include
// PostgreSQL (source of truth), Redis (read-through cache), and in-memory
// (for testing and standalone runs).
//
// The engine itself never touches a Store — the service layer loads a full
// model.Catalog per request and hands it over as plain maps.
package catalog

import (
	"context"
	"errors"

	"github.com/avoca/mortgage-engine/internal/model"
)

// ErrNotFound is returned when a lender or rate lookup misses.
var ErrNotFound = errors.New("catalog: not found")

// Store is the catalog persistence interface.
type Store interface {
	// GetLender retrieves one lender by ID.
	GetLender(ctx context.Context, id string) (*model.Lender, error)

	// ListLenders returns all lenders.
	ListLenders(ctx context.Context) ([]model.Lender, error)

	// GetRate retrieves one rate definition by ID.
	GetRate(ctx context.Context, id string) (*model.RateDefinition, error)

	// ListRatesByLender returns a lender's rate definitions.
	ListRatesByLender(ctx context.Context, lenderID string) ([]model.RateDefinition, error)

	// LoadCatalog materializes the full lookup-table bundle the engine
	// consumes.
	LoadCatalog(ctx context.Context) (model.Catalog, error)
}
