// Package simulate provides the HTTP surface wrapping the amortization
// engine: simulation, scenario comparison, overpayment planning, catalog
// reads, and live recalculation over WebSocket.
package simulate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/avoca/mortgage-engine/internal/aggregate"
	"github.com/avoca/mortgage-engine/internal/catalog"
	"github.com/avoca/mortgage-engine/internal/engine"
	"github.com/avoca/mortgage-engine/internal/metrics"
	"github.com/avoca/mortgage-engine/internal/overpay"
	"github.com/avoca/mortgage-engine/internal/rateperiod"
)

// Service handles simulation requests. The engine itself is a pure function;
// the service owns the catalog store and an explicit fingerprint-keyed
// result cache (never a cache inside the engine).
type Service struct {
	store catalog.Store
	cache *resultCache
}

// NewService creates a simulation service backed by the given catalog store.
func NewService(store catalog.Store) *Service {
	return &Service{
		store: store,
		cache: newResultCache(256),
	}
}

// run loads the catalog, consults the result cache, and aggregates.
func (s *Service) run(ctx context.Context, req engine.Request) (*aggregate.Outcome, error) {
	fp := Fingerprint(req)
	if out, ok := s.cache.get(fp); ok {
		metrics.ResultCacheHits.WithLabelValues("hit").Inc()
		return out, nil
	}
	metrics.ResultCacheHits.WithLabelValues("miss").Inc()

	cat, err := s.store.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := aggregate.Aggregate(req, cat)
	if err != nil {
		return nil, err
	}
	metrics.SimulationDuration.Observe(time.Since(start).Seconds())
	metrics.ScheduleMonths.Observe(float64(len(out.Schedule.Months)))
	for _, warning := range out.Schedule.Warnings {
		metrics.WarningsTotal.WithLabelValues(string(warning.Type)).Inc()
	}

	s.cache.put(fp, out)
	return out, nil
}

// Simulate handles POST /api/v1/simulate.
func (s *Service) Simulate(w http.ResponseWriter, r *http.Request) {
	var req engine.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.SimulationsTotal.WithLabelValues("invalid").Inc()
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	out, err := s.run(r.Context(), req)
	if err != nil {
		if rateperiod.IsResolutionError(err) {
			metrics.SimulationsTotal.WithLabelValues("unavailable").Inc()
			writeError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		slog.Error("simulation failed", "err", err)
		metrics.SimulationsTotal.WithLabelValues("error").Inc()
		writeError(w, "simulation failed", http.StatusInternalServerError)
		return
	}

	outcome := "ok"
	if len(out.Schedule.Months) == 0 {
		outcome = "empty"
	}
	metrics.SimulationsTotal.WithLabelValues(outcome).Inc()

	slog.Info("simulation complete",
		"months", len(out.Schedule.Months),
		"warnings", len(out.Schedule.Warnings),
		"total_interest", out.Summary.TotalInterest,
	)

	writeJSON(w, http.StatusOK, out)
}

// Scenario is one named entry in a comparison request.
type Scenario struct {
	Name string `json:"name"`
	engine.Request
}

// CompareRequest is the JSON body for POST /api/v1/compare.
type CompareRequest struct {
	Scenarios []Scenario `json:"scenarios"`
}

// CompareResult is one entry of a comparison response. Unavailable
// scenarios (failed rate-period resolution) are flagged rather than failing
// the whole comparison.
type CompareResult struct {
	ScenarioID string             `json:"scenario_id"`
	Name       string             `json:"name"`
	Available  bool               `json:"available"`
	Error      string             `json:"error,omitempty"`
	Outcome    *aggregate.Outcome `json:"outcome,omitempty"`
}

// Compare handles POST /api/v1/compare. Each scenario is an independent
// pure simulation, so they run concurrently with no cross-talk.
func (s *Service) Compare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Scenarios) == 0 {
		writeError(w, "at least one scenario is required", http.StatusBadRequest)
		return
	}

	results := make([]CompareResult, len(req.Scenarios))
	var wg sync.WaitGroup
	for i, sc := range req.Scenarios {
		wg.Add(1)
		go func(i int, sc Scenario) {
			defer wg.Done()
			res := CompareResult{
				ScenarioID: uuid.New().String(),
				Name:       sc.Name,
			}
			out, err := s.run(r.Context(), sc.Request)
			switch {
			case err == nil:
				res.Available = true
				res.Outcome = out
			case rateperiod.IsResolutionError(err):
				res.Error = err.Error()
			default:
				res.Error = "simulation failed"
				slog.Error("comparison scenario failed", "name", sc.Name, "err", err)
			}
			results[i] = res
		}(i, sc)
	}
	wg.Wait()

	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// OverpaymentPlans handles POST /api/v1/overpayment-plans: the maximize
// helper computing, per 12-month window, the largest one-time overpayment
// permitted by the governing allowance policy.
func (s *Service) OverpaymentPlans(w http.ResponseWriter, r *http.Request) {
	var req engine.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	cat, err := s.store.LoadCatalog(r.Context())
	if err != nil {
		writeError(w, "catalog unavailable", http.StatusInternalServerError)
		return
	}

	sched, err := engine.Simulate(req, cat)
	if err != nil {
		if rateperiod.IsResolutionError(err) {
			writeError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		writeError(w, "simulation failed", http.StatusInternalServerError)
		return
	}

	resolved, err := rateperiod.Resolve(req.Input, req.RatePeriods, req.SelfBuild, cat)
	if err != nil {
		writeError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	plans := overpay.YearlyOverpaymentPlans(sched.Months, resolved, cat, req.Input, req.SelfBuild)
	if plans == nil {
		plans = []overpay.YearlyPlan{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"plans": plans})
}

// ListLenders handles GET /api/v1/lenders.
func (s *Service) ListLenders(w http.ResponseWriter, r *http.Request) {
	lenders, err := s.store.ListLenders(r.Context())
	if err != nil {
		writeError(w, "failed to list lenders", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, lenders)
}

// ListLenderRates handles GET /api/v1/lenders/{lenderID}/rates.
func (s *Service) ListLenderRates(w http.ResponseWriter, r *http.Request) {
	lenderID := chi.URLParam(r, "lenderID")

	if _, err := s.store.GetLender(r.Context(), lenderID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, "lender not found", http.StatusNotFound)
			return
		}
		writeError(w, "failed to load lender", http.StatusInternalServerError)
		return
	}

	rates, err := s.store.ListRatesByLender(r.Context(), lenderID)
	if err != nil {
		writeError(w, "failed to list rates", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rates)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}
