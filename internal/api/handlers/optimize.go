// Package handlers implements the Optimize HTTP API (spec.md §6.4): gin
// handlers that validate the request, build the matching in-process
// pipeline call, and map generator/solver outcomes onto the documented
// status codes.
package handlers

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/contest"
	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/export"
	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/jobstream"
	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/model"
	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/payoutcurve"
	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/portfolio"
	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/scenario"
)

// ConstraintStore is the read-only slate-lookup collaborator (spec.md
// §6.2).
type ConstraintStore interface {
	Lookup(ctx context.Context, slateID string) (model.ConstraintSpec, []model.DriverRecord, error)
}

// ExposureConfig carries the request's exposure fractions.
type ExposureConfig struct {
	MaxDriver float64 `json:"max_driver"`
	MaxTeam   float64 `json:"max_team"`
}

// LeverageRequest mirrors spec.md §6.4's leverage sub-object.
type LeverageRequest struct {
	Enabled                bool    `json:"enabled"`
	Lambda                 float64 `json:"lambda"`
	MaxTotalOwnership       float64 `json:"max_total_ownership"`
	MinLowOwnershipDrivers int     `json:"min_low_ownership_drivers"`
	LowOwnershipThreshold  float64 `json:"low_ownership_threshold"`
}

// ContestSimRequest mirrors spec.md §6.4's contest_sim sub-object.
type ContestSimRequest struct {
	Enabled      bool    `json:"enabled"`
	FieldSize    int     `json:"field_size"`
	NContestSims int     `json:"n_contest_sims"`
	Buyin        float64 `json:"buyin"`
}

// RegimeRequest mirrors spec.md §4.5.5's regime-aware allocation knobs.
// RegimeWeights is keyed by the RegimeTag string values ("dominator",
// "chaos", "fuel_mileage", "mixed"). An empty map splits the lineup budget
// equally across the regimes observed in the scenario matrix; with a
// non-empty map, an observed regime missing from it gets no lineups, and a
// tag with no observed scenarios still takes its share of the budget but
// yields no lineups (the portfolio is then marked partial).
type RegimeRequest struct {
	Enabled       bool               `json:"enabled"`
	RegimeWeights map[string]float64 `json:"regime_weights"`
}

// OptimizeRequest is the Optimize API request body (spec.md §6.4).
type OptimizeRequest struct {
	SlateID         string            `json:"slate_id" binding:"required"`
	NScenarios      int               `json:"n_scenarios"`
	NLineups        int               `json:"n_lineups"`
	ObjectiveType   string            `json:"objective_type"`
	Alphas          []float64         `json:"alphas"`
	Weights         []float64         `json:"weights"`
	Exposure        ExposureConfig    `json:"exposure"`
	DiversityWeight float64           `json:"diversity_weight"`
	OwnershipMode   string            `json:"ownership_mode"`
	Leverage        LeverageRequest   `json:"leverage"`
	ContestSim      ContestSimRequest `json:"contest_sim"`
	Regime          RegimeRequest     `json:"regime"`
	JobID           string            `json:"job_id"`
}

// LineupResponse is one lineup in the Optimize API response.
type LineupResponse struct {
	DriverIDs   []int                   `json:"driver_ids"`
	TotalSalary int                     `json:"total_salary"`
	TailMetrics *model.TailMetrics      `json:"tail_metrics,omitempty"`
	Leverage    *model.LeverageMetrics  `json:"leverage,omitempty"`
	Contest     *model.ContestMetrics   `json:"contest,omitempty"`
}

// OptimizeResponse is the Optimize API response body (spec.md §6.4).
type OptimizeResponse struct {
	JobID          string                    `json:"job_id"`
	Status         model.PortfolioStatus     `json:"status"`
	Lineups        []LineupResponse          `json:"lineups"`
	Correlation    *model.CorrelationSummary `json:"correlation,omitempty"`
	TailValidation *model.TailValidation     `json:"tail_validation,omitempty"`
}

// ErrorResponse is the 4xx/5xx error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ResponseCache is the subset of pkg/cache.RedisCache the handler needs;
// declared here so the handler can be tested against a fake.
type ResponseCache interface {
	SetJSON(ctx context.Context, namespace, key string, value interface{}, expiration time.Duration) error
	GetJSON(ctx context.Context, namespace, key string, dest interface{}) error
}

const optimizeCacheNamespace = "optimize"
const optimizeCacheTTL = 10 * time.Minute

// OptimizeHandler wires the Optimize API to the in-process pipeline.
type OptimizeHandler struct {
	store  ConstraintStore
	wsHub  *jobstream.Hub
	cache  ResponseCache
	logger *logrus.Logger
}

// NewOptimizeHandler constructs an OptimizeHandler. cache may be nil, which
// disables response caching.
func NewOptimizeHandler(store ConstraintStore, wsHub *jobstream.Hub, cache ResponseCache, logger *logrus.Logger) *OptimizeHandler {
	return &OptimizeHandler{store: store, wsHub: wsHub, cache: cache, logger: logger}
}

// Optimize handles POST /api/v1/optimize (spec.md §6.4).
func (h *OptimizeHandler) Optimize(c *gin.Context) {
	var req OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
		return
	}
	if err := validateOptimizeRequest(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "VALIDATION_FAILED"})
		return
	}
	if req.JobID == "" {
		req.JobID = uuid.NewString()
	}

	ctx := c.Request.Context()

	cacheKey := requestCacheKey(req)
	if h.cache != nil {
		var cached OptimizeResponse
		if err := h.cache.GetJSON(ctx, optimizeCacheNamespace, cacheKey, &cached); err == nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	spec, drivers, err := h.store.Lookup(ctx, req.SlateID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "SLATE_NOT_FOUND"})
		return
	}

	src := &scenario.MockSource{}
	for _, d := range drivers {
		src.DisplayIDs = append(src.DisplayIDs, d.DisplayID)
		src.Means = append(src.Means, d.ProjectedPoints)
		src.Skew = append(src.Skew, 2.0)
	}
	matrix, _, err := src.Sample(ctx, req.NScenarios, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "SCENARIO_SAMPLE_FAILED"})
		return
	}

	cfg := portfolio.DefaultConfig()
	cfg.SlateID = req.SlateID
	cfg.NScenarios = req.NScenarios
	cfg.NLineups = req.NLineups
	if req.ObjectiveType != "" {
		cfg.ObjectiveType = req.ObjectiveType
	}
	if req.Exposure.MaxDriver > 0 {
		cfg.MaxDriverExposure = req.Exposure.MaxDriver
	}
	if req.Exposure.MaxTeam > 0 {
		cfg.MaxTeamExposure = req.Exposure.MaxTeam
	}
	if req.DiversityWeight > 0 {
		cfg.DiversityWeight = req.DiversityWeight
	}
	cfg.Alphas = req.Alphas
	cfg.Weights = req.Weights
	if req.Leverage.Enabled {
		cfg.LeverageEnabled = true
		cfg.Leverage = contest.LeverageConfig{
			Lambda:                 req.Leverage.Lambda,
			MaxTotalOwnership:      req.Leverage.MaxTotalOwnership,
			MinLowOwnershipDrivers: req.Leverage.MinLowOwnershipDrivers,
			LowOwnershipThreshold:  req.Leverage.LowOwnershipThreshold,
		}
		if cfg.Leverage.Lambda <= 0 {
			cfg.Leverage.Lambda = contest.DefaultLeverageConfig().Lambda
		}
		if cfg.Leverage.MaxTotalOwnership <= 0 {
			cfg.Leverage.MaxTotalOwnership = contest.DefaultLeverageConfig().MaxTotalOwnership
		}
		if cfg.Leverage.LowOwnershipThreshold <= 0 {
			cfg.Leverage.LowOwnershipThreshold = contest.DefaultLeverageConfig().LowOwnershipThreshold
		}
	}

	var result *model.Portfolio
	if req.Regime.Enabled {
		var weights map[model.RegimeTag]float64
		if len(req.Regime.RegimeWeights) > 0 {
			weights = make(map[model.RegimeTag]float64, len(req.Regime.RegimeWeights))
			for tag, w := range req.Regime.RegimeWeights {
				weights[model.RegimeTag(tag)] = w
			}
		}
		result, err = portfolio.GenerateByRegime(ctx, matrix, drivers, spec, cfg, nil, weights)
	} else {
		result, err = portfolio.Generate(ctx, matrix, drivers, spec, cfg)
	}
	if err != nil {
		h.respondGenerateError(c, err)
		return
	}

	if h.wsHub != nil && req.JobID != "" {
		h.wsHub.Publish(req.JobID, model.JobComplete, 1.0, "")
	}

	var tailValidation *model.TailValidation
	if tv, err := portfolio.CompareToMeanBaseline(ctx, matrix, drivers, spec, cfg, result); err == nil {
		tailValidation = tv
	} else {
		h.logger.WithField("error", err).Warn("optimize: tail-validation baseline failed, omitting block")
	}

	var contestMetricsByLineup map[int]model.ContestMetrics
	if req.ContestSim.Enabled {
		contestMetricsByLineup = h.runContestSim(ctx, req, matrix, drivers, result)
		if len(contestMetricsByLineup) > 0 {
			summary := &model.ContestSummary{PerLineup: make([]model.ContestMetrics, len(result.Lineups))}
			for i, cm := range contestMetricsByLineup {
				summary.PerLineup[i] = cm
			}
			result.Contest = summary
		}
	}

	resp := OptimizeResponse{
		JobID:          req.JobID,
		Status:         result.Status,
		Correlation:    result.Correlation,
		TailValidation: tailValidation,
	}
	for i, l := range result.Lineups {
		lr := LineupResponse{
			DriverIDs:   l.DriverIDs,
			TotalSalary: l.TotalSalary,
			TailMetrics: l.TailMetrics,
			Leverage:    l.Leverage,
		}
		if cm, ok := contestMetricsByLineup[i]; ok {
			cmCopy := cm
			lr.Contest = &cmCopy
		}
		resp.Lineups = append(resp.Lineups, lr)
	}

	if h.cache != nil {
		if err := h.cache.SetJSON(ctx, optimizeCacheNamespace, cacheKey, resp, optimizeCacheTTL); err != nil {
			h.logger.WithField("error", err).Warn("optimize: failed to cache response")
		}
	}

	c.JSON(http.StatusOK, resp)
}

// requestCacheKey derives a stable cache key from the fields of req that
// affect the result; job_id is excluded since it only controls progress
// streaming, not the computed portfolio.
func requestCacheKey(req OptimizeRequest) string {
	raw := fmt.Sprintf("%s|%d|%d|%s|%v|%v|%v|%f|%s|%v|%v|%v",
		req.SlateID, req.NScenarios, req.NLineups, req.ObjectiveType,
		req.Alphas, req.Weights, req.Exposure, req.DiversityWeight,
		req.OwnershipMode, req.Leverage, req.ContestSim, req.Regime)
	sum := md5.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func (h *OptimizeHandler) runContestSim(ctx context.Context, req OptimizeRequest, matrix *scenario.Matrix, drivers []model.DriverRecord, result *model.Portfolio) map[int]model.ContestMetrics {
	ownership := make([]float64, len(drivers))
	salaries := make([]int, len(drivers))
	for i, d := range drivers {
		salaries[i] = d.Salary
		if d.ProjectedOwnership != nil {
			ownership[i] = *d.ProjectedOwnership
		}
	}

	curve := payoutcurve.NewCurve(payoutcurve.PowerLaw)
	if err := curve.Fit([]float64{1, 10, 100, 1000}, []float64{1000, 100, 10, 0}); err != nil {
		h.logger.WithField("error", err).Warn("optimize: payout curve fit failed, omitting contest block")
		return nil
	}

	simCfg := contest.DefaultSimConfig()
	simCfg.FieldSize = req.ContestSim.FieldSize
	simCfg.NContestSims = req.ContestSim.NContestSims

	out := make(map[int]model.ContestMetrics, len(result.Lineups))
	for i, l := range result.Lineups {
		results, err := contest.Simulate(l.DriverIDs, matrix, ownership, salaries, curve, simCfg)
		if err != nil {
			continue
		}
		out[i] = contest.ComputeContestMetrics(results, req.ContestSim.Buyin, contest.DefaultMetricsConfig())
	}
	return out
}

func (h *OptimizeHandler) respondGenerateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, portfolio.ErrNoFeasibleLineup):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Code: "NO_FEASIBLE_LINEUP"})
	case errors.Is(err, portfolio.ErrSolverTimeout):
		c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: err.Error(), Code: "SOLVER_TIMEOUT"})
	case errors.Is(err, portfolio.ErrUnbounded):
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "UNBOUNDED"})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "INTERNAL"})
	}
}

func validateOptimizeRequest(req *OptimizeRequest) error {
	if req.NScenarios < 1000 {
		return errors.New("n_scenarios must be >= 1000")
	}
	if req.NLineups < 1 || req.NLineups > 150 {
		return errors.New("n_lineups must be between 1 and 150")
	}
	switch req.ObjectiveType {
	case "", "cvar", "mean":
	default:
		return errors.New("objective_type must be one of cvar, mean")
	}
	if len(req.Weights) > 0 && len(req.Weights) != len(req.Alphas) {
		return errors.New("weights must match alphas length")
	}
	return nil
}

// ExportCSV writes lineups as a DraftKings upload CSV response. It takes the
// lineups and display-name map as arguments and is not registered on any
// route.
func ExportCSV(c *gin.Context, lineups []model.Lineup, displayNames map[int]string) {
	csv := export.DraftKingsCSV(lineups, displayNames)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(csv))
}
