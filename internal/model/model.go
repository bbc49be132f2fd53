// Package model holds the domain types shared across the tail-metrics,
// objective, portfolio, and contest-equity components.
package model

import "time"

// DriverRecord describes one NASCAR driver on a slate. driver_id is a dense
// integer index into ScenarioMatrix columns; display_id is the opaque
// identifier used by the ontology store and by export boundaries.
type DriverRecord struct {
	DriverID            int
	DisplayID           string
	Name                string
	Team                string
	Salary              int
	ProjectedPoints      float64
	Skill               float64
	RecentForm          float64
	TrackArchetypeTag   string
	ProjectedOwnership  *float64 // percent, 0-100; nil when unavailable
}

// DriverVeto is a per-driver exclusion rule beyond the blanket locked/excluded
// sets (e.g. "exclude if team X already has 2 drivers locked").
type DriverVeto struct {
	DriverID int
	Reason   string
}

// DriverConstraints bundles the locked/excluded sets and veto rules for one
// request.
type DriverConstraints struct {
	Locked   []int
	Excluded []int
	Vetoes   []DriverVeto
}

// TrackConstraints captures track-level calibration inputs consumed by the
// (out of scope) scenario source and by the regime classifier.
type TrackConstraints struct {
	Difficulty      float64
	AggressionFactor float64
	CautionRate     float64
	PitWindow       int
}

// ConstraintSpec is the immutable per-request bundle of driver and track
// constraints loaded from the ontology store.
type ConstraintSpec struct {
	SpecHash   string
	Drivers    DriverConstraints
	Track      TrackConstraints
	NRoster    int
	SalaryCap  int
	MinStack   int
	MaxStack   int
}

// DefaultConstraintSpec fills in the DraftKings classic-contest defaults
// named in spec.md §4.4.3.
func DefaultConstraintSpec() ConstraintSpec {
	return ConstraintSpec{
		NRoster:   6,
		SalaryCap: 50000,
		MinStack:  2,
		MaxStack:  3,
	}
}

// Lineup is an unordered set of exactly NRoster distinct driver ids plus
// derived attributes computed once at acceptance time.
type Lineup struct {
	DriverIDs       []int
	TotalSalary     int
	TeamCounts      map[string]int
	ScenarioSeries  []float64 // per-scenario total points, len == S
	TailMetrics     *TailMetrics
	Leverage        *LeverageMetrics
}

// TailMetrics is the per-lineup tail-risk summary produced by C1 for each
// requested quantile.
type TailMetrics struct {
	Alphas            []float64
	CVaR              map[float64]float64
	VaR               map[float64]float64
	TopPct            map[float64]float64
	ConditionalUpside map[float64]float64
}

// LeverageMetrics aggregates ownership exposure for a leverage-aware lineup.
type LeverageMetrics struct {
	AvgOwnership   float64
	MaxOwnership   float64
	TotalOwnership float64
	LeverageScore  float64
}

// ExposureBook is the mutable aggregate over the portfolio being built.
type ExposureBook struct {
	DriverCount map[int]int
	TeamCount   map[string]int
	Issued      int
}

// NewExposureBook returns an empty ExposureBook.
func NewExposureBook() *ExposureBook {
	return &ExposureBook{
		DriverCount: make(map[int]int),
		TeamCount:   make(map[string]int),
	}
}

// Accept records an emitted lineup's drivers/teams.
func (b *ExposureBook) Accept(l Lineup, drivers map[int]DriverRecord) {
	b.Issued++
	for _, id := range l.DriverIDs {
		b.DriverCount[id]++
		if d, ok := drivers[id]; ok {
			b.TeamCount[d.Team]++
		}
	}
}

// DriverExposure returns the fractional exposure of driver id after the
// lineups issued so far.
func (b *ExposureBook) DriverExposure(id int) float64 {
	if b.Issued == 0 {
		return 0
	}
	return float64(b.DriverCount[id]) / float64(b.Issued)
}

// TeamExposure returns the fractional exposure of a team after the lineups
// issued so far.
func (b *ExposureBook) TeamExposure(team string) float64 {
	if b.Issued == 0 {
		return 0
	}
	return float64(b.TeamCount[team]) / float64(b.Issued)
}

// PortfolioStatus distinguishes a fully-satisfied request from a truncated
// one; truncation is not an error (spec.md §4.4.1, §7).
type PortfolioStatus string

const (
	StatusComplete PortfolioStatus = "complete"
	StatusPartial  PortfolioStatus = "partial"
)

// CorrelationSummary reports pairwise lineup overlap (Jaccard similarity on
// driver sets) across the portfolio.
type CorrelationSummary struct {
	MeanPairwiseJaccard float64
	MaxPairwiseJaccard  float64
}

// Portfolio is the ordered sequence of lineups produced by one
// generate_portfolio call, plus its terminal bookkeeping.
type Portfolio struct {
	Lineups       []Lineup
	Exposure      *ExposureBook
	Status        PortfolioStatus
	Correlation   *CorrelationSummary
	TailValidation *TailValidation
	Contest       *ContestSummary
}

// TailValidation carries the real mean-baseline comparison named in §6.4;
// never populated from a synthetic multiplier.
type TailValidation struct {
	MeanBaselineCVaR99 float64
	PortfolioCVaR99    float64
	TailImprovement    float64 // (portfolio - baseline) / baseline
	Stable             bool
	CV                 float64
	LineupConsistency  float64
}

// ContestSummary is the optional contest-equity block attached to a
// Portfolio when contest simulation is enabled.
type ContestSummary struct {
	PerLineup []ContestMetrics
}

// ContestMetrics is the aggregate contest-equity result for one lineup.
type ContestMetrics struct {
	ROIPct       float64
	ROICILow     float64
	ROICIHigh    float64
	CashPct      float64
	CashStdErr   float64
	WinPct       float64
	WinStdErr    float64
	EV           float64
	AvgRank      float64
}

// ContestResult is a single simulated contest outcome for a lineup.
type ContestResult struct {
	Rank         int
	Payout       float64
	Score        float64
	WinningScore float64
	FieldSize    int
	Cashed       bool
	Top1Pct      bool
}

// OwnershipVector is a length-D non-negative vector normalized to sum to
// 100 (percent); index i corresponds to DriverRecord.DriverID == i.
type OwnershipVector []float64

// RegimeTag classifies a scenario row's qualitative race-flow shape.
type RegimeTag string

const (
	RegimeDominator   RegimeTag = "dominator"
	RegimeChaos       RegimeTag = "chaos"
	RegimeFuelMileage RegimeTag = "fuel_mileage"
	RegimeMixed       RegimeTag = "mixed"
)

// JobStatus mirrors the collaborator-owned JobState lifecycle (spec.md §3).
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobComplete  JobStatus = "complete"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// JobState is owned by the external job-queue collaborator; the core only
// emits updates against it.
type JobState struct {
	JobID     string
	Status    JobStatus
	Progress  float64
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
	ResultRef string
}
