package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/scriptplan/internal/asset"
	"github.com/roach88/scriptplan/internal/depgraph"
	"github.com/roach88/scriptplan/internal/rules"
)

// MinEstimateMinutes is the floor for any non-terminal estimate.
const MinEstimateMinutes = 5

const (
	lowBand  = 0.7
	highBand = 1.3
)

var baseTime = map[asset.Category]int{
	asset.CategoryPixel:     30,
	asset.CategoryAffiliate: 60,
	asset.CategorySurvey:    45,
	asset.CategorySupport:   20,
	asset.CategoryAnalytics: 60,
	asset.CategoryOther:     40,
}

// Pixel migrations are the most standardized.
var categoryMultiplier = map[asset.Category]float64{
	asset.CategoryPixel: 0.8,
}

var riskMultiplier = map[asset.RiskLevel]float64{
	asset.RiskHigh:   1.5,
	asset.RiskMedium: 1.2,
}

// Nominal minutes per migration path. none is removal only.
var migrationBaseTime = map[asset.MigrationPath]int{
	asset.MigrationWebPixel:    30,
	asset.MigrationUIExtension: 60,
	asset.MigrationServerSide:  90,
	asset.MigrationNone:        0,
}

const (
	complexPlatformMultiplier = 1.3
	multiScriptMultiplier     = 1.2
	customConfigMultiplier    = 1.25
	manyEventsMultiplier      = 1.3
	manyEventsThreshold       = 10
	hasDependencyMultiplier   = 1.1
)

// TimeEstimate is the bounded duration estimate of one asset.
type TimeEstimate struct {
	AssetID          string                    `json:"asset_id"`
	MinMinutes       int                       `json:"min_minutes"`
	MaxMinutes       int                       `json:"max_minutes"`
	EstimatedMinutes int                       `json:"estimated_minutes"`
	Factors          asset.TimeEstimateFactors `json:"factors"`
	Reason           string                    `json:"reason"`
}

// TimeEstimator estimates assets against one asset set.
type TimeEstimator struct {
	graph *depgraph.Graph
	rules rules.Rules
}

// NewTimeEstimator returns an estimator over all tenant assets. A nil g is
// built from all.
func NewTimeEstimator(all []asset.Asset, g *depgraph.Graph, r rules.Rules) *TimeEstimator {
	if g == nil {
		g = depgraph.BuildGraph(all, r)
	}
	return &TimeEstimator{graph: g, rules: r}
}

// Estimate estimates a single asset against all.
func Estimate(a asset.Asset, all []asset.Asset, r rules.Rules) TimeEstimate {
	return NewTimeEstimator(all, nil, r).Estimate(a)
}

// Estimate computes the time estimate of a.
func (e *TimeEstimator) Estimate(a asset.Asset) TimeEstimate {
	if a.IsTerminal() {
		return TimeEstimate{AssetID: a.ID, Reason: "migration finished"}
	}

	base := baseTime[a.Category]
	if base == 0 {
		base = baseTime[asset.CategoryOther]
	}
	catMul, ok := categoryMultiplier[a.Category]
	if !ok {
		catMul = 1.0
	}
	cmplx, notes := e.complexity(a)
	migMul := float64(migrationBaseTime[a.SuggestedMigration]) / float64(base)

	estimated := max(MinEstimateMinutes, round(float64(base)*catMul*cmplx*migMul))
	lo := max(MinEstimateMinutes, round(float64(estimated)*lowBand))
	hi := round(float64(estimated) * highBand)

	return TimeEstimate{
		AssetID:          a.ID,
		MinMinutes:       lo,
		MaxMinutes:       hi,
		EstimatedMinutes: estimated,
		Factors: asset.TimeEstimateFactors{
			BaseMinutes:             base,
			CategoryMultiplier:      catMul,
			ComplexityMultiplier:    roundTo(cmplx, 3),
			MigrationTypeMultiplier: roundTo(migMul, 3),
			MinMinutes:              lo,
			MaxMinutes:              hi,
		},
		Reason: estimateReason(a, notes),
	}
}

func (e *TimeEstimator) complexity(a asset.Asset) (float64, []string) {
	m := 1.0
	var notes []string
	if v, ok := riskMultiplier[a.RiskLevel]; ok {
		m *= v
		notes = append(notes, string(a.RiskLevel)+" risk")
	}
	if e.rules.IsComplex(a.Platform) {
		m *= complexPlatformMultiplier
		notes = append(notes, "complex platform")
	}
	if a.Details.ScriptCount > 1 {
		m *= multiScriptMultiplier
		notes = append(notes, fmt.Sprintf("%d script instances", a.Details.ScriptCount))
	}
	if a.Details.HasCustomConfig {
		m *= customConfigMultiplier
		notes = append(notes, "custom configuration")
	}
	if a.Details.EventMappingCount > manyEventsThreshold {
		m *= manyEventsMultiplier
		notes = append(notes, fmt.Sprintf("%d event mappings", a.Details.EventMappingCount))
	}
	if n, ok := e.graph.Node(a.ID); ok && len(n.Dependencies) > 0 {
		m *= hasDependencyMultiplier
		notes = append(notes, "has dependencies")
	}
	return m, notes
}

func estimateReason(a asset.Asset, notes []string) string {
	head := fmt.Sprintf("%s via %s", a.Category, a.SuggestedMigration)
	if a.SuggestedMigration == asset.MigrationNone {
		head = fmt.Sprintf("%s removal only", a.Category)
	}
	if len(notes) == 0 {
		return head
	}
	return head + " (" + strings.Join(notes, ", ") + ")"
}

func round(v float64) int { return int(math.Round(v)) }

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
