// Package scoring ranks and sizes migration work: a bounded 0-100 priority
// per asset and a min/expected/max time estimate, plus plan totals.
//
// Every weight lives in a table in this package. Terminal assets always
// score 0 and estimate 0.
package scoring

import (
	"fmt"
	"strings"

	"github.com/roach88/scriptplan/internal/asset"
	"github.com/roach88/scriptplan/internal/depgraph"
	"github.com/roach88/scriptplan/internal/rules"
)

const (
	maxPriority   = 100
	maxComplexity = 20
	maxDependency = 15
)

var riskWeights = map[asset.RiskLevel]int{
	asset.RiskHigh:   30,
	asset.RiskMedium: 20,
	asset.RiskLow:    10,
}

var categoryWeights = map[asset.Category]int{
	asset.CategoryPixel:     25,
	asset.CategoryAffiliate: 20,
	asset.CategorySurvey:    15,
	asset.CategorySupport:   15,
	asset.CategoryAnalytics: 10,
	asset.CategoryOther:     10,
}

var statusWeights = map[asset.Status]int{
	asset.StatusPending:    10,
	asset.StatusInProgress: 5,
}

var baseComplexity = map[asset.Category]int{
	asset.CategoryPixel:     8,
	asset.CategoryAffiliate: 12,
	asset.CategorySurvey:    10,
	asset.CategorySupport:   6,
	asset.CategoryAnalytics: 10,
	asset.CategoryOther:     10,
}

var migrationComplexity = map[asset.MigrationPath]int{
	asset.MigrationWebPixel:    -3,
	asset.MigrationUIExtension: 3,
	asset.MigrationServerSide:  5,
}

const complexPlatformComplexity = 4

// Dependency factor components.
const (
	dependencyBase        = 5
	dependentBonus        = 2  // per dependent
	dependentBonusCap     = 10 // total
	resolvedBonus         = 5  // nothing left blocking
	partlyResolvedPenalty = -2
	unresolvedPenalty     = -5
)

// Thresholds for the human-readable reason tags.
const (
	notableRisk         = 30
	notableCategory     = 20
	notableEase         = 12
	notableBlockedFloor = 2
)

// PriorityScore is the composite priority of one asset.
type PriorityScore struct {
	AssetID  string                `json:"asset_id"`
	Priority int                   `json:"priority"`
	Factors  asset.PriorityFactors `json:"factors"`
	Reason   string                `json:"reason"`
}

// PriorityScorer computes priorities against one asset set.
type PriorityScorer struct {
	idx   *asset.Index
	graph *depgraph.Graph
	rules rules.Rules
}

// NewPriorityScorer returns a scorer over all tenant assets, terminal
// included so dependency resolution can be checked. A nil g is built from
// all.
func NewPriorityScorer(all []asset.Asset, g *depgraph.Graph, r rules.Rules) *PriorityScorer {
	if g == nil {
		g = depgraph.BuildGraph(all, r)
	}
	return &PriorityScorer{idx: asset.NewIndex(all), graph: g, rules: r}
}

// Priority scores a single asset against all.
func Priority(a asset.Asset, all []asset.Asset, r rules.Rules) PriorityScore {
	return NewPriorityScorer(all, nil, r).Score(a)
}

// Score computes the priority of a.
func (s *PriorityScorer) Score(a asset.Asset) PriorityScore {
	if a.IsTerminal() {
		return PriorityScore{AssetID: a.ID, Priority: 0, Reason: "migration finished"}
	}

	f := asset.PriorityFactors{
		RiskLevel:       riskWeights[a.RiskLevel],
		Category:        categoryWeights[a.Category],
		MigrationStatus: statusWeights[a.Status],
		Complexity:      s.complexity(a),
	}
	var dependents int
	f.Dependency, dependents = s.dependency(a)

	total := f.RiskLevel + f.Category + f.MigrationStatus + (maxComplexity - f.Complexity) + f.Dependency
	return PriorityScore{
		AssetID:  a.ID,
		Priority: clamp(total, 0, maxPriority),
		Factors:  f,
		Reason:   reason(a, f, dependents),
	}
}

func (s *PriorityScorer) complexity(a asset.Asset) int {
	if a.SuggestedMigration == asset.MigrationNone {
		return 0
	}
	c := baseComplexity[a.Category] + migrationComplexity[a.SuggestedMigration]
	if s.rules.IsComplex(a.Platform) {
		c += complexPlatformComplexity
	}
	return clamp(c, 0, maxComplexity)
}

// dependency returns the dependency factor and the number of dependents.
func (s *PriorityScorer) dependency(a asset.Asset) (int, int) {
	dependents := s.graph.DependentCount(a.ID)
	score := dependencyBase + min(dependents*dependentBonus, dependentBonusCap)

	deps := s.ownDependencies(a)
	resolved := 0
	for _, id := range deps {
		if dep, ok := s.idx.Get(id); !ok || dep.IsTerminal() {
			resolved++
		}
	}

	switch {
	case resolved == len(deps):
		score += resolvedBonus
	case resolved == 0:
		score += unresolvedPenalty
	default:
		score += partlyResolvedPenalty
	}

	return clamp(score, 0, maxDependency), dependents
}

// ownDependencies unions the stored list with the graph's resolved list.
// Stored links may still name retired assets; those count as resolved.
func (s *PriorityScorer) ownDependencies(a asset.Asset) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(ids []string) {
		for _, id := range ids {
			if id != a.ID && !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	add(a.Dependencies)
	if n, ok := s.graph.Node(a.ID); ok {
		add(n.Dependencies)
	}
	return out
}

func reason(a asset.Asset, f asset.PriorityFactors, dependents int) string {
	var tags []string
	if f.RiskLevel >= notableRisk {
		tags = append(tags, "high-risk asset")
	}
	if f.Category >= notableCategory {
		tags = append(tags, "business-critical "+string(a.Category))
	}
	if maxComplexity-f.Complexity >= notableEase {
		tags = append(tags, "low migration complexity")
	}
	if dependents > 0 {
		tags = append(tags, fmt.Sprintf("unblocks %d other asset(s)", dependents))
	}
	if f.Dependency <= notableBlockedFloor {
		tags = append(tags, "blocked by unresolved dependencies")
	}
	if len(tags) == 0 {
		return "standard priority"
	}
	return strings.Join(tags, "; ")
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
