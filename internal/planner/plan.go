package planner

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/scriptplan/internal/asset"
	"github.com/roach88/scriptplan/internal/depgraph"
	"github.com/roach88/scriptplan/internal/rules"
	"github.com/roach88/scriptplan/internal/scoring"
)

// Store is the slice of the asset store a planning run needs.
type Store interface {
	ListAssets(ctx context.Context, tenantID string) ([]asset.Asset, error)
	UpdateAnnotations(ctx context.Context, id string, ann asset.Annotations) error
}

// Step is one asset in the suggested migration order.
type Step struct {
	Position     int                   `json:"position"`
	AssetID      string                `json:"asset_id"`
	Name         string                `json:"name,omitempty"`
	Category     asset.Category        `json:"category"`
	Platform     string                `json:"platform,omitempty"`
	Status       asset.Status          `json:"migration_status"`
	Dependencies []string              `json:"dependencies"`
	Dependents   []string              `json:"dependents"`
	Priority     scoring.PriorityScore `json:"priority"`
	Estimate     scoring.TimeEstimate  `json:"estimate"`
}

// Plan is the computed, not yet persisted, result of a planning pass.
type Plan struct {
	TenantID string              `json:"tenant_id"`
	Steps    []Step              `json:"steps"`
	Cycles   []depgraph.Cycle    `json:"cycles"`
	Summary  scoring.PlanSummary `json:"summary"`

	Graph *depgraph.Graph `json:"-"`

	// stored dependency lists from the snapshot, by asset id
	stored map[string][]string
}

// ByPriority returns the steps ordered by descending priority. Ties keep
// the suggested order.
func (p *Plan) ByPriority() []Step {
	out := slices.Clone(p.Steps)
	slices.SortStableFunc(out, func(a, b Step) int {
		return cmp.Compare(b.Priority.Priority, a.Priority.Priority)
	})
	return out
}

// Options configures a Planner. Zero values select defaults.
type Options struct {
	Rules rules.Rules

	// WriteConcurrency bounds parallel annotation writes (default 4).
	WriteConcurrency int

	// WriteRate limits annotation writes per second across all workers.
	// Zero means unlimited.
	WriteRate float64

	// WriteRetries is the number of retries after a failed write.
	WriteRetries int

	// Backoff overrides the retry schedule. Tests use it to avoid sleeping.
	Backoff BackoffFactory

	Logger *slog.Logger
}

// Planner computes and persists migration plans.
type Planner struct {
	store  Store
	opts   Options
	logger *slog.Logger
}

// New creates a planner over store.
func New(store Store, opts Options) *Planner {
	if opts.Rules.CriticalPlatforms == nil && opts.Rules.ComplexPlatforms == nil {
		opts.Rules = rules.Default()
	}
	if opts.WriteConcurrency < 1 {
		opts.WriteConcurrency = 4
	}
	if opts.WriteRetries < 0 {
		opts.WriteRetries = 0
	}
	if opts.Backoff == nil {
		opts.Backoff = ExponentialBackoff
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{store: store, opts: opts, logger: logger}
}

// Plan reads the tenant snapshot and computes the plan without writing
// anything. The error is non-nil only when the snapshot cannot be read or
// ctx is done.
func (p *Planner) Plan(ctx context.Context, tenantID string) (*Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	assets, err := p.store.ListAssets(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("plan %s: read snapshot: %w", tenantID, err)
	}

	plan := Compute(tenantID, assets, p.opts.Rules)

	p.logger.Info("plan computed",
		"tenant", tenantID,
		"assets", len(assets),
		"active", len(plan.Steps),
		"cycles", len(plan.Cycles),
		"estimate", plan.Summary.Formatted,
	)
	for _, c := range plan.Cycles {
		p.logger.Warn("dependency cycle", "tenant", tenantID, "cycle", c.Message)
	}

	return plan, nil
}

// Compute builds a plan from an in-memory asset set. It is pure: the same
// input always yields the same plan.
func Compute(tenantID string, assets []asset.Asset, r rules.Rules) *Plan {
	g := depgraph.BuildGraph(assets, r)
	priorities := scoring.NewPriorityScorer(assets, g, r)
	estimates := scoring.NewTimeEstimator(assets, g, r)

	byID := make(map[string]asset.Asset, len(assets))
	stored := make(map[string][]string, len(assets))
	for _, a := range assets {
		if _, dup := byID[a.ID]; !dup {
			byID[a.ID] = a
			stored[a.ID] = a.Dependencies
		}
	}

	plan := &Plan{
		TenantID: tenantID,
		Steps:    make([]Step, 0, len(g.SuggestedOrder)),
		Cycles:   g.Cycles,
		Graph:    g,
		stored:   stored,
	}

	ests := make([]scoring.TimeEstimate, 0, len(g.SuggestedOrder))
	for i, id := range g.SuggestedOrder {
		a := byID[id]
		node, _ := g.Node(id)
		est := estimates.Estimate(a)
		ests = append(ests, est)

		plan.Steps = append(plan.Steps, Step{
			Position:     i + 1,
			AssetID:      id,
			Name:         a.Name,
			Category:     a.Category,
			Platform:     a.Platform,
			Status:       a.Status,
			Dependencies: node.Dependencies,
			Dependents:   node.Dependents,
			Priority:     priorities.Score(a),
			Estimate:     est,
		})
	}
	plan.Summary = scoring.Summarize(ests)

	return plan
}

// annotations converts a step into the write-back record. Stored
// dependencies are kept even when stale so nothing is destroyed; readers
// filter them. Inferred ids written here are stored ids on the next run.
func (p *Plan) annotations(s Step) asset.Annotations {
	deps := slices.Concat(p.stored[s.AssetID], s.Dependencies)
	slices.Sort(deps)
	deps = slices.Compact(deps)
	if deps == nil {
		deps = []string{}
	}

	priority := s.Priority.Priority
	factors := s.Priority.Factors
	reason := s.Priority.Reason
	minutes := s.Estimate.EstimatedMinutes
	timeFactors := s.Estimate.Factors

	return asset.Annotations{
		Dependencies:         deps,
		Priority:             &priority,
		PriorityFactors:      &factors,
		PriorityReason:       &reason,
		EstimatedTimeMinutes: &minutes,
		TimeEstimateFactors:  &timeFactors,
	}
}
