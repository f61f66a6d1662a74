package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scriptplan/internal/asset"
	"github.com/roach88/scriptplan/internal/depgraph"
	"github.com/roach88/scriptplan/internal/rules"
	tu "github.com/roach88/scriptplan/internal/testutil"
)

func TestPriority_TerminalScoresZero(t *testing.T) {
	for _, status := range []asset.Status{asset.StatusCompleted, asset.StatusSkipped} {
		a := tu.NewAsset("a", asset.CategoryPixel, "meta",
			tu.WithStatus(status), tu.WithRisk(asset.RiskHigh))

		got := Priority(a, []asset.Asset{a}, rules.Default())
		assert.Equal(t, 0, got.Priority, status)
		assert.Equal(t, asset.PriorityFactors{}, got.Factors)
	}
}

// TestPriority_TerminalExclusion scores X as if the completed pixel did not
// exist: no dependencies, so the dependency factor is base plus the resolved
// bonus.
func TestPriority_TerminalExclusion(t *testing.T) {
	x := tu.NewAsset("x", asset.CategoryAffiliate, "p")
	y := tu.NewAsset("y", asset.CategoryPixel, "p", tu.WithStatus(asset.StatusCompleted))

	got := Priority(x, []asset.Asset{x, y}, rules.Default())

	assert.Equal(t, asset.PriorityFactors{
		RiskLevel:       20,
		Category:        20,
		MigrationStatus: 10,
		Dependency:      10,
		Complexity:      9,
	}, got.Factors)
	assert.Equal(t, 71, got.Priority)
	assert.Equal(t, "business-critical affiliate", got.Reason)
}

func TestPriority_SimpleChain(t *testing.T) {
	x := tu.NewAsset("x", asset.CategoryAffiliate, "p")
	y := tu.NewAsset("y", asset.CategoryPixel, "p")
	all := []asset.Asset{x, y}

	s := NewPriorityScorer(all, depgraph.BuildGraph(all, rules.Default()), rules.Default())

	blocked := s.Score(x)
	assert.Equal(t, 0, blocked.Factors.Dependency)
	assert.Equal(t, 61, blocked.Priority)
	assert.Contains(t, blocked.Reason, "blocked by unresolved dependencies")

	blocker := s.Score(y)
	assert.Equal(t, 12, blocker.Factors.Dependency)
	assert.Equal(t, 82, blocker.Priority)
	assert.Equal(t, "business-critical pixel; low migration complexity; unblocks 1 other asset(s)", blocker.Reason)

	assert.Greater(t, blocker.Priority, blocked.Priority)
}

func TestPriority_RetiredStoredDependencyCountsAsResolved(t *testing.T) {
	done := tu.NewAsset("done", asset.CategoryOther, "", tu.WithStatus(asset.StatusCompleted))
	skipped := tu.NewAsset("skipped", asset.CategoryOther, "", tu.WithStatus(asset.StatusSkipped))
	a := tu.NewAsset("a", asset.CategoryOther, "", tu.WithDependencies("done", "skipped", "gone"))

	got := Priority(a, []asset.Asset{a, done, skipped}, rules.Default())
	assert.Equal(t, 10, got.Factors.Dependency)
}

func TestPriority_PartlyResolved(t *testing.T) {
	done := tu.NewAsset("done", asset.CategoryOther, "", tu.WithStatus(asset.StatusCompleted))
	open := tu.NewAsset("open", asset.CategoryOther, "")
	a := tu.NewAsset("a", asset.CategoryOther, "", tu.WithDependencies("done", "open"))

	got := Priority(a, []asset.Asset{a, done, open}, rules.Default())
	assert.Equal(t, 3, got.Factors.Dependency)
}

func TestPriority_DependentBonusCapped(t *testing.T) {
	px := tu.NewAsset("px", asset.CategoryPixel, "meta")
	all := []asset.Asset{px}
	for _, id := range []string{"a1", "a2", "a3", "a4", "a5", "a6", "a7"} {
		all = append(all, tu.NewAsset(id, asset.CategoryAffiliate, "meta"))
	}

	got := Priority(px, all, rules.Default())
	assert.Equal(t, 15, got.Factors.Dependency)
	assert.Contains(t, got.Reason, "unblocks 7 other asset(s)")
}

func TestPriority_Complexity(t *testing.T) {
	cases := []struct {
		name      string
		a         asset.Asset
		wantCmplx int
	}{
		{"pixel web", tu.NewAsset("a", asset.CategoryPixel, "meta"), 5},
		{"pixel complex platform", tu.NewAsset("a", asset.CategoryPixel, "Klaviyo"), 9},
		{"affiliate server side", tu.NewAsset("a", asset.CategoryAffiliate, "impact",
			tu.WithMigration(asset.MigrationServerSide)), 17},
		{"removal only", tu.NewAsset("a", asset.CategoryAffiliate, "segment",
			tu.WithMigration(asset.MigrationNone)), 0},
		{"support extension", tu.NewAsset("a", asset.CategorySupport, "gorgias",
			tu.WithMigration(asset.MigrationUIExtension)), 9},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Priority(tc.a, []asset.Asset{tc.a}, rules.Default())
			assert.Equal(t, tc.wantCmplx, got.Factors.Complexity)
		})
	}
}

func TestPriority_Bounded(t *testing.T) {
	r := rules.Default()
	risks := []asset.RiskLevel{asset.RiskHigh, asset.RiskMedium, asset.RiskLow, ""}
	statuses := []asset.Status{asset.StatusPending, asset.StatusInProgress}
	migrations := []asset.MigrationPath{
		asset.MigrationWebPixel, asset.MigrationUIExtension, asset.MigrationServerSide, asset.MigrationNone,
	}

	for _, cat := range asset.Categories {
		for _, risk := range risks {
			for _, st := range statuses {
				for _, mig := range migrations {
					for _, platform := range []string{"", "meta", "segment"} {
						a := tu.NewAsset("a", cat, platform,
							tu.WithRisk(risk), tu.WithStatus(st), tu.WithMigration(mig))
						dependents := []asset.Asset{a}
						for _, id := range []string{"d1", "d2", "d3", "d4", "d5", "d6"} {
							dependents = append(dependents, tu.NewAsset(id, asset.CategoryOther, "", tu.WithDependencies("a")))
						}

						got := Priority(a, dependents, r)
						require.GreaterOrEqual(t, got.Priority, 0)
						require.LessOrEqual(t, got.Priority, 100)
						require.GreaterOrEqual(t, got.Factors.Complexity, 0)
						require.LessOrEqual(t, got.Factors.Complexity, 20)
						require.LessOrEqual(t, got.Factors.Dependency, 15)
					}
				}
			}
		}
	}
}

func TestPriority_MaximumIsReachable(t *testing.T) {
	a := tu.NewAsset("a", asset.CategoryPixel, "meta",
		tu.WithRisk(asset.RiskHigh), tu.WithMigration(asset.MigrationNone))
	all := []asset.Asset{a}
	for _, id := range []string{"d1", "d2", "d3", "d4", "d5"} {
		all = append(all, tu.NewAsset(id, asset.CategoryOther, "", tu.WithDependencies("a")))
	}

	got := Priority(a, all, rules.Default())
	assert.Equal(t, 100, got.Priority)
}

func TestPriority_StandardReason(t *testing.T) {
	a := tu.NewAsset("a", asset.CategoryAnalytics, "",
		tu.WithRisk(asset.RiskLow), tu.WithMigration(asset.MigrationServerSide))

	got := Priority(a, []asset.Asset{a}, rules.Default())
	assert.Equal(t, "standard priority", got.Reason)
}
