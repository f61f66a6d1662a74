package depgraph

import (
	"slices"

	"github.com/roach88/scriptplan/internal/asset"
	"github.com/roach88/scriptplan/internal/rules"
)

// Inferrer derives the dependencies of one asset from the full asset set.
type Inferrer struct {
	idx   *asset.Index
	rules rules.Rules
}

// NewInferrer returns an inferrer over a prebuilt index.
func NewInferrer(idx *asset.Index, r rules.Rules) *Inferrer {
	return &Inferrer{idx: idx, rules: r}
}

// InferDependencies returns the ids a must not be migrated before.
//
// The result is the union of the stored dependencies and every heuristic
// below, filtered to present non-terminal assets, without a, sorted and
// unique. Terminal assets depend on nothing.
func InferDependencies(a asset.Asset, all []asset.Asset, r rules.Rules) []string {
	return NewInferrer(asset.NewIndex(all), r).Infer(a)
}

// Infer is InferDependencies against the inferrer's index.
func (inf *Inferrer) Infer(a asset.Asset) []string {
	if a.IsTerminal() {
		return []string{}
	}

	deps := make(map[string]struct{})
	add := func(dep *asset.Asset) {
		if dep != nil {
			deps[dep.ID] = struct{}{}
		}
	}

	// Stored links are ground truth; validity is checked below.
	for _, id := range a.Dependencies {
		deps[id] = struct{}{}
	}

	inf.categoryLinks(a, add)

	// Removing a platform's pixel breaks every other asset fed by it.
	if a.Category != asset.CategoryPixel {
		for _, px := range inf.idx.PixelsForPlatform(a.Platform) {
			add(px)
		}
	}

	// Container-managed tags are blocked on the platforms they configure.
	if a.Details.FromContainer() {
		add(inf.criticalPixel(a.ID))
	}

	// Server-side migrations build on the client-side pixel landing first.
	if a.SuggestedMigration == asset.MigrationServerSide {
		for _, sib := range inf.idx.Family(a.Platform, a.Category) {
			if sib.ID != a.ID && sib.SuggestedMigration == asset.MigrationWebPixel {
				add(sib)
			}
		}
	}

	out := make([]string, 0, len(deps))
	for id := range deps {
		if id != a.ID && inf.idx.IsActive(id) {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

func (inf *Inferrer) categoryLinks(a asset.Asset, add func(*asset.Asset)) {
	switch a.Category {
	case asset.CategorySurvey:
		if tracker, ok := inf.idx.OrderTrackingSupport(); ok {
			add(tracker)
		}
		if a.Details.RequiresPixel || a.Details.RequiresOrderData {
			add(inf.pixelFor(a))
		}

	case asset.CategoryAffiliate:
		add(inf.pixelFor(a))

	case asset.CategoryAnalytics:
		if px := inf.criticalPixel(a.ID); px != nil {
			add(px)
		} else {
			add(inf.anyPixel(a.ID))
		}

	case asset.CategorySupport:
		if tracker, ok := inf.idx.OrderTrackingSupport(); ok && tracker.ID != a.ID {
			add(tracker)
		}
	}
}

// pixelFor prefers a same-platform pixel and falls back to any pixel.
func (inf *Inferrer) pixelFor(a asset.Asset) *asset.Asset {
	for _, px := range inf.idx.PixelsForPlatform(a.Platform) {
		if px.ID != a.ID {
			return px
		}
	}
	return inf.anyPixel(a.ID)
}

// criticalPixel walks the critical platform list in priority order and
// returns the first pixel found.
func (inf *Inferrer) criticalPixel(self string) *asset.Asset {
	for _, platform := range inf.rules.CriticalPlatforms {
		for _, px := range inf.idx.PixelsForPlatform(platform) {
			if px.ID != self {
				return px
			}
		}
	}
	return nil
}

func (inf *Inferrer) anyPixel(self string) *asset.Asset {
	for _, px := range inf.idx.Pixels() {
		if px.ID != self {
			return px
		}
	}
	return nil
}
