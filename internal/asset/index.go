package asset

import "strings"

// Index is a read-only lookup structure built once per planning run.
//
// It replaces repeated linear scans over the asset set: every lookup the
// dependency heuristics need is a map read or a walk over a pre-filtered
// slice. Slices preserve the input order so results stay deterministic.
type Index struct {
	all    map[string]*Asset // id → asset, terminal included
	active []*Asset          // non-terminal, input order

	pixels           []*Asset            // active pixels, input order
	pixelsByPlatform map[string][]*Asset // lowercased platform → active pixels
	orderTracking    []*Asset            // active support assets tagged as order tracking
	byFamily         map[family][]*Asset // (lowercased platform, category) → active assets
}

type family struct {
	platform string
	category Category
}

// NewIndex builds an index over assets. The slice is not retained but the
// assets are referenced, so callers must not mutate them while the index
// is in use. Duplicate ids keep the first occurrence.
func NewIndex(assets []Asset) *Index {
	idx := &Index{
		all:              make(map[string]*Asset, len(assets)),
		pixelsByPlatform: make(map[string][]*Asset),
		byFamily:         make(map[family][]*Asset),
	}

	for i := range assets {
		a := &assets[i]
		if _, dup := idx.all[a.ID]; dup {
			continue
		}
		idx.all[a.ID] = a
		if a.IsTerminal() {
			continue
		}

		idx.active = append(idx.active, a)
		platform := platformKey(a.Platform)
		switch a.Category {
		case CategoryPixel:
			idx.pixels = append(idx.pixels, a)
			if platform != "" {
				idx.pixelsByPlatform[platform] = append(idx.pixelsByPlatform[platform], a)
			}
		case CategorySupport:
			if a.Details.OrderTracking {
				idx.orderTracking = append(idx.orderTracking, a)
			}
		}
		if platform != "" {
			k := family{platform: platform, category: a.Category}
			idx.byFamily[k] = append(idx.byFamily[k], a)
		}
	}

	return idx
}

// Get returns the asset with the given id, terminal or not.
func (idx *Index) Get(id string) (*Asset, bool) {
	a, ok := idx.all[id]
	return a, ok
}

// IsActive reports whether id names a present, non-terminal asset.
func (idx *Index) IsActive(id string) bool {
	a, ok := idx.all[id]
	return ok && !a.IsTerminal()
}

// Active returns the non-terminal assets in input order.
func (idx *Index) Active() []*Asset { return idx.active }

// Pixels returns every active pixel asset in input order.
func (idx *Index) Pixels() []*Asset { return idx.pixels }

// PixelsForPlatform returns the active pixel assets of one platform.
// Platforms compare case-insensitively.
func (idx *Index) PixelsForPlatform(platform string) []*Asset {
	platform = platformKey(platform)
	if platform == "" {
		return nil
	}
	return idx.pixelsByPlatform[platform]
}

// OrderTrackingSupport returns the canonical order-tracking support asset:
// the first active support asset tagged as order tracking.
func (idx *Index) OrderTrackingSupport() (*Asset, bool) {
	if len(idx.orderTracking) == 0 {
		return nil, false
	}
	return idx.orderTracking[0], true
}

// Family returns the active assets sharing platform (case-insensitively)
// and category.
func (idx *Index) Family(platform string, category Category) []*Asset {
	platform = platformKey(platform)
	if platform == "" {
		return nil
	}
	return idx.byFamily[family{platform: platform, category: category}]
}

func platformKey(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}
