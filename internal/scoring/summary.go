package scoring

import "fmt"

// PlanSummary is the plan-level total over all non-terminal assets.
type PlanSummary struct {
	AssetCount            int    `json:"asset_count"`
	TotalMinMinutes       int    `json:"total_min_minutes"`
	TotalMaxMinutes       int    `json:"total_max_minutes"`
	TotalEstimatedMinutes int    `json:"total_estimated_minutes"`
	Formatted             string `json:"formatted"`
}

// Summarize sums estimates. Terminal estimates are all-zero and are not
// counted.
func Summarize(estimates []TimeEstimate) PlanSummary {
	var s PlanSummary
	for _, e := range estimates {
		if e.EstimatedMinutes == 0 {
			continue
		}
		s.AssetCount++
		s.TotalMinMinutes += e.MinMinutes
		s.TotalMaxMinutes += e.MaxMinutes
		s.TotalEstimatedMinutes += e.EstimatedMinutes
	}
	s.Formatted = FormatRange(s.TotalMinMinutes, s.TotalMaxMinutes)
	return s
}

// FormatRange renders a minute range such as "3h 30m - 4h 33m".
func FormatRange(lo, hi int) string {
	if lo == hi {
		return FormatMinutes(lo)
	}
	return FormatMinutes(lo) + " - " + FormatMinutes(hi)
}

// FormatMinutes renders minutes as "45m", "2h" or "2h 15m".
func FormatMinutes(m int) string {
	h, rem := m/60, m%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", rem)
	case rem == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, rem)
	}
}
