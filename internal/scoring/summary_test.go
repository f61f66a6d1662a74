package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMinutes(t *testing.T) {
	cases := map[int]string{
		0:   "0m",
		45:  "45m",
		60:  "1h",
		135: "2h 15m",
		600: "10h",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatMinutes(in), in)
	}
}

func TestFormatRange(t *testing.T) {
	assert.Equal(t, "45m - 1h 25m", FormatRange(45, 85))
	assert.Equal(t, "2h", FormatRange(120, 120))
}

func TestSummarize_SkipsTerminal(t *testing.T) {
	s := Summarize([]TimeEstimate{
		{AssetID: "x", MinMinutes: 25, EstimatedMinutes: 36, MaxMinutes: 47},
		{AssetID: "y", MinMinutes: 20, EstimatedMinutes: 29, MaxMinutes: 38},
		{AssetID: "done"},
	})

	assert.Equal(t, PlanSummary{
		AssetCount:            2,
		TotalMinMinutes:       45,
		TotalMaxMinutes:       85,
		TotalEstimatedMinutes: 65,
		Formatted:             "45m - 1h 25m",
	}, s)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.AssetCount)
	assert.Equal(t, "0m", s.Formatted)
}
