package ingest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scriptplan/internal/asset"
)

func TestLoadBatch(t *testing.T) {
	b, err := LoadBatch(filepath.Join("testdata", "batch.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "shop-1", b.Tenant)
	require.Len(t, b.Candidates, 3)

	assert.Equal(t, asset.SourceManual, b.Candidates[0].Source)
	assert.Equal(t, asset.RiskHigh, b.Candidates[0].RiskLevel)
	assert.True(t, b.Candidates[1].Details.RequiresOrderData)
	assert.Equal(t, asset.ContainerGTM, b.Candidates[2].Details.ContainerType)
	assert.Equal(t, 3, b.Candidates[2].Details.ScriptCount)
	assert.Equal(t, asset.MigrationNone, b.Candidates[2].SuggestedMigration)

	for i, c := range b.Candidates {
		assert.NoError(t, Validate(c), "candidate %d", i)
	}
}

func TestLoadBatch_MissingFile(t *testing.T) {
	_, err := LoadBatch(filepath.Join("testdata", "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read batch file")
}

func TestParseBatch_UnknownField(t *testing.T) {
	_, err := ParseBatch([]byte("candidates:\n  - content: x\n    categroy: pixel\n"))
	assert.ErrorContains(t, err, "failed to parse YAML")
}

func TestParseBatch_Empty(t *testing.T) {
	_, err := ParseBatch([]byte("tenant: shop-1\ncandidates: []\n"))
	assert.ErrorContains(t, err, "candidates list is required")
}
