package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scriptplan/internal/asset"
	tu "github.com/roach88/scriptplan/internal/testutil"
)

func ids(assets []asset.Asset) []string {
	out := make([]string, len(assets))
	for i, a := range assets {
		out[i] = a.ID
	}
	return out
}

func TestListAssets_InsertionOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"z", "a", "m"} {
		insert(t, s, tu.NewAsset(id, asset.CategoryOther, ""))
	}

	got, err := s.ListAssets(ctx, "tenant-test")
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a", "m"}, ids(got))
}

func TestListAssets_EmptyNotNil(t *testing.T) {
	s := createTestStore(t)

	got, err := s.ListAssets(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListAssets_TenantIsolation(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	insert(t, s, tu.NewAsset("a", asset.CategoryPixel, "meta", tu.WithTenant("t1")))
	insert(t, s, tu.NewAsset("b", asset.CategoryPixel, "meta", tu.WithTenant("t2")))

	got, err := s.ListAssets(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(got))
}

func TestListNonTerminalAssets(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"pending", "progress", "done", "skipped"} {
		insert(t, s, tu.NewAsset(id, asset.CategoryOther, ""))
	}
	_, err := s.UpdateStatus(ctx, "progress", asset.StatusInProgress)
	require.NoError(t, err)
	_, err = s.UpdateStatus(ctx, "done", asset.StatusInProgress)
	require.NoError(t, err)
	_, err = s.UpdateStatus(ctx, "done", asset.StatusCompleted)
	require.NoError(t, err)
	_, err = s.UpdateStatus(ctx, "skipped", asset.StatusSkipped)
	require.NoError(t, err)

	active, err := s.ListNonTerminalAssets(ctx, "tenant-test")
	require.NoError(t, err)
	assert.Equal(t, []string{"pending", "progress"}, ids(active))

	all, err := s.ListAssets(ctx, "tenant-test")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestListFingerprints(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	insert(t, s, tu.NewAsset("a", asset.CategoryOther, ""))
	insert(t, s, tu.NewAsset("b", asset.CategoryOther, "", tu.WithTenant("other")))

	got, err := s.ListFingerprints(ctx, "tenant-test")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"fp-a": "a"}, got)
}

func TestGetAsset_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetAsset(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
