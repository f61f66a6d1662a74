// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"github.com/roach88/scriptplan/internal/asset"
)

// AssetOption customizes a fixture asset.
type AssetOption func(*asset.Asset)

// NewAsset returns a pending, medium-risk web_pixel asset with the given
// identity. Options override any field.
func NewAsset(id string, category asset.Category, platform string, opts ...AssetOption) asset.Asset {
	a := asset.Asset{
		ID:                 id,
		TenantID:           "tenant-test",
		Fingerprint:        "fp-" + id,
		Category:           category,
		Platform:           platform,
		RiskLevel:          asset.RiskMedium,
		SuggestedMigration: asset.MigrationWebPixel,
		Confidence:         asset.ConfidenceHigh,
		Status:             asset.StatusPending,
		Dependencies:       []string{},
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// WithStatus sets the migration status.
func WithStatus(s asset.Status) AssetOption {
	return func(a *asset.Asset) { a.Status = s }
}

// WithRisk sets the risk level.
func WithRisk(r asset.RiskLevel) AssetOption {
	return func(a *asset.Asset) { a.RiskLevel = r }
}

// WithMigration sets the suggested migration path.
func WithMigration(m asset.MigrationPath) AssetOption {
	return func(a *asset.Asset) { a.SuggestedMigration = m }
}

// WithDependencies sets the stored dependency ids.
func WithDependencies(ids ...string) AssetOption {
	return func(a *asset.Asset) { a.Dependencies = ids }
}

// WithDetails replaces the details record.
func WithDetails(d asset.Details) AssetOption {
	return func(a *asset.Asset) { a.Details = d }
}

// WithTenant sets the tenant id.
func WithTenant(tenant string) AssetOption {
	return func(a *asset.Asset) { a.TenantID = tenant }
}

// NewCandidate returns a valid candidate for ingestion tests.
func NewCandidate(content string, category asset.Category, platform string) asset.Candidate {
	return asset.Candidate{
		Content:            content,
		Source:             asset.SourceAPI,
		Category:           category,
		Platform:           platform,
		RiskLevel:          asset.RiskMedium,
		SuggestedMigration: asset.MigrationWebPixel,
		Confidence:         asset.ConfidenceHigh,
	}
}
