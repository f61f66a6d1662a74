package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/scriptplan/internal/asset"
)

// Store is the slice of the asset store ingestion needs.
type Store interface {
	ListFingerprints(ctx context.Context, tenantID string) (map[string]string, error)
	UpsertAsset(ctx context.Context, a asset.Asset) (*asset.Asset, error)
	Reclassify(ctx context.Context, tenantID, fingerprint string, c asset.Candidate) (bool, error)
}

// Options tunes one ingestion run.
type Options struct {
	// Rescan refreshes the classification of candidates whose fingerprint
	// the tenant already stores instead of counting them as duplicates.
	Rescan bool
}

// Stats summarizes one ingestion run.
type Stats struct {
	Created    int `json:"created"`
	Updated    int `json:"updated"`
	Failed     int `json:"failed"`
	Duplicates int `json:"duplicates"`
}

// Ingester persists classified candidates as assets.
type Ingester struct {
	store  Store
	ids    IDGenerator
	logger *slog.Logger
}

// NewIngester creates an ingester. A nil ids uses UUIDv7; a nil logger uses
// slog.Default().
func NewIngester(store Store, ids IDGenerator, logger *slog.Logger) *Ingester {
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingester{store: store, ids: ids, logger: logger}
}

// Ingest validates, deduplicates and stores a batch for one tenant.
//
// Invalid candidates and per-asset write errors are counted in Stats.Failed.
// The returned error is non-nil only when the tenant's fingerprints cannot
// be read.
func (in *Ingester) Ingest(ctx context.Context, tenantID string, candidates []asset.Candidate, opts Options) (Stats, error) {
	var stats Stats

	valid := make([]asset.Candidate, 0, len(candidates))
	for i, c := range candidates {
		if err := Validate(c); err != nil {
			stats.Failed++
			in.logger.Warn("candidate rejected",
				"tenant", tenantID,
				"index", i,
				"error", err,
			)
			continue
		}
		valid = append(valid, c)
	}

	existing, err := in.store.ListFingerprints(ctx, tenantID)
	if err != nil {
		return stats, fmt.Errorf("ingest %s: %w", tenantID, err)
	}

	res := Dedupe(valid, existing)
	stats.Failed += res.Failed
	stats.Duplicates = res.DuplicateCount

	for _, p := range res.ToCreate {
		created, err := in.store.UpsertAsset(ctx, in.newAsset(tenantID, p))
		switch {
		case err != nil:
			stats.Failed++
			in.logger.Error("asset write failed",
				"tenant", tenantID,
				"fingerprint", p.Fingerprint,
				"error", err,
			)
		case created == nil:
			// Lost a race with a concurrent ingestion of the same fingerprint.
			stats.Duplicates++
		default:
			stats.Created++
			in.logger.Debug("asset created",
				"tenant", tenantID,
				"id", created.ID,
				"category", created.Category,
				"platform", created.Platform,
			)
		}
	}

	if opts.Rescan {
		for _, p := range res.Known {
			stats.Duplicates--
			c := p.Candidate
			c.Details.Identifiers = mergeIdentifiers(c.Details.Identifiers, p.Identifiers)
			ok, err := in.store.Reclassify(ctx, tenantID, p.Fingerprint, c)
			switch {
			case err != nil:
				stats.Failed++
				in.logger.Error("asset reclassify failed",
					"tenant", tenantID,
					"fingerprint", p.Fingerprint,
					"error", err,
				)
			case ok:
				stats.Updated++
			default:
				stats.Duplicates++
			}
		}
	}

	in.logger.Info("ingestion finished",
		"tenant", tenantID,
		"created", stats.Created,
		"updated", stats.Updated,
		"failed", stats.Failed,
		"duplicates", stats.Duplicates,
	)

	return stats, nil
}

func (in *Ingester) newAsset(tenantID string, p Prepared) asset.Asset {
	c := p.Candidate
	details := c.Details
	details.Identifiers = mergeIdentifiers(details.Identifiers, p.Identifiers)

	deps := c.Dependencies
	if deps == nil {
		deps = []string{}
	}

	return asset.Asset{
		ID:                 in.ids.Generate(),
		TenantID:           tenantID,
		Fingerprint:        p.Fingerprint,
		Name:               c.Name,
		Content:            c.Content,
		Source:             c.Source,
		Category:           c.Category,
		Platform:           c.Platform,
		RiskLevel:          c.RiskLevel,
		SuggestedMigration: c.SuggestedMigration,
		Confidence:         c.Confidence,
		Details:            details,
		Status:             asset.StatusPending,
		Dependencies:       deps,
	}
}

// mergeIdentifiers keeps classifier-supplied ids first, then appends
// extracted ones not already present.
func mergeIdentifiers(given, extracted []string) []string {
	if len(extracted) == 0 {
		return given
	}
	seen := make(map[string]bool, len(given)+len(extracted))
	out := make([]string, 0, len(given)+len(extracted))
	for _, list := range [][]string{given, extracted} {
		for _, id := range list {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}
