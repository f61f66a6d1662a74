package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/scriptplan/internal/asset"
)

const assetColumns = `
	id, tenant_id, fingerprint, name, content, source, category, platform,
	risk_level, suggested_migration, confidence, details, migration_status,
	dependencies, priority, priority_factors, priority_reason,
	estimated_time_minutes, time_estimate_factors,
	created_at, updated_at, annotated_at`

// ListAssets returns every asset of a tenant, terminal included, in
// insertion order. This is the planning snapshot: terminal assets are
// needed to resolve stored dependencies.
//
// Returns an empty slice (not nil) if the tenant has no assets.
func (s *Store) ListAssets(ctx context.Context, tenantID string) ([]asset.Asset, error) {
	return s.queryAssets(ctx, `
		SELECT `+assetColumns+`
		FROM assets
		WHERE tenant_id = ?
		ORDER BY rowid ASC
	`, tenantID)
}

// ListNonTerminalAssets returns the tenant's pending and in-progress
// assets in insertion order.
func (s *Store) ListNonTerminalAssets(ctx context.Context, tenantID string) ([]asset.Asset, error) {
	return s.queryAssets(ctx, `
		SELECT `+assetColumns+`
		FROM assets
		WHERE tenant_id = ? AND migration_status IN (?, ?)
		ORDER BY rowid ASC
	`, tenantID, string(asset.StatusPending), string(asset.StatusInProgress))
}

// GetAsset returns one asset by id, or an error wrapping ErrNotFound.
func (s *Store) GetAsset(ctx context.Context, id string) (asset.Asset, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+assetColumns+`
		FROM assets
		WHERE id = ?
	`, id)

	a, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return asset.Asset{}, fmt.Errorf("get asset %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return asset.Asset{}, fmt.Errorf("get asset %s: %w", id, err)
	}
	return a, nil
}

// ListFingerprints returns fingerprint → asset id for every asset of a
// tenant, terminal included.
func (s *Store) ListFingerprints(ctx context.Context, tenantID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fingerprint, id
		FROM assets
		WHERE tenant_id = ?
		ORDER BY rowid ASC
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("query fingerprints: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var fp, id string
		if err := rows.Scan(&fp, &id); err != nil {
			return nil, fmt.Errorf("scan fingerprint: %w", err)
		}
		out[fp] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fingerprints: %w", err)
	}
	return out, nil
}

func (s *Store) queryAssets(ctx context.Context, query string, args ...any) ([]asset.Asset, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query assets: %w", err)
	}
	defer rows.Close()

	assets := []asset.Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assets: %w", err)
	}

	return assets, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAsset(row scanner) (asset.Asset, error) {
	var a asset.Asset
	var source, category, risk, mig, conf, status, details, deps string
	var createdAt, updatedAt string
	var priorityFactors, timeFactors, annotatedAt sql.NullString

	if err := row.Scan(
		&a.ID,
		&a.TenantID,
		&a.Fingerprint,
		&a.Name,
		&a.Content,
		&source,
		&category,
		&a.Platform,
		&risk,
		&mig,
		&conf,
		&details,
		&status,
		&deps,
		&a.Priority,
		&priorityFactors,
		&a.PriorityReason,
		&a.EstimatedTimeMinutes,
		&timeFactors,
		&createdAt,
		&updatedAt,
		&annotatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return asset.Asset{}, err
		}
		return asset.Asset{}, fmt.Errorf("scan asset: %w", err)
	}

	a.Source = asset.ScanSource(source)
	a.Category = asset.Category(category)
	a.RiskLevel = asset.RiskLevel(risk)
	a.SuggestedMigration = asset.MigrationPath(mig)
	a.Confidence = asset.Confidence(conf)
	a.Status = asset.Status(status)

	var err error
	if a.Details, err = unmarshalDetails(details); err != nil {
		return asset.Asset{}, err
	}
	if a.Dependencies, err = unmarshalDependencies(deps); err != nil {
		return asset.Asset{}, err
	}
	if a.PriorityFactors, err = unmarshalOptional[asset.PriorityFactors]("priority_factors", priorityFactors); err != nil {
		return asset.Asset{}, err
	}
	if a.TimeEstimateFactors, err = unmarshalOptional[asset.TimeEstimateFactors]("time_estimate_factors", timeFactors); err != nil {
		return asset.Asset{}, err
	}
	if a.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return asset.Asset{}, err
	}
	if a.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return asset.Asset{}, err
	}
	if annotatedAt.Valid {
		t, err := parseTime("annotated_at", annotatedAt.String)
		if err != nil {
			return asset.Asset{}, err
		}
		a.AnnotatedAt = &t
	}

	return a, nil
}
