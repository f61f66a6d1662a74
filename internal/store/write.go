package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/scriptplan/internal/asset"
)

// UpsertAsset inserts a new asset row.
//
// Uses ON CONFLICT DO NOTHING: when the tenant already holds an asset with
// the same fingerprint (or the id is taken) nothing is written and the
// returned asset is nil. Other constraint violations still return errors.
//
// Empty source and status default to api and pending. CreatedAt and
// UpdatedAt are set from the store clock.
func (s *Store) UpsertAsset(ctx context.Context, a asset.Asset) (*asset.Asset, error) {
	if a.Source == "" {
		a.Source = asset.SourceAPI
	}
	if a.Status == "" {
		a.Status = asset.StatusPending
	}
	if a.Dependencies == nil {
		a.Dependencies = []string{}
	}

	detailsJSON, err := marshalJSON("details", a.Details)
	if err != nil {
		return nil, fmt.Errorf("write asset: %w", err)
	}
	depsJSON, err := marshalDependencies(a.Dependencies)
	if err != nil {
		return nil, fmt.Errorf("write asset: %w", err)
	}

	now := s.now().UTC()
	ts := now.Format(timeLayout)

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO assets
		(id, tenant_id, fingerprint, name, content, source, category, platform,
		 risk_level, suggested_migration, confidence, details, migration_status,
		 dependencies, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		a.ID,
		a.TenantID,
		a.Fingerprint,
		a.Name,
		a.Content,
		string(a.Source),
		string(a.Category),
		a.Platform,
		string(a.RiskLevel),
		string(a.SuggestedMigration),
		string(a.Confidence),
		detailsJSON,
		string(a.Status),
		depsJSON,
		ts,
		ts,
	)
	if err != nil {
		return nil, fmt.Errorf("write asset: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("write asset: rows affected: %w", err)
	}
	if rows == 0 {
		return nil, nil
	}

	a.CreatedAt, a.UpdatedAt = now, now
	return &a, nil
}

// Reclassify refreshes the classifier-owned fields of the tenant's asset
// with the given fingerprint. Status, stored dependencies and annotations
// are left alone. Reports whether a row matched.
func (s *Store) Reclassify(ctx context.Context, tenantID, fingerprint string, c asset.Candidate) (bool, error) {
	detailsJSON, err := marshalJSON("details", c.Details)
	if err != nil {
		return false, fmt.Errorf("reclassify asset: %w", err)
	}
	source := c.Source
	if source == "" {
		source = asset.SourceAPI
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE assets SET
			name = ?, content = ?, source = ?, category = ?, platform = ?,
			risk_level = ?, suggested_migration = ?, confidence = ?, details = ?,
			updated_at = ?
		WHERE tenant_id = ? AND fingerprint = ?
	`,
		c.Name,
		c.Content,
		string(source),
		string(c.Category),
		c.Platform,
		string(c.RiskLevel),
		string(c.SuggestedMigration),
		string(c.Confidence),
		detailsJSON,
		s.timestamp(),
		tenantID,
		fingerprint,
	)
	if err != nil {
		return false, fmt.Errorf("reclassify asset: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reclassify asset: rows affected: %w", err)
	}
	return rows > 0, nil
}

// UpdateAnnotations writes the engine-computed caches onto one asset.
// Nil fields are left untouched; annotated_at is always stamped. Writing
// the same annotations twice is harmless.
func (s *Store) UpdateAnnotations(ctx context.Context, id string, ann asset.Annotations) error {
	if ann.IsEmpty() {
		return nil
	}

	var sets []string
	var args []any
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if ann.Dependencies != nil {
		deps, err := marshalDependencies(ann.Dependencies)
		if err != nil {
			return fmt.Errorf("update annotations: %w", err)
		}
		set("dependencies", deps)
	}
	if ann.Priority != nil {
		set("priority", *ann.Priority)
	}
	if ann.PriorityFactors != nil {
		factors, err := marshalOptional("priority_factors", ann.PriorityFactors)
		if err != nil {
			return fmt.Errorf("update annotations: %w", err)
		}
		set("priority_factors", factors)
	}
	if ann.PriorityReason != nil {
		set("priority_reason", *ann.PriorityReason)
	}
	if ann.EstimatedTimeMinutes != nil {
		set("estimated_time_minutes", *ann.EstimatedTimeMinutes)
	}
	if ann.TimeEstimateFactors != nil {
		factors, err := marshalOptional("time_estimate_factors", ann.TimeEstimateFactors)
		if err != nil {
			return fmt.Errorf("update annotations: %w", err)
		}
		set("time_estimate_factors", factors)
	}
	set("annotated_at", s.timestamp())
	args = append(args, id)

	result, err := s.db.ExecContext(ctx,
		"UPDATE assets SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update annotations: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update annotations: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update annotations %s: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateStatus moves an asset along its lifecycle and returns the updated
// record. A same-state update is a no-op. Illegal moves return an error
// wrapping asset.ErrInvalidTransition. Moving into a terminal state clears
// the priority and time estimate; stored dependencies are kept.
func (s *Store) UpdateStatus(ctx context.Context, id string, to asset.Status) (asset.Asset, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return asset.Asset{}, fmt.Errorf("update status: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var from string
	err = tx.QueryRowContext(ctx, `SELECT migration_status FROM assets WHERE id = ?`, id).Scan(&from)
	if errors.Is(err, sql.ErrNoRows) {
		return asset.Asset{}, fmt.Errorf("update status %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return asset.Asset{}, fmt.Errorf("update status: %w", err)
	}

	if err := asset.CheckTransition(asset.Status(from), to); err != nil {
		return asset.Asset{}, fmt.Errorf("update status %s: %w", id, err)
	}

	if asset.Status(from) != to {
		query := `UPDATE assets SET migration_status = ?, updated_at = ? WHERE id = ?`
		if to.IsTerminal() {
			// Retired assets are no longer scored; drop the last plan's numbers.
			query = `UPDATE assets SET migration_status = ?, updated_at = ?,
				priority = 0, priority_factors = NULL, priority_reason = '',
				estimated_time_minutes = 0, time_estimate_factors = NULL
				WHERE id = ?`
		}
		if _, err := tx.ExecContext(ctx, query, string(to), s.timestamp(), id); err != nil {
			return asset.Asset{}, fmt.Errorf("update status: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return asset.Asset{}, fmt.Errorf("update status: commit: %w", err)
	}

	return s.GetAsset(ctx, id)
}
