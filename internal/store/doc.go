// Package store provides SQLite-backed durable storage for tracking assets.
//
// One row per asset, scoped by tenant. The store is the engine's only
// source of truth; planning annotations written back onto a row are caches
// and may be recomputed at any time.
//
// # Critical Patterns
//
// Fingerprint Uniqueness
//   - UNIQUE(tenant_id, fingerprint) constraint
//   - UpsertAsset uses ON CONFLICT DO NOTHING and returns nil for a duplicate
//
// Deterministic Query Results
//   - All list queries ORDER BY rowid ASC (insertion order)
//   - Read slices are never nil
//
// Status Lifecycle
//   - UpdateStatus enforces asset.CheckTransition inside one transaction
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON
package store
