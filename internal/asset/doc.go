// Package asset provides the data model for detected tracking assets.
//
// This package contains type definitions and small pure helpers only. All
// other internal packages import asset; asset imports nothing internal.
//
// Key constraints:
//   - Assets in a terminal status (completed, skipped) are retired from
//     planning: no inference, no graph node, priority 0, estimate 0.
//   - The id is the reference identity for graphs and stored dependencies.
//     The fingerprint is only the ingestion dedup key.
//   - Details is a typed record, never an open map, so every heuristic read
//     is statically checked.
//   - All JSON tags use snake_case.
package asset
