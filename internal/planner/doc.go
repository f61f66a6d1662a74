// Package planner runs one tenant's planning pass.
//
// A run reads a snapshot of the tenant's assets, builds the dependency
// graph, scores and estimates every active asset, and writes the results
// back as annotations. Everything before write-back is pure computation and
// can be abandoned at any point without side effects. Write-back is
// per-asset: a failed write is retried with exponential backoff and, if it
// still fails, reported in the result without blocking the other writes.
package planner
