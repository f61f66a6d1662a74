// Package ingest turns classified candidates into stored assets.
//
// Each candidate is validated, fingerprinted and checked against the
// fingerprints the tenant already holds plus every fingerprint seen earlier
// in the same batch, so a tenant never holds two assets with one
// fingerprint. Failures are counted in Stats rather than returned; only a
// store that cannot be read aborts a batch.
package ingest
