package ingest

import (
	"github.com/roach88/scriptplan/internal/asset"
	"github.com/roach88/scriptplan/internal/fingerprint"
)

// Prepared is a candidate with its fingerprint computed.
type Prepared struct {
	Candidate   asset.Candidate
	Fingerprint string
	Identifiers []string
}

// DedupeResult splits a batch by fingerprint.
type DedupeResult struct {
	// ToCreate holds candidates whose fingerprint is new to the tenant,
	// first occurrence in the batch only.
	ToCreate []Prepared

	// Known holds the first occurrence of each candidate whose fingerprint
	// the tenant already stores. Rescans refresh these.
	Known []Prepared

	// DuplicateCount counts Known plus every later repeat within the batch.
	DuplicateCount int

	// Failed counts candidates that could not be fingerprinted.
	Failed int
}

// Dedupe fingerprints candidates and drops those already present in
// existing (fingerprint → asset id) or earlier in the batch.
func Dedupe(candidates []asset.Candidate, existing map[string]string) DedupeResult {
	var res DedupeResult
	seen := make(map[string]bool, len(candidates))

	for _, c := range candidates {
		fp, ids, err := fingerprint.Compute(c.Content, c.Category, c.Platform)
		if err != nil {
			res.Failed++
			continue
		}
		if seen[fp] {
			res.DuplicateCount++
			continue
		}
		seen[fp] = true

		p := Prepared{Candidate: c, Fingerprint: fp, Identifiers: ids}
		if _, ok := existing[fp]; ok {
			res.Known = append(res.Known, p)
			res.DuplicateCount++
			continue
		}
		res.ToCreate = append(res.ToCreate, p)
	}

	return res
}
