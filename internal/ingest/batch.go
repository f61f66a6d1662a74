package ingest

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/scriptplan/internal/asset"
)

// Batch is a YAML file of classifier output.
//
//	tenant: shop-1
//	candidates:
//	  - content: "fbq('init', '1234567890')"
//	    category: pixel
//	    platform: meta
//	    risk_level: high
//	    suggested_migration: web_pixel
//	    confidence: high
type Batch struct {
	// Tenant is optional; the --tenant flag wins when both are set.
	Tenant     string            `yaml:"tenant,omitempty"`
	Candidates []asset.Candidate `yaml:"candidates"`
}

// LoadBatch reads and parses a batch file.
func LoadBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	return ParseBatch(data)
}

// ParseBatch parses batch YAML. Unknown fields are rejected so typos in
// hand-written batches surface instead of silently dropping data.
// Individual candidates are not validated here; Ingest counts invalid ones
// as failures.
func ParseBatch(data []byte) (*Batch, error) {
	var b Batch
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&b); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(b.Candidates) == 0 {
		return nil, fmt.Errorf("invalid batch: candidates list is required and must be non-empty")
	}
	return &b, nil
}
