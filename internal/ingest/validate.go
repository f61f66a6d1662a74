package ingest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/scriptplan/internal/asset"
)

// ErrInvalidCandidate marks a candidate rejected before fingerprinting.
var ErrInvalidCandidate = errors.New("invalid candidate")

// Validate checks that a candidate carries a complete classification.
func Validate(c asset.Candidate) error {
	var problems []string
	if strings.TrimSpace(c.Content) == "" {
		problems = append(problems, "content is required")
	}
	if !c.Category.Valid() {
		problems = append(problems, fmt.Sprintf("category %q is not valid", c.Category))
	}
	if !c.RiskLevel.Valid() {
		problems = append(problems, fmt.Sprintf("risk_level %q is not valid", c.RiskLevel))
	}
	if !c.SuggestedMigration.Valid() {
		problems = append(problems, fmt.Sprintf("suggested_migration %q is not valid", c.SuggestedMigration))
	}
	if !c.Confidence.Valid() {
		problems = append(problems, fmt.Sprintf("confidence %q is not valid", c.Confidence))
	}
	if c.Source != "" && c.Source != asset.SourceManual && c.Source != asset.SourceAPI {
		problems = append(problems, fmt.Sprintf("source %q is not valid", c.Source))
	}
	if !c.Details.ContainerType.Valid() {
		problems = append(problems, fmt.Sprintf("container_type %q is not valid", c.Details.ContainerType))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidCandidate, strings.Join(problems, "; "))
	}
	return nil
}
