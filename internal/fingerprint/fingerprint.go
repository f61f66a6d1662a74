// Package fingerprint derives a stable content identity for candidate
// tracking scripts so the same snippet observed by different scan passes
// deduplicates to one asset.
//
// The fingerprint combines the category, the platform, the vendor
// identifiers found in the script and a digest of its leading normalized
// text. Collisions between unrelated assets are possible but accepted.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/roach88/scriptplan/internal/asset"
	"github.com/roach88/scriptplan/internal/canonical"
)

// Domain separates fingerprint digests from any other content hash.
// The version suffix leaves room for a future algorithm migration.
const Domain = "scriptplan/fingerprint/v1"

const (
	// Length is the number of hex characters in a fingerprint.
	Length = 32

	contentPrefixRunes = 200
	contentDigestLen   = 16
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	quoteChars    = strings.NewReplacer(`"`, "", `'`, "", "`", "")

	// Patterns run against normalized (lowercased, unquoted) content.
	identifierPatterns = []*regexp.Regexp{
		// GA4 measurement ids, Universal Analytics properties, GTM containers.
		regexp.MustCompile(`\b(g-[a-z0-9]{6,12})\b`),
		regexp.MustCompile(`\b(ua-\d{4,10}-\d{1,4})\b`),
		regexp.MustCompile(`\b(gtm-[a-z0-9]{4,8})\b`),
		regexp.MustCompile(`\b(aw-\d{6,12})\b`),
		// Numeric pixel ids assigned through a key.
		regexp.MustCompile(`pixel_?id\s*[:=]\s*(\d{6,20})`),
		// Vendor SDK calls: fbq(init, 123), ttq.load(abc), pintrk(load, 26...).
		regexp.MustCompile(`\((?:init|load|config),\s*([a-z0-9_-]{6,40})`),
		regexp.MustCompile(`\.(?:load|init)\(\s*([a-z0-9_-]{6,40})`),
	}
)

// Normalize lowercases content, strips quote characters and collapses
// whitespace runs to a single space.
func Normalize(content string) string {
	s := strings.ToLower(content)
	s = quoteChars.Replace(s)
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ExtractIdentifiers returns the sorted, unique vendor identifiers found in
// already normalized content.
func ExtractIdentifiers(normalized string) []string {
	seen := make(map[string]struct{})
	for _, re := range identifierPatterns {
		for _, m := range re.FindAllStringSubmatch(normalized, -1) {
			if len(m) > 1 && m[1] != "" {
				seen[m[1]] = struct{}{}
			}
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Compute returns the fingerprint of a script and the identifiers that
// contributed to it.
func Compute(content string, category asset.Category, platform string) (string, []string, error) {
	normalized := Normalize(content)
	ids := ExtractIdentifiers(normalized)

	obj := map[string]any{
		"category":     string(category),
		"platform":     strings.ToLower(platform),
		"identifiers":  ids,
		"content_hash": contentDigest(normalized),
	}

	digest, err := canonical.Digest(Domain, obj)
	if err != nil {
		return "", nil, fmt.Errorf("fingerprint: %w", err)
	}

	return digest[:Length], ids, nil
}

// Of is like Compute but returns only the fingerprint.
func Of(content string, category asset.Category, platform string) (string, error) {
	fp, _, err := Compute(content, category, platform)
	return fp, err
}

// contentDigest hashes the first 200 runes of the normalized text and keeps
// a fixed prefix of the hex digest.
func contentDigest(normalized string) string {
	r := []rune(normalized)
	if len(r) > contentPrefixRunes {
		r = r[:contentPrefixRunes]
	}
	sum := sha256.Sum256([]byte(string(r)))
	return hex.EncodeToString(sum[:])[:contentDigestLen]
}
