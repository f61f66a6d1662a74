package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// HashWithDomain computes SHA-256 with domain separation and returns it hex
// encoded. Format: SHA256(domain + 0x00 + data). The null byte prevents
// domain/data boundary ambiguity.
func HashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Digest canonically marshals v and hashes it under domain.
func Digest(domain string, v any) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", fmt.Errorf("digest %s: %w", domain, err)
	}
	return HashWithDomain(domain, data), nil
}
