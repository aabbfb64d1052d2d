package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var (
	punctRe = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// NormalizeIdentity lowercases, strips punctuation and collapses whitespace
// so trivial text variations of the same company or title still collide.
func NormalizeIdentity(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = punctRe.ReplaceAllString(text, "")
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// ComputeFingerprint derives the dedup key for a posting from its normalized
// company and title. The first 16 hex characters of the SHA-256 are enough
// to distinguish a personal-scale dataset.
func ComputeFingerprint(company, title string) string {
	normalized := NormalizeIdentity(company) + "|" + NormalizeIdentity(title)
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])[:16]
}
