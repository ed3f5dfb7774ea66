// Package docid provides deterministic document IDs and canonical title keys.
package docid

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const prefix = "doc:"

// CanonicalTitle normalizes a title for identity comparison: lowercased,
// surrounding whitespace trimmed, inner whitespace runs collapsed to one
// space. Corpus deduplication groups documents by this key.
func CanonicalTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

// New returns a stable document ID for a source article. Same source always
// yields the same ID, so reloading a dataset reproduces identical IDs. The
// source URL is preferred (it distinguishes revisions of the same article);
// records without a URL fall back to the canonical title.
func New(url, title string) string {
	src := url
	if src == "" {
		src = "title:" + CanonicalTitle(title)
	}
	hash := sha256.Sum256([]byte(src))
	return prefix + hex.EncodeToString(hash[:])
}
