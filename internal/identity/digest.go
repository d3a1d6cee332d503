package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// CheckPrefix marks identifiers in the anonymous user-check namespace so they
// can never collide with ingested news records.
const CheckPrefix = "check-"

// FromLink derives the stable record identifier for an article link.
// Whitespace is trimmed, case is preserved; re-ingesting the same link always
// resolves to the same identifier.
func FromLink(link string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(link)))
	return hex.EncodeToString(sum[:])
}

// FromContent derives the identifier for an anonymous user-check submission
// from the raw submitted text.
func FromContent(text string) string {
	sum := sha256.Sum256([]byte(text))
	return CheckPrefix + hex.EncodeToString(sum[:8])
}

// HostOf extracts the lowercase hostname of a link, with any leading "www."
// stripped. Malformed links yield an empty string.
func HostOf(link string) string {
	parsed, err := url.Parse(strings.TrimSpace(link))
	if err != nil || parsed.Host == "" {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}
