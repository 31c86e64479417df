package cache

import "strings"

// Key joins parts into a colon-delimited cache key: entry-kind, object key,
// cache-version tag, and any selection parameters in canonical order.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// VersionTag resolves the cache-version token embedded in a key: either an
// object's etag, or the literal "ttl" when the caller relies solely on TTL
// expiry for invalidation.
func VersionTag(etagHint string) string {
	hint := strings.TrimSpace(etagHint)
	if hint == "" {
		return "ttl"
	}
	return hint
}
