package app

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Cache key layout: {namespace}:v{version}:{digest}:top{K}. Bumping the
// version invalidates every prior key without deletion; old entries expire
// off their TTL.
const (
	cacheNamespace = "search"
	cacheVersion   = 1
)

// NormalizeQuery lowercases, trims, and collapses internal whitespace so
// queries that differ only in case or spacing share a fingerprint.
func NormalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

// CacheKey is a pure function of the normalized query plus the result-shape
// tag (top-K), so a K change never replays a differently-shaped response.
func CacheKey(query string, topK int) string {
	sum := sha256.Sum256([]byte(NormalizeQuery(query)))
	return fmt.Sprintf("%s:v%d:%s:top%d", cacheNamespace, cacheVersion, hex.EncodeToString(sum[:]), topK)
}
