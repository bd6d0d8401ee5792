package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is a byte-oriented store with per-entry TTLs. Implementations
// are safe for concurrent use.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// ReportKey derives the cache key for one analysis: the document text
// plus the catalog fingerprint, so editing either the contract or the
// catalogs invalidates the cached report.
func ReportKey(documentText, catalogFingerprint string) string {
	hash := sha256.Sum256([]byte(documentText + "\x00" + catalogFingerprint))
	return "redline:v1:" + hex.EncodeToString(hash[:])
}
