// Package cache is the advisory result cache behind the orchestrators.
// Every orchestrator must behave identically with caching disabled:
// a miss, a corrupt entry, or a failed write is never an application
// error, only a skipped optimization.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache defines the interface for caching serialized results.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key builds a deterministic cache key from the parameters that affect
// a result. Identical logical requests hash to the same key; any
// differing part (a coordinate in another rounding bucket, another
// language tag) produces a distinct key.
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return "geosick:v1:" + hex.EncodeToString(hash[:])
}

// Noop is the disabled cache: every read misses, every write is
// discarded.
type Noop struct{}

func (Noop) Get(string) ([]byte, bool)               { return nil, false }
func (Noop) Set(string, []byte, time.Duration) error { return nil }
func (Noop) Delete(string) error                     { return nil }
func (Noop) Clear() error                            { return nil }
