package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Keyer builds cache keys for metadata documents.
type Keyer interface {
	// MetadataKey returns the key for the metadata of name at version.
	MetadataKey(name, version string) string
}

// DefaultKeyer hashes the lowercased name and version under a "meta" prefix.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key scheme.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// MetadataKey implements Keyer.
func (DefaultKeyer) MetadataKey(name, version string) string {
	return hashKey("meta", strings.ToLower(name), version)
}

// ScopedKeyer prefixes every key of an inner Keyer, so several indexes or
// deployments can share one Redis database without colliding.
//
//	pypiKeys := NewScopedKeyer(NewDefaultKeyer(), "pypi:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// A nil inner keyer means the default scheme.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// MetadataKey implements Keyer.
func (k *ScopedKeyer) MetadataKey(name, version string) string {
	return k.prefix + k.inner.MetadataKey(name, version)
}

// hashKey joins parts with NUL and returns prefix:sha256hex.
func hashKey(prefix string, parts ...string) string {
	return prefix + ":" + Hash([]byte(strings.Join(parts, "\x00")))
}

// Hash returns the hex SHA-256 of data. File cache entries are named by it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
