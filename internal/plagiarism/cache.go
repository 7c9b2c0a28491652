package plagiarism

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CacheKey identifies a fingerprint by the content it was computed from and
// every parameter that shapes it.
type CacheKey struct {
	Digest   string
	Language string
	K        int
	T        int
	HashSize uint64
}

// Cache stores computed document fingerprints. Implementations must be safe
// for concurrent use; cached values are shared and must not be mutated.
type Cache interface {
	Get(key CacheKey) (*DocumentFingerprint, bool)
	Add(key CacheKey, fp *DocumentFingerprint)
	Len() int
}

// LRUCache is a bounded Cache evicting the least recently used fingerprint.
type LRUCache struct {
	lru *lru.Cache[CacheKey, *DocumentFingerprint]
}

// NewLRUCache creates a cache holding at most size fingerprints.
func NewLRUCache(size int) (*LRUCache, error) {
	c, err := lru.New[CacheKey, *DocumentFingerprint](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create fingerprint cache: %w", err)
	}
	return &LRUCache{lru: c}, nil
}

func (c *LRUCache) Get(key CacheKey) (*DocumentFingerprint, bool) {
	return c.lru.Get(key)
}

func (c *LRUCache) Add(key CacheKey, fp *DocumentFingerprint) {
	c.lru.Add(key, fp)
}

func (c *LRUCache) Len() int {
	return c.lru.Len()
}

// NoopCache never stores anything.
type NoopCache struct{}

func (NoopCache) Get(CacheKey) (*DocumentFingerprint, bool) { return nil, false }
func (NoopCache) Add(CacheKey, *DocumentFingerprint)        {}
func (NoopCache) Len() int                                  { return 0 }

// ContentDigest returns the hex SHA-256 of content.
func ContentDigest(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
