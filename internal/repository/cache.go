// Package repository defines data access interfaces for BookHive.
package repository

import (
	"context"
	"strconv"
	"time"
)

// =============================================================================
// Cache Interface (Redis or in-process)
// =============================================================================

// Cache defines the interface for caching operations. Implemented by Redis
// for shared deployments and by an in-process map when Redis is disabled.
// The catalog read path uses it for book-by-id lookups and proxied external
// search results.
type Cache interface {
	// Get retrieves a value by key.
	// Returns ErrCacheMiss if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with an optional TTL.
	// If ttl is 0, the value doesn't expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// Exists checks if a key exists.
	Exists(ctx context.Context, key string) (bool, error)
}

// CacheError represents a cache error type.
type CacheError string

const (
	// ErrCacheMiss indicates the key was not found in cache.
	ErrCacheMiss CacheError = "cache miss"

	// ErrCacheUnavailable indicates the cache is unavailable.
	ErrCacheUnavailable CacheError = "cache unavailable"
)

func (e CacheError) Error() string {
	return string(e)
}

// =============================================================================
// Common Cache Keys
// =============================================================================

// CacheKey generates cache keys for common scenarios.
type CacheKey struct{}

// CuratedBook returns a cache key for curated book metadata.
func (CacheKey) CuratedBook(id string) string {
	return "cache:book:curated:" + id
}

// ExternalSearch returns a cache key for proxied catalog search results.
func (CacheKey) ExternalSearch(query string, limit int) string {
	return "cache:catalog:search:" + query + ":" + strconv.Itoa(limit)
}
