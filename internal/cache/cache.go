// Package cache is a best-effort key-value cache with per-entry TTL.
// Failures never surface to callers: a broken cache behaves like an empty one.
package cache

import "time"

// Cache stores JSON-serialisable values
type Cache interface {
	// Get decodes the entry into dst and reports whether a live entry existed.
	Get(key string, dst any) bool
	Set(key string, value any, ttl time.Duration)
	Delete(key string)
	Close() error
}

// Nop is a cache that never stores anything
type Nop struct{}

func (Nop) Get(string, any) bool { return false }

func (Nop) Set(string, any, time.Duration) {}

func (Nop) Delete(string) {}

func (Nop) Close() error { return nil }
