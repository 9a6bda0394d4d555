package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// Store is the persistent side of a FingerprintCache.
type Store interface {
	Get(ctx context.Context, templatePath string) (string, bool, error)
	Set(ctx context.Context, templatePath, fingerprint string) error
	List(ctx context.Context) (map[string]string, error)
}

// FingerprintCache remembers, per template, the fingerprint of the keys and
// document text produced by the last synchronization. A template saved
// without changing either can skip the pass. Lookups hit memory first and
// fall back to the optional Store.
type FingerprintCache struct {
	store  Store
	mu     sync.RWMutex
	memory map[string]string // template path → fingerprint
}

// NewFingerprintCache creates a cache. store may be nil for a memory-only cache.
func NewFingerprintCache(store Store) *FingerprintCache {
	return &FingerprintCache{
		store:  store,
		memory: make(map[string]string),
	}
}

// Matches reports whether fingerprint equals the one recorded for templatePath.
func (c *FingerprintCache) Matches(ctx context.Context, templatePath, fingerprint string) bool {
	got, ok := c.Get(ctx, templatePath)
	return ok && got == fingerprint
}

// Get returns the recorded fingerprint for templatePath.
func (c *FingerprintCache) Get(ctx context.Context, templatePath string) (string, bool) {
	c.mu.RLock()
	if v, ok := c.memory[templatePath]; ok {
		c.mu.RUnlock()
		return v, true
	}
	c.mu.RUnlock()

	if c.store == nil {
		return "", false
	}

	fp, ok, err := c.store.Get(ctx, templatePath)
	if err != nil {
		log.Warn().Err(err).Str("template", templatePath).Msg("Fingerprint lookup failed")
		return "", false
	}
	if !ok {
		return "", false
	}

	c.mu.Lock()
	c.memory[templatePath] = fp
	c.mu.Unlock()

	return fp, true
}

// Set records fingerprint for templatePath in memory and in the store.
func (c *FingerprintCache) Set(ctx context.Context, templatePath, fingerprint string) error {
	c.mu.Lock()
	c.memory[templatePath] = fingerprint
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	if err := c.store.Set(ctx, templatePath, fingerprint); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Forget drops the in-memory entry for templatePath.
func (c *FingerprintCache) Forget(templatePath string) {
	c.mu.Lock()
	delete(c.memory, templatePath)
	c.mu.Unlock()
}

// Preload loads every stored fingerprint into memory.
func (c *FingerprintCache) Preload(ctx context.Context) error {
	if c.store == nil {
		return nil
	}

	all, err := c.store.List(ctx)
	if err != nil {
		return fmt.Errorf("preload cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for path, fp := range all {
		c.memory[path] = fp
	}

	log.Info().Int("count", len(all)).Msg("Preloaded fingerprint cache")
	return nil
}
