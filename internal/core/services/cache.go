package services

import (
	"context"

	"github.com/custodia-labs/taskdash/internal/core/ports/driven"
	"github.com/custodia-labs/taskdash/internal/logger"
)

// ResultCache is a read view over the history store.
type ResultCache struct {
	store driven.HistoryStore
}

// NewResultCache creates a cache backed by the given store.
func NewResultCache(store driven.HistoryStore) *ResultCache {
	return &ResultCache{store: store}
}

// Lookup returns the most recent successful result for the pair.
// A store failure is reported as a miss so the caller executes instead.
func (c *ResultCache) Lookup(ctx context.Context, function, argumentKey string) ([]byte, bool) {
	result, ok, err := c.store.LatestSuccess(ctx, function, argumentKey)
	if err != nil {
		logger.Warn("cache lookup for %s%s failed, treating as miss: %v", function, argumentKey, err)
		return nil, false
	}
	if ok {
		logger.Debug("cache hit for %s%s", function, argumentKey)
	}
	return result, ok
}
